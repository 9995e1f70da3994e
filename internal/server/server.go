// Package server contains the HTTP handlers for the blog API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/spw3bt3ch/Teachers-blog/docs" // swagger docs
	"github.com/spw3bt3ch/Teachers-blog/internal/activity"
	"github.com/spw3bt3ch/Teachers-blog/internal/bootstrap"
	"github.com/spw3bt3ch/Teachers-blog/internal/config"
	"github.com/spw3bt3ch/Teachers-blog/internal/featureflags"
	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/notifications"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	userRepo        repository.UserRepository
	postRepo        repository.PostRepository
	commentRepo     repository.CommentRepository
	activityRepo    repository.ActivityRepository
	notifier        *notifications.Notifier
	liveHub         *notifications.ActivityHub
	stopLive        context.CancelFunc
	nats            *notifications.NATSPublisher
	activityLog     *activity.Logger
	featureFlags    *featureflags.Manager
	postService     *service.PostService
	commentService  *service.CommentService
	userService     *service.UserService
	adminService    *service.AdminService
	taxonomyService *service.TaxonomyService
	reactionService *service.ReactionService
}

// NewServer connects to the database, Redis and (optionally) NATS and wires the
// application on top of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	natsPublisher, err := notifications.ConnectNATS(cfg.NATSURL)
	if err != nil {
		// activity fan-out is optional; keep serving without it
		middleware.Logger.Warn("NATS unavailable, continuing without it", slog.String("error", err.Error()))
		natsPublisher = nil
	}

	var extra []activity.Publisher
	if natsPublisher != nil {
		extra = append(extra, natsPublisher)
	}
	s, err := NewServerWithDeps(cfg, db, redisClient, extra...)
	if err != nil {
		return nil, err
	}
	s.nats = natsPublisher
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with SQLite and miniredis; redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publishers ...activity.Publisher) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database handle")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("teachers-blog-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		activityRepo:   activityRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		publishers = append([]activity.Publisher{s.notifier}, publishers...)

		hub := notifications.NewActivityHub()
		liveCtx, cancel := context.WithCancel(context.Background())
		if err := hub.StartWiring(liveCtx, s.notifier); err != nil {
			cancel()
			middleware.Logger.Warn("live activity feed disabled", slog.String("error", err.Error()))
		} else {
			s.liveHub = hub
			s.stopLive = cancel
		}
	}
	s.activityLog = activity.NewLogger(activityRepo, cfg.ActivityQueueSize, publishers...)

	s.postService = service.NewPostService(postRepo, categoryRepo, tagRepo, reactionRepo, s.activityLog)
	s.commentService = service.NewCommentService(commentRepo, postRepo, s.activityLog)
	s.userService = service.NewUserService(userRepo, s.activityLog, cfg.BcryptCost)
	s.adminService = service.NewAdminService(userRepo, postRepo, commentRepo, activityRepo)
	s.taxonomyService = service.NewTaxonomyService(categoryRepo, tagRepo)
	s.reactionService = service.NewReactionService(reactionRepo, postRepo, commentRepo)

	return s, nil
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Teachers Blog API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// tracing runs before ContextMiddleware so the trace ID reaches the logger
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Teachers Blog API Metrics",
	}))

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 10, 10*time.Minute, "create_post"), s.CreatePost)
	// /:slug/reactions before the generic /:slug routes
	posts.Post("/:slug/reactions", s.AuthRequired(), s.FeatureRequired(featureflags.Reactions), s.ReactToPost)
	posts.Delete("/:slug/reactions", s.AuthRequired(), s.FeatureRequired(featureflags.Reactions), s.RemovePostReaction)
	posts.Get("/:slug", s.OptionalAuth(), s.GetPost)
	posts.Patch("/:slug", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:slug", s.AuthRequired(), s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/", s.GetComments)
	comments.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	comments.Get("/:id/replies", s.GetReplies)
	comments.Post("/:id/reactions", s.AuthRequired(), s.FeatureRequired(featureflags.Reactions), s.ReactToComment)
	comments.Delete("/:id/reactions", s.AuthRequired(), s.FeatureRequired(featureflags.Reactions), s.RemoveCommentReaction)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)

	users := api.Group("/users")
	users.Get("/me", s.AuthRequired(), s.GetMyProfile)
	users.Patch("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Get("/:username", s.GetUserProfile)

	api.Get("/categories", s.GetCategories)
	api.Post("/categories", s.AuthRequired(), s.CreateCategory)
	api.Get("/tags", s.GetTags)

	// admin denials are 401 for everyone, so identity is optional here and the
	// policy decides
	admin := api.Group("/admin", s.OptionalAuth())
	admin.Get("/stats", s.GetAdminStats)
	admin.Get("/activities", s.GetAdminActivities)
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/live/ticket", s.IssueLiveTicket)
	admin.Get("/live", s.LiveFeedUpgrade(), s.LiveFeed())

	api.Get("/swagger/*", swagger.HandlerDefault)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: the API
// degrades to uncached reads without it, so only the database gates readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// FeatureRequired answers 404 when the named flag is off for the caller.
func (s *Server) FeatureRequired(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		if !s.featureFlags.Enabled(name, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundMessage("Feature not available"))
		}
		return c.Next()
	}
}

// Start serves on the configured port until the listener stops.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server, drains the activity queue and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if s.stopLive != nil {
		s.stopLive()
	}
	if s.liveHub != nil {
		_ = s.liveHub.Shutdown(ctx)
	}

	// drain after HTTP so in-flight requests can still enqueue
	if s.activityLog != nil {
		if err := s.activityLog.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("activity drain: %w", err))
		}
	}

	s.nats.Close()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
