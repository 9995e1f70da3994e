package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	liveTicketPrefix = "ws_ticket:"
	liveTicketTTL    = 30 * time.Second
)

// IssueLiveTicket handles POST /api/admin/live/ticket
// @Summary Issue a live feed ticket
// @Description Returns a single-use ticket for opening the admin activity websocket.
// @Tags admin
// @Produce json
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/live/ticket [post]
func (s *Server) IssueLiveTicket(c *fiber.Ctx) error {
	who := actor(c)
	if err := policy.Authorize(who, policy.Dashboard(), policy.ActionViewActivities).Err(); err != nil {
		return respondErr(c, err)
	}
	if s.redis == nil || s.liveHub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Live feed unavailable",
		})
	}

	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), liveTicketPrefix+ticket, who.ID, liveTicketTTL).Err(); err != nil {
		return respondErr(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(liveTicketTTL.Seconds()),
	})
}

// consumeLiveTicket redeems ticket once and returns the admin it was issued to.
func (s *Server) consumeLiveTicket(ctx context.Context, ticket string) (uint, bool) {
	if s.redis == nil || ticket == "" {
		return 0, false
	}
	raw, err := s.redis.GetDel(ctx, liveTicketPrefix+ticket).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "live ticket lookup failed", slog.String("error", err.Error()))
		}
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// LiveFeedUpgrade gates GET /api/admin/live: only websocket upgrades carrying a
// valid ticket get through.
func (s *Server) LiveFeedUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{
				Error: "Websocket upgrade required",
			})
		}
		userID, ok := s.consumeLiveTicket(c.UserContext(), c.Query("ticket"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized"))
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}

// LiveFeed streams activity records to an admin dashboard as they are persisted.
// @Summary Live activity feed
// @Description Websocket stream of activity records. Connect with ?ticket= from /admin/live/ticket.
// @Tags admin
// @Param ticket query string true "Live feed ticket"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Router /admin/live [get]
func (s *Server) LiveFeed() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)
		client, err := s.liveHub.Register(userID, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}
		middleware.Logger.Info("live feed connected", slog.Uint64("user_id", uint64(userID)))

		go client.WritePump()
		client.ReadPump()
	})
}
