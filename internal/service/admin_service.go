package service

import (
	"context"

	"github.com/spw3bt3ch/Teachers-blog/internal/cache"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
)

const (
	defaultActivityLimit     = 50
	recentActivitiesShown    = 10
	recentRegistrationsShown = 5
)

// AdminService backs the admin dashboard. Every method requires the admin role.
type AdminService struct {
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	activityRepo repository.ActivityRepository
}

// DashboardTotals are the headline counters.
type DashboardTotals struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalPosts      int64 `json:"totalPosts"`
	TotalComments   int64 `json:"totalComments"`
	TotalActivities int64 `json:"totalActivities"`
	ActiveUsers     int64 `json:"activeUsers"`
	PublishedPosts  int64 `json:"publishedPosts"`
	DraftPosts      int64 `json:"draftPosts"`
}

// DashboardStats is the GET /admin/stats body.
type DashboardStats struct {
	Stats               DashboardTotals     `json:"stats"`
	UsersByRole         []models.CountByKey `json:"usersByRole"`
	ActivitiesByType    []models.CountByKey `json:"activitiesByType"`
	RecentActivities    []models.Activity   `json:"recentActivities"`
	RecentRegistrations []models.User       `json:"recentRegistrations"`
}

type ListActivitiesInput struct {
	Page   int
	Limit  int
	Type   string
	UserID uint
}

// ActivityPage is one page of the audit log.
type ActivityPage struct {
	Activities []models.Activity `json:"activities"`
	Pagination Pagination        `json:"pagination"`
}

func NewAdminService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	activityRepo repository.ActivityRepository,
) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		activityRepo: activityRepo,
	}
}

func (s *AdminService) Stats(ctx context.Context, actor *policy.Actor) (*DashboardStats, error) {
	if err := policy.Authorize(actor, policy.Dashboard(), policy.ActionViewStats).Err(); err != nil {
		return nil, err
	}

	var stats DashboardStats
	err := cache.Aside(ctx, cache.AdminStatsKey, &stats, cache.AdminStatsTTL, func() error {
		return s.collectStats(ctx, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *AdminService) collectStats(ctx context.Context, out *DashboardStats) error {
	var err error
	t := &out.Stats
	if t.TotalUsers, err = s.userRepo.CountAll(ctx); err != nil {
		return err
	}
	if t.TotalPosts, err = s.postRepo.CountAll(ctx); err != nil {
		return err
	}
	if t.TotalComments, err = s.commentRepo.CountAll(ctx); err != nil {
		return err
	}
	if t.TotalActivities, err = s.activityRepo.CountAll(ctx); err != nil {
		return err
	}
	if t.ActiveUsers, err = s.userRepo.CountByRole(ctx, models.RoleTeacher); err != nil {
		return err
	}
	if t.PublishedPosts, err = s.postRepo.CountByPublished(ctx, true); err != nil {
		return err
	}
	if t.DraftPosts, err = s.postRepo.CountByPublished(ctx, false); err != nil {
		return err
	}

	if out.UsersByRole, err = s.userRepo.GroupByRole(ctx); err != nil {
		return err
	}
	if out.ActivitiesByType, err = s.activityRepo.GroupByType(ctx); err != nil {
		return err
	}
	if out.RecentActivities, err = s.activityRepo.Recent(ctx, recentActivitiesShown); err != nil {
		return err
	}
	if out.RecentRegistrations, err = s.userRepo.Recent(ctx, recentRegistrationsShown); err != nil {
		return err
	}

	if out.UsersByRole == nil {
		out.UsersByRole = []models.CountByKey{}
	}
	if out.ActivitiesByType == nil {
		out.ActivitiesByType = []models.CountByKey{}
	}
	if out.RecentActivities == nil {
		out.RecentActivities = []models.Activity{}
	}
	if out.RecentRegistrations == nil {
		out.RecentRegistrations = []models.User{}
	}
	return nil
}

func (s *AdminService) ListActivities(ctx context.Context, actor *policy.Actor, in ListActivitiesInput) (*ActivityPage, error) {
	if err := policy.Authorize(actor, policy.Dashboard(), policy.ActionViewActivities).Err(); err != nil {
		return nil, err
	}

	filter := repository.ActivityFilter{UserID: in.UserID}
	if in.Type != "" {
		t := models.ActivityType(in.Type)
		if !t.Valid() {
			return nil, models.NewValidationError("Invalid activity type")
		}
		filter.Type = t
	}

	page, limit := normalizePage(in.Page, in.Limit, defaultActivityLimit)
	activities, err := s.activityRepo.List(ctx, filter, limit, offsetFor(page, limit))
	if err != nil {
		return nil, err
	}
	total, err := s.activityRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return &ActivityPage{Activities: activities, Pagination: newPagination(page, limit, total)}, nil
}
