package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spw3bt3ch/Teachers-blog/internal/cache"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
)

const maxCategoryDescriptionLen = 500

type TaxonomyService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) *TaxonomyService {
	return &TaxonomyService{categoryRepo: categoryRepo, tagRepo: tagRepo}
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := cache.Aside(ctx, cache.CategoriesKey, &categories, cache.TaxonomyTTL, func() error {
		var err error
		categories, err = s.categoryRepo.List(ctx)
		if categories == nil {
			categories = []models.Category{}
		}
		return err
	})
	return categories, err
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := cache.Aside(ctx, cache.TagsKey, &tags, cache.TaxonomyTTL, func() error {
		var err error
		tags, err = s.tagRepo.List(ctx)
		if tags == nil {
			tags = []models.Tag{}
		}
		return err
	})
	return tags, err
}

// CreateCategory is admin only. The slug is derived from the name.
func (s *TaxonomyService) CreateCategory(ctx context.Context, actor *policy.Actor, name, description string) (*models.Category, error) {
	if err := policy.Authorize(actor, policy.Taxonomy(), policy.ActionManageTaxonomy).Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxCategoryDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 500 characters)")
	}

	category := &models.Category{Name: name, Description: description}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	cache.InvalidateTaxonomy(ctx)
	return category, nil
}
