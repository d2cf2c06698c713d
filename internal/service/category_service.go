package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/repository"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type categoryRepository interface {
	ListWithCounts(ctx context.Context) ([]models.CategorySummary, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
}

type categoryPartLister interface {
	List(ctx context.Context, filter models.SparePartFilter) ([]models.SparePart, error)
}

// CategoryService manages spare part categories and caches their listing.
type CategoryService struct {
	repo   categoryRepository
	parts  categoryPartLister
	cache  listCache
	logger *zap.Logger
}

// NewCategoryService constructs a CategoryService. cache may be nil.
func NewCategoryService(repo categoryRepository, parts categoryPartLister, cache listCache, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, parts: parts, cache: cache, logger: logger}
}

// List returns every category with its active part count.
func (s *CategoryService) List(ctx context.Context, actor *models.User) ([]models.CategorySummary, error) {
	if err := authorize(actor, models.CapCategoryRead); err != nil {
		return nil, err
	}
	categories, err := Remember(ctx, s.cache, categoryListCacheKey, 0, s.repo.ListWithCounts)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list categories")
	}
	return categories, nil
}

// Get returns a category with its parts. Non-admins only see active parts.
func (s *CategoryService) Get(ctx context.Context, actor *models.User, id int64) (*models.CategoryDetail, error) {
	if err := authorize(actor, models.CapCategoryRead); err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "category not found", "failed to load category")
	}
	filter := models.SparePartFilter{CategoryID: &id}
	if !actor.Role.Can(models.CapSparePartInactive) {
		active := true
		filter.Active = &active
	}
	parts, err := s.parts.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list category parts")
	}
	return &models.CategoryDetail{Category: *category, SpareParts: parts}, nil
}

// Create adds a category. Names are trimmed and must be unique.
func (s *CategoryService) Create(ctx context.Context, actor *models.User, req models.CategoryRequest) (*models.Category, error) {
	if err := authorize(actor, models.CapCategoryWrite); err != nil {
		return nil, err
	}
	category := &models.Category{Name: strings.TrimSpace(req.Name)}
	if err := validateCategoryName(category.Name); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, categoryWriteError(err, "failed to create category")
	}
	s.invalidate(ctx)
	return category, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, actor *models.User, id int64, req models.CategoryRequest) (*models.Category, error) {
	if err := authorize(actor, models.CapCategoryWrite); err != nil {
		return nil, err
	}
	category := &models.Category{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := validateCategoryName(category.Name); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, categoryWriteError(err, "failed to update category")
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, categoryCachePattern); err != nil {
		s.logger.Warn("failed to invalidate category cache", zap.Error(err))
	}
}

func validateCategoryName(name string) error {
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "category name is required")
	}
	if len([]rune(name)) > 100 {
		return appErrors.Clone(appErrors.ErrValidation, "category name must be at most 100 characters")
	}
	return nil
}

func categoryWriteError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return appErrors.Clone(appErrors.ErrValidation, "category already exists")
	}
	return lookupError(err, "category not found", message)
}
