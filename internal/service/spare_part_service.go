package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/pricing"
	"github.com/autocare/autocare-api/internal/repository"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

const (
	categoryListCacheKey = "categories:list"
	categoryCachePattern = "categories:*"
)

type sparePartRepository interface {
	List(ctx context.Context, filter models.SparePartFilter) ([]models.SparePart, error)
	FindByID(ctx context.Context, id int64) (*models.SparePart, error)
	Create(ctx context.Context, part *models.SparePart) error
	Update(ctx context.Context, id int64, patch models.SparePartPatch) error
	Deactivate(ctx context.Context, id int64) error
}

type categoryFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// SparePartService manages the parts inventory.
type SparePartService struct {
	repo       sparePartRepository
	categories categoryFinder
	cache      listCache
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSparePartService constructs a SparePartService. cache may be nil.
func NewSparePartService(repo sparePartRepository, categories categoryFinder, cache listCache, validate *validator.Validate, logger *zap.Logger) *SparePartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SparePartService{repo: repo, categories: categories, cache: cache, validator: validate, logger: logger}
}

// List returns parts ordered by category then name. Only admins may see inactive parts.
func (s *SparePartService) List(ctx context.Context, actor *models.User, filter models.SparePartFilter) ([]models.SparePart, error) {
	if err := authorize(actor, models.CapSparePartRead); err != nil {
		return nil, err
	}
	if !actor.Role.Can(models.CapSparePartInactive) {
		active := true
		filter.Active = &active
	}
	parts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list spare parts")
	}
	return parts, nil
}

// Get returns a part. Inactive parts look missing to non-admins.
func (s *SparePartService) Get(ctx context.Context, actor *models.User, id int64) (*models.SparePart, error) {
	if err := authorize(actor, models.CapSparePartRead); err != nil {
		return nil, err
	}
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "spare part not found", "failed to load spare part")
	}
	if !part.Active && !actor.Role.Can(models.CapSparePartInactive) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "spare part not found")
	}
	return part, nil
}

// Create adds a part to an existing category.
func (s *SparePartService) Create(ctx context.Context, actor *models.User, req models.SparePartRequest) (*models.SparePart, error) {
	if err := authorize(actor, models.CapSparePartWrite); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid spare part payload")
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	part := &models.SparePart{
		Name:        strings.TrimSpace(req.Name),
		UnitPrice:   pricing.Round2(*req.UnitPrice),
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		part.Active = *req.Active
	}
	if err := s.repo.Create(ctx, part); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category not found")
		}
		return nil, appErrors.Internal(err, "failed to create spare part")
	}
	s.invalidate(ctx)
	created, err := s.repo.FindByID(ctx, part.ID)
	if err != nil {
		return nil, lookupError(err, "spare part not found", "failed to load spare part")
	}
	return created, nil
}

// Update applies a partial update.
func (s *SparePartService) Update(ctx context.Context, actor *models.User, id int64, patch models.SparePartPatch) (*models.SparePart, error) {
	if err := authorize(actor, models.CapSparePartWrite); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid spare part payload")
	}
	if patch.CategoryID != nil {
		if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if patch.UnitPrice != nil {
		price := pricing.Round2(*patch.UnitPrice)
		patch.UnitPrice = &price
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category not found")
		}
		return nil, lookupError(err, "spare part not found", "failed to update spare part")
	}
	s.invalidate(ctx)
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "spare part not found", "failed to load spare part")
	}
	return part, nil
}

// Delete soft-deletes a part. Services that used it keep their rows.
func (s *SparePartService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := authorize(actor, models.CapSparePartDelete); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return lookupError(err, "spare part not found", "failed to deactivate spare part")
	}
	s.invalidate(ctx)
	s.logger.Info("spare part deactivated", zap.Int64("spare_part_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

func (s *SparePartService) requireCategory(ctx context.Context, id int64) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "category not found")
		}
		return appErrors.Internal(err, "failed to load category")
	}
	return nil
}

// invalidate drops cached category counts after a part write.
func (s *SparePartService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, categoryCachePattern); err != nil {
		s.logger.Warn("failed to invalidate category cache", zap.Error(err))
	}
}
