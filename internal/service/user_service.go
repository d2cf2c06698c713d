package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/repository"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// UserService handles account management workflows.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// Me returns the acting user's profile.
func (s *UserService) Me(ctx context.Context, actor *models.User) (*models.UserInfo, error) {
	if err := authorize(actor, models.CapUserSelf); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	info := user.Info()
	return &info, nil
}

// List returns paginated users.
func (s *UserService) List(ctx context.Context, actor *models.User, filter models.UserFilter) ([]models.UserInfo, *models.Pagination, error) {
	if err := authorize(actor, models.CapUserManage); err != nil {
		return nil, nil, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Info())
	}
	return infos, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// UpdateProfile edits contact fields. Users may edit themselves; admins may edit anyone.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, id int64, req models.UpdateProfileRequest) (*models.UserInfo, error) {
	if err := s.authorizeSelfOrManage(actor, id); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	applyProfile(user, req)
	return s.save(ctx, user)
}

// AdminUpdate edits a profile and its role.
func (s *UserService) AdminUpdate(ctx context.Context, actor *models.User, id int64, req models.AdminUpdateUserRequest) (*models.UserInfo, error) {
	if err := authorize(actor, models.CapUserManage); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	applyProfile(user, req.UpdateProfileRequest)
	user.Role = req.Role
	return s.save(ctx, user)
}

// ChangeRole switches a user's role.
func (s *UserService) ChangeRole(ctx context.Context, actor *models.User, id int64, req models.ChangeRoleRequest) error {
	if err := authorize(actor, models.CapUserManage); err != nil {
		return err
	}
	if !req.Role.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if err := s.repo.UpdateRole(ctx, id, req.Role); err != nil {
		return lookupError(err, "user not found", "failed to update role")
	}
	s.logger.Info("user role changed", zap.Int64("user_id", id), zap.Stringer("role", req.Role), zap.Int64("actor_id", actor.ID))
	return nil
}

// ChangePassword sets a new password for the user.
func (s *UserService) ChangePassword(ctx context.Context, actor *models.User, id int64, req models.ChangePasswordRequest) error {
	if err := s.authorizeSelfOrManage(actor, id); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return lookupError(err, "user not found", "failed to update password")
	}
	return nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := authorize(actor, models.CapUserManage); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return appErrors.Clone(appErrors.ErrBusinessRule, "user is still referenced by repairs or invoices")
		}
		return lookupError(err, "user not found", "failed to delete user")
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

func (s *UserService) authorizeSelfOrManage(actor *models.User, id int64) error {
	if err := authorize(actor, models.CapUserSelf); err != nil {
		return err
	}
	if actor.ID != id && !actor.Role.Can(models.CapUserManage) {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot modify other users")
	}
	return nil
}

func (s *UserService) save(ctx context.Context, user *models.User) (*models.UserInfo, error) {
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, lookupError(err, "user not found", "failed to update user")
	}
	info := user.Info()
	return &info, nil
}

func applyProfile(user *models.User, req models.UpdateProfileRequest) {
	user.FullName = strings.TrimSpace(req.FullName)
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.Phone = req.Phone
	user.Mobile = req.Mobile
}
