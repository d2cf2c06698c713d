package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/repository"
)

type mockUserRepo struct {
	users      map[int64]*models.User
	listFilter models.UserFilter
	updateErr  error
	deleteErr  error
	hashes     map[int64]string
	roles      map[int64]models.Role
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: map[int64]*models.User{}, hashes: map[int64]string{}, roles: map[int64]models.Role{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.listFilter = filter
	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	m.roles[id] = role
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	m.hashes[id] = passwordHash
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func TestUserServiceMe(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 4, FullName: "Ana", Email: "ana@example.com", Role: models.RoleClient})
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	info, err := svc.Me(context.Background(), clientActor(4))
	require.NoError(t, err)
	assert.Equal(t, "Ana", info.FullName)
}

func TestUserServiceListRequiresAdmin(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 1, Role: models.RoleAdmin})
	svc := NewUserService(repo, nil, nil)

	_, _, err := svc.List(context.Background(), mechanicActor(2), models.UserFilter{})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(err))

	users, pagination, err := svc.List(context.Background(), adminActor(1), models.UserFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, repo.listFilter.PageSize)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	repo := newMockUserRepo(
		&models.User{ID: 4, FullName: "Ana", Email: "ana@example.com", Role: models.RoleClient},
		&models.User{ID: 5, FullName: "Luis", Email: "luis@example.com", Role: models.RoleClient},
	)
	svc := NewUserService(repo, validator.New(), zap.NewNop())
	req := models.UpdateProfileRequest{FullName: " Ana Torres ", Email: "ANA@example.com"}

	info, err := svc.UpdateProfile(context.Background(), clientActor(4), 4, req)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", info.FullName)
	assert.Equal(t, "ana@example.com", info.Email)

	_, err = svc.UpdateProfile(context.Background(), clientActor(4), 5, req)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(err))

	_, err = svc.UpdateProfile(context.Background(), adminActor(1), 5, models.UpdateProfileRequest{FullName: "Luis", Email: "luis@example.com"})
	require.NoError(t, err)
}

func TestUserServiceUpdateProfileDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 4, FullName: "Ana", Email: "ana@example.com"})
	repo.updateErr = &repository.ConstraintError{Kind: repository.ErrDuplicate, Constraint: "users_email_key", Err: errors.New("dup")}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	_, err := svc.UpdateProfile(context.Background(), clientActor(4), 4, models.UpdateProfileRequest{FullName: "Ana", Email: "luis@example.com"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

func TestUserServiceAdminUpdateRejectsUnknownRole(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 4, FullName: "Ana", Email: "ana@example.com"})
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	_, err := svc.AdminUpdate(context.Background(), adminActor(1), 4, models.AdminUpdateUserRequest{
		UpdateProfileRequest: models.UpdateProfileRequest{FullName: "Ana", Email: "ana@example.com"},
		Role:                 models.Role(9),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	info, err := svc.AdminUpdate(context.Background(), adminActor(1), 4, models.AdminUpdateUserRequest{
		UpdateProfileRequest: models.UpdateProfileRequest{FullName: "Ana", Email: "ana@example.com"},
		Role:                 models.RoleMechanic,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMechanic, info.Role)
}

func TestUserServiceChangeRole(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 4, Role: models.RoleClient})
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.ChangeRole(context.Background(), adminActor(1), 4, models.ChangeRoleRequest{Role: models.RoleMechanic}))
	assert.Equal(t, models.RoleMechanic, repo.roles[4])

	err := svc.ChangeRole(context.Background(), adminActor(1), 99, models.ChangeRoleRequest{Role: models.RoleMechanic})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestUserServiceChangePassword(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 4, Role: models.RoleClient})
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.ChangePassword(context.Background(), clientActor(4), 4, models.ChangePasswordRequest{NewPassword: "123"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, svc.ChangePassword(context.Background(), clientActor(4), 4, models.ChangePasswordRequest{NewPassword: "nuevo123"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[4]), []byte("nuevo123")))
}

func TestUserServiceDeleteReferencedUser(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 4})
	repo.deleteErr = &repository.ConstraintError{Kind: repository.ErrForeignKey, Constraint: "vehicles_owner_id_fkey", Err: errors.New("fk")}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminActor(1), 4)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	repo.deleteErr = nil
	require.NoError(t, svc.Delete(context.Background(), adminActor(1), 4))
	assert.Empty(t, repo.users)
}
