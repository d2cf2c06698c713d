package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autocare/autocare-api/internal/models"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type authServiceMock struct {
	registered models.RegisterRequest
	loginErr   error
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	m.registered = req
	return &models.UserInfo{ID: 9, FullName: req.FullName, Email: req.Email, Role: models.RoleClient}, nil
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600}, nil
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc)
	c, w := jsonContext(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Ana", "email": "ana@example.com", "password": "secret1",
	}, nil)

	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ana@example.com", svc.registered.Email)
	assert.Contains(t, string(decode(t, w).Data), `"role_id":1`)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})
	c, w := jsonContext(t, http.MethodPost, "/auth/register", "{", nil)

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})
	c, w := jsonContext(t, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com", "password": "nope"}, nil)

	handler.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, decode(t, w).Error["code"])
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})
	c, w := jsonContext(t, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com", "password": "secret1"}, nil)

	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"access_token":"token"`)
}
