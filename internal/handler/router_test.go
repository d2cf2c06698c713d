package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/pkg/config"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
	"github.com/autocare/autocare-api/pkg/storage"
)

type tokenStub struct{}

func (tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	switch token {
	case "client":
		return &models.JWTClaims{UserID: 4, Role: models.RoleClient}, nil
	case "admin":
		return &models.JWTClaims{UserID: 1, Role: models.RoleAdmin}, nil
	}
	return nil, appErrors.ErrInvalidToken
}

func (tokenStub) LoadUser(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	return &models.User{ID: claims.UserID, Role: claims.Role}, nil
}

type categoryServiceMock struct {
	listed bool
	gotID  int64
}

func (m *categoryServiceMock) List(ctx context.Context, actor *models.User) ([]models.CategorySummary, error) {
	m.listed = true
	return []models.CategorySummary{}, nil
}

func (m *categoryServiceMock) Get(ctx context.Context, actor *models.User, id int64) (*models.CategoryDetail, error) {
	m.gotID = id
	return &models.CategoryDetail{}, nil
}

func (m *categoryServiceMock) Create(ctx context.Context, actor *models.User, req models.CategoryRequest) (*models.Category, error) {
	return &models.Category{ID: 1, Name: req.Name}, nil
}

func (m *categoryServiceMock) Update(ctx context.Context, actor *models.User, id int64, req models.CategoryRequest) (*models.Category, error) {
	return &models.Category{ID: id, Name: req.Name}, nil
}

func testRouterConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Uploads:   config.UploadConfig{Dir: t.TempDir(), PublicPrefix: "/images"},
	}
}

func serve(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterStaticSegmentsWinOverIDs(t *testing.T) {
	categories := &categoryServiceMock{}
	invoices := &invoiceServiceMock{}
	r := NewRouter(RouterDeps{Config: testRouterConfig(t), Logger: zap.NewNop(), Auth: tokenStub{}}, Handlers{
		Categories: NewCategoryHandler(categories),
		SpareParts: NewSparePartHandler(&sparePartServiceMock{}),
		Invoices:   NewInvoiceHandler(invoices),
		Ops:        NewMetricsHandler(nil, nil, nil),
	})

	w := serve(t, r, http.MethodGet, "/api/v1/spare-parts/categories", "client")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, categories.listed)

	w = serve(t, r, http.MethodGet, "/api/v1/spare-parts/categories/8", "client")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(8), categories.gotID)

	w = serve(t, r, http.MethodGet, "/api/v1/invoices/export?format=csv", "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", invoices.format)
}

func TestRouterEnforcesAuthAndCapabilities(t *testing.T) {
	r := NewRouter(RouterDeps{Config: testRouterConfig(t), Logger: zap.NewNop(), Auth: tokenStub{}}, Handlers{
		Categories: NewCategoryHandler(&categoryServiceMock{}),
		Invoices:   NewInvoiceHandler(&invoiceServiceMock{}),
		Ops:        NewMetricsHandler(nil, nil, nil),
	})

	assert.Equal(t, http.StatusUnauthorized, serve(t, r, http.MethodGet, "/api/v1/invoices", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, r, http.MethodGet, "/api/v1/invoices/export", "client").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, r, http.MethodPost, "/api/v1/spare-parts/categories", "client").Code)
	assert.Equal(t, http.StatusOK, serve(t, r, http.MethodGet, "/health", "").Code)
}

func TestRouterServesStoredUploads(t *testing.T) {
	files, err := storage.NewLocalStorage(t.TempDir(), "pics")
	require.NoError(t, err)
	publicPath, err := files.SaveStream("before.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "/pics/before.png", publicPath)

	r := NewRouter(RouterDeps{Config: testRouterConfig(t), Logger: zap.NewNop(), Auth: tokenStub{}, Uploads: files}, Handlers{
		Ops: NewMetricsHandler(nil, nil, nil),
	})

	w := serve(t, r, http.MethodGet, publicPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(t, r, http.MethodGet, "/images/before.png", "").Code)
}
