package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autocare/autocare-api/internal/models"
)

type vehicleServiceMock struct {
	created       models.CreateVehicleRequest
	image         *multipart.FileHeader
	page, size    int
	deletedID     int64
	updateRequest models.UpdateVehicleRequest
}

func (m *vehicleServiceMock) Create(ctx context.Context, actor *models.User, req models.CreateVehicleRequest, image *multipart.FileHeader) (*models.Vehicle, error) {
	m.created, m.image = req, image
	return &models.Vehicle{ID: 1, Plate: req.Plate}, nil
}

func (m *vehicleServiceMock) List(ctx context.Context, actor *models.User, page, pageSize int) ([]models.VehicleListItem, *models.Pagination, error) {
	m.page, m.size = page, pageSize
	return []models.VehicleListItem{}, models.NewPagination(page, 5, 0), nil
}

func (m *vehicleServiceMock) Get(ctx context.Context, actor *models.User, id int64) (*models.Vehicle, error) {
	return &models.Vehicle{ID: id}, nil
}

func (m *vehicleServiceMock) Update(ctx context.Context, actor *models.User, id int64, req models.UpdateVehicleRequest, image *multipart.FileHeader) (*models.Vehicle, error) {
	m.updateRequest, m.image = req, image
	return &models.Vehicle{ID: id, Plate: req.Plate}, nil
}

func (m *vehicleServiceMock) Delete(ctx context.Context, actor *models.User, id int64) error {
	m.deletedID = id
	return nil
}

func TestVehicleHandlerCreateMultipart(t *testing.T) {
	svc := &vehicleServiceMock{}
	handler := NewVehicleHandler(svc)
	c, w := multipartContext(t, http.MethodPost, "/vehicles", map[string]string{
		"make": "Toyota", "model": "Corolla", "year": "2018", "color": "Rojo", "plate": "ABC123", "client_email": "ana@example.com",
	}, map[string]string{"image": "car.jpg"}, staff())

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2018, svc.created.Year)
	assert.Equal(t, "ana@example.com", svc.created.ClientEmail)
	require.NotNil(t, svc.image)
	assert.Equal(t, "car.jpg", svc.image.Filename)
}

func TestVehicleHandlerCreateJSONWithoutImage(t *testing.T) {
	svc := &vehicleServiceMock{}
	handler := NewVehicleHandler(svc)
	c, w := jsonContext(t, http.MethodPost, "/vehicles", models.CreateVehicleRequest{Make: "Kia", Model: "Rio", Year: 2020, Color: "Gris", Plate: "KIA001", ClientEmail: "b@example.com"}, staff())

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "KIA001", svc.created.Plate)
	assert.Nil(t, svc.image)
}

func TestVehicleHandlerListQuery(t *testing.T) {
	svc := &vehicleServiceMock{}
	handler := NewVehicleHandler(svc)
	c, w := newContext(t, http.MethodGet, "/vehicles?page=3&limit=10", nil, "", client())

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.page)
	assert.Equal(t, 10, svc.size)
	assert.NotNil(t, decode(t, w).Pagination)
}

func TestVehicleHandlerInvalidID(t *testing.T) {
	svc := &vehicleServiceMock{}
	handler := NewVehicleHandler(svc)
	c, w := newContext(t, http.MethodDelete, "/vehicles/abc", nil, "", staff())
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.deletedID)
}

func TestVehicleHandlerDelete(t *testing.T) {
	svc := &vehicleServiceMock{}
	handler := NewVehicleHandler(svc)
	c, w := newContext(t, http.MethodDelete, "/vehicles/7", nil, "", staff())
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(7), svc.deletedID)
}
