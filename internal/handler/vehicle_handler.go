package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/pkg/response"
)

type vehicleService interface {
	Create(ctx context.Context, actor *models.User, req models.CreateVehicleRequest, image *multipart.FileHeader) (*models.Vehicle, error)
	List(ctx context.Context, actor *models.User, page, pageSize int) ([]models.VehicleListItem, *models.Pagination, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.Vehicle, error)
	Update(ctx context.Context, actor *models.User, id int64, req models.UpdateVehicleRequest, image *multipart.FileHeader) (*models.Vehicle, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// VehicleHandler exposes vehicle endpoints.
type VehicleHandler struct {
	service vehicleService
}

// NewVehicleHandler builds a vehicle handler.
func NewVehicleHandler(svc vehicleService) *VehicleHandler {
	return &VehicleHandler{service: svc}
}

// Create godoc
// @Summary Register vehicle
// @Description Register a vehicle for an existing client. Accepts multipart with an optional image.
// @Tags Vehicles
// @Accept multipart/form-data,json
// @Produce json
// @Param payload body models.CreateVehicleRequest true "Vehicle payload"
// @Param image formData file false "Vehicle image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	var req models.CreateVehicleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid vehicle payload"))
		return
	}

	vehicle, err := h.service.Create(c.Request.Context(), actorFromContext(c), req, optionalFile(c, "image"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, vehicle)
}

// List godoc
// @Summary List vehicles
// @Tags Vehicles
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), actorFromContext(c), queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get vehicle
// @Tags Vehicles
// @Produce json
// @Param id path int true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	vehicle, err := h.service.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicle, nil)
}

// Update godoc
// @Summary Update vehicle
// @Description A new image replaces the stored one.
// @Tags Vehicles
// @Accept multipart/form-data,json
// @Produce json
// @Param id path int true "Vehicle ID"
// @Param payload body models.UpdateVehicleRequest true "Vehicle payload"
// @Param image formData file false "Vehicle image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateVehicleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid vehicle payload"))
		return
	}

	vehicle, err := h.service.Update(c.Request.Context(), actorFromContext(c), id, req, optionalFile(c, "image"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicle, nil)
}

// Delete godoc
// @Summary Delete vehicle
// @Tags Vehicles
// @Param id path int true "Vehicle ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
