package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/pkg/response"
)

type serviceItemService interface {
	Create(ctx context.Context, actor *models.User, req models.ServiceRequest) (*models.ServiceSaved, error)
	Update(ctx context.Context, actor *models.User, id int64, req models.ServiceRequest) (*models.ServiceSaved, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	ListByRepair(ctx context.Context, actor *models.User, repairID int64) ([]models.ServiceWithParts, error)
	Detail(ctx context.Context, actor *models.User, id int64) (*models.ServiceDetail, error)
}

// ServiceItemHandler exposes the work lines of a repair.
type ServiceItemHandler struct {
	service serviceItemService
}

// NewServiceItemHandler builds a service handler.
func NewServiceItemHandler(svc serviceItemService) *ServiceItemHandler {
	return &ServiceItemHandler{service: svc}
}

// Create godoc
// @Summary Add service to repair
// @Description Stores the service with its spare parts and reprices the repair.
// @Tags Services
// @Accept json
// @Produce json
// @Param payload body models.ServiceRequest true "Service payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services [post]
func (h *ServiceItemHandler) Create(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid service payload"))
		return
	}

	saved, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// ListByRepair godoc
// @Summary List services of a repair
// @Tags Services
// @Produce json
// @Param repair_id path int true "Repair ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /services/repair/{repair_id} [get]
func (h *ServiceItemHandler) ListByRepair(c *gin.Context) {
	repairID, ok := idParam(c, "repair_id")
	if !ok {
		return
	}
	services, err := h.service.ListByRepair(c.Request.Context(), actorFromContext(c), repairID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, services, nil)
}

// Detail godoc
// @Summary Service breakdown
// @Tags Services
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id}/detail [get]
func (h *ServiceItemHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update service
// @Tags Services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param payload body models.ServiceRequest true "Service payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id} [put]
func (h *ServiceItemHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid service payload"))
		return
	}

	saved, err := h.service.Update(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// Delete godoc
// @Summary Delete service
// @Tags Services
// @Param id path int true "Service ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id} [delete]
func (h *ServiceItemHandler) Delete(c *gin.Context) {
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
