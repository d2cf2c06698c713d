package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/pkg/response"
)

type repairService interface {
	Create(ctx context.Context, actor *models.User, req models.RepairRequest, before *multipart.FileHeader) (*models.Repair, error)
	List(ctx context.Context, actor *models.User) ([]models.RepairListItem, error)
	ListByVehicle(ctx context.Context, actor *models.User, identifier string) ([]models.RepairListItem, error)
	UpcomingMaintenance(ctx context.Context, actor *models.User) ([]models.RepairListItem, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.RepairListItem, error)
	Update(ctx context.Context, actor *models.User, id int64, req models.RepairRequest, before, after *multipart.FileHeader) (*models.Repair, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	DecideQuote(ctx context.Context, actor *models.User, id int64, req models.QuoteDecisionRequest) (*models.RepairListItem, error)
}

// RepairHandler exposes repair endpoints.
type RepairHandler struct {
	service repairService
}

// NewRepairHandler builds a repair handler.
func NewRepairHandler(svc repairService) *RepairHandler {
	return &RepairHandler{service: svc}
}

// Create godoc
// @Summary Open repair
// @Description The acting staff member becomes the repair's mechanic.
// @Tags Repairs
// @Accept multipart/form-data,json
// @Produce json
// @Param payload body models.RepairRequest true "Repair payload"
// @Param image_before formData file false "Image before the repair"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /repairs [post]
func (h *RepairHandler) Create(c *gin.Context) {
	var req models.RepairRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid repair payload"))
		return
	}

	repair, err := h.service.Create(c.Request.Context(), actorFromContext(c), req, optionalFile(c, "image_before"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, repair)
}

// List godoc
// @Summary List repairs
// @Tags Repairs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /repairs [get]
func (h *RepairHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListByVehicle godoc
// @Summary List repairs of a vehicle
// @Tags Repairs
// @Produce json
// @Param identifier path string true "Vehicle ID or plate"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /repairs/vehicle/{identifier} [get]
func (h *RepairHandler) ListByVehicle(c *gin.Context) {
	items, err := h.service.ListByVehicle(c.Request.Context(), actorFromContext(c), c.Param("identifier"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpcomingMaintenance godoc
// @Summary Upcoming maintenance
// @Description Repairs of the current client due for maintenance today or tomorrow
// @Tags Repairs
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /repairs/upcoming-maintenance [get]
func (h *RepairHandler) UpcomingMaintenance(c *gin.Context) {
	items, err := h.service.UpcomingMaintenance(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get repair
// @Tags Repairs
// @Produce json
// @Param id path int true "Repair ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /repairs/{id} [get]
func (h *RepairHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update repair
// @Tags Repairs
// @Accept multipart/form-data,json
// @Produce json
// @Param id path int true "Repair ID"
// @Param payload body models.RepairRequest true "Repair payload"
// @Param image_before formData file false "Image before the repair"
// @Param image_after formData file false "Image after the repair"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /repairs/{id} [put]
func (h *RepairHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.RepairRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid repair payload"))
		return
	}

	repair, err := h.service.Update(c.Request.Context(), actorFromContext(c), id, req, optionalFile(c, "image_before"), optionalFile(c, "image_after"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, repair, nil)
}

// Delete godoc
// @Summary Delete repair
// @Tags Repairs
// @Param id path int true "Repair ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /repairs/{id} [delete]
func (h *RepairHandler) Delete(c *gin.Context) {
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

// DecideQuote godoc
// @Summary Approve or reject a quote
// @Tags Repairs
// @Accept json
// @Produce json
// @Param id path int true "Repair ID"
// @Param payload body models.QuoteDecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /repairs/{id}/quote-decision [patch]
func (h *RepairHandler) DecideQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.QuoteDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid decision payload"))
		return
	}

	item, err := h.service.DecideQuote(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
