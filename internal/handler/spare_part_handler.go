package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
	"github.com/autocare/autocare-api/pkg/response"
)

type sparePartService interface {
	List(ctx context.Context, actor *models.User, filter models.SparePartFilter) ([]models.SparePart, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.SparePart, error)
	Create(ctx context.Context, actor *models.User, req models.SparePartRequest) (*models.SparePart, error)
	Update(ctx context.Context, actor *models.User, id int64, patch models.SparePartPatch) (*models.SparePart, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// SparePartHandler exposes the spare part catalogue.
type SparePartHandler struct {
	service sparePartService
}

// NewSparePartHandler builds a spare part handler.
func NewSparePartHandler(svc sparePartService) *SparePartHandler {
	return &SparePartHandler{service: svc}
}

// List godoc
// @Summary List spare parts
// @Description Non-admins only see active parts.
// @Tags SpareParts
// @Produce json
// @Param category_id query int false "Category filter"
// @Param active query bool false "Active filter (admins)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /spare-parts [get]
func (h *SparePartHandler) List(c *gin.Context) {
	var filter models.SparePartFilter
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid active"))
			return
		}
		filter.Active = &active
	}

	parts, err := h.service.List(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parts, nil)
}

// Get godoc
// @Summary Get spare part
// @Tags SpareParts
// @Produce json
// @Param id path int true "Spare part ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /spare-parts/{id} [get]
func (h *SparePartHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	part, err := h.service.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, part, nil)
}

// Create godoc
// @Summary Create spare part
// @Tags SpareParts
// @Accept json
// @Produce json
// @Param payload body models.SparePartRequest true "Spare part payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /spare-parts [post]
func (h *SparePartHandler) Create(c *gin.Context) {
	var req models.SparePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid spare part payload"))
		return
	}

	part, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, part)
}

// Update godoc
// @Summary Update spare part
// @Description Partial update, omitted fields keep their value.
// @Tags SpareParts
// @Accept json
// @Produce json
// @Param id path int true "Spare part ID"
// @Param payload body models.SparePartPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /spare-parts/{id} [put]
func (h *SparePartHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var patch models.SparePartPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, bindError(err, "invalid spare part payload"))
		return
	}

	part, err := h.service.Update(c.Request.Context(), actorFromContext(c), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, part, nil)
}

// Delete godoc
// @Summary Deactivate spare part
// @Tags SpareParts
// @Param id path int true "Spare part ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /spare-parts/{id} [delete]
func (h *SparePartHandler) Delete(c *gin.Context) {
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
