package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/service"
	"github.com/autocare/autocare-api/pkg/response"
)

type invoiceService interface {
	Create(ctx context.Context, actor *models.User, req models.CreateInvoiceRequest) (*models.Invoice, bool, error)
	List(ctx context.Context, actor *models.User) ([]models.InvoiceListItem, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.InvoiceDetail, error)
	PDF(ctx context.Context, actor *models.User, id int64) (*service.ExportResult, error)
	Export(ctx context.Context, actor *models.User, format string) (*service.ExportResult, error)
}

// InvoiceHandler exposes invoice endpoints.
type InvoiceHandler struct {
	service invoiceService
}

// NewInvoiceHandler builds an invoice handler.
func NewInvoiceHandler(svc invoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: svc}
}

// Create godoc
// @Summary Issue invoice
// @Description Issues the invoice of a finished repair. Returns the existing invoice with 200 when one was already issued.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body models.CreateInvoiceRequest true "Invoice payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid invoice payload"))
		return
	}

	invoice, created, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !created {
		response.JSON(c, http.StatusOK, invoice, nil, map[string]interface{}{"message": "invoice already exists for repair"})
		return
	}
	response.Created(c, invoice)
}

// List godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get invoice
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// PDF godoc
// @Summary Download invoice PDF
// @Tags Invoices
// @Produce application/pdf
// @Param id path int true "Invoice ID"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, err := h.service.PDF(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}

// Export godoc
// @Summary Export invoice list
// @Tags Invoices
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param format query string false "xlsx (default) or csv"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), actorFromContext(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}
