package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/service"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type invoiceServiceMock struct {
	created bool
	format  string
	pdfErr  error
}

func (m *invoiceServiceMock) Create(ctx context.Context, actor *models.User, req models.CreateInvoiceRequest) (*models.Invoice, bool, error) {
	return &models.Invoice{ID: 1, RepairID: req.RepairID, InvoiceNumber: "FAC-2025-0042"}, m.created, nil
}

func (m *invoiceServiceMock) List(ctx context.Context, actor *models.User) ([]models.InvoiceListItem, error) {
	return []models.InvoiceListItem{}, nil
}

func (m *invoiceServiceMock) Get(ctx context.Context, actor *models.User, id int64) (*models.InvoiceDetail, error) {
	return &models.InvoiceDetail{}, nil
}

func (m *invoiceServiceMock) PDF(ctx context.Context, actor *models.User, id int64) (*service.ExportResult, error) {
	if m.pdfErr != nil {
		return nil, m.pdfErr
	}
	return &service.ExportResult{Filename: "factura-FAC-2025-0042.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

func (m *invoiceServiceMock) Export(ctx context.Context, actor *models.User, format string) (*service.ExportResult, error) {
	m.format = format
	return &service.ExportResult{Filename: "facturas.csv", ContentType: "text/csv", Data: []byte("a,b\n")}, nil
}

func TestInvoiceHandlerCreateNew(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceMock{created: true})
	c, w := jsonContext(t, http.MethodPost, "/invoices", map[string]int64{"repair_id": 3}, staff())

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, decode(t, w).Meta)
}

func TestInvoiceHandlerCreateExisting(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceMock{created: false})
	c, w := jsonContext(t, http.MethodPost, "/invoices", map[string]int64{"repair_id": 3}, staff())

	handler.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "invoice already exists for repair", env.Meta["message"])
	assert.Contains(t, string(env.Data), "FAC-2025-0042")
}

func TestInvoiceHandlerPDF(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceMock{})
	c, w := newContext(t, http.MethodGet, "/invoices/1/pdf", nil, "", client())
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.PDF(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="factura-FAC-2025-0042.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestInvoiceHandlerPDFForbidden(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceMock{pdfErr: appErrors.Clone(appErrors.ErrForbidden, "not your invoice")})
	c, w := newContext(t, http.MethodGet, "/invoices/1/pdf", nil, "", client())
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.PDF(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvoiceHandlerExportPassesFormat(t *testing.T) {
	svc := &invoiceServiceMock{}
	handler := NewInvoiceHandler(svc)
	c, w := newContext(t, http.MethodGet, "/invoices/export?format=csv", nil, "", staff())

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, "a,b\n", w.Body.String())
}
