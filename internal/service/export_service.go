package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/pkg/export"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

// Supported tabular export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

var invoiceListHeaders = []string{"Factura", "Fecha", "Cliente", "Vehículo", "Estado", "Subtotal", "Total"}

type pdfRenderer interface {
	Render(doc export.InvoiceDocument) ([]byte, error)
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService turns invoices into PDF documents and list spreadsheets.
type ExportService struct {
	pdf       pdfRenderer
	exporters map[string]export.Exporter
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(pdf pdfRenderer, logger *zap.Logger, exporters ...export.Exporter) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewInvoicePDF()
	}
	if len(exporters) == 0 {
		exporters = []export.Exporter{export.NewXLSXExporter(), export.NewCSVExporter()}
	}
	byFormat := make(map[string]export.Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Extension()] = e
	}
	return &ExportService{pdf: pdf, exporters: byFormat, logger: logger}
}

// InvoicePDF renders one invoice as factura-<number>.pdf.
func (s *ExportService) InvoicePDF(detail *models.InvoiceDetail) (*ExportResult, error) {
	doc := export.InvoiceDocument{
		Number:   detail.Invoice.InvoiceNumber,
		IssuedOn: detail.Invoice.IssuedOn,
		Status:   detail.Invoice.Status,
		Client: export.InvoiceParty{
			Name:   detail.Client.FullName,
			Email:  detail.Client.Email,
			Phone:  deref(detail.Client.Phone),
			Mobile: deref(detail.Client.Mobile),
		},
		Vehicle: export.InvoiceVehicle{
			Make:  detail.Vehicle.Make,
			Model: detail.Vehicle.Model,
			Year:  detail.Vehicle.Year,
			Plate: detail.Vehicle.Plate,
			Color: detail.Vehicle.Color,
		},
		Repair: export.InvoiceRepair{
			Type:        detail.Repair.RepairType,
			Description: deref(detail.Repair.Description),
			StartDate:   &detail.Repair.StartDate,
			EndDate:     detail.Repair.EndDate,
		},
		Subtotal: detail.Invoice.Subtotal,
		Total:    detail.Invoice.Total,
	}
	for _, svc := range detail.Services {
		doc.Lines = append(doc.Lines, export.InvoiceLine{Name: svc.Name, Description: svc.Description, Price: svc.Price})
	}

	data, err := s.pdf.Render(doc)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render invoice pdf")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("factura-%s.pdf", detail.Invoice.InvoiceNumber),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// InvoiceList renders the invoice listing in the requested format.
func (s *ExportService) InvoiceList(items []models.InvoiceListItem, format string, now time.Time) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatXLSX
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset := export.Dataset{Title: "Facturas", Headers: invoiceListHeaders}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Factura":  item.InvoiceNumber,
			"Fecha":    item.IssuedOn.Format(models.DateLayout),
			"Cliente":  item.ClientName,
			"Vehículo": item.Vehicle,
			"Estado":   item.Status,
			"Subtotal": fmt.Sprintf("%.2f", item.Subtotal),
			"Total":    fmt.Sprintf("%.2f", item.Total),
		})
	}

	data, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render invoice export")
	}
	s.logger.Debug("invoice export rendered", zap.String("format", format), zap.Int("rows", len(items)))
	return &ExportResult{
		Filename:    fmt.Sprintf("facturas-%s.%s", now.Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
