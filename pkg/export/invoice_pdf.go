package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const dateLayout = "02/01/2006"

// InvoiceParty is the billed client.
type InvoiceParty struct {
	Name   string
	Email  string
	Phone  string
	Mobile string
}

// InvoiceVehicle describes the repaired vehicle.
type InvoiceVehicle struct {
	Make  string
	Model string
	Year  int
	Plate string
	Color string
}

// InvoiceRepair summarises the work order being billed.
type InvoiceRepair struct {
	Type        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// InvoiceLine is one billed service.
type InvoiceLine struct {
	Name        string
	Description string
	Price       float64
}

// InvoiceDocument carries everything printed on an invoice.
type InvoiceDocument struct {
	Number   string
	IssuedOn time.Time
	Status   string
	Client   InvoiceParty
	Vehicle  InvoiceVehicle
	Repair   InvoiceRepair
	Lines    []InvoiceLine
	Subtotal float64
	Total    float64
}

// InvoicePDF renders invoices with gofpdf.
type InvoicePDF struct {
	company string
	tagline string
}

// NewInvoicePDF constructs the renderer with the shop branding.
func NewInvoicePDF() *InvoicePDF {
	return &InvoicePDF{company: "AutoCare Service", tagline: "Sistema de Gestión de Taller Mecánico"}
}

// Render lays out header, client, vehicle, repair, services and totals on an A4 page.
func (r *InvoicePDF) Render(doc InvoiceDocument) ([]byte, error) {
	if doc.Number == "" {
		return nil, fmt.Errorf("invoice number is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr("Gracias por confiar en "+r.company), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(45, 53, 115)
	pdf.CellFormat(0, 10, tr(r.company), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, tr(r.tagline), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(90, 8, "FACTURA", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, tr("Número de Factura: "+doc.Number), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Fecha: "+doc.IssuedOn.Format(dateLayout), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Estado: "+tr(doc.Status), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(45, 53, 115)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(0, 0, 0)
	}
	line := func(label, value string) {
		if value == "" {
			return
		}
		pdf.CellFormat(0, 5, tr(label+": "+value), "", 1, "L", false, 0, "")
	}

	section("Información del Cliente")
	line("Nombre", doc.Client.Name)
	line("Email", doc.Client.Email)
	line("Teléfono", doc.Client.Phone)
	line("Celular", doc.Client.Mobile)
	pdf.Ln(4)

	section("Información del Vehículo")
	line("Marca", doc.Vehicle.Make)
	line("Modelo", doc.Vehicle.Model)
	year := "N/A"
	if doc.Vehicle.Year > 0 {
		year = fmt.Sprintf("%d", doc.Vehicle.Year)
	}
	line("Año", year)
	line("Placa", doc.Vehicle.Plate)
	line("Color", doc.Vehicle.Color)
	pdf.Ln(4)

	section("Información de la Reparación")
	line("Tipo", doc.Repair.Type)
	description := doc.Repair.Description
	if description == "" {
		description = "N/A"
	}
	line("Descripción", description)
	if doc.Repair.StartDate != nil {
		line("Fecha Inicio", doc.Repair.StartDate.Format(dateLayout))
	}
	if doc.Repair.EndDate != nil {
		line("Fecha Fin", doc.Repair.EndDate.Format(dateLayout))
	}
	pdf.Ln(4)

	section("Servicios Realizados")
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(45, 53, 115)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(55, 8, "Servicio", "1", 0, "L", true, 0, "")
	pdf.CellFormat(85, 8, tr("Descripción"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(34, 8, "Precio", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	if len(doc.Lines) == 0 {
		pdf.CellFormat(174, 7, "Sin servicios registrados", "1", 1, "C", false, 0, "")
	}
	for i, l := range doc.Lines {
		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 245)
		pdf.CellFormat(55, 7, tr(truncate(l.Name, 32)), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(85, 7, tr(truncate(l.Description, 52)), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(34, 7, money(l.Price), "1", 1, "R", fill, 0, "")
	}
	pdf.Ln(6)

	pdf.SetX(112)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(40, 7, "Subtotal:", "LT", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, money(doc.Subtotal), "TR", 1, "R", false, 0, "")
	pdf.SetX(112)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 9, "TOTAL:", "LB", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, money(doc.Total), "RB", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
