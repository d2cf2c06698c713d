package models

import "time"

// Invoice statuses.
const (
	InvoiceStatusPaid    = "Pagado"
	InvoiceStatusPending = "Pendiente"
)

// Invoice is an immutable snapshot of a finished repair's price.
type Invoice struct {
	ID            int64     `db:"id" json:"id"`
	InvoiceNumber string    `db:"invoice_number" json:"invoice_number"`
	IssuedOn      time.Time `db:"issued_on" json:"issued_on"`
	Subtotal      float64   `db:"subtotal" json:"subtotal"`
	Total         float64   `db:"total" json:"total"`
	Status        string    `db:"status" json:"status"`
	RepairID      int64     `db:"repair_id" json:"repair_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// InvoiceListItem adds the client name and a vehicle label.
type InvoiceListItem struct {
	Invoice
	ClientName string `db:"client_name" json:"client_name"`
	Vehicle    string `db:"vehicle" json:"vehicle"`
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	UserID *int64
}

// CreateInvoiceRequest issues an invoice for a finished repair.
type CreateInvoiceRequest struct {
	RepairID int64  `json:"repair_id" validate:"required,gt=0"`
	Status   string `json:"status" validate:"omitempty,oneof=Pagado Pendiente"`
}

// InvoiceDetail is an invoice with everything printed on it.
type InvoiceDetail struct {
	Invoice  Invoice       `json:"invoice"`
	Client   UserInfo      `json:"client"`
	Vehicle  Vehicle       `json:"vehicle"`
	Repair   Repair        `json:"repair"`
	Services []ServiceItem `json:"services"`
}
