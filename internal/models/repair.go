package models

import "time"

// Repair statuses with behaviour attached to them. Other statuses are free text.
const (
	RepairStatusFinished = "Finalizado"
	RepairStatusApproved = "Aprobada por el cliente"
	RepairStatusRejected = "Rechazado por el cliente"
)

// Quote decisions a client can record.
const (
	QuoteApproved = "aprobada"
	QuoteRejected = "rechazada"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Repair is a work order on a vehicle. Price is derived from its services.
type Repair struct {
	ID                  int64      `db:"id" json:"id"`
	RepairType          string     `db:"repair_type" json:"repair_type"`
	Description         *string    `db:"description" json:"description"`
	StartDate           time.Time  `db:"start_date" json:"start_date"`
	EndDate             *time.Time `db:"end_date" json:"end_date"`
	Status              string     `db:"status" json:"status"`
	Price               *float64   `db:"price" json:"price"`
	ImageBefore         *string    `db:"image_before" json:"image_before"`
	ImageAfter          *string    `db:"image_after" json:"image_after"`
	InternalNotes       *string    `db:"internal_notes" json:"internal_notes,omitempty"`
	NextMaintenanceDate *time.Time `db:"next_maintenance_date" json:"next_maintenance_date"`
	VehicleID           int64      `db:"vehicle_id" json:"vehicle_id"`
	MechanicID          *int64     `db:"mechanic_id" json:"mechanic_id"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// RepairListItem joins vehicle and client columns onto a repair.
type RepairListItem struct {
	Repair
	VehicleModel string `db:"vehicle_model" json:"vehicle_model"`
	VehiclePlate string `db:"vehicle_plate" json:"vehicle_plate"`
	ClientName   string `db:"client_name" json:"client_name"`
	OwnerID      int64  `db:"owner_id" json:"owner_id"`
	HasServices  bool   `db:"has_services" json:"has_services"`
}

// RepairFilter narrows repair listings.
type RepairFilter struct {
	OwnerID   *int64
	VehicleID *int64
}

// RepairRequest carries the editable repair fields. Dates use DateLayout.
type RepairRequest struct {
	RepairType          string  `form:"repair_type" json:"repair_type" validate:"required,max=120"`
	Description         *string `form:"description" json:"description"`
	StartDate           string  `form:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string  `form:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status              string  `form:"status" json:"status" validate:"required,max=60"`
	InternalNotes       *string `form:"internal_notes" json:"internal_notes"`
	NextMaintenanceDate string  `form:"next_maintenance_date" json:"next_maintenance_date" validate:"omitempty,datetime=2006-01-02"`
	VehicleID           int64   `form:"vehicle_id" json:"vehicle_id" validate:"required,gt=0"`
}

// QuoteDecisionRequest records a client's answer to a quote.
type QuoteDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=aprobada rechazada"`
}

// QuoteApproval is an append-only record of a quote decision.
type QuoteApproval struct {
	ID        int64     `db:"id" json:"id"`
	RepairID  int64     `db:"repair_id" json:"repair_id"`
	ClientID  int64     `db:"client_id" json:"client_id"`
	Decision  string    `db:"decision" json:"decision"`
	DecidedAt time.Time `db:"decided_at" json:"decided_at"`
}
