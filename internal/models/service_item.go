package models

import "time"

// ServiceItem is a billable unit of work inside a repair.
type ServiceItem struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	StartDate   *time.Time `db:"start_date" json:"start_date"`
	EndDate     *time.Time `db:"end_date" json:"end_date"`
	LaborCost   float64    `db:"labor_cost" json:"labor_cost"`
	Price       float64    `db:"price" json:"price"`
	RepairID    int64      `db:"repair_id" json:"repair_id"`
}

// ServicePart attaches a quantity of a spare part to a service.
type ServicePart struct {
	SparePartID int64 `json:"spare_part_id" db:"spare_part_id" validate:"required,gt=0"`
	Quantity    int   `json:"quantity" db:"quantity" validate:"gte=0"`
}

// ServicePartLine is a part row as priced for display.
type ServicePartLine struct {
	ServiceID   int64   `db:"service_id" json:"-"`
	SparePartID int64   `db:"spare_part_id" json:"spare_part_id"`
	Name        string  `db:"name" json:"name"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
	Active      bool    `db:"active" json:"active"`
}

// ServiceWithParts is a service together with its part lines.
type ServiceWithParts struct {
	ServiceItem
	SpareParts []ServicePartLine `json:"spare_parts"`
}

// ServiceRequest creates or replaces a service and its parts. Dates use DateLayout.
type ServiceRequest struct {
	Name        string        `json:"name" validate:"required,max=150"`
	Description string        `json:"description" validate:"required"`
	RepairID    int64         `json:"repair_id" validate:"required,gt=0"`
	StartDate   string        `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string        `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	LaborCost   float64       `json:"labor_cost" validate:"gte=0"`
	SpareParts  []ServicePart `json:"spare_parts" validate:"dive"`
}

// ServiceSaved is returned after a service write.
type ServiceSaved struct {
	ServiceID  int64   `json:"service_id"`
	TotalPrice float64 `json:"total_price"`
}

// ServiceDetail breaks a service price into labor and parts.
type ServiceDetail struct {
	Service         ServiceItem       `json:"service"`
	RepairStartDate time.Time         `json:"repair_start_date"`
	RepairEndDate   *time.Time        `json:"repair_end_date"`
	RepairStatus    string            `json:"repair_status"`
	SpareParts      []ServicePartLine `json:"spare_parts"`
	SparePartsTotal float64           `json:"spare_parts_total"`
	LaborCost       float64           `json:"labor_cost"`
}
