package models

import "time"

// Vehicle is a client-owned car registered by the shop.
type Vehicle struct {
	ID        int64     `db:"id" json:"id"`
	Make      string    `db:"make" json:"make"`
	Model     string    `db:"model" json:"model"`
	Year      int       `db:"year" json:"year"`
	Color     string    `db:"color" json:"color"`
	Plate     string    `db:"plate" json:"plate"`
	Image     *string   `db:"image" json:"image"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// VehicleListItem adds the owner name and the most recent mechanic.
type VehicleListItem struct {
	Vehicle
	ClientName   string  `db:"client_name" json:"client_name"`
	LastMechanic *string `db:"last_mechanic" json:"last_mechanic"`
}

// VehicleFilter narrows vehicle listings.
type VehicleFilter struct {
	OwnerID  *int64
	Page     int
	PageSize int
}

// CreateVehicleRequest registers a vehicle for an existing client.
type CreateVehicleRequest struct {
	Make        string `form:"make" json:"make" validate:"required,max=80"`
	Model       string `form:"model" json:"model" validate:"required,max=80"`
	Year        int    `form:"year" json:"year" validate:"required,gte=1900,lte=2100"`
	Color       string `form:"color" json:"color" validate:"required,max=40"`
	Plate       string `form:"plate" json:"plate" validate:"required,max=20"`
	ClientEmail string `form:"client_email" json:"client_email" validate:"required,email"`
}

// UpdateVehicleRequest replaces the descriptive fields of a vehicle.
type UpdateVehicleRequest struct {
	Make  string `form:"make" json:"make" validate:"required,max=80"`
	Model string `form:"model" json:"model" validate:"required,max=80"`
	Year  int    `form:"year" json:"year" validate:"required,gte=1900,lte=2100"`
	Color string `form:"color" json:"color" validate:"required,max=40"`
	Plate string `form:"plate" json:"plate" validate:"required,max=20"`
}
