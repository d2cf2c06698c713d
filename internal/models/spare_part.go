package models

// SparePart is an inventory item. Inactive parts are soft-deleted.
type SparePart struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	UnitPrice    float64 `db:"unit_price" json:"unit_price"`
	CategoryID   int64   `db:"category_id" json:"category_id"`
	CategoryName string  `db:"category_name" json:"category_name,omitempty"`
	Description  *string `db:"description" json:"description"`
	Active       bool    `db:"active" json:"active"`
}

// SparePartFilter narrows spare part listings.
type SparePartFilter struct {
	CategoryID *int64
	Active     *bool
}

// SparePartRequest creates a spare part.
type SparePartRequest struct {
	Name        string   `json:"name" validate:"required,max=150"`
	UnitPrice   *float64 `json:"unit_price" validate:"required,gte=0"`
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	Description *string  `json:"description"`
	Active      *bool    `json:"active"`
}

// SparePartPatch is a partial update; nil fields are left untouched.
type SparePartPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=150"`
	UnitPrice   *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	Description *string  `json:"description"`
	Active      *bool    `json:"active"`
}

// Empty is true when the patch carries no fields.
func (p SparePartPatch) Empty() bool {
	return p.Name == nil && p.UnitPrice == nil && p.CategoryID == nil && p.Description == nil && p.Active == nil
}

// Category groups spare parts.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CategorySummary is a category with its active part count.
type CategorySummary struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	ActiveParts int    `db:"active_parts" json:"active_parts"`
}

// CategoryDetail is a category with its parts.
type CategoryDetail struct {
	Category   Category    `json:"category"`
	SpareParts []SparePart `json:"spare_parts"`
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
