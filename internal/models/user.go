package models

import "time"

// User represents an account stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Mobile       *string   `db:"mobile" json:"mobile,omitempty"`
	Role         Role      `db:"role_id" json:"role_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Info strips credentials for responses.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, FullName: u.FullName, Email: u.Email, Phone: u.Phone, Mobile: u.Mobile, Role: u.Role}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *Role
	Search   string
	Page     int
	PageSize int
}

// UpdateProfileRequest is the self-service edit payload.
type UpdateProfileRequest struct {
	FullName string  `json:"full_name" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Mobile   *string `json:"mobile" validate:"omitempty,max=30"`
}

// AdminUpdateUserRequest lets admins edit a profile and its role together.
type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	Role Role `json:"role_id" validate:"required"`
}

// ChangeRoleRequest switches a user's role.
type ChangeRoleRequest struct {
	Role Role `json:"role_id" validate:"required"`
}

// ChangePasswordRequest sets a new password.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives the page count from the totals.
func NewPagination(page, pageSize, total int) *Pagination {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &Pagination{Page: page, PageSize: pageSize, TotalCount: total, TotalPages: pages}
}
