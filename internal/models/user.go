package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages owned by the user; removed together with the user
	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// CreateUserRequest is the request structure for creating a new user
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest carries the fields a client wants changed.
// Nil or blank fields are left untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserChanges is the normalised partial update handed to the repository
type UserChanges struct {
	Name  *string
	Email *string
}

// Empty reports whether no field is being changed
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil
}
