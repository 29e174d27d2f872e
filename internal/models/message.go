package models

import (
	"time"
)

// Message represents a chat message written by a user
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}

// CreateMessageRequest is the request structure for posting a message
type CreateMessageRequest struct {
	Content string `json:"content"`
	UserID  *uint  `json:"user_id"`
}

// UpdateMessageRequest is the request structure for editing a message
type UpdateMessageRequest struct {
	Content string `json:"content"`
}
