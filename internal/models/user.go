package models

import "time"

// User is a staff account able to obtain a bearer token.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed
}
