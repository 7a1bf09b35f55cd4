package models

import (
	"strings"
	"time"
)

// Customer is a repeat buyer, keyed in practice by phone number. Phone and
// Address are optional; a customer without a phone can only be linked to
// invoices by explicit id.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name    string  `gorm:"size:255;not null" json:"name"`
	Phone   *string `gorm:"size:50;uniqueIndex" json:"phone,omitempty"`
	Address *string `gorm:"size:500" json:"address,omitempty"`

	Invoices []Invoice `gorm:"foreignKey:CustomerID" json:"invoices,omitempty"`
}

// NormalizePhone trims a phone value and maps blank to nil. Phones are
// stored either as a real number or as NULL, never as an empty string:
// the unique index must keep allowing many customers without a phone.
func NormalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
