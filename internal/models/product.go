package models

import "time"

// Product is one catalog entry. Quantity is the stock on hand in Unit;
// fractional values are normal for loose material sold by volume or weight.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Unit     string  `gorm:"size:50;not null" json:"unit"`
	Price    float64 `gorm:"not null" json:"price"`
	Category string  `gorm:"size:100" json:"category"`
	Quantity float64 `gorm:"not null;default:0" json:"quantity"`
}
