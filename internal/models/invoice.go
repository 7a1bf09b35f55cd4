package models

import "time"

// WalkInName is the sentinel customer name for anonymous counter sales.
// Invoices carrying it are never linked to a Customer row.
const WalkInName = "Khách lẻ"

// Invoice is an immutable record of one completed sale. CustomerName and
// CustomerPhone are snapshots: they stay valid even if the linked customer
// is edited or deleted. Only the correction fields (customerName,
// customerPhone, note) may change after creation.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CustomerID    *uint     `gorm:"index" json:"customerId"`
	Customer      *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName  string    `gorm:"size:255;not null" json:"customerName"`
	CustomerPhone *string   `gorm:"size:50" json:"customerPhone,omitempty"`

	Date        time.Time `gorm:"not null;index" json:"date"`
	TotalAmount float64   `gorm:"not null" json:"totalAmount"`
	Note        *string   `gorm:"size:1000" json:"note,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// IsWalkIn reports whether this sale was made to an anonymous guest.
func (i *Invoice) IsWalkIn() bool {
	return i.CustomerID == nil && i.CustomerName == WalkInName
}

// ComputedTotal sums the line totals. It must always equal TotalAmount.
func (i *Invoice) ComputedTotal() float64 {
	var total float64
	for _, item := range i.Items {
		total += item.Total
	}
	return total
}

// InvoiceItem is a denormalized snapshot of a product at sale time.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoiceId"`

	ProductID   uint    `gorm:"not null" json:"productId"`
	ProductName string  `gorm:"size:255;not null" json:"productName"`
	Unit        string  `gorm:"size:50;not null" json:"unit"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Price       float64 `gorm:"not null" json:"price"`
	Total       float64 `gorm:"not null" json:"total"`
}

// LineTotal recomputes price × quantity. The stored Total is always set
// from this, never trusted from the caller.
func (it *InvoiceItem) LineTotal() float64 {
	return it.Price * it.Quantity
}
