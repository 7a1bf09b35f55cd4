package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/models"
)

// totalTolerance is how far a caller-supplied line total may drift from
// price × quantity before the sale is rejected (float round-off only).
const totalTolerance = 1e-6

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// InvoiceService owns the one write path that produces invoices, plus the
// read paths (listing, stats) built on top of them.
type InvoiceService struct {
	db       *gorm.DB
	resolver *CustomerResolver
}

func NewInvoiceService(db *gorm.DB, resolver *CustomerResolver) *InvoiceService {
	return &InvoiceService{db: db, resolver: resolver}
}

// ItemInput is one cart line as submitted by the caller. Total is optional;
// when present it is checked against the server-side computation.
type ItemInput struct {
	ProductID   uint     `json:"productId"`
	ProductName string   `json:"productName"`
	Unit        string   `json:"unit"`
	Quantity    float64  `json:"quantity"`
	Price       float64  `json:"price"`
	Total       *float64 `json:"total"`
}

// CreateInvoiceInput is the validated request for a new sale.
type CreateInvoiceInput struct {
	CustomerID    *uint       `json:"customerId"`
	CustomerName  string      `json:"customerName"`
	CustomerPhone *string     `json:"customerPhone"`
	Date          *time.Time  `json:"date"`
	Items         []ItemInput `json:"items"`
	Note          *string     `json:"note"`
}

// Create validates the cart, resolves the customer, and persists the
// invoice with all its items in one transaction. Stock is decremented for
// each sold product inside the same transaction, floored at zero.
//
// Customer resolution runs before the transaction: a customer created for a
// new phone number survives even if the invoice write later fails.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("customerName is required: %w", ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("invoice needs at least one item: %w", ErrValidation)
	}

	items := make([]models.InvoiceItem, 0, len(in.Items))
	var totalAmount float64
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: quantity must be positive: %w", i, ErrValidation)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("item %d: price must not be negative: %w", i, ErrValidation)
		}
		if strings.TrimSpace(it.ProductName) == "" {
			return nil, fmt.Errorf("item %d: productName is required: %w", i, ErrValidation)
		}
		lineTotal := it.Price * it.Quantity
		if it.Total != nil && math.Abs(*it.Total-lineTotal) > totalTolerance {
			return nil, fmt.Errorf("item %d: total %.2f does not match price*quantity %.2f: %w",
				i, *it.Total, lineTotal, ErrValidation)
		}
		items = append(items, models.InvoiceItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Total:       lineTotal,
		})
		totalAmount += lineTotal
	}

	// The stored snapshot follows the same rule as customer rows: a phone
	// is either a real number or NULL, never an empty string.
	in.CustomerPhone = models.NormalizePhone(in.CustomerPhone)
	customerID := s.resolver.Resolve(ctx, in.CustomerID, in.CustomerName, in.CustomerPhone)

	date := time.Now()
	if in.Date != nil {
		date = *in.Date
	}
	inv := models.Invoice{
		CustomerID:    customerID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Date:          date,
		TotalAmount:   totalAmount,
		Note:          in.Note,
		Items:         items,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for _, item := range inv.Items {
			if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, inv.ID)
}

// decrementStock subtracts a sold quantity from a product's stock and
// floors the result at zero. A missing product id is fine: the invoice
// carries its own snapshot and historic items may outlive the catalog row.
func decrementStock(tx *gorm.DB, productID uint, quantity float64) error {
	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return tx.Model(&models.Product{}).
		Where("id = ? AND quantity < 0", productID).
		Update("quantity", 0).Error
}

// Get loads one invoice with its items and (when still linked) customer.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &inv, nil
}

// CorrectionInput carries the only fields an invoice accepts after creation.
type CorrectionInput struct {
	CustomerName  *string `json:"customerName"`
	CustomerPhone *string `json:"customerPhone"`
	Note          *string `json:"note"`
}

// Correct applies administrative corrections. Items and totals are immutable.
func (s *InvoiceService) Correct(ctx context.Context, id uint, in CorrectionInput) (*models.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.CustomerName != nil {
		if strings.TrimSpace(*in.CustomerName) == "" {
			return nil, fmt.Errorf("customerName must not be empty: %w", ErrValidation)
		}
		updates["customer_name"] = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		updates["customer_phone"] = models.NormalizePhone(in.CustomerPhone)
	}
	if in.Note != nil {
		updates["note"] = *in.Note
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(inv).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete hard-deletes an invoice and its items.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
			}
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}

// ListFilter narrows and pages the invoice listing. End is exclusive;
// handlers extend a bare end date to the following midnight so the whole
// day is covered.
type ListFilter struct {
	CustomerID *uint
	Start      *time.Time
	End        *time.Time
	Limit      int
	Offset     int
}

// Clamped applies the paging bounds: limit defaults to 50 and caps at 100,
// negative offsets reset to zero. Callers echoing paging metadata must
// report these effective values, not the raw request ones.
func (f ListFilter) Clamped() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// List returns invoices newest-first with the total row count for paging.
// Limit defaults to 50 and is clamped to 100.
func (s *InvoiceService) List(ctx context.Context, f ListFilter) ([]models.Invoice, int64, error) {
	f = f.Clamped()

	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Start != nil {
		q = q.Where("date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("date < ?", *f.End)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.Invoice
	err := q.Preload("Items").
		Preload("Customer").
		Order("date DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}
