package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/models"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Product{}, &models.Customer{}, &models.Invoice{}, &models.InvoiceItem{},
	))
	return conn
}

func newInvoiceService(conn *gorm.DB) *InvoiceService {
	return NewInvoiceService(conn, NewCustomerResolver(conn))
}

func seedCement(t *testing.T, conn *gorm.DB, stock float64) models.Product {
	t.Helper()
	p := models.Product{Name: "Xi măng Hà Tiên", Unit: "Bao", Price: 90000, Category: "Xi măng", Quantity: stock}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func TestCreateWalkInInvoice(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: models.WalkInName,
		Items: []ItemInput{
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 2, Price: 90000},
		},
	})
	require.NoError(t, err)

	require.Nil(t, inv.CustomerID, "walk-in sale must not link a customer")
	require.Equal(t, models.WalkInName, inv.CustomerName)
	require.Equal(t, float64(180000), inv.TotalAmount)
	require.Len(t, inv.Items, 1)
	require.Equal(t, float64(180000), inv.Items[0].Total)
}

func TestCreateComputesTotalsServerSide(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	// Caller-supplied matching totals are accepted; the stored values come
	// from the server-side computation either way.
	matching := 180000.0
	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: "Anh Ba",
		Items: []ItemInput{
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 2, Price: 90000, Total: &matching},
		},
	})
	require.NoError(t, err)
	require.Equal(t, float64(180000), inv.TotalAmount)

	// A lying total is rejected before any write.
	lying := 9000.0
	_, err = svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: "Anh Ba",
		Items: []ItemInput{
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 2, Price: 90000, Total: &lying},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	var count int64
	conn.Model(&models.Invoice{}).Count(&count)
	require.EqualValues(t, 1, count, "rejected sale must not persist")
}

func TestCreateValidation(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	cases := []struct {
		name  string
		input CreateInvoiceInput
	}{
		{"empty name", CreateInvoiceInput{
			CustomerName: "  ",
			Items:        []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, Price: 1}},
		}},
		{"no items", CreateInvoiceInput{CustomerName: "Anh Ba"}},
		{"zero quantity", CreateInvoiceInput{
			CustomerName: "Anh Ba",
			Items:        []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 0, Price: 1}},
		}},
		{"negative price", CreateInvoiceInput{
			CustomerName: "Anh Ba",
			Items:        []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, Price: -5}},
		}},
		{"blank product name", CreateInvoiceInput{
			CustomerName: "Anh Ba",
			Items:        []ItemInput{{ProductID: p.ID, ProductName: " ", Quantity: 1, Price: 1}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	conn.Model(&models.Invoice{}).Count(&count)
	require.Zero(t, count)
}

func TestCreateDecrementsStock(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: models.WalkInName,
		Items: []ItemInput{
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 3, Price: 90000},
		},
	})
	require.NoError(t, err)

	var after models.Product
	require.NoError(t, conn.First(&after, p.ID).Error)
	require.Equal(t, float64(7), after.Quantity)
}

func TestCreateFloorsStockAtZero(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 2)

	// Overselling is allowed (the counter never blocks a sale on
	// bookkeeping); stock just bottoms out at zero.
	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: models.WalkInName,
		Items: []ItemInput{
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 5, Price: 90000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, float64(450000), inv.TotalAmount)

	var after models.Product
	require.NoError(t, conn.First(&after, p.ID).Error)
	require.Zero(t, after.Quantity)
}

func TestCreateSurvivesMissingProduct(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)

	// Snapshot-only item: the catalog row is gone but the sale still goes
	// through on the denormalized fields.
	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: models.WalkInName,
		Items: []ItemInput{
			{ProductID: 12345, ProductName: "Gạch cũ", Unit: "Viên", Quantity: 10, Price: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, float64(10000), inv.TotalAmount)
}

func TestCreateLinksCustomerByPhone(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 100)

	phone := "0901112223"
	first, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName:  "Anh Hùng",
		CustomerPhone: &phone,
		Items:         []ItemInput{{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 1, Price: 90000}},
	})
	require.NoError(t, err)
	require.NotNil(t, first.CustomerID)

	second, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName:  "Anh Hùng",
		CustomerPhone: &phone,
		Items:         []ItemInput{{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 2, Price: 90000}},
	})
	require.NoError(t, err)
	require.NotNil(t, second.CustomerID)
	require.Equal(t, *first.CustomerID, *second.CustomerID, "both sales must reference the same customer")

	var customers int64
	conn.Model(&models.Customer{}).Where("phone = ?", phone).Count(&customers)
	require.EqualValues(t, 1, customers)
}

func TestCreateStoresBlankPhoneAsNull(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	blank := "  "
	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName:  "Anh Ba",
		CustomerPhone: &blank,
		Items:         []ItemInput{{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 1, Price: 90000}},
	})
	require.NoError(t, err)
	require.Nil(t, inv.CustomerPhone, "blank phone snapshot must be stored as NULL")
	require.Nil(t, inv.CustomerID)

	// Same rule when a correction clears the phone.
	real := "0901234567"
	fixed, err := svc.Correct(context.Background(), inv.ID, CorrectionInput{CustomerPhone: &real})
	require.NoError(t, err)
	require.NotNil(t, fixed.CustomerPhone)

	empty := ""
	cleared, err := svc.Correct(context.Background(), inv.ID, CorrectionInput{CustomerPhone: &empty})
	require.NoError(t, err)
	require.Nil(t, cleared.CustomerPhone)
}

func TestCorrectOnlyTouchesCorrectionFields(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: models.WalkInName,
		Items:        []ItemInput{{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 2, Price: 90000}},
	})
	require.NoError(t, err)

	name := "Anh Hùng (sửa lại)"
	note := "khách quen"
	fixed, err := svc.Correct(context.Background(), inv.ID, CorrectionInput{
		CustomerName: &name,
		Note:         &note,
	})
	require.NoError(t, err)
	require.Equal(t, name, fixed.CustomerName)
	require.NotNil(t, fixed.Note)
	require.Equal(t, note, *fixed.Note)
	// Items and total are untouchable.
	require.Equal(t, inv.TotalAmount, fixed.TotalAmount)
	require.Len(t, fixed.Items, 1)

	empty := "  "
	_, err = svc.Correct(context.Background(), inv.ID, CorrectionInput{CustomerName: &empty})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Correct(context.Background(), 777777, CorrectionInput{Note: &note})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesItems(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)
	p := seedCement(t, conn, 10)

	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerName: models.WalkInName,
		Items: []ItemInput{
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 1, Price: 90000},
			{ProductID: p.ID, ProductName: p.Name, Unit: p.Unit, Quantity: 2, Price: 90000},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), inv.ID))

	var items int64
	conn.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&items)
	require.Zero(t, items)

	err = svc.Delete(context.Background(), inv.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersAndPaging(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)

	cust := models.Customer{Name: "Anh Hùng", Phone: phonePtr("0905556667")}
	require.NoError(t, conn.Create(&cust).Error)

	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		inv := models.Invoice{
			CustomerName: models.WalkInName,
			Date:         base.AddDate(0, 0, i),
			TotalAmount:  float64((i + 1) * 1000),
		}
		if i%2 == 0 {
			inv.CustomerID = &cust.ID
			inv.CustomerName = cust.Name
		}
		require.NoError(t, conn.Create(&inv).Error)
	}

	// Newest first, full set.
	all, total, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, all, 5)
	require.True(t, all[0].Date.After(all[4].Date))

	// Customer filter.
	byCustomer, total, err := svc.List(context.Background(), ListFilter{CustomerID: &cust.ID})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	for _, inv := range byCustomer {
		require.NotNil(t, inv.CustomerID)
		require.Equal(t, cust.ID, *inv.CustomerID)
	}

	// Date window: days 2-4 only (end exclusive).
	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 4)
	windowed, total, err := svc.List(context.Background(), ListFilter{Start: &start, End: &end})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, windowed, 3)

	// Paging with clamped limit.
	page, total, err := svc.List(context.Background(), ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, page, 2)

	clamped, _, err := svc.List(context.Background(), ListFilter{Limit: 10000})
	require.NoError(t, err)
	require.Len(t, clamped, 5) // clamp only caps the page size
}

func TestGetNotFound(t *testing.T) {
	conn := setupInvoiceTestDB(t)
	svc := newInvoiceService(conn)

	_, err := svc.Get(context.Background(), 424242)
	require.True(t, errors.Is(err, ErrNotFound))
}
