// Package db owns schema migration and seed data.
package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/models"
)

// Migrate runs AutoMigrate for all models.
// Call this at application startup or as part of a migration step.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
	)
}

// Seed inserts the starter catalog and customer book. Existing rows (matched
// by product name / customer phone) are left untouched, so seeding is safe
// to run on every startup.
func Seed(db *gorm.DB) error {
	products := []models.Product{
		{Name: "Xi măng Hà Tiên", Unit: "Bao", Price: 90000, Category: "Xi măng"},
		{Name: "Cát xây tô", Unit: "Khối", Price: 450000, Category: "Cát/Đá"},
		{Name: "Gạch ống 4 lỗ", Unit: "Viên", Price: 1200, Category: "Gạch"},
		{Name: "Sơn Dulux Trắng", Unit: "Thùng", Price: 1250000, Category: "Sơn"},
		{Name: "Ống nhựa Bình Minh ø27", Unit: "Mét", Price: 15000, Category: "Ống nước"},
	}
	for _, p := range products {
		if err := db.Where(models.Product{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
	}

	customers := []models.Customer{
		{Name: "Anh Hùng (Thầu)", Phone: strPtr("0901234567"), Address: strPtr("Quận 9")},
		{Name: "Chị Lan (Nhà Dân)", Phone: strPtr("0912345678"), Address: strPtr("Thủ Đức")},
	}
	for _, c := range customers {
		var existing models.Customer
		err := db.Where("phone = ?", *c.Phone).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
