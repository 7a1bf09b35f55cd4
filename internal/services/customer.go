package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/models"
)

// CustomerResolver decides which Customer row (if any) a new sale belongs
// to, creating one when a phone number is given for the first time.
//
// Resolution never fails a sale: every error path degrades to "no linked
// customer" and the invoice keeps only the name/phone snapshot.
type CustomerResolver struct {
	db *gorm.DB
}

func NewCustomerResolver(db *gorm.DB) *CustomerResolver {
	return &CustomerResolver{db: db}
}

// Resolve maps (explicit id, name, phone) to a customer id:
//
//  1. an explicit id is trusted as-is;
//  2. the walk-in sentinel with no phone stays anonymous;
//  3. a phone number finds or creates a customer — a concurrent create of
//     the same phone is recovered by re-querying, so the first writer wins
//     on identity and both sales link to the same row;
//  4. a bare name links nothing; the invoice carries it as a snapshot only.
func (r *CustomerResolver) Resolve(ctx context.Context, explicitID *uint, name string, phone *string) *uint {
	if explicitID != nil {
		return explicitID
	}

	phoneVal := ""
	if phone != nil {
		phoneVal = strings.TrimSpace(*phone)
	}
	if phoneVal == "" {
		// Walk-in guests and snapshot-only names both resolve to no customer.
		return nil
	}

	var existing models.Customer
	err := r.db.WithContext(ctx).Where("phone = ?", phoneVal).First(&existing).Error
	if err == nil {
		return &existing.ID
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.WithError(err).WithField("phone", phoneVal).Warn("customer lookup failed, selling unlinked")
		return nil
	}

	created := models.Customer{Name: name, Phone: &phoneVal}
	err = r.db.WithContext(ctx).Create(&created).Error
	if err == nil {
		return &created.ID
	}
	if isDuplicateErr(err) {
		// Lost the race to a concurrent identical insert; reuse the winner.
		var winner models.Customer
		if qErr := r.db.WithContext(ctx).Where("phone = ?", phoneVal).First(&winner).Error; qErr == nil {
			return &winner.ID
		}
	}
	log.WithError(err).WithField("phone", phoneVal).Warn("customer create failed, selling unlinked")
	return nil
}

// isDuplicateErr detects unique-constraint violations across the drivers we
// run on (postgres in production, sqlite in tests).
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
