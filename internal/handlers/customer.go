package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/httpx"
	"github.com/minhlq/vlxd-pos/internal/models"
	"github.com/minhlq/vlxd-pos/internal/validation"
)

// recentInvoiceCount bounds the purchase history embedded in a customer view.
const recentInvoiceCount = 10

// CustomerHandler serves the customer book.
type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type createCustomerRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// List returns all customers, newest first.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers := make([]models.Customer, 0)
	err := h.db.WithContext(r.Context()).Order("created_at DESC").Find(&customers).Error
	if err != nil {
		log.WithError(err).Error("customer list failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch customers")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// Get returns one customer with their most recent invoices.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var customer models.Customer
	err = h.db.WithContext(r.Context()).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC").Limit(recentInvoiceCount)
		}).
		First(&customer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "Customer not found")
			return
		}
		log.WithError(err).Error("customer fetch failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch customer")
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// Create registers a customer. When the phone number is already on file the
// existing record is returned instead of a duplicate, so repeated sales to
// the same phone always land on one customer.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = models.NormalizePhone(req.Phone)

	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.MaxLen("name", req.Name, 255, v)
	if !v.Empty() {
		httpx.FieldErrors(w, "Validation failed", v)
		return
	}

	if req.Phone != nil {
		var existing models.Customer
		err := h.db.WithContext(r.Context()).Where("phone = ?", *req.Phone).First(&existing).Error
		if err == nil {
			httpx.JSON(w, http.StatusOK, map[string]any{"customer": existing})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Error("customer phone lookup failed")
			httpx.Error(w, http.StatusInternalServerError, "Failed to create customer")
			return
		}
	}

	customer := models.Customer{Name: req.Name, Phone: req.Phone, Address: req.Address}
	if err := h.db.WithContext(r.Context()).Create(&customer).Error; err != nil {
		log.WithError(err).Error("customer create failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to create customer")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

// Update applies a partial update. Changing the phone to one already owned
// by another customer is a conflict.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var req updateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var customer models.Customer
	if err := h.db.WithContext(r.Context()).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "Customer not found")
			return
		}
		log.WithError(err).Error("customer fetch failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httpx.Error(w, http.StatusBadRequest, "Name must not be empty")
			return
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		// A blank phone clears the number (stored as NULL, never "").
		phone := models.NormalizePhone(req.Phone)
		if phone != nil {
			var count int64
			err := h.db.WithContext(r.Context()).Model(&models.Customer{}).
				Where("phone = ? AND id <> ?", *phone, customer.ID).
				Count(&count).Error
			if err != nil {
				log.WithError(err).Error("customer phone check failed")
				httpx.Error(w, http.StatusInternalServerError, "Failed to update customer")
				return
			}
			if count > 0 {
				httpx.Error(w, http.StatusConflict, "Phone number already in use")
				return
			}
		}
		updates["phone"] = phone
	}
	if req.Address != nil {
		updates["address"] = req.Address
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(&customer).Updates(updates).Error; err != nil {
			log.WithError(err).Error("customer update failed")
			httpx.Error(w, http.StatusInternalServerError, "Failed to update customer")
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customer": customer})
}

// Delete removes a customer. Their invoices survive as walk-in records: the
// link is cleared but the name and phone snapshots on each invoice remain.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, id).Error; err != nil {
			return err
		}
		err := tx.Model(&models.Invoice{}).
			Where("customer_id = ?", id).
			Update("customer_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "Customer not found")
			return
		}
		log.WithError(err).Error("customer delete failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Customer deleted"})
}
