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

// ProductHandler serves the catalog CRUD.
type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type createProductRequest struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
}

// updateProductRequest uses pointers so absent fields stay untouched.
type updateProductRequest struct {
	Name     *string  `json:"name"`
	Unit     *string  `json:"unit"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
	Quantity *float64 `json:"quantity"`
}

// List returns the catalog, optionally narrowed to one category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.WithContext(r.Context()).Model(&models.Product{})
	if category := r.URL.Query().Get("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	products := make([]models.Product, 0)
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		log.WithError(err).Error("product list failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// Get returns a single product by id.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var product models.Product
	if err := h.db.WithContext(r.Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		log.WithError(err).Error("product fetch failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Create adds a new product. Names are unique across the catalog.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.MaxLen("name", req.Name, 255, v)
	validation.Required("unit", req.Unit, v)
	validation.Required("category", req.Category, v)
	validation.PositiveFloat("price", req.Price, v)
	validation.NonNegativeFloat("quantity", req.Quantity, v)
	if !v.Empty() {
		httpx.FieldErrors(w, "Validation failed", v)
		return
	}

	if h.nameTaken(r, req.Name, 0) {
		httpx.Error(w, http.StatusConflict, "Product name already exists")
		return
	}

	product := models.Product{
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    req.Price,
		Category: req.Category,
		Quantity: req.Quantity,
	}
	if err := h.db.WithContext(r.Context()).Create(&product).Error; err != nil {
		log.WithError(err).Error("product create failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"product": product})
}

// Update applies a partial update to a product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var product models.Product
	if err := h.db.WithContext(r.Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		log.WithError(err).Error("product fetch failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	v := validation.Violations{}
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		validation.Required("name", name, v)
		if name != product.Name && h.nameTaken(r, name, product.ID) {
			httpx.Error(w, http.StatusConflict, "Product name already exists")
			return
		}
		updates["name"] = name
	}
	if req.Unit != nil {
		validation.Required("unit", *req.Unit, v)
		updates["unit"] = *req.Unit
	}
	if req.Price != nil {
		validation.PositiveFloat("price", *req.Price, v)
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		validation.NonNegativeFloat("quantity", *req.Quantity, v)
		updates["quantity"] = *req.Quantity
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if !v.Empty() {
		httpx.FieldErrors(w, "Validation failed", v)
		return
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(&product).Updates(updates).Error; err != nil {
			log.WithError(err).Error("product update failed")
			httpx.Error(w, http.StatusInternalServerError, "Failed to update product")
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product": product})
}

// Delete removes a product from the catalog. Invoices keep their snapshots.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	res := h.db.WithContext(r.Context()).Delete(&models.Product{}, id)
	if res.Error != nil {
		log.WithError(res.Error).Error("product delete failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Product not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Product deleted"})
}

// nameTaken reports whether another product already uses the name.
func (h *ProductHandler) nameTaken(r *http.Request, name string, excludeID uint) bool {
	var count int64
	q := h.db.WithContext(r.Context()).Model(&models.Product{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		log.WithError(err).Warn("product name check failed")
		return false
	}
	return count > 0
}
