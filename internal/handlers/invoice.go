package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/minhlq/vlxd-pos/internal/httpx"
	"github.com/minhlq/vlxd-pos/internal/metrics"
	"github.com/minhlq/vlxd-pos/internal/services"
)

// InvoiceHandler serves sales: creation, listing, corrections, stats and
// the printable PDF.
type InvoiceHandler struct {
	svc       *services.InvoiceService
	metrics   *metrics.Metrics
	storeName string
}

func NewInvoiceHandler(svc *services.InvoiceService, m *metrics.Metrics, storeName string) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, metrics: m, storeName: storeName}
}

// Create records a sale. Totals are recomputed server-side and stock is
// decremented in the same transaction as the invoice write.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	inv, err := h.svc.Create(r.Context(), in)
	if err != nil {
		serviceError(w, err, "Failed to create invoice")
		return
	}

	if h.metrics != nil {
		h.metrics.InvoicesCreated.Inc()
		h.metrics.RevenueTotal.Add(inv.TotalAmount)
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"invoice": inv})
}

// List returns invoices newest-first with paging metadata. Filters:
// customerId, startDate, endDate (inclusive of the whole end day),
// limit, offset.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter services.ListFilter
	if raw := query.Get("customerId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Invalid customerId")
			return
		}
		cid := uint(id)
		filter.CustomerID = &cid
	}
	start, err := parseDateParam(query.Get("startDate"), false)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid startDate")
		return
	}
	end, err := parseDateParam(query.Get("endDate"), true)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid endDate")
		return
	}
	filter.Start = start
	filter.End = end
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))
	filter.Offset, _ = strconv.Atoi(query.Get("offset"))
	filter = filter.Clamped()

	invoices, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		serviceError(w, err, "Failed to fetch invoices")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices": invoices,
		"pagination": map[string]any{
			"total":  total,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}

// Get returns one invoice with its items.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err, "Failed to fetch invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Update applies administrative corrections to the customer snapshot and
// note. Items and amounts are immutable once recorded.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}
	var in services.CorrectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	inv, err := h.svc.Correct(r.Context(), id, in)
	if err != nil {
		serviceError(w, err, "Failed to update invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete removes an invoice by path id.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}
	h.deleteByID(w, r, id)
}

// DeleteByQuery removes an invoice addressed as DELETE /invoices?id=N,
// kept for clients that cannot put the id in the path.
func (h *InvoiceHandler) DeleteByQuery(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		httpx.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}
	h.deleteByID(w, r, uint(id))
}

func (h *InvoiceHandler) deleteByID(w http.ResponseWriter, r *http.Request, id uint) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		serviceError(w, err, "Failed to delete invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Invoice deleted"})
}

// Stats reports revenue over an optional date range and echoes the range back.
func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := parseDateParam(query.Get("startDate"), false)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid startDate")
		return
	}
	end, err := parseDateParam(query.Get("endDate"), true)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid endDate")
		return
	}

	stats, err := h.svc.Stats(r.Context(), start, end)
	if err != nil {
		serviceError(w, err, "Failed to compute stats")
		return
	}

	if raw := query.Get("startDate"); raw != "" {
		stats.Summary.Period.StartDate = &raw
	}
	if raw := query.Get("endDate"); raw != "" {
		stats.Summary.Period.EndDate = &raw
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// PDF renders a printable invoice.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err, "Failed to fetch invoice")
		return
	}

	doc, err := services.RenderInvoicePDF(h.storeName, inv)
	if err != nil {
		serviceError(w, err, "Failed to render invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", inv.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
