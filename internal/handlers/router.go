package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/auth"
	"github.com/minhlq/vlxd-pos/internal/httpx"
	"github.com/minhlq/vlxd-pos/internal/metrics"
	"github.com/minhlq/vlxd-pos/internal/middleware"
	"github.com/minhlq/vlxd-pos/internal/services"
)

// RouterConfig carries everything the HTTP surface needs beyond the database.
type RouterConfig struct {
	Tokens         *auth.Service
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	StoreName      string
}

// NewRouter builds the full API: routes, auth enforcement and the
// CORS / metrics / logging middleware chain.
//
// Reads and the point-of-sale write path (recording a sale, registering the
// customer standing at the counter) are open; administrative mutations
// require a bearer token.
func NewRouter(db *gorm.DB, cfg RouterConfig) http.Handler {
	resolver := services.NewCustomerResolver(db)
	invoiceSvc := services.NewInvoiceService(db, resolver)

	authH := NewAuthHandler(db, cfg.Tokens)
	productH := NewProductHandler(db)
	customerH := NewCustomerHandler(db)
	invoiceH := NewInvoiceHandler(invoiceSvc, cfg.Metrics, cfg.StoreName)

	guard := func(h http.HandlerFunc) http.Handler {
		return cfg.Tokens.RequireAuth(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.HandleFunc("GET /api/auth/verify", authH.Verify)

	mux.HandleFunc("GET /api/products", productH.List)
	mux.HandleFunc("GET /api/products/{id}", productH.Get)
	mux.Handle("POST /api/products", guard(productH.Create))
	mux.Handle("PUT /api/products/{id}", guard(productH.Update))
	mux.Handle("DELETE /api/products/{id}", guard(productH.Delete))

	mux.HandleFunc("GET /api/customers", customerH.List)
	mux.HandleFunc("GET /api/customers/{id}", customerH.Get)
	mux.HandleFunc("POST /api/customers", customerH.Create)
	mux.Handle("PUT /api/customers/{id}", guard(customerH.Update))
	mux.Handle("DELETE /api/customers/{id}", guard(customerH.Delete))

	mux.HandleFunc("GET /api/invoices", invoiceH.List)
	mux.HandleFunc("GET /api/invoices/stats", invoiceH.Stats)
	mux.HandleFunc("GET /api/invoices/{id}", invoiceH.Get)
	mux.HandleFunc("GET /api/invoices/{id}/pdf", invoiceH.PDF)
	mux.HandleFunc("POST /api/invoices", invoiceH.Create)
	mux.Handle("PUT /api/invoices/{id}", guard(invoiceH.Update))
	mux.Handle("DELETE /api/invoices/{id}", guard(invoiceH.Delete))
	mux.Handle("DELETE /api/invoices", guard(invoiceH.DeleteByQuery))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = cfg.Tokens.Middleware(handler)
	handler = middleware.Logging(handler)
	if cfg.Metrics != nil {
		handler = middleware.Instrument(cfg.Metrics)(handler)
	}
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	return handler
}
