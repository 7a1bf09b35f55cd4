package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSWildcard(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	h := CORS([]string{"https://pos.example.com"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://pos.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://pos.example.com" {
		t.Errorf("allow-origin = %q, want echoed origin", got)
	}

	// Unknown origins get no allow header at all.
	req2 := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req2.Header.Set("Origin", "https://evil.example.com")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)
	if got := w2.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := CORS([]string{"*"})(inner)

	req := httptest.NewRequest(http.MethodOptions, "/api/invoices", nil)
	req.Header.Set("Origin", "https://pos.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if called {
		t.Error("preflight must not reach the inner handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("missing Access-Control-Allow-Methods on preflight")
	}
}

func TestCollapseIDs(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/api/products/42", "/api/products/:id"},
		{"/api/invoices/7/pdf", "/api/invoices/:id/pdf"},
		{"/api/invoices/stats", "/api/invoices/stats"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		if got := collapseIDs(tt.in); got != tt.want {
			t.Errorf("collapseIDs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
