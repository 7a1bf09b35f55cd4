package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/auth"
	"github.com/minhlq/vlxd-pos/internal/db"
	"github.com/minhlq/vlxd-pos/internal/metrics"
	"github.com/minhlq/vlxd-pos/internal/models"
)

// testAPI is a full router over an in-memory database, one per test.
type testAPI struct {
	db      *gorm.DB
	handler http.Handler
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	handler := NewRouter(conn, RouterConfig{
		Tokens:         auth.NewService("test-secret", time.Hour),
		Metrics:        metrics.NewWithRegisterer(prometheus.NewRegistry()),
		AllowedOrigins: []string{"*"},
		StoreName:      "Cửa Hàng VLXD Minh Long",
	})
	return &testAPI{db: conn, handler: handler}
}

// do runs one request through the router. A non-empty token becomes a
// bearer Authorization header; a non-nil body is sent as JSON.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// registerUser creates an account and returns its token.
func (a *testAPI) registerUser(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "owner@example.com",
		"name":     "Owner",
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Token
}

// seedProduct inserts a catalog row directly.
func (a *testAPI) seedProduct(t *testing.T, name, unit string, price, quantity float64) *models.Product {
	t.Helper()
	p := models.Product{Name: name, Unit: unit, Price: price, Category: "Xi măng", Quantity: quantity}
	if err := a.db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &p
}
