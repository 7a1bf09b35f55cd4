// Package handlers wires the HTTP surface to the service layer. Every
// handler follows the same shape: parse, validate, call, respond with
// httpx; failures are always {"error": string}.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/minhlq/vlxd-pos/internal/httpx"
	"github.com/minhlq/vlxd-pos/internal/services"
)

// pathID parses the {id} path segment of a Go 1.22 mux pattern.
func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// parseDateParam accepts a bare date (2006-01-02) or an RFC 3339 timestamp.
// For bare dates, endOfDay extends the bound to the following midnight so a
// filter like endDate=2025-01-31 covers the whole day.
func parseDateParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1)
		}
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

// serviceError maps the service sentinels onto HTTP statuses; anything
// unclassified is logged and reported as a generic 500.
func serviceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		httpx.Error(w, http.StatusConflict, err.Error())
	default:
		log.WithError(err).Error(fallback)
		httpx.Error(w, http.StatusInternalServerError, fallback)
	}
}
