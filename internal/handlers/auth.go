package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/auth"
	"github.com/minhlq/vlxd-pos/internal/httpx"
	"github.com/minhlq/vlxd-pos/internal/models"
	"github.com/minhlq/vlxd-pos/internal/validation"
)

// AuthHandler serves registration, login and token verification.
type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.Service
}

func NewAuthHandler(db *gorm.DB, tokens *auth.Service) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPayload is the public view of a user; the password hash never leaves
// the database layer.
type userPayload struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func publicUser(u *models.User) userPayload {
	return userPayload{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Register creates an account and signs the caller in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("name", req.Name, v)
	if len(req.Password) < 6 {
		v["password"] = "must be at least 6 characters"
	}
	if !v.Empty() {
		httpx.FieldErrors(w, "Validation failed", v)
		return
	}

	var existing models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		httpx.Error(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.WithError(err).Error("register: user lookup failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.WithError(err).Error("register: password hash failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	user := models.User{Email: req.Email, Name: req.Name, Password: hash}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		log.WithError(err).Error("register: create failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	token, err := h.tokens.CreateToken(user.ID, user.Email)
	if err != nil {
		log.WithError(err).Error("register: token signing failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"user":  publicUser(&user),
		"token": token,
	})
}

// Login checks credentials and returns a fresh token. Unknown emails and
// wrong passwords answer identically so the endpoint leaks nothing.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Error("login: user lookup failed")
		}
		httpx.Error(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		httpx.Error(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.tokens.CreateToken(user.ID, user.Email)
	if err != nil {
		log.WithError(err).Error("login: token signing failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":  publicUser(&user),
		"token": token,
	})
}

// Verify reports whether the presented bearer token is still good and who
// it belongs to.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.ParseBearer(r)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, claims.UserID).Error; err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  publicUser(&user),
	})
}
