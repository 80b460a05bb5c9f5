package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/storefront/storefront-go/internal/middleware"
	"github.com/storefront/storefront-go/internal/model"
	"github.com/storefront/storefront-go/internal/service"
)

// AuthHandler handles HTTP requests for registration and sessions.
type AuthHandler struct {
	service *service.AuthService
	log     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, log: log}
}

// HandleRegister handles POST /auth/user/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.service.Register(r.Context(), req); err != nil {
		switch {
		case writeValidation(w, err):
		case errors.Is(err, service.ErrIdentityTaken):
			writeMessage(w, http.StatusBadRequest, "Email or phone number already exists")
		default:
			writeInternalError(w, r, h.log, err)
		}
		return
	}

	writeMessage(w, http.StatusCreated, "User created successfully")
}

// HandleLogin handles POST /auth/user/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case writeValidation(w, err):
		case errors.Is(err, service.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		case errors.Is(err, service.ErrWrongPassword):
			writeMessage(w, http.StatusBadRequest, "Wrong password")
		default:
			writeInternalError(w, r, h.log, err)
		}
		return
	}

	w.Header().Set(middleware.AuthHeader, "Bearer "+token)
	writeMessage(w, http.StatusOK, "Login successful")
}

// HandleLogout handles POST /auth/user/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		writeInternalError(w, r, h.log, err)
		return
	}

	w.Header().Set(middleware.AuthHeader, "")
	writeMessage(w, http.StatusOK, "Logout successful")
}

// HandleRefresh handles GET /auth/user/refresh-token requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}

	token, err := h.service.Refresh(r.Context(), claims)
	if err != nil {
		writeInternalError(w, r, h.log, err)
		return
	}

	w.Header().Set(middleware.AuthHeader, "Bearer "+token)
	writeMessage(w, http.StatusOK, "Token refreshed successfully")
}
