package handler

import (
	"log/slog"
	"net/http"

	"github.com/storefront/storefront-go/internal/middleware"
	"github.com/storefront/storefront-go/internal/model"
	"github.com/storefront/storefront-go/internal/service"
)

// ProfileHandler handles HTTP requests for the signed-in user's profile.
type ProfileHandler struct {
	service *service.ProfileService
	log     *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, log: log}
}

// HandleGetProfile handles GET /auth/user/profile and GET /auth/user/me requests.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile handles PUT /auth/user/profile requests.
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}

	var req model.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.UpdateProfile(r.Context(), userID, req); err != nil {
		if writeValidation(w, err) {
			return
		}
		writeInternalError(w, r, h.log, err)
		return
	}

	writeMessage(w, http.StatusOK, "Profile updated successfully")
}
