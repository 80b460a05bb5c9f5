package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/storefront/storefront-go/internal/lib/logger/sl"
	"github.com/storefront/storefront-go/internal/model"
	"github.com/storefront/storefront-go/internal/service"
)

const (
	maxBodyBytes = 1 << 20 // 1MB

	internalErrorBody = "Internal Server Error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.MessageResponse{Message: msg})
}

// writeInternalError logs err and answers with the opaque 500 body.
func writeInternalError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.ErrorContext(r.Context(), "request failed",
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		sl.Err(err),
	)
	writeJSON(w, http.StatusInternalServerError, internalErrorBody)
}

// writeValidation answers 400 with the list of field messages.
func writeValidation(w http.ResponseWriter, err error) bool {
	var vErr *service.ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, vErr.Messages)
	return true
}

// decodeJSON reads a JSON body into dst. On failure it writes the response
// and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			writeJSON(w, http.StatusBadRequest, []string{"Request body is required"})
		default:
			writeJSON(w, http.StatusBadRequest, []string{"Invalid request body"})
		}
		return false
	}
	return true
}
