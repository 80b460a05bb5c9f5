package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/storefront/storefront-go/internal/crypto"
	"github.com/storefront/storefront-go/internal/lib/logger/sl"
	"github.com/storefront/storefront-go/internal/service"
)

// AuthHeader carries "Bearer <token>" in both directions. The storefront
// client has always used this name rather than Authorization.
const AuthHeader = "Authentication"

const bearerPrefix = "Bearer "

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator resolves a raw bearer token to its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*crypto.Claims, error)
}

// RequireAuth returns middleware that rejects requests without a valid
// token in the Authentication header before the wrapped handler runs.
func RequireAuth(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(AuthHeader)
			if header == "" {
				writeJSONMessage(w, http.StatusUnauthorized, "Access denied. No token provided")
				return
			}

			token, found := strings.CutPrefix(header, bearerPrefix)
			if !found || token == "" {
				writeJSONMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, crypto.ErrInvalidToken) || errors.Is(err, service.ErrTokenRevoked) {
					writeJSONMessage(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				log.ErrorContext(r.Context(), "authenticating request",
					slog.String("request_id", chimw.GetReqID(r.Context())),
					slog.String("path", r.URL.Path),
					sl.Err(err),
				)
				writeJSON(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the authenticated token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*crypto.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*crypto.Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
