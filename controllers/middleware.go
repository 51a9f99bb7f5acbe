package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pazar/utils"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// CurrentUser returns the authenticated identity attached to the
// request, if any.
func CurrentUser(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(identityKey).(*utils.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Authenticate rejects requests without a valid bearer token and puts
// the decoded identity on the request context.
func Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.HandleError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuthenticate attaches an identity when a valid token is
// present but never rejects the request. Used by the permissive
// favorite read paths.
func OptionalAuthenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := utils.ParseToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, claims))
			}
		}
		next(w, r)
	}
}

// RequireAdmin gates admin-only operations. A missing identity is
// Unauthorized, a non-admin identity is Forbidden; the two are distinct
// outcomes.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := CurrentUser(r)
		if !ok {
			utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if claims.Role != "admin" {
			utils.HandleError(w, http.StatusForbidden, "Forbidden: admin only")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogger tags every request with an id and logs method, path,
// status and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
