// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/notify"
)

// Headers set by the auth gateway in front of the API.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const identityKey contextKey = "identity"

// Identify reads the gateway identity headers and stores the caller in the
// request context. Requests without headers pass through anonymously;
// malformed headers are rejected with 401.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		rawRole := strings.TrimSpace(r.Header.Get(HeaderUserRole))
		if rawID == "" && rawRole == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid "+HeaderUserID)
			return
		}
		role := models.Role(strings.ToLower(rawRole))
		if !role.Valid() {
			writeError(w, http.StatusUnauthorized, "invalid "+HeaderUserRole)
			return
		}

		id := &models.Identity{UserID: userID, Role: role}
		ctx := context.WithValue(r.Context(), identityKey, id)
		ctx = notify.WithActor(ctx, userID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity returns 401 when no identity was attached by Identify.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromCtx(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns 403 unless the caller holds one of roles.
// Admins pass every check. Must be applied after RequireIdentity.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromCtx(r.Context())
			if id == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.HasRole(roles...) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromCtx returns the caller, or nil for anonymous requests.
func IdentityFromCtx(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey).(*models.Identity)
	return id
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
