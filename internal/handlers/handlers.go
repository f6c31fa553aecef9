// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the review API.
// Handlers receive their dependencies through the API struct and map
// service errors to status codes in one place.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reviewdesk/internal/middleware"
	"reviewdesk/internal/models"
	"reviewdesk/internal/service"
	"reviewdesk/internal/store"
)

// HistoryReader returns the recorded status changes of a page.
// *store.HistoryStore implements it.
type HistoryReader interface {
	ForPage(ctx context.Context, pageID uuid.UUID, limit int) ([]store.HistoryEntry, error)
}

// API groups the review API handlers and their dependencies.
type API struct {
	svc     *service.Service
	history HistoryReader
}

// New creates the handler group. history may be nil when no database
// backed history is available.
func New(svc *service.Service, history HistoryReader) *API {
	return &API{svc: svc, history: history}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a service error to its HTTP status and writes it.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSlug),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrScoringInFlight):
		return http.StatusConflict
	case errors.Is(err, service.ErrUploadRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAnalysisUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst, rejecting unknown fields and
// bodies over maxJSONBody.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	if _, err := dec.Token(); err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body: trailing data")
		return false
	}
	return true
}

// pathID parses a UUID URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pageIDs parses both the project and the page URL parameters.
func pageIDs(w http.ResponseWriter, r *http.Request) (projectID, pageID uuid.UUID, ok bool) {
	if projectID, ok = pathID(w, r, "projectID"); !ok {
		return
	}
	pageID, ok = pathID(w, r, "pageID")
	return
}

// authorize checks that the caller may act on a project in one of roles.
// A project membership overrides the gateway role; admins always pass.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, projectID uuid.UUID, roles ...models.Role) bool {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if id.IsAdmin() {
		return true
	}
	effective := *id
	if role, ok := a.svc.MemberRole(projectID, id.UserID); ok {
		effective.Role = role
	}
	if !effective.HasRole(roles...) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
