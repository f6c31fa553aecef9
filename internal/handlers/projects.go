// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"reviewdesk/internal/middleware"
	"reviewdesk/internal/models"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req projectRequest) validate() string {
	if msg := validateName(req.Name); msg != "" {
		return msg
	}
	return validateDescription(req.Description)
}

// ListProjects handles GET /api/projects.
func (a *API) ListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.ListProjects())
}

// CreateProject handles POST /api/projects. The caller becomes the owner.
func (a *API) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var owner uuid.UUID
	if id := middleware.IdentityFromCtx(r.Context()); id != nil {
		owner = id.UserID
	}
	p, err := a.svc.AddProject(r.Context(), req.Name, req.Description, owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/projects/{projectID}.
func (a *API) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	p, err := a.svc.GetProject(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /api/projects/{projectID}.
func (a *API) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	p, err := a.svc.UpdateProject(r.Context(), id, req.Name, req.Description)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{projectID}.
func (a *API) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	if err := a.svc.DeleteProject(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type memberRequest struct {
	UserID uuid.UUID   `json:"user_id"`
	Role   models.Role `json:"role"`
}

// AddMember handles POST /api/projects/{projectID}/members. Adding an
// existing member updates their role.
func (a *API) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req memberRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := a.svc.AddMember(r.Context(), projectID, req.UserID, req.Role)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// RemoveMember handles DELETE /api/projects/{projectID}/members/{userID}.
func (a *API) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := a.svc.RemoveMember(r.Context(), projectID, userID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
