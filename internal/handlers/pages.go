// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/parse"
	"reviewdesk/internal/service"
)

// maxWait caps the long-poll of GetAnalysis.
const maxWait = 30 * time.Second

type pageRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListPages handles GET /api/projects/{projectID}/pages.
func (a *API) ListPages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	pages, err := a.svc.ListPages(projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// CreatePage handles POST /api/projects/{projectID}/pages. A blank slug
// is derived from the name.
func (a *API) CreatePage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req pageRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := validateName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	pg, err := a.svc.AddPage(r.Context(), projectID, req.Name, req.Slug)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pg)
}

// GetPage handles GET /api/projects/{projectID}/pages/{pageID}.
func (a *API) GetPage(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	pg, err := a.svc.GetPage(projectID, pageID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// RenamePage handles PATCH /api/projects/{projectID}/pages/{pageID}.
func (a *API) RenamePage(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	var req pageRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := validateName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	pg, err := a.svc.RenamePage(r.Context(), projectID, pageID, req.Name, req.Slug)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// DeletePage handles DELETE /api/projects/{projectID}/pages/{pageID}.
func (a *API) DeletePage(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeletePage(r.Context(), projectID, pageID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type seoRequest struct {
	PrimaryKeywords   []string `json:"primary_keywords"`
	SecondaryKeywords []string `json:"secondary_keywords"`
}

// UploadSEO handles PUT .../pages/{pageID}/seo.
func (a *API) UploadSEO(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if !a.authorize(w, r, projectID, models.RoleSEOAnalyst) {
		return
	}
	var req seoRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := validateKeywords(req.PrimaryKeywords, req.SecondaryKeywords); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	pg, err := a.svc.UploadSEOKeywords(r.Context(), projectID, pageID, req.PrimaryKeywords, req.SecondaryKeywords)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// UploadContent handles PUT .../pages/{pageID}/content. A JSON body is
// taken as already parsed content; an HTML or Markdown body is parsed
// here and archived as the page's source document.
func (a *API) UploadContent(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if !a.authorize(w, r, projectID, models.RoleContentWriter) {
		return
	}

	ct := r.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(ct)

	var parsed models.ParsedContent
	var src *service.Source
	switch mt {
	case "", "application/json":
		if !decode(w, r, &parsed) {
			return
		}
	default:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBody))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		pc, err := parse.Document(ct, body)
		switch {
		case errors.Is(err, parse.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		case errors.Is(err, parse.ErrEmpty):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		parsed = *pc
		src = &service.Source{ContentType: mt, Body: body}
	}

	pg, err := a.svc.UploadContent(r.Context(), projectID, pageID, parsed, src)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// Approve handles POST .../pages/{pageID}/approve.
func (a *API) Approve(w http.ResponseWriter, r *http.Request) {
	a.verdict(w, r, a.svc.ApproveContent)
}

// Reject handles POST .../pages/{pageID}/reject.
func (a *API) Reject(w http.ResponseWriter, r *http.Request) {
	a.verdict(w, r, a.svc.RejectContent)
}

// Reopen handles POST .../pages/{pageID}/reopen.
func (a *API) Reopen(w http.ResponseWriter, r *http.Request) {
	a.verdict(w, r, a.svc.Reopen)
}

// RequestRevision handles POST .../pages/{pageID}/revision. An empty body
// flags both sides; otherwise only the sides set to true are flagged.
func (a *API) RequestRevision(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if !a.authorize(w, r, projectID, models.RoleVerifier) {
		return
	}
	req := service.RevisionRequest{SEO: true, Content: true}
	if r.ContentLength != 0 {
		// Sides missing from a JSON body are not flagged.
		req = service.RevisionRequest{}
		if !decode(w, r, &req) {
			return
		}
	}
	pg, err := a.svc.RequestRevision(r.Context(), projectID, pageID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

type verdictFunc func(ctx context.Context, projectID, pageID uuid.UUID) (*models.Page, error)

func (a *API) verdict(w http.ResponseWriter, r *http.Request, fn verdictFunc) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if !a.authorize(w, r, projectID, models.RoleVerifier) {
		return
	}
	pg, err := fn(r.Context(), projectID, pageID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// Rescore handles POST .../pages/{pageID}/rescore. Each pass may call a
// paid scorer, so only verifiers may retry.
func (a *API) Rescore(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if !a.authorize(w, r, projectID, models.RoleVerifier) {
		return
	}
	if err := a.svc.Rescore(r.Context(), projectID, pageID); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scoring"})
}

// GetAnalysis handles GET .../pages/{pageID}/analysis. With ?wait=<duration>
// it blocks until the analysis is ready or the page leaves processing.
func (a *API) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}

	var wait time.Duration
	if raw := r.URL.Query().Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "invalid wait duration")
			return
		}
		wait = min(d, maxWait)
	}

	var pg *models.Page
	var err error
	if wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		defer cancel()
		pg, err = a.svc.WaitForAnalysis(ctx, projectID, pageID, 200*time.Millisecond)
		if errors.Is(err, context.DeadlineExceeded) && pg != nil {
			err = nil
		}
	} else {
		pg, err = a.svc.GetPage(projectID, pageID)
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	if pg.Analysis == nil {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":  pg.Status,
			"scoring": a.svc.Scoring(pageID),
		})
		return
	}
	writeJSON(w, http.StatusOK, pg.Analysis)
}

// SEOBreakdown handles GET .../pages/{pageID}/seo-breakdown.
func (a *API) SEOBreakdown(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	b, err := a.svc.SEOBreakdown(projectID, pageID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// History handles GET .../pages/{pageID}/history?limit=N.
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	projectID, pageID, ok := pageIDs(w, r)
	if !ok {
		return
	}
	if a.history == nil {
		writeError(w, http.StatusNotImplemented, "history is not available")
		return
	}
	if _, err := a.svc.GetPage(projectID, pageID); err != nil {
		fail(w, r, err)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := a.history.ForPage(r.Context(), pageID, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
