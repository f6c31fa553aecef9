// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The service runs against an in-memory repository, so no database is needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reviewdesk/internal/middleware"
	"reviewdesk/internal/models"
	"reviewdesk/internal/scoring"
	"reviewdesk/internal/service"
	"reviewdesk/internal/store"
)

// memRepo accepts every write and keeps nothing. The service holds the
// authoritative state in memory.
type memRepo struct{}

func (memRepo) LoadAll(context.Context) ([]*models.Project, error) { return nil, nil }
func (memRepo) SaveProject(context.Context, *models.Project) error { return nil }
func (memRepo) DeleteProject(context.Context, uuid.UUID) error { return nil }
func (memRepo) SaveMember(context.Context, uuid.UUID, models.Member) error { return nil }
func (memRepo) DeleteMember(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (memRepo) SavePage(context.Context, *models.Page) error { return nil }
func (memRepo) DeletePage(context.Context, uuid.UUID) error { return nil }

// memArchive records archived documents.
type memArchive struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (a *memArchive) Put(_ context.Context, projectID, pageID uuid.UUID, contentType string, body []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := "sources/" + projectID.String() + "/" + pageID.String() + "/" + uuid.NewString()
	a.docs[key] = append([]byte(nil), body...)
	return key, nil
}

func (a *memArchive) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.docs, key)
	return nil
}

// memHistory serves a fixed history list.
type memHistory struct {
	entries []store.HistoryEntry
	limit   int
}

func (h *memHistory) ForPage(_ context.Context, pageID uuid.UUID, limit int) ([]store.HistoryEntry, error) {
	h.limit = limit
	var out []store.HistoryEntry
	for _, e := range h.entries {
		if e.PageID == pageID {
			out = append(out, e)
		}
	}
	return out, nil
}

// testEnv bundles the HTTP handler and the service behind it.
type testEnv struct {
	t       *testing.T
	svc     *service.Service
	archive *memArchive
	history *memHistory
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, service.Options{})
}

func newTestEnvWithOptions(t *testing.T, opts service.Options) *testEnv {
	t.Helper()

	archive := &memArchive{docs: map[string][]byte{}}
	svc := service.New(service.Deps{
		Repo: memRepo{},
		Scorer: &scoring.StaticScorer{Result: scoring.Result{Scores: scoring.CategoryScores{
			SEO: 80, Readability: 80, KeywordDensity: 80, Grammar: 80,
			ContentIntent: 80, TechnicalHealth: 80, StrategicAnalysis: 80, BrandIntent: 80,
		}}},
		Archive: archive,
	}, opts)
	t.Cleanup(svc.Close)

	hist := &memHistory{}
	api := New(svc, hist)

	r := chi.NewRouter()
	r.Use(middleware.Identify)
	r.Use(middleware.RequireIdentity)
	r.Get("/projects", api.ListProjects)
	r.Post("/projects", api.CreateProject)
	r.Get("/projects/{projectID}", api.GetProject)
	r.Put("/projects/{projectID}", api.UpdateProject)
	r.Delete("/projects/{projectID}", api.DeleteProject)
	r.Post("/projects/{projectID}/members", api.AddMember)
	r.Delete("/projects/{projectID}/members/{userID}", api.RemoveMember)
	r.Get("/projects/{projectID}/pages", api.ListPages)
	r.Post("/projects/{projectID}/pages", api.CreatePage)
	r.Route("/projects/{projectID}/pages/{pageID}", func(r chi.Router) {
		r.Get("/", api.GetPage)
		r.Patch("/", api.RenamePage)
		r.Delete("/", api.DeletePage)
		r.Put("/seo", api.UploadSEO)
		r.Put("/content", api.UploadContent)
		r.Post("/approve", api.Approve)
		r.Post("/reject", api.Reject)
		r.Post("/revision", api.RequestRevision)
		r.Post("/reopen", api.Reopen)
		r.Post("/rescore", api.Rescore)
		r.Get("/analysis", api.GetAnalysis)
		r.Get("/seo-breakdown", api.SEOBreakdown)
		r.Get("/history", api.History)
	})

	return &testEnv{t: t, svc: svc, archive: archive, history: hist, handler: r}
}

// request describes one call against the test handler.
type request struct {
	method, path string
	role         models.Role
	user         uuid.UUID
	contentType  string
	body         any // marshalled to JSON unless string
}

func (env *testEnv) do(req request) *httptest.ResponseRecorder {
	env.t.Helper()

	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			env.t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(raw)
		if req.contentType == "" {
			req.contentType = "application/json"
		}
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if req.contentType != "" {
		r.Header.Set("Content-Type", req.contentType)
	}
	if req.role != "" {
		user := req.user
		if user == uuid.Nil {
			user = uuid.New()
		}
		r.Header.Set(middleware.HeaderUserID, user.String())
		r.Header.Set(middleware.HeaderUserRole, string(req.role))
	}
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, r)
	return rr
}

// expect fails the test unless rr has the given status, then decodes the
// body into dst when dst is non-nil.
func (env *testEnv) expect(rr *httptest.ResponseRecorder, status int, dst any) {
	env.t.Helper()
	if rr.Code != status {
		env.t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
			env.t.Fatalf("decode body: %v (%s)", err, rr.Body.String())
		}
	}
}

// newPage creates a project and a page as an admin and returns their paths.
func (env *testEnv) newPage(name string) (projectPath, pagePath string) {
	env.t.Helper()

	var p models.Project
	env.expect(env.do(request{method: http.MethodPost, path: "/projects", role: models.RoleAdmin,
		body: map[string]string{"name": "Acme"}}), http.StatusCreated, &p)

	projectPath = "/projects/" + p.ID.String()
	var pg models.Page
	env.expect(env.do(request{method: http.MethodPost, path: projectPath + "/pages", role: models.RoleAdmin,
		body: map[string]string{"name": name}}), http.StatusCreated, &pg)
	return projectPath, projectPath + "/pages/" + pg.ID.String()
}

// waitStatus polls the page until it reaches want.
func (env *testEnv) waitStatus(pagePath string, want models.PageStatus) models.Page {
	env.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var pg models.Page
		env.expect(env.do(request{method: http.MethodGet, path: pagePath, role: models.RoleVerifier}), http.StatusOK, &pg)
		if pg.Status == want {
			return pg
		}
		if time.Now().After(deadline) {
			env.t.Fatalf("page status = %s, want %s", pg.Status, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %s", rr.Body.String())
	}
	return body["error"]
}
