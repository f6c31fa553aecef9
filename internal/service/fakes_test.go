// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/notify"
	"reviewdesk/internal/scoring"
)

var errStorage = errors.New("storage offline")

// memRepo is an in-memory Repository that can be told to fail writes.
type memRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project
	pages    map[uuid.UUID]models.Page
	members  map[uuid.UUID][]models.Member
	fail     bool
	saves    int
}

func newMemRepo() *memRepo {
	return &memRepo{
		projects: map[uuid.UUID]models.Project{},
		pages:    map[uuid.UUID]models.Page{},
		members:  map[uuid.UUID][]models.Member{},
	}
}

func (r *memRepo) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

func (r *memRepo) LoadAll(context.Context) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Project
	for _, p := range r.projects {
		cp := p
		cp.Members = append([]models.Member{}, r.members[p.ID]...)
		cp.Pages = []models.Page{}
		for _, pg := range r.pages {
			if pg.ProjectID == p.ID {
				cp.Pages = append(cp.Pages, *pg.Clone())
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepo) SaveProject(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	cp := *p
	cp.Pages, cp.Members = nil, nil
	r.projects[p.ID] = cp
	return nil
}

func (r *memRepo) DeleteProject(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	delete(r.projects, id)
	for pid, pg := range r.pages {
		if pg.ProjectID == id {
			delete(r.pages, pid)
		}
	}
	return nil
}

func (r *memRepo) SaveMember(_ context.Context, projectID uuid.UUID, m models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	list := r.members[projectID]
	for i := range list {
		if list[i].UserID == m.UserID {
			list[i] = m
			return nil
		}
	}
	r.members[projectID] = append(list, m)
	return nil
}

func (r *memRepo) DeleteMember(_ context.Context, projectID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	list := r.members[projectID]
	for i := range list {
		if list[i].UserID == userID {
			r.members[projectID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memRepo) SavePage(_ context.Context, p *models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	r.saves++
	r.pages[p.ID] = *p.Clone()
	return nil
}

func (r *memRepo) DeletePage(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	delete(r.pages, id)
	return nil
}

func (r *memRepo) page(id uuid.UUID) (models.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[id]
	return p, ok
}

// gatedScorer blocks every call until release is closed, ignoring
// cancellation so stale results really arrive late.
type gatedScorer struct {
	started chan scoring.Input
	release chan struct{}
	result  scoring.Result
}

func newGatedScorer(score float64) *gatedScorer {
	return &gatedScorer{
		started: make(chan scoring.Input, 8),
		release: make(chan struct{}),
		result:  scoring.Result{Scores: uniformScores(score)},
	}
}

func (g *gatedScorer) Score(_ context.Context, in scoring.Input) (*scoring.Result, error) {
	g.started <- in
	<-g.release
	r := g.result
	return &r, nil
}

// flakyScorer fails the first failures calls, then succeeds.
type flakyScorer struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyScorer) Score(context.Context, scoring.Input) (*scoring.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("provider timeout")
	}
	return &scoring.Result{Scores: uniformScores(70)}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

type fakeArchive struct {
	err     error
	puts    int
	deleted []string
}

func (a *fakeArchive) Put(_ context.Context, projectID, pageID uuid.UUID, contentType string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.puts++
	return "sources/" + projectID.String() + "/" + pageID.String() + "/doc", nil
}

func (a *fakeArchive) Delete(_ context.Context, key string) error {
	a.deleted = append(a.deleted, key)
	return nil
}

func uniformScores(v float64) scoring.CategoryScores {
	return scoring.CategoryScores{
		SEO: v, Readability: v, KeywordDensity: v, Grammar: v,
		ContentIntent: v, TechnicalHealth: v, StrategicAnalysis: v, BrandIntent: v,
	}
}

func staticScorer(v float64) *scoring.StaticScorer {
	return &scoring.StaticScorer{Result: scoring.Result{
		Scores:      uniformScores(v),
		Suggestions: []models.Suggestion{{Category: "readability", Priority: "low", Message: "Shorten sentences."}},
	}}
}

// pumpsContent has twelve words with "industrial pumps" occurring twice.
func pumpsContent() models.ParsedContent {
	title := "Industrial pumps"
	return models.ParsedContent{
		MetaTitle:  &title,
		H1:         []string{"Best industrial pumps"},
		Paragraphs: []string{"We sell pumps and valves for plants"},
	}
}

type fixture struct {
	svc     *Service
	repo    *memRepo
	project *models.Project
	page    *models.Page
}

func newFixture(t *testing.T, deps Deps, opts Options) *fixture {
	t.Helper()
	repo := newMemRepo()
	deps.Repo = repo
	if deps.Scorer == nil {
		deps.Scorer = staticScorer(80)
	}
	svc := New(deps, opts)
	t.Cleanup(svc.Close)

	ctx := context.Background()
	p, err := svc.AddProject(ctx, "Pumps Inc", "", uuid.New())
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	pg, err := svc.AddPage(ctx, p.ID, "Industrial Pumps", "")
	if err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	return &fixture{svc: svc, repo: repo, project: p, page: pg}
}

// uploadBoth brings the fixture page into processing.
func (f *fixture) uploadBoth(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.UploadSEOKeywords(ctx, f.project.ID, f.page.ID, []string{"industrial pumps"}, []string{"valves"}); err != nil {
		t.Fatalf("UploadSEOKeywords: %v", err)
	}
	if _, err := f.svc.UploadContent(ctx, f.project.ID, f.page.ID, pumpsContent(), nil); err != nil {
		t.Fatalf("UploadContent: %v", err)
	}
}

func (f *fixture) wait(t *testing.T) *models.Page {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pg, err := f.svc.WaitForAnalysis(ctx, f.project.ID, f.page.ID, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForAnalysis: %v", err)
	}
	return pg
}

// pendingReview brings the fixture page into pending_review.
func (f *fixture) pendingReview(t *testing.T) *models.Page {
	t.Helper()
	f.uploadBoth(t)
	pg := f.wait(t)
	if pg.Status != models.PageStatusPendingReview {
		t.Fatalf("status: got %s, want pending_review", pg.Status)
	}
	return pg
}

// waitIdle waits until no pass runs for the fixture page.
func (f *fixture) waitIdle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for f.svc.Scoring(f.page.ID) {
		if time.Now().After(deadline) {
			t.Fatal("scoring pass did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
