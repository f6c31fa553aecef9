// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service is the project store: it owns every project and page in
// memory, drives page status through the workflow machine, runs scoring
// passes in the background and persists each change through a Repository.
//
// All mutations serialize on one mutex. Methods return deep copies, so
// callers can never observe or change internal state.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/metrics"
	"reviewdesk/internal/models"
	"reviewdesk/internal/notify"
	"reviewdesk/internal/scoring"
	"reviewdesk/internal/workflow"
)

// Repository persists the store's state. *store.Repository implements it.
type Repository interface {
	LoadAll(ctx context.Context) ([]*models.Project, error)
	SaveProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	SaveMember(ctx context.Context, projectID uuid.UUID, m models.Member) error
	DeleteMember(ctx context.Context, projectID, userID uuid.UUID) error
	SavePage(ctx context.Context, p *models.Page) error
	DeletePage(ctx context.Context, id uuid.UUID) error
}

// Enricher attaches market figures to keyword metrics in place.
type Enricher interface {
	Enrich(ctx context.Context, metrics []models.KeywordMetric)
}

// Archiver stores raw content documents. *storage.Archive implements it.
type Archiver interface {
	Put(ctx context.Context, projectID, pageID uuid.UUID, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Deps are the collaborators of a Service. Repo and Scorer are required.
type Deps struct {
	Repo     Repository
	Scorer   scoring.Scorer
	Enricher Enricher        // optional
	Archive  Archiver        // optional
	Notifier notify.Notifier // optional
	Metrics  *metrics.Metrics
}

// Options tune workflow and scoring behaviour.
type Options struct {
	Workflow        workflow.Policy
	ClearOnRevision bool
	ScoringDelay    time.Duration
	ScoringTimeout  time.Duration
	Weights         scoring.Weights
}

// Service is the in-memory project store.
type Service struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	order    []uuid.UUID
	inflight map[uuid.UUID]*pass
	closed   bool

	repo     Repository
	scorer   scoring.Scorer
	enricher Enricher
	archive  Archiver
	notifier notify.Notifier
	metrics  *metrics.Metrics
	machine  *workflow.Machine
	opts     Options
	now      func() time.Time

	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup
}

// New creates an empty Service. Call Load to restore persisted state.
func New(deps Deps, opts Options) *Service {
	if opts.Weights == (scoring.Weights{}) {
		opts.Weights = scoring.DefaultWeights
	}
	n := deps.Notifier
	if n == nil {
		n = notify.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		projects:  make(map[uuid.UUID]*models.Project),
		inflight:  make(map[uuid.UUID]*pass),
		repo:      deps.Repo,
		scorer:    deps.Scorer,
		enricher:  deps.Enricher,
		archive:   deps.Archive,
		notifier:  n,
		metrics:   deps.Metrics,
		machine:   workflow.New(opts.Workflow),
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		baseCtx:   ctx,
		cancelAll: cancel,
	}
}

// Load replaces the in-memory state with the repository contents. Pages
// left in processing without an analysis get a fresh scoring pass.
func (s *Service) Load(ctx context.Context) error {
	projects, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = make(map[uuid.UUID]*models.Project, len(projects))
	s.order = s.order[:0]
	resumed := 0
	for _, p := range projects {
		if p.Pages == nil {
			p.Pages = []models.Page{}
		}
		s.projects[p.ID] = p
		s.order = append(s.order, p.ID)
		for i := range p.Pages {
			pg := &p.Pages[i]
			if pg.Status == models.PageStatusProcessing && pg.Analysis == nil && pg.HasBothInputs() {
				s.startPassLocked(pg)
				resumed++
			}
		}
	}

	slog.Info("project store loaded", "projects", len(projects), "resumed_passes", resumed)
	return nil
}

// Close cancels running scoring passes and waits for them to exit.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancelAll()
	s.mu.Unlock()
	s.wg.Wait()
}

// projectLocked returns the live project. Caller holds s.mu.
func (s *Service) projectLocked(id uuid.UUID) (*models.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// pageLocked returns the live page. Caller holds s.mu.
func (s *Service) pageLocked(projectID, pageID uuid.UUID) (*models.Project, *models.Page, error) {
	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, nil, err
	}
	i := p.FindPage(pageID)
	if i < 0 {
		return nil, nil, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
	}
	return p, &p.Pages[i], nil
}

// statusChange builds the event for a page whose status moved from from.
func statusChange(ctx context.Context, pg *models.Page, from models.PageStatus, at time.Time) *notify.Event {
	if pg.Status == from {
		return nil
	}
	return &notify.Event{
		ProjectID: pg.ProjectID,
		PageID:    pg.ID,
		PageName:  pg.Name,
		From:      from,
		To:        pg.Status,
		Actor:     notify.ActorFrom(ctx),
		At:        at,
	}
}

// dispatch publishes an event outside the lock.
func (s *Service) dispatch(ctx context.Context, ev *notify.Event) {
	if ev == nil {
		return
	}
	s.metrics.ObserveTransition(ev.From, ev.To)
	s.notifier.Notify(ctx, *ev)
}
