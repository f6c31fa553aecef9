// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/metrics"
	"reviewdesk/internal/models"
	"reviewdesk/internal/notify"
	"reviewdesk/internal/scoring"
	"reviewdesk/internal/workflow"
)

// stamp identifies the input versions a pass was started for.
type stamp struct {
	seo, content int
}

func stampOf(pg *models.Page) stamp {
	return stamp{seo: pg.SEOData.Version, content: pg.ContentData.Version}
}

// pass is one background scoring run.
type pass struct {
	projectID uuid.UUID
	pageID    uuid.UUID
	stamp     stamp
	input     scoring.Input
	ctx       context.Context
	cancel    context.CancelFunc
}

// startPassLocked schedules a scoring pass over the page's current inputs,
// replacing any pass already running for it. Caller holds s.mu.
func (s *Service) startPassLocked(pg *models.Page) {
	s.cancelPassLocked(pg.ID)
	if s.closed || !pg.HasBothInputs() {
		return
	}

	seo := *pg.SEOData
	content := *pg.ContentData
	content.ParsedContent = pg.ContentData.ParsedContent.Clone()

	ctx, cancel := context.WithCancel(s.baseCtx)
	p := &pass{
		projectID: pg.ProjectID,
		pageID:    pg.ID,
		stamp:     stampOf(pg),
		input:     scoring.NewInput(&seo, &content),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.inflight[pg.ID] = p

	s.wg.Add(1)
	go s.run(p)
}

// cancelPassLocked stops the running pass for a page, if any. Caller holds s.mu.
func (s *Service) cancelPassLocked(pageID uuid.UUID) {
	if p, ok := s.inflight[pageID]; ok {
		p.cancel()
		delete(s.inflight, pageID)
	}
}

func (s *Service) run(p *pass) {
	defer s.wg.Done()
	defer p.cancel()

	start := time.Now()
	if d := s.opts.ScoringDelay; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-p.ctx.Done():
			t.Stop()
			s.finish(p, nil, p.ctx.Err(), start)
			return
		}
	}

	if s.enricher != nil {
		s.enricher.Enrich(p.ctx, p.input.Keywords)
	}

	ctx := p.ctx
	if s.opts.ScoringTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ScoringTimeout)
		defer cancel()
	}

	analysis, err := s.score(ctx, p)
	s.finish(p, analysis, err, start)
}

func (s *Service) score(ctx context.Context, p *pass) (*models.Analysis, error) {
	res, err := s.scorer.Score(ctx, p.input)
	if err != nil {
		if p.ctx.Err() != nil {
			return nil, p.ctx.Err()
		}
		if !errors.Is(err, scoring.ErrAnalysisUnavailable) {
			err = fmt.Errorf("%w: %w", scoring.ErrAnalysisUnavailable, err)
		}
		return nil, err
	}
	return scoring.Build(p.input, res, s.opts.Weights, p.stamp.seo, p.stamp.content)
}

// finish applies a pass result if it still describes the page's current
// inputs. Stale, cancelled and failed passes leave the page untouched.
func (s *Service) finish(p *pass, analysis *models.Analysis, err error, start time.Time) {
	s.mu.Lock()

	if s.inflight[p.pageID] != p {
		s.mu.Unlock()
		s.metrics.ObservePass(metrics.ResultDiscarded, time.Since(start))
		slog.Debug("stale scoring pass discarded", "page_id", p.pageID)
		return
	}
	delete(s.inflight, p.pageID)

	if p.ctx.Err() != nil {
		s.mu.Unlock()
		s.metrics.ObservePass(metrics.ResultCancelled, time.Since(start))
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.metrics.ObservePass(metrics.ResultFailed, time.Since(start))
		slog.Error("scoring pass failed", "project_id", p.projectID, "page_id", p.pageID, "error", err)
		return
	}

	_, pg, lookupErr := s.pageLocked(p.projectID, p.pageID)
	if lookupErr != nil || pg.Status != models.PageStatusProcessing || !pg.HasBothInputs() || stampOf(pg) != p.stamp {
		s.mu.Unlock()
		s.metrics.ObservePass(metrics.ResultDiscarded, time.Since(start))
		slog.Debug("scoring result no longer matches page", "page_id", p.pageID)
		return
	}

	next, trErr := s.machine.Transition(pg.Status, workflow.EventAnalysisCompleted, workflow.GuardFor(pg))
	if trErr != nil {
		s.mu.Unlock()
		s.metrics.ObservePass(metrics.ResultDiscarded, time.Since(start))
		return
	}

	snapshot := pg.Clone()
	now := s.now()
	pg.Analysis = analysis
	pg.Status = next
	pg.UpdatedAt = now
	ctx := notify.WithActor(context.Background(), "scorer")
	if saveErr := s.repo.SavePage(ctx, pg); saveErr != nil {
		*pg = *snapshot
		s.mu.Unlock()
		s.metrics.ObservePass(metrics.ResultFailed, time.Since(start))
		slog.Error("saving analysis failed", "page_id", p.pageID, "error", saveErr)
		return
	}
	change := statusChange(ctx, pg, snapshot.Status, now)
	s.mu.Unlock()

	s.metrics.ObservePass(metrics.ResultOK, time.Since(start))
	slog.Info("page analysed", "page_id", p.pageID, "overall_score", analysis.OverallScore)
	s.dispatch(ctx, change)
}

// Rescore starts a new scoring pass for a page stuck in processing, e.g.
// after the scorer was unavailable.
func (s *Service) Rescore(ctx context.Context, projectID, pageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, pg, err := s.pageLocked(projectID, pageID)
	if err != nil {
		return err
	}
	if pg.Status != models.PageStatusProcessing || !pg.HasBothInputs() {
		return fmt.Errorf("%w: rescore from %s", ErrInvalidTransition, pg.Status)
	}
	if _, running := s.inflight[pageID]; running {
		return ErrScoringInFlight
	}
	s.startPassLocked(pg)
	return nil
}

// Scoring reports whether a pass is running for the page.
func (s *Service) Scoring(pageID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[pageID]
	return ok
}

// WaitForAnalysis polls the page until it has an analysis or leaves
// processing, or ctx ends.
func (s *Service) WaitForAnalysis(ctx context.Context, projectID, pageID uuid.UUID, interval time.Duration) (*models.Page, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pg, err := s.GetPage(projectID, pageID)
		if err != nil {
			return nil, err
		}
		if pg.Analysis != nil || pg.Status != models.PageStatusProcessing {
			return pg, nil
		}
		select {
		case <-ctx.Done():
			return pg, ctx.Err()
		case <-ticker.C:
		}
	}
}
