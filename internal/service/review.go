// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/workflow"
)

// Source is the raw document a content upload was parsed from.
type Source struct {
	ContentType string
	Body        []byte
}

// UploadSEOKeywords replaces the page's keywords. Blank keywords are
// dropped; an upload with none left is rejected.
func (s *Service) UploadSEOKeywords(ctx context.Context, projectID, pageID uuid.UUID, primary, secondary []string) (*models.Page, error) {
	primary, secondary = cleanKeywords(primary), cleanKeywords(secondary)
	if len(primary) == 0 && len(secondary) == 0 {
		return nil, fmt.Errorf("%w: no keywords", ErrUploadRejected)
	}

	return s.upload(ctx, projectID, pageID, workflow.EventSEOUploaded, func(pg *models.Page, now time.Time) {
		pg.SEOUploads++
		pg.SEOData = &models.SEOData{
			PrimaryKeywords:   primary,
			SecondaryKeywords: secondary,
			Version:           pg.SEOUploads,
			UploadedAt:        now,
		}
	})
}

// UploadContent replaces the page's content. When src is given and an
// archive is configured, the raw document is stored first and removed again
// if the upload does not go through.
func (s *Service) UploadContent(ctx context.Context, projectID, pageID uuid.UUID, parsed models.ParsedContent, src *Source) (*models.Page, error) {
	if parsed.IsEmpty() {
		return nil, fmt.Errorf("%w: content is empty", ErrUploadRejected)
	}
	parsed = withEmptySections(parsed.Clone())

	if err := s.checkUpload(projectID, pageID, workflow.EventContentUploaded); err != nil {
		return nil, err
	}

	var sourceKey *string
	if src != nil && s.archive != nil {
		key, err := s.archive.Put(ctx, projectID, pageID, src.ContentType, src.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: archive source: %w", ErrUploadRejected, err)
		}
		sourceKey = &key
	}

	pg, err := s.upload(ctx, projectID, pageID, workflow.EventContentUploaded, func(pg *models.Page, now time.Time) {
		pg.ContentUploads++
		pg.ContentData = &models.ContentData{
			ParsedContent: parsed,
			Version:       pg.ContentUploads,
			UploadedAt:    now,
			SourceKey:     sourceKey,
		}
	})
	if err != nil && sourceKey != nil {
		s.discardSource(ctx, *sourceKey)
	}
	return pg, err
}

// checkUpload fails when the page is unknown or its status refuses ev.
func (s *Service) checkUpload(projectID, pageID uuid.UUID, ev workflow.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, pg, err := s.pageLocked(projectID, pageID)
	if err != nil {
		return err
	}
	_, err = s.machine.Transition(pg.Status, ev, workflow.GuardFor(pg))
	return err
}

func (s *Service) discardSource(ctx context.Context, key string) {
	if err := s.archive.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("discard archived source", "key", key, "error", err)
	}
}

// upload applies one data upload, moves the page through the workflow and
// schedules a scoring pass when both inputs are present. On any failure the
// page is left exactly as it was.
func (s *Service) upload(ctx context.Context, projectID, pageID uuid.UUID, ev workflow.Event, apply func(*models.Page, time.Time)) (*models.Page, error) {
	s.mu.Lock()
	_, pg, err := s.pageLocked(projectID, pageID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	snapshot := pg.Clone()
	now := s.now()
	apply(pg, now)

	next, err := s.machine.Transition(snapshot.Status, ev, workflow.GuardFor(pg))
	if err != nil {
		*pg = *snapshot
		s.mu.Unlock()
		return nil, err
	}
	pg.Status = next
	pg.Analysis = nil
	pg.UpdatedAt = now

	if err := s.repo.SavePage(ctx, pg); err != nil {
		*pg = *snapshot
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrUploadRejected, err)
	}

	s.cancelPassLocked(pg.ID)
	if pg.Status == models.PageStatusProcessing {
		s.startPassLocked(pg)
	}
	out := pg.Clone()
	change := statusChange(ctx, pg, snapshot.Status, now)
	s.mu.Unlock()

	s.dispatch(ctx, change)
	return out, nil
}

// ApproveContent accepts a page under review.
func (s *Service) ApproveContent(ctx context.Context, projectID, pageID uuid.UUID) (*models.Page, error) {
	return s.review(ctx, projectID, pageID, workflow.EventApprove, nil)
}

// RejectContent rejects a page under review.
func (s *Service) RejectContent(ctx context.Context, projectID, pageID uuid.UUID) (*models.Page, error) {
	return s.review(ctx, projectID, pageID, workflow.EventReject, nil)
}

// RevisionRequest names the inputs a verifier wants redone.
type RevisionRequest struct {
	SEO     bool `json:"revise_seo"`
	Content bool `json:"revise_content"`
}

// RequestRevision sends a page under review back for changes. With
// ClearOnRevision set, the flagged inputs are cleared so they must be
// uploaded again; their version counters are kept.
func (s *Service) RequestRevision(ctx context.Context, projectID, pageID uuid.UUID, req RevisionRequest) (*models.Page, error) {
	return s.review(ctx, projectID, pageID, workflow.EventRequestRevision, func(pg *models.Page) {
		if !s.opts.ClearOnRevision {
			return
		}
		if req.SEO {
			pg.SEOData = nil
		}
		if req.Content {
			pg.ContentData = nil
		}
		if !pg.HasBothInputs() {
			pg.Analysis = nil
		}
	})
}

// Reopen moves an approved or rejected page back to revision_requested.
func (s *Service) Reopen(ctx context.Context, projectID, pageID uuid.UUID) (*models.Page, error) {
	return s.review(ctx, projectID, pageID, workflow.EventReopen, nil)
}

func (s *Service) review(ctx context.Context, projectID, pageID uuid.UUID, ev workflow.Event, apply func(*models.Page)) (*models.Page, error) {
	s.mu.Lock()
	_, pg, err := s.pageLocked(projectID, pageID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	next, err := s.machine.Transition(pg.Status, ev, workflow.GuardFor(pg))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	snapshot := pg.Clone()
	now := s.now()
	pg.Status = next
	pg.UpdatedAt = now
	if apply != nil {
		apply(pg)
	}
	if err := s.repo.SavePage(ctx, pg); err != nil {
		*pg = *snapshot
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", ev, err)
	}

	out := pg.Clone()
	change := statusChange(ctx, pg, snapshot.Status, now)
	s.mu.Unlock()

	s.dispatch(ctx, change)
	return out, nil
}

// cleanKeywords trims keywords and drops blanks.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func withEmptySections(pc models.ParsedContent) models.ParsedContent {
	if pc.H1 == nil {
		pc.H1 = []string{}
	}
	if pc.H2 == nil {
		pc.H2 = []string{}
	}
	if pc.H3 == nil {
		pc.H3 = []string{}
	}
	if pc.Paragraphs == nil {
		pc.Paragraphs = []string{}
	}
	return pc
}
