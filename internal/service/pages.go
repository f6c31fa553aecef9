// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/scoring"
	"reviewdesk/internal/slug"
)

// AddPage creates a draft page. A blank pageSlug is generated from name.
// Slugs are unique per project, compared case-insensitively.
func (s *Service) AddPage(ctx context.Context, projectID uuid.UUID, name, pageSlug string) (*models.Page, error) {
	name, pageSlug, err := pageIdentity(name, pageSlug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}
	if slugTaken(p, pageSlug, uuid.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSlug, pageSlug)
	}

	now := s.now()
	pg := models.Page{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Slug:      pageSlug,
		Status:    models.PageStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SavePage(ctx, &pg); err != nil {
		return nil, fmt.Errorf("add page: %w", err)
	}

	p.Pages = append(p.Pages, pg)
	return pg.Clone(), nil
}

// RenamePage changes a page's name and slug under the same uniqueness rule.
func (s *Service) RenamePage(ctx context.Context, projectID, pageID uuid.UUID, name, pageSlug string) (*models.Page, error) {
	name, pageSlug, err := pageIdentity(name, pageSlug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, pg, err := s.pageLocked(projectID, pageID)
	if err != nil {
		return nil, err
	}
	if slugTaken(p, pageSlug, pageID) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSlug, pageSlug)
	}

	prevName, prevSlug, prevUpdated := pg.Name, pg.Slug, pg.UpdatedAt
	pg.Name, pg.Slug, pg.UpdatedAt = name, pageSlug, s.now()
	if err := s.repo.SavePage(ctx, pg); err != nil {
		pg.Name, pg.Slug, pg.UpdatedAt = prevName, prevSlug, prevUpdated
		return nil, fmt.Errorf("rename page: %w", err)
	}
	return pg.Clone(), nil
}

// DeletePage removes a page and cancels its scoring pass, if any.
func (s *Service) DeletePage(ctx context.Context, projectID, pageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, err := s.pageLocked(projectID, pageID)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePage(ctx, pageID); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	s.cancelPassLocked(pageID)
	i := p.FindPage(pageID)
	p.Pages = append(p.Pages[:i], p.Pages[i+1:]...)
	return nil
}

// GetPage returns a snapshot of one page.
func (s *Service) GetPage(projectID, pageID uuid.UUID) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, pg, err := s.pageLocked(projectID, pageID)
	if err != nil {
		return nil, err
	}
	return pg.Clone(), nil
}

// ListPages returns snapshots of a project's pages in creation order.
func (s *Service) ListPages(projectID uuid.UUID) ([]models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Page, 0, len(p.Pages))
	for i := range p.Pages {
		out = append(out, *p.Pages[i].Clone())
	}
	return out, nil
}

// SEOBreakdown computes the display-only SEO checklist for a page. A page
// without content scores against empty content.
func (s *Service) SEOBreakdown(projectID, pageID uuid.UUID) (*scoring.Breakdown, error) {
	pg, err := s.GetPage(projectID, pageID)
	if err != nil {
		return nil, err
	}
	var pc models.ParsedContent
	if pg.ContentData != nil {
		pc = pg.ContentData.ParsedContent
	}
	b := scoring.SEOBreakdown(pg.SEOData, &pc)
	return &b, nil
}

func pageIdentity(name, pageSlug string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: page name is required", ErrInvalidInput)
	}
	pageSlug = strings.TrimSpace(pageSlug)
	if pageSlug == "" {
		pageSlug = slug.Generate(name)
	}
	if pageSlug == "" {
		return "", "", fmt.Errorf("%w: cannot derive a slug from %q", ErrInvalidInput, name)
	}
	if !slug.Valid(slug.Normalize(pageSlug)) {
		return "", "", fmt.Errorf("%w: slug %q may only hold letters, digits and single hyphens", ErrInvalidInput, pageSlug)
	}
	return name, pageSlug, nil
}

// slugTaken reports whether another page of p (other than except) uses s.
func slugTaken(p *models.Project, s string, except uuid.UUID) bool {
	for i := range p.Pages {
		if p.Pages[i].ID != except && slug.Equal(p.Pages[i].Slug, s) {
			return true
		}
	}
	return false
}
