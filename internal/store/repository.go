// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists projects, memberships, pages and page history in
// PostgreSQL. Lookups return (nil, nil) when a row does not exist.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
)

// Repository bundles the stores behind the service's persistence interface.
type Repository struct {
	Projects *ProjectStore
	Pages    *PageStore
}

// NewRepository creates a Repository over db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Projects: NewProjectStore(db),
		Pages:    NewPageStore(db),
	}
}

// LoadAll reads every project with its members and pages in creation order.
func (r *Repository) LoadAll(ctx context.Context) ([]*models.Project, error) {
	projects, err := r.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	members, err := r.Projects.Members(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	pages, err := r.Pages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Project, len(projects))
	out := make([]*models.Project, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		p.Members = members[p.ID]
		p.Pages = []models.Page{}
		byID[p.ID] = p
		out = append(out, p)
	}
	for _, pg := range pages {
		if p, ok := byID[pg.ProjectID]; ok {
			p.Pages = append(p.Pages, pg)
		}
	}
	return out, nil
}

func (r *Repository) SaveProject(ctx context.Context, p *models.Project) error {
	return r.Projects.Save(ctx, p)
}

func (r *Repository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return r.Projects.Delete(ctx, id)
}

func (r *Repository) SaveMember(ctx context.Context, projectID uuid.UUID, m models.Member) error {
	return r.Projects.SaveMember(ctx, projectID, m)
}

func (r *Repository) DeleteMember(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.Projects.DeleteMember(ctx, projectID, userID)
}

func (r *Repository) SavePage(ctx context.Context, p *models.Page) error {
	return r.Pages.Save(ctx, p)
}

func (r *Repository) DeletePage(ctx context.Context, id uuid.UUID) error {
	return r.Pages.Delete(ctx, id)
}
