// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
)

// ProjectStore handles project and membership rows.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Save inserts or updates a project row. Members and pages are stored separately.
func (s *ProjectStore) Save(ctx context.Context, p *models.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			owner_id = EXCLUDED.owner_id,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Description, nullUUID(p.OwnerID), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Delete removes a project. Members and pages cascade.
func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// FindByID retrieves a project row without members or pages. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p := &models.Project{}
	var owner uuid.NullUUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &owner, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	p.OwnerID = owner.UUID
	return p, nil
}

// List returns all project rows ordered by creation date.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		var p models.Project
		var owner uuid.NullUUID
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &owner, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.OwnerID = owner.UUID
		items = append(items, p)
	}
	return items, rows.Err()
}

// SaveMember inserts or updates a membership.
func (s *ProjectStore) SaveMember(ctx context.Context, projectID uuid.UUID, m models.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, projectID, m.UserID, m.Role, m.AddedAt)
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

// DeleteMember removes a membership.
func (s *ProjectStore) DeleteMember(ctx context.Context, projectID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM project_members WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// Members returns every membership grouped by project.
func (s *ProjectStore) Members(ctx context.Context) (map[uuid.UUID][]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, user_id, role, added_at
		FROM project_members
		ORDER BY added_at, user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Member)
	for rows.Next() {
		var projectID uuid.UUID
		var m models.Member
		if err := rows.Scan(&projectID, &m.UserID, &m.Role, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out[projectID] = append(out[projectID], m)
	}
	return out, rows.Err()
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
