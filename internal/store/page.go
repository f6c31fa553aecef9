// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"reviewdesk/internal/models"
)

// ErrSlugTaken is returned when the unique (project, lower(slug)) index rejects a write.
var ErrSlugTaken = errors.New("slug already exists in project")

// PageStore handles page rows. Structured page data lives in JSONB columns.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

// Save inserts or replaces a page row.
func (s *PageStore) Save(ctx context.Context, p *models.Page) error {
	seo, err := jsonOrNull(p.SEOData)
	if err != nil {
		return fmt.Errorf("encode seo data: %w", err)
	}
	content, err := jsonOrNull(p.ContentData)
	if err != nil {
		return fmt.Errorf("encode content data: %w", err)
	}
	analysis, err := jsonOrNull(p.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pages (id, project_id, name, slug, status,
		                   seo_data, content_data, analysis,
		                   seo_uploads, content_uploads, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			status = EXCLUDED.status,
			seo_data = EXCLUDED.seo_data,
			content_data = EXCLUDED.content_data,
			analysis = EXCLUDED.analysis,
			seo_uploads = EXCLUDED.seo_uploads,
			content_uploads = EXCLUDED.content_uploads,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.ProjectID, p.Name, p.Slug, p.Status,
		seo, content, analysis,
		p.SEOUploads, p.ContentUploads, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("save page %q: %w", p.Slug, ErrSlugTaken)
		}
		return fmt.Errorf("save page: %w", err)
	}
	return nil
}

// Delete removes a page.
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

const pageColumns = `id, project_id, name, slug, status, seo_data, content_data, analysis,
		       seo_uploads, content_uploads, created_at, updated_at`

// FindByID retrieves a page by its UUID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// List returns every page ordered by project and creation date.
func (s *PageStore) List(ctx context.Context) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY project_id, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*models.Page, error) {
	p := &models.Page{}
	var seo, content, analysis []byte
	if err := row.Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.Slug, &p.Status,
		&seo, &content, &analysis,
		&p.SEOUploads, &p.ContentUploads, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(seo, &p.SEOData); err != nil {
		return nil, fmt.Errorf("decode seo data: %w", err)
	}
	if err := decodeJSON(content, &p.ContentData); err != nil {
		return nil, fmt.Errorf("decode content data: %w", err)
	}
	if err := decodeJSON(analysis, &p.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return p, nil
}

// jsonOrNull encodes v, mapping a nil pointer to SQL NULL.
func jsonOrNull[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodeJSON[T any](data []byte, dst **T) error {
	if data == nil {
		*dst = nil
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	*dst = v
	return nil
}
