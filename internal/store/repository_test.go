// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/notify"
)

func newTestProject() *models.Project {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Project{
		ID:        uuid.New(),
		Name:      "Pumps Inc",
		OwnerID:   uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestPage(projectID uuid.UUID, slug string) *models.Page {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Page{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      "Page " + slug,
		Slug:      slug,
		Status:    models.PageStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	p := newTestProject()
	t.Cleanup(func() { cleanProjects(t, db, p.ID) })

	if err := repo.SaveProject(ctx, p); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	member := models.Member{UserID: uuid.New(), Role: models.RoleVerifier, AddedAt: p.CreatedAt}
	if err := repo.SaveMember(ctx, p.ID, member); err != nil {
		t.Fatalf("SaveMember: %v", err)
	}

	pg := newTestPage(p.ID, "industrial-pumps")
	title := "Industrial Pumps"
	pg.Status = models.PageStatusPendingReview
	pg.SEOUploads, pg.ContentUploads = 2, 1
	pg.SEOData = &models.SEOData{PrimaryKeywords: []string{"industrial pumps"}, SecondaryKeywords: []string{}, Version: 2, UploadedAt: pg.CreatedAt}
	pg.ContentData = &models.ContentData{
		ParsedContent: models.ParsedContent{MetaTitle: &title, H1: []string{"Pumps"}, H2: []string{}, H3: []string{}, Paragraphs: []string{"We sell pumps."}},
		Version:       1,
		UploadedAt:    pg.CreatedAt,
	}
	pg.Analysis = &models.Analysis{OverallScore: 77, SEOVersion: 2, ContentVersion: 1, KeywordAnalysis: []models.KeywordMetric{}, Suggestions: []models.Suggestion{}}
	if err := repo.SavePage(ctx, pg); err != nil {
		t.Fatalf("SavePage: %v", err)
	}

	all, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	var got *models.Project
	for _, lp := range all {
		if lp.ID == p.ID {
			got = lp
		}
	}
	if got == nil {
		t.Fatal("saved project not loaded")
	}
	if got.OwnerID != p.OwnerID {
		t.Errorf("owner: got %s, want %s", got.OwnerID, p.OwnerID)
	}
	if len(got.Members) != 1 || got.Members[0].Role != models.RoleVerifier {
		t.Errorf("members: got %+v", got.Members)
	}
	if len(got.Pages) != 1 {
		t.Fatalf("pages: got %d", len(got.Pages))
	}
	lp := got.Pages[0]
	if lp.Status != models.PageStatusPendingReview || lp.SEOUploads != 2 {
		t.Errorf("page row: got %+v", lp)
	}
	if lp.ContentData == nil || lp.ContentData.ParsedContent.Title() != title {
		t.Errorf("content data: got %+v", lp.ContentData)
	}
	if lp.Analysis == nil || lp.Analysis.OverallScore != 77 {
		t.Errorf("analysis: got %+v", lp.Analysis)
	}

	// Clearing analysis stores NULL.
	pg.Analysis = nil
	if err := repo.SavePage(ctx, pg); err != nil {
		t.Fatalf("SavePage (clear): %v", err)
	}
	found, err := repo.Pages.FindByID(ctx, pg.ID)
	if err != nil || found == nil {
		t.Fatalf("FindByID: %v, %v", found, err)
	}
	if found.Analysis != nil {
		t.Errorf("expected nil analysis, got %+v", found.Analysis)
	}

	if err := repo.DeleteMember(ctx, p.ID, member.UserID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if err := repo.DeletePage(ctx, pg.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if found, _ := repo.Pages.FindByID(ctx, pg.ID); found != nil {
		t.Error("page still present after delete")
	}
}

func TestPageSlugUniqueCaseInsensitive(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	p := newTestProject()
	t.Cleanup(func() { cleanProjects(t, db, p.ID) })
	if err := repo.SaveProject(ctx, p); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	if err := repo.SavePage(ctx, newTestPage(p.ID, "Pumps")); err != nil {
		t.Fatalf("SavePage: %v", err)
	}
	err := repo.SavePage(ctx, newTestPage(p.ID, "pumps"))
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("expected ErrSlugTaken, got %v", err)
	}
}

func TestFindMissing(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	if p, err := repo.Projects.FindByID(ctx, uuid.New()); p != nil || err != nil {
		t.Errorf("project: expected (nil, nil), got %v, %v", p, err)
	}
	if p, err := repo.Pages.FindByID(ctx, uuid.New()); p != nil || err != nil {
		t.Errorf("page: expected (nil, nil), got %v, %v", p, err)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	p := newTestProject()
	t.Cleanup(func() { cleanProjects(t, db, p.ID) })
	repo.SaveProject(ctx, p)
	pg := newTestPage(p.ID, "cascade")
	if err := repo.SavePage(ctx, pg); err != nil {
		t.Fatalf("SavePage: %v", err)
	}

	if err := repo.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if found, _ := repo.Pages.FindByID(ctx, pg.ID); found != nil {
		t.Error("page survived project delete")
	}
}

func TestHistoryStore(t *testing.T) {
	db := testDB(t)
	h := NewHistoryStore(db)
	ctx := context.Background()

	projectID, pageID := uuid.New(), uuid.New()
	t.Cleanup(func() { cleanProjects(t, db, projectID) })

	base := time.Now().UTC()
	h.Notify(ctx, notify.Event{ProjectID: projectID, PageID: pageID, From: models.PageStatusDraft, To: models.PageStatusAwaitingContent, At: base})
	h.Notify(ctx, notify.Event{ProjectID: projectID, PageID: pageID, From: models.PageStatusAwaitingContent, To: models.PageStatusProcessing, Actor: "writer", At: base.Add(time.Second)})

	entries, err := h.ForPage(ctx, pageID, 10)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].To != models.PageStatusProcessing || entries[0].Actor != "writer" {
		t.Errorf("newest entry: got %+v", entries[0])
	}
}
