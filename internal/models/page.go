// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// PageStatus is the workflow state of a single page.
type PageStatus string

const (
	PageStatusDraft             PageStatus = "draft"
	PageStatusAwaitingSEO       PageStatus = "awaiting_seo"
	PageStatusAwaitingContent   PageStatus = "awaiting_content"
	PageStatusProcessing        PageStatus = "processing"
	PageStatusPendingReview     PageStatus = "pending_review"
	PageStatusRevisionRequested PageStatus = "revision_requested"
	PageStatusApproved          PageStatus = "approved"
	PageStatusRejected          PageStatus = "rejected"
)

// Page is the unit of workflow: one URL's keywords, content and analysis.
type Page struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Status      PageStatus   `json:"status"`
	SEOData     *SEOData     `json:"seo_data,omitempty"`
	ContentData *ContentData `json:"content_data,omitempty"`
	Analysis    *Analysis    `json:"analysis,omitempty"`

	// Upload counters back the data versions. They only ever grow, even
	// when a revision clears the data they describe.
	SEOUploads     int `json:"seo_uploads"`
	ContentUploads int `json:"content_uploads"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SEOData holds the keywords uploaded by the SEO analyst.
type SEOData struct {
	PrimaryKeywords   []string  `json:"primary_keywords"`
	SecondaryKeywords []string  `json:"secondary_keywords"`
	Version           int       `json:"version"`
	UploadedAt        time.Time `json:"uploaded_at"`
}

// ContentData holds the structured content uploaded by the writer.
type ContentData struct {
	ParsedContent ParsedContent `json:"parsed_content"`
	Version       int           `json:"version"`
	UploadedAt    time.Time     `json:"uploaded_at"`
	SourceKey     *string       `json:"source_key,omitempty"` // archived raw document, if any
}

// ParsedContent is the sectioned text of a page.
type ParsedContent struct {
	MetaTitle       *string  `json:"meta_title,omitempty"`
	MetaDescription *string  `json:"meta_description,omitempty"`
	H1              []string `json:"h1"`
	H2              []string `json:"h2"`
	H3              []string `json:"h3"`
	Paragraphs      []string `json:"paragraphs"`
}

// IsEmpty returns true if the content carries no text at all.
func (c *ParsedContent) IsEmpty() bool {
	return deref(c.MetaTitle) == "" && deref(c.MetaDescription) == "" &&
		len(c.H1) == 0 && len(c.H2) == 0 && len(c.H3) == 0 && len(c.Paragraphs) == 0
}

// Title returns the meta title or an empty string.
func (c *ParsedContent) Title() string { return deref(c.MetaTitle) }

// Description returns the meta description or an empty string.
func (c *ParsedContent) Description() string { return deref(c.MetaDescription) }

// HasBothInputs returns true once keywords and content are both present.
func (p *Page) HasBothInputs() bool {
	return p.SEOData != nil && p.ContentData != nil
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	c := *p
	if p.SEOData != nil {
		s := *p.SEOData
		s.PrimaryKeywords = slices.Clone(p.SEOData.PrimaryKeywords)
		s.SecondaryKeywords = slices.Clone(p.SEOData.SecondaryKeywords)
		c.SEOData = &s
	}
	if p.ContentData != nil {
		d := *p.ContentData
		d.ParsedContent = p.ContentData.ParsedContent.Clone()
		d.SourceKey = cloneString(p.ContentData.SourceKey)
		c.ContentData = &d
	}
	if p.Analysis != nil {
		c.Analysis = p.Analysis.Clone()
	}
	return &c
}

// Clone returns a deep copy of the content.
func (c ParsedContent) Clone() ParsedContent {
	return ParsedContent{
		MetaTitle:       cloneString(c.MetaTitle),
		MetaDescription: cloneString(c.MetaDescription),
		H1:              slices.Clone(c.H1),
		H2:              slices.Clone(c.H2),
		H3:              slices.Clone(c.H3),
		Paragraphs:      slices.Clone(c.Paragraphs),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
