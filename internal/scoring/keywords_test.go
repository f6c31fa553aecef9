// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scoring

import (
	"strconv"
	"strings"
	"testing"

	"reviewdesk/internal/models"
)

func strPtr(s string) *string { return &s }

func pumpsContent() *models.ContentData {
	return &models.ContentData{
		Version: 1,
		ParsedContent: models.ParsedContent{
			H1:         []string{"Welcome to Velocity Pumps"},
			Paragraphs: []string{"We sell industrial pumps. Our industrial pumps last."},
		},
	}
}

func TestAnalyzeKeywordSections(t *testing.T) {
	pc := &models.ParsedContent{
		MetaTitle:       strPtr("Industrial Pumps | Velocity"),
		MetaDescription: strPtr("industrial pumps for every plant"),
		H1:              []string{"Industrial pumps", "More INDUSTRIAL PUMPS"},
		H2:              []string{"Why industrial pumps?"},
		H3:              []string{"nothing here"},
		Paragraphs:      []string{"industrial pumps, industrial pumps.", "industrial pumpsx is not a match"},
	}

	m := AnalyzeKeyword("industrial pumps", models.KeywordPrimary, pc)

	if m.TitleCount != 1 {
		t.Errorf("title count: got %d, want 1", m.TitleCount)
	}
	if m.H1Count != 2 {
		t.Errorf("h1 count: got %d, want 2", m.H1Count)
	}
	if m.H2Count != 1 {
		t.Errorf("h2 count: got %d, want 1", m.H2Count)
	}
	if m.H3Count != 0 {
		t.Errorf("h3 count: got %d, want 0", m.H3Count)
	}
	if m.ParagraphCount != 2 {
		t.Errorf("paragraph count: got %d, want 2", m.ParagraphCount)
	}
	// The meta description is part of the corpus but not of the frequency.
	if m.Frequency != 6 {
		t.Errorf("frequency: got %d, want 6", m.Frequency)
	}
	if m.Type != models.KeywordPrimary {
		t.Errorf("type: got %q", m.Type)
	}
}

func TestAnalyzeKeywordMatching(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		text    string
		want    int
	}{
		{"case insensitive", "Pumps", "PUMPS and pumps", 2},
		{"whole word only", "pump", "pumps pumping pump", 1},
		{"escaped dot", "node.js", "node.js and nodexjs", 1},
		{"escaped parens", "pumps (usa)", "pumps (usa) rock", 0},
		{"regex metachar", "a+b", "a+b aab", 1},
		{"blank keyword", "   ", "anything at all", 0},
		{"no content", "pumps", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := &models.ParsedContent{Paragraphs: []string{tt.text}}
			got := AnalyzeKeyword(tt.keyword, models.KeywordSecondary, pc)
			if got.ParagraphCount != tt.want {
				t.Errorf("count(%q in %q) = %d, want %d", tt.keyword, tt.text, got.ParagraphCount, tt.want)
			}
		})
	}
}

func TestDensity(t *testing.T) {
	pc := pumpsContent().ParsedContent
	m := AnalyzeKeyword("industrial pumps", models.KeywordPrimary, &pc)

	// 4 words in the h1 plus 8 in the paragraph.
	if got := TotalWords(&pc); got != 12 {
		t.Fatalf("total words: got %d, want 12", got)
	}
	if m.Density != "16.67%" {
		t.Errorf("density: got %q, want %q", m.Density, "16.67%")
	}

	empty := &models.ParsedContent{}
	if got := AnalyzeKeyword("pumps", models.KeywordPrimary, empty).Density; got != "0%" {
		t.Errorf("empty density: got %q, want 0%%", got)
	}
}

// TestDensityBounds checks that density parses into [0, 100] for any content.
func TestDensityBounds(t *testing.T) {
	texts := []string{
		"pumps",
		"pumps pumps pumps",
		"industrial pumps industrial pumps",
		"a b c d e f g pumps",
		strings.Repeat("industrial pumps ", 50),
		"pumps-pumps-pumps",
		"pumps,pumps;pumps.pumps",
		"industrial pumps/industrial pumps",
	}
	for _, kw := range []string{"pumps", "industrial pumps", "industrial"} {
		for _, text := range texts {
			pc := &models.ParsedContent{H2: []string{text}, Paragraphs: []string{text}}
			m := AnalyzeKeyword(kw, models.KeywordPrimary, pc)

			sum := m.TitleCount + m.H1Count + m.H2Count + m.H3Count + m.ParagraphCount
			if m.Frequency != sum {
				t.Errorf("frequency %d != section sum %d", m.Frequency, sum)
			}

			v, err := strconv.ParseFloat(strings.TrimSuffix(m.Density, "%"), 64)
			if err != nil {
				t.Fatalf("density %q does not parse: %v", m.Density, err)
			}
			if v < 0 || v > 100 {
				t.Errorf("density %v out of range for %q in %q", v, kw, text)
			}
		}
	}
}

func TestDensityHyphenatedRepeat(t *testing.T) {
	pc := &models.ParsedContent{Paragraphs: []string{"pump-pump-pump"}}
	m := AnalyzeKeyword("pump", models.KeywordPrimary, pc)
	if m.Frequency != 3 {
		t.Errorf("frequency: got %d, want 3", m.Frequency)
	}
	if m.Density != "100.00%" {
		t.Errorf("density: got %q, want 100.00%%", m.Density)
	}
}

func TestCalculateKeywordAnalysis(t *testing.T) {
	seo := &models.SEOData{
		PrimaryKeywords:   []string{"industrial pumps"},
		SecondaryKeywords: []string{"velocity", "valves"},
		Version:           1,
	}

	got := CalculateKeywordAnalysis(seo, pumpsContent())
	if len(got) != 3 {
		t.Fatalf("len: got %d, want 3", len(got))
	}
	if got[0].Keyword != "industrial pumps" || got[0].Type != models.KeywordPrimary || got[0].Frequency != 2 {
		t.Errorf("primary: got %+v", got[0])
	}
	if got[1].Type != models.KeywordSecondary || got[1].H1Count != 1 {
		t.Errorf("velocity: got %+v", got[1])
	}
	if got[2].Frequency != 0 {
		t.Errorf("valves: got %+v", got[2])
	}
}

func TestCalculateKeywordAnalysisMissingInputs(t *testing.T) {
	seo := &models.SEOData{PrimaryKeywords: []string{"pumps"}}

	if got := CalculateKeywordAnalysis(nil, pumpsContent()); got == nil || len(got) != 0 {
		t.Errorf("nil seo: got %v, want empty list", got)
	}
	if got := CalculateKeywordAnalysis(seo, nil); got == nil || len(got) != 0 {
		t.Errorf("nil content: got %v, want empty list", got)
	}
}
