// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"reviewdesk/internal/models"
	"reviewdesk/internal/scoring"
)

// Generator is the part of a Provider the scorer needs. *Registry satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Scorer asks an LLM to grade page content. It implements scoring.Scorer.
type Scorer struct {
	gen Generator
}

// NewScorer creates a Scorer backed by gen.
func NewScorer(gen Generator) *Scorer {
	return &Scorer{gen: gen}
}

const scoringSystemPrompt = `You are an SEO and editorial reviewer. Grade the page content you are given.

Respond with ONLY a JSON object of this shape, no prose and no code fences:
{
  "scores": {
    "seo": 0-100,
    "readability": 0-100,
    "keyword_density": 0-100,
    "grammar": 0-100,
    "content_intent": 0-100,
    "technical_health": 0-100,
    "strategic_analysis": 0-100,
    "brand_intent": 0-100
  },
  "suggestions": [
    {"category": "seo|readability|grammar|content_intent|technical_health|strategic_analysis|brand_intent", "priority": "low|medium|high", "message": "..."}
  ]
}

Give at most 8 suggestions, most important first.`

// maxParagraphChars trims very long paragraphs out of the prompt.
const maxParagraphChars = 2000

// truncate cuts s to at most n bytes on a rune boundary and marks the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Score implements scoring.Scorer.
func (s *Scorer) Score(ctx context.Context, in scoring.Input) (*scoring.Result, error) {
	reply, err := s.gen.Generate(ctx, scoringSystemPrompt, buildScoringPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrAnalysisUnavailable, err)
	}
	return parseScoringReply(reply)
}

func buildScoringPrompt(in scoring.Input) string {
	var b strings.Builder
	pc := in.Content

	fmt.Fprintf(&b, "Primary keywords: %s\n", strings.Join(in.PrimaryKeywords, ", "))
	fmt.Fprintf(&b, "Secondary keywords: %s\n\n", strings.Join(in.SecondaryKeywords, ", "))
	fmt.Fprintf(&b, "Meta title: %s\n", pc.Title())
	fmt.Fprintf(&b, "Meta description: %s\n\n", pc.Description())

	writeSection(&b, "H1", pc.H1)
	writeSection(&b, "H2", pc.H2)
	writeSection(&b, "H3", pc.H3)

	b.WriteString("Paragraphs:\n")
	for _, p := range pc.Paragraphs {
		b.WriteString(truncate(p, maxParagraphChars))
		b.WriteString("\n\n")
	}

	if len(in.Keywords) > 0 {
		b.WriteString("Measured keyword usage:\n")
		for _, m := range in.Keywords {
			fmt.Fprintf(&b, "- %q (%s): %d occurrences, density %s\n", m.Keyword, m.Type, m.Frequency, m.Density)
		}
	}
	return b.String()
}

func writeSection(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

// scoringReply mirrors the JSON the model is asked to produce. Pointers
// distinguish a missing score from a zero.
type scoringReply struct {
	Scores struct {
		SEO               *float64 `json:"seo"`
		Readability       *float64 `json:"readability"`
		KeywordDensity    *float64 `json:"keyword_density"`
		Grammar           *float64 `json:"grammar"`
		ContentIntent     *float64 `json:"content_intent"`
		TechnicalHealth   *float64 `json:"technical_health"`
		StrategicAnalysis *float64 `json:"strategic_analysis"`
		BrandIntent       *float64 `json:"brand_intent"`
	} `json:"scores"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

func parseScoringReply(reply string) (*scoring.Result, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", scoring.ErrAnalysisUnavailable)
	}

	var r scoringReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrAnalysisUnavailable, err)
	}

	sc := r.Scores
	fields := []*float64{
		sc.SEO, sc.Readability, sc.KeywordDensity, sc.Grammar,
		sc.ContentIntent, sc.TechnicalHealth, sc.StrategicAnalysis, sc.BrandIntent,
	}
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: reply is missing a category score", scoring.ErrAnalysisUnavailable)
		}
	}

	res := &scoring.Result{
		Scores: scoring.CategoryScores{
			SEO:               *sc.SEO,
			Readability:       *sc.Readability,
			KeywordDensity:    *sc.KeywordDensity,
			Grammar:           *sc.Grammar,
			ContentIntent:     *sc.ContentIntent,
			TechnicalHealth:   *sc.TechnicalHealth,
			StrategicAnalysis: *sc.StrategicAnalysis,
			BrandIntent:       *sc.BrandIntent,
		},
	}
	if err := res.Scores.Validate(); err != nil {
		return nil, err
	}

	for _, sg := range r.Suggestions {
		sg.Message = strings.TrimSpace(sg.Message)
		if sg.Message == "" {
			continue
		}
		if sg.Priority == "" {
			sg.Priority = "medium"
		}
		res.Suggestions = append(res.Suggestions, sg)
	}
	return res, nil
}

// extractJSON strips code fences and surrounding prose, returning the
// outermost {...} span or "" when there is none.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
