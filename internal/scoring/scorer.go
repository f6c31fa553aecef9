// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"reviewdesk/internal/models"
)

// ErrAnalysisUnavailable means the scorer failed or returned malformed data.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// Input is everything a scorer may look at.
type Input struct {
	PrimaryKeywords   []string
	SecondaryKeywords []string
	Content           models.ParsedContent
	Keywords          []models.KeywordMetric
}

// NewInput assembles scorer input from a page that has both data sides.
func NewInput(seo *models.SEOData, content *models.ContentData) Input {
	return Input{
		PrimaryKeywords:   seo.PrimaryKeywords,
		SecondaryKeywords: seo.SecondaryKeywords,
		Content:           content.ParsedContent,
		Keywords:          CalculateKeywordAnalysis(seo, content),
	}
}

// Result is what a scorer produces.
type Result struct {
	Scores      CategoryScores      `json:"scores"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

// Scorer produces category scores for a page.
type Scorer interface {
	Score(ctx context.Context, in Input) (*Result, error)
}

// Build composes the final Analysis from the scorer output.
func Build(in Input, res *Result, w Weights, seoVersion, contentVersion int) (*models.Analysis, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: empty result", ErrAnalysisUnavailable)
	}
	if err := res.Scores.Validate(); err != nil {
		return nil, err
	}

	s := res.Scores
	suggestions := append(KeywordSuggestions(in.Keywords), res.Suggestions...)
	return &models.Analysis{
		OverallScore:           w.Overall(s),
		SEOScore:               roundScore(s.SEO),
		ReadabilityScore:       roundScore(s.Readability),
		KeywordDensityScore:    roundScore(s.KeywordDensity),
		GrammarScore:           roundScore(s.Grammar),
		ContentIntentScore:     roundScore(s.ContentIntent),
		TechnicalHealthScore:   roundScore(s.TechnicalHealth),
		StrategicAnalysisScore: roundScore(s.StrategicAnalysis),
		BrandIntentScore:       roundScore(s.BrandIntent),
		KeywordAnalysis:        in.Keywords,
		Suggestions:            suggestions,
		ProcessedAt:            time.Now().UTC(),
		SEOVersion:             seoVersion,
		ContentVersion:         contentVersion,
	}, nil
}

func roundScore(v float64) int { return int(math.Round(v)) }

// KeywordSuggestions flags keywords that never occur in the content.
func KeywordSuggestions(metrics []models.KeywordMetric) []models.Suggestion {
	out := []models.Suggestion{}
	for _, m := range metrics {
		if m.Frequency > 0 {
			continue
		}
		priority := "medium"
		if m.Type == models.KeywordPrimary {
			priority = "high"
		}
		out = append(out, models.Suggestion{
			Category: "keywords",
			Priority: priority,
			Message:  fmt.Sprintf("%s keyword %q does not appear in the content.", m.Type, m.Keyword),
		})
	}
	return out
}

// StaticScorer returns the same result for every page.
type StaticScorer struct {
	Result Result
	Err    error
}

// Score implements Scorer.
func (s *StaticScorer) Score(ctx context.Context, _ Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	r := s.Result
	r.Suggestions = append([]models.Suggestion(nil), s.Result.Suggestions...)
	return &r, nil
}

// Range bounds one category's generated score.
type Range struct{ Lo, Hi int }

// DefaultRanges are the bounds used when no AI provider is configured.
var DefaultRanges = [8]Range{
	{60, 95}, // seo
	{60, 95}, // readability
	{50, 90}, // keyword_density
	{70, 98}, // grammar
	{60, 95}, // content_intent
	{55, 95}, // technical_health
	{50, 90}, // strategic_analysis
	{55, 90}, // brand_intent
}

// RangeScorer draws each category score uniformly from its range. It stands
// in for a real analysis backend in development.
type RangeScorer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	ranges [8]Range
}

// NewRangeScorer creates a RangeScorer reading from src.
func NewRangeScorer(src rand.Source, ranges [8]Range) *RangeScorer {
	return &RangeScorer{rng: rand.New(src), ranges: ranges}
}

// Score implements Scorer.
func (s *RangeScorer) Score(ctx context.Context, _ Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var v [8]float64
	for i, r := range s.ranges {
		if r.Hi < r.Lo {
			return nil, fmt.Errorf("%w: bad range for %s", ErrAnalysisUnavailable, categoryNames[i])
		}
		v[i] = float64(r.Lo + s.rng.IntN(r.Hi-r.Lo+1))
	}
	return &Result{Scores: CategoryScores{
		SEO: v[0], Readability: v[1], KeywordDensity: v[2], Grammar: v[3],
		ContentIntent: v[4], TechnicalHealth: v[5], StrategicAnalysis: v[6], BrandIntent: v[7],
	}}, nil
}
