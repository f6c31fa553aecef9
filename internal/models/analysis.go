// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"time"
)

// KeywordType tags a keyword as primary or secondary.
type KeywordType string

const (
	KeywordPrimary   KeywordType = "primary"
	KeywordSecondary KeywordType = "secondary"
)

// Analysis is the result of a completed scoring pass.
type Analysis struct {
	OverallScore           int             `json:"overall_score"`
	SEOScore               int             `json:"seo_score"`
	ReadabilityScore       int             `json:"readability_score"`
	KeywordDensityScore    int             `json:"keyword_density_score"`
	GrammarScore           int             `json:"grammar_score"`
	ContentIntentScore     int             `json:"content_intent_score"`
	TechnicalHealthScore   int             `json:"technical_health_score"`
	StrategicAnalysisScore int             `json:"strategic_analysis_score"`
	BrandIntentScore       int             `json:"brand_intent_score"`
	KeywordAnalysis        []KeywordMetric `json:"keyword_analysis"`
	Suggestions            []Suggestion    `json:"suggestions"`
	ProcessedAt            time.Time       `json:"processed_at"`

	// Input versions the pass was computed from.
	SEOVersion     int `json:"seo_version"`
	ContentVersion int `json:"content_version"`
}

// KeywordMetric describes how often one keyword occurs in the page content.
type KeywordMetric struct {
	Keyword        string      `json:"keyword"`
	Type           KeywordType `json:"type"`
	Frequency      int         `json:"frequency"`
	Density        string      `json:"density"`
	TitleCount     int         `json:"title_count"`
	H1Count        int         `json:"h1_count"`
	H2Count        int         `json:"h2_count"`
	H3Count        int         `json:"h3_count"`
	ParagraphCount int         `json:"paragraph_count"`

	// Market is nil while the external metrics provider has no data yet.
	Market *KeywordMarket `json:"market,omitempty"`
}

// KeywordMarket holds search-market figures from the keyword metrics provider.
type KeywordMarket struct {
	SearchVolume int     `json:"search_volume"`
	CPC          float64 `json:"cpc"`
	Competition  float64 `json:"competition"`
}

// Suggestion is a single improvement hint produced by the scorer.
type Suggestion struct {
	Category string `json:"category"`
	Priority string `json:"priority"` // low, medium, high
	Message  string `json:"message"`
}

// Clone returns a deep copy of the analysis.
func (a *Analysis) Clone() *Analysis {
	c := *a
	c.KeywordAnalysis = make([]KeywordMetric, len(a.KeywordAnalysis))
	for i, m := range a.KeywordAnalysis {
		if m.Market != nil {
			mk := *m.Market
			m.Market = &mk
		}
		c.KeywordAnalysis[i] = m
	}
	c.Suggestions = slices.Clone(a.Suggestions)
	return &c
}
