// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scoring

import (
	"fmt"
	"math"
)

// CategoryScores are the eight per-category scores, each in [0, 100].
type CategoryScores struct {
	SEO               float64 `json:"seo"`
	Readability       float64 `json:"readability"`
	KeywordDensity    float64 `json:"keyword_density"`
	Grammar           float64 `json:"grammar"`
	ContentIntent     float64 `json:"content_intent"`
	TechnicalHealth   float64 `json:"technical_health"`
	StrategicAnalysis float64 `json:"strategic_analysis"`
	BrandIntent       float64 `json:"brand_intent"`
}

// Weights assigns each category its share of the overall score.
type Weights CategoryScores

// DefaultWeights sum to 1.00.
var DefaultWeights = Weights{
	SEO:               0.15,
	Readability:       0.15,
	KeywordDensity:    0.12,
	Grammar:           0.12,
	ContentIntent:     0.12,
	TechnicalHealth:   0.12,
	StrategicAnalysis: 0.12,
	BrandIntent:       0.10,
}

// values lists the scores in a fixed category order.
func (c CategoryScores) values() [8]float64 {
	return [8]float64{
		c.SEO, c.Readability, c.KeywordDensity, c.Grammar,
		c.ContentIntent, c.TechnicalHealth, c.StrategicAnalysis, c.BrandIntent,
	}
}

var categoryNames = [8]string{
	"seo", "readability", "keyword_density", "grammar",
	"content_intent", "technical_health", "strategic_analysis", "brand_intent",
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range CategoryScores(w).values() {
		s += v
	}
	return s
}

// Overall returns round(Σ weight·score).
func (w Weights) Overall(c CategoryScores) int {
	wv := CategoryScores(w).values()
	cv := c.values()
	var total float64
	for i := range wv {
		total += wv[i] * cv[i]
	}
	return int(math.Round(total))
}

// Validate rejects scores that are not finite or fall outside [0, 100].
func (c CategoryScores) Validate() error {
	for i, v := range c.values() {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("%w: %s score %v out of range", ErrAnalysisUnavailable, categoryNames[i], v)
		}
	}
	return nil
}
