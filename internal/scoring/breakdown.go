// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"reviewdesk/internal/models"
)

// Check is one named SEO check. Achieved is in [0, 1]; pass/fail checks
// use exactly 0 or 1.
type Check struct {
	Name     string  `json:"name"`
	Achieved float64 `json:"achieved"`
	Points   float64 `json:"points"`
	Max      float64 `json:"max"`
}

// Category groups checks. Score is the sum of achieved points out of 100.
type Category struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
	Checks []Check `json:"checks"`
}

// Breakdown is the display-only SEO report. It never feeds the overall score.
type Breakdown struct {
	Categories []Category `json:"categories"`
	Total      float64    `json:"total"`
	Grade      string     `json:"grade"`
}

// Length windows for meta tags, counted in runes.
const (
	titleMinLen = 30
	titleMaxLen = 60
	descMinLen  = 120
	descMaxLen  = 160

	minWordCount = 300

	densityLow  = 0.5
	densityHigh = 2.5
)

// SEOBreakdown scores meta tags (40%), content quality (40%) and technical
// structure (20%). seo may be nil; keyword checks then score zero.
func SEOBreakdown(seo *models.SEOData, pc *models.ParsedContent) Breakdown {
	var primary string
	if seo != nil && len(seo.PrimaryKeywords) > 0 {
		primary = seo.PrimaryKeywords[0]
	}

	title, desc := pc.Title(), pc.Description()
	titleLen := utf8.RuneCountInString(title)
	descLen := utf8.RuneCountInString(desc)

	meta := category("Meta Tags", 0.40,
		check("has_meta_title", 25, pass(title != "")),
		check("title_length_optimal", 25, pass(titleLen >= titleMinLen && titleLen <= titleMaxLen)),
		check("has_meta_description", 25, pass(desc != "")),
		check("description_length_optimal", 25, pass(descLen >= descMinLen && descLen <= descMaxLen)),
	)

	total := TotalWords(pc)
	var kw models.KeywordMetric
	if primary != "" {
		kw = AnalyzeKeyword(primary, models.KeywordPrimary, pc)
	}

	content := category("Content Quality", 0.40,
		check("has_h1", 20, pass(len(pc.H1) > 0)),
		check("single_h1", 15, pass(len(pc.H1) == 1)),
		check("keyword_in_h1", 20, pass(kw.H1Count > 0)),
		check("keyword_in_title", 15, pass(kw.TitleCount > 0)),
		check("word_count_sufficient", 15, math.Min(float64(total)/minWordCount, 1)),
		check("no_duplicate_content", 15, pass(!hasDuplicates(pc.Paragraphs))),
	)

	technical := category("Technical", 0.20,
		check("heading_hierarchy", 30, pass(len(pc.H3) == 0 || len(pc.H2) > 0)),
		check("keyword_density_optimal", 40, densityFit(Density(kw.Frequency, total))),
		check("has_subheadings", 30, pass(len(pc.H2) > 0)),
	)

	b := Breakdown{Categories: []Category{meta, content, technical}}
	for _, c := range b.Categories {
		b.Total += c.Weight * c.Score
	}
	b.Total = math.Round(b.Total*100) / 100
	b.Grade = Grade(b.Total)
	return b
}

// Grade maps a 0–100 total to a letter.
func Grade(total float64) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}

func category(name string, weight float64, checks ...Check) Category {
	c := Category{Name: name, Weight: weight, Checks: checks}
	for _, ch := range checks {
		c.Score += ch.Points
	}
	return c
}

func check(name string, max, achieved float64) Check {
	return Check{Name: name, Achieved: achieved, Points: max * achieved, Max: max}
}

func pass(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// densityFit is 1 inside the optimal window and falls off linearly outside it.
func densityFit(d float64) float64 {
	switch {
	case d >= densityLow && d <= densityHigh:
		return 1
	case d < densityLow:
		return d / densityLow
	default:
		return math.Max(0, 1-(d-densityHigh)/densityHigh)
	}
}

func hasDuplicates(paragraphs []string) bool {
	seen := make(map[string]struct{}, len(paragraphs))
	for _, p := range paragraphs {
		key := strings.ToLower(strings.Join(strings.Fields(p), " "))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}
