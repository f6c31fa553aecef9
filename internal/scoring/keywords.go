// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scoring computes keyword metrics, the weighted overall score and
// the SEO breakdown for a page. Category scores come from an injected Scorer.
package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"reviewdesk/internal/models"
)

// CalculateKeywordAnalysis returns one metric per primary keyword followed by
// one per secondary keyword. Either input missing yields an empty list.
func CalculateKeywordAnalysis(seo *models.SEOData, content *models.ContentData) []models.KeywordMetric {
	if seo == nil || content == nil {
		return []models.KeywordMetric{}
	}

	pc := &content.ParsedContent
	total := TotalWords(pc)

	metrics := make([]models.KeywordMetric, 0, len(seo.PrimaryKeywords)+len(seo.SecondaryKeywords))
	for _, kw := range seo.PrimaryKeywords {
		metrics = append(metrics, analyzeKeyword(kw, models.KeywordPrimary, pc, total))
	}
	for _, kw := range seo.SecondaryKeywords {
		metrics = append(metrics, analyzeKeyword(kw, models.KeywordSecondary, pc, total))
	}
	return metrics
}

// AnalyzeKeyword counts whole-word, case-insensitive occurrences of keyword
// in each section of the content.
func AnalyzeKeyword(keyword string, kwType models.KeywordType, content *models.ParsedContent) models.KeywordMetric {
	return analyzeKeyword(keyword, kwType, content, TotalWords(content))
}

func analyzeKeyword(keyword string, kwType models.KeywordType, pc *models.ParsedContent, total int) models.KeywordMetric {
	m := models.KeywordMetric{Keyword: keyword, Type: kwType}

	re := keywordPattern(keyword)
	if re != nil {
		m.TitleCount = countIn(re, pc.Title())
		m.H1Count = countAll(re, pc.H1)
		m.H2Count = countAll(re, pc.H2)
		m.H3Count = countAll(re, pc.H3)
		m.ParagraphCount = countAll(re, pc.Paragraphs)
	}

	m.Frequency = m.TitleCount + m.H1Count + m.H2Count + m.H3Count + m.ParagraphCount
	m.Density = FormatDensity(m.Frequency, total)
	return m
}

// TotalWords counts whitespace-delimited tokens across every text field.
func TotalWords(pc *models.ParsedContent) int {
	return len(strings.Fields(Corpus(pc)))
}

// Corpus joins every text field of the content into one lowercased string.
func Corpus(pc *models.ParsedContent) string {
	parts := make([]string, 0, 2+len(pc.H1)+len(pc.H2)+len(pc.H3)+len(pc.Paragraphs))
	parts = append(parts, pc.Title(), pc.Description())
	parts = append(parts, pc.H1...)
	parts = append(parts, pc.H2...)
	parts = append(parts, pc.H3...)
	parts = append(parts, pc.Paragraphs...)
	return strings.ToLower(strings.Join(parts, " "))
}

// FormatDensity renders frequency/total as a two-decimal percentage.
func FormatDensity(frequency, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", Density(frequency, total))
}

// Density returns frequency/total as a percentage, 0 when total is 0.
// Matches inside hyphenated or punctuated tokens can outnumber the
// whitespace tokens, so the result is capped at 100.
func Density(frequency, total int) float64 {
	if total == 0 {
		return 0
	}
	return min(float64(frequency)/float64(total)*100, 100)
}

// keywordPattern builds a word-boundary anchored, case-insensitive matcher.
// Blank keywords have no pattern.
func keywordPattern(keyword string) *regexp.Regexp {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
}

func countIn(re *regexp.Regexp, s string) int {
	if s == "" {
		return 0
	}
	return len(re.FindAllStringIndex(s, -1))
}

func countAll(re *regexp.Regexp, ss []string) int {
	n := 0
	for _, s := range ss {
		n += countIn(re, s)
	}
	return n
}
