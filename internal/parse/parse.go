// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package parse turns uploaded content documents into the sectioned text
// the scoring pass works on. HTML is read with goquery; Markdown is first
// rendered with goldmark and then read the same way.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"reviewdesk/internal/models"
)

// ErrEmpty is returned when a document has no usable text.
var ErrEmpty = errors.New("document has no content")

// ErrUnsupportedType is returned by Document for media types it cannot parse.
var ErrUnsupportedType = errors.New("unsupported content type")

// Content types accepted by Document.
const (
	TypeHTML     = "text/html"
	TypeMarkdown = "text/markdown"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Document parses body according to contentType (parameters such as
// charset are ignored).
func Document(contentType string, body []byte) (*models.ParsedContent, error) {
	mt, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(strings.ToLower(mt)) {
	case TypeHTML:
		return HTML(bytes.NewReader(body))
	case TypeMarkdown, "text/x-markdown":
		return Markdown(body)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedType, contentType)
	}
}

// HTML extracts the title, meta description, h1-h3 headings and paragraphs
// of an HTML document.
func HTML(r io.Reader) (*models.ParsedContent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	pc := newContent()
	if t := normalizeText(doc.Find("title").First().Text()); t != "" {
		pc.MetaTitle = &t
	}
	if d, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if d = normalizeText(d); d != "" {
			pc.MetaDescription = &d
		}
	}
	collect(doc.Selection, pc)

	if pc.IsEmpty() {
		return nil, ErrEmpty
	}
	return pc, nil
}

// Markdown parses a Markdown document. An optional front matter block
// delimited by "---" lines may set "title" and "description".
func Markdown(src []byte) (*models.ParsedContent, error) {
	meta, body := splitFrontMatter(src)

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("parsing rendered markdown: %w", err)
	}

	pc := newContent()
	if t := meta["title"]; t != "" {
		pc.MetaTitle = &t
	}
	if d := meta["description"]; d != "" {
		pc.MetaDescription = &d
	}
	collect(doc.Selection, pc)

	if pc.IsEmpty() {
		return nil, ErrEmpty
	}
	return pc, nil
}

func newContent() *models.ParsedContent {
	return &models.ParsedContent{
		H1:         []string{},
		H2:         []string{},
		H3:         []string{},
		Paragraphs: []string{},
	}
}

// collect appends headings and paragraphs in document order.
func collect(s *goquery.Selection, pc *models.ParsedContent) {
	s.Find("body h1, body h2, body h3, body p").Each(func(_ int, el *goquery.Selection) {
		text := normalizeText(el.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(el) {
		case "h1":
			pc.H1 = append(pc.H1, text)
		case "h2":
			pc.H2 = append(pc.H2, text)
		case "h3":
			pc.H3 = append(pc.H3, text)
		case "p":
			pc.Paragraphs = append(pc.Paragraphs, text)
		}
	})
}

// splitFrontMatter separates a leading "---" block of key: value lines.
func splitFrontMatter(src []byte) (map[string]string, []byte) {
	text := strings.TrimPrefix(string(src), "\ufeff")
	first, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimRight(first, "\r") != "---" {
		return map[string]string{}, src
	}

	meta := map[string]string{}
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		offset += len(line)
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "---" {
			return meta, []byte(rest[offset:])
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		meta[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	// No closing delimiter: treat the whole document as body.
	return map[string]string{}, src
}

// normalizeText collapses runs of whitespace into single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
