// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxNameLen        = 200
	maxDescriptionLen = 2_000
	maxKeywords       = 50
	maxKeywordLen     = 100
	maxJSONBody       = 1 << 20
	maxDocumentBody   = 5 << 20
)

// validateName checks a project or page name and returns the first error found.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "name is too long (max 200 characters)"
	}
	return ""
}

// validateDescription checks an optional project description.
func validateDescription(desc string) string {
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return "description is too long (max 2,000 characters)"
	}
	return ""
}

// validateKeywords checks the keyword lists of an SEO upload.
func validateKeywords(primary, secondary []string) string {
	if len(primary)+len(secondary) > maxKeywords {
		return "too many keywords (max 50)"
	}
	for _, list := range [][]string{primary, secondary} {
		for _, kw := range list {
			if utf8.RuneCountInString(kw) > maxKeywordLen {
				return "keyword is too long (max 100 characters)"
			}
		}
	}
	return ""
}
