// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"errors"

	"reviewdesk/internal/scoring"
	"reviewdesk/internal/workflow"
)

var (
	// ErrNotFound means the project, page or member does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug means another page in the project already uses the slug.
	ErrDuplicateSlug = errors.New("slug already exists in project")
	// ErrUploadRejected means the upload was not accepted and nothing changed.
	ErrUploadRejected = errors.New("upload rejected")
	// ErrScoringInFlight means a scoring pass for the page is already running.
	ErrScoringInFlight = errors.New("scoring pass already running")
	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidTransition   = workflow.ErrInvalidTransition
	ErrAnalysisUnavailable = scoring.ErrAnalysisUnavailable
)
