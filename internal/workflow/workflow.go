// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package workflow implements the page-status state machine. Transitions
// are looked up in an explicit table keyed by status and event; any pair
// missing from the table is rejected with ErrInvalidTransition.
package workflow

import (
	"errors"
	"fmt"

	"reviewdesk/internal/models"
)

// ErrInvalidTransition is returned for events the current status does not accept.
var ErrInvalidTransition = errors.New("invalid status transition")

// Event is something that happens to a page.
type Event string

const (
	EventSEOUploaded       Event = "seo_uploaded"
	EventContentUploaded   Event = "content_uploaded"
	EventAnalysisCompleted Event = "analysis_completed"
	EventApprove           Event = "approve"
	EventReject            Event = "reject"
	EventRequestRevision   Event = "request_revision"
	EventReopen            Event = "reopen"
)

// Guard carries the facts the upload rules depend on, evaluated after the
// upload has been applied.
type Guard struct {
	HasSEO     bool
	HasContent bool
}

// GuardFor builds a Guard from the page's current data.
func GuardFor(p *models.Page) Guard {
	return Guard{HasSEO: p.SEOData != nil, HasContent: p.ContentData != nil}
}

// Policy tunes the behaviour of the final states.
type Policy struct {
	// LockFinal makes approved and rejected refuse uploads until reopened.
	LockFinal bool
}

// rule resolves the next status of a single (status, event) pair.
type rule func(g Guard) models.PageStatus

func to(s models.PageStatus) rule {
	return func(Guard) models.PageStatus { return s }
}

// afterUpload moves to processing once both sides are present, otherwise to
// the awaiting state for the missing side.
func afterUpload(g Guard) models.PageStatus {
	switch {
	case g.HasSEO && g.HasContent:
		return models.PageStatusProcessing
	case g.HasSEO:
		return models.PageStatusAwaitingContent
	case g.HasContent:
		return models.PageStatusAwaitingSEO
	default:
		return models.PageStatusDraft
	}
}

var uploads = map[Event]rule{
	EventSEOUploaded:     afterUpload,
	EventContentUploaded: afterUpload,
}

// Machine evaluates transitions under a fixed policy.
type Machine struct {
	table map[models.PageStatus]map[Event]rule
}

// New builds the transition table for the given policy.
func New(policy Policy) *Machine {
	t := map[models.PageStatus]map[Event]rule{
		models.PageStatusDraft:           uploads,
		models.PageStatusAwaitingSEO:     uploads,
		models.PageStatusAwaitingContent: uploads,
		models.PageStatusProcessing: {
			EventSEOUploaded:       afterUpload,
			EventContentUploaded:   afterUpload,
			EventAnalysisCompleted: to(models.PageStatusPendingReview),
		},
		models.PageStatusPendingReview: {
			EventSEOUploaded:     afterUpload,
			EventContentUploaded: afterUpload,
			EventApprove:         to(models.PageStatusApproved),
			EventReject:          to(models.PageStatusRejected),
			EventRequestRevision: to(models.PageStatusRevisionRequested),
		},
		models.PageStatusRevisionRequested: uploads,
	}

	for _, final := range []models.PageStatus{models.PageStatusApproved, models.PageStatusRejected} {
		events := map[Event]rule{EventReopen: to(models.PageStatusRevisionRequested)}
		if !policy.LockFinal {
			for ev, r := range uploads {
				events[ev] = r
			}
		}
		t[final] = events
	}

	return &Machine{table: t}
}

// Transition returns the status that follows from applying ev in status
// from. It never mutates anything.
func (m *Machine) Transition(from models.PageStatus, ev Event, g Guard) (models.PageStatus, error) {
	events, ok := m.table[from]
	if !ok {
		return from, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	r, ok := events[ev]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, from)
	}
	return r(g), nil
}

// Allowed reports whether ev is accepted in status from.
func (m *Machine) Allowed(from models.PageStatus, ev Event) bool {
	_, ok := m.table[from][ev]
	return ok
}

// IsUpload returns true for the two data-upload events.
func IsUpload(ev Event) bool {
	return ev == EventSEOUploaded || ev == EventContentUploaded
}
