// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify announces page status changes to interested parties.
// Events are logged and, when Valkey is available, published on a
// per-project pub/sub channel the dashboard subscribes to.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"reviewdesk/internal/models"
)

// Event describes one page status change.
type Event struct {
	ProjectID uuid.UUID         `json:"project_id"`
	PageID    uuid.UUID         `json:"page_id"`
	PageName  string            `json:"page_name"`
	From      models.PageStatus `json:"from"`
	To        models.PageStatus `json:"to"`
	Actor     string            `json:"actor,omitempty"`
	At        time.Time         `json:"at"`
}

// Notifier delivers events. Implementations must not block the caller
// for long and must not fail the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type actorKey struct{}

// WithActor attaches the acting user to ctx for event attribution.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the acting user stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	a, _ := ctx.Value(actorKey{}).(string)
	return a
}

// Channel returns the pub/sub channel for a project.
func Channel(projectID uuid.UUID) string {
	return "notifications:" + projectID.String()
}

// LogNotifier writes events to the default logger.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev Event) {
	slog.Info("page status changed",
		"project_id", ev.ProjectID,
		"page_id", ev.PageID,
		"page", ev.PageName,
		"from", ev.From,
		"to", ev.To,
		"actor", ev.Actor,
	)
}

// Publisher is the subset of *redis.Client used for publishing.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// ValkeyNotifier publishes events as JSON on Channel(projectID).
type ValkeyNotifier struct {
	client  Publisher
	timeout time.Duration
}

// NewValkeyNotifier creates a publisher-backed notifier.
func NewValkeyNotifier(client Publisher) *ValkeyNotifier {
	return &ValkeyNotifier{client: client, timeout: 2 * time.Second}
}

func (n *ValkeyNotifier) Notify(ctx context.Context, ev Event) {
	if err := n.publish(ctx, ev); err != nil {
		slog.Warn("notification publish failed", "project_id", ev.ProjectID, "page_id", ev.PageID, "error", err)
	}
}

func (n *ValkeyNotifier) publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	return n.client.Publish(ctx, Channel(ev.ProjectID), data).Err()
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
