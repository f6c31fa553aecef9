// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package keywords

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"reviewdesk/internal/models"
)

// Cache stores looked-up figures. *cache.MarketCache satisfies it.
type Cache interface {
	Get(ctx context.Context, keyword string) (*models.KeywordMarket, bool)
	Set(ctx context.Context, keyword string, m *models.KeywordMarket)
}

// Enricher attaches market figures to keyword metrics. Concurrent lookups
// for the same keyword share one provider call.
type Enricher struct {
	provider Provider
	cache    Cache // may be nil
	group    singleflight.Group
}

// NewEnricher creates an Enricher. cache may be nil.
func NewEnricher(p Provider, c Cache) *Enricher {
	return &Enricher{provider: p, cache: c}
}

// Enrich sets Market on every metric the provider has figures for. Lookup
// failures are logged and leave Market nil.
func (e *Enricher) Enrich(ctx context.Context, metrics []models.KeywordMetric) {
	for i := range metrics {
		m, err := e.lookup(ctx, metrics[i].Keyword)
		if err != nil {
			slog.Warn("keyword metrics lookup failed", "keyword", metrics[i].Keyword, "error", err)
			continue
		}
		metrics[i].Market = m
	}
}

func (e *Enricher) lookup(ctx context.Context, keyword string) (*models.KeywordMarket, error) {
	if e.cache != nil {
		if m, ok := e.cache.Get(ctx, keyword); ok {
			return m, nil
		}
	}

	key := strings.ToLower(strings.TrimSpace(keyword))
	v, err, _ := e.group.Do(key, func() (any, error) {
		m, err := e.provider.Lookup(ctx, keyword)
		if err != nil || m == nil {
			return m, err
		}
		if e.cache != nil {
			e.cache.Set(ctx, keyword, m)
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	m, _ := v.(*models.KeywordMarket)
	if m == nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}
