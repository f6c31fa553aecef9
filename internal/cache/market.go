// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// market.go caches keyword market figures in Valkey so repeated analyses of
// the same keyword skip the external metrics provider.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewdesk/internal/models"
)

const (
	// marketKeyPrefix is the Valkey key prefix for keyword market data.
	marketKeyPrefix = "kwmarket:"

	// DefaultMarketTTL is how long keyword figures stay cached.
	DefaultMarketTTL = 24 * time.Hour
)

// MarketCache stores keyword market figures in Valkey.
type MarketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMarketCache creates a market cache backed by the given Valkey client.
func NewMarketCache(client *redis.Client, ttl time.Duration) *MarketCache {
	if ttl == 0 {
		ttl = DefaultMarketTTL
	}
	return &MarketCache{client: client, ttl: ttl}
}

// MarketKey normalizes a keyword into its cache key.
func MarketKey(keyword string) string {
	return marketKeyPrefix + strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

// Get returns cached figures for a keyword. A miss or read error is (nil, false).
func (c *MarketCache) Get(ctx context.Context, keyword string) (*models.KeywordMarket, bool) {
	val, err := c.client.Get(ctx, MarketKey(keyword)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("market cache get error", "keyword", keyword, "error", err)
		return nil, false
	}

	var m models.KeywordMarket
	if err := json.Unmarshal(val, &m); err != nil {
		slog.Warn("market cache decode error", "keyword", keyword, "error", err)
		return nil, false
	}
	return &m, true
}

// Set stores figures for a keyword with the configured TTL.
func (c *MarketCache) Set(ctx context.Context, keyword string, m *models.KeywordMarket) {
	payload, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, MarketKey(keyword), payload, c.ttl).Err(); err != nil {
		slog.Warn("market cache set error", "keyword", keyword, "error", err)
	}
}
