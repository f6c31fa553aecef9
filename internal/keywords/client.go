// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package keywords fetches search-market figures (volume, CPC, competition)
// for analysed keywords from the external keyword metrics provider. Missing
// figures are reported as pending, never as an error to the caller.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"reviewdesk/internal/models"
)

// Provider looks up market figures for one keyword. A nil result with a nil
// error means the provider has no data yet.
type Provider interface {
	Lookup(ctx context.Context, keyword string) (*models.KeywordMarket, error)
}

// Client calls the metrics provider's HTTP API (GET {base}/keywords?q=...).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a metrics client. perSecond caps the request rate.
func NewClient(baseURL, apiKey string, perSecond float64) *Client {
	if perSecond <= 0 {
		perSecond = 5
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

type lookupResponse struct {
	Keyword      string   `json:"keyword"`
	SearchVolume *int     `json:"search_volume"`
	CPC          *float64 `json:"cpc"`
	Competition  *float64 `json:"competition"`
}

// Lookup implements Provider. 404 and 202 responses mean pending.
func (c *Client) Lookup(ctx context.Context, keyword string) (*models.KeywordMarket, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("keyword metrics rate limit: %w", err)
	}

	u := c.baseURL + "/keywords?q=" + url.QueryEscape(keyword)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("keyword metrics request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keyword metrics http: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusAccepted:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("keyword metrics API error (status %d): %s", resp.StatusCode, string(body))
	}

	var r lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("keyword metrics decode: %w", err)
	}
	if r.SearchVolume == nil {
		return nil, nil
	}

	m := &models.KeywordMarket{SearchVolume: *r.SearchVolume}
	if r.CPC != nil {
		m.CPC = *r.CPC
	}
	if r.Competition != nil {
		m.Competition = *r.Competition
	}
	return m, nil
}
