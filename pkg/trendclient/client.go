// Package trendclient queries a remote trend-discovery service for trending
// titles per content type.
package trendclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"clipz-ai/internal/types"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

const defaultCacheTTL = 15 * time.Minute

type trendingResponse struct {
	Records []struct {
		Title      string `json:"title"`
		Views      string `json:"views"`
		Engagement string `json:"engagement"`
	} `json:"records"`
}

type cacheEntry struct {
	records   []types.TrendRecord
	expiresAt time.Time
}

// Client implements types.TrendProvider over HTTP. Concurrent lookups for
// the same content type share one request and results are cached.
type Client struct {
	http     *resty.Client
	group    singleflight.Group
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[types.ContentType]cacheEntry
}

var _ types.TrendProvider = (*Client)(nil)

func New(baseURL string, timeout time.Duration, proxy string) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if proxy != "" {
		httpClient.SetProxy(proxy)
	}
	return &Client{
		http:     httpClient,
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
		logger:   log.WithComponent("trendclient"),
		cache:    make(map[types.ContentType]cacheEntry),
	}
}

func (c *Client) FetchTrending(ctx context.Context, contentType types.ContentType) ([]types.TrendRecord, error) {
	if records, ok := c.cached(contentType); ok {
		return records, nil
	}

	// shared lookup: detached from caller cancellation, bounded by the resty timeout
	ch := c.group.DoChan(string(contentType), func() (interface{}, error) {
		records, err := c.fetch(context.WithoutCancel(ctx), contentType)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[contentType] = cacheEntry{records: records, expiresAt: c.now().Add(c.cacheTTL)}
		c.mu.Unlock()
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.CodeTrendUnavailable, apperrors.ErrTrendUnavailable.Message, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("shared trend lookup", zap.String("contentType", string(contentType)))
		}
		return cloneRecords(res.Val.([]types.TrendRecord)), nil
	}
}

func (c *Client) cached(contentType types.ContentType) ([]types.TrendRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[contentType]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return cloneRecords(entry.records), true
}

func (c *Client) fetch(ctx context.Context, contentType types.ContentType) ([]types.TrendRecord, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("content_type", string(contentType)).
		Get("/trending")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTrendUnavailable, apperrors.ErrTrendUnavailable.Message, err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodeTrendUnavailable, apperrors.ErrTrendUnavailable.Message,
			resp.Status(), fmt.Errorf("trend service returned %d", resp.StatusCode()))
	}

	var body trendingResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeTrendUnavailable, apperrors.ErrTrendUnavailable.Message, "invalid json", err)
	}

	records := make([]types.TrendRecord, 0, len(body.Records))
	for _, r := range body.Records {
		records = append(records, types.TrendRecord{
			Title:           r.Title,
			ViewCountLabel:  r.Views,
			EngagementLevel: parseEngagement(r.Engagement),
		})
	}
	return records, nil
}

func parseEngagement(s string) types.EngagementLevel {
	switch types.EngagementLevel(strings.ToLower(strings.TrimSpace(s))) {
	case types.EngagementHigh:
		return types.EngagementHigh
	case types.EngagementViral:
		return types.EngagementViral
	default:
		return types.EngagementLow
	}
}

func cloneRecords(records []types.TrendRecord) []types.TrendRecord {
	out := make([]types.TrendRecord, len(records))
	copy(out, records)
	return out
}
