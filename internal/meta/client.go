// Package meta fetches campaign insights from the Meta Graph API.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/adlumen/insight-api/internal/config"
	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/metrics"
	"github.com/adlumen/insight-api/internal/models"
)

const vendorName = "meta"

// insightFields is the field list requested from the insights edge.
var insightFields = []string{
	"impressions", "clicks", "spend", "conversions", "revenue",
	"reach", "frequency", "unique_clicks", "outbound_clicks",
	"inline_link_clicks", "page_engagement", "leads", "purchases",
	"quality_score", "quality_ranking", "engagement_rate_ranking",
	"conversion_rate_ranking",
}

// Client calls the Graph API with a shared rate limit and bounded
// retries on transient failures.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Metrics

	baseURL     string
	apiVersion  string
	accessToken string
	accountID   string
	maxRetries  int
}

// NewClient creates a Graph API client from configuration.
func NewClient(cfg config.MetaConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		logger:      logger,
		metrics:     m,
		baseURL:     cfg.BaseURL,
		apiVersion:  cfg.APIVersion,
		accessToken: cfg.AccessToken,
		accountID:   cfg.AdAccountID,
		maxRetries:  cfg.MaxRetries,
	}
}

type insightsPage struct {
	Data   []insights.RawInsightRecord `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// FetchInsights pulls raw insight records for one campaign over a
// period, following cursor pagination until the edge is exhausted.
func (c *Client) FetchInsights(ctx context.Context, campaignExternalID string, period models.Period) ([]insights.RawInsightRecord, error) {
	timeRange, err := json.Marshal(map[string]string{"since": period.Since, "until": period.Until})
	if err != nil {
		return nil, fmt.Errorf("failed to encode time range: %w", err)
	}

	q := url.Values{}
	q.Set("access_token", c.accessToken)
	q.Set("fields", strings.Join(insightFields, ","))
	q.Set("time_range", string(timeRange))
	q.Set("limit", "100")

	next := fmt.Sprintf("%s/%s/%s/insights?%s", c.baseURL, c.apiVersion, campaignExternalID, q.Encode())

	var records []insights.RawInsightRecord
	for next != "" {
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Data...)
		next = page.Paging.Next
	}

	c.logger.Debug("fetched campaign insights",
		zap.String("campaign", campaignExternalID),
		zap.String("period", period.String()),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*insightsPage, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordVendorRetry(vendorName)
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, retryable, err := c.doRequest(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.logger.Warn("insights request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("insights request failed: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, pageURL string) (page *insightsPage, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordVendorRequest(vendorName, "error", time.Since(start))
		return nil, true, err
	}
	defer resp.Body.Close()

	c.metrics.RecordVendorRequest(vendorName, strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("graph api returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var decoded insightsPage
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false, fmt.Errorf("failed to decode insights page: %w", err)
	}
	return &decoded, false, nil
}

func sleepBackoff(ctx context.Context, attempt int) error {
	backoff := time.Duration(1<<uint(attempt-1)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
