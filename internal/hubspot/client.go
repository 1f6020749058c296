// Package hubspot pulls CRM deal outcomes used to enrich ad metrics.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/config"
	"github.com/adlumen/insight-api/internal/metrics"
)

const vendorName = "hubspot"

// DealStats aggregates CRM deals attributed to one campaign. Counters
// are clamped to zero at this boundary so downstream derivation never
// sees negative CRM data.
type DealStats struct {
	Leads     float64 `json:"leads"`
	Purchases float64 `json:"purchases"`
	Revenue   float64 `json:"revenue"`
}

func (s *DealStats) clamp() {
	if s.Leads < 0 {
		s.Leads = 0
	}
	if s.Purchases < 0 {
		s.Purchases = 0
	}
	if s.Revenue < 0 {
		s.Revenue = 0
	}
}

// Client calls the HubSpot CRM search API.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics

	baseURL     string
	accessToken string
	maxRetries  int
}

// NewClient creates a HubSpot client from configuration.
func NewClient(cfg config.HubSpotConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		metrics:     m,
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		maxRetries:  cfg.MaxRetries,
	}
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchResponse struct {
	Results []struct {
		Properties map[string]string `json:"properties"`
	} `json:"results"`
	Paging struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// DealsByUTMCampaign aggregates closed deals whose utm_campaign property
// matches the given tag.
func (c *Client) DealsByUTMCampaign(ctx context.Context, utmCampaign string) (DealStats, error) {
	var stats DealStats
	after := ""
	for {
		resp, err := c.searchPage(ctx, utmCampaign, after)
		if err != nil {
			return DealStats{}, err
		}

		for _, deal := range resp.Results {
			stats.Leads++
			stage := deal.Properties["dealstage"]
			if stage == "closedwon" {
				stats.Purchases++
				if amount, err := strconv.ParseFloat(deal.Properties["amount"], 64); err == nil {
					stats.Revenue += amount
				}
			}
		}

		after = resp.Paging.Next.After
		if after == "" {
			break
		}
	}

	stats.clamp()

	c.logger.Debug("fetched CRM deals",
		zap.String("utm_campaign", utmCampaign),
		zap.Float64("leads", stats.Leads),
		zap.Float64("purchases", stats.Purchases),
	)
	return stats, nil
}

func (c *Client) searchPage(ctx context.Context, utmCampaign, after string) (*searchResponse, error) {
	body := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{
				PropertyName: "utm_campaign",
				Operator:     "EQ",
				Value:        utmCampaign,
			}},
		}},
		Properties: []string{"dealstage", "amount", "utm_campaign"},
		Limit:      100,
		After:      after,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordVendorRetry(vendorName)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		resp, retryable, err := c.doSearch(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.logger.Warn("deal search failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("deal search failed: %w", lastErr)
}

func (c *Client) doSearch(ctx context.Context, body searchRequest) (resp *searchResponse, retryable bool, err error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/crm/v3/objects/deals/search", bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordVendorRequest(vendorName, "error", time.Since(start))
		return nil, true, err
	}
	defer httpResp.Body.Close()

	c.metrics.RecordVendorRequest(vendorName, strconv.Itoa(httpResp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return nil, true, err
	}

	if httpResp.StatusCode != http.StatusOK {
		retryable := httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("hubspot returned %d", httpResp.StatusCode)
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false, fmt.Errorf("failed to decode deal search response: %w", err)
	}
	return &decoded, false, nil
}
