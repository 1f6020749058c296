package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/config"
	"github.com/adlumen/insight-api/internal/metrics"
)

var testMetrics = metrics.NewMetrics("hubspot_test")

func testClient(baseURL string) *Client {
	return NewClient(config.HubSpotConfig{
		BaseURL:     baseURL,
		AccessToken: "token",
		Timeout:     5 * time.Second,
		MaxRetries:  0,
	}, zap.NewNop(), testMetrics)
}

func TestDealsByUTMCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.FilterGroups[0].Filters[0].Value != "summer-launch" {
			t.Errorf("utm filter = %q", req.FilterGroups[0].Filters[0].Value)
		}

		if req.After == "" {
			// First page: two open leads, one closed-won, then a cursor.
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"properties": map[string]string{"dealstage": "qualifiedtobuy"}},
					{"properties": map[string]string{"dealstage": "presentationscheduled"}},
					{"properties": map[string]string{"dealstage": "closedwon", "amount": "1200.50"}},
				},
				"paging": map[string]any{"next": map[string]any{"after": "p2"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"properties": map[string]string{"dealstage": "closedwon", "amount": "300"}},
				{"properties": map[string]string{"dealstage": "closedwon", "amount": "not-a-number"}},
			},
		})
	}))
	defer server.Close()

	stats, err := testClient(server.URL).DealsByUTMCampaign(context.Background(), "summer-launch")
	if err != nil {
		t.Fatalf("DealsByUTMCampaign: %v", err)
	}

	if stats.Leads != 5 {
		t.Errorf("leads = %v, want 5", stats.Leads)
	}
	if stats.Purchases != 3 {
		t.Errorf("purchases = %v, want 3", stats.Purchases)
	}
	if stats.Revenue != 1500.50 {
		t.Errorf("revenue = %v, want 1500.50 (unparsable amounts skipped)", stats.Revenue)
	}
}

func TestDealsByUTMCampaignServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).DealsByUTMCampaign(context.Background(), "x"); err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}

func TestDealStatsClamp(t *testing.T) {
	s := DealStats{Leads: -1, Purchases: -2, Revenue: -3.5}
	s.clamp()
	if s.Leads != 0 || s.Purchases != 0 || s.Revenue != 0 {
		t.Errorf("clamp() = %+v, want all zeros", s)
	}
}
