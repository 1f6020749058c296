package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/config"
	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/metrics"
	"github.com/adlumen/insight-api/internal/models"
)

var testMetrics = metrics.NewMetrics("meta_test")

func testClient(baseURL string, maxRetries int) *Client {
	return NewClient(config.MetaConfig{
		BaseURL:     baseURL,
		AccessToken: "token",
		APIVersion:  "v19.0",
		Timeout:     5 * time.Second,
		MaxRetries:  maxRetries,
		RPS:         1000,
	}, zap.NewNop(), testMetrics)
}

func TestFetchInsightsFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "token" {
			t.Errorf("missing access token in %q", r.URL.String())
		}
		page := map[string]any{
			"data": []map[string]any{{"impressions": "100", "clicks": 5}},
		}
		if r.URL.Query().Get("after") == "" {
			page["paging"] = map[string]any{
				"next": server.URL + "/v19.0/camp-1/insights?access_token=token&after=cursor1",
			}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	c := testClient(server.URL, 0)
	records, err := c.FetchInsights(context.Background(), "camp-1",
		models.Period{Since: "2026-08-01", Until: "2026-08-08"})
	if err != nil {
		t.Fatalf("FetchInsights: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records across pages, want 2", len(records))
	}
	if got := insights.ParseFloat(records[0]["impressions"]); got != 100 {
		t.Errorf("impressions = %v, want 100", got)
	}
}

func TestFetchInsightsRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":[{"impressions":"42"}]}`)
	}))
	defer server.Close()

	c := testClient(server.URL, 2)
	records, err := c.FetchInsights(context.Background(), "camp-1",
		models.Period{Since: "2026-08-01", Until: "2026-08-08"})
	if err != nil {
		t.Fatalf("FetchInsights: %v", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestFetchInsightsDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad field"}}`)
	}))
	defer server.Close()

	c := testClient(server.URL, 3)
	_, err := c.FetchInsights(context.Background(), "camp-1",
		models.Period{Since: "2026-08-01", Until: "2026-08-08"})
	if err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 4xx)", calls)
	}
}
