package models

import (
	"time"

	"github.com/adlumen/insight-api/internal/insights"
)

// Snapshot is one normalized insight pull for a campaign over a period.
// Validation problems found during the pull are recorded as warnings and
// never block the snapshot itself.
type Snapshot struct {
	ID         string                     `json:"id"`
	CampaignID string                     `json:"campaign_id"`
	Period     Period                     `json:"period"`
	Metrics    insights.NormalizedMetrics `json:"metrics"`
	Warnings   []string                   `json:"warnings,omitempty"`
	FetchedAt  time.Time                  `json:"fetched_at"`
}

// Period is a half-open date range [Since, Until) in account-local days.
type Period struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

func (p Period) String() string {
	return p.Since + ".." + p.Until
}

// SyncStatus is the terminal state of a sync run.
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusPartial   SyncStatus = "partial"
)

// SyncRun records one execution of the background sync loop.
type SyncRun struct {
	ID             string     `json:"id"`
	Status         SyncStatus `json:"status"`
	CampaignsTotal int        `json:"campaigns_total"`
	CampaignsOK    int        `json:"campaigns_ok"`
	CampaignsErr   int        `json:"campaigns_err"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     time.Time  `json:"finished_at,omitempty"`
}
