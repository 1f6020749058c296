package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/models"
)

// MemoryCampaignRepo is an in-memory CampaignRepo. It backs tests and
// degraded startup when Postgres is unavailable.
type MemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
}

func NewMemoryCampaignRepo() *MemoryCampaignRepo {
	return &MemoryCampaignRepo{campaigns: make(map[string]*models.Campaign)}
}

func (r *MemoryCampaignRepo) GetCampaign(_ context.Context, id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryCampaignRepo) ListCampaigns(_ context.Context) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		cp := *c
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *MemoryCampaignRepo) UpsertCampaign(_ context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *MemoryCampaignRepo) DeleteCampaign(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.campaigns, id)
	return nil
}

// MemorySnapshotStore is an in-memory SnapshotStore.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]*models.Snapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snaps: make(map[string]*models.Snapshot)}
}

func snapKey(campaignID string, period models.Period) string {
	return campaignID + "|" + period.String()
}

func (s *MemorySnapshotStore) PutSnapshot(_ context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.snaps[snapKey(snap.CampaignID, snap.Period)] = &cp
	return nil
}

func (s *MemorySnapshotStore) GetSnapshot(_ context.Context, campaignID string, period models.Period) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.snaps[snapKey(campaignID, period)]; ok {
		cp := *snap
		return &cp, nil
	}
	return nil, nil
}

// MemoryHistoryStore is an in-memory HistoryStore. Rows are keyed by
// campaign and day; re-appends overwrite.
type MemoryHistoryStore struct {
	mu   sync.RWMutex
	days map[string]map[string]insights.DailyStat
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{days: make(map[string]map[string]insights.DailyStat)}
}

func (s *MemoryHistoryStore) AppendDaily(_ context.Context, campaignID string, stats []insights.DailyStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay, ok := s.days[campaignID]
	if !ok {
		byDay = make(map[string]insights.DailyStat)
		s.days[campaignID] = byDay
	}
	for _, st := range stats {
		byDay[st.Date] = st
	}
	return nil
}

func (s *MemoryHistoryStore) DailyRange(_ context.Context, campaignID, since, until string) ([]insights.DailyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []insights.DailyStat
	for day, st := range s.days[campaignID] {
		if day >= since && day < until {
			res = append(res, st)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date < res[j].Date })
	return res, nil
}

// MemorySyncRunStore is an in-memory SyncRunStore.
type MemorySyncRunStore struct {
	mu   sync.RWMutex
	runs []*models.SyncRun
}

func NewMemorySyncRunStore() *MemorySyncRunStore {
	return &MemorySyncRunStore{}
}

func (s *MemorySyncRunStore) RecordSyncRun(_ context.Context, run *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	for i, existing := range s.runs {
		if existing.ID == run.ID {
			s.runs[i] = &cp
			return nil
		}
	}
	s.runs = append(s.runs, &cp)
	return nil
}

func (s *MemorySyncRunStore) LatestSyncRun(_ context.Context) (*models.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, nil
	}
	latest := s.runs[0]
	for _, run := range s.runs[1:] {
		if run.StartedAt.After(latest.StartedAt) {
			latest = run
		}
	}
	cp := *latest
	return &cp, nil
}
