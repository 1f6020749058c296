package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/analytics"
	"github.com/adlumen/insight-api/internal/cache"
	"github.com/adlumen/insight-api/internal/config"
	"github.com/adlumen/insight-api/internal/database"
	"github.com/adlumen/insight-api/internal/metrics"
	"github.com/adlumen/insight-api/internal/middleware"
	"github.com/adlumen/insight-api/internal/models"
	"github.com/adlumen/insight-api/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Ads        analytics.InsightFetcher
	CRM        analytics.DealFetcher
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps HTTP handlers and the analytics services.
type Server struct {
	campaigns     storage.CampaignRepo
	runs          storage.SyncRunStore
	syncService   *analytics.SyncService
	reportService *analytics.ReportService
	logger        *zap.Logger
	config        *config.Config
	metrics       *metrics.Metrics
}

// NewServer constructs an http.Handler with all routes registered and
// returns the wired sync service for the background loop (nil when no
// vendor client is configured). Missing backends degrade to in-memory
// stores instead of failing.
func NewServer(deps *Dependencies) (http.Handler, *analytics.SyncService) {
	var (
		campaignRepo  storage.CampaignRepo
		snapshotStore storage.SnapshotStore
		runStore      storage.SyncRunStore
	)
	if deps.DB != nil {
		campaignRepo = storage.NewPostgresCampaignRepo(deps.DB.Pool)
		snapshotStore = storage.NewPostgresSnapshotStore(deps.DB.Pool)
		runStore = storage.NewPostgresSyncRunStore(deps.DB.Pool)
	} else {
		campaignRepo = storage.NewMemoryCampaignRepo()
		snapshotStore = storage.NewMemorySnapshotStore()
		runStore = storage.NewMemorySyncRunStore()
	}

	var historyStore storage.HistoryStore
	if deps.ClickHouse != nil {
		historyStore = storage.NewClickHouseHistoryStore(deps.ClickHouse.Conn)
	} else {
		historyStore = storage.NewMemoryHistoryStore()
	}

	var snapCache cache.SnapshotCache
	if deps.Redis != nil {
		snapCache = cache.NewRedisCache(deps.Redis.Client, deps.Config.Cache.TTL)
	} else {
		snapCache = cache.NewMemoryCache(deps.Config.Cache.TTL)
	}

	var syncSvc *analytics.SyncService
	if deps.Ads != nil {
		syncSvc = analytics.NewSyncService(campaignRepo, snapshotStore, historyStore,
			runStore, snapCache, deps.Ads, deps.CRM, deps.Logger, deps.Metrics)
	}
	reportSvc := analytics.NewReportService(snapshotStore, historyStore, snapCache,
		syncSvc, deps.Logger, deps.Metrics)

	s := &Server{
		campaigns:     campaignRepo,
		runs:          runStore,
		syncService:   syncSvc,
		reportService: reportSvc,
		logger:        deps.Logger,
		config:        deps.Config,
		metrics:       deps.Metrics,
	}

	auth := middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger)
	ratelimit := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	ratelimit.SetMetrics(deps.Metrics)
	logging := middleware.NewLoggingMiddleware(deps.Logger)
	recovery := middleware.NewRecoveryMiddleware(deps.Logger)

	r := chi.NewRouter()
	r.Use(recovery.Handler)
	r.Use(logging.Handler)
	r.Use(s.httpMetrics)
	r.Use(ratelimit.HandlerPerIP)
	r.Use(auth.Handler)

	r.Get("/health", s.handleHealth)
	if deps.Config.Metrics.Enabled {
		r.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", s.handleListCampaigns)
		r.Post("/", s.handleUpsertCampaign)
		r.Route("/{campaignID}", func(r chi.Router) {
			r.Get("/", s.handleGetCampaign)
			r.Delete("/", s.handleDeleteCampaign)
			r.Get("/insights", s.handleInsights)
			r.Get("/trends", s.handleTrends)
			r.Get("/buckets", s.handleBuckets)
			r.Get("/segments", s.handleSegments)
			r.Get("/score", s.handleScore)
			r.Get("/reliability", s.handleReliability)
			r.Get("/history", s.handleHistory)
			r.Post("/sync", s.handleSyncCampaign)
		})
	})

	r.Post("/sync", s.handleSync)
	r.Get("/sync/latest", s.handleLatestSyncRun)

	return r, syncSvc
}

// httpMetrics records request counts and latency per chi route pattern.
func (s *Server) httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTPRequest(route, r.Method, rw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Campaigns CRUD ----

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := s.campaigns.ListCampaigns(r.Context())
	if err != nil {
		s.logger.Error("failed to list campaigns", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, list)
}

func (s *Server) handleUpsertCampaign(w http.ResponseWriter, r *http.Request) {
	var c models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	if err := c.Validate(); err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.campaigns.UpsertCampaign(r.Context(), &c); err != nil {
		s.logger.Error("failed to save campaign", zap.Error(err))
		s.errorResponse(w, "failed to save", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, c)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.GetCampaign(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		s.logger.Error("failed to get campaign", zap.Error(err))
		s.errorResponse(w, "failed to get campaign", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}
	s.jsonResponse(w, c)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.campaigns.DeleteCampaign(r.Context(), chi.URLParam(r, "campaignID")); err != nil {
		s.logger.Error("failed to delete campaign", zap.Error(err))
		s.errorResponse(w, "failed to delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Reports ----

// periodFromQuery reads since/until query params, defaulting to the
// trailing week.
func periodFromQuery(r *http.Request) models.Period {
	p := analytics.DefaultPeriod(time.Now())
	if since := r.URL.Query().Get("since"); since != "" {
		p.Since = since
	}
	if until := r.URL.Query().Get("until"); until != "" {
		p.Until = until
	}
	return p
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Insights(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Trends(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Buckets(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Segments(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Score(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleReliability(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Reliability(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	stats, err := s.reportService.History(r.Context(), chi.URLParam(r, "campaignID"), period.Since, period.Until)
	if err != nil {
		s.logger.Error("failed to get history", zap.Error(err))
		s.errorResponse(w, "failed to get history", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analytics.ErrCampaignNotFound):
		http.NotFound(w, r)
	case errors.Is(err, analytics.ErrNoSnapshot):
		s.errorResponse(w, "no data for period", http.StatusNotFound)
	default:
		s.logger.Error("report failed", zap.Error(err))
		s.errorResponse(w, "report failed", http.StatusInternalServerError)
	}
}

// ---- Sync ----

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncService == nil {
		s.errorResponse(w, "sync not available", http.StatusServiceUnavailable)
		return
	}
	run, err := s.syncService.Run(r.Context(), periodFromQuery(r))
	if err != nil {
		s.logger.Error("sync run failed", zap.Error(err))
		s.errorResponse(w, "sync failed", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, run)
}

func (s *Server) handleSyncCampaign(w http.ResponseWriter, r *http.Request) {
	if s.syncService == nil {
		s.errorResponse(w, "sync not available", http.StatusServiceUnavailable)
		return
	}
	snap, err := s.syncService.SyncCampaignByID(r.Context(), chi.URLParam(r, "campaignID"), periodFromQuery(r))
	if err != nil {
		if errors.Is(err, analytics.ErrCampaignNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("campaign sync failed", zap.Error(err))
		s.errorResponse(w, "sync failed", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, snap)
}

func (s *Server) handleLatestSyncRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.LatestSyncRun(r.Context())
	if err != nil {
		s.logger.Error("failed to get latest sync run", zap.Error(err))
		s.errorResponse(w, "failed to get sync run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}
	s.jsonResponse(w, run)
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
