package admin

import (
	"log"
	"time"

	"github.com/go-chi/chi/v5"
	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
)

// Handler wires authority-dashboard HTTP endpoints to application services.
type Handler struct {
	logger            *log.Logger
	roadEntries       reportapp.RoadEntryService
	reviews           reportapp.ReviewService
	stats             reportapp.StatsService
	feedback          accountapp.FeedbackService
	notifier          common.Notifier
	broadcastFallback bool
	now               func() time.Time
}

// Config provides dependencies for Handler.
type Config struct {
	Logger      *log.Logger
	RoadEntries reportapp.RoadEntryService
	Reviews     reportapp.ReviewService
	Stats       reportapp.StatsService
	Feedback    accountapp.FeedbackService
	Notifier    common.Notifier
	// BroadcastFallback keeps emitting the *-broadcast events to every session.
	BroadcastFallback bool
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:            cfg.Logger,
		roadEntries:       cfg.RoadEntries,
		reviews:           cfg.Reviews,
		stats:             cfg.Stats,
		feedback:          cfg.Feedback,
		notifier:          cfg.Notifier,
		broadcastFallback: cfg.BroadcastFallback,
		now:               time.Now,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/road-data", h.roadDataListHandler())
	r.Get("/api/road-data/{id}", h.roadDataDetailHandler())
	r.Post("/api/review-image-v2", h.reviewHandler())
	r.Post("/api/user-notification", h.userNotificationHandler())

	r.Get("/api/feedbacks", h.feedbackListHandler())
	r.Patch("/api/feedbacks/{id}", h.feedbackStatusHandler())
	r.Patch("/api/feedbacks/{id}/status", h.feedbackStatusHandler())
	r.Post("/api/feedbacks/{id}/reply", h.feedbackReplyHandler())
	r.Delete("/api/feedbacks/{id}", h.feedbackDeleteHandler())

	r.Get("/api/report-stats", h.reportStatsHandler())
	r.Get("/api/weekly-reports", h.weeklyReportsHandler())
	r.Get("/api/damage-distribution", h.damageDistributionHandler())
	r.Get("/api/severity-breakdown", h.severityBreakdownHandler())
	r.Get("/api/recent-reports", h.recentReportsHandler())
	r.Get("/api/dashboard-stats", h.dashboardStatsHandler())
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
