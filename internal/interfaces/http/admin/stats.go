package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
)

// statsHandler runs one aggregate query scoped by ?userId (admins see all).
func (h *Handler) statsHandler(name string, query func(ctx context.Context, scope reportapp.StatsScope, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := reportapp.StatsScope{UserID: common.ScopeUserID(r.URL.Query().Get("userId"))}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		result, err := query(ctx, scope, r)
		if err != nil {
			h.logf("%s の集計に失敗: %v", name, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error fetching "+name, "")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, result)
	}
}

func (h *Handler) reportStatsHandler() http.HandlerFunc {
	return h.statsHandler("report stats", func(ctx context.Context, scope reportapp.StatsScope, _ *http.Request) (any, error) {
		return h.stats.ReportStats(ctx, scope)
	})
}

func (h *Handler) weeklyReportsHandler() http.HandlerFunc {
	return h.statsHandler("weekly reports", func(ctx context.Context, scope reportapp.StatsScope, _ *http.Request) (any, error) {
		return h.stats.WeeklyReports(ctx, scope)
	})
}

func (h *Handler) damageDistributionHandler() http.HandlerFunc {
	return h.statsHandler("damage distribution", func(ctx context.Context, scope reportapp.StatsScope, _ *http.Request) (any, error) {
		return h.stats.DamageDistribution(ctx, scope)
	})
}

func (h *Handler) severityBreakdownHandler() http.HandlerFunc {
	return h.statsHandler("severity breakdown", func(ctx context.Context, scope reportapp.StatsScope, _ *http.Request) (any, error) {
		return h.stats.SeverityBreakdown(ctx, scope)
	})
}

func (h *Handler) recentReportsHandler() http.HandlerFunc {
	return h.statsHandler("recent reports", func(ctx context.Context, scope reportapp.StatsScope, r *http.Request) (any, error) {
		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), common.DefaultRecentReports)
		if limit > common.MaxListLimit {
			limit = common.MaxListLimit
		}
		return h.stats.RecentReports(ctx, scope, limit)
	})
}

func (h *Handler) dashboardStatsHandler() http.HandlerFunc {
	return h.statsHandler("dashboard stats", func(ctx context.Context, scope reportapp.StatsScope, _ *http.Request) (any, error) {
		return h.stats.Dashboard(ctx, scope)
	})
}
