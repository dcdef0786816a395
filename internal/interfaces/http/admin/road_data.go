package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
)

func (h *Handler) roadDataListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := reportapp.ReportFilter{
			UserID: common.ScopeUserID(query.Get("userId")),
			Limit:  common.ParseLimit(query.Get("limit")),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := h.roadEntries.List(ctx, filter)
		if err != nil {
			h.logf("road-data 一覧の取得に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error fetching road data", "")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewRoadEntryResponses(entries))
	}
}

func (h *Handler) roadDataDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entry, err := h.roadEntries.Detail(ctx, id)
		if err != nil {
			if errors.Is(err, reportapp.ErrNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "Road entry not found", "")
				return
			}
			h.logf("road-data の取得に失敗 id=%s err=%v", id, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error fetching road entry", "")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewRoadEntryResponse(*entry))
	}
}
