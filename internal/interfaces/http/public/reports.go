package public

import (
	"context"
	"net/http"
	"time"

	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
)

func (h *Handler) roadEntryListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := h.roadEntries.List(ctx, listFilter(r))
		if err != nil {
			h.logf("RoadEntry 一覧の取得に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error fetching road entries", "")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewRoadEntryResponses(entries))
	}
}

func (h *Handler) finalImageListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		images, err := h.finalImages.List(ctx, listFilter(r))
		if err != nil {
			h.logf("FinalImage 一覧の取得に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error fetching final images", "")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewFinalImageResponses(images))
	}
}

// listFilter: admin ids and a missing userId list everything.
func listFilter(r *http.Request) reportapp.ReportFilter {
	q := r.URL.Query()
	return reportapp.ReportFilter{
		UserID: common.ScopeUserID(q.Get("userId")),
		Limit:  common.ParseLimit(q.Get("limit")),
	}
}
