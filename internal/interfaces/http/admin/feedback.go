package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
)

type feedbackStatusRequest struct {
	Completed *bool `json:"completed"`
}

type feedbackReplyRequest struct {
	Reply     string `json:"reply"`
	ReplyText string `json:"replyText"`
}

func (req feedbackReplyRequest) text() string {
	if strings.TrimSpace(req.ReplyText) != "" {
		return req.ReplyText
	}
	return req.Reply
}

func (h *Handler) feedbackListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := accountapp.FeedbackFilter{UserID: common.ScopeUserID(r.URL.Query().Get("userId"))}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		items, err := h.feedback.List(ctx, filter)
		if err != nil {
			h.logf("フィードバック一覧の取得に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error fetching feedbacks", "")
			return
		}
		resp := make([]common.FeedbackResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, common.NewFeedbackResponse(item))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

func (h *Handler) feedbackStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var req feedbackStatusRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if req.Completed == nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "completed is required", "")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		feedback, err := h.feedback.SetCompleted(ctx, id, *req.Completed)
		if err != nil {
			h.writeFeedbackError(w, id, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewFeedbackResponse(*feedback))
	}
}

// feedbackReplyHandler stores the reply and tells the submitter if known.
func (h *Handler) feedbackReplyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var req feedbackReplyRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		feedback, err := h.feedback.Reply(ctx, id, req.text())
		if err != nil {
			h.writeFeedbackError(w, id, err)
			return
		}

		if feedback.UserID != "" {
			h.notifier.NotifyUser(feedback.UserID, common.EventNotification, userNotification{
				Title:   "New Reply to Your Feedback",
				Message: fmt.Sprintf("You have received a reply to your feedback %q.", feedback.Subject),
				Type:    "feedback_reply",
				Details: map[string]any{
					"feedbackId": feedback.ID,
					"subject":    feedback.Subject,
					"replyText":  feedback.Reply,
					"replyDate":  feedback.ReplyDate,
				},
				Timestamp: h.now().UTC(),
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewFeedbackResponse(*feedback))
	}
}

func (h *Handler) feedbackDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := h.feedback.Delete(ctx, id); err != nil {
			h.writeFeedbackError(w, id, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"message": "Feedback deleted"})
	}
}

func (h *Handler) writeFeedbackError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, accountapp.ErrNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "Feedback not found", "")
	case errors.Is(err, accountapp.ErrValidation):
		common.WriteError(h.logger, w, http.StatusBadRequest, err.Error(), "")
	default:
		h.logf("フィードバックの更新に失敗 id=%s err=%v", id, err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, "Error updating feedback", "")
	}
}
