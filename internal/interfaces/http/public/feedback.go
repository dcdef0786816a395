package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
)

type feedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

func (h *Handler) feedbackCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		feedback, err := h.feedback.Submit(ctx, accountapp.SubmitFeedbackCommand{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
			UserID:  req.UserID,
		})
		if errors.Is(err, accountapp.ErrValidation) {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error(), "")
			return
		}
		if err != nil {
			h.logf("フィードバックの保存に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error saving feedback", "")
			return
		}

		h.notifier.NotifyAdmins(common.EventAdminNotification, adminNotification{
			Type:      "new-feedback",
			Message:   fmt.Sprintf("New feedback from %s: %s", feedback.Name, feedback.Subject),
			UserID:    feedback.UserID,
			Timestamp: feedback.DateSubmitted,
		})
		common.WriteJSON(h.logger, w, http.StatusCreated, common.NewFeedbackResponse(*feedback))
	}
}
