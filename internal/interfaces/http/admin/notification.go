package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
)

type userNotificationRequest struct {
	UserID  string         `json:"userId"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Details map[string]any `json:"details"`
}

type userNotification struct {
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// userNotificationHandler は任意の通知を 1 ユーザーへ送る。未接続でも 200。
func (h *Handler) userNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userNotificationRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		userID := strings.TrimSpace(req.UserID)
		message := strings.TrimSpace(req.Message)
		if userID == "" || message == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "userId and message are required", "")
			return
		}
		kind := strings.TrimSpace(req.Type)
		if kind == "" {
			kind = "info"
		}

		delivered := h.notifier.NotifyUser(userID, common.EventNotification, userNotification{
			Title:     strings.TrimSpace(req.Title),
			Message:   message,
			Type:      kind,
			Details:   req.Details,
			Timestamp: h.now().UTC(),
		})
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"message":   "Notification sent",
			"delivered": delivered,
		})
	}
}
