package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
	"github.com/inspectify/inspectify/api/internal/report/domain"
)

type reviewRequest struct {
	ID                string             `json:"id"`
	ImageID           string             `json:"imageId"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	ReviewNotes       string             `json:"reviewNotes"`
	Severity          string             `json:"severity"`
	DamageType        domain.DamageTypes `json:"damageType"`
	RecommendedAction string             `json:"recommendedAction"`
	ReviewerID        string             `json:"reviewerId"`
}

func (req reviewRequest) targetID() string {
	if id := strings.TrimSpace(req.ID); id != "" {
		return id
	}
	return strings.TrimSpace(req.ImageID)
}

// imageReviewedEvent is pushed to the owner and to every admin session.
type imageReviewedEvent struct {
	ID                string     `json:"id"`
	ImageID           string     `json:"imageId"`
	Type              string     `json:"type"`
	UserID            string     `json:"userId"`
	Status            string     `json:"status"`
	ReviewNotes       string     `json:"reviewNotes,omitempty"`
	Severity          string     `json:"severity"`
	DamageType        []string   `json:"damageType"`
	RecommendedAction string     `json:"recommendedAction,omitempty"`
	ReviewerID        string     `json:"reviewerId,omitempty"`
	ReviewedAt        *time.Time `json:"reviewedAt,omitempty"`
	Message           string     `json:"message"`
}

type reviewResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Notified int    `json:"notified"`
	// Record is the updated RoadEntry or FinalImage.
	Record any `json:"record"`
}

func newImageReviewedEvent(outcome *reportapp.ReviewOutcome) imageReviewedEvent {
	event := imageReviewedEvent{Type: string(outcome.Kind), UserID: outcome.OwnerID}
	var review domain.Review
	switch {
	case outcome.RoadEntry != nil:
		e := outcome.RoadEntry
		event.ID = e.ID
		review = domain.Review{Status: e.Status, Notes: e.ReviewNotes, Severity: e.Severity, DamageType: e.DamageType, RecommendedAction: e.RecommendedAction, ReviewerID: e.ReviewerID}
		event.ReviewedAt = e.ReviewedAt
	case outcome.FinalImage != nil:
		img := outcome.FinalImage
		event.ID = img.ID
		review = domain.Review{Status: img.ReviewStatus, Notes: img.ReviewNotes, Severity: img.ReviewSeverity, DamageType: img.ReviewDamageType, RecommendedAction: img.RecommendedAction, ReviewerID: img.ReviewerID}
		event.ReviewedAt = img.ReviewedAt
	}
	event.ImageID = event.ID
	event.Status = string(review.Status)
	event.ReviewNotes = review.Notes
	event.Severity = string(review.Severity)
	event.DamageType = review.DamageType.Strings()
	event.RecommendedAction = review.RecommendedAction
	event.ReviewerID = review.ReviewerID
	event.Message = fmt.Sprintf("Your report has been reviewed: %s", event.Status)
	return event
}

// reviewHandler applies a reviewer decision, then tells the owner (with a
// delivery ack) and every admin session.
func (h *Handler) reviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		outcome, err := h.reviews.Review(ctx, reportapp.ReviewCommand{
			ID:                req.targetID(),
			Kind:              reportapp.ReviewKind(strings.TrimSpace(req.Type)),
			Status:            req.Status,
			Notes:             req.ReviewNotes,
			Severity:          req.Severity,
			DamageType:        req.DamageType,
			RecommendedAction: req.RecommendedAction,
			ReviewerID:        req.ReviewerID,
		})
		switch {
		case errors.Is(err, reportapp.ErrValidation):
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error(), "")
			return
		case errors.Is(err, reportapp.ErrNotFound):
			common.WriteError(h.logger, w, http.StatusNotFound, "Image not found", "")
			return
		case err != nil:
			h.logf("レビューの保存に失敗 id=%s err=%v", req.targetID(), err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error reviewing image", "")
			return
		}

		event := newImageReviewedEvent(outcome)
		notified := 0
		if outcome.OwnerID != "" {
			id, owner := event.ID, outcome.OwnerID
			notified = h.notifier.NotifyUserWithAck(owner, common.EventImageReviewed, event, func(connID string) {
				h.logf("image-reviewed の受信確認 id=%s user=%s conn=%s", id, owner, connID)
			})
		}
		h.notifier.NotifyAdmins(common.EventImageReviewed, event)

		if h.broadcastFallback {
			h.notifier.Broadcast(common.EventImageReviewedBroadcast, event)
			h.notifier.Broadcast(common.EventAdminNotificationBroadcast, map[string]any{
				"type":      "review",
				"message":   fmt.Sprintf("Report %s reviewed: %s", event.ID, event.Status),
				"imageId":   event.ID,
				"userId":    outcome.OwnerID,
				"timestamp": h.now().UTC(),
			})
		}

		resp := reviewResponse{
			Message:  "Image reviewed successfully",
			ID:       event.ID,
			Type:     string(outcome.Kind),
			UserID:   outcome.OwnerID,
			Notified: notified,
		}
		if outcome.RoadEntry != nil {
			resp.Record = common.NewRoadEntryResponse(*outcome.RoadEntry)
		} else if outcome.FinalImage != nil {
			resp.Record = common.NewFinalImageResponse(*outcome.FinalImage)
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}
