package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/inspectify/inspectify/api/internal/infrastructure/analysis"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
	"github.com/inspectify/inspectify/api/internal/report/domain"
)

type predictResponse struct {
	Prediction string `json:"prediction"`
	Saved      bool   `json:"saved"`
	EntryID    string `json:"entryId,omitempty"`
	ImagePath  string `json:"imagePath,omitempty"`
}

type adminNotification struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	EntryID   string    `json:"entryId,omitempty"`
	ImageID   string    `json:"imageId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Severity  string    `json:"severity,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type analysisCompleteEvent struct {
	Success   bool           `json:"success"`
	ImagePath string         `json:"imagePath"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// predictHandler classifies the upload and, for a road, stores a RoadEntry
// and tells the admins. The temp file is removed either way.
func (h *Handler) predictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, uerr := h.readImage(w, r, "No image file received!")
		if uerr != nil {
			common.WriteError(h.logger, w, uerr.status, uerr.message, "")
			return
		}
		coords := domain.Coordinates{Latitude: formValue(r, "latitude"), Longitude: formValue(r, "longitude")}
		userID := formValue(r, "userId")
		if !coords.Complete() {
			common.WriteError(h.logger, w, http.StatusBadRequest, "latitude and longitude are required", "")
			return
		}
		if userID == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "userId is required", "")
			return
		}

		tempPath, cleanup, err := h.images.SaveTemp(image.Data, imageExt(image.Name))
		if err != nil {
			h.logf("一時ファイルの保存に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Server error", "")
			return
		}
		label, err := h.analyzer.Classify(r.Context(), tempPath)
		cleanup()
		if err != nil {
			h.writeAnalysisError(w, "Prediction failed", err)
			return
		}

		resp := predictResponse{Prediction: label}
		if analysis.IsRoad(label) {
			relPath, _, err := h.images.SaveUpload("road"+imageExt(image.Name), image.Data)
			if err != nil {
				h.logf("画像の保存に失敗: %v", err)
				common.WriteError(h.logger, w, http.StatusInternalServerError, "Error saving road image", "")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			entry, err := h.roadEntries.Submit(ctx, reportapp.SubmitRoadEntryCommand{
				ImagePath:   relPath,
				Coordinates: coords,
				Address:     formValue(r, "address"),
				UserID:      userID,
			})
			if err != nil {
				if errors.Is(err, reportapp.ErrValidation) {
					common.WriteError(h.logger, w, http.StatusBadRequest, err.Error(), "")
					return
				}
				h.logf("RoadEntry の保存に失敗: %v", err)
				common.WriteError(h.logger, w, http.StatusInternalServerError, "Error saving road entry", "")
				return
			}

			resp.Saved = true
			resp.EntryID = entry.ID
			resp.ImagePath = entry.ImagePath

			h.notifier.NotifyAdmins(common.EventNewRoadEntry, common.NewRoadEntryResponse(*entry))
			h.notifier.NotifyAdmins(common.EventAdminNotification, adminNotification{
				Type:      "new-road-entry",
				Message:   fmt.Sprintf("New road entry submitted by %s", userID),
				EntryID:   entry.ID,
				UserID:    userID,
				Timestamp: h.now().UTC(),
			})
		}

		h.notifier.NotifyUser(userID, common.EventPredictionComplete, resp)
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

// analyzeDamageHandler keeps the upload under uploads/ and returns the
// detector output verbatim plus the server timing field.
func (h *Handler) analyzeDamageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, uerr := h.readImage(w, r, "No image file uploaded!")
		if uerr != nil {
			common.WriteError(h.logger, w, uerr.status, uerr.message, "")
			return
		}
		coords := domain.Coordinates{Latitude: formValue(r, "latitude"), Longitude: formValue(r, "longitude")}
		userID := formValue(r, "userId")

		relPath, fullPath, err := h.images.SaveUpload(image.Name, image.Data)
		if err != nil {
			h.logf("画像の保存に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Failed to store image", "")
			return
		}

		result, err := h.analyzer.Analyze(r.Context(), fullPath, coords)
		if err != nil {
			message := h.writeAnalysisError(w, "Analysis process failed", err)
			if userID != "" {
				h.notifier.NotifyUser(userID, common.EventAnalysisComplete, analysisCompleteEvent{ImagePath: relPath, Error: message})
			}
			return
		}

		w.Header().Set("X-Image-Path", relPath)
		common.WriteJSON(h.logger, w, http.StatusOK, result)
		if userID != "" {
			h.notifier.NotifyUser(userID, common.EventAnalysisComplete, analysisCompleteEvent{Success: true, ImagePath: relPath, Result: result})
		}
	}
}

// writeAnalysisError maps invoker failures to responses and returns the message sent.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, failed string, err error) string {
	var procErr *analysis.ProcessError
	switch {
	case errors.Is(err, analysis.ErrBusy):
		common.WriteError(h.logger, w, http.StatusServiceUnavailable, "Analysis capacity exhausted, try again later", "")
		return "Analysis capacity exhausted, try again later"
	case errors.Is(err, analysis.ErrTimeout):
		common.WriteError(h.logger, w, http.StatusInternalServerError, "Analysis timed out", "")
		return "Analysis timed out"
	case errors.Is(err, analysis.ErrParse):
		common.WriteError(h.logger, w, http.StatusInternalServerError, "Error parsing detection result", "")
		return "Error parsing detection result"
	case errors.As(err, &procErr):
		common.WriteError(h.logger, w, http.StatusInternalServerError, failed, procErr.Detail())
		return failed
	case errors.Is(err, context.Canceled):
		h.logf("解析リクエストがキャンセルされました: %v", err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, "Analysis cancelled", "")
		return "Analysis cancelled"
	}
	h.logf("解析に失敗: %v", err)
	common.WriteError(h.logger, w, http.StatusInternalServerError, failed, err.Error())
	return failed
}
