package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/infrastructure/storage"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
)

type saveCanvasRequest struct {
	ImagePath        string               `json:"imagePath"`
	AnalysisResult   map[string]any       `json:"analysisResult"`
	Latitude         common.FlexibleFloat `json:"latitude"`
	Longitude        common.FlexibleFloat `json:"longitude"`
	Address          string               `json:"address"`
	UserID           string               `json:"userId"`
	BoundingBoxImage string               `json:"boundingBoxImage"`
}

type saveCanvasResponse struct {
	Message            string `json:"message"`
	ID                 string `json:"id"`
	Status             string `json:"status"`
	Severity           int    `json:"severity"`
	SeverityLevel      string `json:"severityLevel"`
	DamageType         string `json:"damageType"`
	DetectionCount     int    `json:"detectionCount"`
	AnnotatedImagePath string `json:"annotatedImagePath,omitempty"`
}

// saveCanvasHandler stores the analysis the client submits. The payload is
// taken as sent; summary fields are derived from it.
func (h *Handler) saveCanvasHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveCanvasRequest
		if err := common.DecodeJSON(w, r, common.MaxCanvasRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.ImagePath) == "" || req.AnalysisResult == nil || strings.TrimSpace(req.UserID) == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "imagePath, analysisResult and userId are required", "")
			return
		}

		var annotated string
		if strings.TrimSpace(req.BoundingBoxImage) != "" {
			rel, err := h.images.SaveDataURL(req.BoundingBoxImage)
			if err != nil {
				if errors.Is(err, storage.ErrInvalidImage) {
					common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid boundingBoxImage", "")
					return
				}
				h.logf("注釈画像の保存に失敗: %v", err)
				common.WriteError(h.logger, w, http.StatusInternalServerError, "Error saving annotated image", "")
				return
			}
			annotated = rel
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		image, err := h.finalImages.Save(ctx, reportapp.SaveFinalImageCommand{
			ImagePath:          req.ImagePath,
			AnnotatedImagePath: annotated,
			Latitude:           req.Latitude.Value,
			Longitude:          req.Longitude.Value,
			Address:            req.Address,
			AnalysisResult:     req.AnalysisResult,
			UserID:             req.UserID,
		})
		if err != nil {
			if errors.Is(err, reportapp.ErrValidation) {
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error(), "")
				return
			}
			h.logf("FinalImage の保存に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error saving image", err.Error())
			return
		}

		h.notifier.NotifyAdmins(common.EventAdminNotification, adminNotification{
			Type:      "new-final-image",
			Message:   fmt.Sprintf("New %s damage report (%s)", image.DamageType, image.SeverityLevel),
			ImageID:   image.ID,
			UserID:    image.UserID,
			Severity:  string(image.SeverityLevel),
			Timestamp: image.CreatedAt,
		})

		common.WriteJSON(h.logger, w, http.StatusCreated, saveCanvasResponse{
			Message:            "Image saved successfully",
			ID:                 image.ID,
			Status:             string(image.Status),
			Severity:           image.Severity,
			SeverityLevel:      string(image.SeverityLevel),
			DamageType:         image.DamageType,
			DetectionCount:     image.DetectionCount,
			AnnotatedImagePath: image.AnnotatedImagePath,
		})
	}
}
