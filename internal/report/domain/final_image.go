package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FinalImage is the saved outcome of a damage analysis.
type FinalImage struct {
	ID                 string
	ImagePath          string
	AnnotatedImagePath string
	Latitude           float64
	Longitude          float64
	HasLocation        bool
	Address            string
	AnalysisResult     map[string]any
	Status             ImageStatus
	Severity           int
	SeverityLevel      SeverityTag
	DamageType         string
	DetectionCount     int
	ProcessingTime     float64
	UserID             string
	CreatedAt          time.Time

	Reviewed          bool
	ReviewStatus      ReviewStatus
	ReviewNotes       string
	ReviewSeverity    SeverityTag
	ReviewDamageType  DamageTypes
	RecommendedAction string
	ReviewedAt        *time.Time
	ReviewerID        string
}

// Apply updates the mutable review fields. The analysis payload is untouched.
func (f *FinalImage) Apply(review Review) {
	reviewedAt := review.ReviewedAt
	f.Reviewed = true
	f.ReviewStatus = review.Status
	f.ReviewNotes = review.Notes
	f.ReviewSeverity = review.Severity
	f.ReviewDamageType = review.DamageType
	f.RecommendedAction = review.RecommendedAction
	f.ReviewerID = review.ReviewerID
	f.ReviewedAt = &reviewedAt
}

// Assessment holds the fields derived from an analysis payload.
type Assessment struct {
	Status         ImageStatus
	Severity       int
	SeverityLevel  SeverityTag
	DamageType     string
	DetectionCount int
	ProcessingTime float64
}

// Assess derives status, score, level, damage type and detection count
// from a detector payload. Unknown shapes degrade to defaults.
func Assess(result map[string]any) Assessment {
	level := SeverityUnknown
	if severity, ok := result["severity"].(map[string]any); ok {
		if raw, ok := severity["level"].(string); ok {
			level = ParseSeverityTag(raw)
		}
	}

	detections, _ := result["detections"].([]any)

	return Assessment{
		Status:         statusForLevel(level),
		Severity:       scoreForLevel(level),
		SeverityLevel:  level,
		DamageType:     dominantDamageType(detections, result["vit_predictions"]),
		DetectionCount: len(detections),
		ProcessingTime: processingTime(result),
	}
}

func statusForLevel(level SeverityTag) ImageStatus {
	switch level {
	case SeveritySevere, SeverityHigh:
		return ImageCritical
	case SeverityModerate:
		return ImageProcessed
	case SeverityLow:
		return ImageResolved
	}
	return ImagePending
}

func scoreForLevel(level SeverityTag) int {
	switch level {
	case SeveritySevere, SeverityHigh:
		return 85
	case SeverityModerate:
		return 60
	case SeverityLow:
		return 30
	}
	return 50
}

// dominantDamageType は最頻出の検出クラスを返す。同数なら先に現れたもの。
func dominantDamageType(detections []any, vit any) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, item := range detections {
		detection, ok := item.(map[string]any)
		if !ok {
			continue
		}
		class, _ := detection["class"].(string)
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		counts[class]++
		if counts[class] > bestCount {
			best, bestCount = class, counts[class]
		}
	}
	if best != "" {
		return best
	}

	if labels, ok := vit.([]any); ok {
		for _, label := range labels {
			if s, ok := label.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return "unknown"
}

func processingTime(result map[string]any) float64 {
	for _, key := range []string{"processing_time", "server_processing_time", "clientProcessingTime"} {
		if v, ok := toFloat(result[key]); ok {
			return v
		}
	}
	return 0
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
