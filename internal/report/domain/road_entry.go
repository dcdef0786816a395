package domain

import "time"

// RoadEntry is a submitted road photo that passed road classification.
type RoadEntry struct {
	ID                string
	ImagePath         string
	Latitude          string
	Longitude         string
	Address           string
	Timestamp         time.Time
	Status            ReviewStatus
	Reviewed          bool
	ReviewNotes       string
	Severity          SeverityTag
	DamageType        DamageTypes
	RecommendedAction string
	ReviewedAt        *time.Time
	UserID            string
	ReviewerID        string
}

// NewRoadEntry はデフォルト値を埋めた未レビューの RoadEntry を生成する。
func NewRoadEntry(imagePath string, coords Coordinates, address, userID string, now time.Time) RoadEntry {
	return RoadEntry{
		ImagePath: imagePath,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Address:   address,
		Timestamp: now,
		Status:    ReviewPending,
		Severity:  SeverityUnknown,
		UserID:    userID,
	}
}

// Review captures the reviewer's decision for either record kind.
type Review struct {
	Status            ReviewStatus
	Notes             string
	Severity          SeverityTag
	DamageType        DamageTypes
	RecommendedAction string
	ReviewerID        string
	ReviewedAt        time.Time
}

// Apply marks the entry reviewed with the supplied decision.
func (e *RoadEntry) Apply(review Review) {
	reviewedAt := review.ReviewedAt
	e.Reviewed = true
	e.Status = review.Status
	e.ReviewNotes = review.Notes
	e.Severity = review.Severity
	e.DamageType = review.DamageType
	e.RecommendedAction = review.RecommendedAction
	e.ReviewerID = review.ReviewerID
	e.ReviewedAt = &reviewedAt
}
