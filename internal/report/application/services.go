package application

import (
	"context"
	"errors"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
)

var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrValidation wraps input that failed domain validation.
	ErrValidation = errors.New("invalid report input")
)

// RoadEntryRepository は RoadEntry の永続化ポート。
type RoadEntryRepository interface {
	Create(ctx context.Context, entry *domain.RoadEntry) error
	Find(ctx context.Context, filter ReportFilter) ([]domain.RoadEntry, error)
	FindByID(ctx context.Context, id string) (*domain.RoadEntry, error)
	SaveReview(ctx context.Context, id string, review domain.Review) (*domain.RoadEntry, error)
}

// FinalImageRepository は FinalImage の永続化ポート。
type FinalImageRepository interface {
	Create(ctx context.Context, image *domain.FinalImage) error
	Find(ctx context.Context, filter ReportFilter) ([]domain.FinalImage, error)
	FindByID(ctx context.Context, id string) (*domain.FinalImage, error)
	SaveReview(ctx context.Context, id string, review domain.Review) (*domain.FinalImage, error)
}

// StatsRepository aggregates saved analyses for dashboards.
type StatsRepository interface {
	CountReports(ctx context.Context, scope StatsScope) (ReportCounts, error)
	CountByDay(ctx context.Context, scope StatsScope, since time.Time) ([]DayCount, error)
	CountByDamageType(ctx context.Context, scope StatsScope) ([]LabelCount, error)
	CountBySeverity(ctx context.Context, scope StatsScope) ([]LabelCount, error)
	CountReviewedSince(ctx context.Context, scope StatsScope, since time.Time) (int64, error)
	AverageProcessingTime(ctx context.Context, scope StatsScope) (float64, error)
}

// ReportFilter narrows listings. Zero values mean no restriction.
type ReportFilter struct {
	UserID string
	Limit  int
}

// StatsScope limits aggregates to one user; empty UserID means everyone.
type StatsScope struct {
	UserID string
}

// ReportCounts summarises review progress.
type ReportCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Reviewed int64 `json:"reviewed"`
}

// DayCount is the number of reports created on Day (UTC midnight).
type DayCount struct {
	Day   time.Time
	Count int64
}

// LabelCount is a generic grouped count.
type LabelCount struct {
	Label string
	Count int64
}

// SubmitRoadEntryCommand captures a positively classified upload.
type SubmitRoadEntryCommand struct {
	ImagePath   string
	Coordinates domain.Coordinates
	Address     string
	UserID      string
}

// SaveFinalImageCommand captures a client-submitted analysis result.
type SaveFinalImageCommand struct {
	ImagePath          string
	AnnotatedImagePath string
	Latitude           *float64
	Longitude          *float64
	Address            string
	AnalysisResult     map[string]any
	UserID             string
	CreatedAt          time.Time
}

// ReviewKind selects which record a review targets.
type ReviewKind string

const (
	ReviewAny        ReviewKind = ""
	ReviewRoadEntry  ReviewKind = "road-entry"
	ReviewFinalImage ReviewKind = "final-image"
)

// ReviewCommand carries raw reviewer input.
type ReviewCommand struct {
	ID                string
	Kind              ReviewKind
	Status            string
	Notes             string
	Severity          string
	DamageType        domain.DamageTypes
	RecommendedAction string
	ReviewerID        string
}

// ReviewOutcome reports which record was updated and who owns it.
type ReviewOutcome struct {
	Kind       ReviewKind
	OwnerID    string
	RoadEntry  *domain.RoadEntry
	FinalImage *domain.FinalImage
}

// RoadEntryService handles the lightweight classification flow.
type RoadEntryService interface {
	Submit(ctx context.Context, cmd SubmitRoadEntryCommand) (*domain.RoadEntry, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.RoadEntry, error)
	Detail(ctx context.Context, id string) (*domain.RoadEntry, error)
}

// FinalImageService handles saved analyses.
type FinalImageService interface {
	Save(ctx context.Context, cmd SaveFinalImageCommand) (*domain.FinalImage, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.FinalImage, error)
}

// ReviewService applies reviewer decisions.
type ReviewService interface {
	Review(ctx context.Context, cmd ReviewCommand) (*ReviewOutcome, error)
}
