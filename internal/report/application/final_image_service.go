package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
)

// NewFinalImageService wires the save/list use-cases to a repository.
func NewFinalImageService(repo FinalImageRepository) FinalImageService {
	return &finalImageService{repo: repo, now: time.Now}
}

type finalImageService struct {
	repo FinalImageRepository
	now  func() time.Time
}

// Save trusts the submitted analysis payload and derives every summary
// field from it; no server-side record of the analysis call is consulted.
func (s *finalImageService) Save(ctx context.Context, cmd SaveFinalImageCommand) (*domain.FinalImage, error) {
	if strings.TrimSpace(cmd.ImagePath) == "" {
		return nil, fmt.Errorf("%w: imagePath is required", ErrValidation)
	}
	if cmd.AnalysisResult == nil {
		return nil, fmt.Errorf("%w: analysisResult is required", ErrValidation)
	}
	if strings.TrimSpace(cmd.UserID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}

	assessment := domain.Assess(cmd.AnalysisResult)
	createdAt := cmd.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	image := domain.FinalImage{
		ImagePath:          strings.TrimSpace(cmd.ImagePath),
		AnnotatedImagePath: cmd.AnnotatedImagePath,
		Address:            strings.TrimSpace(cmd.Address),
		AnalysisResult:     cmd.AnalysisResult,
		Status:             assessment.Status,
		Severity:           assessment.Severity,
		SeverityLevel:      assessment.SeverityLevel,
		DamageType:         assessment.DamageType,
		DetectionCount:     assessment.DetectionCount,
		ProcessingTime:     assessment.ProcessingTime,
		UserID:             strings.TrimSpace(cmd.UserID),
		CreatedAt:          createdAt.UTC(),
		ReviewStatus:       domain.ReviewPending,
	}
	if cmd.Latitude != nil && cmd.Longitude != nil {
		image.Latitude = *cmd.Latitude
		image.Longitude = *cmd.Longitude
		image.HasLocation = true
	}

	if err := s.repo.Create(ctx, &image); err != nil {
		return nil, fmt.Errorf("create final image: %w", err)
	}
	return &image, nil
}

func (s *finalImageService) List(ctx context.Context, filter ReportFilter) ([]domain.FinalImage, error) {
	filter.UserID = strings.TrimSpace(filter.UserID)
	return s.repo.Find(ctx, filter)
}
