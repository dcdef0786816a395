package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
)

// NewReviewService は RoadEntry と FinalImage の両方を対象とするレビューサービスを返す。
func NewReviewService(roads RoadEntryRepository, images FinalImageRepository) ReviewService {
	return &reviewService{roads: roads, images: images, now: time.Now}
}

type reviewService struct {
	roads  RoadEntryRepository
	images FinalImageRepository
	now    func() time.Time
}

// Review validates the decision and persists it. With ReviewAny the id is
// looked up among road entries first, then among final images.
func (s *reviewService) Review(ctx context.Context, cmd ReviewCommand) (*ReviewOutcome, error) {
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	status, err := domain.NewReviewStatus(cmd.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	severity, err := domain.NewSeverityTag(cmd.Severity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	review := domain.Review{
		Status:            status,
		Notes:             strings.TrimSpace(cmd.Notes),
		Severity:          severity,
		DamageType:        domain.NewDamageTypes(cmd.DamageType...),
		RecommendedAction: strings.TrimSpace(cmd.RecommendedAction),
		ReviewerID:        strings.TrimSpace(cmd.ReviewerID),
		ReviewedAt:        s.now().UTC(),
	}

	switch cmd.Kind {
	case ReviewRoadEntry:
		return s.reviewRoadEntry(ctx, id, review)
	case ReviewFinalImage:
		return s.reviewFinalImage(ctx, id, review)
	case ReviewAny:
		outcome, err := s.reviewRoadEntry(ctx, id, review)
		if errors.Is(err, ErrNotFound) {
			return s.reviewFinalImage(ctx, id, review)
		}
		return outcome, err
	}
	return nil, fmt.Errorf("%w: unknown review target %q", ErrValidation, cmd.Kind)
}

func (s *reviewService) reviewRoadEntry(ctx context.Context, id string, review domain.Review) (*ReviewOutcome, error) {
	entry, err := s.roads.SaveReview(ctx, id, review)
	if err != nil {
		return nil, err
	}
	return &ReviewOutcome{Kind: ReviewRoadEntry, OwnerID: entry.UserID, RoadEntry: entry}, nil
}

func (s *reviewService) reviewFinalImage(ctx context.Context, id string, review domain.Review) (*ReviewOutcome, error) {
	image, err := s.images.SaveReview(ctx, id, review)
	if err != nil {
		return nil, err
	}
	return &ReviewOutcome{Kind: ReviewFinalImage, OwnerID: image.UserID, FinalImage: image}, nil
}
