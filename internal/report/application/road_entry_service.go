package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
)

// NewRoadEntryService wires the road entry use-cases to a repository.
func NewRoadEntryService(repo RoadEntryRepository) RoadEntryService {
	return &roadEntryService{repo: repo, now: time.Now}
}

type roadEntryService struct {
	repo RoadEntryRepository
	now  func() time.Time
}

func (s *roadEntryService) Submit(ctx context.Context, cmd SubmitRoadEntryCommand) (*domain.RoadEntry, error) {
	if strings.TrimSpace(cmd.ImagePath) == "" {
		return nil, fmt.Errorf("%w: imagePath is required", ErrValidation)
	}
	if strings.TrimSpace(cmd.UserID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if !cmd.Coordinates.Complete() {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrValidation)
	}

	entry := domain.NewRoadEntry(
		cmd.ImagePath,
		cmd.Coordinates,
		strings.TrimSpace(cmd.Address),
		strings.TrimSpace(cmd.UserID),
		s.now().UTC(),
	)
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, fmt.Errorf("create road entry: %w", err)
	}
	return &entry, nil
}

func (s *roadEntryService) List(ctx context.Context, filter ReportFilter) ([]domain.RoadEntry, error) {
	filter.UserID = strings.TrimSpace(filter.UserID)
	return s.repo.Find(ctx, filter)
}

func (s *roadEntryService) Detail(ctx context.Context, id string) (*domain.RoadEntry, error) {
	return s.repo.FindByID(ctx, strings.TrimSpace(id))
}
