package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
)

type fakeRoadRepo struct {
	mu      sync.Mutex
	entries map[string]domain.RoadEntry
	seq     int
	err     error
}

func newFakeRoadRepo() *fakeRoadRepo {
	return &fakeRoadRepo{entries: make(map[string]domain.RoadEntry)}
}

func (f *fakeRoadRepo) Create(_ context.Context, entry *domain.RoadEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	entry.ID = fmt.Sprintf("road-%d", f.seq)
	f.entries[entry.ID] = *entry
	return nil
}

func (f *fakeRoadRepo) Find(_ context.Context, filter ReportFilter) ([]domain.RoadEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.RoadEntry, 0)
	for _, entry := range f.entries {
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (f *fakeRoadRepo) FindByID(_ context.Context, id string) (*domain.RoadEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (f *fakeRoadRepo) SaveReview(_ context.Context, id string, review domain.Review) (*domain.RoadEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, fmt.Errorf("road entry %s: %w", id, ErrNotFound)
	}
	entry.Apply(review)
	f.entries[id] = entry
	return &entry, nil
}

type fakeImageRepo struct {
	mu     sync.Mutex
	images map[string]domain.FinalImage
	order  []string
	seq    int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]domain.FinalImage)}
}

func (f *fakeImageRepo) Create(_ context.Context, image *domain.FinalImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	image.ID = fmt.Sprintf("img-%d", f.seq)
	f.images[image.ID] = *image
	f.order = append([]string{image.ID}, f.order...)
	return nil
}

func (f *fakeImageRepo) Find(_ context.Context, filter ReportFilter) ([]domain.FinalImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.FinalImage, 0)
	for _, id := range f.order {
		image := f.images[id]
		if filter.UserID != "" && image.UserID != filter.UserID {
			continue
		}
		result = append(result, image)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (f *fakeImageRepo) FindByID(_ context.Context, id string) (*domain.FinalImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	image, ok := f.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &image, nil
}

func (f *fakeImageRepo) SaveReview(_ context.Context, id string, review domain.Review) (*domain.FinalImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	image, ok := f.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	image.Apply(review)
	f.images[id] = image
	return &image, nil
}

type fakeStatsRepo struct {
	counts   ReportCounts
	days     []DayCount
	damage   []LabelCount
	severity []LabelCount
	resolved int64
	avg      float64
	since    time.Time
}

func (f *fakeStatsRepo) CountReports(context.Context, StatsScope) (ReportCounts, error) {
	return f.counts, nil
}

func (f *fakeStatsRepo) CountByDay(_ context.Context, _ StatsScope, since time.Time) ([]DayCount, error) {
	f.since = since
	return f.days, nil
}

func (f *fakeStatsRepo) CountByDamageType(context.Context, StatsScope) ([]LabelCount, error) {
	return f.damage, nil
}

func (f *fakeStatsRepo) CountBySeverity(context.Context, StatsScope) ([]LabelCount, error) {
	return f.severity, nil
}

func (f *fakeStatsRepo) CountReviewedSince(context.Context, StatsScope, time.Time) (int64, error) {
	return f.resolved, nil
}

func (f *fakeStatsRepo) AverageProcessingTime(context.Context, StatsScope) (float64, error) {
	return f.avg, nil
}
