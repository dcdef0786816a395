package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRoadEntrySubmit(t *testing.T) {
	repo := newFakeRoadRepo()
	svc := &roadEntryService{repo: repo, now: fixedClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))}

	entry, err := svc.Submit(context.Background(), SubmitRoadEntryCommand{
		ImagePath:   "uploads/road.jpg",
		Coordinates: domain.Coordinates{Latitude: "17.38", Longitude: "78.48"},
		Address:     " Banjara Hills ",
		UserID:      "user_9",
	})
	require.NoError(t, err)
	assert.Equal(t, "road-1", entry.ID)
	assert.Equal(t, "Banjara Hills", entry.Address)
	assert.Equal(t, domain.ReviewPending, entry.Status)
	assert.Equal(t, domain.SeverityUnknown, entry.Severity)
}

func TestRoadEntrySubmitValidation(t *testing.T) {
	svc := NewRoadEntryService(newFakeRoadRepo())

	_, err := svc.Submit(context.Background(), SubmitRoadEntryCommand{ImagePath: "uploads/a.jpg", UserID: "u"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit(context.Background(), SubmitRoadEntryCommand{
		ImagePath:   "uploads/a.jpg",
		Coordinates: domain.Coordinates{Latitude: "1", Longitude: "2"},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFinalImageSaveDerivesFields(t *testing.T) {
	repo := newFakeImageRepo()
	svc := NewFinalImageService(repo)
	lat, lon := 17.4, 78.5

	image, err := svc.Save(context.Background(), SaveFinalImageCommand{
		ImagePath: "uploads/a.jpg",
		Latitude:  &lat,
		Longitude: &lon,
		AnalysisResult: map[string]any{
			"severity":   map[string]any{"level": "high"},
			"detections": []any{map[string]any{"class": "pothole"}},
		},
		UserID: "user_9",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ImageCritical, image.Status)
	assert.Equal(t, 85, image.Severity)
	assert.Equal(t, "pothole", image.DamageType)
	assert.Equal(t, 1, image.DetectionCount)
	assert.True(t, image.HasLocation)
	assert.Equal(t, domain.ReviewPending, image.ReviewStatus)
}

func TestFinalImageSaveRequiresAnalysisResult(t *testing.T) {
	svc := NewFinalImageService(newFakeImageRepo())
	_, err := svc.Save(context.Background(), SaveFinalImageCommand{ImagePath: "uploads/a.jpg", UserID: "u"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReviewNormalisesBareDamageType(t *testing.T) {
	roads := newFakeRoadRepo()
	entry := domain.NewRoadEntry("uploads/a.jpg", domain.Coordinates{Latitude: "1", Longitude: "2"}, "", "user_9", time.Now())
	require.NoError(t, roads.Create(context.Background(), &entry))

	svc := NewReviewService(roads, newFakeImageRepo())
	outcome, err := svc.Review(context.Background(), ReviewCommand{
		ID:         entry.ID,
		Status:     "approved",
		Severity:   "high",
		DamageType: domain.DamageTypes{"pothole"},
		ReviewerID: "admin_1",
	})
	require.NoError(t, err)
	assert.Equal(t, ReviewRoadEntry, outcome.Kind)
	assert.Equal(t, "user_9", outcome.OwnerID)

	stored, err := roads.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DamageTypes{"pothole"}, stored.DamageType)
	assert.True(t, stored.Reviewed)
	assert.Equal(t, "admin_1", stored.ReviewerID)
}

func TestReviewFallsBackToFinalImage(t *testing.T) {
	images := newFakeImageRepo()
	image := domain.FinalImage{ImagePath: "uploads/b.jpg", UserID: "user_3"}
	require.NoError(t, images.Create(context.Background(), &image))

	svc := NewReviewService(newFakeRoadRepo(), images)
	outcome, err := svc.Review(context.Background(), ReviewCommand{ID: image.ID, Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, ReviewFinalImage, outcome.Kind)
	assert.Equal(t, "user_3", outcome.OwnerID)
	assert.Equal(t, domain.ReviewRejected, outcome.FinalImage.ReviewStatus)
}

func TestReviewErrors(t *testing.T) {
	svc := NewReviewService(newFakeRoadRepo(), newFakeImageRepo())

	_, err := svc.Review(context.Background(), ReviewCommand{ID: "x", Status: "finished"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Review(context.Background(), ReviewCommand{ID: "missing", Status: "approved"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWeeklyReportsFillsSevenDays(t *testing.T) {
	now := time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC) // Wednesday
	repo := &fakeStatsRepo{days: []DayCount{
		{Day: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), Count: 3},
		{Day: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Count: 1},
	}}
	svc := &statsService{stats: repo, images: newFakeImageRepo(), now: fixedClock(now)}

	weekly, err := svc.WeeklyReports(context.Background(), StatsScope{})
	require.NoError(t, err)
	require.Len(t, weekly, 7)
	assert.Equal(t, WeekdayCount{Name: "Thu", Reports: 1}, weekly[0])
	assert.Equal(t, WeekdayCount{Name: "Wed", Reports: 3}, weekly[6])
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), repo.since)
}

func TestSeverityBreakdownOrdersAndColours(t *testing.T) {
	repo := &fakeStatsRepo{severity: []LabelCount{
		{Label: "low", Count: 2},
		{Label: "high", Count: 4},
		{Label: "medium", Count: 1},
		{Label: "moderate", Count: 1},
	}}
	svc := NewStatsService(repo, newFakeImageRepo())

	breakdown, err := svc.SeverityBreakdown(context.Background(), StatsScope{})
	require.NoError(t, err)
	assert.Equal(t, []NamedValue{
		{Name: "High", Value: 4, Color: "#ef4444"},
		{Name: "Moderate", Value: 2, Color: "#f59e0b"},
		{Name: "Low", Value: 2, Color: "#10b981"},
	}, breakdown)
}

func TestDashboardStats(t *testing.T) {
	repo := &fakeStatsRepo{
		counts:   ReportCounts{Total: 10, Pending: 6, Reviewed: 4},
		days:     []DayCount{{Count: 2}, {Count: 1}},
		severity: []LabelCount{{Label: "severe", Count: 1}, {Label: "high", Count: 2}, {Label: "low", Count: 7}},
		resolved: 3,
		avg:      1.23456,
	}
	svc := NewStatsService(repo, newFakeImageRepo())

	stats, err := svc.Dashboard(context.Background(), StatsScope{UserID: "user_9"})
	require.NoError(t, err)
	assert.EqualValues(t, 10, stats.TotalInspections.Count)
	assert.EqualValues(t, 3, stats.TotalInspections.NewThisWeek)
	assert.EqualValues(t, 3, stats.HighSeverityIssues.Count)
	assert.Equal(t, 30, stats.HighSeverityIssues.Percentage)
	assert.InDelta(t, 1.23, stats.ProcessingTime.Average, 0.0001)
	assert.Equal(t, 40, stats.ResolutionRate.Percentage)
	assert.EqualValues(t, 3, stats.ResolutionRate.ResolvedLastMonth)
}

func TestRecentReportsUsesLimitAndAddress(t *testing.T) {
	images := newFakeImageRepo()
	for _, addr := range []string{"A St", "", "C St"} {
		image := domain.FinalImage{Address: addr, HasLocation: true, Latitude: 1, Longitude: 2, DamageType: "crack", SeverityLevel: domain.SeverityLow}
		require.NoError(t, images.Create(context.Background(), &image))
	}
	svc := NewStatsService(&fakeStatsRepo{}, images)

	recent, err := svc.RecentReports(context.Background(), StatsScope{}, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "C St", recent[0].Location)
	assert.Equal(t, "1.00000, 2.00000", recent[1].Location)
	assert.Equal(t, "pending", recent[1].Status)
}
