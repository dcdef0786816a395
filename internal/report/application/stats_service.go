package application

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/domain"
)

// WeekdayCount is one bar of the weekly chart.
type WeekdayCount struct {
	Name    string `json:"name"`
	Reports int64  `json:"reports"`
}

// NamedValue is one slice of a distribution chart.
type NamedValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Color string `json:"color,omitempty"`
}

// RecentReport is a compact listing row.
type RecentReport struct {
	ID       string    `json:"id"`
	Location string    `json:"location"`
	Type     string    `json:"type"`
	Severity string    `json:"severity"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
}

// DashboardStats feeds the authority dashboard header cards.
type DashboardStats struct {
	TotalInspections struct {
		Count       int64 `json:"count"`
		NewThisWeek int64 `json:"newThisWeek"`
	} `json:"totalInspections"`
	HighSeverityIssues struct {
		Count      int64 `json:"count"`
		Percentage int   `json:"percentage"`
	} `json:"highSeverityIssues"`
	ProcessingTime struct {
		Average float64 `json:"average"`
	} `json:"processingTime"`
	ResolutionRate struct {
		Percentage        int   `json:"percentage"`
		ResolvedLastMonth int64 `json:"resolvedLastMonth"`
	} `json:"resolutionRate"`
}

// StatsService answers dashboard queries.
type StatsService interface {
	ReportStats(ctx context.Context, scope StatsScope) (ReportCounts, error)
	WeeklyReports(ctx context.Context, scope StatsScope) ([]WeekdayCount, error)
	DamageDistribution(ctx context.Context, scope StatsScope) ([]NamedValue, error)
	SeverityBreakdown(ctx context.Context, scope StatsScope) ([]NamedValue, error)
	RecentReports(ctx context.Context, scope StatsScope, limit int) ([]RecentReport, error)
	Dashboard(ctx context.Context, scope StatsScope) (*DashboardStats, error)
}

var severityColors = map[domain.SeverityTag]string{
	domain.SeveritySevere:   "#b91c1c",
	domain.SeverityHigh:     "#ef4444",
	domain.SeverityModerate: "#f59e0b",
	domain.SeverityLow:      "#10b981",
	domain.SeverityUnknown:  "#9ca3af",
}

var severityOrder = []domain.SeverityTag{
	domain.SeveritySevere,
	domain.SeverityHigh,
	domain.SeverityModerate,
	domain.SeverityLow,
	domain.SeverityUnknown,
}

// NewStatsService は集計リポジトリと一覧リポジトリからダッシュボード用サービスを組み立てる。
func NewStatsService(stats StatsRepository, images FinalImageRepository) StatsService {
	return &statsService{stats: stats, images: images, now: time.Now}
}

type statsService struct {
	stats  StatsRepository
	images FinalImageRepository
	now    func() time.Time
}

func (s *statsService) ReportStats(ctx context.Context, scope StatsScope) (ReportCounts, error) {
	return s.stats.CountReports(ctx, scope)
}

// WeeklyReports returns seven buckets ending today (UTC), oldest first.
func (s *statsService) WeeklyReports(ctx context.Context, scope StatsScope) ([]WeekdayCount, error) {
	today := truncateDay(s.now().UTC())
	since := today.AddDate(0, 0, -6)

	counts, err := s.stats.CountByDay(ctx, scope, since)
	if err != nil {
		return nil, err
	}
	byDay := make(map[time.Time]int64, len(counts))
	for _, c := range counts {
		byDay[truncateDay(c.Day.UTC())] += c.Count
	}

	result := make([]WeekdayCount, 0, 7)
	for day := since; !day.After(today); day = day.AddDate(0, 0, 1) {
		result = append(result, WeekdayCount{
			Name:    day.Weekday().String()[:3],
			Reports: byDay[day],
		})
	}
	return result, nil
}

func (s *statsService) DamageDistribution(ctx context.Context, scope StatsScope) ([]NamedValue, error) {
	counts, err := s.stats.CountByDamageType(ctx, scope)
	if err != nil {
		return nil, err
	}
	result := make([]NamedValue, 0, len(counts))
	for _, c := range counts {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			label = "unknown"
		}
		result = append(result, NamedValue{Name: label, Value: c.Count})
	}
	return result, nil
}

func (s *statsService) SeverityBreakdown(ctx context.Context, scope StatsScope) ([]NamedValue, error) {
	counts, err := s.stats.CountBySeverity(ctx, scope)
	if err != nil {
		return nil, err
	}
	byLevel := make(map[domain.SeverityTag]int64)
	for _, c := range counts {
		byLevel[domain.ParseSeverityTag(c.Label)] += c.Count
	}

	result := make([]NamedValue, 0, len(byLevel))
	for _, level := range severityOrder {
		value, ok := byLevel[level]
		if !ok {
			continue
		}
		result = append(result, NamedValue{
			Name:  strings.ToUpper(string(level[:1])) + string(level[1:]),
			Value: value,
			Color: severityColors[level],
		})
	}
	return result, nil
}

func (s *statsService) RecentReports(ctx context.Context, scope StatsScope, limit int) ([]RecentReport, error) {
	if limit <= 0 {
		limit = 4
	}
	images, err := s.images.Find(ctx, ReportFilter{UserID: scope.UserID, Limit: limit})
	if err != nil {
		return nil, err
	}
	result := make([]RecentReport, 0, len(images))
	for _, image := range images {
		status := string(image.ReviewStatus)
		if status == "" {
			status = string(domain.ReviewPending)
		}
		location := image.Address
		if location == "" && image.HasLocation {
			location = formatLocation(image.Latitude, image.Longitude)
		}
		result = append(result, RecentReport{
			ID:       image.ID,
			Location: location,
			Type:     image.DamageType,
			Severity: string(image.SeverityLevel),
			Date:     image.CreatedAt,
			Status:   status,
		})
	}
	return result, nil
}

func (s *statsService) Dashboard(ctx context.Context, scope StatsScope) (*DashboardStats, error) {
	now := s.now().UTC()

	counts, err := s.stats.CountReports(ctx, scope)
	if err != nil {
		return nil, err
	}
	weekly, err := s.stats.CountByDay(ctx, scope, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	severity, err := s.stats.CountBySeverity(ctx, scope)
	if err != nil {
		return nil, err
	}
	resolved, err := s.stats.CountReviewedSince(ctx, scope, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	avg, err := s.stats.AverageProcessingTime(ctx, scope)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	stats.TotalInspections.Count = counts.Total
	for _, c := range weekly {
		stats.TotalInspections.NewThisWeek += c.Count
	}
	for _, c := range severity {
		switch domain.ParseSeverityTag(c.Label) {
		case domain.SeverityHigh, domain.SeveritySevere:
			stats.HighSeverityIssues.Count += c.Count
		}
	}
	stats.HighSeverityIssues.Percentage = percentage(stats.HighSeverityIssues.Count, counts.Total)
	stats.ProcessingTime.Average = math.Round(avg*100) / 100
	stats.ResolutionRate.Percentage = percentage(counts.Reviewed, counts.Total)
	stats.ResolutionRate.ResolvedLastMonth = resolved
	return stats, nil
}

func percentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatLocation(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}
