package mongo

import (
	"context"
	"time"

	"github.com/inspectify/inspectify/api/internal/report/application"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const dayLayout = "2006-01-02"

// StatsRepository implements application.StatsRepository with aggregation
// pipelines over the final_images collection.
type StatsRepository struct {
	collection *mongo.Collection
}

// NewStatsRepository creates a stats repository.
func NewStatsRepository(db *mongo.Database, collectionName string) *StatsRepository {
	return &StatsRepository{collection: db.Collection(collectionName)}
}

type groupedCount struct {
	ID    string
	Count int64
}

// CountReports は総数とレビュー済み件数を数える。
func (r *StatsRepository) CountReports(ctx context.Context, scope application.StatsScope) (application.ReportCounts, error) {
	filter := scopeFilter(scope.UserID)
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return application.ReportCounts{}, err
	}
	filter["reviewed"] = true
	reviewed, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return application.ReportCounts{}, err
	}
	return application.ReportCounts{Total: total, Pending: total - reviewed, Reviewed: reviewed}, nil
}

// CountByDay groups reports created since the given instant by UTC calendar day.
func (r *StatsRepository) CountByDay(ctx context.Context, scope application.StatsScope, since time.Time) ([]application.DayCount, error) {
	match := scopeFilter(scope.UserID)
	match["createdAt"] = bson.M{"$gte": since.UTC()}

	rows, err := r.group(ctx, match, bson.M{
		"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"},
	})
	if err != nil {
		return nil, err
	}

	result := make([]application.DayCount, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(dayLayout, row.ID)
		if err != nil {
			continue
		}
		result = append(result, application.DayCount{Day: day, Count: row.Count})
	}
	return result, nil
}

// CountByDamageType groups by the dominant damage label.
func (r *StatsRepository) CountByDamageType(ctx context.Context, scope application.StatsScope) ([]application.LabelCount, error) {
	rows, err := r.group(ctx, scopeFilter(scope.UserID), "$damageType")
	if err != nil {
		return nil, err
	}
	return labelCounts(rows), nil
}

// CountBySeverity groups by severity level.
func (r *StatsRepository) CountBySeverity(ctx context.Context, scope application.StatsScope) ([]application.LabelCount, error) {
	rows, err := r.group(ctx, scopeFilter(scope.UserID), "$severityLevel")
	if err != nil {
		return nil, err
	}
	return labelCounts(rows), nil
}

// CountReviewedSince counts reports reviewed at or after since.
func (r *StatsRepository) CountReviewedSince(ctx context.Context, scope application.StatsScope, since time.Time) (int64, error) {
	filter := scopeFilter(scope.UserID)
	filter["reviewed"] = true
	filter["reviewedAt"] = bson.M{"$gte": since.UTC()}
	return r.collection.CountDocuments(ctx, filter)
}

// AverageProcessingTime returns the mean processingTime, or zero when empty.
func (r *StatsRepository) AverageProcessingTime(ctx context.Context, scope application.StatsScope) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scopeFilter(scope.UserID)}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$processingTime"},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var row struct {
		Average *float64 `bson:"average"`
	}
	if !cursor.Next(ctx) {
		return 0, cursor.Err()
	}
	if err := cursor.Decode(&row); err != nil {
		return 0, err
	}
	if row.Average == nil {
		return 0, nil
	}
	return *row.Average, nil
}

func (r *StatsRepository) group(ctx context.Context, match bson.M, key any) ([]groupedCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   key,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []groupedCount
	for cursor.Next(ctx) {
		var doc struct {
			Count int64 `bson:"count"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		// _id is null when the grouped field is missing.
		row := groupedCount{Count: doc.Count}
		if value, ok := cursor.Current.Lookup("_id").StringValueOK(); ok {
			row.ID = value
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func labelCounts(rows []groupedCount) []application.LabelCount {
	result := make([]application.LabelCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, application.LabelCount{Label: row.ID, Count: row.Count})
	}
	return result
}
