package mongo

import (
	"context"
	"errors"
	"strings"

	"github.com/inspectify/inspectify/api/internal/report/application"
	"github.com/inspectify/inspectify/api/internal/report/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoadEntryRepository implements application.RoadEntryRepository using MongoDB.
type RoadEntryRepository struct {
	collection *mongo.Collection
}

// NewRoadEntryRepository creates a repository over the given collection (roadloc).
func NewRoadEntryRepository(db *mongo.Database, collectionName string) *RoadEntryRepository {
	return &RoadEntryRepository{collection: db.Collection(collectionName)}
}

// Create inserts entry and assigns its identifier.
func (r *RoadEntryRepository) Create(ctx context.Context, entry *domain.RoadEntry) error {
	doc := RoadEntryDocument{
		ID:                primitive.NewObjectID(),
		ImagePath:         entry.ImagePath,
		Latitude:          entry.Latitude,
		Longitude:         entry.Longitude,
		Address:           entry.Address,
		Timestamp:         entry.Timestamp.UTC(),
		Status:            string(entry.Status),
		Reviewed:          entry.Reviewed,
		ReviewNotes:       entry.ReviewNotes,
		Severity:          string(entry.Severity),
		DamageType:        StringList(entry.DamageType),
		RecommendedAction: entry.RecommendedAction,
		ReviewedAt:        entry.ReviewedAt,
		UserID:            entry.UserID,
		ReviewerID:        entry.ReviewerID,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	entry.ID = doc.ID.Hex()
	return nil
}

// Find は新しい順に RoadEntry を返す。
func (r *RoadEntryRepository) Find(ctx context.Context, filter application.ReportFilter) ([]domain.RoadEntry, error) {
	query := bson.M{}
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query["userId"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]domain.RoadEntry, 0)
	for cursor.Next(ctx) {
		var doc RoadEntryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, mapRoadEntryDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByID returns a single entry.
func (r *RoadEntryRepository) FindByID(ctx context.Context, id string) (*domain.RoadEntry, error) {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return nil, err
	}
	var doc RoadEntryDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	entry := mapRoadEntryDocument(doc)
	return &entry, nil
}

// SaveReview stores the reviewer decision and returns the updated entry.
func (r *RoadEntryRepository) SaveReview(ctx context.Context, id string, review domain.Review) (*domain.RoadEntry, error) {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return nil, err
	}
	reviewedAt := review.ReviewedAt.UTC()
	update := bson.M{
		"$set": bson.M{
			"reviewed":          true,
			"status":            string(review.Status),
			"reviewNotes":       review.Notes,
			"severity":          string(review.Severity),
			"damageType":        StringList(review.DamageType),
			"recommendedAction": review.RecommendedAction,
			"reviewerId":        review.ReviewerID,
			"reviewedAt":        reviewedAt,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc RoadEntryDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	entry := mapRoadEntryDocument(doc)
	return &entry, nil
}

func mapRoadEntryDocument(doc RoadEntryDocument) domain.RoadEntry {
	status, err := domain.NewReviewStatus(doc.Status)
	if err != nil {
		status = domain.ReviewPending
	}
	return domain.RoadEntry{
		ID:                doc.ID.Hex(),
		ImagePath:         doc.ImagePath,
		Latitude:          doc.Latitude,
		Longitude:         doc.Longitude,
		Address:           doc.Address,
		Timestamp:         doc.Timestamp,
		Status:            status,
		Reviewed:          doc.Reviewed,
		ReviewNotes:       doc.ReviewNotes,
		Severity:          domain.ParseSeverityTag(doc.Severity),
		DamageType:        domain.NewDamageTypes(doc.DamageType...),
		RecommendedAction: doc.RecommendedAction,
		ReviewedAt:        doc.ReviewedAt,
		UserID:            doc.UserID,
		ReviewerID:        doc.ReviewerID,
	}
}

// parseObjectID maps malformed hex identifiers to notFound so callers
// answer 404 rather than 500.
func parseObjectID(id string, notFound error) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return objectID, nil
}
