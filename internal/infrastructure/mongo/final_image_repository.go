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

// FinalImageRepository implements application.FinalImageRepository using MongoDB.
type FinalImageRepository struct {
	collection *mongo.Collection
}

// NewFinalImageRepository creates a repository over the given collection (final_images).
func NewFinalImageRepository(db *mongo.Database, collectionName string) *FinalImageRepository {
	return &FinalImageRepository{collection: db.Collection(collectionName)}
}

// Create inserts image and assigns its identifier.
func (r *FinalImageRepository) Create(ctx context.Context, image *domain.FinalImage) error {
	doc := newFinalImageDocument(*image)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	image.ID = doc.ID.Hex()
	return nil
}

// newFinalImageDocument writes a GeoJSON point alongside the raw
// coordinates when both are known.
func newFinalImageDocument(image domain.FinalImage) FinalImageDocument {
	doc := FinalImageDocument{
		ID:                 primitive.NewObjectID(),
		ImagePath:          image.ImagePath,
		AnnotatedImagePath: image.AnnotatedImagePath,
		Address:            image.Address,
		AnalysisResult:     bson.M(image.AnalysisResult),
		Status:             string(image.Status),
		Severity:           image.Severity,
		SeverityLevel:      string(image.SeverityLevel),
		DamageType:         image.DamageType,
		DetectionCount:     image.DetectionCount,
		ProcessingTime:     image.ProcessingTime,
		UserID:             image.UserID,
		CreatedAt:          image.CreatedAt.UTC(),
	}
	if doc.AnalysisResult == nil {
		doc.AnalysisResult = bson.M{}
	}
	if image.HasLocation {
		lat, lng := image.Latitude, image.Longitude
		doc.Latitude = &lat
		doc.Longitude = &lng
		doc.Location = &GeoPointDocument{Type: "Point", Coordinates: []float64{lng, lat}}
	}
	return doc
}

// Find は作成日時の新しい順に FinalImage を返す。
func (r *FinalImageRepository) Find(ctx context.Context, filter application.ReportFilter) ([]domain.FinalImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, scopeFilter(filter.UserID), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	images := make([]domain.FinalImage, 0)
	for cursor.Next(ctx) {
		var doc FinalImageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		images = append(images, mapFinalImageDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// FindByID returns a single saved analysis.
func (r *FinalImageRepository) FindByID(ctx context.Context, id string) (*domain.FinalImage, error) {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return nil, err
	}
	var doc FinalImageDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	image := mapFinalImageDocument(doc)
	return &image, nil
}

// SaveReview updates only the review fields; analysisResult is left as submitted.
func (r *FinalImageRepository) SaveReview(ctx context.Context, id string, review domain.Review) (*domain.FinalImage, error) {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return nil, err
	}
	update := bson.M{
		"$set": bson.M{
			"reviewed":          true,
			"reviewStatus":      string(review.Status),
			"reviewNotes":       review.Notes,
			"reviewSeverity":    string(review.Severity),
			"reviewDamageType":  StringList(review.DamageType),
			"recommendedAction": review.RecommendedAction,
			"reviewerId":        review.ReviewerID,
			"reviewedAt":        review.ReviewedAt.UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc FinalImageDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	image := mapFinalImageDocument(doc)
	return &image, nil
}

func mapFinalImageDocument(doc FinalImageDocument) domain.FinalImage {
	result := make(map[string]any, len(doc.AnalysisResult))
	for k, v := range doc.AnalysisResult {
		result[k] = plainValue(v)
	}

	status, err := domain.NewImageStatus(doc.Status)
	if err != nil {
		status = domain.ImagePending
	}

	image := domain.FinalImage{
		ID:                 doc.ID.Hex(),
		ImagePath:          doc.ImagePath,
		AnnotatedImagePath: doc.AnnotatedImagePath,
		Address:            doc.Address,
		AnalysisResult:     result,
		Status:             status,
		Severity:           doc.Severity,
		SeverityLevel:      domain.ParseSeverityTag(doc.SeverityLevel),
		DamageType:         doc.DamageType,
		DetectionCount:     doc.DetectionCount,
		ProcessingTime:     doc.ProcessingTime,
		UserID:             doc.UserID,
		CreatedAt:          doc.CreatedAt,
		Reviewed:           doc.Reviewed,
		ReviewNotes:        doc.ReviewNotes,
		ReviewDamageType:   domain.NewDamageTypes(doc.ReviewDamageType...),
		RecommendedAction:  doc.RecommendedAction,
		ReviewedAt:         doc.ReviewedAt,
		ReviewerID:         doc.ReviewerID,
	}
	if doc.Latitude != nil && doc.Longitude != nil {
		image.Latitude = *doc.Latitude
		image.Longitude = *doc.Longitude
		image.HasLocation = true
	}
	if doc.ReviewStatus != "" {
		if reviewStatus, err := domain.NewReviewStatus(doc.ReviewStatus); err == nil {
			image.ReviewStatus = reviewStatus
		}
	}
	if doc.ReviewSeverity != "" {
		image.ReviewSeverity = domain.ParseSeverityTag(doc.ReviewSeverity)
	}
	return image
}

func scopeFilter(userID string) bson.M {
	filter := bson.M{}
	if trimmed := strings.TrimSpace(userID); trimmed != "" {
		filter["userId"] = trimmed
	}
	return filter
}
