package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/account/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedbackRepository implements application.FeedbackRepository.
type FeedbackRepository struct {
	collection *mongo.Collection
}

// NewFeedbackRepository creates a feedback repository.
func NewFeedbackRepository(db *mongo.Database, collectionName string) *FeedbackRepository {
	return &FeedbackRepository{collection: db.Collection(collectionName)}
}

// Create inserts feedback and assigns its identifier.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	doc := FeedbackDocument{
		ID:            primitive.NewObjectID(),
		Name:          feedback.Name,
		Email:         feedback.Email.String(),
		Subject:       feedback.Subject,
		Message:       feedback.Message,
		Completed:     feedback.Completed,
		DateSubmitted: feedback.DateSubmitted.UTC(),
		UserID:        feedback.UserID,
		Reply:         feedback.Reply,
		Replied:       feedback.Replied,
		ReplyDate:     feedback.ReplyDate,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	feedback.ID = doc.ID.Hex()
	return nil
}

// Find は新しい順にフィードバックを返す。
func (r *FeedbackRepository) Find(ctx context.Context, filter application.FeedbackFilter) ([]domain.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateSubmitted", Value: -1}})
	cursor, err := r.collection.Find(ctx, scopeFilter(filter.UserID), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]domain.Feedback, 0)
	for cursor.Next(ctx) {
		var doc FeedbackDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, mapFeedbackDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetCompleted toggles the completed flag.
func (r *FeedbackRepository) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Feedback, error) {
	return r.update(ctx, id, bson.M{"completed": completed})
}

// SaveReply stores an admin reply; replying also completes the ticket.
func (r *FeedbackRepository) SaveReply(ctx context.Context, id, reply string, at time.Time) (*domain.Feedback, error) {
	return r.update(ctx, id, bson.M{
		"reply":     reply,
		"replied":   true,
		"replyDate": at.UTC(),
		"completed": true,
	})
}

// Delete removes a ticket.
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *FeedbackRepository) update(ctx context.Context, id string, set bson.M) (*domain.Feedback, error) {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc FeedbackDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	feedback := mapFeedbackDocument(doc)
	return &feedback, nil
}

func mapFeedbackDocument(doc FeedbackDocument) domain.Feedback {
	return domain.Feedback{
		ID:            doc.ID.Hex(),
		Name:          doc.Name,
		Email:         domain.Email(doc.Email),
		Subject:       doc.Subject,
		Message:       doc.Message,
		Completed:     doc.Completed,
		DateSubmitted: doc.DateSubmitted,
		UserID:        doc.UserID,
		Reply:         doc.Reply,
		Replied:       doc.Replied,
		ReplyDate:     doc.ReplyDate,
	}
}
