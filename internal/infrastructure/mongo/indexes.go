package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections names the collections used by the API.
type Collections struct {
	RoadEntries string
	FinalImages string
	Feedbacks   string
	Users       string
}

// EnsureIndexes creates the indexes the repositories rely on. Creating an
// existing index is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, names Collections) error {
	specs := map[string][]mongo.IndexModel{
		names.Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		names.RoadEntries: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		names.FinalImages: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "reviewed", Value: 1}, {Key: "reviewedAt", Value: -1}}},
		},
		names.Feedbacks: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dateSubmitted", Value: -1}}},
		},
	}
	for collection, models := range specs {
		if collection == "" {
			continue
		}
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
