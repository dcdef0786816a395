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

// UserRepository implements application.UserRepository over the login collection.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *mongo.Database, collectionName string) *UserRepository {
	return &UserRepository{collection: db.Collection(collectionName)}
}

// Create inserts user. A duplicate email surfaces as application.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := UserDocument{
		ID:        primitive.NewObjectID(),
		Email:     user.Email.String(),
		Name:      user.Name,
		Password:  user.PasswordHash,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return application.ErrEmailTaken
		}
		return err
	}
	user.ID = doc.ID.Hex()
	return nil
}

// FindByEmail looks a user up by normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email.String()})
}

// FindByID looks a user up by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	objectID, err := parseObjectID(id, application.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

// EnsureAdmin は管理者アカウントを upsert する。新規作成時は true を返す。
func (r *UserRepository) EnsureAdmin(ctx context.Context, email domain.Email, name, passwordHash string, now time.Time) (bool, error) {
	update := bson.M{
		"$set": bson.M{
			"name":     name,
			"password": passwordHash,
			"isAdmin":  true,
		},
		"$setOnInsert": bson.M{
			"email":     email.String(),
			"createdAt": now.UTC(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"email": email.String()}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc UserDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	user := domain.User{
		ID:           doc.ID.Hex(),
		Email:        domain.Email(doc.Email),
		Name:         doc.Name,
		PasswordHash: doc.Password,
		IsAdmin:      doc.IsAdmin,
		CreatedAt:    doc.CreatedAt,
	}
	return &user, nil
}
