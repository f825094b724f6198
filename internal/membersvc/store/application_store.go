package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fielia/club-services/internal/membersvc/models"
)

const applicationCollection = "applications"

type ApplicationStore struct {
	db *mongo.Database
}

func NewApplicationStore(db *mongo.Database) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) Create(ctx context.Context, app models.MembershipApplication) (*models.MembershipApplication, error) {
	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := s.db.Collection(applicationCollection).InsertOne(ctx, app)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}

	return &app, nil
}

func (s *ApplicationStore) List(ctx context.Context) ([]models.MembershipApplication, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := s.db.Collection(applicationCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := []models.MembershipApplication{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}

	return apps, nil
}

func (s *ApplicationStore) UpdateStatus(ctx context.Context, id string, status string) (*models.MembershipApplication, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.MembershipApplication
	err = s.db.Collection(applicationCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).
		Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return &app, nil
}
