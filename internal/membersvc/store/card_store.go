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

const cardCollection = "cards"

type CardStore struct {
	db *mongo.Database
}

func NewCardStore(db *mongo.Database) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) GetByUUID(ctx context.Context, uuid string) (*models.Card, error) {
	var card models.Card
	err := s.db.Collection(cardCollection).FindOne(ctx, bson.M{"uuid": uuid}).Decode(&card)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card by uuid: %w", err)
	}

	return &card, nil
}

func (s *CardStore) Create(ctx context.Context, card models.Card) (*models.Card, error) {
	now := time.Now().UTC()
	card.ID = primitive.NewObjectID()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := s.db.Collection(cardCollection).InsertOne(ctx, card)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}

	return &card, nil
}

// Update replaces the profile fields of the card matching uuid. The uuid
// itself is never part of the update document.
func (s *CardStore) Update(ctx context.Context, uuid string, card models.Card) (*models.Card, error) {
	update := bson.M{"$set": bson.M{
		"firstName":  card.FirstName,
		"lastName":   card.LastName,
		"phone":      card.Phone,
		"address":    card.Address,
		"preference": card.Preference,
		"content":    card.Content,
		"updatedAt":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Card
	err := s.db.Collection(cardCollection).
		FindOneAndUpdate(ctx, bson.M{"uuid": uuid}, update, opts).
		Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return &updated, nil
}

func (s *CardStore) List(ctx context.Context) ([]models.Card, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := s.db.Collection(cardCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer cursor.Close(ctx)

	cards := []models.Card{}
	if err := cursor.All(ctx, &cards); err != nil {
		return nil, fmt.Errorf("failed to decode cards: %w", err)
	}

	return cards, nil
}
