package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Card binds a physical NFC card identifier to a guest profile.
// The uuid comes from the card itself, it is unique, indexed and immutable.
type Card struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UUID       string             `json:"uuid" bson:"uuid"`
	FirstName  string             `json:"firstName" bson:"firstName"`
	LastName   string             `json:"lastName" bson:"lastName"`
	Phone      string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address    string             `json:"address,omitempty" bson:"address,omitempty"`
	Preference string             `json:"preference,omitempty" bson:"preference,omitempty"`
	Content    string             `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
