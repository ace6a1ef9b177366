package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemType distinguishes what a BlockedItem points at.
type ItemType string

const (
	ItemExercise ItemType = "exercise"
	ItemMeal     ItemType = "meal"
)

// BlockedItem permanently excludes one exercise or meal for a user.
type BlockedItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ItemType  ItemType           `bson:"itemType" json:"itemType"`
	ItemID    primitive.ObjectID `bson:"itemId" json:"itemId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
