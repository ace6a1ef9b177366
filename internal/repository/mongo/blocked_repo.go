package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const blockedItemCollectionName = "blocked_items"

type mongoBlockedItemRepository struct {
	collection *mongo.Collection
}

// NewMongoBlockedItemRepository creates a new blocked item repository.
func NewMongoBlockedItemRepository(db *mongo.Database) repository.BlockedItemRepository {
	return &mongoBlockedItemRepository{
		collection: db.Collection(blockedItemCollectionName),
	}
}

// Block upserts on (userId, itemType, itemId); blocking twice is a no-op.
func (r *mongoBlockedItemRepository) Block(ctx context.Context, item *domain.BlockedItem) error {
	if item.UserID == primitive.NilObjectID || item.ItemID == primitive.NilObjectID {
		return errors.New("blocked item requires userId and itemId")
	}
	if item.ItemType != domain.ItemExercise && item.ItemType != domain.ItemMeal {
		return errors.New("invalid blocked item type")
	}
	filter := bson.M{"userId": item.UserID, "itemType": item.ItemType, "itemId": item.ItemID}
	update := bson.M{"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (r *mongoBlockedItemRepository) Unblock(ctx context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "itemType": itemType, "itemId": itemID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoBlockedItemRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.BlockedItem](ctx, cursor)
}

// EnsureBlockedItemIndexes creates necessary indexes for the blocked items collection.
func EnsureBlockedItemIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "itemType", Value: 1}, {Key: "itemId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
