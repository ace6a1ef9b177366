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

const goalCollectionName = "goals"

// mongoGoalRepository implements repository.GoalRepository
type mongoGoalRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalRepository creates a new Goal repository.
func NewMongoGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &mongoGoalRepository{
		collection: db.Collection(goalCollectionName),
	}
}

// Create deactivates the user's active goal and inserts the new one as active,
// in one transaction. The partial unique index on (userId) where isActive
// rejects a concurrent second activation.
func (r *mongoGoalRepository) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	if goal.UserID == primitive.NilObjectID || goal.Category == "" {
		return primitive.NilObjectID, errors.New("goal requires userId and category")
	}
	goal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.IsActive = true

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		_, err := r.collection.UpdateMany(sc,
			bson.M{"userId": goal.UserID, "isActive": true},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
		)
		if err != nil {
			return nil, err
		}
		return r.collection.InsertOne(sc, goal)
	})
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}
	return goal.ID, nil
}

// GetByID retrieves a single goal by its ID.
func (r *mongoGoalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	var goal domain.Goal
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal); err != nil {
		return nil, mapError(err)
	}
	return &goal, nil
}

// GetActive returns the user's active goal or repository.ErrNotFound.
func (r *mongoGoalRepository) GetActive(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	var goal domain.Goal
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "isActive": true}).Decode(&goal)
	if err != nil {
		return nil, mapError(err)
	}
	return &goal, nil
}

// ListByUser returns all goals of a user, newest first.
func (r *mongoGoalRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Goal](ctx, cursor)
}

// Update applies an explicit user edit. Activation is not changed here.
func (r *mongoGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	if goal.ID == primitive.NilObjectID {
		return errors.New("goal ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"category":  goal.Category,
			"target":    goal.Target,
			"direction": goal.Direction,
			"value":     goal.Value,
			"unit":      goal.Unit,
			"priority":  goal.Priority,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": goal.ID, "userId": goal.UserID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListActiveUserIDs returns every user that currently has an active goal.
func (r *mongoGoalRepository) ListActiveUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "userId", bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// EnsureGoalIndexes creates necessary indexes. Call during startup.
func EnsureGoalIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// at most one active goal per user
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetName("one_active_goal_per_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	})
}
