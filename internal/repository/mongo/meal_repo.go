package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mealCollectionName = "meals"

type mongoMealRepository struct {
	collection *mongo.Collection
}

// NewMongoMealRepository creates a new meal catalog repository.
func NewMongoMealRepository(db *mongo.Database) repository.MealRepository {
	return &mongoMealRepository{
		collection: db.Collection(mealCollectionName),
	}
}

func (r *mongoMealRepository) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if meal.Name == "" || meal.Calories <= 0 {
		return primitive.NilObjectID, errors.New("meal name and positive calories are required")
	}
	meal.ID = primitive.NewObjectID()
	meal.NameKey = strings.ToLower(strings.TrimSpace(meal.Name))
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, meal); err != nil {
		return primitive.NilObjectID, mapError(err)
	}
	return meal.ID, nil
}

func (r *mongoMealRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	var meal domain.Meal
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meal); err != nil {
		return nil, mapError(err)
	}
	return &meal, nil
}

// List returns meals tagged with any of filter.Types plus untyped legacy meals.
func (r *mongoMealRepository) List(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error) {
	query := bson.M{}
	if len(filter.Types) > 0 {
		query["$or"] = bson.A{
			bson.M{"types": bson.M{"$in": filter.Types}},
			bson.M{"types": bson.M{"$exists": false}},
			bson.M{"types": bson.M{"$size": 0}},
		}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "nameKey", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Meal](ctx, cursor)
}

// EnsureMealIndexes creates necessary indexes for the meals collection.
func EnsureMealIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nameKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "types", Value: 1}},
			Options: options.Index(),
		},
	})
}
