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

const planArchiveCollectionName = "plan_archives"

// mongoPlanArchiveRepository implements repository.PlanArchiveRepository
type mongoPlanArchiveRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanArchiveRepository creates a new archive metadata repository backed by MongoDB.
func NewMongoPlanArchiveRepository(db *mongo.Database) repository.PlanArchiveRepository {
	return &mongoPlanArchiveRepository{
		collection: db.Collection(planArchiveCollectionName),
	}
}

// Create inserts archive metadata. The object itself must already be in S3.
func (r *mongoPlanArchiveRepository) Create(ctx context.Context, archive *domain.PlanArchive) (primitive.ObjectID, error) {
	if archive.UserID == primitive.NilObjectID || archive.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("plan archive requires userId and s3ObjectKey")
	}
	archive.ID = primitive.NewObjectID()
	archive.ArchivedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, archive); err != nil {
		return primitive.NilObjectID, mapError(err)
	}
	return archive.ID, nil
}

// GetLatest returns the most recent archive of the user's plan for date.
func (r *mongoPlanArchiveRepository) GetLatest(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlanArchive, error) {
	var archive domain.PlanArchive
	findOptions := options.FindOne().SetSort(bson.D{{Key: "archivedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "date": date}, findOptions).Decode(&archive)
	if err != nil {
		return nil, mapError(err)
	}
	return &archive, nil
}

// EnsurePlanArchiveIndexes creates necessary indexes for the archive collection.
func EnsurePlanArchiveIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}, {Key: "archivedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
