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

const (
	sessionCollectionName   = "sessions"
	setCollectionName       = "exercise_sets"
	dailyMealCollectionName = "daily_meals"
)

// mongoPlanRepository implements repository.PlanRepository over three collections.
type mongoPlanRepository struct {
	sessions *mongo.Collection
	sets     *mongo.Collection
	meals    *mongo.Collection
}

// NewMongoPlanRepository creates a new plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		sessions: db.Collection(sessionCollectionName),
		sets:     db.Collection(setCollectionName),
		meals:    db.Collection(dailyMealCollectionName),
	}
}

func (r *mongoPlanRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.sessions.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// SaveDailyPlan writes the session and its children in one transaction.
// IDs and timestamps are assigned here; sets and meals get the session's ID.
func (r *mongoPlanRepository) SaveDailyPlan(ctx context.Context, session *domain.WorkoutSession, sets []domain.ExerciseSet, meals []domain.DailyMeal) error {
	if session.UserID == primitive.NilObjectID || session.Date == "" {
		return errors.New("session requires userId and date")
	}
	now := time.Now().UTC()
	session.ID = primitive.NewObjectID()
	session.CreatedAt = now

	setDocs := make([]interface{}, len(sets))
	for i := range sets {
		sets[i].ID = primitive.NewObjectID()
		sets[i].SessionID = session.ID
		sets[i].UserID = session.UserID
		sets[i].UpdatedAt = now
		setDocs[i] = sets[i]
	}
	mealDocs := make([]interface{}, len(meals))
	for i := range meals {
		meals[i].ID = primitive.NewObjectID()
		meals[i].SessionID = session.ID
		meals[i].UserID = session.UserID
		meals[i].UpdatedAt = now
		mealDocs[i] = meals[i]
	}

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.sessions.InsertOne(sc, session); err != nil {
			return err
		}
		if len(setDocs) > 0 {
			if _, err := r.sets.InsertMany(sc, setDocs); err != nil {
				return err
			}
		}
		if len(mealDocs) > 0 {
			if _, err := r.meals.InsertMany(sc, mealDocs); err != nil {
				return err
			}
		}
		return nil
	})
	return mapError(err)
}

func (r *mongoPlanRepository) GetSession(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	if err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

func (r *mongoPlanRepository) GetSessionByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	if err := r.sessions.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&session); err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

// ListSessions relies on DateLayout sorting lexically.
func (r *mongoPlanRepository) ListSessions(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutSession, error) {
	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.sessions.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.WorkoutSession](ctx, cursor)
}

func (r *mongoPlanRepository) GetSet(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	var set domain.ExerciseSet
	if err := r.sets.FindOne(ctx, bson.M{"_id": id}).Decode(&set); err != nil {
		return nil, mapError(err)
	}
	return &set, nil
}

// ListSets returns the sets of the given sessions ordered by exercise and set number.
func (r *mongoPlanRepository) ListSets(ctx context.Context, sessionIDs ...primitive.ObjectID) ([]domain.ExerciseSet, error) {
	if len(sessionIDs) == 0 {
		return []domain.ExerciseSet{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{
		{Key: "sessionId", Value: 1},
		{Key: "order", Value: 1},
		{Key: "setNumber", Value: 1},
	})
	cursor, err := r.sets.Find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ExerciseSet](ctx, cursor)
}

// ReplaceExerciseSets deletes the old exercise's sets and inserts the
// replacement, failing if any old set is completed.
func (r *mongoPlanRepository) ReplaceExerciseSets(ctx context.Context, sessionID, oldExerciseID primitive.ObjectID, replacement []domain.ExerciseSet) error {
	now := time.Now().UTC()
	docs := make([]interface{}, len(replacement))
	for i := range replacement {
		replacement[i].ID = primitive.NewObjectID()
		replacement[i].SessionID = sessionID
		replacement[i].UpdatedAt = now
		docs[i] = replacement[i]
	}

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		old := bson.M{"sessionId": sessionID, "exerciseId": oldExerciseID}
		completed, err := r.sets.CountDocuments(sc, bson.M{"sessionId": sessionID, "exerciseId": oldExerciseID, "completed": true})
		if err != nil {
			return err
		}
		if completed > 0 {
			return repository.ErrUpdateFailed
		}
		result, err := r.sets.DeleteMany(sc, old)
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		if len(docs) > 0 {
			if _, err := r.sets.InsertMany(sc, docs); err != nil {
				return err
			}
		}
		return nil
	})
	return mapError(err)
}

// CompleteSet only matches incomplete sets, so a completed set stays untouched.
func (r *mongoPlanRepository) CompleteSet(ctx context.Context, id primitive.ObjectID, actualWeight float64, actualReps int, rpe *float64) error {
	now := time.Now().UTC()
	fields := bson.M{
		"actualWeight": actualWeight,
		"actualReps":   actualReps,
		"completed":    true,
		"completedAt":  now,
		"updatedAt":    now,
	}
	if rpe != nil {
		fields["rpe"] = *rpe
	}
	result, err := r.sets.UpdateOne(ctx, bson.M{"_id": id, "completed": false}, bson.M{"$set": fields})
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return r.missingOrCompleted(ctx, r.sets, id)
	}
	return nil
}

func (r *mongoPlanRepository) GetDailyMeal(ctx context.Context, id primitive.ObjectID) (*domain.DailyMeal, error) {
	var meal domain.DailyMeal
	if err := r.meals.FindOne(ctx, bson.M{"_id": id}).Decode(&meal); err != nil {
		return nil, mapError(err)
	}
	return &meal, nil
}

func (r *mongoPlanRepository) ListDailyMeals(ctx context.Context, sessionIDs ...primitive.ObjectID) ([]domain.DailyMeal, error) {
	if len(sessionIDs) == 0 {
		return []domain.DailyMeal{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}})
	cursor, err := r.meals.Find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.DailyMeal](ctx, cursor)
}

func (r *mongoPlanRepository) ReplaceDailyMeal(ctx context.Context, meal *domain.DailyMeal) error {
	if meal.ID == primitive.NilObjectID {
		return errors.New("daily meal ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"mealId":    meal.MealID,
			"mealName":  meal.MealName,
			"servings":  meal.Servings,
			"calories":  meal.Calories,
			"protein":   meal.Protein,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.meals.UpdateOne(ctx, bson.M{"_id": meal.ID, "completed": false}, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return r.missingOrCompleted(ctx, r.meals, meal.ID)
	}
	return nil
}

func (r *mongoPlanRepository) CompleteDailyMeal(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"completed": true, "completedAt": now, "updatedAt": now}}
	result, err := r.meals.UpdateOne(ctx, bson.M{"_id": id, "completed": false}, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return r.missingOrCompleted(ctx, r.meals, id)
	}
	return nil
}

// missingOrCompleted tells a missing document apart from a completed one
// after a conditional update matched nothing.
func (r *mongoPlanRepository) missingOrCompleted(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrUpdateFailed
}

// EnsurePlanIndexes creates the indexes of the session, set and daily meal collections.
func EnsurePlanIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(sessionCollectionName), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetUnique(true).SetName("one_session_per_user_date"),
		},
	})
	createIndexes(ctx, db.Collection(setCollectionName), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseName", Value: 1}},
			Options: options.Index(),
		},
	})
	createIndexes(ctx, db.Collection(dailyMealCollectionName), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	})
}
