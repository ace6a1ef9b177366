package repository

import (
	"context"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, metrics domain.BodyMetrics, prefs domain.TrainingPreferences) error
}

// GoalRepository stores user goals. At most one goal per user is active.
type GoalRepository interface {
	// Create deactivates the user's current goal and inserts goal as the active one.
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	GetActive(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error)
	Update(ctx context.Context, goal *domain.Goal) error
	ListActiveUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// ExerciseFilter narrows catalog reads. Empty fields match everything.
type ExerciseFilter struct {
	BodyParts []string
	Compound  *bool
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
}

// MealFilter narrows meal reads. Untyped meals always match.
type MealFilter struct {
	Types []domain.MealType
}

// MealRepository defines the interface for interacting with the meal catalog.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error)
	List(ctx context.Context, filter MealFilter) ([]domain.Meal, error)
}

// PlanRepository stores sessions with their exercise sets and daily meals.
type PlanRepository interface {
	// SaveDailyPlan writes the session, sets and meals atomically.
	// It returns ErrDuplicate when the user already has a session for the date.
	SaveDailyPlan(ctx context.Context, session *domain.WorkoutSession, sets []domain.ExerciseSet, meals []domain.DailyMeal) error
	GetSession(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetSessionByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutSession, error)
	// ListSessions returns sessions with from <= date <= to, newest first.
	ListSessions(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutSession, error)

	GetSet(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error)
	ListSets(ctx context.Context, sessionIDs ...primitive.ObjectID) ([]domain.ExerciseSet, error)
	// ReplaceExerciseSets swaps the incomplete sets of oldExerciseID for replacement.
	// It returns ErrUpdateFailed if any of those sets was completed meanwhile.
	ReplaceExerciseSets(ctx context.Context, sessionID, oldExerciseID primitive.ObjectID, replacement []domain.ExerciseSet) error
	// CompleteSet records actual performance. ErrUpdateFailed if already completed.
	CompleteSet(ctx context.Context, id primitive.ObjectID, actualWeight float64, actualReps int, rpe *float64) error

	GetDailyMeal(ctx context.Context, id primitive.ObjectID) (*domain.DailyMeal, error)
	ListDailyMeals(ctx context.Context, sessionIDs ...primitive.ObjectID) ([]domain.DailyMeal, error)
	// ReplaceDailyMeal overwrites an incomplete daily meal. ErrUpdateFailed if completed.
	ReplaceDailyMeal(ctx context.Context, meal *domain.DailyMeal) error
	CompleteDailyMeal(ctx context.Context, id primitive.ObjectID) error
}

// BlockedItemRepository stores permanent per-user exclusions.
type BlockedItemRepository interface {
	// Block is idempotent.
	Block(ctx context.Context, item *domain.BlockedItem) error
	Unblock(ctx context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error)
}

// PlanArchiveRepository stores metadata about archived plan objects.
type PlanArchiveRepository interface {
	Create(ctx context.Context, archive *domain.PlanArchive) (primitive.ObjectID, error)
	GetLatest(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlanArchive, error)
}
