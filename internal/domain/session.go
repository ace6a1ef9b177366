package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date key format used for sessions.
const DateLayout = "2006-01-02"

// WorkoutSession is the plan for one user on one calendar date.
// (userId, date) is unique; sessions are never regenerated for an existing date.
type WorkoutSession struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Date          string             `bson:"date" json:"date"` // DateLayout
	DayLabel      string             `bson:"dayLabel,omitempty" json:"dayLabel,omitempty"`
	BodyParts     []string           `bson:"bodyParts" json:"bodyParts"`
	Intensity     string             `bson:"intensity" json:"intensity"`
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Explanation   string             `bson:"explanation,omitempty" json:"explanation,omitempty"`
	NutritionNote string             `bson:"nutritionNote,omitempty" json:"nutritionNote,omitempty"`
	CalorieTarget float64            `bson:"calorieTarget" json:"calorieTarget"`
	ProteinMin    float64            `bson:"proteinMin" json:"proteinMin"`
	RunID         string             `bson:"runId,omitempty" json:"runId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ExerciseSet is one planned set of one exercise inside a session.
// Completed sets are immutable.
type ExerciseSet struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID     primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"` // Denormalized for history queries
	ExerciseID    primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	ExerciseName  string             `bson:"exerciseName" json:"exerciseName"` // Denormalized
	Compound      bool               `bson:"compound" json:"compound"`
	Order         int                `bson:"order" json:"order"` // Position of the exercise in the session
	SetNumber     int                `bson:"setNumber" json:"setNumber"`
	PlannedWeight float64            `bson:"plannedWeight" json:"plannedWeight"`
	PlannedReps   int                `bson:"plannedReps" json:"plannedReps"`
	ActualWeight  *float64           `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	ActualReps    *int               `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	RPE           *float64           `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Completed     bool               `bson:"completed" json:"completed"`
	Instructions  string             `bson:"instructions,omitempty" json:"instructions,omitempty"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DailyMeal places one catalog meal into a slot of a session's day.
type DailyMeal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	MealID      primitive.ObjectID `bson:"mealId" json:"mealId"`
	MealName    string             `bson:"mealName" json:"mealName"`
	Slot        MealType           `bson:"slot" json:"slot"`
	Order       int                `bson:"order" json:"order"`
	Servings    float64            `bson:"servings" json:"servings"`
	Calories    float64            `bson:"calories" json:"calories"` // Per this entry, servings applied
	Protein     float64            `bson:"protein" json:"protein"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
