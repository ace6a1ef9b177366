// internal/domain/goal.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalCategory is the broad kind of fitness goal.
type GoalCategory string

const (
	GoalBodyComposition GoalCategory = "body_composition"
	GoalStrength        GoalCategory = "strength"
	GoalEndurance       GoalCategory = "endurance"
	GoalMobility        GoalCategory = "mobility"
	GoalSkill           GoalCategory = "skill"
)

// GoalDirection says which way the target value should move.
type GoalDirection string

const (
	DirectionIncrease GoalDirection = "increase"
	DirectionDecrease GoalDirection = "decrease"
	DirectionAchieve  GoalDirection = "achieve"
)

// GoalTarget optionally pins a goal to one exercise/movement and metric.
type GoalTarget struct {
	Exercise string `bson:"exercise,omitempty" json:"exercise,omitempty"` // e.g. "bench press", "running"
	Metric   string `bson:"metric,omitempty" json:"metric,omitempty"`     // e.g. "1rm", "distance", "bodyweight"
}

// Goal is a long-lived user goal. Exactly one goal per user is active.
type Goal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Category  GoalCategory       `bson:"category" json:"category"`
	Target    *GoalTarget        `bson:"target,omitempty" json:"target,omitempty"`
	Direction GoalDirection      `bson:"direction" json:"direction"`
	Value     float64            `bson:"value" json:"value"`
	Unit      string             `bson:"unit,omitempty" json:"unit,omitempty"` // lbs, kg, km, mi, min
	Priority  int                `bson:"priority" json:"priority"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TargetExercise returns the goal's pinned exercise, or "" when there is none.
func (g *Goal) TargetExercise() string {
	if g == nil || g.Target == nil {
		return ""
	}
	return g.Target.Exercise
}

// ValidCategory reports whether c is a known goal category.
func ValidCategory(c GoalCategory) bool {
	switch c {
	case GoalBodyComposition, GoalStrength, GoalEndurance, GoalMobility, GoalSkill:
		return true
	}
	return false
}

// ValidDirection reports whether d is a known goal direction.
func ValidDirection(d GoalDirection) bool {
	switch d {
	case DirectionIncrease, DirectionDecrease, DirectionAchieve:
		return true
	}
	return false
}
