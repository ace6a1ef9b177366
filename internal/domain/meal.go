package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType is a slot in the day's eating plan.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// DefaultMealSlots is used when the user has not configured any.
var DefaultMealSlots = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Meal is reference data. Values are per serving.
// A meal without Types is a legacy entry and may fill any slot.
type Meal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameKey   string             `bson:"nameKey" json:"-"`
	Calories  float64            `bson:"calories" json:"calories"`
	Protein   float64            `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs     float64            `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat       float64            `bson:"fat,omitempty" json:"fat,omitempty"`
	Types     []MealType         `bson:"types,omitempty" json:"types,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasType reports whether the meal is tagged for slot t.
func (m *Meal) HasType(t MealType) bool {
	for _, mt := range m.Types {
		if mt == t {
			return true
		}
	}
	return false
}
