package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAthlete Role = "athlete"
	RoleAdmin   Role = "admin" // Maintains the exercise and meal catalog
)

// Sex is used only for the BMR estimate.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// BodyMetrics feeds the nutrition targets. Zero values mean "unknown".
type BodyMetrics struct {
	WeightKg      float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	HeightCm      float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	Age           int     `bson:"age,omitempty" json:"age,omitempty"`
	Sex           Sex     `bson:"sex,omitempty" json:"sex,omitempty"`
	ActivityLevel string  `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"` // sedentary|light|moderate|active|very_active
}

// IntensityDistribution is the heavy/moderate/light share of a training week.
type IntensityDistribution struct {
	Heavy    float64 `bson:"heavy" json:"heavy"`
	Moderate float64 `bson:"moderate" json:"moderate"`
	Light    float64 `bson:"light" json:"light"`
}

// PriorityFrequency asks for a body part to be trained Frequency times a week.
// Used when no split template is configured.
type PriorityFrequency struct {
	BodyPart  string `bson:"bodyPart" json:"bodyPart"`
	Frequency int    `bson:"frequency" json:"frequency"`
}

// TrainingPreferences holds the user's split/strategy selection.
type TrainingPreferences struct {
	SplitTemplate     string                 `bson:"splitTemplate,omitempty" json:"splitTemplate,omitempty"` // e.g. "push_pull_legs"
	DaysPerWeek       int                    `bson:"daysPerWeek,omitempty" json:"daysPerWeek,omitempty"`
	Strategy          string                 `bson:"strategy,omitempty" json:"strategy,omitempty"` // aggressive|balanced|conservative
	Distribution      *IntensityDistribution `bson:"distribution,omitempty" json:"distribution,omitempty"`
	PriorityFrequency []PriorityFrequency    `bson:"priorityFrequency,omitempty" json:"priorityFrequency,omitempty"`
	MealSlots         []MealType             `bson:"mealSlots,omitempty" json:"mealSlots,omitempty"`
}

// User represents an account in the system.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	Metrics     BodyMetrics         `bson:"metrics" json:"metrics"`
	Preferences TrainingPreferences `bson:"preferences" json:"preferences"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
