// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is reference data: one movement in the catalog.
// Names are unique case-insensitively.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameKey     string             `bson:"nameKey" json:"-"`         // lower-cased name, unique index
	BodyPart    string             `bson:"bodyPart" json:"bodyPart"` // e.g. "chest", "quads", "cardio"
	Compound    bool               `bson:"compound" json:"compound"`
	Equipment   string             `bson:"equipment,omitempty" json:"equipment,omitempty"` // e.g. "barbell"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsCardio reports whether the exercise is tracked by distance rather than weight.
func (e *Exercise) IsCardio() bool {
	return e.BodyPart == BodyPartCardio
}

// BodyPartCardio marks distance-based exercises.
const BodyPartCardio = "cardio"
