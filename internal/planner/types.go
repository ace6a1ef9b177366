package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
)

// Intensity is the coarse load tier of a single generated workout.
type Intensity string

const (
	IntensityStrengthen Intensity = "strengthen"
	IntensityMaintain   Intensity = "maintain"
	IntensityRecover    Intensity = "recover"
)

// LoadTier is the intensity label used inside a weekly split.
type LoadTier string

const (
	TierHeavy    LoadTier = "heavy"
	TierModerate LoadTier = "moderate"
	TierLight    LoadTier = "light"
)

// Intensity maps a split tier onto a workout intensity.
func (t LoadTier) Intensity() Intensity {
	switch t {
	case TierHeavy:
		return IntensityStrengthen
	case TierLight:
		return IntensityRecover
	default:
		return IntensityMaintain
	}
}

// RepRange is a rep prescription such as "6-8" or "10".
type RepRange string

// NewRepRange formats lo-hi, collapsing equal bounds.
func NewRepRange(lo, hi int) RepRange {
	if lo == hi {
		return RepRange(strconv.Itoa(lo))
	}
	return RepRange(fmt.Sprintf("%d-%d", lo, hi))
}

// Bounds parses the range. ok is false for malformed values.
func (r RepRange) Bounds() (lo, hi int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(string(r)), "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	hi = lo
	if len(parts) == 2 {
		hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || hi < lo {
			return 0, 0, false
		}
	}
	return lo, hi, true
}

// Contains reports whether reps falls inside the range. Malformed ranges contain everything.
func (r RepRange) Contains(reps int) bool {
	lo, hi, ok := r.Bounds()
	if !ok {
		return true
	}
	return reps >= lo && reps <= hi
}

// Top returns the upper bound, used as the progression rep target.
func (r RepRange) Top() int {
	_, hi, ok := r.Bounds()
	if !ok {
		return 0
	}
	return hi
}

// WorkoutIntent is the derived, never-persisted description of today's training.
type WorkoutIntent struct {
	BodyParts      []string  `json:"bodyParts"`
	Intensity      Intensity `json:"intensity"`
	DayLabel       string    `json:"dayLabel,omitempty"`
	CompoundCount  int       `json:"compoundCount"`
	AccessoryCount int       `json:"accessoryCount"`
	CompoundSets   int       `json:"compoundSets"`
	AccessorySets  int       `json:"accessorySets"`
	CompoundReps   RepRange  `json:"compoundReps"`
	AccessoryReps  RepRange  `json:"accessoryReps"`
	TargetExercise string    `json:"targetExercise,omitempty"`
	Cardio         bool      `json:"cardio,omitempty"`
	CardioDistance int       `json:"cardioDistance,omitempty"`
	Deload         bool      `json:"deload,omitempty"`
}

// NutritionIntent is the day's calorie and protein target.
type NutritionIntent struct {
	CalorieTarget float64 `json:"calorieTarget"`
	ProteinMin    float64 `json:"proteinMin"`
	CarbBias      string  `json:"carbBias"` // low|moderate|high
}

// HistoricalSession is one past session with its sets, as read from storage.
type HistoricalSession struct {
	Date      time.Time
	DayLabel  string
	BodyParts []string
	Intensity string
	Sets      []domain.ExerciseSet
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
