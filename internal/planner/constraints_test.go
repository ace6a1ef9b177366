package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/fitness-coach/internal/domain"
)

func TestReplacementIntent(t *testing.T) {
	tests := []struct {
		name       string
		intensity  Intensity
		compound   bool
		wantInt    Intensity
		wantCounts [2]int
	}{
		{"compound strengthen", IntensityStrengthen, true, IntensityStrengthen, [2]int{1, 0}},
		{"accessory recover", IntensityRecover, false, IntensityRecover, [2]int{0, 1}},
		{"unknown intensity falls back", "", true, IntensityMaintain, [2]int{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wi := ReplacementIntent(tt.intensity, "chest", tt.compound, false)
			assert.Equal(t, tt.wantInt, wi.Intensity)
			assert.Equal(t, []string{"chest"}, wi.BodyParts)
			assert.Equal(t, tt.wantCounts, [2]int{wi.CompoundCount, wi.AccessoryCount})
		})
	}
}

func TestReplacementConstraintsCarryProgression(t *testing.T) {
	history := []HistoricalSession{
		session(2, "Push", doneSet("Dumbbell Press", 1, 30, 8, 8, nil)),
	}
	wi := ReplacementIntent(IntensityMaintain, "chest", true, false)
	c := BuildWorkoutConstraints(wi, []domain.Exercise{exercise("Dumbbell Press", "chest", true)}, history)

	require.Len(t, c.Exercises, 1)
	assert.Equal(t, 3, c.Exercises[0].Sets)
	assert.True(t, c.Exercises[0].FromHistory)
	assert.Empty(t, c.PrimaryLift)
}

func TestCardioReplacementIntent(t *testing.T) {
	wi := CardioReplacementIntent(5, false)
	assert.True(t, wi.Cardio)
	assert.Equal(t, 5, wi.CardioDistance)

	c := BuildWorkoutConstraints(wi, []domain.Exercise{exercise("Cycling", domain.BodyPartCardio, false)}, nil)
	require.Len(t, c.Exercises, 1)
	assert.Equal(t, 1, c.Exercises[0].Sets)
	assert.Equal(t, 5, c.Exercises[0].Reps)
	assert.Zero(t, c.Exercises[0].Weight)

	assert.Equal(t, 1, CardioReplacementIntent(0, false).CardioDistance)
}
