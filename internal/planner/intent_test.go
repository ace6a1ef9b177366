package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/fitness-coach/internal/domain"
)

func benchGoal() *domain.Goal {
	return &domain.Goal{
		Category:  domain.GoalStrength,
		Target:    &domain.GoalTarget{Exercise: "bench press"},
		Direction: domain.DirectionIncrease,
		Value:     225,
		Unit:      "lbs",
		IsActive:  true,
	}
}

func TestCompileIntentRequiresGoal(t *testing.T) {
	_, _, err := CompileIntent(IntentInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoActiveGoal))
	assert.Equal(t, KindNoActiveGoal, KindOf(err))
}

func TestCompileIntentPrimaryLift(t *testing.T) {
	wi, _, err := CompileIntent(IntentInput{Goal: benchGoal()})
	require.NoError(t, err)

	assert.Equal(t, IntensityStrengthen, wi.Intensity)
	assert.Subset(t, wi.BodyParts, []string{"chest", "triceps", "shoulders"})
	assert.Equal(t, "bench press", wi.TargetExercise)
	assert.Equal(t, 2, wi.CompoundCount)
	assert.Equal(t, RepRange("4-6"), wi.CompoundReps)
	assert.False(t, wi.Cardio)
}

func TestCompileIntentCarriesTargetForEveryGoal(t *testing.T) {
	tests := []struct {
		name      string
		goal      *domain.Goal
		wantParts []string
	}{
		{"endurance pull-ups", &domain.Goal{Category: domain.GoalEndurance, Target: &domain.GoalTarget{Exercise: "pull-up"}, Direction: domain.DirectionIncrease, Value: 20, Unit: "reps"}, []string{"back", "biceps"}},
		{"body composition deadlift", &domain.Goal{Category: domain.GoalBodyComposition, Target: &domain.GoalTarget{Exercise: "deadlift"}, Direction: domain.DirectionDecrease}, []string{"back", "hamstrings", "glutes"}},
		{"mobility with unknown movement", &domain.Goal{Category: domain.GoalMobility, Target: &domain.GoalTarget{Exercise: "Cossack Squat"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wi, _, err := CompileIntent(IntentInput{Goal: tt.goal})
			require.NoError(t, err)
			assert.False(t, wi.Cardio)
			assert.Equal(t, tt.goal.Target.Exercise, wi.TargetExercise)
			if tt.wantParts != nil {
				assert.Equal(t, tt.wantParts, wi.BodyParts)
			}
		})
	}
}

func TestCompileIntentSplitRotation(t *testing.T) {
	tmpl, _ := BuiltinTemplate("push_pull_legs")
	split := &SplitPlan{Sessions: BuildWeeklySplit(tmpl, DistributionForStrategy("aggressive"))}
	goal := &domain.Goal{Category: domain.GoalBodyComposition, Direction: domain.DirectionDecrease}

	tests := []struct {
		name      string
		history   []HistoricalSession
		wantLabel string
		wantInt   Intensity
	}{
		{"no history starts the cycle", nil, "Push", IntensityStrengthen},
		{"after pull comes legs", []HistoricalSession{session(3, "Push"), session(1, "Pull")}, "Legs", IntensityStrengthen},
		{"after push #2 comes pull #2", []HistoricalSession{session(1, "push #2")}, "Pull #2", IntensityMaintain},
		{"cycle wraps", []HistoricalSession{session(1, "Legs #2")}, "Push", IntensityStrengthen},
		{"unknown labels are skipped", []HistoricalSession{session(1, "Yoga"), session(2, "Push")}, "Pull", IntensityStrengthen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wi, _, err := CompileIntent(IntentInput{Goal: goal, Split: split, History: tt.history})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, wi.DayLabel)
			assert.Equal(t, tt.wantInt, wi.Intensity)
		})
	}
}

func TestCompileIntentCategoryRotation(t *testing.T) {
	goal := &domain.Goal{Category: domain.GoalBodyComposition, Direction: domain.DirectionIncrease}
	history := []HistoricalSession{{Date: day0.AddDate(0, 0, -1), BodyParts: []string{"chest"}}}

	wi, _, err := CompileIntent(IntentInput{Goal: goal, History: history})
	require.NoError(t, err)
	assert.Equal(t, IntensityMaintain, wi.Intensity)
	assert.Equal(t, []string{"quads", "hamstrings", "glutes", "core"}, wi.BodyParts)
	assert.Empty(t, wi.TargetExercise)
}

func TestCompileIntentMobilityRecovers(t *testing.T) {
	wi, _, err := CompileIntent(IntentInput{Goal: &domain.Goal{Category: domain.GoalMobility}})
	require.NoError(t, err)
	assert.Equal(t, IntensityRecover, wi.Intensity)
	assert.Equal(t, 1, wi.CompoundCount)
}

func TestCompileIntentCardio(t *testing.T) {
	goal := &domain.Goal{
		Category: domain.GoalEndurance,
		Target:   &domain.GoalTarget{Exercise: "running", Metric: "distance"},
		Value:    10,
		Unit:     "km",
	}
	run := func(actual int) []HistoricalSession {
		s := domain.ExerciseSet{ExerciseName: "Running", SetNumber: 1, PlannedReps: actual, ActualReps: iptr(actual), Completed: true}
		return []HistoricalSession{session(2, "", s)}
	}

	tests := []struct {
		name    string
		history []HistoricalSession
		want    int
	}{
		{"no history starts at a third", nil, 3},
		{"ten percent over last run", run(5), 6},
		{"capped at goal", run(10), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wi, _, err := CompileIntent(IntentInput{Goal: goal, History: tt.history})
			require.NoError(t, err)
			assert.True(t, wi.Cardio)
			assert.Equal(t, []string{domain.BodyPartCardio}, wi.BodyParts)
			assert.Equal(t, 1, wi.CompoundCount)
			assert.Zero(t, wi.AccessoryCount)
			assert.Equal(t, tt.want, wi.CardioDistance)
			assert.Equal(t, "running", wi.TargetExercise)
		})
	}
}

func TestCompileIntentCarriesDeload(t *testing.T) {
	wi, _, err := CompileIntent(IntentInput{Goal: benchGoal(), Fatigue: FatigueReport{ShouldDeload: true}})
	require.NoError(t, err)
	assert.True(t, wi.Deload)
}

func TestCompileNutrition(t *testing.T) {
	male := domain.BodyMetrics{WeightKg: 80, HeightCm: 180, Age: 30, Sex: domain.SexMale, ActivityLevel: "moderate"}
	small := domain.BodyMetrics{WeightKg: 40, HeightCm: 150, Age: 60, Sex: domain.SexFemale, ActivityLevel: "sedentary"}

	tests := []struct {
		name        string
		goal        *domain.Goal
		metrics     domain.BodyMetrics
		wantCal     float64
		wantProtein float64
		wantBias    string
	}{
		{"defaults without metrics", benchGoal(), domain.BodyMetrics{}, 2000, 120, "moderate"},
		{"strength surplus", benchGoal(), male, 3009, 160, "moderate"},
		{"endurance", &domain.Goal{Category: domain.GoalEndurance}, male, 2959, 112, "high"},
		{"cut is floored", &domain.Goal{Category: domain.GoalBodyComposition, Direction: domain.DirectionDecrease}, small, 1200, 80, "low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileNutrition(tt.goal, tt.metrics)
			assert.Equal(t, tt.wantCal, got.CalorieTarget)
			assert.Equal(t, tt.wantProtein, got.ProteinMin)
			assert.Equal(t, tt.wantBias, got.CarbBias)
		})
	}
}
