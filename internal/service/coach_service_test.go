package service

import (
	"context"
	"strings"
	"testing"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const planDate = "2026-03-10"

func TestGenerateDailyPlan_CommitsValidatedPlan(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()

	plan, err := svc.GenerateDailyPlan(context.Background(), f.userID, planDate)
	require.NoError(t, err)

	assert.Equal(t, planDate, plan.Session.Date)
	assert.Equal(t, plan.RunID, plan.Session.RunID)
	assert.Equal(t, planner.IntensityStrengthen, plan.WorkoutIntent.Intensity)
	assert.Equal(t, 1, plan.WorkoutAttempts)
	assert.Equal(t, 1, plan.MealAttempts)

	require.NotEmpty(t, plan.Sets)
	first := plan.Sets[0]
	assert.Equal(t, "Bench Press", first.ExerciseName)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, planner.DefaultStartWeight, first.PlannedWeight)
	assert.Equal(t, 6, first.PlannedReps)

	exercises := map[primitive.ObjectID]int{}
	for _, s := range plan.Sets {
		exercises[s.ExerciseID]++
		assert.Equal(t, plan.Session.ID, s.SessionID)
		assert.False(t, s.Completed)
	}
	assert.Len(t, exercises, 4)
	assert.Equal(t, 4, exercises[first.ExerciseID])

	require.Len(t, plan.Meals, len(domain.DefaultMealSlots))
	var total float64
	for i, m := range plan.Meals {
		assert.Equal(t, domain.DefaultMealSlots[i], m.Slot)
		total += m.Calories
	}
	assert.InDelta(t, 2000, total, 50)

	assert.Len(t, f.plans.sessions, 1)
	require.Len(t, f.archives.archives, 1)
	key := f.archives.archives[0].S3ObjectKey
	assert.True(t, strings.HasPrefix(key, "plans/"+f.userID.Hex()+"/"+planDate+"/"))
	assert.Contains(t, f.store.objects, key)
}

func TestGenerateDailyPlan_RejectsSecondRunForSameDate(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()

	_, err := svc.GenerateDailyPlan(context.Background(), f.userID, planDate)
	require.NoError(t, err)

	_, err = svc.GenerateDailyPlan(context.Background(), f.userID, planDate)
	assert.ErrorIs(t, err, planner.ErrDuplicateSession)
	assert.Len(t, f.plans.sessions, 1)
}

func TestGenerateDailyPlan_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *coachFixture)
		date    string
		wantErr error
	}{
		{
			name:    "no active goal",
			setup:   func(t *testing.T, f *coachFixture) {},
			date:    planDate,
			wantErr: planner.ErrNoActiveGoal,
		},
		{
			name:    "malformed date",
			setup:   func(t *testing.T, f *coachFixture) { f.benchGoal(t) },
			date:    "10/03/2026",
			wantErr: ErrInvalidDate,
		},
		{
			name: "empty meal catalog",
			setup: func(t *testing.T, f *coachFixture) {
				f.benchGoal(t)
				f.meals.meals = nil
			},
			date:    planDate,
			wantErr: planner.ErrNoCandidatesAvailable,
		},
		{
			name: "model never complies",
			setup: func(t *testing.T, f *coachFixture) {
				f.benchGoal(t)
				f.model = &scriptedModel{responses: []string{"no", "still no", "{\"exercises\": []}"}}
			},
			date:    planDate,
			wantErr: planner.ErrGenerationExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCoachFixture(t)
			tt.setup(t, f)

			plan, err := f.service().GenerateDailyPlan(context.Background(), f.userID, tt.date)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.plans.sessions)
			assert.Empty(t, f.plans.sets)
			assert.Empty(t, f.archives.archives)
		})
	}
}

func TestGenerateDailyPlan_RetriesUnparseableOutput(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	f.model = &scriptedModel{responses: []string{"I would rather talk about cardio."}, next: &obedientModel{}}

	plan, err := f.service().GenerateDailyPlan(context.Background(), f.userID, planDate)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.WorkoutAttempts)
	assert.Equal(t, 1, plan.MealAttempts)
}

func TestGenerateDailyPlan_ProgressesFromHistory(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	bench := f.exerciseByName("Bench Press")

	weight, reps := 60.0, 6
	prev := &domain.WorkoutSession{UserID: f.userID, Date: "2026-03-08", BodyParts: []string{"chest"}}
	require.NoError(t, f.plans.SaveDailyPlan(context.Background(), prev, []domain.ExerciseSet{{
		ExerciseID: bench.ID, ExerciseName: bench.Name, Compound: true, SetNumber: 1,
		PlannedWeight: 60, PlannedReps: 6, ActualWeight: &weight, ActualReps: &reps, Completed: true,
	}}, nil))

	plan, err := f.service().GenerateDailyPlan(context.Background(), f.userID, planDate)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Sets)
	assert.Equal(t, bench.ID, plan.Sets[0].ExerciseID)
	assert.Equal(t, 62.5, plan.Sets[0].PlannedWeight)
	assert.False(t, plan.Fatigue.ShouldDeload)
}

func TestGenerateDailyPlan_SkipsBlockedExercises(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	bench := f.exerciseByName("Bench Press")
	require.NoError(t, f.blocked.Block(context.Background(), &domain.BlockedItem{
		UserID: f.userID, ItemType: domain.ItemExercise, ItemID: bench.ID,
	}))

	plan, err := f.service().GenerateDailyPlan(context.Background(), f.userID, planDate)
	require.NoError(t, err)
	for _, s := range plan.Sets {
		assert.NotEqual(t, bench.ID, s.ExerciseID)
	}
}

func TestRegenerateSingleExercise_SwapsAllSetsOfExercise(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()
	ctx := context.Background()

	plan, err := svc.GenerateDailyPlan(ctx, f.userID, planDate)
	require.NoError(t, err)

	var target domain.ExerciseSet
	for _, s := range plan.Sets {
		if !s.Compound {
			target = s
			break
		}
	}
	require.False(t, target.ID.IsZero())
	old := f.exerciseByName(target.ExerciseName)

	replacement, err := svc.RegenerateSingleExercise(ctx, f.userID, plan.Session.ID, target.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, replacement.ID)
	assert.Equal(t, old.BodyPart, replacement.BodyPart)
	assert.False(t, replacement.Compound)

	sets, err := f.plans.ListSets(ctx, plan.Session.ID)
	require.NoError(t, err)
	var swapped int
	for _, s := range sets {
		assert.NotEqual(t, old.ID, s.ExerciseID)
		if s.ExerciseID == replacement.ID {
			swapped++
			assert.Equal(t, target.Order, s.Order)
			assert.Equal(t, 10, s.PlannedReps)
		}
	}
	assert.Equal(t, 3, swapped)
	assert.Len(t, sets, len(plan.Sets)-3+swapped)
}

func TestRegenerateSingleExercise_Rejections(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()
	ctx := context.Background()

	plan, err := svc.GenerateDailyPlan(ctx, f.userID, planDate)
	require.NoError(t, err)
	first := plan.Sets[0]
	require.NoError(t, f.plans.CompleteSet(ctx, plan.Sets[1].ID, 50, 6, nil))

	t.Run("completed sets are immutable", func(t *testing.T) {
		_, err := svc.RegenerateSingleExercise(ctx, f.userID, plan.Session.ID, first.ID)
		assert.ErrorIs(t, err, planner.ErrImmutableItem)
	})
	t.Run("other users are denied", func(t *testing.T) {
		_, err := svc.RegenerateSingleExercise(ctx, primitive.NewObjectID(), plan.Session.ID, first.ID)
		assert.ErrorIs(t, err, ErrPlanAccessDenied)
	})
	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.RegenerateSingleExercise(ctx, f.userID, primitive.NewObjectID(), first.ID)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
	t.Run("unknown set", func(t *testing.T) {
		_, err := svc.RegenerateSingleExercise(ctx, f.userID, plan.Session.ID, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrSetNotFound)
	})
}

func TestRegenerateSingleMeal(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()
	ctx := context.Background()

	plan, err := svc.GenerateDailyPlan(ctx, f.userID, planDate)
	require.NoError(t, err)
	old := plan.Meals[0]

	meal, err := svc.RegenerateSingleMeal(ctx, f.userID, old.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old.MealID, meal.ID)

	stored, err := f.plans.GetDailyMeal(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, meal.ID, stored.MealID)
	assert.Equal(t, old.Slot, stored.Slot)
	assert.Equal(t, old.Order, stored.Order)
	assert.Equal(t, 500.0, stored.Calories)

	require.NoError(t, f.plans.CompleteDailyMeal(ctx, old.ID))
	_, err = svc.RegenerateSingleMeal(ctx, f.userID, old.ID)
	assert.ErrorIs(t, err, planner.ErrImmutableItem)

	_, err = svc.RegenerateSingleMeal(ctx, primitive.NewObjectID(), plan.Meals[1].ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)

	_, err = svc.RegenerateSingleMeal(ctx, f.userID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrDailyMealNotFound)
}

func TestGetDailyPlan(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.GetDailyPlan(ctx, f.userID, planDate)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	generated, err := svc.GenerateDailyPlan(ctx, f.userID, planDate)
	require.NoError(t, err)

	plan, err := svc.GetDailyPlan(ctx, f.userID, planDate)
	require.NoError(t, err)
	assert.Equal(t, generated.Session.ID, plan.Session.ID)
	assert.Len(t, plan.Sets, len(generated.Sets))
	assert.Len(t, plan.Meals, len(generated.Meals))
}

func TestGetWeeklySchedule(t *testing.T) {
	f := newCoachFixture(t)
	svc := f.service()
	ctx := context.Background()

	sessions, err := svc.GetWeeklySchedule(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, f.users.UpdateProfile(ctx, f.userID, domain.BodyMetrics{}, domain.TrainingPreferences{
		SplitTemplate: "push_pull_legs",
	}))
	sessions, err = svc.GetWeeklySchedule(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, sessions, 6)
	assert.Equal(t, "Push", sessions[0].Label)

	_, err = svc.GetWeeklySchedule(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetPlanArchiveURL(t *testing.T) {
	f := newCoachFixture(t)
	f.benchGoal(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.GetPlanArchiveURL(ctx, f.userID, planDate)
	assert.ErrorIs(t, err, ErrArchiveNotFound)

	_, err = svc.GenerateDailyPlan(ctx, f.userID, planDate)
	require.NoError(t, err)

	url, err := svc.GetPlanArchiveURL(ctx, f.userID, planDate)
	require.NoError(t, err)
	assert.Contains(t, url, f.archives.archives[0].S3ObjectKey)

	disabled := NewCoachService(CoachDeps{Users: f.users, Plans: f.plans, Archives: f.archives, Generator: f.model})
	_, err = disabled.GetPlanArchiveURL(ctx, f.userID, planDate)
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}
