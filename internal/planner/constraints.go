package planner

import (
	"alcyxob/fitness-coach/internal/domain"
)

// Prescription returns the set count and rep range for a compound or accessory slot.
func (w WorkoutIntent) Prescription(compound bool) (int, RepRange) {
	if compound {
		return w.CompoundSets, w.CompoundReps
	}
	return w.AccessorySets, w.AccessoryReps
}

// ReplacementIntent describes a single-exercise swap inside an existing session.
func ReplacementIntent(intensity Intensity, bodyPart string, compound, deload bool) WorkoutIntent {
	v, ok := volumeByIntensity[intensity]
	if !ok {
		intensity = IntensityMaintain
		v = volumeByIntensity[intensity]
	}
	wi := WorkoutIntent{
		BodyParts:     []string{bodyPart},
		Intensity:     intensity,
		CompoundSets:  v.compoundSets,
		AccessorySets: v.accessorySets,
		CompoundReps:  v.compoundReps,
		AccessoryReps: v.accessoryReps,
		Deload:        deload,
	}
	if compound {
		wi.CompoundCount = 1
	} else {
		wi.AccessoryCount = 1
	}
	return wi
}

// CardioReplacementIntent swaps one cardio slot for another over the same distance.
func CardioReplacementIntent(distance int, deload bool) WorkoutIntent {
	distance = max(1, distance)
	return WorkoutIntent{
		BodyParts:      []string{domain.BodyPartCardio},
		Intensity:      IntensityMaintain,
		CompoundCount:  1,
		CompoundSets:   1,
		CompoundReps:   NewRepRange(distance, distance),
		Cardio:         true,
		CardioDistance: distance,
		Deload:         deload,
	}
}

// BuildWorkoutConstraints fixes every number for the selected exercises.
// Each exercise gets a progression target; on deload days it is scaled down.
func BuildWorkoutConstraints(intent WorkoutIntent, selected []domain.Exercise, history []HistoricalSession) WorkoutConstraints {
	c := WorkoutConstraints{Intent: intent, Exercises: make([]AllowedExercise, 0, len(selected))}

	for _, e := range selected {
		if intent.Cardio {
			c.Exercises = append(c.Exercises, AllowedExercise{
				Name:     e.Name,
				BodyPart: e.BodyPart,
				Sets:     1,
				Reps:     intent.CardioDistance,
				RepRange: NewRepRange(intent.CardioDistance, intent.CardioDistance),
			})
			continue
		}
		sets, reps := intent.Prescription(e.Compound)
		p := NextProgression(history, e.Name, reps.Top())
		if intent.Deload {
			p = p.Deloaded()
		}
		c.Exercises = append(c.Exercises, AllowedExercise{
			Name:        e.Name,
			BodyPart:    e.BodyPart,
			Compound:    e.Compound,
			Equipment:   e.Equipment,
			Sets:        sets,
			Reps:        p.TargetReps,
			Weight:      p.NextWeight,
			RepRange:    reps,
			FromHistory: p.FromHistory,
		})
	}

	if !intent.Cardio && intent.TargetExercise != "" && len(selected) > 0 &&
		nameKey(selected[0].Name) == nameKey(intent.TargetExercise) {
		c.PrimaryLift = selected[0].Name
	}
	return c
}

// BuildMealConstraints fills serving bounds and the calorie tolerance from t.
// Options are left for the orchestrator to plan.
func BuildMealConstraints(n NutritionIntent, slots []SlotCandidates, t Tuning) MealConstraints {
	t = t.withDefaults()
	return MealConstraints{
		Nutrition:        n,
		Slots:            slots,
		MinServings:      t.MinServings,
		MaxServings:      t.MaxServings,
		ServingStep:      t.ServingStep,
		CalorieTolerance: t.CalorieTolerance,
	}
}
