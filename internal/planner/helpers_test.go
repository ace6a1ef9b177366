package planner

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func doneSet(name string, setNumber int, weight float64, planned, actual int, rpe *float64) domain.ExerciseSet {
	return domain.ExerciseSet{
		ExerciseName:  name,
		SetNumber:     setNumber,
		PlannedWeight: weight,
		PlannedReps:   planned,
		ActualWeight:  fptr(weight),
		ActualReps:    iptr(actual),
		RPE:           rpe,
		Completed:     true,
	}
}

func session(daysAgo int, label string, sets ...domain.ExerciseSet) HistoricalSession {
	return HistoricalSession{Date: day0.AddDate(0, 0, -daysAgo), DayLabel: label, Sets: sets}
}

func exercise(name, part string, compound bool) domain.Exercise {
	return domain.Exercise{ID: primitive.NewObjectID(), Name: name, BodyPart: part, Compound: compound}
}

func meal(name string, cal, protein float64, types ...domain.MealType) domain.Meal {
	return domain.Meal{ID: primitive.NewObjectID(), Name: name, Calories: cal, Protein: protein, Types: types}
}

// scriptedGenerator replays canned model responses in order.
type scriptedGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

// blueprintFor writes the blueprint a perfectly obedient model would return.
func blueprintFor(c WorkoutConstraints) WorkoutBlueprint {
	bp := WorkoutBlueprint{Explanation: "ok", Exercises: []BlueprintExercise{}}
	for _, e := range c.Exercises {
		be := BlueprintExercise{Name: e.Name}
		for i := 0; i < e.Sets; i++ {
			be.Sets = append(be.Sets, BlueprintSet{Weight: e.Weight, Reps: e.Reps})
		}
		bp.Exercises = append(bp.Exercises, be)
	}
	return bp
}

func fenced(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return "Here you go:\n```json\n" + string(b) + "\n```\n"
}
