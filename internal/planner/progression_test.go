package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"alcyxob/fitness-coach/internal/domain"
)

func TestNextProgression(t *testing.T) {
	tests := []struct {
		name       string
		history    []HistoricalSession
		target     int
		wantWeight float64
		wantReps   int
		recovery   bool
		fromHist   bool
	}{
		{"no history uses default", nil, 8, DefaultStartWeight, 8, false, false},
		{"below 80 percent holds weight", []HistoricalSession{
			session(2, "", doneSet("Bench Press", 1, 100, 10, 7, nil)),
		}, 10, 100, 10, true, true},
		{"exactly 80 percent progresses", []HistoricalSession{
			session(2, "", doneSet("Bench Press", 1, 100, 10, 8, nil)),
		}, 10, 102.5, 10, false, true},
		{"no rpe target reached", []HistoricalSession{
			session(2, "", doneSet("Bench Press", 1, 60, 6, 6, nil)),
		}, 6, 62.5, 6, false, true},
		{"high rpe target missed keeps weight", []HistoricalSession{
			session(2, "", doneSet("Bench Press", 1, 60, 6, 5, fptr(9))),
		}, 6, 60, 6, false, true},
		{"low rpe target reached", []HistoricalSession{
			session(2, "", doneSet("Bench Press", 1, 120, 6, 6, fptr(7))),
		}, 6, 125, 6, false, true},
		{"name match ignores case", []HistoricalSession{
			session(2, "", doneSet("bench press", 1, 60, 6, 6, nil)),
		}, 6, 62.5, 6, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextProgression(tt.history, "Bench Press", tt.target)
			assert.Equal(t, tt.wantWeight, got.NextWeight)
			assert.Equal(t, tt.wantReps, got.TargetReps)
			assert.Equal(t, tt.recovery, got.Recovery)
			assert.Equal(t, tt.fromHist, got.FromHistory)
		})
	}
}

func TestNextProgressionUsesMostRecentSession(t *testing.T) {
	history := []HistoricalSession{
		session(10, "", doneSet("Squat", 1, 140, 5, 5, nil)),
		session(1, "", doneSet("Squat", 1, 100, 5, 5, fptr(6))),
		session(5, "", doneSet("Squat", 1, 120, 5, 5, nil)),
	}
	got := NextProgression(history, "Squat", 5)
	assert.Equal(t, 105.0, got.NextWeight)
}

func TestNextProgressionUsesLastCompletedSet(t *testing.T) {
	incomplete := doneSet("Squat", 4, 200, 5, 5, nil)
	incomplete.Completed = false
	history := []HistoricalSession{
		session(1, "",
			doneSet("Squat", 3, 100, 5, 5, fptr(6)),
			doneSet("Squat", 1, 80, 5, 5, fptr(6)),
			incomplete,
		),
	}
	got := NextProgression(history, "Squat", 5)
	assert.Equal(t, 105.0, got.NextWeight)
}

func TestNextProgressionSkipsSessionsWithoutRecordedSets(t *testing.T) {
	noReps := domain.ExerciseSet{ExerciseName: "Row", SetNumber: 1, Completed: true, ActualWeight: fptr(300)}
	history := []HistoricalSession{
		session(1, "", noReps),
		session(3, "", doneSet("Row", 1, 60, 6, 6, nil)),
	}
	got := NextProgression(history, "Row", 6)
	assert.Equal(t, 62.5, got.NextWeight)
}

func TestNextProgressionIsPure(t *testing.T) {
	history := []HistoricalSession{
		session(3, "", doneSet("Deadlift", 1, 150, 5, 5, fptr(8))),
		session(1, "", doneSet("Deadlift", 1, 160, 5, 4, nil)),
	}
	first := NextProgression(history, "Deadlift", 5)
	NextProgression(nil, "Deadlift", 5)
	second := NextProgression(history, "Deadlift", 5)
	assert.Equal(t, first, second)
	assert.True(t, history[0].Date.Before(history[1].Date), "history must not be reordered")
}

func TestProgressionWeightsAreMultiplesOfIncrement(t *testing.T) {
	for w := 20.0; w <= 250; w += 1.3 {
		for _, rpe := range []*float64{nil, fptr(6), fptr(8), fptr(9.5)} {
			for reps := 4; reps <= 12; reps++ {
				h := []HistoricalSession{session(1, "", doneSet("Press", 1, w, 10, reps, rpe))}
				got := NextProgression(h, "Press", 10)
				if got.Recovery {
					assert.Equal(t, w, got.NextWeight)
					continue
				}
				steps := got.NextWeight / WeightIncrement
				assert.InDelta(t, math.Round(steps), steps, 1e-9, "weight %v", got.NextWeight)
			}
		}
	}
}

func TestDeloaded(t *testing.T) {
	p := ProgressionTarget{ExerciseName: "Bench Press", NextWeight: 100, TargetReps: 6}.Deloaded()
	assert.Equal(t, 90.0, p.NextWeight)
	assert.Equal(t, 8, p.TargetReps)
	assert.True(t, p.Deload)

	p = ProgressionTarget{NextWeight: 52.5, TargetReps: 10}.Deloaded()
	assert.Equal(t, 47.5, p.NextWeight)
}
