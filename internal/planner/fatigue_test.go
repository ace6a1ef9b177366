package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alcyxob/fitness-coach/internal/domain"
)

func repsSets(total, failed int) []domain.ExerciseSet {
	sets := make([]domain.ExerciseSet, 0, total)
	for i := 0; i < total; i++ {
		actual := 10
		if i < failed {
			actual = 6
		}
		sets = append(sets, doneSet("Squat", i+1, 100, 10, actual, nil))
	}
	return sets
}

func rpeSets(total, high int) []domain.ExerciseSet {
	sets := make([]domain.ExerciseSet, 0, total)
	for i := 0; i < total; i++ {
		rpe := 7.0
		if i < high {
			rpe = 9
		}
		sets = append(sets, doneSet("Bench", i+1, 80, 8, 8, fptr(rpe)))
	}
	return sets
}

func TestDetectFatigue(t *testing.T) {
	tests := []struct {
		name       string
		sets       []domain.ExerciseSet
		wantDeload bool
	}{
		{"no sets", nil, false},
		{"failed reps exactly at threshold", repsSets(10, 3), true},
		{"failed reps below threshold", repsSets(10, 2), false},
		{"high rpe exactly at threshold", rpeSets(5, 2), true},
		{"high rpe below threshold", rpeSets(10, 3), false},
		{"all sets fine", append(repsSets(4, 0), rpeSets(4, 0)...), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []HistoricalSession{session(1, "", tt.sets...)}
			got := DetectFatigue(history, day0, 14)
			assert.Equal(t, tt.wantDeload, got.ShouldDeload)
		})
	}
}

func TestDetectFatigueRatios(t *testing.T) {
	history := []HistoricalSession{session(2, "", append(repsSets(10, 3), rpeSets(5, 2)...)...)}
	got := DetectFatigue(history, day0, 14)
	assert.Equal(t, 15, got.SetsConsidered)
	assert.InDelta(t, 0.2, got.FailedRepsRatio, 1e-9) // 3 of 15 sets with reps recorded
	assert.InDelta(t, 0.4, got.HighRPERatio, 1e-9)
	assert.True(t, got.ShouldDeload)
}

func TestDetectFatigueIgnoresOldAndIncompleteSets(t *testing.T) {
	incomplete := repsSets(5, 5)
	for i := range incomplete {
		incomplete[i].Completed = false
	}
	history := []HistoricalSession{
		session(20, "", repsSets(10, 10)...),
		session(1, "", incomplete...),
		session(1, "", repsSets(10, 0)...),
	}
	got := DetectFatigue(history, day0, 14)
	assert.Equal(t, 10, got.SetsConsidered)
	assert.False(t, got.ShouldDeload)
}
