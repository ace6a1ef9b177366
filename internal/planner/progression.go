package planner

import (
	"math"
	"sort"

	"alcyxob/fitness-coach/internal/domain"
)

// Progression constants. These are part of the observable behavior and are not tunable.
const (
	DefaultStartWeight = 50.0
	WeightIncrement    = 2.5
	RecoveryRepRatio   = 0.8

	DeloadWeightFactor = 0.90
	DeloadRepBonus     = 2
)

// ProgressionTarget is the next prescription for one exercise.
type ProgressionTarget struct {
	ExerciseName string  `json:"exerciseName"`
	NextWeight   float64 `json:"nextWeight"`
	TargetReps   int     `json:"targetReps"`
	FromHistory  bool    `json:"fromHistory"`
	Recovery     bool    `json:"recovery,omitempty"` // last attempt fell short, weight held
	Deload       bool    `json:"deload,omitempty"`
}

// RoundToIncrement rounds w to the nearest multiple of WeightIncrement.
func RoundToIncrement(w float64) float64 {
	return math.Round(w/WeightIncrement) * WeightIncrement
}

// NextProgression derives the next weight/reps for exerciseName from history.
// Sessions are walked most recent first; the first session holding a completed
// set with recorded weight and reps decides the result. It is pure.
func NextProgression(history []HistoricalSession, exerciseName string, targetReps int) ProgressionTarget {
	key := nameKey(exerciseName)
	for _, idx := range byRecency(history) {
		set, ok := lastCompletedSet(history[idx].Sets, key)
		if !ok {
			continue
		}
		return progressFrom(exerciseName, *set.ActualWeight, *set.ActualReps, set.RPE, targetReps)
	}
	return ProgressionTarget{
		ExerciseName: exerciseName,
		NextWeight:   DefaultStartWeight,
		TargetReps:   targetReps,
	}
}

// Deloaded scales the target down for a fatigue-triggered deload.
func (p ProgressionTarget) Deloaded() ProgressionTarget {
	p.NextWeight = RoundToIncrement(p.NextWeight * DeloadWeightFactor)
	p.TargetReps += DeloadRepBonus
	p.Deload = true
	return p
}

func progressFrom(name string, lastWeight float64, lastReps int, rpe *float64, targetReps int) ProgressionTarget {
	if float64(lastReps) < RecoveryRepRatio*float64(targetReps) {
		return ProgressionTarget{
			ExerciseName: name,
			NextWeight:   lastWeight,
			TargetReps:   targetReps,
			FromHistory:  true,
			Recovery:     true,
		}
	}
	inc := increasePercent(rpe, lastReps >= targetReps)
	return ProgressionTarget{
		ExerciseName: name,
		NextWeight:   RoundToIncrement(lastWeight * (1 + inc)),
		TargetReps:   targetReps,
		FromHistory:  true,
	}
}

// increasePercent picks the load increase band. Hitting the rep target uses the top of the band.
func increasePercent(rpe *float64, reachedTarget bool) float64 {
	if rpe == nil {
		if reachedTarget {
			return 0.03
		}
		return 0.02
	}
	switch {
	case *rpe <= 7:
		if reachedTarget {
			return 0.05
		}
		return 0.04
	case *rpe >= 9:
		if reachedTarget {
			return 0.01
		}
		return 0
	default:
		if reachedTarget {
			return 0.03
		}
		return 0.02
	}
}

// lastCompletedSet returns the highest-numbered completed set of the exercise
// that has both weight and reps recorded.
func lastCompletedSet(sets []domain.ExerciseSet, key string) (domain.ExerciseSet, bool) {
	var (
		best  domain.ExerciseSet
		found bool
	)
	for _, s := range sets {
		if !s.Completed || s.ActualWeight == nil || s.ActualReps == nil {
			continue
		}
		if nameKey(s.ExerciseName) != key {
			continue
		}
		if !found || s.SetNumber > best.SetNumber {
			best = s
			found = true
		}
	}
	return best, found
}

// byRecency returns session indexes ordered newest first without mutating history.
func byRecency(history []HistoricalSession) []int {
	idx := make([]int, len(history))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return history[idx[a]].Date.After(history[idx[b]].Date)
	})
	return idx
}
