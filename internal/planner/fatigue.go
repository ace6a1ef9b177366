package planner

import "time"

// Deload thresholds. A ratio exactly at the threshold triggers a deload.
const (
	FailedRepsDeloadRatio = 0.30
	HighRPEDeloadRatio    = 0.40
	HighRPE               = 9.0
)

// FatigueReport summarizes recent completed sets.
type FatigueReport struct {
	SetsConsidered  int     `json:"setsConsidered"`
	FailedRepsRatio float64 `json:"failedRepsRatio"`
	HighRPERatio    float64 `json:"highRpeRatio"`
	ShouldDeload    bool    `json:"shouldDeload"`
}

// DetectFatigue scans completed sets dated within lookbackDays before now.
// failedRepsRatio is taken over sets with both planned and actual reps,
// highRPERatio over sets with an RPE.
func DetectFatigue(history []HistoricalSession, now time.Time, lookbackDays int) FatigueReport {
	cutoff := now.AddDate(0, 0, -lookbackDays)

	var (
		considered   int
		repsRecorded int
		failed       int
		rpeRecorded  int
		highRPE      int
	)
	for _, sess := range history {
		if sess.Date.Before(cutoff) || sess.Date.After(now) {
			continue
		}
		for _, s := range sess.Sets {
			if !s.Completed {
				continue
			}
			considered++
			if s.ActualReps != nil && s.PlannedReps > 0 {
				repsRecorded++
				if *s.ActualReps < s.PlannedReps {
					failed++
				}
			}
			if s.RPE != nil {
				rpeRecorded++
				if *s.RPE >= HighRPE {
					highRPE++
				}
			}
		}
	}

	report := FatigueReport{SetsConsidered: considered}
	if repsRecorded > 0 {
		report.FailedRepsRatio = float64(failed) / float64(repsRecorded)
	}
	if rpeRecorded > 0 {
		report.HighRPERatio = float64(highRPE) / float64(rpeRecorded)
	}
	report.ShouldDeload = report.FailedRepsRatio >= FailedRepsDeloadRatio ||
		report.HighRPERatio >= HighRPEDeloadRatio
	return report
}
