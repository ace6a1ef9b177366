package planner

// Tuning holds the configurable constants of the engine.
// The recency weight and the two calorie tolerances are used by different
// call sites and are intentionally kept separate.
type Tuning struct {
	WorkoutAttempts int
	MealAttempts    int

	HistoryDays         int
	FatigueLookbackDays int
	RecencyWindowDays   int

	RecentWeight float64
	FreshWeight  float64

	WeightTolerance float64
	ExcessiveWeight float64

	CalorieTolerance     float64 // hard, full-day plans
	CalorieSoftTolerance float64 // warning only, single meal swaps
	MealCalorieMin       float64
	MealCalorieMax       float64
	MealProteinMax       float64

	MealCandidatesPerSlot int
	MealOptions           int // combinations offered to the model
	MinServings           float64
	MaxServings           float64
	ServingStep           float64
}

// DefaultTuning returns the stock engine settings.
func DefaultTuning() Tuning {
	return Tuning{
		WorkoutAttempts:       3,
		MealAttempts:          3,
		HistoryDays:           21,
		FatigueLookbackDays:   14,
		RecencyWindowDays:     14,
		RecentWeight:          0.3,
		FreshWeight:           1.0,
		WeightTolerance:       0.1,
		ExcessiveWeight:       500,
		CalorieTolerance:      50,
		CalorieSoftTolerance:  100,
		MealCalorieMin:        100,
		MealCalorieMax:        1500,
		MealProteinMax:        120,
		MealCandidatesPerSlot: 2,
		MealOptions:           3,
		MinServings:           0.5,
		MaxServings:           3,
		ServingStep:           0.5,
	}
}

// withDefaults fills zero fields from DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.WorkoutAttempts <= 0 {
		t.WorkoutAttempts = d.WorkoutAttempts
	}
	if t.MealAttempts <= 0 {
		t.MealAttempts = d.MealAttempts
	}
	if t.HistoryDays <= 0 {
		t.HistoryDays = d.HistoryDays
	}
	if t.FatigueLookbackDays <= 0 {
		t.FatigueLookbackDays = d.FatigueLookbackDays
	}
	if t.RecencyWindowDays <= 0 {
		t.RecencyWindowDays = d.RecencyWindowDays
	}
	if t.RecentWeight <= 0 {
		t.RecentWeight = d.RecentWeight
	}
	if t.FreshWeight <= 0 {
		t.FreshWeight = d.FreshWeight
	}
	if t.WeightTolerance <= 0 {
		t.WeightTolerance = d.WeightTolerance
	}
	if t.ExcessiveWeight <= 0 {
		t.ExcessiveWeight = d.ExcessiveWeight
	}
	if t.CalorieTolerance <= 0 {
		t.CalorieTolerance = d.CalorieTolerance
	}
	if t.CalorieSoftTolerance <= 0 {
		t.CalorieSoftTolerance = d.CalorieSoftTolerance
	}
	if t.MealCalorieMin <= 0 {
		t.MealCalorieMin = d.MealCalorieMin
	}
	if t.MealCalorieMax <= 0 {
		t.MealCalorieMax = d.MealCalorieMax
	}
	if t.MealProteinMax <= 0 {
		t.MealProteinMax = d.MealProteinMax
	}
	if t.MealCandidatesPerSlot <= 0 {
		t.MealCandidatesPerSlot = d.MealCandidatesPerSlot
	}
	if t.MealOptions <= 0 {
		t.MealOptions = d.MealOptions
	}
	if t.MinServings <= 0 {
		t.MinServings = d.MinServings
	}
	if t.MaxServings <= 0 {
		t.MaxServings = d.MaxServings
	}
	if t.ServingStep <= 0 {
		t.ServingStep = d.ServingStep
	}
	return t
}
