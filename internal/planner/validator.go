package planner

import (
	"fmt"
	"math"

	"alcyxob/fitness-coach/internal/domain"
)

// ValidationResult reports a blueprint check. Only Errors gate acceptance.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) finish() ValidationResult {
	r.Valid = len(r.Errors) == 0
	return *r
}

const epsilon = 1e-9

// ValidateWorkout checks a workout blueprint against its constraints.
func ValidateWorkout(bp WorkoutBlueprint, c WorkoutConstraints, t Tuning) ValidationResult {
	t = t.withDefaults()
	r := &ValidationResult{Errors: []string{}, Warnings: []string{}}

	if len(bp.Exercises) != len(c.Exercises) {
		r.errorf("expected %d exercises, got %d", len(c.Exercises), len(bp.Exercises))
	}
	if c.PrimaryLift != "" && (len(bp.Exercises) == 0 || nameKey(bp.Exercises[0].Name) != nameKey(c.PrimaryLift)) {
		r.errorf("%q must be the first exercise", c.PrimaryLift)
	}

	seen := make(map[string]bool)
	for _, ex := range bp.Exercises {
		key := nameKey(ex.Name)
		if seen[key] {
			r.errorf("exercise %q appears more than once", ex.Name)
			continue
		}
		seen[key] = true

		allowed, ok := c.Allowed(ex.Name)
		if !ok {
			r.errorf("exercise %q is not in the allowed list", ex.Name)
			continue
		}
		if len(ex.Sets) != allowed.Sets {
			r.errorf("%s: expected %d sets, got %d", allowed.Name, allowed.Sets, len(ex.Sets))
		}
		for i, s := range ex.Sets {
			n := i + 1
			if s.Weight < 0 {
				r.errorf("%s set %d: negative weight %.1f", allowed.Name, n, s.Weight)
			}
			if s.Reps <= 0 {
				r.errorf("%s set %d: reps must be positive, got %d", allowed.Name, n, s.Reps)
			}
			if math.Abs(s.Weight-allowed.Weight) > t.WeightTolerance+epsilon {
				r.errorf("%s set %d: weight %.1f does not match target %.1f", allowed.Name, n, s.Weight, allowed.Weight)
			}
			if s.Reps != allowed.Reps {
				r.errorf("%s set %d: reps %d do not match target %d", allowed.Name, n, s.Reps, allowed.Reps)
			}
			if s.Reps > 0 && !allowed.RepRange.Contains(s.Reps) {
				r.warnf("%s set %d: reps %d outside range %s", allowed.Name, n, s.Reps, allowed.RepRange)
			}
			if s.Weight > t.ExcessiveWeight {
				r.warnf("%s set %d: weight %.1f is unusually high", allowed.Name, n, s.Weight)
			}
		}
	}
	return r.finish()
}

// ResolvedMeal is a blueprint meal joined with its catalog entry.
// Calories and Protein have servings applied.
type ResolvedMeal struct {
	Meal     domain.Meal
	Slot     domain.MealType
	Servings float64
	Calories float64
	Protein  float64
}

// ResolveMeals joins blueprint meals with the candidates they name. Meals that
// are not candidates for their slot are skipped.
func ResolveMeals(bp MealBlueprint, c MealConstraints) []ResolvedMeal {
	out := make([]ResolvedMeal, 0, len(bp.Meals))
	for _, m := range bp.Meals {
		meal, ok := c.candidate(m.Slot, m.Name)
		if !ok {
			continue
		}
		out = append(out, ResolvedMeal{
			Meal:     meal,
			Slot:     m.Slot,
			Servings: m.Servings,
			Calories: meal.Calories * m.Servings,
			Protein:  meal.Protein * m.Servings,
		})
	}
	return out
}

// ValidateMeals checks a meal blueprint. Totals are recomputed from the
// catalog; the model's stated macros are only compared for warnings.
func ValidateMeals(bp MealBlueprint, c MealConstraints, t Tuning) ValidationResult {
	t = t.withDefaults()
	r := &ValidationResult{Errors: []string{}, Warnings: []string{}}
	if c.MinServings <= 0 {
		c.MinServings, c.MaxServings, c.ServingStep = t.MinServings, t.MaxServings, t.ServingStep
	}

	filled := make(map[domain.MealType]int)
	names := make(map[string]bool)
	var totalCal, totalProtein float64

	for _, m := range bp.Meals {
		key := nameKey(m.Name)
		if names[key] {
			r.warnf("meal %q appears more than once", m.Name)
		}
		names[key] = true

		meal, ok := c.candidate(m.Slot, m.Name)
		if !ok {
			r.errorf("meal %q is not allowed for %s", m.Name, m.Slot)
			continue
		}
		filled[m.Slot]++

		if !validServings(m.Servings, c) {
			r.errorf("%s: servings %.2f must be between %.1f and %.1f in steps of %.1f",
				meal.Name, m.Servings, c.MinServings, c.MaxServings, c.ServingStep)
		}
		cal := meal.Calories * m.Servings
		protein := meal.Protein * m.Servings
		totalCal += cal
		totalProtein += protein

		if cal < t.MealCalorieMin || cal > t.MealCalorieMax {
			r.warnf("%s: %.0f kcal is outside %.0f-%.0f", meal.Name, cal, t.MealCalorieMin, t.MealCalorieMax)
		}
		if protein > t.MealProteinMax {
			r.warnf("%s: %.0f g protein is unusually high", meal.Name, protein)
		}
		if m.Calories > 0 && math.Abs(m.Calories-cal) > t.CalorieTolerance {
			r.warnf("%s: stated %.0f kcal, catalog gives %.0f", meal.Name, m.Calories, cal)
		}
	}

	for _, s := range c.Slots {
		switch n := filled[s.Slot]; {
		case n == 0:
			r.errorf("slot %s has no meal", s.Slot)
		case n > 1:
			r.errorf("slot %s has %d meals, expected 1", s.Slot, n)
		}
	}

	if len(c.Options) > 0 && !matchesAnyOption(bp, c.Options) {
		r.errorf("meals and servings do not match any offered option")
	}

	diff := math.Abs(totalCal - c.Nutrition.CalorieTarget)
	if c.Replacement {
		if diff > t.CalorieSoftTolerance+epsilon {
			r.warnf("replacement is %.0f kcal away from %.0f", diff, c.Nutrition.CalorieTarget)
		}
		return r.finish()
	}
	tolerance := c.CalorieTolerance
	if tolerance <= 0 {
		tolerance = t.CalorieTolerance
	}
	if diff > tolerance+epsilon {
		r.errorf("total calories %.0f not within %.0f of target %.0f", totalCal, tolerance, c.Nutrition.CalorieTarget)
	}
	if totalProtein+epsilon < c.Nutrition.ProteinMin {
		r.errorf("total protein %.0f g is below minimum %.0f g", totalProtein, c.Nutrition.ProteinMin)
	}
	return r.finish()
}

func validServings(s float64, c MealConstraints) bool {
	if s < c.MinServings-epsilon || s > c.MaxServings+epsilon {
		return false
	}
	steps := s / c.ServingStep
	return math.Abs(steps-math.Round(steps)) < 1e-6
}

func matchesAnyOption(bp MealBlueprint, options []MealOption) bool {
	for _, o := range options {
		if o.matches(bp) {
			return true
		}
	}
	return false
}
