package planner

import (
	"math"
	"sort"

	"alcyxob/fitness-coach/internal/domain"
)

// maxMealSearchNodes bounds the option search for large candidate lists.
const maxMealSearchNodes = 200000

// MealPick is one slot of a meal option with its engine-chosen servings.
type MealPick struct {
	Slot     domain.MealType `json:"slot"`
	Meal     domain.Meal     `json:"meal"`
	Servings float64         `json:"servings"`
}

// MealOption is a complete combination the model may choose. Calories and
// Protein are totals with servings applied.
type MealOption struct {
	Picks    []MealPick `json:"picks"`
	Calories float64    `json:"calories"`
	Protein  float64    `json:"protein"`
}

// matches reports whether bp names exactly this option's meals and servings.
func (o MealOption) matches(bp MealBlueprint) bool {
	if len(bp.Meals) != len(o.Picks) {
		return false
	}
	used := make([]bool, len(bp.Meals))
	for _, p := range o.Picks {
		found := false
		for i, m := range bp.Meals {
			if used[i] || m.Slot != p.Slot || nameKey(m.Name) != nameKey(p.Meal.Name) {
				continue
			}
			if math.Abs(m.Servings-p.Servings) > 1e-6 {
				continue
			}
			used[i], found = true, true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

type mealChoice struct {
	meal     domain.Meal
	servings float64
	calories float64
	protein  float64
}

// servingSteps lists every allowed serving size from min to max.
func servingSteps(c MealConstraints) []float64 {
	var out []float64
	for i := 0; ; i++ {
		s := math.Round((c.MinServings+float64(i)*c.ServingStep)*100) / 100
		if s > c.MaxServings+epsilon {
			break
		}
		out = append(out, s)
	}
	return out
}

// PlanMealOptions enumerates meal-and-serving combinations, one pick per slot,
// and returns at most t.MealOptions of them, servings nearest one first.
// A full day keeps only combinations within the calorie tolerance that reach
// the protein floor, so an empty result means the targets are unreachable
// with these candidates. A replacement keeps every single-slot choice and
// ranks them by distance from the target.
func PlanMealOptions(c MealConstraints, t Tuning) []MealOption {
	t = t.withDefaults()
	if c.MinServings <= 0 {
		c.MinServings, c.MaxServings, c.ServingStep = t.MinServings, t.MaxServings, t.ServingStep
	}
	tolerance := c.CalorieTolerance
	if tolerance <= 0 {
		tolerance = t.CalorieTolerance
	}
	steps := servingSteps(c)

	choices := make([][]mealChoice, len(c.Slots))
	for i, s := range c.Slots {
		for _, m := range s.Meals {
			for _, sv := range steps {
				choices[i] = append(choices[i], mealChoice{meal: m, servings: sv, calories: m.Calories * sv, protein: m.Protein * sv})
			}
		}
		if len(choices[i]) == 0 {
			return nil
		}
	}

	target := c.Nutrition.CalorieTarget
	// suffix bounds for pruning: what the remaining slots can still add
	n := len(choices)
	minCal, maxCal, maxProt := make([]float64, n+1), make([]float64, n+1), make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		lo, hi, hp := math.Inf(1), math.Inf(-1), math.Inf(-1)
		for _, ch := range choices[i] {
			lo, hi, hp = math.Min(lo, ch.calories), math.Max(hi, ch.calories), math.Max(hp, ch.protein)
		}
		minCal[i], maxCal[i], maxProt[i] = minCal[i+1]+lo, maxCal[i+1]+hi, maxProt[i+1]+hp
	}

	var (
		found []MealOption
		stack = make([]mealChoice, 0, n)
		nodes int
	)
	var walk func(depth int, cal, prot float64)
	walk = func(depth int, cal, prot float64) {
		if nodes >= maxMealSearchNodes {
			return
		}
		nodes++
		if !c.Replacement {
			if cal+minCal[depth] > target+tolerance+epsilon || cal+maxCal[depth] < target-tolerance-epsilon {
				return
			}
			if prot+maxProt[depth]+epsilon < c.Nutrition.ProteinMin {
				return
			}
		}
		if depth == n {
			opt := MealOption{Picks: make([]MealPick, n), Calories: cal, Protein: prot}
			for i, ch := range stack {
				opt.Picks[i] = MealPick{Slot: c.Slots[i].Slot, Meal: ch.meal, Servings: ch.servings}
			}
			found = append(found, opt)
			return
		}
		for _, ch := range choices[depth] {
			stack = append(stack, ch)
			walk(depth+1, cal+ch.calories, prot+ch.protein)
			stack = stack[:len(stack)-1]
		}
	}
	walk(0, 0, 0)

	sort.SliceStable(found, func(i, j int) bool {
		if c.Replacement {
			di, dj := math.Abs(found[i].Calories-target), math.Abs(found[j].Calories-target)
			if math.Abs(di-dj) > epsilon {
				return di < dj
			}
		}
		si, sj := servingSpread(found[i]), servingSpread(found[j])
		if math.Abs(si-sj) > epsilon {
			return si < sj
		}
		return math.Abs(found[i].Calories-target) < math.Abs(found[j].Calories-target)
	})
	if len(found) > t.MealOptions {
		found = found[:t.MealOptions]
	}
	return found
}

// servingSpread is how far an option strays from one serving per meal.
func servingSpread(o MealOption) float64 {
	var d float64
	for _, p := range o.Picks {
		d += math.Abs(p.Servings - 1)
	}
	return d
}
