package planner

import (
	"math/rand/v2"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exclusions is what every selection consults. Blocked and Used are hard
// exclusions by id; Recent holds lower-cased names used inside the recency
// window and only lowers an item's weight.
type Exclusions struct {
	Blocked map[primitive.ObjectID]bool
	Used    map[primitive.ObjectID]bool
	Recent  map[string]bool
}

func (e Exclusions) excluded(id primitive.ObjectID) bool {
	return e.Blocked[id] || e.Used[id]
}

// withUsed returns a copy of e whose Used set also holds ids.
func (e Exclusions) withUsed(ids ...primitive.ObjectID) Exclusions {
	used := make(map[primitive.ObjectID]bool, len(e.Used)+len(ids))
	for id := range e.Used {
		used[id] = true
	}
	for _, id := range ids {
		used[id] = true
	}
	e.Used = used
	return e
}

// ExerciseRequest narrows the exercise pool.
type ExerciseRequest struct {
	BodyParts []string
	Compound  *bool // nil matches both
	Count     int
}

// SelectExercises returns up to req.Count distinct exercises. A pool smaller
// than Count yields everything available, never an error.
func SelectExercises(rng *rand.Rand, pool []domain.Exercise, req ExerciseRequest, ex Exclusions, t Tuning) []domain.Exercise {
	t = t.withDefaults()
	var candidates []domain.Exercise
	seen := make(map[string]bool)
	for _, e := range pool {
		if ex.excluded(e.ID) || !matchesBodyPart(e.BodyPart, req.BodyParts) {
			continue
		}
		if req.Compound != nil && e.Compound != *req.Compound {
			continue
		}
		key := nameKey(e.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, e)
	}
	weights := make([]float64, len(candidates))
	for i, e := range candidates {
		weights[i] = recencyWeight(ex.Recent[nameKey(e.Name)], t)
	}
	return weightedSample(rng, candidates, weights, req.Count)
}

// SelectWorkout picks the day's exercises for intent. The primary lift, when it
// is in the pool, not blocked and trains one of the day's body parts, is pinned
// first and counts as a compound.
func SelectWorkout(rng *rand.Rand, pool []domain.Exercise, intent WorkoutIntent, ex Exclusions, t Tuning) ([]domain.Exercise, error) {
	if intent.Cardio {
		e, ok := findExercise(pool, intent.TargetExercise, ex)
		if !ok {
			picked := SelectExercises(rng, pool, ExerciseRequest{BodyParts: []string{domain.BodyPartCardio}, Count: 1}, ex, t)
			if len(picked) == 0 {
				return nil, newError(KindNoCandidatesAvailable, "no cardio exercise available", nil, nil)
			}
			e = picked[0]
		}
		return []domain.Exercise{e}, nil
	}

	var selected []domain.Exercise
	compounds := intent.CompoundCount
	if intent.TargetExercise != "" {
		if e, ok := findExercise(pool, intent.TargetExercise, ex); ok && trainsDay(e, intent.BodyParts) {
			selected = append(selected, e)
			ex = ex.withUsed(e.ID)
			compounds--
		}
	}

	yes, no := true, false
	picked := SelectExercises(rng, pool, ExerciseRequest{BodyParts: intent.BodyParts, Compound: &yes, Count: compounds}, ex, t)
	selected = append(selected, picked...)
	ex = ex.withUsed(ids(picked)...)

	picked = SelectExercises(rng, pool, ExerciseRequest{BodyParts: intent.BodyParts, Compound: &no, Count: intent.AccessoryCount}, ex, t)
	selected = append(selected, picked...)

	if len(selected) == 0 {
		return nil, newError(KindNoCandidatesAvailable, "no exercises available for "+joinParts(intent.BodyParts), nil, nil)
	}
	return dedupeByName(selected), nil
}

// SlotCandidates are the meals the generator may choose from for one slot.
type SlotCandidates struct {
	Slot  domain.MealType
	Meals []domain.Meal
}

// SelectMeals returns up to count meals for slot. The first pass takes meals
// tagged for the slot plus untyped legacy meals; the second fills any shortfall
// from the rest of the pool.
func SelectMeals(rng *rand.Rand, pool []domain.Meal, slot domain.MealType, count int, ex Exclusions, t Tuning) []domain.Meal {
	t = t.withDefaults()
	seen := make(map[string]bool)
	var exact, rest []domain.Meal
	for _, m := range pool {
		if ex.excluded(m.ID) {
			continue
		}
		key := nameKey(m.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		if len(m.Types) == 0 || m.HasType(slot) {
			exact = append(exact, m)
		} else {
			rest = append(rest, m)
		}
	}

	chosen := weightedSample(rng, exact, mealWeights(exact, ex, t), count)
	if short := count - len(chosen); short > 0 {
		chosen = append(chosen, weightedSample(rng, rest, mealWeights(rest, ex, t), short)...)
	}
	return chosen
}

// SelectMealSlots builds candidate lists for every slot. A meal appears in at
// most one slot.
func SelectMealSlots(rng *rand.Rand, pool []domain.Meal, slots []domain.MealType, ex Exclusions, t Tuning) ([]SlotCandidates, error) {
	t = t.withDefaults()
	out := make([]SlotCandidates, 0, len(slots))
	for _, slot := range slots {
		meals := SelectMeals(rng, pool, slot, t.MealCandidatesPerSlot, ex, t)
		if len(meals) == 0 {
			return nil, newError(KindNoCandidatesAvailable, "no meals available for "+string(slot), nil, nil)
		}
		ex = ex.withUsed(mealIDs(meals)...)
		out = append(out, SlotCandidates{Slot: slot, Meals: meals})
	}
	return out, nil
}

// weightedSample draws count items without replacement, each draw with
// probability proportional to the remaining weights.
func weightedSample[T any](rng *rand.Rand, items []T, weights []float64, count int) []T {
	if count <= 0 || len(items) == 0 {
		return nil
	}
	pool := append([]T(nil), items...)
	w := append([]float64(nil), weights...)
	out := make([]T, 0, min(count, len(pool)))
	for len(out) < count && len(pool) > 0 {
		var total float64
		for _, x := range w {
			total += x
		}
		pick := len(pool) - 1
		if total > 0 {
			r := rng.Float64() * total
			for i, x := range w {
				if r < x {
					pick = i
					break
				}
				r -= x
			}
		} else {
			pick = rng.IntN(len(pool))
		}
		out = append(out, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
		w = append(w[:pick], w[pick+1:]...)
	}
	return out
}

func recencyWeight(recent bool, t Tuning) float64 {
	if recent {
		return t.RecentWeight
	}
	return t.FreshWeight
}

func mealWeights(meals []domain.Meal, ex Exclusions, t Tuning) []float64 {
	w := make([]float64, len(meals))
	for i, m := range meals {
		w[i] = recencyWeight(ex.Recent[nameKey(m.Name)], t)
	}
	return w
}

func matchesBodyPart(part string, parts []string) bool {
	if len(parts) == 0 {
		return true
	}
	key := nameKey(part)
	for _, p := range parts {
		if nameKey(p) == key {
			return true
		}
	}
	return false
}

// trainsDay reports whether the lift belongs on a day training parts. Known
// lifts count by every muscle they train, not just their catalog body part.
func trainsDay(e domain.Exercise, parts []string) bool {
	if matchesBodyPart(e.BodyPart, parts) {
		return true
	}
	return overlaps(primaryLiftParts[nameKey(e.Name)], parts)
}

func findExercise(pool []domain.Exercise, name string, ex Exclusions) (domain.Exercise, bool) {
	key := nameKey(name)
	if key == "" {
		return domain.Exercise{}, false
	}
	for _, e := range pool {
		if nameKey(e.Name) == key && !ex.excluded(e.ID) {
			return e, true
		}
	}
	return domain.Exercise{}, false
}

func dedupeByName(list []domain.Exercise) []domain.Exercise {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, e := range list {
		if k := nameKey(e.Name); !seen[k] {
			seen[k] = true
			out = append(out, e)
		}
	}
	return out
}

func ids(list []domain.Exercise) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func mealIDs(list []domain.Meal) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(list))
	for i, m := range list {
		out[i] = m.ID
	}
	return out
}

func joinParts(parts []string) string {
	if len(parts) == 0 {
		return "any body part"
	}
	s := parts[0]
	for _, p := range parts[1:] {
		s += ", " + p
	}
	return s
}
