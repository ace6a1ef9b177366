package planner

import (
	"math"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
)

// SplitPlan is the user's configured weekly cycle, already expanded.
type SplitPlan struct {
	Sessions []WeeklySession
}

// IntentInput is everything the intent compiler reads. Goal is passed in
// explicitly; the compiler never looks it up.
type IntentInput struct {
	Goal    *domain.Goal
	History []HistoricalSession // 1-3 weeks
	Split   *SplitPlan
	Metrics domain.BodyMetrics
	Fatigue FatigueReport
}

type volume struct {
	compoundCount, accessoryCount int
	compoundSets, accessorySets   int
	compoundReps, accessoryReps   RepRange
}

var volumeByIntensity = map[Intensity]volume{
	IntensityStrengthen: {2, 2, 4, 3, "4-6", "8-10"},
	IntensityMaintain:   {2, 3, 3, 3, "8-10", "10-12"},
	IntensityRecover:    {1, 2, 2, 2, "10-12", "12-15"},
}

// primaryLiftParts maps well-known lifts to the body parts they train.
var primaryLiftParts = map[string][]string{
	"bench press":    {"chest", "triceps", "shoulders"},
	"squat":          {"quads", "glutes", "hamstrings"},
	"back squat":     {"quads", "glutes", "hamstrings"},
	"front squat":    {"quads", "glutes", "core"},
	"deadlift":       {"back", "hamstrings", "glutes"},
	"overhead press": {"shoulders", "triceps", "chest"},
	"pull up":        {"back", "biceps"},
	"pull-up":        {"back", "biceps"},
	"barbell row":    {"back", "biceps"},
	"hip thrust":     {"glutes", "hamstrings"},
}

var cardioMovements = map[string]bool{
	"running": true, "run": true, "jogging": true, "cycling": true,
	"rowing": true, "swimming": true, "walking": true,
}

var distanceUnits = map[string]bool{"km": true, "mi": true, "m": true, "miles": true}

// rotation groups used when no split is configured
var (
	pplRotation = [][]string{
		{"chest", "shoulders", "triceps"},
		{"back", "biceps"},
		{"quads", "hamstrings", "glutes"},
	}
	upperLowerRotation = [][]string{
		{"chest", "back", "shoulders"},
		{"quads", "hamstrings", "glutes", "core"},
	}
	enduranceRotation = [][]string{
		{"quads", "hamstrings", "core"},
		{"back", "shoulders", "core"},
	}
	mobilityRotation = [][]string{
		{"core", "hips", "back"},
	}
)

// CompileIntent turns the active goal and recent history into today's intents.
func CompileIntent(in IntentInput) (WorkoutIntent, NutritionIntent, error) {
	if in.Goal == nil {
		return WorkoutIntent{}, NutritionIntent{}, ErrNoActiveGoal
	}
	goal := in.Goal
	target := strings.TrimSpace(goal.TargetExercise())

	if isCardioGoal(goal) {
		wi := cardioIntent(goal, in.History)
		wi.Deload = in.Fatigue.ShouldDeload
		return wi, CompileNutrition(goal, in.Metrics), nil
	}

	intensity := intensityForGoal(goal.Category)
	var (
		parts []string
		label string
	)
	if in.Split != nil && len(in.Split.Sessions) > 0 {
		next := nextSplitSession(in.Split.Sessions, in.History)
		parts = next.BodyParts
		label = next.Label
		intensity = next.Intensity.Intensity()
	} else if lift, ok := primaryLiftParts[nameKey(target)]; ok && target != "" {
		parts = lift
	} else {
		parts = nextRotation(rotationFor(goal.Category), in.History)
	}

	v := volumeByIntensity[intensity]
	wi := WorkoutIntent{
		BodyParts:      append([]string(nil), parts...),
		Intensity:      intensity,
		DayLabel:       label,
		CompoundCount:  v.compoundCount,
		AccessoryCount: v.accessoryCount,
		CompoundSets:   v.compoundSets,
		AccessorySets:  v.accessorySets,
		CompoundReps:   v.compoundReps,
		AccessoryReps:  v.accessoryReps,
		Deload:         in.Fatigue.ShouldDeload,
	}
	if target != "" {
		wi.TargetExercise = target
	}
	return wi, CompileNutrition(goal, in.Metrics), nil
}

func intensityForGoal(c domain.GoalCategory) Intensity {
	switch c {
	case domain.GoalStrength:
		return IntensityStrengthen
	case domain.GoalMobility:
		return IntensityRecover
	default:
		return IntensityMaintain
	}
}

func rotationFor(c domain.GoalCategory) [][]string {
	switch c {
	case domain.GoalStrength:
		return pplRotation
	case domain.GoalEndurance:
		return enduranceRotation
	case domain.GoalMobility:
		return mobilityRotation
	default:
		return upperLowerRotation
	}
}

// nextRotation returns the group after the one trained most recently.
func nextRotation(groups [][]string, history []HistoricalSession) []string {
	for _, idx := range byRecency(history) {
		for g, group := range groups {
			if overlaps(group, history[idx].BodyParts) {
				return groups[(g+1)%len(groups)]
			}
		}
	}
	return groups[0]
}

// nextSplitSession finds the most recent session whose day label is in the
// cycle and returns the slot after it. With no match the cycle starts over.
func nextSplitSession(cycle []WeeklySession, history []HistoricalSession) WeeklySession {
	for _, idx := range byRecency(history) {
		label := nameKey(history[idx].DayLabel)
		if label == "" {
			continue
		}
		for i, s := range cycle {
			if nameKey(s.Label) == label {
				return cycle[(i+1)%len(cycle)]
			}
		}
	}
	return cycle[0]
}

func isCardioGoal(g *domain.Goal) bool {
	if cardioMovements[nameKey(g.TargetExercise())] {
		return true
	}
	return g.Category == domain.GoalEndurance && distanceUnits[nameKey(g.Unit)]
}

// cardioIntent collapses the workout to a single distance slot. The next
// distance is 10% over the last completed one, capped at the goal value.
func cardioIntent(g *domain.Goal, history []HistoricalSession) WorkoutIntent {
	name := g.TargetExercise()
	if name == "" {
		name = "running"
	}
	distance := int(math.Max(1, math.Round(g.Value/3)))
	if set, ok := latestCompleted(history, nameKey(name)); ok && set.ActualReps != nil {
		next := int(math.Ceil(float64(*set.ActualReps) * 1.1))
		if g.Value > 0 && float64(next) > g.Value {
			next = int(g.Value)
		}
		distance = max(1, next)
	}
	return WorkoutIntent{
		BodyParts:      []string{domain.BodyPartCardio},
		Intensity:      IntensityMaintain,
		CompoundCount:  1,
		CompoundSets:   1,
		CompoundReps:   NewRepRange(distance, distance),
		TargetExercise: name,
		Cardio:         true,
		CardioDistance: distance,
	}
}

func latestCompleted(history []HistoricalSession, key string) (domain.ExerciseSet, bool) {
	for _, idx := range byRecency(history) {
		if s, ok := lastCompletedReps(history[idx].Sets, key); ok {
			return s, true
		}
	}
	return domain.ExerciseSet{}, false
}

func lastCompletedReps(sets []domain.ExerciseSet, key string) (domain.ExerciseSet, bool) {
	for i := len(sets) - 1; i >= 0; i-- {
		s := sets[i]
		if s.Completed && s.ActualReps != nil && nameKey(s.ExerciseName) == key {
			return s, true
		}
	}
	return domain.ExerciseSet{}, false
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if nameKey(x) == nameKey(y) {
				return true
			}
		}
	}
	return false
}

// Nutrition defaults and bounds.
const (
	DefaultCalorieTarget = 2000.0
	DefaultProteinMin    = 120.0
	MinCalorieTarget     = 1200.0
)

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// CompileNutrition computes calorie and protein targets. BMR is Mifflin-St Jeor;
// without body metrics the defaults are used.
func CompileNutrition(g *domain.Goal, m domain.BodyMetrics) NutritionIntent {
	ni := NutritionIntent{
		CalorieTarget: DefaultCalorieTarget,
		ProteinMin:    DefaultProteinMin,
		CarbBias:      carbBias(g),
	}
	if m.WeightKg <= 0 || m.HeightCm <= 0 || m.Age <= 0 {
		return ni
	}

	bmr := 10*m.WeightKg + 6.25*m.HeightCm - 5*float64(m.Age)
	if m.Sex == domain.SexFemale {
		bmr -= 161
	} else {
		bmr += 5
	}
	mult, ok := activityMultipliers[m.ActivityLevel]
	if !ok {
		mult = activityMultipliers["moderate"]
	}
	tdee := bmr*mult + calorieAdjustment(g)
	ni.CalorieTarget = math.Max(MinCalorieTarget, math.Round(tdee))
	ni.ProteinMin = math.Round(m.WeightKg * proteinPerKg(g))
	return ni
}

func calorieAdjustment(g *domain.Goal) float64 {
	if g == nil {
		return 0
	}
	switch g.Category {
	case domain.GoalBodyComposition:
		switch g.Direction {
		case domain.DirectionDecrease:
			return -500
		case domain.DirectionIncrease:
			return 300
		}
	case domain.GoalStrength:
		return 250
	case domain.GoalEndurance:
		return 200
	}
	return 0
}

func proteinPerKg(g *domain.Goal) float64 {
	if g == nil {
		return 1.6
	}
	switch g.Category {
	case domain.GoalStrength, domain.GoalBodyComposition:
		return 2.0
	case domain.GoalEndurance:
		return 1.4
	}
	return 1.6
}

func carbBias(g *domain.Goal) string {
	if g == nil {
		return "moderate"
	}
	switch {
	case g.Category == domain.GoalEndurance:
		return "high"
	case g.Category == domain.GoalBodyComposition && g.Direction == domain.DirectionDecrease:
		return "low"
	}
	return "moderate"
}
