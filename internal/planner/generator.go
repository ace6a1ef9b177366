package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
)

// TextGenerator is the external text model. Its output is untrusted.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// AllowedExercise is one exercise the model may use, with its fixed prescription.
// For cardio, Reps is the distance and Weight is 0.
type AllowedExercise struct {
	Name        string
	BodyPart    string
	Compound    bool
	Equipment   string
	Sets        int
	Reps        int
	Weight      float64
	RepRange    RepRange
	FromHistory bool
}

// WorkoutConstraints is everything the generator and validator agree on.
type WorkoutConstraints struct {
	Intent      WorkoutIntent
	Exercises   []AllowedExercise
	PrimaryLift string // must come first when set
}

// Allowed looks an exercise up by name, case-insensitively.
func (c WorkoutConstraints) Allowed(name string) (AllowedExercise, bool) {
	key := nameKey(name)
	for _, e := range c.Exercises {
		if nameKey(e.Name) == key {
			return e, true
		}
	}
	return AllowedExercise{}, false
}

// MealConstraints bounds a meal plan. Replacement marks a single-meal swap,
// which is judged against the soft calorie tolerance and no protein floor.
// Options are the engine-computed combinations the model must choose from.
type MealConstraints struct {
	Nutrition        NutritionIntent
	Slots            []SlotCandidates
	MinServings      float64
	MaxServings      float64
	ServingStep      float64
	CalorieTolerance float64
	Replacement      bool
	Options          []MealOption
}

func (c MealConstraints) candidate(slot domain.MealType, name string) (domain.Meal, bool) {
	key := nameKey(name)
	for _, s := range c.Slots {
		if s.Slot != slot {
			continue
		}
		for _, m := range s.Meals {
			if nameKey(m.Name) == key {
				return m, true
			}
		}
	}
	return domain.Meal{}, false
}

// BlueprintSet is one set as written by the model.
type BlueprintSet struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type BlueprintExercise struct {
	Name         string         `json:"name"`
	Sets         []BlueprintSet `json:"sets"`
	Instructions string         `json:"instructions,omitempty"`
}

// WorkoutBlueprint is the parsed model output for a workout.
type WorkoutBlueprint struct {
	Exercises   []BlueprintExercise `json:"exercises"`
	Explanation string              `json:"explanation"`
}

type BlueprintMeal struct {
	Name     string          `json:"name"`
	Slot     domain.MealType `json:"slot"`
	Servings float64         `json:"servings"`
	Calories float64         `json:"calories,omitempty"` // as stated by the model
	Protein  float64         `json:"protein,omitempty"`
}

// MealBlueprint is the parsed model output for a day of meals.
type MealBlueprint struct {
	Meals       []BlueprintMeal `json:"meals"`
	Explanation string          `json:"explanation"`
}

// BuildWorkoutPrompt renders the workout instruction. feedback holds the
// previous attempt's validation errors, if any.
func BuildWorkoutPrompt(c WorkoutConstraints, feedback []string) string {
	var sb strings.Builder
	sb.WriteString("You are a strength coach writing today's workout.\n")
	sb.WriteString("You must use EXACTLY the exercises listed below with EXACTLY the numbers given.\n")
	sb.WriteString("Do not invent exercises, weights, reps or set counts. You may only choose the order and write short instructions.\n\n")

	fmt.Fprintf(&sb, "Intensity: %s\n", c.Intent.Intensity)
	if len(c.Intent.BodyParts) > 0 {
		fmt.Fprintf(&sb, "Body parts: %s\n", strings.Join(c.Intent.BodyParts, ", "))
	}
	if c.Intent.DayLabel != "" {
		fmt.Fprintf(&sb, "Day: %s\n", c.Intent.DayLabel)
	}
	if c.Intent.Deload {
		sb.WriteString("This is a deload day: loads are already reduced below.\n")
	}
	if c.PrimaryLift != "" {
		fmt.Fprintf(&sb, "The first exercise MUST be %q.\n", c.PrimaryLift)
	}

	sb.WriteString("\nALLOWED EXERCISES:\n")
	for _, e := range c.Exercises {
		kind := "accessory"
		if e.Compound {
			kind = "compound"
		}
		if c.Intent.Cardio {
			fmt.Fprintf(&sb, "- %s (cardio): %d set of %d distance units, weight 0\n", e.Name, e.Sets, e.Reps)
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s, %s): %d sets x %d reps @ %.1f\n", e.Name, e.BodyPart, kind, e.Sets, e.Reps, e.Weight)
	}

	writeFeedback(&sb, feedback)

	sb.WriteString("\nRESPONSE FORMAT (JSON only, no prose):\n")
	sb.WriteString(`{
  "exercises": [
    {"name": "<allowed name>", "sets": [{"weight": 0, "reps": 0}], "instructions": "<one sentence>"}
  ],
  "explanation": "<two sentences on why this session fits the goal>"
}
`)
	return sb.String()
}

// BuildMealPrompt renders the meal instruction. Every quantity comes from
// c.Options; the model only chooses one of them and explains it.
func BuildMealPrompt(c MealConstraints, feedback []string) string {
	var sb strings.Builder
	sb.WriteString("You are a nutrition coach planning meals.\n")
	sb.WriteString("Choose exactly one of the options below and copy its meals, slots and servings unchanged.\n")
	sb.WriteString("Do not invent meals or change servings.\n\n")

	if c.Replacement {
		fmt.Fprintf(&sb, "Replace one meal. Aim for about %.0f kcal.\n", c.Nutrition.CalorieTarget)
	} else {
		fmt.Fprintf(&sb, "Daily target: %.0f kcal (within %.0f), protein at least %.0f g, carbs %s.\n",
			c.Nutrition.CalorieTarget, c.CalorieTolerance, c.Nutrition.ProteinMin, c.Nutrition.CarbBias)
	}

	sb.WriteString("\nOPTIONS:\n")
	for i, o := range c.Options {
		fmt.Fprintf(&sb, "Option %d (%.0f kcal, %.0f g protein):\n", i+1, o.Calories, o.Protein)
		for _, p := range o.Picks {
			fmt.Fprintf(&sb, "- %s: %s x %.2f\n", p.Slot, p.Meal.Name, p.Servings)
		}
	}

	writeFeedback(&sb, feedback)

	sb.WriteString("\nRESPONSE FORMAT (JSON only, no prose):\n")
	sb.WriteString(`{
  "meals": [
    {"name": "<meal name>", "slot": "<slot>", "servings": 1.0}
  ],
  "explanation": "<two sentences on why this option suits the day>"
}
`)
	return sb.String()
}

func writeFeedback(sb *strings.Builder, feedback []string) {
	if len(feedback) == 0 {
		return
	}
	sb.WriteString("\nYOUR PREVIOUS ANSWER WAS REJECTED. Fix these problems:\n")
	for _, f := range feedback {
		fmt.Fprintf(sb, "- %s\n", f)
	}
}

// ParseWorkoutBlueprint decodes model text into a workout blueprint.
func ParseWorkoutBlueprint(text string) (WorkoutBlueprint, error) {
	var bp WorkoutBlueprint
	if err := decodeBlueprint(text, &bp); err != nil {
		return WorkoutBlueprint{}, err
	}
	if bp.Exercises == nil {
		return WorkoutBlueprint{}, newError(KindGenerationParseFailure, "response has no exercises field", nil, nil)
	}
	return bp, nil
}

// ParseMealBlueprint decodes model text into a meal blueprint.
func ParseMealBlueprint(text string) (MealBlueprint, error) {
	// servings is a pointer so an explicit 0 stays 0 and fails validation
	var wire struct {
		Meals []struct {
			Name     string          `json:"name"`
			Slot     domain.MealType `json:"slot"`
			Servings *float64        `json:"servings"`
			Calories float64         `json:"calories"`
			Protein  float64         `json:"protein"`
		} `json:"meals"`
		Explanation string `json:"explanation"`
	}
	if err := decodeBlueprint(text, &wire); err != nil {
		return MealBlueprint{}, err
	}
	if wire.Meals == nil {
		return MealBlueprint{}, newError(KindGenerationParseFailure, "response has no meals field", nil, nil)
	}
	bp := MealBlueprint{Meals: make([]BlueprintMeal, len(wire.Meals)), Explanation: wire.Explanation}
	for i, m := range wire.Meals {
		servings := 1.0
		if m.Servings != nil {
			servings = *m.Servings
		}
		bp.Meals[i] = BlueprintMeal{Name: m.Name, Slot: m.Slot, Servings: servings, Calories: m.Calories, Protein: m.Protein}
	}
	return bp, nil
}

func decodeBlueprint(text string, v any) error {
	raw := extractJSON(text)
	if raw == "" {
		return newError(KindGenerationParseFailure, "response contains no JSON object", nil, nil)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return newError(KindGenerationParseFailure, "response is not valid JSON", nil, err)
	}
	return nil
}

// extractJSON strips markdown fences, keeps the outermost object and drops
// // comments outside strings. It returns "" when there is no object.
func extractJSON(s string) string {
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+7:]
	} else if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}

	lines := strings.Split(s[start:end+1], "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

func stripLineComment(line string) string {
	inString, escaped := false, false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
