package planner

import (
	"context"
	"fmt"
)

type loopState int

const (
	stateAttempt loopState = iota
	stateGenerate
	stateValidate
	stateRetry
	stateAccept
	stateFail
)

func (s loopState) String() string {
	return [...]string{"attempt", "generate", "validate", "retry", "accept", "fail"}[s]
}

// Outcome is an accepted blueprint with its validation and the attempts used.
type Outcome[B any] struct {
	Blueprint B
	Result    ValidationResult
	Attempts  int
}

type (
	WorkoutOutcome = Outcome[WorkoutBlueprint]
	MealOutcome    = Outcome[MealBlueprint]
)

// loop is the generate/validate/retry machine for one blueprint kind.
// Attempts run strictly one after another.
type loop[B any] struct {
	gen      TextGenerator
	max      int
	what     string
	prompt   func(feedback []string) string
	parse    func(text string) (B, error)
	validate func(B) ValidationResult

	state     loopState
	attempt   int
	feedback  []string
	blueprint B
	result    ValidationResult
	err       error
}

func (l *loop[B]) step(ctx context.Context) {
	switch l.state {
	case stateAttempt:
		if err := ctx.Err(); err != nil {
			l.err = err
			l.state = stateFail
			return
		}
		if l.attempt >= l.max {
			l.err = newError(KindGenerationExhausted,
				fmt.Sprintf("%s generation failed after %d attempts", l.what, l.attempt), l.feedback, nil)
			l.state = stateFail
			return
		}
		l.attempt++
		l.state = stateGenerate

	case stateGenerate:
		text, err := l.gen.GenerateText(ctx, l.prompt(l.feedback))
		if err != nil {
			l.err = err
			l.state = stateFail
			return
		}
		bp, err := l.parse(text)
		if err != nil {
			l.feedback = []string{"the response could not be parsed as the required JSON object"}
			l.state = stateRetry
			return
		}
		l.blueprint = bp
		l.state = stateValidate

	case stateValidate:
		l.result = l.validate(l.blueprint)
		if l.result.Valid {
			l.state = stateAccept
			return
		}
		l.feedback = l.result.Errors
		l.state = stateRetry

	case stateRetry:
		l.state = stateAttempt
	}
}

func (l *loop[B]) run(ctx context.Context) (Outcome[B], error) {
	for l.state != stateAccept && l.state != stateFail {
		l.step(ctx)
	}
	if l.state == stateFail {
		return Outcome[B]{}, l.err
	}
	return Outcome[B]{Blueprint: l.blueprint, Result: l.result, Attempts: l.attempt}, nil
}

// Orchestrator runs the bounded generate/validate loops against a text model.
type Orchestrator struct {
	gen    TextGenerator
	tuning Tuning
}

func NewOrchestrator(gen TextGenerator, t Tuning) *Orchestrator {
	return &Orchestrator{gen: gen, tuning: t.withDefaults()}
}

// Tuning returns the effective settings.
func (o *Orchestrator) Tuning() Tuning { return o.tuning }

// GenerateWorkout returns the first blueprint that passes validation.
// Transport errors from the model are returned as-is; parse failures and
// violations are retried until the attempt budget runs out.
func (o *Orchestrator) GenerateWorkout(ctx context.Context, c WorkoutConstraints) (WorkoutOutcome, error) {
	if len(c.Exercises) == 0 {
		return WorkoutOutcome{}, newError(KindNoCandidatesAvailable, "no exercises to plan", nil, nil)
	}
	l := &loop[WorkoutBlueprint]{
		gen:      o.gen,
		max:      o.tuning.WorkoutAttempts,
		what:     "workout",
		prompt:   func(fb []string) string { return BuildWorkoutPrompt(c, fb) },
		parse:    ParseWorkoutBlueprint,
		validate: func(bp WorkoutBlueprint) ValidationResult { return ValidateWorkout(bp, c, o.tuning) },
	}
	return l.run(ctx)
}

// GenerateMeals is the meal counterpart of GenerateWorkout, with its own budget.
func (o *Orchestrator) GenerateMeals(ctx context.Context, c MealConstraints) (MealOutcome, error) {
	if len(c.Slots) == 0 {
		return MealOutcome{}, newError(KindNoCandidatesAvailable, "no meal slots to plan", nil, nil)
	}
	if c.MinServings <= 0 {
		c.MinServings, c.MaxServings, c.ServingStep = o.tuning.MinServings, o.tuning.MaxServings, o.tuning.ServingStep
	}
	if c.CalorieTolerance <= 0 {
		c.CalorieTolerance = o.tuning.CalorieTolerance
	}
	if c.Options == nil {
		c.Options = PlanMealOptions(c, o.tuning)
	}
	if len(c.Options) == 0 {
		return MealOutcome{}, newError(KindNoCandidatesAvailable,
			fmt.Sprintf("no meal combination reaches %.0f kcal with at least %.0f g protein", c.Nutrition.CalorieTarget, c.Nutrition.ProteinMin), nil, nil)
	}
	l := &loop[MealBlueprint]{
		gen:      o.gen,
		max:      o.tuning.MealAttempts,
		what:     "meal",
		prompt:   func(fb []string) string { return BuildMealPrompt(c, fb) },
		parse:    ParseMealBlueprint,
		validate: func(bp MealBlueprint) ValidationResult { return ValidateMeals(bp, c, o.tuning) },
	}
	return l.run(ctx)
}
