package planner

import (
	"errors"
	"strings"
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindNoActiveGoal           ErrorKind = "NoActiveGoal"
	KindNoCandidatesAvailable  ErrorKind = "NoCandidatesAvailable"
	KindGenerationParseFailure ErrorKind = "GenerationParseFailure"
	KindConstraintViolation    ErrorKind = "ConstraintViolation"
	KindGenerationExhausted    ErrorKind = "GenerationExhausted"
	KindDuplicateSession       ErrorKind = "DuplicateSession"
	KindImmutableItem          ErrorKind = "ImmutableItem"
)

// PlanError is the single error type surfaced by plan generation.
// Message is safe to show to a user; it never contains raw model output.
type PlanError struct {
	Kind       ErrorKind
	Message    string
	Violations []string
	Err        error
}

func (e *PlanError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Violations) > 0 {
		msg += ": " + strings.Join(e.Violations, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlanError) Unwrap() error { return e.Err }

// Is matches any PlanError of the same kind, so the sentinels below work with errors.Is.
func (e *PlanError) Is(target error) bool {
	t, ok := target.(*PlanError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoActiveGoal           = &PlanError{Kind: KindNoActiveGoal, Message: "no active goal"}
	ErrNoCandidatesAvailable  = &PlanError{Kind: KindNoCandidatesAvailable, Message: "no candidates available"}
	ErrGenerationParseFailure = &PlanError{Kind: KindGenerationParseFailure, Message: "generated plan could not be parsed"}
	ErrConstraintViolation    = &PlanError{Kind: KindConstraintViolation, Message: "generated plan violates constraints"}
	ErrGenerationExhausted    = &PlanError{Kind: KindGenerationExhausted, Message: "generation exhausted"}
	ErrDuplicateSession       = &PlanError{Kind: KindDuplicateSession, Message: "a session already exists for this date"}
	ErrImmutableItem          = &PlanError{Kind: KindImmutableItem, Message: "item is already completed"}
)

// newError builds a PlanError of kind with a specific message.
func newError(kind ErrorKind, message string, violations []string, cause error) *PlanError {
	return &PlanError{Kind: kind, Message: message, Violations: violations, Err: cause}
}

// NewError is exported for callers outside the engine (services) that raise engine kinds.
func NewError(kind ErrorKind, message string) *PlanError {
	return newError(kind, message, nil, nil)
}

// KindOf returns the kind of a PlanError anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
