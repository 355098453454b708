package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Outcome classifies how a command run ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeTimedOut  Outcome = "timed_out"
)

const (
	InvalidCode  = "MAPS_COMMAND_INVALID"
	FailedCode   = "MAPS_COMMAND_FAILED"
	CanceledCode = "MAPS_COMMAND_CANCELED"
	TimeoutCode  = "MAPS_COMMAND_TIMEOUT"
)

type outcomeClass struct {
	category goerrors.Category
	code     string
	message  string
}

var outcomeClasses = map[Outcome]outcomeClass{
	OutcomeInvalid:  {goerrors.CategoryValidation, InvalidCode, "command message rejected"},
	OutcomeFailed:   {goerrors.CategoryCommand, FailedCode, "command failed"},
	OutcomeCanceled: {goerrors.CategoryCommand, CanceledCode, "command canceled"},
	OutcomeTimedOut: {goerrors.CategoryCommand, TimeoutCode, "command deadline exceeded"},
}

// contextOutcome maps a context error to its outcome.
func contextOutcome(err error) Outcome {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimedOut
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeFailed
	}
}

// categorise tags err with the category and text code of outcome. Errors
// that already carry a category pass through untouched.
func categorise(outcome Outcome, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	class, ok := outcomeClasses[outcome]
	if !ok {
		class = outcomeClasses[OutcomeFailed]
	}
	return goerrors.Wrap(err, class.category, class.message).WithTextCode(class.code)
}
