package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/sources"
)

const genericPlatformMessage = "Reddit could not be reached right now. Please try again later."

// Failure is the single error type returned by Analyze. Kind keeps the internal cause
// visible to operators; Message is what end users get to see.
type Failure struct {
	Kind     enums.Outcome
	Username string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("analysis failed: %s", f.Kind)
	}
	return fmt.Sprintf("analysis failed: %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) Message() string {
	switch f.Kind {
	case enums.OutcomeInputInvalid:
		return "Please enter a valid Reddit username"
	case enums.OutcomeUserNotFound:
		return fmt.Sprintf("User %q not found", f.Username)
	case enums.OutcomeUserSuspended:
		return fmt.Sprintf("User %q is suspended or unavailable", f.Username)
	case enums.OutcomeInsufficientData:
		return fmt.Sprintf("User %q has no public posts or comments to analyze", f.Username)
	default:
		return genericPlatformMessage
	}
}

// OutcomeOf classifies any error returned by Analyze. A nil error is a success.
func OutcomeOf(err error) enums.Outcome {
	if err == nil {
		return enums.OutcomeSuccess
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return enums.OutcomeInternal
}

func classifyFetchError(err error) enums.Outcome {
	switch {
	case errors.Is(err, sources.ErrUserNotFound):
		return enums.OutcomeUserNotFound
	case errors.Is(err, sources.ErrUserSuspended):
		return enums.OutcomeUserSuspended
	case errors.Is(err, sources.ErrRateLimited):
		return enums.OutcomeRateLimited
	case errors.Is(err, sources.ErrUnauthorized):
		return enums.OutcomeUnauthorized
	case errors.Is(err, sources.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return enums.OutcomeUnavailable
	default:
		return enums.OutcomeInternal
	}
}
