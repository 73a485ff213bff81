package enums

// Outcome classifies how a single analysis run ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"

	// OutcomeInputInvalid is a malformed username. The fetcher is never called.
	OutcomeInputInvalid Outcome = "input_invalid"

	OutcomeUserNotFound  Outcome = "user_not_found"
	OutcomeUserSuspended Outcome = "user_suspended"

	// OutcomeRateLimited means the platform kept answering 429 after the fetcher's retries.
	OutcomeRateLimited Outcome = "rate_limited"

	// OutcomeUnavailable is a transient network or platform fault.
	OutcomeUnavailable Outcome = "unavailable"

	// OutcomeUnauthorized is a credentials problem on our side. Operators are alerted,
	// users only see a generic message.
	OutcomeUnauthorized Outcome = "unauthorized"

	OutcomeInsufficientData Outcome = "insufficient_data"
	OutcomeInternal         Outcome = "internal"
)

// Outcomes lists every outcome in the order they are reported.
var Outcomes = []Outcome{
	OutcomeSuccess,
	OutcomeInputInvalid,
	OutcomeUserNotFound,
	OutcomeUserSuspended,
	OutcomeRateLimited,
	OutcomeUnavailable,
	OutcomeUnauthorized,
	OutcomeInsufficientData,
	OutcomeInternal,
}

// Operational reports whether operators should be alerted about the outcome:
// our credentials were rejected or the platform could not be reached.
func (o Outcome) Operational() bool {
	return o == OutcomeUnauthorized || o == OutcomeUnavailable
}
