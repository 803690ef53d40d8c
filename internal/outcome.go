package internal

// OutcomeKind says why the control loop stopped.
type OutcomeKind string

const (
	// OutcomeCancelled means the loop was stopped from the outside.
	OutcomeCancelled OutcomeKind = "cancelled"

	// OutcomeFailed means an iteration failed and the loop gave up.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of running the control loop. The loop has no other
// way of terminating, so exactly one of the kinds above is always set.
type Outcome struct {
	Kind OutcomeKind

	// Err is an *ObservationError or an *ActuationError for failed outcomes.
	Err error

	// Number of iterations that were started.
	Iterations int
}

func (o Outcome) Cancelled() bool {
	return o.Kind == OutcomeCancelled
}

func (o Outcome) Failed() bool {
	return o.Kind == OutcomeFailed
}
