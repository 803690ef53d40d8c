package internal

import "fmt"

// ObservationError is returned when the current state of the workload could
// not be read from the status endpoint.
type ObservationError struct {
	Err error
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("could not observe workload: %v", e.Err)
}

func (e *ObservationError) Unwrap() error {
	return e.Err
}

// ActuationError is returned when the new replica count could not be applied.
type ActuationError struct {
	Replicas int
	Err      error
}

func (e *ActuationError) Error() string {
	return fmt.Sprintf("could not set replicas to %d: %v", e.Replicas, e.Err)
}

func (e *ActuationError) Unwrap() error {
	return e.Err
}
