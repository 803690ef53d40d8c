package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Observation is a single snapshot of the workload, as reported by the status
// endpoint. CPUUtilization uses the same scale as the target utilization, so
// 0.8 means 80%.
type Observation struct {
	CPUUtilization float64
	Replicas       int
}

// MaxReplicas is the largest replica count accepted from the status endpoint.
const MaxReplicas = math.MaxInt32

// StatusPayload is the subset of the status endpoint response we care about.
// Fields are pointers so that missing values can be told apart from zeroes.
// Replicas is decoded as a number so that whole values like 3.0 are accepted.
type StatusPayload struct {
	CPU *struct {
		HighPriority *float64 `json:"highPriority"`
	} `json:"cpu"`
	Replicas *float64 `json:"replicas"`
}

// ParseObservation decodes the status endpoint response body.
func ParseObservation(body []byte) (Observation, error) {
	var payload StatusPayload

	if err := json.Unmarshal(body, &payload); err != nil {
		return Observation{}, fmt.Errorf("invalid status payload: %w", err)
	}

	return payload.Observation()
}

// Observation validates the payload and converts it into an Observation.
func (p StatusPayload) Observation() (Observation, error) {
	var errs []error

	if p.CPU == nil || p.CPU.HighPriority == nil {
		errs = append(errs, errors.New("cpu.highPriority not present"))
	} else if cpu := *p.CPU.HighPriority; math.IsNaN(cpu) || math.IsInf(cpu, 0) || cpu < 0 {
		errs = append(errs, fmt.Errorf("invalid cpu.highPriority: %v", cpu))
	}

	if p.Replicas == nil {
		errs = append(errs, errors.New("replicas not present"))
	} else if replicas := *p.Replicas; replicas != math.Trunc(replicas) || replicas < 1 || replicas > MaxReplicas {
		errs = append(errs, fmt.Errorf("invalid replicas: %v", replicas))
	}

	if err := errors.Join(errs...); err != nil {
		return Observation{}, err
	}

	return Observation{
		CPUUtilization: *p.CPU.HighPriority,
		Replicas:       int(*p.Replicas),
	}, nil
}
