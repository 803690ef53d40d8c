package internal

import (
	"fmt"
	"math"
)

// ScalingDirection represents the direction in which the autoscaler should
// scale.
type ScalingDirection int

const (
	ScalingDirectionNone ScalingDirection = iota
	ScalingDirectionUp
	ScalingDirectionDown
)

func (d ScalingDirection) String() string {
	switch d {
	case ScalingDirectionUp:
		return "up"
	case ScalingDirectionDown:
		return "down"
	default:
		return "none"
	}
}

// Decision represents the decision made by the autoscaler.
type Decision struct {
	// Which direction to scale in.
	ScalingDirection ScalingDirection

	// Replica count as observed, and the one we want to get to.
	CurrentReplicas int
	DesiredReplicas int

	// Comments explaining the decision.
	Comments []string
}

// ComputeDesiredReplicas returns the replica count that would bring the
// observed CPU utilization to the target, assuming load spreads evenly. The
// result is truncated toward zero, never lower than 1 and saturates at
// math.MaxInt.
func ComputeDesiredReplicas(observation Observation, targetUtilization float64) int {
	raw := proportionalReplicas(observation, targetUtilization)

	// float64(math.MaxInt) rounds up to 2^63, which does not fit an int.
	if raw >= float64(math.MaxInt) {
		return math.MaxInt
	}

	return max(1, int(raw))
}

func proportionalReplicas(observation Observation, targetUtilization float64) float64 {
	return float64(observation.Replicas) * (observation.CPUUtilization / targetUtilization)
}

// Decide turns an observation into a scaling decision.
func Decide(observation Observation, targetUtilization float64) Decision {
	desired := ComputeDesiredReplicas(observation, targetUtilization)

	decision := Decision{
		CurrentReplicas: observation.Replicas,
		DesiredReplicas: desired,
	}

	switch {
	case desired > observation.Replicas:
		decision.ScalingDirection = ScalingDirectionUp
		decision.Comments = []string{fmt.Sprintf("cpu utilization %.4f above target %.4f", observation.CPUUtilization, targetUtilization)}
	case desired < observation.Replicas:
		decision.ScalingDirection = ScalingDirectionDown
		decision.Comments = []string{fmt.Sprintf("cpu utilization %.4f below target %.4f", observation.CPUUtilization, targetUtilization)}
	default:
		decision.ScalingDirection = ScalingDirectionNone
		decision.Comments = []string{"replica count already at the right size"}
	}

	if proportionalReplicas(observation, targetUtilization) < 1 {
		decision.Comments = append(decision.Comments, "clamped to the minimum of 1 replica")
	}

	return decision
}
