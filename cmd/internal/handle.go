package internal

import (
	"context"
	"fmt"
	"log/slog"

	"code.cloudfoundry.org/clock"

	"github.com/spacelift-io/replicascalr/internal"
)

// Run runs the control loop until the context is cancelled or an iteration
// fails.
func Run(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) internal.Outcome {
	return newAutoScaler(cfg, logger).Run(ctx)
}

// Handle runs a single autoscaling iteration. It is meant for runtimes where
// something else, like a scheduler, takes care of calling us periodically.
func Handle(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) error {
	decision, err := newAutoScaler(cfg, logger).Scale(ctx)
	if err != nil {
		return fmt.Errorf("could not scale: %w", err)
	}

	logger.Info(
		"autoscaling iteration completed",
		"direction", decision.ScalingDirection.String(),
		"current_replicas", decision.CurrentReplicas,
		"desired_replicas", decision.DesiredReplicas,
	)

	return nil
}

func newAutoScaler(cfg *internal.RuntimeConfig, logger *slog.Logger) *internal.AutoScaler {
	controller := internal.NewController(cfg)

	logger = logger.With(
		"status_url", cfg.StatusURL,
		"replicas_url", cfg.ReplicasURL,
	)

	return internal.NewAutoScaler(controller, controller, *cfg, clock.NewClock(), logger)
}
