package internal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StatusClient reads the current state of the workload.
type StatusClient interface {
	GetObservation(ctx context.Context) (Observation, error)
}

// ActuationClient requests a new replica count for the workload.
type ActuationClient interface {
	SetReplicas(ctx context.Context, replicas int) error
}

//go:generate mockery --output ./ --name ControllerInterface --filename mock_controller_test.go --outpkg internal_test
type ControllerInterface interface {
	StatusClient
	ActuationClient
}

type AutoScaler struct {
	status    StatusClient
	actuation ActuationClient
	cfg       RuntimeConfig
	clock     clock.Clock
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewAutoScaler(status StatusClient, actuation ActuationClient, cfg RuntimeConfig, clk clock.Clock, logger *slog.Logger) *AutoScaler {
	return &AutoScaler{
		status:    status,
		actuation: actuation,
		cfg:       cfg,
		clock:     clk,
		logger:    logger,
		tracer:    otel.Tracer("github.com/spacelift-io/replicascalr/internal/autoscaler"),
	}
}

// Scale runs a single observe, decide, act pass. Errors coming from the
// collaborators are returned as *ObservationError or *ActuationError. If the
// context is cancelled before acting, the context error is returned and no
// actuation is attempted.
func (s *AutoScaler) Scale(ctx context.Context) (decision Decision, err error) {
	ctx, span := s.tracer.Start(ctx, "autoscaling.iteration")
	defer span.End()

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "")
		}
	}()

	observation, err := s.status.GetObservation(ctx)
	if err != nil {
		return decision, asObservationError(err)
	}

	logger := s.logger.With(
		"cpu_utilization", observation.CPUUtilization,
		"current_replicas", observation.Replicas,
	)

	decision = Decide(observation, s.cfg.TargetCPUUtilization)

	span.SetAttributes(
		attribute.Float64("cpu_utilization", observation.CPUUtilization),
		attribute.Int("current_replicas", decision.CurrentReplicas),
		attribute.Int("desired_replicas", decision.DesiredReplicas),
		attribute.String("direction", decision.ScalingDirection.String()),
	)

	if decision.ScalingDirection == ScalingDirectionNone {
		logger.Info("no scaling decision to be made")
		return decision, nil
	}

	if err = ctx.Err(); err != nil {
		return decision, err
	}

	logger.With(
		"desired_replicas", decision.DesiredReplicas,
		"comments", decision.Comments,
	).Info("scaling " + decision.ScalingDirection.String())

	if err = s.actuation.SetReplicas(ctx, decision.DesiredReplicas); err != nil {
		return decision, asActuationError(err, decision.DesiredReplicas)
	}

	return decision, nil
}

// Run drives the control loop until the context is cancelled or an iteration
// fails. Cancellation is honoured between iterations and while waiting for
// the next one; an iteration that is already running is not interrupted
// other than through its context.
func (s *AutoScaler) Run(ctx context.Context) Outcome {
	s.logger.Info(
		"autoscaler started",
		"target_cpu_utilization", s.cfg.TargetCPUUtilization,
		"poll_interval", s.cfg.PollInterval,
	)

	var iterations int

	for {
		if ctx.Err() != nil {
			return Outcome{Kind: OutcomeCancelled, Iterations: iterations}
		}

		iterations++
		s.logger.Debug("starting iteration", "iteration", iterations)

		if err := s.scaleWithRetry(ctx); err != nil {
			if ctx.Err() != nil {
				return Outcome{Kind: OutcomeCancelled, Iterations: iterations}
			}

			return Outcome{Kind: OutcomeFailed, Err: err, Iterations: iterations}
		}

		timer := s.clock.NewTimer(s.cfg.PollInterval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return Outcome{Kind: OutcomeCancelled, Iterations: iterations}
		case <-timer.C():
		}
	}
}

func (s *AutoScaler) scaleWithRetry(ctx context.Context) error {
	if s.cfg.RetryMaxAttempts == 0 {
		_, err := s.Scale(ctx)
		return err
	}

	expBackOff := backoff.NewExponentialBackOff()
	expBackOff.InitialInterval = s.cfg.RetryInitialInterval
	expBackOff.MaxElapsedTime = 0
	expBackOff.Clock = s.clock

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackOff, uint64(s.cfg.RetryMaxAttempts)), ctx)

	operation := func() error {
		_, err := s.Scale(ctx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		s.logger.Warn("iteration failed, retrying", "error", err, "backoff", wait)
	}

	return backoff.RetryNotifyWithTimer(operation, policy, notify, &clockTimer{clock: s.clock})
}

// clockTimer lets the backoff waits run on the scaler's clock.
type clockTimer struct {
	clock clock.Clock
	timer clock.Timer
}

func (t *clockTimer) Start(d time.Duration) {
	t.Stop()
	t.timer = t.clock.NewTimer(d)
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.timer.C()
}

func asObservationError(err error) error {
	var target *ObservationError
	if errors.As(err, &target) || errors.Is(err, context.Canceled) {
		return err
	}
	return &ObservationError{Err: err}
}

func asActuationError(err error, replicas int) error {
	var target *ActuationError
	if errors.As(err, &target) || errors.Is(err, context.Canceled) {
		return err
	}
	return &ActuationError{Replicas: replicas, Err: err}
}
