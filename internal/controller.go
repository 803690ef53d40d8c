package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/replicascalr/internal/ifaces"
)

// Controller is responsible for handling interactions with the workload's
// HTTP API so that the autoscaler can focus on the core logic. It implements
// both StatusClient and ActuationClient.
type Controller struct {
	// Clients.
	HTTP ifaces.HTTPClient

	// Configuration.
	StatusURL   string
	ReplicasURL string

	// Telemetry.
	Tracer trace.Tracer
}

// NewController creates a controller talking to the endpoints in the config.
func NewController(cfg *RuntimeConfig) *Controller {
	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: otelhttp.NewTransport(
			http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
	}

	return &Controller{
		HTTP:        httpClient,
		StatusURL:   cfg.StatusURL,
		ReplicasURL: cfg.ReplicasURL,
		Tracer:      otel.Tracer("github.com/spacelift-io/replicascalr/internal/controller"),
	}
}

// GetObservation reads the current CPU utilization and replica count.
func (c *Controller) GetObservation(ctx context.Context) (out Observation, err error) {
	ctx, span := c.Tracer.Start(ctx, "workload.status.get")
	defer span.End()

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "")
			err = &ObservationError{Err: err}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatusURL, nil)
	if err != nil {
		return out, fmt.Errorf("could not build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return out, fmt.Errorf("could not get status: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if err = checkStatus(resp); err != nil {
		return out, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("could not read status response: %w", err)
	}

	if out, err = ParseObservation(body); err != nil {
		return out, err
	}

	span.SetAttributes(
		attribute.Float64("cpu_utilization", out.CPUUtilization),
		attribute.Int("replicas", out.Replicas),
	)

	return out, nil
}

// SetReplicas asks the workload to run the given number of replicas. It does
// not wait for the change to take effect.
func (c *Controller) SetReplicas(ctx context.Context, replicas int) (err error) {
	ctx, span := c.Tracer.Start(ctx, "workload.replicas.set")
	defer span.End()

	span.SetAttributes(attribute.Int("replicas", replicas))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "")
			err = &ActuationError{Replicas: replicas, Err: err}
		}
	}()

	if replicas < 1 {
		return fmt.Errorf("replica count must be at least 1")
	}

	payload, err := json.Marshal(replicasRequest{Replicas: replicas})
	if err != nil {
		return fmt.Errorf("could not encode replicas request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.ReplicasURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("could not build replicas request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("could not update replicas: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return checkStatus(resp)
}

type replicasRequest struct {
	Replicas int `json:"replicas"`
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Keep a bit of the body around, it usually says what went wrong.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if msg := bytes.TrimSpace(body); len(msg) > 0 {
		return fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
	}

	return fmt.Errorf("unexpected status %s", resp.Status)
}
