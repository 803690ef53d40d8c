package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"

	cmdinternal "github.com/spacelift-io/replicascalr/cmd/internal"
	"github.com/spacelift-io/replicascalr/internal"
	"github.com/spacelift-io/replicascalr/internal/tracing"
)

// AWS Lambda entry point. Every invocation, usually coming from an
// EventBridge schedule, runs a single autoscaling iteration.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	var cfg internal.RuntimeConfig
	if err := cfg.Parse(); err != nil {
		logger.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	tp, err := tracing.InitTracer(ctx, logger, tracing.Options{Exporter: string(cfg.TraceExporter), IsLambda: true})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	defer func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("error shutting down tracer provider", "error", err)
		}
	}(ctx)

	handler := func(ctx context.Context) error {
		logger := logger
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			logger = logger.With("aws_request_id", lc.AwsRequestID)
		}

		return cmdinternal.Handle(ctx, logger, &cfg)
	}

	lambda.Start(otellambda.InstrumentHandler(handler, otellambda.WithTracerProvider(tp), otellambda.WithFlusher(tp)))
}
