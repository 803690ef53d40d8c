package tracing

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	lambdadetector "go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by InitTracer.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterXRay   = "xray"
)

// Options configure InitTracer.
type Options struct {
	// Exporter is one of ExporterNone, ExporterStdout or ExporterXRay.
	Exporter string

	// IsLambda adds the AWS Lambda resource attributes to every span.
	IsLambda bool

	// Writer receives spans for the stdout exporter. Defaults to stdout.
	Writer io.Writer
}

// InitTracer builds a tracer provider and installs it as the global one.
func InitTracer(ctx context.Context, logger *slog.Logger, opts Options) (*trace.TracerProvider, error) {
	var tpOpts []trace.TracerProviderOption

	if opts.IsLambda {
		lambdaResource, err := lambdadetector.NewResourceDetector().Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not detect lambda resource attributes: %w", err)
		}
		tpOpts = append(tpOpts, trace.WithResource(lambdaResource))
	}

	switch opts.Exporter {
	case "", ExporterNone:
		logger.Debug("tracing exporter disabled")
	case ExporterStdout:
		stdoutOpts := []stdouttrace.Option{}
		if opts.Writer != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(opts.Writer))
		}

		exporter, err := stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, fmt.Errorf("could not initialize stdout exporter: %w", err)
		}
		tpOpts = append(tpOpts, trace.WithSpanProcessor(trace.NewSimpleSpanProcessor(exporter)))
	case ExporterXRay:
		exporter, err := xrayudp.NewSpanExporter(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not initialize xray exporter: %w", err)
		}
		tpOpts = append(tpOpts, trace.WithSpanProcessor(trace.NewSimpleSpanProcessor(exporter)))
		tpOpts = append(tpOpts, trace.WithIDGenerator(xray.NewIDGenerator()))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", opts.Exporter)
	}

	tp := trace.NewTracerProvider(tpOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(xray.Propagator{})

	return tp, nil
}
