package metrics

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName          = "github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	problemCounterName = "http.server.problems"
)

// ProblemCounter counts problem responses by status and type.
type ProblemCounter struct {
	counter metric.Int64Counter
}

// NewProblemCounter registers the problem counter on mp.
func NewProblemCounter(mp metric.MeterProvider) (*ProblemCounter, error) {
	counter, err := mp.Meter(meterName).Int64Counter(problemCounterName,
		metric.WithDescription("Number of problem+json responses written"),
		metric.WithUnit("{problem}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", problemCounterName, err)
	}
	return &ProblemCounter{counter: counter}, nil
}

// RecordProblem implements problems.Recorder.
func (c *ProblemCounter) RecordProblem(ctx context.Context, p problem.Problem) {
	c.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("http.response.status_code", p.StatusOrDefault()),
		attribute.String("problem.type", p.Type()),
	))
}
