package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/praxis-legal/praxis/internal/service"
)

const meterName = "praxis"

// Metrics holds the Praxis metric instruments. It implements the metrics
// interfaces of the service layer.
type Metrics struct {
	completions       metric.Int64Counter
	completionLatency metric.Float64Histogram
	completionCost    metric.Float64Histogram
	analyses          metric.Int64Counter
}

var (
	_ service.ProviderMetrics = (*Metrics)(nil)
	_ service.AnalysisMetrics = (*Metrics)(nil)
)

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.completions, err = meter.Int64Counter("praxis.llm.completions",
		metric.WithDescription("Number of LLM completion calls"))
	if err != nil {
		return nil, err
	}

	m.completionLatency, err = meter.Float64Histogram("praxis.llm.latency_seconds",
		metric.WithDescription("LLM completion latency in seconds"))
	if err != nil {
		return nil, err
	}

	m.completionCost, err = meter.Float64Histogram("praxis.llm.cost_usd",
		metric.WithDescription("Estimated LLM completion cost in USD"))
	if err != nil {
		return nil, err
	}

	m.analyses, err = meter.Int64Counter("praxis.analysis.jobs",
		metric.WithDescription("Analysis and drafting jobs by lifecycle state"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCompletion records one LLM provider call.
func (m *Metrics) RecordCompletion(ctx context.Context, provider, model string, latency time.Duration, costUSD float64, failed bool) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.Bool("failed", failed),
	)
	m.completions.Add(ctx, 1, attrs)
	m.completionLatency.Record(ctx, latency.Seconds(), attrs)
	if costUSD > 0 {
		m.completionCost.Record(ctx, costUSD, attrs)
	}
}

// RecordAnalysis counts an analysis or drafting lifecycle event.
func (m *Metrics) RecordAnalysis(ctx context.Context, kind, status string) {
	m.analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}
