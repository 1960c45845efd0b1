package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the parity validator.
type Metrics struct {
	ChecksRun     metric.Int64Counter
	Discrepancies metric.Int64Counter
	SourceCalls   metric.Int64Counter
	CheckDuration metric.Float64Histogram
}

// NewMetrics creates the validator metric instruments. Instruments record
// through the global meter provider, so without one configured they are
// no-ops.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("omparity")

	checksRun, err := meter.Int64Counter("omparity.check.count",
		metric.WithDescription("Number of endpoint checks executed"),
	)
	if err != nil {
		return nil, err
	}

	discrepancies, err := meter.Int64Counter("omparity.discrepancy.count",
		metric.WithDescription("Unexpected discrepancies reported by checks"),
	)
	if err != nil {
		return nil, err
	}

	sourceCalls, err := meter.Int64Counter("omparity.source.calls",
		metric.WithDescription("Data source invocations, REST API and mongocli"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram("omparity.check.duration_seconds",
		metric.WithDescription("Wall-clock duration of one endpoint check"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ChecksRun:     checksRun,
		Discrepancies: discrepancies,
		SourceCalls:   sourceCalls,
		CheckDuration: checkDuration,
	}, nil
}

// RecordCheck records a completed endpoint check.
func (m *Metrics) RecordCheck(ctx context.Context, endpoint string, passed bool, d time.Duration) {
	m.ChecksRun.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.Bool("passed", passed),
		),
	)
	m.CheckDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("endpoint", endpoint)),
	)
}

// RecordDiscrepancies adds the unexpected discrepancies found for an endpoint.
func (m *Metrics) RecordDiscrepancies(ctx context.Context, endpoint string, n int) {
	m.Discrepancies.Add(ctx, int64(n),
		metric.WithAttributes(attribute.String("endpoint", endpoint)),
	)
}

// RecordSourceCall records one data source invocation.
func (m *Metrics) RecordSourceCall(ctx context.Context, source string) {
	m.SourceCalls.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}
