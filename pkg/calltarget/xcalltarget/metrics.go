package xcalltarget

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	instrumentationName = "github.com/omeyang/xagent/xcalltarget"

	metricBind         = "xagent.calltarget.bind"
	metricBindDuration = "xagent.calltarget.bind.duration"
	metricGuardPanic   = "xagent.calltarget.guard.panic"

	attrKind        = "kind"
	attrOutcome     = "outcome"
	attrIntegration = "integration"
)

type metrics struct {
	bind     metric.Int64Counter
	duration metric.Float64Histogram
	panics   metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	bind, err := meter.Int64Counter(
		metricBind,
		metric.WithDescription("Handler signature bindings by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bind counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		metricBindDuration,
		metric.WithDescription("Handler signature binding duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bind histogram: %w", err)
	}
	panics, err := meter.Int64Counter(
		metricGuardPanic,
		metric.WithDescription("Hook panics recovered by the call guard"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create panic counter: %w", err)
	}
	return &metrics{bind: bind, duration: duration, panics: panics}, nil
}

func noopMetrics() *metrics {
	m, _ := newMetrics(noop.NewMeterProvider()) //nolint:errcheck // noop 不会失败
	return m
}

func (m *metrics) recordBind(sig Signature, outcome Outcome, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrKind, sig.Kind.String()),
		attribute.String(attrOutcome, outcome.String()),
		attribute.String(attrIntegration, sig.IntegrationName()),
	)
	ctx := context.Background()
	m.bind.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

func (m *metrics) recordPanic(sig Signature) {
	m.panics.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(attrKind, sig.Kind.String()),
		attribute.String(attrIntegration, sig.IntegrationName()),
	))
}
