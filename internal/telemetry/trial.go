package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/culpritdev/culprit/internal/trial"
)

const trialScopeName = "github.com/culpritdev/culprit/trial"

// InstrumentedOracle wraps a trial.Oracle with OTel tracing and metrics.
// Every judged candidate gets a span and is counted in culprit.trial.*
// metrics. Use WrapOracle to create one; it returns the original oracle
// unchanged when telemetry is disabled.
type InstrumentedOracle struct {
	inner    trial.Oracle
	tracer   trace.Tracer
	trials   metric.Int64Counter
	verdicts metric.Int64Counter
	dur      metric.Float64Histogram
	errs     metric.Int64Counter
}

// WrapOracle returns o decorated with OTel instrumentation.
// When telemetry is disabled, o is returned as-is with zero overhead.
func WrapOracle(o trial.Oracle) trial.Oracle {
	if !Enabled() {
		return o
	}
	m := Meter(trialScopeName)
	trials, _ := m.Int64Counter("culprit.trial.count",
		metric.WithDescription("Total candidates judged"),
	)
	verdicts, _ := m.Int64Counter("culprit.trial.verdicts",
		metric.WithDescription("Trial verdicts by kind"),
	)
	dur, _ := m.Float64Histogram("culprit.trial.duration",
		metric.WithDescription("Trial duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("culprit.trial.errors",
		metric.WithDescription("Trials that failed before producing a verdict"),
	)
	return &InstrumentedOracle{
		inner:    o,
		tracer:   Tracer(trialScopeName),
		trials:   trials,
		verdicts: verdicts,
		dur:      dur,
		errs:     errs,
	}
}

// Judge runs the inner oracle inside a span and records trial metrics.
func (w *InstrumentedOracle) Judge(ctx context.Context, t trial.Trial) (trial.Outcome, error) {
	attrs := []attribute.KeyValue{
		attribute.String("vcs.revision", t.Candidate),
		attribute.Int("trial.patchset.size", len(t.Patchset)),
	}
	ctx, span := w.tracer.Start(ctx, "trial.judge",
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	w.trials.Add(ctx, 1)
	start := time.Now()

	out, err := w.inner.Judge(ctx, t)

	w.dur.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.errs.Add(ctx, 1)
		return out, err
	}

	span.SetAttributes(attribute.String("trial.verdict", string(out.Verdict)))
	if out.Range != "" {
		span.SetAttributes(attribute.String("trial.skip_range", out.Range))
	}
	w.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", string(out.Verdict)),
	))
	return out, nil
}
