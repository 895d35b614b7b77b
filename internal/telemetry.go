// Package internal contains the telemetry shared by the library components.
package internal

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/FerroO2000/rbam"

var consoleHandler slog.Handler = tint.NewHandler(colorable.NewColorableStderr(), &tint.Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.TimeOnly,
	NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
})

// SetConsoleHandler replaces the handler used to print logs on the console.
// It only affects the telemetry created afterwards.
func SetConsoleHandler(handler slog.Handler) {
	consoleHandler = handler
}

// Telemetry groups the logger, the meter and the tracer of a component.
type Telemetry struct {
	scope string

	logger *slog.Logger
	meter  metric.Meter
	tracer trace.Tracer
}

// NewTelemetry returns the telemetry for the component identified
// by the given kind (e.g. ring_buffer) and name.
func NewTelemetry(kind, name string) *Telemetry {
	scope := kind + "." + name

	handler := newFanoutHandler(consoleHandler, otelslog.NewHandler(instrumentationName))

	return &Telemetry{
		scope: scope,

		logger: slog.New(handler).With("scope", scope),
		meter:  otel.Meter(instrumentationName),
		tracer: otel.Tracer(instrumentationName),
	}
}

// Scope returns the scope of the telemetry.
func (t *Telemetry) Scope() string {
	return t.scope
}

// LogInfo logs an info message.
func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.logger.Info(msg, args...)
}

// LogWarn logs a warning message.
func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.logger.Warn(msg, args...)
}

// LogError logs an error message.
func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.logger.Error(msg, append([]any{"error", err}, args...)...)
}

func (t *Telemetry) metricName(name string) string {
	return t.scope + "." + name
}

// NewCounter registers an observable counter whose value is read from the callback.
func (t *Telemetry) NewCounter(name string, callback func() int64) {
	_, err := t.meter.Int64ObservableCounter(t.metricName(name),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(callback())
			return nil
		}),
	)

	if err != nil {
		t.LogError("failed to create counter", err, "name", name)
	}
}

// NewGauge registers an observable gauge whose value is read from the callback.
func (t *Telemetry) NewGauge(name string, callback func() int64) {
	_, err := t.meter.Int64ObservableGauge(t.metricName(name),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(callback())
			return nil
		}),
	)

	if err != nil {
		t.LogError("failed to create gauge", err, "name", name)
	}
}

// Histogram records a distribution of int64 values.
type Histogram struct {
	hist metric.Int64Histogram
}

// Record adds the value to the histogram.
// It does nothing if the histogram failed to be created.
func (h *Histogram) Record(ctx context.Context, value int64) {
	if h.hist == nil {
		return
	}

	h.hist.Record(ctx, value)
}

// NewHistogram returns a new histogram.
func (t *Telemetry) NewHistogram(name string, opts ...metric.Int64HistogramOption) *Histogram {
	hist, err := t.meter.Int64Histogram(t.metricName(name), opts...)
	if err != nil {
		t.LogError("failed to create histogram", err, "name", name)
		return &Histogram{}
	}

	return &Histogram{hist: hist}
}

// NewTrace starts a new span named after the scope of the telemetry.
func (t *Telemetry) NewTrace(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, t.scope+": "+spanName)
}
