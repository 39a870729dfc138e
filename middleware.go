package essayist

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/RBrouq/agentic-system/store"
)

// RunnerFunc is the core function type for advancing a session. Middleware
// wraps it to add cross-cutting concerns around a whole invocation.
type RunnerFunc func(ctx context.Context, rec *store.Record, logger Logger) error

// Middleware wraps session execution. It can act before and after the phase
// machine runs, modify the context, or skip execution entirely.
type Middleware func(next RunnerFunc) RunnerFunc

// StageRunnerFunc executes a single stage body against the stage context.
type StageRunnerFunc func(ctx context.Context, phase store.Phase, sc *StageContext) error

// StageMiddleware wraps individual stage execution. Unlike Middleware it
// fires once per phase, so it is the right layer for per-stage telemetry.
type StageMiddleware func(next StageRunnerFunc) StageRunnerFunc

// LoggingMiddleware logs the start and completion of each invocation with
// its duration.
func LoggingMiddleware() Middleware {
	return func(next RunnerFunc) RunnerFunc {
		return func(ctx context.Context, rec *store.Record, logger Logger) error {
			logger.Info("Session %s: run started at phase %s", rec.SessionID, rec.Phase)
			start := time.Now()
			err := next(ctx, rec, logger)
			elapsed := time.Since(start)
			if err != nil {
				logger.Error("Session %s: run failed after %s: %v", rec.SessionID, elapsed, err)
			} else {
				logger.Info("Session %s: run finished in %s at phase %s", rec.SessionID, elapsed, rec.Phase)
			}
			return err
		}
	}
}

// RecoverMiddleware converts panics in the stage chain into errors and logs
// the stack trace. With it installed a panicking stage fails the invocation
// instead of the process, and the store keeps the last good snapshot.
func RecoverMiddleware() Middleware {
	return func(next RunnerFunc) RunnerFunc {
		return func(ctx context.Context, rec *store.Record, logger Logger) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Session %s panicked: %v\n%s", rec.SessionID, r, debug.Stack())
					retErr = fmt.Errorf("panic in session %s: %v", rec.SessionID, r)
				}
			}()
			return next(ctx, rec, logger)
		}
	}
}

// TimeLimitMiddleware enforces a deadline on a whole invocation. When the
// limit passes the context is cancelled and the running capability call
// returns context.DeadlineExceeded.
func TimeLimitMiddleware(limit time.Duration) Middleware {
	return func(next RunnerFunc) RunnerFunc {
		return func(ctx context.Context, rec *store.Record, logger Logger) error {
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			return next(ctx, rec, logger)
		}
	}
}

// tracerName is the instrumentation scope name for workflow tracing.
const tracerName = "github.com/RBrouq/agentic-system"

// TracingStageMiddleware wraps each stage in an OpenTelemetry span using
// the global TracerProvider. Without a configured provider the noop tracer
// makes this a pass-through.
//
// Span attributes: essayist.session_id, essayist.phase, essayist.mode.
// On error the span status is set to codes.Error with the error message.
func TracingStageMiddleware() StageMiddleware {
	return TracingStageMiddlewareWithTracer(otel.Tracer(tracerName))
}

// TracingStageMiddlewareWithTracer is the injectable variant, for tests or
// deployments running multiple providers.
func TracingStageMiddlewareWithTracer(tracer trace.Tracer) StageMiddleware {
	return func(next StageRunnerFunc) StageRunnerFunc {
		return func(ctx context.Context, phase store.Phase, sc *StageContext) error {
			ctx, span := tracer.Start(ctx, "essayist.stage",
				trace.WithAttributes(
					attribute.String("essayist.session_id", sc.Record.SessionID),
					attribute.String("essayist.phase", string(phase)),
					attribute.String("essayist.mode", string(sc.Record.Mode)),
				),
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			err := next(ctx, phase, sc)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		}
	}
}

// MetricsStageMiddleware records the duration of every stage body in the
// given metrics set, labelled by phase and outcome.
func MetricsStageMiddleware(m *Metrics) StageMiddleware {
	return func(next StageRunnerFunc) StageRunnerFunc {
		return func(ctx context.Context, phase store.Phase, sc *StageContext) error {
			start := time.Now()
			err := next(ctx, phase, sc)
			status := "ok"
			if err != nil {
				status = "error"
			}
			m.StageDuration.WithLabelValues(string(phase), status).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
