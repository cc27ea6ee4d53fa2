// Package telemetry emits structured pipeline events to a Redis stream so
// operators can follow intake runs without grepping logs. The reporter is
// strictly observational: every emit is fire-and-forget and a Redis outage
// degrades to a warning.
package telemetry

import (
	"context"
	"time"

	"matter_intake_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const emitTimeout = 2 * time.Second

// Reporter records the lifecycle of an intake operation.
type Reporter interface {
	Started(ctx context.Context, operation, tenant, instructionRef string)
	Succeeded(ctx context.Context, operation, tenant, instructionRef string, elapsedMs int64)
	Failed(ctx context.Context, operation, tenant, instructionRef, stage string, err error)
}

// StreamReporter appends pipeline events to a Redis stream via XADD.
type StreamReporter struct {
	rdb    *redis.Client
	stream string
	log    *logger.Logger
}

// NewStreamReporter creates a reporter writing to the given stream.
func NewStreamReporter(rdb *redis.Client, stream string, log *logger.Logger) *StreamReporter {
	return &StreamReporter{rdb: rdb, stream: stream, log: log}
}

func (r *StreamReporter) Started(ctx context.Context, operation, tenant, instructionRef string) {
	r.emit(ctx, map[string]interface{}{
		"event":           "started",
		"operation":       operation,
		"tenant":          tenant,
		"instruction_ref": instructionRef,
	})
}

func (r *StreamReporter) Succeeded(ctx context.Context, operation, tenant, instructionRef string, elapsedMs int64) {
	r.emit(ctx, map[string]interface{}{
		"event":           "succeeded",
		"operation":       operation,
		"tenant":          tenant,
		"instruction_ref": instructionRef,
		"elapsed_ms":      elapsedMs,
	})
}

func (r *StreamReporter) Failed(ctx context.Context, operation, tenant, instructionRef, stage string, err error) {
	r.emit(ctx, map[string]interface{}{
		"event":           "failed",
		"operation":       operation,
		"tenant":          tenant,
		"instruction_ref": instructionRef,
		"stage":           stage,
		"error":           err.Error(),
	})
}

// emit appends one entry to the stream. The write runs on a detached context
// with a short timeout so a slow Redis never stalls the request path.
func (r *StreamReporter) emit(ctx context.Context, values map[string]interface{}) {
	emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
	defer cancel()

	values["at"] = time.Now().UTC().Format(time.RFC3339Nano)
	if err := r.rdb.XAdd(emitCtx, &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}).Err(); err != nil {
		r.log.Warn("telemetry emit failed", "stream", r.stream, "error", err)
	}
}

// Noop discards all telemetry. Used when no Redis is configured.
type Noop struct{}

func (Noop) Started(context.Context, string, string, string)               {}
func (Noop) Succeeded(context.Context, string, string, string, int64)      {}
func (Noop) Failed(context.Context, string, string, string, string, error) {}
