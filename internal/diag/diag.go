// Package diag implements the diagnostic verbosity gate: extra trace lines
// that are only emitted when the service runs at the most verbose level.
package diag

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LevelTrace is the only verbosity level that opens the gate.
const LevelTrace = "trace"

// Gate decides whether diagnostic trace lines are written. The zero value is
// closed.
type Gate struct {
	enabled bool
}

// New returns a gate that is open only when level equals LevelTrace.
func New(level string) Gate {
	return Gate{enabled: level == LevelTrace}
}

// Enabled reports whether trace lines are emitted.
func (g Gate) Enabled() bool {
	return g.enabled
}

// Trace writes msg to the logger carried by ctx when the gate is open.
func (g Gate) Trace(ctx context.Context, msg string, fields ...zap.Field) {
	if !g.enabled {
		return
	}
	zctx.From(ctx).Info(msg, append(fields, zap.String("verbosity", LevelTrace))...)
}

// Error writes the raw error through the gate.
func (g Gate) Error(ctx context.Context, msg string, err error) {
	if !g.enabled {
		return
	}
	zctx.From(ctx).Info(msg, zap.Error(err), zap.String("verbosity", LevelTrace))
}
