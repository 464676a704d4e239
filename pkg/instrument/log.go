package instrument

import (
	"context"
	"log/slog"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Log writes every engine event to a structured logger. Events are logged
// at Debug except cycles, which are logged at Warn by the runtime itself and
// repeated here at Debug with the node handle.
type Log struct {
	logger *slog.Logger
}

var _ reactive.Instrumentation = (*Log)(nil)

// NewLog creates an event logger. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "reactive")}
}

func (l *Log) OnWrite(id reactive.NodeID) {
	l.logger.Debug("signal write", "node", id.String())
}

func (l *Log) OnRecompute(id reactive.NodeID, name string, t reactive.Timing) {
	l.logger.Debug("recompute", "node", id.String(), "computed", name, "elapsed", t.Elapsed)
}

func (l *Log) OnEffectRun(id reactive.NodeID, name string, t reactive.Timing) {
	l.logger.Debug("effect run", "node", id.String(), "effect", label(name), "elapsed", t.Elapsed)
}

func (l *Log) OnFlush(size int, t reactive.Timing) {
	l.logger.Debug("flush", "size", size, "elapsed", t.Elapsed)
}

func (l *Log) OnCycle(id reactive.NodeID, name string) {
	l.logger.Debug("cycle", "node", id.String(), "computed", label(name))
}

func (l *Log) OnTx(ctx context.Context, name string, t reactive.Timing) {
	l.logger.DebugContext(ctx, "tx", "tx", label(name), "elapsed", t.Elapsed)
}
