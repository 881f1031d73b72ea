// Package notify provides Notifier implementations for export progress.
package notify

import (
	"sync"

	"wavestats/ports"

	"go.uber.org/zap"
)

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(ports.Event) {}

// Func adapts a plain function to ports.Notifier.
type Func func(ports.Event)

func (f Func) Notify(e ports.Event) { f(e) }

// ZapNotifier logs events as structured entries.
type ZapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier creates a notifier writing to logger.
func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapNotifier{logger: logger}
}

func (n *ZapNotifier) Notify(e ports.Event) {
	fields := []zap.Field{
		zap.String("run_id", e.RunID.String()),
		zap.String("view", e.View),
	}
	if e.Table != "" {
		fields = append(fields, zap.String("table", e.Table))
	}

	switch e.Kind {
	case ports.EventViewStarted:
		n.logger.Info("saving view", fields...)
	case ports.EventTableSaved:
		n.logger.Info("saved table", append(fields, zap.String("path", e.Path), zap.Int("rows", e.Rows))...)
	case ports.EventTableSkipped:
		n.logger.Debug("no rows, table not written", fields...)
	case ports.EventViewCompleted:
		n.logger.Info("view complete", fields...)
	case ports.EventViewFailed:
		n.logger.Error("view failed", append(fields, zap.Error(e.Err))...)
	default:
		n.logger.Debug(string(e.Kind), fields...)
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *Recorder) Notify(e ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded event kinds for one view, in order.
func (r *Recorder) Kinds(view string) []ports.EventKind {
	var kinds []ports.EventKind
	for _, e := range r.Events() {
		if e.View == view {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// Multi fans each event out to several notifiers.
type Multi []ports.Notifier

func (m Multi) Notify(e ports.Event) {
	for _, n := range m {
		n.Notify(e)
	}
}
