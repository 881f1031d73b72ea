package notify

import (
	"errors"
	"sync"
	"testing"

	"wavestats/ports"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapNotifier_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewZapNotifier(zap.New(core))

	n.Notify(ports.Event{Kind: ports.EventTableSaved, RunID: "run-1", View: "per_protocol", Table: "involvement_stats", Path: "results/involvement_statistics.csv", Rows: 8})
	n.Notify(ports.Event{Kind: ports.EventTableSkipped, View: "per_protocol", Table: "test_results"})
	n.Notify(ports.Event{Kind: ports.EventViewFailed, View: "per_protocol", Err: errors.New("disk full")})

	entries := logs.All()
	assert.Len(t, entries, 3)

	saved := entries[0].ContextMap()
	assert.Equal(t, "run-1", saved["run_id"])
	assert.Equal(t, "results/involvement_statistics.csv", saved["path"])
	assert.Equal(t, int64(8), saved["rows"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "disk full", entries[2].ContextMap()["error"])
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	r := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(ports.Event{Kind: ports.EventViewStarted, View: "v"})
		}()
	}
	wg.Wait()

	assert.Len(t, r.Events(), 20)
	assert.Len(t, r.Kinds("v"), 20)
	assert.Empty(t, r.Kinds("other"))
}

func TestMultiAndFunc(t *testing.T) {
	var got []ports.EventKind
	r := &Recorder{}
	m := Multi{r, Func(func(e ports.Event) { got = append(got, e.Kind) }), Nop{}}

	m.Notify(ports.Event{Kind: ports.EventViewCompleted, View: "meta"})

	assert.Equal(t, []ports.EventKind{ports.EventViewCompleted}, got)
	assert.Equal(t, []ports.EventKind{ports.EventViewCompleted}, r.Kinds("meta"))
}
