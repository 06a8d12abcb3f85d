package transcode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parttimenerd/jfr-redact-sub000/internal/reader"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact"
	"github.com/parttimenerd/jfr-redact-sub000/redact/discovery"
)

func defaultEvents(m *srcModel) []*jfr.Event {
	return []*jfr.Event{
		m.sysProcEvent(100, "/usr/bin/java -jar app.jar", "alice", 8080, 8080, "main"),
		m.sysProcEvent(200, "/usr/bin/java -jar app.jar", "alice", 8080, 1234, "main"),
		m.sysProcEvent(300, "nginx", "www", 443, 0, "worker"),
		m.gcPauseEvent(400, "Pause Young", "GC Thread #1"),
	}
}

func transcodeWith(t *testing.T, engine *redact.Engine, disc *discovery.Engine, events func(m *srcModel) []*jfr.Event) *reader.Recording {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jfr")
	out := filepath.Join(dir, "out.jfr")
	m := newSrcModel()
	writeRecording(t, in, m, events(m))

	tr := New(Options{Engine: engine, Discovery: disc})
	require.NoError(t, tr.ProcessFile(context.Background(), in, out))

	rec, err := reader.Open(out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func readAll(t *testing.T, rec *reader.Recording) []*jfr.Event {
	t.Helper()
	var out []*jfr.Event
	cur := rec.Events()
	for {
		ev, ok, err := cur.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestTranscodeKeepsOrderAndCounts(t *testing.T) {
	engine := redact.New(redact.DefaultConfig(), nil, redact.NewStats(), nil)
	rec := transcodeWith(t, engine, nil, defaultEvents)
	events := readAll(t, rec)
	require.Len(t, events, 4)
	assert.Equal(t, "jdk.SystemProcess", events[0].Type.Name)
	assert.Equal(t, "jdk.GCPhasePause", events[3].Type.Name)
	// Output order equals input order restricted to surviving events.
	assert.Equal(t, int64(100), events[0].StartTicks)
	assert.Equal(t, int64(200), events[1].StartTicks)
	assert.Equal(t, int64(300), events[2].StartTicks)

	snap := engine.Stats().Snapshot()
	assert.Equal(t, int64(4), snap.EventsProcessed)
	assert.Equal(t, int64(4), snap.EventsWritten)
	assert.Equal(t, int64(0), snap.EventsRemoved)
}

func TestThreadExcludeWinsOverInclude(t *testing.T) {
	cfg := redact.DefaultConfig()
	cfg.Events.Filtering.IncludeEvents = []string{"jdk.*"}
	cfg.Events.Filtering.ExcludeThreads = []string{"GC Thread*"}
	engine := redact.New(cfg, nil, redact.NewStats(), nil)
	rec := transcodeWith(t, engine, nil, defaultEvents)
	events := readAll(t, rec)
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.NotEqual(t, "jdk.GCPhasePause", ev.Type.Name)
	}
	snap := engine.Stats().Snapshot()
	assert.Equal(t, int64(1), snap.EventsRemoved)
	assert.Equal(t, int64(3), snap.EventsWritten)
}

func TestRemovedTypesDropEvents(t *testing.T) {
	cfg := redact.DefaultConfig()
	cfg.Events.RemoveEnabled = true
	cfg.Events.RemovedTypes = []string{"jdk.SystemProcess"}
	engine := redact.New(cfg, nil, redact.NewStats(), nil)
	rec := transcodeWith(t, engine, nil, defaultEvents)
	events := readAll(t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "jdk.GCPhasePause", events[0].Type.Name)
}

func TestPortPseudonymizationEndToEnd(t *testing.T) {
	engine := redact.New(redact.DefaultConfig(), nil, redact.NewStats(), nil)
	rec := transcodeWith(t, engine, nil, defaultEvents)
	events := readAll(t, rec)
	require.Len(t, events, 4)

	port0, _ := events[0].Value("port")
	port1, _ := events[1].Value("port")
	port2, _ := events[2].Value("port")
	assert.Equal(t, int64(1000), port0.I)
	assert.Equal(t, int64(1000), port1.I)
	assert.Equal(t, int64(1001), port2.I)

	// payloadSize is not a port name and passes through untouched.
	size0, _ := events[0].Value("payloadSize")
	assert.Equal(t, int64(8080), size0.I)
}

func TestIdempotentTypeRegistration(t *testing.T) {
	engine := redact.New(redact.DefaultConfig(), nil, redact.NewStats(), nil)
	rec := transcodeWith(t, engine, nil, defaultEvents)
	names := map[string]int{}
	for _, tp := range rec.Chunks[0].Types {
		names[tp.Name]++
	}
	assert.Equal(t, 1, names["jdk.SystemProcess"], "three events, one type definition")
	assert.Equal(t, 1, names[jfr.TypeThread])
	assert.Equal(t, 1, names[jfr.AnnotationCategory])
}

func TestAnnotationsSurviveTranscoding(t *testing.T) {
	engine := redact.New(redact.DefaultConfig(), nil, redact.NewStats(), nil)
	rec := transcodeWith(t, engine, nil, defaultEvents)
	tp, ok := rec.Chunks[0].TypeByName("jdk.GCPhasePause")
	require.True(t, ok)
	assert.Equal(t, []string{"Java Virtual Machine", "GC"}, tp.Categories())
}

func TestTwoPassDiscoveryRedactsLearnedValues(t *testing.T) {
	cfg := redact.DefaultConfig()
	engine := redact.New(cfg, nil, redact.NewStats(), nil)
	disc := discovery.New(discovery.Config{
		Mode: types.DiscoveryTwoPass,
		PropertyExtractions: []discovery.PropertyExtraction{{
			Name:           "owners",
			KeyPattern:     `^owner$`,
			Type:           types.PatternUsername,
			MinOccurrences: 1,
			Enabled:        true,
		}},
	}, nil)

	rec := transcodeWith(t, engine, disc, func(m *srcModel) []*jfr.Event {
		return []*jfr.Event{
			m.sysProcEvent(100, "run", "alice", 1, 0, "main"),
			m.sysProcEvent(200, "started by alice", "alice", 1, 0, "main"),
		}
	})
	events := readAll(t, rec)
	require.Len(t, events, 2)
	cmd, _ := events[1].Value("command")
	assert.Equal(t, "started by ***USER***", cmd.S)
	// The first traversal already knew the value, so the first event's
	// owner field benefits too.
	owner0, _ := events[0].Value("owner")
	assert.NotContains(t, owner0.S, "alice")
}

func TestCancellationBetweenEvents(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jfr")
	out := filepath.Join(dir, "out.jfr")
	m := newSrcModel()
	writeRecording(t, in, m, defaultEvents(m))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := New(Options{Engine: redact.New(redact.DefaultConfig(), nil, redact.NewStats(), nil)})
	err := tr.ProcessFile(ctx, in, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFastDiscoveryBenefitsLaterEvents(t *testing.T) {
	engine := redact.New(redact.DefaultConfig(), nil, redact.NewStats(), nil)
	disc := discovery.New(discovery.Config{
		Mode: types.DiscoveryFast,
		PropertyExtractions: []discovery.PropertyExtraction{{
			Name:           "owners",
			KeyPattern:     `^owner$`,
			Type:           types.PatternUsername,
			MinOccurrences: 1,
			Enabled:        true,
		}},
	}, nil)
	rec := transcodeWith(t, engine, disc, func(m *srcModel) []*jfr.Event {
		return []*jfr.Event{
			m.sysProcEvent(100, "run carol now", "carol", 1, 0, "main"),
			m.sysProcEvent(200, "run carol again", "carol", 1, 0, "main"),
		}
	})
	events := readAll(t, rec)
	require.Len(t, events, 2)
	// The value is learned from the first event, so the second event's
	// command no longer carries it.
	cmd1, _ := events[1].Value("command")
	assert.Equal(t, "run ***USER*** again", cmd1.S)
}
