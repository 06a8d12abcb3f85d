package transcode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parttimenerd/jfr-redact-sub000/internal/writer"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
)

// srcModel is a hand-built source dictionary resembling what the reader
// produces from a real recording.
type srcModel struct {
	str, long, intT *jfr.Type
	thread          *jfr.Type
	category        *jfr.Type
	sysProc         *jfr.Type
	gcPause         *jfr.Type
	byName          map[string]*jfr.Type
}

func newSrcModel() *srcModel {
	m := &srcModel{
		str:  &jfr.Type{Name: "java.lang.String"},
		long: &jfr.Type{Name: "long"},
		intT: &jfr.Type{Name: "int"},
	}
	m.thread = &jfr.Type{Name: jfr.TypeThread, Pooled: true, Fields: []jfr.Field{
		{Name: "javaName", Type: m.str},
		{Name: "osName", Type: m.str},
	}}
	m.category = &jfr.Type{Name: jfr.AnnotationCategory, Super: "java.lang.annotation.Annotation", Fields: []jfr.Field{
		{Name: "value", Type: m.str, Array: true},
	}}
	m.sysProc = &jfr.Type{Name: "jdk.SystemProcess", Super: "jdk.jfr.Event", Fields: []jfr.Field{
		{Name: "startTime", Type: m.long},
		{Name: "command", Type: m.str},
		{Name: "owner", Type: m.str},
		{Name: "port", Type: m.intT},
		{Name: "payloadSize", Type: m.intT},
		{Name: "eventThread", Type: m.thread, Pooled: true},
	}, Annotations: []jfr.Annotation{{
		Type:   m.category,
		Values: map[string]jfr.Value{"value": jfr.ArrayOf([]jfr.Value{jfr.String("Operating System")})},
	}}}
	m.gcPause = &jfr.Type{Name: "jdk.GCPhasePause", Super: "jdk.jfr.Event", Fields: []jfr.Field{
		{Name: "startTime", Type: m.long},
		{Name: "name", Type: m.str},
		{Name: "eventThread", Type: m.thread, Pooled: true},
	}, Annotations: []jfr.Annotation{{
		Type:   m.category,
		Values: map[string]jfr.Value{"value": jfr.ArrayOf([]jfr.Value{jfr.String("Java Virtual Machine"), jfr.String("GC")})},
	}}}
	m.byName = map[string]*jfr.Type{
		m.thread.Name:   m.thread,
		m.category.Name: m.category,
		m.sysProc.Name:  m.sysProc,
		m.gcPause.Name:  m.gcPause,
	}
	return m
}

func (m *srcModel) lookup(name string) (*jfr.Type, bool) {
	t, ok := m.byName[name]
	return t, ok
}

func (m *srcModel) threadObj(name string) *jfr.Object {
	return &jfr.Object{Type: m.thread, Values: []jfr.Value{jfr.String(name), jfr.Null}}
}

func (m *srcModel) sysProcEvent(ticks int64, command, owner string, port, payload int64, thread string) *jfr.Event {
	return &jfr.Event{Type: m.sysProc, Payload: &jfr.Object{Type: m.sysProc, Values: []jfr.Value{
		jfr.Long(ticks),
		jfr.String(command),
		jfr.String(owner),
		jfr.Int(port),
		jfr.Int(payload),
		jfr.ObjectOf(m.threadObj(thread)),
	}}}
}

func (m *srcModel) gcPauseEvent(ticks int64, name, thread string) *jfr.Event {
	return &jfr.Event{Type: m.gcPause, Payload: &jfr.Object{Type: m.gcPause, Values: []jfr.Value{
		jfr.Long(ticks),
		jfr.String(name),
		jfr.ObjectOf(m.threadObj(thread)),
	}}}
}

var testMeta = writer.ChunkMeta{
	Major:          2,
	Minor:          1,
	StartNanos:     1_700_000_000_000_000_000,
	DurationNanos:  1_000_000_000,
	StartTicks:     0,
	TicksPerSecond: 1_000_000_000,
}

// writeRecording serializes the given events into a recording file at path.
func writeRecording(t *testing.T, path string, m *srcModel, events []*jfr.Event) {
	t.Helper()
	w := writer.New(&writer.FileWriter{Path: path})
	cw := w.BeginChunk(testMeta)
	reg := newRegistrar(cw, m.lookup, nil)
	for _, ev := range events {
		outT, err := reg.registerEvent(ev.Type)
		require.NoError(t, err)
		require.NoError(t, cw.WriteEvent(outT, ev.Payload))
	}
	require.NoError(t, cw.Finish())
	require.NoError(t, w.Close())
}
