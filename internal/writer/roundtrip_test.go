package writer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parttimenerd/jfr-redact-sub000/internal/reader"
	"github.com/parttimenerd/jfr-redact-sub000/internal/writer"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
)

var testMeta = writer.ChunkMeta{
	Major:          2,
	Minor:          1,
	StartNanos:     1_700_000_000_000_000_000,
	DurationNanos:  5_000_000_000,
	StartTicks:     1000,
	TicksPerSecond: 1_000_000_000,
	Features:       0,
}

func TestRoundTripEventsTypesAndPools(t *testing.T) {
	w := writer.New(&writer.MemWriter{})
	cw := w.BeginChunk(testMeta)

	long, ok := cw.Builtin("long")
	require.True(t, ok)
	str, ok := cw.Builtin("java.lang.String")
	require.True(t, ok)
	dbl, ok := cw.Builtin("double")
	require.True(t, ok)

	catT, err := cw.NewType("jdk.jfr.Category", "java.lang.annotation.Annotation", false)
	require.NoError(t, err)
	require.NoError(t, catT.AddField(writer.Field{Name: "value", Type: str, Array: true}))
	catT.Seal()

	threadT, err := cw.NewType("java.lang.Thread", "", true)
	require.NoError(t, err)
	require.NoError(t, threadT.AddField(writer.Field{Name: "javaName", Type: str}))
	require.NoError(t, threadT.AddField(writer.Field{Name: "osThreadId", Type: long}))
	// Self-referencing field closes a cycle through the dictionary.
	require.NoError(t, threadT.AddField(writer.Field{Name: "parent", Type: threadT, Pooled: true}))
	threadT.Seal()

	evT, err := cw.NewType("jdk.Sample", "jdk.jfr.Event", false)
	require.NoError(t, err)
	require.NoError(t, evT.AddField(writer.Field{Name: "startTime", Type: long}))
	require.NoError(t, evT.AddField(writer.Field{Name: "message", Type: str}))
	require.NoError(t, evT.AddField(writer.Field{Name: "values", Type: dbl, Array: true}))
	require.NoError(t, evT.AddField(writer.Field{Name: "eventThread", Type: threadT, Pooled: true}))
	evT.AddAnnotation(writer.Annotation{Type: catT, Values: map[string]jfr.Value{
		"value": jfr.ArrayOf([]jfr.Value{jfr.String("Java Application"), jfr.String("Demo")}),
	}})
	evT.Seal()

	// The source-side model mirrors the registered layout so WriteEvent can
	// pull values by field name.
	srcString := &jfr.Type{Name: "java.lang.String"}
	srcLong := &jfr.Type{Name: "long"}
	srcThread := &jfr.Type{Name: "java.lang.Thread", Fields: []jfr.Field{
		{Name: "javaName", Type: srcString},
		{Name: "osThreadId", Type: srcLong},
	}}
	mainThread := &jfr.Object{Type: srcThread, Values: []jfr.Value{jfr.String("main"), jfr.Long(7)}}

	srcEvT := &jfr.Type{Name: "jdk.Sample", Fields: []jfr.Field{
		{Name: "startTime", Type: srcLong},
		{Name: "message", Type: srcString},
		{Name: "values", Type: &jfr.Type{Name: "double"}, Array: true},
		{Name: "eventThread", Type: srcThread},
	}}
	mkEvent := func(ticks int64, msg string) *jfr.Object {
		return &jfr.Object{Type: srcEvT, Values: []jfr.Value{
			jfr.Long(ticks),
			jfr.String(msg),
			jfr.ArrayOf([]jfr.Value{jfr.Floating(jfr.KindDouble, 1.5), jfr.Floating(jfr.KindDouble, -2.25)}),
			jfr.ObjectOf(mainThread),
		}}
	}
	require.NoError(t, cw.WriteEvent(evT, mkEvent(1100, "first")))
	require.NoError(t, cw.WriteEvent(evT, mkEvent(1200, "second")))
	require.NoError(t, cw.Finish())
	require.NoError(t, w.Close())

	rec, err := reader.OpenBytes(w.Bytes())
	require.NoError(t, err)
	require.Len(t, rec.Chunks, 1)
	ch := rec.Chunks[0]

	assert.Equal(t, uint16(2), ch.Header.Major)
	assert.Equal(t, testMeta.StartNanos, ch.Header.StartNanos)
	assert.Equal(t, testMeta.TicksPerSecond, ch.Header.TicksPerSecond)

	// Dictionary round-trips with layouts and annotations intact.
	rt, ok := ch.TypeByName("java.lang.Thread")
	require.True(t, ok)
	assert.True(t, rt.Pooled)
	require.Equal(t, 3, len(rt.Fields))
	assert.Equal(t, rt, rt.Fields[2].Type, "cyclic field resolves to the same type")

	re, ok := ch.TypeByName("jdk.Sample")
	require.True(t, ok)
	assert.Equal(t, []string{"Java Application", "Demo"}, re.Categories())

	var events []*jfr.Event
	cur := ch.Events()
	for {
		ev, ok, err := cur.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Payload.String("message"))
	assert.Equal(t, "second", events[1].Payload.String("message"))
	assert.Equal(t, int64(1100), events[0].StartTicks)

	// 1100 ticks at 1e9 ticks/s, 100 ticks past chunk start.
	assert.Equal(t, testMeta.StartNanos+100, events[0].StartNanos)

	v, ok := events[0].Value("values")
	require.True(t, ok)
	require.Equal(t, jfr.KindArray, v.Kind)
	require.Len(t, v.Elems, 2)
	assert.Equal(t, 1.5, v.Elems[0].F)
	assert.Equal(t, -2.25, v.Elems[1].F)

	// Both events share one pooled thread entry.
	th := events[0].Thread()
	require.NotNil(t, th)
	assert.Equal(t, "main", jfr.ThreadName(th))
	assert.Equal(t, int64(7), mustValue(t, th, "osThreadId").I)
	// The parent field was absent from the source object: null substituted.
	assert.True(t, mustValue(t, th, "parent").IsNull())
}

func mustValue(t *testing.T, o *jfr.Object, name string) jfr.Value {
	t.Helper()
	v, ok := o.Value(name)
	require.True(t, ok)
	return v
}

func TestWriteEventSubstitutesMissingFields(t *testing.T) {
	w := writer.New(&writer.MemWriter{})
	cw := w.BeginChunk(testMeta)
	long, _ := cw.Builtin("long")
	str, _ := cw.Builtin("java.lang.String")
	evT, err := cw.NewType("jdk.Minimal", "jdk.jfr.Event", false)
	require.NoError(t, err)
	require.NoError(t, evT.AddField(writer.Field{Name: "startTime", Type: long}))
	require.NoError(t, evT.AddField(writer.Field{Name: "message", Type: str}))

	// Source object lacks both fields entirely.
	src := &jfr.Object{Type: &jfr.Type{Name: "jdk.Minimal"}}
	require.NoError(t, cw.WriteEvent(evT, src))
	require.NoError(t, cw.Finish())

	rec, err := reader.OpenBytes(w.Bytes())
	require.NoError(t, err)
	cur := rec.Chunks[0].Events()
	ev, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(0), mustValue(t, ev.Payload, "startTime").I)
	assert.True(t, mustValue(t, ev.Payload, "message").IsNull())
}

func TestSealedTypeRejectsNewFields(t *testing.T) {
	w := writer.New(&writer.MemWriter{})
	cw := w.BeginChunk(testMeta)
	long, _ := cw.Builtin("long")
	tt, err := cw.NewType("jdk.T", "", false)
	require.NoError(t, err)
	require.NoError(t, tt.AddField(writer.Field{Name: "a", Type: long}))
	require.NoError(t, cw.WriteEvent(tt, &jfr.Object{Type: &jfr.Type{Name: "jdk.T"}}))
	err = tt.AddField(writer.Field{Name: "b", Type: long})
	assert.Error(t, err, "writing an event seals the layout")
}

func TestNewTypeRejectsDuplicates(t *testing.T) {
	w := writer.New(&writer.MemWriter{})
	cw := w.BeginChunk(testMeta)
	_, err := cw.NewType("jdk.T", "", false)
	require.NoError(t, err)
	_, err = cw.NewType("jdk.T", "", false)
	assert.Error(t, err)
}
