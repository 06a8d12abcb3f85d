package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parttimenerd/jfr-redact-sub000/jfr"
)

// eventWith builds a minimal event with the given type name, thread name
// and categories.
func eventWith(name, thread string, categories ...string) *jfr.Event {
	stringT := &jfr.Type{Name: "java.lang.String"}
	threadT := &jfr.Type{Name: jfr.TypeThread, Fields: []jfr.Field{
		{Name: "javaName", Type: stringT},
		{Name: "osName", Type: stringT},
	}}
	catT := &jfr.Type{Name: "jdk.jfr.Category", Fields: []jfr.Field{
		{Name: "value", Type: stringT, Array: true},
	}}
	evT := &jfr.Type{Name: name, Super: "jdk.jfr.Event", Fields: []jfr.Field{
		{Name: "eventThread", Type: threadT, Pooled: true},
	}}
	if len(categories) > 0 {
		vals := make([]jfr.Value, len(categories))
		for i, c := range categories {
			vals[i] = jfr.String(c)
		}
		evT.Annotations = []jfr.Annotation{{
			Type:   catT,
			Values: map[string]jfr.Value{"value": jfr.ArrayOf(vals)},
		}}
	}
	var threadVal jfr.Value
	if thread != "" {
		threadVal = jfr.ObjectOf(&jfr.Object{Type: threadT, Values: []jfr.Value{jfr.String(thread), jfr.Null}})
	} else {
		threadVal = jfr.Null
	}
	return &jfr.Event{Type: evT, Payload: &jfr.Object{Type: evT, Values: []jfr.Value{threadVal}}}
}

func filterEngine(events EventsConfig) *Engine {
	cfg := DefaultConfig()
	cfg.Events = events
	return New(cfg, nil, NewStats(), nil)
}

func TestRemovedTypesWildcard(t *testing.T) {
	e := filterEngine(EventsConfig{
		RemoveEnabled: true,
		RemovedTypes:  []string{"jdk.OSInformation", "jdk.Container*"},
	})
	assert.True(t, e.ShouldRemoveEventType("jdk.OSInformation"))
	assert.True(t, e.ShouldRemoveEventType("jdk.ContainerConfiguration"))
	assert.False(t, e.ShouldRemoveEventType("jdk.CPULoad"))

	// The switch gates the list.
	off := filterEngine(EventsConfig{RemovedTypes: []string{"jdk.OSInformation"}})
	assert.False(t, off.ShouldRemoveEventType("jdk.OSInformation"))
}

func TestThreadExcludeWinsOverEventInclude(t *testing.T) {
	e := filterEngine(EventsConfig{Filtering: Filtering{
		IncludeEvents:  []string{"jdk.*"},
		ExcludeThreads: []string{"GC Thread*"},
	}})
	gc := eventWith("jdk.GCPhasePause", "GC Thread #1")
	main := eventWith("jdk.GCPhasePause", "main")
	assert.True(t, e.ShouldRemoveEvent(gc), "thread exclusion wins over event inclusion")
	assert.False(t, e.ShouldRemoveEvent(main))
}

func TestThreadIncludeMustMatch(t *testing.T) {
	e := filterEngine(EventsConfig{Filtering: Filtering{
		IncludeThreads: []string{"main", "worker-*"},
	}})
	assert.False(t, e.ShouldRemoveEvent(eventWith("jdk.X", "main")))
	assert.False(t, e.ShouldRemoveEvent(eventWith("jdk.X", "worker-3")))
	assert.True(t, e.ShouldRemoveEvent(eventWith("jdk.X", "GC Thread #1")))
	// Events without a thread cannot fail the thread include list.
	assert.False(t, e.ShouldRemoveEvent(eventWith("jdk.X", "")))
}

func TestEventIncludeExclude(t *testing.T) {
	e := filterEngine(EventsConfig{Filtering: Filtering{
		IncludeEvents: []string{"jdk.*"},
		ExcludeEvents: []string{"jdk.OSInformation"},
	}})
	assert.False(t, e.ShouldRemoveEvent(eventWith("jdk.CPULoad", "main")))
	assert.True(t, e.ShouldRemoveEvent(eventWith("custom.MyEvent", "main")))
	assert.True(t, e.ShouldRemoveEvent(eventWith("jdk.OSInformation", "main")))
}

func TestCategoryFiltering(t *testing.T) {
	e := filterEngine(EventsConfig{Filtering: Filtering{
		IncludeCategories: []string{"Java*"},
		ExcludeCategories: []string{"Operating System"},
	}})
	assert.False(t, e.ShouldRemoveEvent(eventWith("jdk.X", "main", "Java Application")))
	assert.True(t, e.ShouldRemoveEvent(eventWith("jdk.X", "main", "Profiling")))
	assert.True(t, e.ShouldRemoveEvent(eventWith("jdk.X", "main", "Java Application", "Operating System")))
}

func TestSampledThreadAlsoChecked(t *testing.T) {
	e := filterEngine(EventsConfig{Filtering: Filtering{
		ExcludeThreads: []string{"hidden"},
	}})
	ev := eventWith("jdk.ExecutionSample", "main")
	stringT := &jfr.Type{Name: "java.lang.String"}
	threadT := &jfr.Type{Name: jfr.TypeThread, Fields: []jfr.Field{
		{Name: "javaName", Type: stringT},
	}}
	ev.Type.Fields = append(ev.Type.Fields, jfr.Field{Name: "sampledThread", Type: threadT, Pooled: true})
	ev.Payload.Values = append(ev.Payload.Values,
		jfr.ObjectOf(&jfr.Object{Type: threadT, Values: []jfr.Value{jfr.String("hidden")}}))
	assert.True(t, e.ShouldRemoveEvent(ev))
}

func TestMatchWildcard(t *testing.T) {
	assert.True(t, matchWildcard("jdk.*", "jdk.CPULoad"))
	assert.True(t, matchWildcard("GC Thread*", "GC Thread #1"))
	assert.True(t, matchWildcard("*load*", "CPULoad"))
	assert.True(t, matchWildcard("exact", "EXACT"))
	assert.True(t, matchWildcard("w?rker", "worker"))
	assert.False(t, matchWildcard("jdk.*", "custom.Event"))
	assert.False(t, matchWildcard("", "nonempty"))
}
