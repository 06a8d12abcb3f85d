package discovery

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pattern"
)

// PropertyExtraction configures one structured-event extractor.
type PropertyExtraction struct {
	Name                 string
	KeyPattern           string // matched against field names / key values
	KeyPropertyPattern   string // field holding the key in pair mode, default "key"
	ValuePattern         string // optional filter on the value in pair mode
	ValuePropertyPattern string // field holding the value in pair mode, default "value"
	EventTypeFilter      string // optional regex scoping to event type names
	Type                 types.PatternType
	CustomName           string
	CaseSensitive        bool
	MinOccurrences       int
	Whitelist            []string
	Enabled              bool
}

// Config bundles every extractor the discovery engine runs.
type Config struct {
	Mode                types.DiscoveryMode
	PropertyExtractions []PropertyExtraction
	CustomExtractions   []pattern.Config
	// FamilyExtractions carries the discovery side of the built-in pattern
	// families (email local parts, home-directory users, hostnames, ...).
	FamilyExtractions []pattern.Config
}

// Engine runs all extractors over events and text lines.
type Engine struct {
	log    *zap.Logger
	mode   types.DiscoveryMode
	regex  []*pattern.Extractor
	props  []*propExtractor
	oracle types.DecisionOracle
}

type propExtractor struct {
	cfg     PropertyExtraction
	keyRe   *regexp.Regexp
	valueRe *regexp.Regexp
	eventRe *regexp.Regexp
	store   *pattern.Store
}

// New compiles the configured extractors. Invalid patterns are logged and
// dropped, never fatal.
func New(cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log, mode: cfg.Mode}
	e.regex = append(e.regex, pattern.CompileExtractors(cfg.CustomExtractions, log)...)
	e.regex = append(e.regex, pattern.CompileExtractors(cfg.FamilyExtractions, log)...)
	for _, pc := range cfg.PropertyExtractions {
		if !pc.Enabled {
			continue
		}
		pe, err := compileProp(pc)
		if err != nil {
			log.Warn("skipping property extraction with invalid pattern",
				zap.String("name", pc.Name), zap.Error(err))
			continue
		}
		e.props = append(e.props, pe)
	}
	return e
}

func compileProp(cfg PropertyExtraction) (*propExtractor, error) {
	if cfg.KeyPropertyPattern == "" {
		cfg.KeyPropertyPattern = "key"
	}
	if cfg.ValuePropertyPattern == "" {
		cfg.ValuePropertyPattern = "value"
	}
	if cfg.MinOccurrences < 1 {
		cfg.MinOccurrences = 1
	}
	flags := ""
	if !cfg.CaseSensitive {
		flags = "(?i)"
	}
	keyRe, err := regexp.Compile(flags + cfg.KeyPattern)
	if err != nil {
		return nil, err
	}
	pe := &propExtractor{
		cfg:   cfg,
		keyRe: keyRe,
		store: pattern.NewStore(cfg.CaseSensitive, cfg.Whitelist),
	}
	if cfg.ValuePattern != "" {
		pe.valueRe, err = regexp.Compile(flags + cfg.ValuePattern)
		if err != nil {
			return nil, err
		}
	}
	if cfg.EventTypeFilter != "" {
		pe.eventRe, err = regexp.Compile(cfg.EventTypeFilter)
		if err != nil {
			return nil, err
		}
	}
	return pe, nil
}

// AttachOracle wires the interactive decision manager. A nil oracle keeps
// every discovered value.
func (e *Engine) AttachOracle(o types.DecisionOracle) { e.oracle = o }

// Mode returns the configured discovery mode.
func (e *Engine) Mode() types.DiscoveryMode { return e.mode }

// Active reports whether discovery runs: the mode is not NONE and at least
// one extractor is installed.
func (e *Engine) Active() bool {
	return e.mode != types.DiscoveryNone && (len(e.regex) > 0 || len(e.props) > 0)
}

// ProcessLine runs every regex extractor over one text line.
func (e *Engine) ProcessLine(line string) {
	for _, ex := range e.regex {
		ex.ExtractLine(line)
	}
}

// ProcessEvent traverses an event's payload: property extractors inspect
// each structured value, regex extractors see every string field
// encountered, and the walk recurses into nested objects and arrays.
func (e *Engine) ProcessEvent(ev *jfr.Event) {
	if ev == nil || ev.Payload == nil {
		return
	}
	eventType := ev.Type.Name
	e.walkObject(eventType, ev.Payload, 0)
}

const maxWalkDepth = 32

func (e *Engine) walkObject(eventType string, obj *jfr.Object, depth int) {
	if obj == nil || obj.Type == nil || depth > maxWalkDepth {
		return
	}
	for _, pe := range e.props {
		pe.inspect(eventType, obj)
	}
	for i := range obj.Type.Fields {
		if i >= len(obj.Values) {
			break
		}
		e.walkValue(eventType, obj.Type.Fields[i].Name, obj.Values[i], depth)
	}
}

func (e *Engine) walkValue(eventType, field string, v jfr.Value, depth int) {
	switch v.Kind {
	case jfr.KindString:
		for _, ex := range e.regex {
			ex.ExtractLine(v.S)
		}
	case jfr.KindObject:
		e.walkObject(eventType, v.Obj, depth+1)
	case jfr.KindArray:
		for _, el := range v.Elems {
			e.walkValue(eventType, field, el, depth+1)
		}
	}
}

// inspect applies both extraction modes to one structured value.
func (pe *propExtractor) inspect(eventType string, obj *jfr.Object) {
	if pe.eventRe != nil && !pe.eventRe.MatchString(eventType) {
		return
	}
	// Direct mode: every string field whose name matches the key pattern.
	for i := range obj.Type.Fields {
		if i >= len(obj.Values) {
			break
		}
		f := &obj.Type.Fields[i]
		v := obj.Values[i]
		if v.Kind != jfr.KindString || v.S == "" {
			continue
		}
		if pe.keyRe.MatchString(f.Name) {
			pe.store.Add(v.S, pe.cfg.Type, pe.cfg.CustomName)
		}
	}
	// Key-value pair mode: the key and value live in sibling fields.
	key, okK := obj.Value(pe.cfg.KeyPropertyPattern)
	val, okV := obj.Value(pe.cfg.ValuePropertyPattern)
	if !okK || !okV || key.Kind != jfr.KindString || val.Kind != jfr.KindString || val.S == "" {
		return
	}
	if !pe.keyRe.MatchString(key.S) {
		return
	}
	if pe.valueRe != nil && !pe.valueRe.MatchString(val.S) {
		return
	}
	pe.store.Add(val.S, pe.cfg.Type, pe.cfg.CustomName)
}

// DistinctCount sums the distinct values across all extractor stores.
// Cheap; used to notice when simultaneous discovery learned something new.
func (e *Engine) DistinctCount() int {
	n := 0
	for _, ex := range e.regex {
		n += ex.Store.Len()
	}
	for _, pe := range e.props {
		n += pe.store.Len()
	}
	return n
}

// Clear wipes every extractor store; used between independent input files.
func (e *Engine) Clear() {
	for _, ex := range e.regex {
		ex.Store.Clear()
	}
	for _, pe := range e.props {
		pe.store.Clear()
	}
}

// DiscoveredPatterns merges all extractor stores into one combined set.
// The merge is case-insensitive by construction; each surviving value is
// re-inserted with its occurrence count preserved.
func (e *Engine) DiscoveredPatterns() *types.DiscoveredPatterns {
	combined := pattern.NewStore(false, nil)
	for _, ex := range e.regex {
		for _, v := range ex.Store.Values(ex.MinOccurrences) {
			combined.AddN(v.Value, v.Type, v.CustomName, v.Occurrences)
		}
	}
	for _, pe := range e.props {
		for _, v := range pe.store.Values(pe.cfg.MinOccurrences) {
			combined.AddN(v.Value, v.Type, v.CustomName, v.Occurrences)
		}
	}
	return &types.DiscoveredPatterns{Values: combined.Values(1)}
}

// ApplyInteractiveDecisions filters the combined set through the attached
// oracle. KEEP_ALL / REDACT_ALL answers install a global policy for the
// value's type (usernames and hostnames each have their own pair); other
// answers apply per value. Values the user wants kept are dropped from the
// redaction set.
func (e *Engine) ApplyInteractiveDecisions(dp *types.DiscoveredPatterns) *types.DiscoveredPatterns {
	if e.oracle == nil || dp.IsEmpty() {
		return dp
	}
	type policy int
	const (
		policyAsk policy = iota
		policyKeepAll
		policyRedactAll
	)
	global := map[types.PatternType]policy{}
	out := &types.DiscoveredPatterns{}
	for _, v := range dp.Values {
		switch global[v.Type] {
		case policyKeepAll:
			continue
		case policyRedactAll:
			out.Values = append(out.Values, v)
			continue
		}
		d := e.oracle.GetDecision(v)
		switch d.Action {
		case types.DecisionKeep:
			// kept in the clear
		case types.DecisionKeepAll:
			global[v.Type] = policyKeepAll
		case types.DecisionRedactAll:
			global[v.Type] = policyRedactAll
			out.Values = append(out.Values, v)
		default: // REDACT and REPLACE stay in the set
			out.Values = append(out.Values, v)
		}
	}
	out.Sort()
	return out
}
