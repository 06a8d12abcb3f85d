package pattern

// Default patterns for the built-in families. Users override or extend
// these per family in the configuration; an empty patterns list falls back
// to the defaults here.
//
// All patterns are RE2. Family semantics that other dialects express with
// lookbehind are expressed here with capture groups instead.
const (
	// DefaultEmailPattern matches whole addresses; the local part is group 1
	// so discovery can learn just the part before the @.
	DefaultEmailPattern = `([A-Za-z0-9._%+-]+)@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`

	// DefaultIPv4Pattern matches dotted quads with an optional port.
	DefaultIPv4Pattern = `\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`

	// DefaultIPv6Pattern is intentionally loose; candidates are narrowed by
	// the safe-address check before replacement.
	DefaultIPv6Pattern = `\b(?:[0-9A-Fa-f]{1,4}:){2,7}[0-9A-Fa-f:]+\b`

	// DefaultUUIDPattern matches the canonical 8-4-4-4-12 form. Matches are
	// confirmed by parsing before replacement.
	DefaultUUIDPattern = `\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`

	// DefaultHomeDirPattern captures the user segment of Unix and Windows
	// home paths; only group 1 is replaced so the path structure survives.
	DefaultHomeDirPattern = `(?:/Users/|/home/|[A-Za-z]:\\Users\\)([A-Za-z0-9._-]+)`

	// DefaultInternalURLPattern matches URLs pointing at hosts that look
	// internal (corp/internal/intranet zones or well-known internal
	// services).
	DefaultInternalURLPattern = `\bhttps?://[A-Za-z0-9.-]*(?:corp|internal|intranet|artifactory|nexus|jenkins)[A-Za-z0-9.-]*(?::\d+)?(?:/[^\s"']*)?`

	// DefaultHostnamePattern matches dotted names of at least three labels
	// whose first label starts with a letter, so version strings like 22.6.0
	// pass through; one- and two-label names such as example.com are not
	// matched. Single labels are learned by discovery extractors instead,
	// which keeps the false-positive rate of blanket hostname matching down.
	DefaultHostnamePattern = `\b[A-Za-z](?:[A-Za-z0-9-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?){2,}\b`

	// DefaultSSHHostPattern matches user@host[:port] ssh targets.
	DefaultSSHHostPattern = `\b(?:ssh://)?[A-Za-z0-9._-]+@[A-Za-z0-9.-]+(?::\d{1,5})?\b`
)

// DefaultPropertyNamePattern flags field names whose values are wholesale
// sensitive regardless of content.
const DefaultPropertyNamePattern = `(?i)^(?:.*(?:password|passwd|secret|token|credential|apikey|api_key).*|user(?:name)?|login)$`

// FamilyDefaults maps family keys to their default pattern lists.
var FamilyDefaults = map[string][]string{
	"email":            {DefaultEmailPattern},
	"ip":               {DefaultIPv4Pattern, DefaultIPv6Pattern},
	"uuid":             {DefaultUUIDPattern},
	"ssh_hosts":        {DefaultSSHHostPattern},
	"home_directories": {DefaultHomeDirPattern},
	"hostnames":        {DefaultHostnamePattern},
	"internal_urls":    {DefaultInternalURLPattern},
}
