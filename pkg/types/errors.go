package types

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat      ErrKind = iota // malformed headers/signatures (e.g., bad "FLR\0")
	ErrKindCorrupt                    // structural corruption (bad sizes/offsets/ids)
	ErrKindUnsupported                // valid feature we don't support (yet)
	ErrKindNotFound                   // missing type/field/pool entry
	ErrKindType                       // value kind doesn't match the field's declared type
	ErrKindState                      // invalid operation for current state
	ErrKindCollision                  // conflicting re-registration of a type name
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by implementations.
var (
	// ErrNotRecording indicates the file lacks a valid "FLR\0" chunk header.
	ErrNotRecording = &Error{Kind: ErrKindFormat, Msg: "not a flight recording (bad chunk magic)"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt recording structure"}
	// ErrUnsupported indicates a recognized but unsupported feature/variant.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported recording feature"}
	// ErrNotFound indicates a missing type, field or pool entry.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrTypeCollision indicates a type name was re-registered with an
	// incompatible field layout. This points at corrupt or hostile input;
	// processing must abort rather than emit a broken dictionary.
	ErrTypeCollision = &Error{Kind: ErrKindCollision, Msg: "type dictionary name collision"}
	// ErrSealed indicates a mutation was attempted on a sealed type.
	ErrSealed = &Error{Kind: ErrKindState, Msg: "type layout is sealed"}
)
