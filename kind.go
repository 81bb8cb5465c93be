package sharedprefs

import "fmt"

// Kind is the native type a stored preference value is held as.
// A key keeps a single Kind until it is overwritten with a value of another Kind.
type Kind string

// Native kinds understood by every Storage backend.
// Sets of non-string values are stored as KindStringSet, see EncodeSet.
const (
	// KindBool holds a bool.
	KindBool Kind = "boolean"
	// KindFloat holds a float32.
	KindFloat Kind = "float"
	// KindInt holds an int32.
	KindInt Kind = "int"
	// KindLong holds an int64.
	KindLong Kind = "long"
	// KindString holds a string.
	KindString Kind = "string"
	// KindStringSet holds a sorted []string without duplicates.
	KindStringSet Kind = "string_set"
)

var validKinds = map[Kind]bool{
	KindBool:      true,
	KindFloat:     true,
	KindInt:       true,
	KindLong:      true,
	KindString:    true,
	KindStringSet: true,
}

// Valid reports whether k is one of the native kinds.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// ParseKind converts its textual form into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

func (k Kind) String() string {
	return string(k)
}

// Per-kind default values for callers that have no better fallback.
const (
	DefaultBool   = false
	DefaultFloat  = float32(0)
	DefaultInt    = int32(0)
	DefaultLong   = int64(0)
	DefaultString = ""
)
