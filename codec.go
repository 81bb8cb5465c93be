package sharedprefs

import (
	"slices"
	"strconv"
)

// EncodeSet converts a typed set into the string set representation used by storage.
// The result is sorted; elements that format to the same string collapse into one.
func EncodeSet[T comparable](set Set[T], format func(T) string) []string {
	seen := make(map[string]struct{}, len(set))
	out := make([]string, 0, len(set))
	for v := range set {
		s := format(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// DecodeSet parses every encoded element. Elements that fail to parse are dropped;
// an input where nothing parses yields an empty set, never an error.
func DecodeSet[T comparable](encoded []string, parse func(string) (T, error)) Set[T] {
	out := make(Set[T], len(encoded))
	for _, s := range encoded {
		v, err := parse(s)
		if err != nil {
			continue
		}
		out[v] = struct{}{}
	}
	return out
}

// FormatBool is the canonical string form of a bool set element.
func FormatBool(v bool) string { return strconv.FormatBool(v) }

// ParseBool parses a bool set element.
func ParseBool(s string) (bool, error) { return strconv.ParseBool(s) }

// FormatFloat is the shortest decimal form that round-trips a float32.
func FormatFloat(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }

// ParseFloat parses a float set element.
func ParseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

// FormatInt is the base 10 form of an int set element.
func FormatInt(v int32) string { return strconv.FormatInt(int64(v), 10) }

// ParseInt parses an int set element, rejecting values outside int32.
func ParseInt(s string) (int32, error) {
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(i), nil
}

// FormatLong is the base 10 form of a long set element.
func FormatLong(v int64) string { return strconv.FormatInt(v, 10) }

// ParseLong parses a long set element.
func ParseLong(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

// FormatString is the identity; string set elements are stored as is.
func FormatString(s string) string { return s }

// ParseString is the identity and never fails.
func ParseString(s string) (string, error) { return s, nil }

// CompareBool orders false before true, for sorting bool sets.
func CompareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
