// validation.go
package sharedprefs

import (
	"fmt"
	"slices"
)

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

// checkValue verifies that v already has the exact native Go type of kind.
func checkValue(kind Kind, v any) error {
	switch kind {
	case KindBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: expected boolean, got %T", ErrInvalidValue, v)
		}
	case KindFloat:
		if _, ok := v.(float32); !ok {
			return fmt.Errorf("%w: expected float, got %T", ErrInvalidValue, v)
		}
	case KindInt:
		if _, ok := v.(int32); !ok {
			return fmt.Errorf("%w: expected int, got %T", ErrInvalidValue, v)
		}
	case KindLong:
		if _, ok := v.(int64); !ok {
			return fmt.Errorf("%w: expected long, got %T", ErrInvalidValue, v)
		}
	case KindString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: expected string, got %T", ErrInvalidValue, v)
		}
	case KindStringSet:
		set, ok := v.([]string)
		if !ok {
			return fmt.Errorf("%w: expected string set, got %T", ErrInvalidValue, v)
		}
		if !slices.IsSorted(set) {
			return fmt.Errorf("%w: string set is not sorted", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

// ValidateEntry checks that an entry is well formed before it is persisted.
func ValidateEntry(e *Entry) error {
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidValue)
	}
	if err := validateKey(e.Key); err != nil {
		return err
	}
	return checkValue(e.Kind, e.Value)
}
