package sharedprefs

import (
	"testing"
)

func TestErrorVariables(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidKey", ErrInvalidKey, "invalid preference key"},
		{"ErrInvalidKind", ErrInvalidKind, "invalid preference kind"},
		{"ErrInvalidValue", ErrInvalidValue, "invalid preference value"},
		{"ErrTypeMismatch", ErrTypeMismatch, "preference type mismatch"},
		{"ErrNotFound", ErrNotFound, "preference not found"},
		{"ErrStorageUnavailable", ErrStorageUnavailable, "storage backend unavailable"},
		{"ErrCacheUnavailable", ErrCacheUnavailable, "cache backend unavailable"},
		{"ErrSerialization", ErrSerialization, "preference serialization failed"},
		{"ErrClosed", ErrClosed, "preference manager closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
			}
		})
	}
}
