// errors.go
package sharedprefs

import "errors"

var (
	ErrInvalidKey         = errors.New("invalid preference key")
	ErrInvalidKind        = errors.New("invalid preference kind")
	ErrInvalidValue       = errors.New("invalid preference value")
	ErrTypeMismatch       = errors.New("preference type mismatch")
	ErrNotFound           = errors.New("preference not found")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
	ErrSerialization      = errors.New("preference serialization failed")
	ErrClosed             = errors.New("preference manager closed")
)
