package sharedprefs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Preferences is a named preference store instance with typed accessors.
//
// Every Get takes the value to return when the key is absent. Every Put takes an
// Optional: None is a deliberate no-op that leaves the stored value untouched, Some
// makes the value visible to the process immediately and queues it for commit.
// Reading a key with an accessor whose native kind differs from the stored one fails
// with ErrTypeMismatch.
type Preferences struct {
	manager *Manager
	name    string
}

// Name returns the namespace this instance reads and writes.
func (p *Preferences) Name() string {
	return p.name
}

func (p *Preferences) lookup(ctx context.Context, key string, kind Kind) (*Entry, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	entry, err := p.manager.get(ctx, p.name, key)
	if err != nil {
		return nil, err
	}
	if entry.Kind != kind {
		return nil, fmt.Errorf("%w: %q holds %s, read as %s", ErrTypeMismatch, key, entry.Kind, kind)
	}
	return entry, nil
}

func getValue[T any](ctx context.Context, p *Preferences, key string, kind Kind, def T) (T, error) {
	var zero T
	entry, err := p.lookup(ctx, key, kind)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return zero, err
	}
	v, ok := entry.Value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, key, entry.Value)
	}
	return v, nil
}

func getSet[T comparable](ctx context.Context, p *Preferences, key string, def Set[T], parse func(string) (T, error)) (Set[T], error) {
	entry, err := p.lookup(ctx, key, KindStringSet)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	encoded, ok := entry.Value.([]string)
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, key, entry.Value)
	}
	return DecodeSet(encoded, parse), nil
}

func putValue[T any](ctx context.Context, p *Preferences, key string, kind Kind, value Optional[T], native func(T) any) error {
	v, ok := value.Get()
	if !ok {
		return nil
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.manager.put(p.name, key, &Entry{
		Namespace: p.name,
		Key:       key,
		Kind:      kind,
		Value:     native(v),
		UpdatedAt: time.Now(),
	})
}

func putSet[T comparable](ctx context.Context, p *Preferences, key string, value Optional[Set[T]], format func(T) string) error {
	return putValue(ctx, p, key, KindStringSet, value, func(s Set[T]) any {
		return EncodeSet(s, format)
	})
}

func identity[T any](v T) any { return v }

// GetBool returns the bool stored under key, or def.
func (p *Preferences) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	return getValue(ctx, p, key, KindBool, def)
}

// PutBool writes value under key unless it is None.
func (p *Preferences) PutBool(ctx context.Context, key string, value Optional[bool]) error {
	return putValue(ctx, p, key, KindBool, value, identity[bool])
}

// GetFloat returns the float stored under key, or def.
func (p *Preferences) GetFloat(ctx context.Context, key string, def float32) (float32, error) {
	return getValue(ctx, p, key, KindFloat, def)
}

// PutFloat writes value under key unless it is None.
func (p *Preferences) PutFloat(ctx context.Context, key string, value Optional[float32]) error {
	return putValue(ctx, p, key, KindFloat, value, identity[float32])
}

// GetInt returns the int stored under key, or def.
func (p *Preferences) GetInt(ctx context.Context, key string, def int32) (int32, error) {
	return getValue(ctx, p, key, KindInt, def)
}

// PutInt writes value under key unless it is None.
func (p *Preferences) PutInt(ctx context.Context, key string, value Optional[int32]) error {
	return putValue(ctx, p, key, KindInt, value, identity[int32])
}

// GetLong returns the long stored under key, or def.
func (p *Preferences) GetLong(ctx context.Context, key string, def int64) (int64, error) {
	return getValue(ctx, p, key, KindLong, def)
}

// PutLong writes value under key unless it is None.
func (p *Preferences) PutLong(ctx context.Context, key string, value Optional[int64]) error {
	return putValue(ctx, p, key, KindLong, value, identity[int64])
}

// GetString returns the string stored under key, or def when the key is absent.
func (p *Preferences) GetString(ctx context.Context, key string, def string) (string, error) {
	return getValue(ctx, p, key, KindString, def)
}

// GetStringOrNull returns None for an absent key, which lets callers tell an unset
// key apart from one set to "".
func (p *Preferences) GetStringOrNull(ctx context.Context, key string) (Optional[string], error) {
	entry, err := p.lookup(ctx, key, KindString)
	if errors.Is(err, ErrNotFound) {
		return None[string](), nil
	}
	if err != nil {
		return None[string](), err
	}
	s, ok := entry.Value.(string)
	if !ok {
		return None[string](), fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, key, entry.Value)
	}
	return Some(s), nil
}

// PutString writes value under key unless it is None.
func (p *Preferences) PutString(ctx context.Context, key string, value Optional[string]) error {
	return putValue(ctx, p, key, KindString, value, identity[string])
}

// GetStringSet returns the string set stored under key, or def.
// Sets of other kinds are stored as string sets too, so this also reads them in encoded form.
func (p *Preferences) GetStringSet(ctx context.Context, key string, def Set[string]) (Set[string], error) {
	return getSet(ctx, p, key, def, ParseString)
}

// PutStringSet writes value under key unless it is None.
func (p *Preferences) PutStringSet(ctx context.Context, key string, value Optional[Set[string]]) error {
	return putSet(ctx, p, key, value, FormatString)
}

// GetBoolSet returns the bool set stored under key, or def. Unparseable elements are dropped.
func (p *Preferences) GetBoolSet(ctx context.Context, key string, def Set[bool]) (Set[bool], error) {
	return getSet(ctx, p, key, def, ParseBool)
}

// PutBoolSet writes value under key unless it is None.
func (p *Preferences) PutBoolSet(ctx context.Context, key string, value Optional[Set[bool]]) error {
	return putSet(ctx, p, key, value, FormatBool)
}

// GetFloatSet returns the float set stored under key, or def. Unparseable elements are dropped.
func (p *Preferences) GetFloatSet(ctx context.Context, key string, def Set[float32]) (Set[float32], error) {
	return getSet(ctx, p, key, def, ParseFloat)
}

// PutFloatSet writes value under key unless it is None.
func (p *Preferences) PutFloatSet(ctx context.Context, key string, value Optional[Set[float32]]) error {
	return putSet(ctx, p, key, value, FormatFloat)
}

// GetIntSet returns the int set stored under key, or def. Unparseable elements are dropped.
func (p *Preferences) GetIntSet(ctx context.Context, key string, def Set[int32]) (Set[int32], error) {
	return getSet(ctx, p, key, def, ParseInt)
}

// PutIntSet writes value under key unless it is None.
func (p *Preferences) PutIntSet(ctx context.Context, key string, value Optional[Set[int32]]) error {
	return putSet(ctx, p, key, value, FormatInt)
}

// GetLongSet returns the long set stored under key, or def. Unparseable elements are dropped.
func (p *Preferences) GetLongSet(ctx context.Context, key string, def Set[int64]) (Set[int64], error) {
	return getSet(ctx, p, key, def, ParseLong)
}

// PutLongSet writes value under key unless it is None.
func (p *Preferences) PutLongSet(ctx context.Context, key string, value Optional[Set[int64]]) error {
	return putSet(ctx, p, key, value, FormatLong)
}

// Contains reports whether key holds a value of any kind.
func (p *Preferences) Contains(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	_, err := p.manager.get(ctx, p.name, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Lookup returns the raw entry under key, or ErrNotFound.
func (p *Preferences) Lookup(ctx context.Context, key string) (*Entry, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return p.manager.get(ctx, p.name, key)
}

// Remove deletes key. Like a put, it is visible immediately and committed asynchronously.
func (p *Preferences) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.manager.put(p.name, key, nil)
}

// All returns every entry of this instance, including writes not yet committed.
func (p *Preferences) All(ctx context.Context) (map[string]*Entry, error) {
	return p.manager.getAll(ctx, p.name)
}

// Clear removes every key of this instance.
func (p *Preferences) Clear(ctx context.Context) error {
	entries, err := p.All(ctx)
	if err != nil {
		return err
	}
	for key := range entries {
		if err := p.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
