package main

import (
	"cmp"
	"context"
	"fmt"

	"github.com/CreativeUnicorns/sharedprefs"
	"github.com/CreativeUnicorns/sharedprefs/screen"
)

// getValue reads key through the accessor selected by typ. An empty typ prints
// the stored value as held by the backend.
func getValue(ctx context.Context, p *sharedprefs.Preferences, typ screen.FieldType, key string) (any, error) {
	entry, err := p.Lookup(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", p.Name(), key, err)
	}
	if typ == "" {
		return entry.Value, nil
	}

	switch typ {
	case screen.TypeBool:
		return p.GetBool(ctx, key, sharedprefs.DefaultBool)
	case screen.TypeFloat:
		return p.GetFloat(ctx, key, sharedprefs.DefaultFloat)
	case screen.TypeInt:
		return p.GetInt(ctx, key, sharedprefs.DefaultInt)
	case screen.TypeLong:
		return p.GetLong(ctx, key, sharedprefs.DefaultLong)
	case screen.TypeString:
		return p.GetString(ctx, key, sharedprefs.DefaultString)
	case screen.TypeBoolSet:
		s, err := p.GetBoolSet(ctx, key, nil)
		return s.Sorted(sharedprefs.CompareBool), err
	case screen.TypeFloatSet:
		s, err := p.GetFloatSet(ctx, key, nil)
		return s.Sorted(cmp.Compare[float32]), err
	case screen.TypeIntSet:
		s, err := p.GetIntSet(ctx, key, nil)
		return s.Sorted(cmp.Compare[int32]), err
	case screen.TypeLongSet:
		s, err := p.GetLongSet(ctx, key, nil)
		return s.Sorted(cmp.Compare[int64]), err
	case screen.TypeStringSet:
		s, err := p.GetStringSet(ctx, key, nil)
		return s.Sorted(cmp.Compare[string]), err
	default:
		return nil, fmt.Errorf("%w: unknown type %q", sharedprefs.ErrInvalidKind, typ)
	}
}

// putValue parses args as typ and writes them under key. Scalar types take
// exactly one argument; set types take one argument per element.
func putValue(ctx context.Context, p *sharedprefs.Preferences, typ screen.FieldType, key string, args []string) error {
	switch typ {
	case screen.TypeBool:
		return putScalar(ctx, p.PutBool, key, args, sharedprefs.ParseBool)
	case screen.TypeFloat:
		return putScalar(ctx, p.PutFloat, key, args, sharedprefs.ParseFloat)
	case screen.TypeInt:
		return putScalar(ctx, p.PutInt, key, args, sharedprefs.ParseInt)
	case screen.TypeLong:
		return putScalar(ctx, p.PutLong, key, args, sharedprefs.ParseLong)
	case screen.TypeString:
		return putScalar(ctx, p.PutString, key, args, sharedprefs.ParseString)
	case screen.TypeBoolSet:
		return putSet(ctx, p.PutBoolSet, key, args, sharedprefs.ParseBool)
	case screen.TypeFloatSet:
		return putSet(ctx, p.PutFloatSet, key, args, sharedprefs.ParseFloat)
	case screen.TypeIntSet:
		return putSet(ctx, p.PutIntSet, key, args, sharedprefs.ParseInt)
	case screen.TypeLongSet:
		return putSet(ctx, p.PutLongSet, key, args, sharedprefs.ParseLong)
	case screen.TypeStringSet:
		return putSet(ctx, p.PutStringSet, key, args, sharedprefs.ParseString)
	default:
		return fmt.Errorf("%w: unknown type %q", sharedprefs.ErrInvalidKind, typ)
	}
}

func putScalar[T any](ctx context.Context, put func(context.Context, string, sharedprefs.Optional[T]) error, key string, args []string, parse func(string) (T, error)) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one value, got %d", len(args))
	}
	v, err := parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", sharedprefs.ErrInvalidValue, args[0], err)
	}
	return put(ctx, key, sharedprefs.Some(v))
}

func putSet[T comparable](ctx context.Context, put func(context.Context, string, sharedprefs.Optional[sharedprefs.Set[T]]) error, key string, args []string, parse func(string) (T, error)) error {
	set := sharedprefs.EmptySet[T]()
	for _, arg := range args {
		v, err := parse(arg)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", sharedprefs.ErrInvalidValue, arg, err)
		}
		set.Add(v)
	}
	return put(ctx, key, sharedprefs.Some(set))
}
