package screen

import (
	"cmp"
	"context"
	"fmt"

	"github.com/CreativeUnicorns/sharedprefs"
)

// FieldType selects the typed accessor a field is bound to.
type FieldType string

const (
	TypeBool      FieldType = "bool"
	TypeFloat     FieldType = "float"
	TypeInt       FieldType = "int"
	TypeLong      FieldType = "long"
	TypeString    FieldType = "string"
	TypeBoolSet   FieldType = "bool_set"
	TypeFloatSet  FieldType = "float_set"
	TypeIntSet    FieldType = "int_set"
	TypeLongSet   FieldType = "long_set"
	TypeStringSet FieldType = "string_set"
)

type prefs = sharedprefs.Preferences

// fieldCodec binds a FieldType to its accessor pair. Values handed to read and
// write are canonical: a native scalar, or a sorted slice of natives for sets.
type fieldCodec struct {
	elem      sharedprefs.Kind
	set       bool
	normalize func(raw any) (any, error)
	members   func(v any) []any
	read      func(ctx context.Context, p *prefs, key string, def any) (any, error)
	write     func(ctx context.Context, p *prefs, key string, v any) error
}

var fieldCodecs = map[FieldType]fieldCodec{
	TypeBool:      scalarField(sharedprefs.KindBool, (*prefs).GetBool, (*prefs).PutBool),
	TypeFloat:     scalarField(sharedprefs.KindFloat, (*prefs).GetFloat, (*prefs).PutFloat),
	TypeInt:       scalarField(sharedprefs.KindInt, (*prefs).GetInt, (*prefs).PutInt),
	TypeLong:      scalarField(sharedprefs.KindLong, (*prefs).GetLong, (*prefs).PutLong),
	TypeString:    scalarField(sharedprefs.KindString, (*prefs).GetString, (*prefs).PutString),
	TypeBoolSet:   setField(sharedprefs.KindBool, sharedprefs.CompareBool, (*prefs).GetBoolSet, (*prefs).PutBoolSet),
	TypeFloatSet:  setField(sharedprefs.KindFloat, cmp.Compare[float32], (*prefs).GetFloatSet, (*prefs).PutFloatSet),
	TypeIntSet:    setField(sharedprefs.KindInt, cmp.Compare[int32], (*prefs).GetIntSet, (*prefs).PutIntSet),
	TypeLongSet:   setField(sharedprefs.KindLong, cmp.Compare[int64], (*prefs).GetLongSet, (*prefs).PutLongSet),
	TypeStringSet: setField(sharedprefs.KindString, cmp.Compare[string], (*prefs).GetStringSet, (*prefs).PutStringSet),
}

func codecFor(t FieldType) (fieldCodec, error) {
	c, ok := fieldCodecs[t]
	if !ok {
		return fieldCodec{}, fmt.Errorf("%w: unknown field type %q", sharedprefs.ErrInvalidKind, t)
	}
	return c, nil
}

// normalizeElem converts a loosely typed scalar, such as a YAML or JSON value or
// its string form, into the native type of kind.
func normalizeElem(kind sharedprefs.Kind, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok || kind == sharedprefs.KindString {
		return sharedprefs.NormalizeValue(kind, raw)
	}

	var v any
	var err error
	switch kind {
	case sharedprefs.KindBool:
		v, err = sharedprefs.ParseBool(s)
	case sharedprefs.KindFloat:
		v, err = sharedprefs.ParseFloat(s)
	case sharedprefs.KindInt:
		v, err = sharedprefs.ParseInt(s)
	case sharedprefs.KindLong:
		v, err = sharedprefs.ParseLong(s)
	default:
		return nil, fmt.Errorf("%w: %q", sharedprefs.ErrInvalidKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid %s", sharedprefs.ErrInvalidValue, s, kind)
	}
	return v, nil
}

func scalarField[T comparable](
	kind sharedprefs.Kind,
	get func(*prefs, context.Context, string, T) (T, error),
	put func(*prefs, context.Context, string, sharedprefs.Optional[T]) error,
) fieldCodec {
	return fieldCodec{
		elem: kind,
		normalize: func(raw any) (any, error) {
			if raw == nil {
				var zero T
				return zero, nil
			}
			return normalizeElem(kind, raw)
		},
		members: func(v any) []any {
			return []any{v}
		},
		read: func(ctx context.Context, p *prefs, key string, def any) (any, error) {
			return get(p, ctx, key, def.(T))
		},
		write: func(ctx context.Context, p *prefs, key string, v any) error {
			return put(p, ctx, key, sharedprefs.Some(v.(T)))
		},
	}
}

func setField[T comparable](
	kind sharedprefs.Kind,
	compare func(a, b T) int,
	get func(*prefs, context.Context, string, sharedprefs.Set[T]) (sharedprefs.Set[T], error),
	put func(*prefs, context.Context, string, sharedprefs.Optional[sharedprefs.Set[T]]) error,
) fieldCodec {
	return fieldCodec{
		elem: kind,
		set:  true,
		normalize: func(raw any) (any, error) {
			var items []any
			switch v := raw.(type) {
			case nil:
				return []T{}, nil
			case []any:
				items = v
			case []T:
				for _, item := range v {
					items = append(items, item)
				}
			default:
				return nil, fmt.Errorf("%w: expected a list, got %T", sharedprefs.ErrInvalidValue, raw)
			}
			set := sharedprefs.EmptySet[T]()
			for _, item := range items {
				v, err := normalizeElem(kind, item)
				if err != nil {
					return nil, err
				}
				set.Add(v.(T))
			}
			return set.Sorted(compare), nil
		},
		members: func(v any) []any {
			values := v.([]T)
			out := make([]any, len(values))
			for i, item := range values {
				out[i] = item
			}
			return out
		},
		read: func(ctx context.Context, p *prefs, key string, def any) (any, error) {
			s, err := get(p, ctx, key, sharedprefs.NewSet(def.([]T)...))
			if err != nil {
				return nil, err
			}
			return s.Sorted(compare), nil
		},
		write: func(ctx context.Context, p *prefs, key string, v any) error {
			return put(p, ctx, key, sharedprefs.Some(sharedprefs.NewSet(v.([]T)...)))
		},
	}
}
