package sharedprefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// JSON has no number form for infinities and NaN, so float values that are not
// finite are written as one of these strings.
const (
	floatPosInf = "+Inf"
	floatNegInf = "-Inf"
	floatNaN    = "NaN"
)

// jsonValue returns the form of v that encoding/json can marshal.
func jsonValue(kind Kind, v any) any {
	f, ok := v.(float32)
	if !ok || kind != KindFloat {
		return v
	}
	switch {
	case math.IsInf(float64(f), 1):
		return floatPosInf
	case math.IsInf(float64(f), -1):
		return floatNegInf
	case math.IsNaN(float64(f)):
		return floatNaN
	}
	return v
}

// EncodeValue serializes a native value of kind to JSON for persistence.
func EncodeValue(kind Kind, v any) ([]byte, error) {
	if err := checkValue(kind, v); err != nil {
		return nil, err
	}
	data, err := json.Marshal(jsonValue(kind, v))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// DecodeValue parses JSON produced by EncodeValue back into the native value of kind.
// Numbers are decoded without going through float64 so that longs keep full precision.
func DecodeValue(kind Kind, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	v, err := NormalizeValue(kind, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return v, nil
}

// NormalizeValue converts a loosely typed value, such as one decoded from JSON or YAML,
// into the native Go type of kind. Numbers must be representable without loss.
func NormalizeValue(kind Kind, raw any) (any, error) {
	switch kind {
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case KindFloat:
		return toFloat32(raw)
	case KindInt:
		i, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d overflows int", ErrInvalidValue, i)
		}
		return int32(i), nil
	case KindLong:
		return toInt64(raw)
	case KindStringSet:
		return toStringSet(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil, fmt.Errorf("%w: expected %s, got %T", ErrInvalidValue, kind, raw)
}

func toFloat32(raw any) (float32, error) {
	var f float64
	switch v := raw.(type) {
	case float32:
		return v, nil
	case float64:
		f = v
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return float32(parsed), nil
	case string:
		switch v {
		case floatPosInf, "Inf":
			return float32(math.Inf(1)), nil
		case floatNegInf:
			return float32(math.Inf(-1)), nil
		case floatNaN:
			return float32(math.NaN()), nil
		}
		return 0, fmt.Errorf("%w: expected float, got %q", ErrInvalidValue, v)
	default:
		return 0, fmt.Errorf("%w: expected float, got %T", ErrInvalidValue, raw)
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, fmt.Errorf("%w: %g overflows float", ErrInvalidValue, f)
	}
	return float32(f), nil
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case json.Number:
		i, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return i, nil
	case float64:
		// -2^63 is exact in float64, 2^63 is the first value past MaxInt64.
		if v != math.Trunc(v) || v < -(1<<63) || v >= 1<<63 {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, raw)
	}
}

func toStringSet(raw any) ([]string, error) {
	var out []string
	switch v := raw.(type) {
	case []string:
		out = slices.Clone(v)
	case Set[string]:
		out = v.Values()
	case []any:
		out = make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("%w: string set element %T", ErrInvalidValue, elem)
			}
			out = append(out, s)
		}
	case nil:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%w: expected string set, got %T", ErrInvalidValue, raw)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
