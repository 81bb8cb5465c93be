package sharedprefs

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		raw     any
		want    any
		wantErr error
	}{
		{"bool", KindBool, true, true, nil},
		{"bool from string", KindBool, "true", nil, ErrInvalidValue},
		{"float from float64", KindFloat, 1.5, float32(1.5), nil},
		{"float from number", KindFloat, json.Number("0.25"), float32(0.25), nil},
		{"float overflow", KindFloat, 1e300, nil, ErrInvalidValue},
		{"float infinity token", KindFloat, "-Inf", float32(math.Inf(-1)), nil},
		{"float from other string", KindFloat, "1.5", nil, ErrInvalidValue},
		{"int from float64", KindInt, float64(42), int32(42), nil},
		{"int fractional", KindInt, 4.2, nil, ErrInvalidValue},
		{"int overflow", KindInt, json.Number("2147483648"), nil, ErrInvalidValue},
		{"int from yaml int", KindInt, 7, int32(7), nil},
		{"long from number", KindLong, json.Number("9223372036854775807"), int64(math.MaxInt64), nil},
		{"long from float64 out of range", KindLong, 1e19, nil, ErrInvalidValue},
		{"string", KindString, "x", "x", nil},
		{"string from number", KindString, 1, nil, ErrInvalidValue},
		{"string set from any slice", KindStringSet, []any{"b", "a", "b"}, []string{"a", "b"}, nil},
		{"string set with number", KindStringSet, []any{"a", 1}, nil, ErrInvalidValue},
		{"string set from set", KindStringSet, NewSet("z", "y"), []string{"y", "z"}, nil},
		{"string set from null", KindStringSet, nil, []string{}, nil},
		{"unknown kind", Kind("date"), "x", nil, ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeValue(tt.kind, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecodeValue_LongPrecision(t *testing.T) {
	for _, v := range []int64{math.MaxInt64, math.MinInt64, 1<<53 + 1} {
		data, err := EncodeValue(KindLong, v)
		require.NoError(t, err)
		got, err := DecodeValue(KindLong, data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestEncodeDecodeValue_NonFiniteFloat(t *testing.T) {
	for _, v := range []float32{float32(math.Inf(1)), float32(math.Inf(-1))} {
		data, err := EncodeValue(KindFloat, v)
		require.NoError(t, err)
		got, err := DecodeValue(KindFloat, data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	data, err := EncodeValue(KindFloat, float32(math.NaN()))
	require.NoError(t, err)
	assert.JSONEq(t, `"NaN"`, string(data))
	got, err := DecodeValue(KindFloat, data)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(got.(float32))))

	data, err = EncodeValue(KindFloat, float32(2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5", string(data), "finite floats stay JSON numbers")
}

func TestEncodeValue_RejectsWrongType(t *testing.T) {
	_, err := EncodeValue(KindInt, 5)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = EncodeValue(KindStringSet, []string{"b", "a"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDecodeValue_Malformed(t *testing.T) {
	_, err := DecodeValue(KindBool, []byte("{"))
	assert.ErrorIs(t, err, ErrSerialization)

	_, err = DecodeValue(KindInt, []byte(`"seven"`))
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestEntryJSON(t *testing.T) {
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []*Entry{
		{Namespace: "ns", Key: "b", Kind: KindBool, Value: true, UpdatedAt: updated},
		{Namespace: "ns", Key: "f", Kind: KindFloat, Value: float32(0.1), UpdatedAt: updated},
		{Namespace: "ns", Key: "inf", Kind: KindFloat, Value: float32(math.Inf(1)), UpdatedAt: updated},
		{Namespace: "ns", Key: "-inf", Kind: KindFloat, Value: float32(math.Inf(-1)), UpdatedAt: updated},
		{Namespace: "ns", Key: "i", Kind: KindInt, Value: int32(-3), UpdatedAt: updated},
		{Namespace: "ns", Key: "l", Kind: KindLong, Value: int64(math.MaxInt64), UpdatedAt: updated},
		{Namespace: "ns", Key: "s", Kind: KindString, Value: "", UpdatedAt: updated},
		{Namespace: "ns", Key: "ss", Kind: KindStringSet, Value: []string{"1", "2"}, UpdatedAt: updated},
	}

	for _, entry := range entries {
		t.Run(entry.Key, func(t *testing.T) {
			data, err := json.Marshal(entry)
			require.NoError(t, err)

			var decoded Entry
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, *entry, decoded)
		})
	}
}

func TestEntryJSON_NaN(t *testing.T) {
	data, err := json.Marshal(&Entry{Namespace: "ns", Key: "nan", Kind: KindFloat, Value: float32(math.NaN())})
	require.NoError(t, err)

	var decoded Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, KindFloat, decoded.Kind)
	assert.True(t, math.IsNaN(float64(decoded.Value.(float32))))
}

func TestEntryClone(t *testing.T) {
	original := &Entry{Key: "tags", Kind: KindStringSet, Value: []string{"a"}}
	clone := original.Clone()
	clone.Value.([]string)[0] = "b"
	assert.Equal(t, []string{"a"}, original.Value)
}

func TestValidateEntry(t *testing.T) {
	assert.NoError(t, ValidateEntry(&Entry{Key: "k", Kind: KindLong, Value: int64(1)}))
	assert.ErrorIs(t, ValidateEntry(nil), ErrInvalidValue)
	assert.ErrorIs(t, ValidateEntry(&Entry{Kind: KindLong, Value: int64(1)}), ErrInvalidKey)
	assert.ErrorIs(t, ValidateEntry(&Entry{Key: "k", Kind: KindLong, Value: 1}), ErrInvalidValue)
	assert.ErrorIs(t, ValidateEntry(&Entry{Key: "k", Kind: "blob", Value: 1}), ErrInvalidKind)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("string_set")
	require.NoError(t, err)
	assert.Equal(t, KindStringSet, k)

	_, err = ParseKind("double")
	assert.ErrorIs(t, err, ErrInvalidKind)
}
