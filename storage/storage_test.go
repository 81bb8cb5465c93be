package storage

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/sharedprefs"
)

func entryOf(namespace, key string, kind sharedprefs.Kind, value any) *sharedprefs.Entry {
	return &sharedprefs.Entry{
		Namespace: namespace,
		Key:       key,
		Kind:      kind,
		Value:     value,
		UpdatedAt: time.Now().Truncate(time.Second),
	}
}

// testStorageContract exercises the behavior every backend shares.
func testStorageContract(t *testing.T, s sharedprefs.Storage) {
	t.Helper()
	ctx := context.Background()

	entries := []*sharedprefs.Entry{
		entryOf("ui", "dark", sharedprefs.KindBool, true),
		entryOf("ui", "scale", sharedprefs.KindFloat, float32(1.5)),
		entryOf("ui", "columns", sharedprefs.KindInt, int32(math.MinInt32)),
		entryOf("ui", "epoch", sharedprefs.KindLong, int64(math.MaxInt64)),
		entryOf("ui", "theme", sharedprefs.KindString, "solarized"),
		entryOf("ui", "tags", sharedprefs.KindStringSet, []string{"a", "b", "c"}),
		entryOf("ui", "empty", sharedprefs.KindStringSet, []string{}),
		entryOf("sync", "theme", sharedprefs.KindString, "other namespace"),
	}

	t.Run("set_and_get_every_kind", func(t *testing.T) {
		for _, e := range entries {
			require.NoError(t, s.Set(ctx, e), "set %s/%s", e.Namespace, e.Key)
		}
		for _, e := range entries {
			got, err := s.Get(ctx, e.Namespace, e.Key)
			require.NoError(t, err, "get %s/%s", e.Namespace, e.Key)
			assert.Equal(t, e.Namespace, got.Namespace)
			assert.Equal(t, e.Key, got.Key)
			assert.Equal(t, e.Kind, got.Kind)
			assert.Equal(t, e.Value, got.Value, "value of %s/%s", e.Namespace, e.Key)
			assert.Equal(t, e.UpdatedAt.Unix(), got.UpdatedAt.Unix())
		}
	})

	t.Run("get_missing", func(t *testing.T) {
		_, err := s.Get(ctx, "ui", "missing")
		assert.ErrorIs(t, err, sharedprefs.ErrNotFound)
		_, err = s.Get(ctx, "nowhere", "theme")
		assert.ErrorIs(t, err, sharedprefs.ErrNotFound)
	})

	t.Run("overwrite_changes_kind", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, entryOf("ui", "dark", sharedprefs.KindString, "auto")))
		got, err := s.Get(ctx, "ui", "dark")
		require.NoError(t, err)
		assert.Equal(t, sharedprefs.KindString, got.Kind)
		assert.Equal(t, "auto", got.Value)
	})

	t.Run("get_all_is_per_namespace", func(t *testing.T) {
		all, err := s.GetAll(ctx, "ui")
		require.NoError(t, err)
		assert.Len(t, all, 7)
		assert.Equal(t, "solarized", all["theme"].Value)

		other, err := s.GetAll(ctx, "sync")
		require.NoError(t, err)
		assert.Len(t, other, 1)

		none, err := s.GetAll(ctx, "nowhere")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "ui", "theme"))
		_, err := s.Get(ctx, "ui", "theme")
		assert.ErrorIs(t, err, sharedprefs.ErrNotFound)

		got, err := s.Get(ctx, "sync", "theme")
		require.NoError(t, err)
		assert.Equal(t, "other namespace", got.Value)

		assert.ErrorIs(t, s.Delete(ctx, "ui", "theme"), sharedprefs.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "nowhere", "theme"), sharedprefs.ErrNotFound)
	})

	t.Run("rejects_malformed_entries", func(t *testing.T) {
		assert.ErrorIs(t, s.Set(ctx, entryOf("ui", "", sharedprefs.KindBool, true)), sharedprefs.ErrInvalidKey)
		assert.ErrorIs(t, s.Set(ctx, entryOf("ui", "k", sharedprefs.KindInt, "seven")), sharedprefs.ErrInvalidValue)
		assert.ErrorIs(t, s.Set(ctx, entryOf("ui", "k", sharedprefs.KindStringSet, []string{"b", "a"})), sharedprefs.ErrInvalidValue)
		assert.ErrorIs(t, s.Set(ctx, entryOf("ui", "k", sharedprefs.Kind("json"), "{}")), sharedprefs.ErrInvalidKind)
	})

	t.Run("returned_entries_are_copies", func(t *testing.T) {
		got, err := s.Get(ctx, "ui", "tags")
		require.NoError(t, err)
		got.Value.([]string)[0] = "mutated"

		again, err := s.Get(ctx, "ui", "tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, again.Value)
	})

	t.Run("non_finite_floats", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, entryOf("limits", "max", sharedprefs.KindFloat, float32(math.Inf(1)))))
		require.NoError(t, s.Set(ctx, entryOf("limits", "min", sharedprefs.KindFloat, float32(math.Inf(-1)))))
		require.NoError(t, s.Set(ctx, entryOf("limits", "unset", sharedprefs.KindFloat, float32(math.NaN()))))

		got, err := s.Get(ctx, "limits", "max")
		require.NoError(t, err)
		assert.True(t, math.IsInf(float64(got.Value.(float32)), 1))

		got, err = s.Get(ctx, "limits", "min")
		require.NoError(t, err)
		assert.True(t, math.IsInf(float64(got.Value.(float32)), -1))

		all, err := s.GetAll(ctx, "limits")
		require.NoError(t, err)
		require.Contains(t, all, "unset")
		assert.True(t, math.IsNaN(float64(all["unset"].Value.(float32))))
	})
}
