package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrhy/tinyx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestWriteOnce(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistForPath(dir)

	require.NoError(t, p.Store(ctx, "snap", []byte("first")))
	require.NoError(t, p.Store(ctx, "snap", []byte("second")))
	loaded, err := p.Load(ctx, "snap")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
	assert.Equal(t, "snap", entries[0].Name())

	_, err = p.Load(ctx, "missing")
	assert.ErrorIs(t, err, tinyx.ErrNotFound)
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cpr, err := tinyx.NewCheckpointer(tinyx.CheckpointConfig{
		StoreImmutablePartsWith: NewPersistForPath(dir),
	})
	require.NoError(t, err)

	state := tinyx.From(map[string]any{"todos": []any{map[string]any{"task": "x"}}})
	cp, err := cpr.Save(ctx, state)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, cp.Link))
	require.NoError(t, err)

	s, err := cpr.Restore(ctx, cp)
	require.NoError(t, err)
	assert.Equal(t, "x", s.Get("todos", 0, "task"))
	assert.True(t, tinyx.IsFrozen(s.Get("todos")))
}
