package s3_test

import (
	"context"
	"testing"

	"github.com/jrhy/tinyx"
	s3Persist "github.com/jrhy/tinyx/persist/s3"
	"github.com/jrhy/tinyx/persist/s3test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestHappyCase(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := s3test.Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "")
	err := p.Store(ctx, "foofoo", []byte("here is some stuff"))
	require.NoError(t, err)
	b, err := p.Load(ctx, "foofoo")
	require.NoError(t, err)
	assert.Equal(t, []byte("here is some stuff"), b)
}

func TestMissingObject(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := s3test.Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "snapshots/")
	_, err := p.Load(ctx, "nope")
	assert.ErrorIs(t, err, tinyx.ErrNotFound)
}

func TestCheckpointUndoHistory(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := s3test.Client()
	defer closer()

	cpr, err := tinyx.NewCheckpointer(tinyx.CheckpointConfig{
		StoreImmutablePartsWith: s3Persist.NewPersist(c, bucketName, "snapshots/"),
		Marshal:                 tinyx.EncodeProto,
		Unmarshal:               tinyx.DecodeProto,
	})
	require.NoError(t, err)

	store := tinyx.New(tinyx.RecordOf(map[string]any{"count": 1}),
		tinyx.EnableUndoRedo(), cpr.Autosave(ctx))
	inc := tinyx.NewTransaction("INC", func(any) tinyx.Mutation {
		return func(ops *tinyx.Ops) error {
			return ops.Update(tinyx.P("count"), func(n any) any { return n.(int) + 1 })
		}
	})
	bump := tinyx.Undoable(func(s tinyx.Store, _ struct{}) error {
		_, err := s.Commit(inc, nil)
		return err
	})
	require.NoError(t, bump(store, struct{}{}))
	require.NotNil(t, cpr.Latest())

	restored, err := cpr.Restore(ctx, cpr.Latest(), tinyx.EnableUndoRedo())
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Get("count"))

	require.NoError(t, tinyx.Undo(restored))
	assert.Equal(t, 1, restored.Get("count"))
}
