package tinyx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	setFoo = NewTransaction("SET_FOO", func(value any) Mutation {
		return func(ops *Ops) error { return ops.Set(P("test", "foo"), value) }
	})
	doubleFoo = NewTransaction("DOUBLE_FOO", func(any) Mutation {
		return func(ops *Ops) error {
			return ops.Update(P("test", "foo"), func(v any) any { return v.(int) * 2 })
		}
	})
	clearTest = NewTransaction("CLEAR", func(any) Mutation {
		return func(ops *Ops) error { return ops.Remove("test") }
	})
	addTodo = NewTransaction("ADD_TODO", func(task any) Mutation {
		return func(ops *Ops) error {
			return ops.Update(P("todos"), func(todos any) any {
				return asSeq(todos).Appended(RecordOf(map[string]any{"task": task}))
			})
		}
	})
	identity = NewTransaction("IDENTITY", func(any) Mutation {
		return func(ops *Ops) error {
			return ops.Update(P("todos"), func(todos any) any { return todos })
		}
	})
)

func TestStoreOps(t *testing.T) {
	t.Parallel()
	store := New(NewMap())
	var test any
	unsubscribe := store.Subscribe(func(m any) { test = GetIn(m, "test") })
	defer unsubscribe()
	assert.Nil(t, test)

	_, err := store.Commit(setFoo, 42)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": 42}, ToNative(test))
	assert.True(t, Same(test, store.Get("test")))
	assert.Equal(t, KindMap, KindOf(store.Get()))

	_, err = store.Commit(doubleFoo, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": 84}, ToNative(test))

	_, err = store.Commit(clearTest, nil)
	require.NoError(t, err)
	assert.Nil(t, test)
}

func TestStoreWithSetsAndMaps(t *testing.T) {
	t.Parallel()
	testSet := NewTransaction("TEST_SET", func(payload any) Mutation {
		value := payload.(int)
		return func(ops *Ops) error {
			ops.Set(P("a_map", fmt.Sprintf("key%d", value)), value)
			ops.Update(P("a_set"), func(s any) any { return s.(*Set).With(value) })
			return ops.Err()
		}
	})
	testDelete := NewTransaction("TEST_DELETE", func(payload any) Mutation {
		value := payload.(int)
		return func(ops *Ops) error {
			ops.Remove("a_map", fmt.Sprintf("key%d", value))
			ops.Remove("a_set", value)
			return ops.Err()
		}
	})
	store := New(From(map[string]any{"a_map": NewMap(), "a_set": SetOf()}))

	_, err := store.Commit(testSet, 1)
	require.NoError(t, err)
	_, err = store.Commit(testSet, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{"key1", "key2"}, store.Get("a_map").(*Map).Keys())
	assert.Equal(t, 2, store.Get("a_map", "key2"))
	assert.Equal(t, []any{1, 2}, store.Get("a_set").(*Set).Elems())

	_, err = store.Commit(testDelete, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{"key2"}, store.Get("a_map").(*Map).Keys())
	assert.Equal(t, []any{2}, store.Get("a_set").(*Set).Elems())
}

func TestMultipleSubscribers(t *testing.T) {
	t.Parallel()
	store := New(NewMap())
	var test1, test2 any
	var order []int
	subscriptions := []func(){
		store.Subscribe(func(m any) { test1 = GetIn(m, "test"); order = append(order, 1) }),
		store.Subscribe(func(m any) { test2 = GetIn(m, "test"); order = append(order, 2) }),
	}
	assert.Nil(t, test1)
	assert.Nil(t, test2)

	_, err := store.Commit(setFoo, 42)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": 42}, ToNative(test1))
	assert.True(t, Same(test1, test2))
	assert.Equal(t, []int{1, 2, 1, 2}, order)

	for _, cleanup := range subscriptions {
		cleanup()
	}
	_, err = store.Commit(clearTest, nil)
	require.NoError(t, err)
	assert.NotNil(t, test1)
}

func TestCommitReportsChanges(t *testing.T) {
	t.Parallel()
	store := New(From(map[string]any{"todos": []any{}}))
	changes, err := store.Commit(addTodo, "x")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, P("todos"), changes[0].Path)
	assert.Equal(t, []any{}, ToNative(changes[0].OldValue))
	assert.Equal(t, []any{map[string]any{"task": "x"}}, ToNative(changes[0].NewValue))
	assert.True(t, changes[0].HasOld)
	assert.Equal(t, []any{map[string]any{"task": "x"}}, ToNative(store.Get("todos")))
	assert.True(t, IsFrozen(store.Get("todos", 0)))
}

func TestNoopCommit(t *testing.T) {
	t.Parallel()
	store := New(From(map[string]any{"todos": []any{"a"}}))
	calls := 0
	defer store.Subscribe(func(any) { calls++ })()
	before := store.Get()

	changes, err := store.Commit(identity, nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.True(t, Same(before, store.Get()))
	assert.Equal(t, 1, calls)
}

func TestSetAndUpdateCounts(t *testing.T) {
	t.Parallel()
	type args struct {
		a       int
		updateB Updater
	}
	setAndUpdate := NewTransaction("SET_AND_UPDATE", func(payload any) Mutation {
		p := payload.(args)
		return func(ops *Ops) error {
			ops.Set(P("a"), p.a)
			return ops.Update(P("b"), p.updateB)
		}
	})
	same := func(b any) any { return b }
	inc := func(b any) any { return b.(int) + 1 }
	store := New(RecordOf(map[string]any{"a": 5, "b": 6}))

	for _, tc := range []struct {
		args args
		want int
	}{
		{args{5, same}, 1},
		{args{6, same}, 1},
		{args{6, inc}, 2},
		{args{7, inc}, 2},
	} {
		changes, err := store.Commit(setAndUpdate, tc.args)
		require.NoError(t, err)
		assert.Len(t, changes, tc.want)
	}
	assert.Equal(t, map[string]any{"a": 7, "b": 8}, ToNative(store.Get()))
}

func TestCommitAtPath(t *testing.T) {
	t.Parallel()
	store := New(From(map[string]any{"docs": map[string]any{"a": map[string]any{"title": "x"}}}))
	changes, err := store.Commit(SetTx, "y", "docs", "a", "title")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Path)
	assert.Equal(t, "y", store.Get("docs", "a", "title"))

	changes, err = store.Commit(setFoo, 1, "docs", "a")
	require.NoError(t, err)
	assert.Equal(t, P("test", "foo"), changes[0].Path)
	assert.Equal(t, 1, store.Get("docs", "a", "test", "foo"))
}

func TestInvalidCommits(t *testing.T) {
	t.Parallel()
	store := New(RecordOf(map[string]any{"a": 1}))
	calls := 0
	defer store.Subscribe(func(any) { calls++ })()
	before := store.Get()

	_, err := store.Commit(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
	_, err = store.Commit(&Transaction{Name: "EMPTY"}, nil)
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = store.Commit(setFoo, 1, "a")
	assert.ErrorIs(t, err, ErrInvalidPath)

	boom := errors.New("boom")
	partial := NewTransaction("PARTIAL", func(any) Mutation {
		return func(ops *Ops) error {
			ops.Set(P("b"), 2)
			return boom
		}
	})
	_, err = store.Commit(partial, nil)
	assert.ErrorIs(t, err, boom)

	assert.True(t, Same(before, store.Get()))
	assert.Equal(t, 1, calls)
}

func TestNewWithCell(t *testing.T) {
	t.Parallel()
	cell := NewCell(From(map[string]any{"todos": []any{}}), nil)
	store := NewWithCell(cell)
	assert.True(t, IsFrozen(cell.Get()))
	_, err := store.Commit(addTodo, "x")
	require.NoError(t, err)
	assert.True(t, Same(cell.Get(), store.Get()))
}

func TestMiddlewareOrder(t *testing.T) {
	t.Parallel()
	var log []string
	named := func(name string) Middleware {
		return CommitMiddleware(func(next CommitFunc) CommitFunc {
			return func(t *Transaction, payload any, path ...any) (Changes, error) {
				log = append(log, name+">")
				changes, err := next(t, payload, path...)
				log = append(log, "<"+name)
				return changes, err
			}
		})
	}
	veto := CommitMiddleware(func(next CommitFunc) CommitFunc {
		return func(t *Transaction, payload any, path ...any) (Changes, error) {
			if t == clearTest {
				return nil, nil
			}
			return next(t, payload, path...)
		}
	})
	store := New(NewMap(), named("a"), named("b"), veto)

	_, err := store.Commit(setFoo, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a>", "b>", "<b", "<a"}, log)

	changes, err := store.Commit(clearTest, nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Equal(t, 1, store.Get("test", "foo"))
}

func TestWritableCell(t *testing.T) {
	t.Parallel()
	w := newWritable(1, nil)
	assert.False(t, w.Set(1))
	assert.True(t, w.Set(2))
	assert.False(t, w.Update(func(s any) any { return s }))
	assert.True(t, w.Update(func(s any) any { return s.(int) + 1 }))
	assert.Equal(t, 3, w.Get())
}
