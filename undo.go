package tinyx

import (
	"errors"
	"fmt"
)

// Keys under which undo history is kept, relative to the path the
// undoable action's sentinels are committed at. Both hold a Seq of Changes,
// newest first.
const (
	HistoryKey = "history"
	FutureKey  = "future"
)

// UndoableActionStart opens an undoable unit. Its mutation does nothing;
// EnableUndoRedo starts recording once it has been committed.
var UndoableActionStart = NewTransaction("UNDOABLE_ACTION_START", func(any) Mutation {
	return func(*Ops) error { return nil }
})

// UndoableActionEnd closes an undoable unit; its payload is the recorded
// Changes, which become the newest history entry. The future is dropped.
var UndoableActionEnd = NewTransaction("UNDOABLE_ACTION_END", func(payload any) Mutation {
	changes, _ := payload.(Changes)
	return func(ops *Ops) error {
		if err := ops.Update(P(HistoryKey), func(history any) any {
			return asSeq(history).Prepended(changes)
		}); err != nil {
			return err
		}
		return ops.Set(P(FutureKey), SeqOf())
	}
})

// UndoTx reverts the newest history entry and moves it to the future.
var UndoTx = NewTransaction("UNDO", func(any) Mutation {
	return func(ops *Ops) error {
		changes, ok := ops.Get(HistoryKey, 0).(Changes)
		if !ok {
			return nil
		}
		for i := len(changes) - 1; i >= 0; i-- {
			d := changes[i]
			if d.HasOld {
				ops.Set(d.Path, d.OldValue)
			} else {
				ops.Remove(d.Path...)
			}
		}
		ops.Update(P(FutureKey), func(future any) any {
			return asSeq(future).Prepended(changes)
		})
		ops.Update(P(HistoryKey), func(history any) any {
			return asSeq(history).Slice(1, asSeq(history).Len())
		})
		return ops.Err()
	}
})

// RedoTx reapplies the newest future entry and moves it back to history.
var RedoTx = NewTransaction("REDO", func(any) Mutation {
	return func(ops *Ops) error {
		changes, ok := ops.Get(FutureKey, 0).(Changes)
		if !ok {
			return nil
		}
		for _, d := range changes {
			if d.HasNew {
				ops.Set(d.Path, d.NewValue)
			} else {
				ops.Remove(d.Path...)
			}
		}
		ops.Update(P(HistoryKey), func(history any) any {
			return asSeq(history).Prepended(changes)
		})
		ops.Update(P(FutureKey), func(future any) any {
			return asSeq(future).Slice(1, asSeq(future).Len())
		})
		return ops.Err()
	}
})

func asSeq(v any) *Seq {
	if s, ok := v.(*Seq); ok && s != nil {
		return s
	}
	return SeqOf()
}

type recording struct {
	path    Path
	changes Changes
	depth   int
}

type undoRedoStore struct {
	Store
	recording *recording
}

// EnableUndoRedo records every change committed between
// UndoableActionStart and UndoableActionEnd into one history entry. Nested
// start/end pairs merge into the outermost unit. Only changes under the path
// the start was committed at are captured, relative to that path.
func EnableUndoRedo() Middleware {
	return MiddlewareFunc(func(next Store) Store {
		return &undoRedoStore{Store: next}
	})
}

func (u *undoRedoStore) Commit(t *Transaction, payload any, path ...any) (Changes, error) {
	switch {
	case t == UndoableActionEnd:
		if u.recording != nil {
			u.recording.depth--
			if u.recording.depth > 0 {
				return nil, nil
			}
			payload = u.recording.changes
		} else {
			payload = Changes(nil)
		}
		u.recording = nil
	case t == UndoableActionStart && u.recording != nil:
		u.recording.depth++
		return nil, nil
	}

	changes, err := u.Store.Commit(t, payload, path...)
	if err != nil {
		return nil, err
	}
	if u.recording != nil {
		for _, d := range changes {
			if rel, ok := Path(path).Concat(d.Path...).TrimPrefix(u.recording.path); ok {
				d.Path = rel
				u.recording.changes = append(u.recording.changes, d)
			}
		}
	}
	if t == UndoableActionStart {
		u.recording = &recording{path: Path(path).Concat(), depth: 1}
	}
	return changes, nil
}

// Undoable wraps action so that everything it commits forms one undoable
// unit. The unit is closed even when action fails.
func Undoable[A any](action func(s Store, arg A) error) func(s Store, arg A) error {
	return func(s Store, arg A) error {
		if _, err := s.Commit(UndoableActionStart, nil); err != nil {
			return fmt.Errorf("start undoable action: %w", err)
		}
		actionErr := action(s, arg)
		_, endErr := s.Commit(UndoableActionEnd, nil)
		if endErr != nil {
			endErr = fmt.Errorf("end undoable action: %w", endErr)
		}
		return errors.Join(actionErr, endErr)
	}
}

// Undo reverts the newest undoable unit recorded at path. With no history
// it does nothing.
func Undo(s Store, path ...any) error {
	_, err := s.Commit(UndoTx, nil, path...)
	return err
}

// Redo reapplies the newest undone unit at path. With nothing undone it
// does nothing.
func Redo(s Store, path ...any) error {
	_, err := s.Commit(RedoTx, nil, path...)
	return err
}
