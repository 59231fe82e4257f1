package tinyx

import "fmt"

// SetTx replaces the value at the commit path with the payload.
var SetTx = NewTransaction("SET", func(value any) Mutation {
	return func(ops *Ops) error {
		return ops.Set(nil, value)
	}
})

// UpdateTx replaces the value at the commit path with payload(old); the
// payload must be an Updater or a func(any) any.
var UpdateTx = NewTransaction("UPDATE", func(payload any) Mutation {
	return func(ops *Ops) error {
		switch fn := payload.(type) {
		case Updater:
			return ops.Update(nil, fn)
		case func(any) any:
			return ops.Update(nil, fn)
		}
		return fmt.Errorf("%w: UPDATE payload %T is not an updater", ErrInvalidTransaction, payload)
	}
})

// WritableStore adds whole-value Set and Update to a store.
type WritableStore struct {
	Store
}

// WithWritableTraits returns s with Set and Update.
func WithWritableTraits(s Store) *WritableStore {
	return &WritableStore{Store: s}
}

// WritableTraits is WithWritableTraits as a Middleware; assert the outermost
// store to *WritableStore to reach Set and Update.
var WritableTraits Middleware = MiddlewareFunc(func(next Store) Store {
	return WithWritableTraits(next)
})

// Set commits SetTx at the root and reports whether anything changed.
func (w *WritableStore) Set(value any) (bool, error) {
	changes, err := w.Commit(SetTx, value)
	return len(changes) > 0, err
}

// Update commits UpdateTx at the root and reports whether anything changed.
func (w *WritableStore) Update(fn Updater) (bool, error) {
	changes, err := w.Commit(UpdateTx, fn)
	return len(changes) > 0, err
}
