package tinyx

import "fmt"

// Readable is anything whose value can be read and observed.
type Readable interface {
	// Get returns the value at path in the current snapshot.
	Get(path ...any) any
	// Subscribe calls fn with the current value right away and again after
	// every change, until the returned function is called.
	Subscribe(fn Subscriber) (unsubscribe func())
}

// Store owns a frozen snapshot that only changes through Commit.
//
// A Store is not safe for concurrent use, and a mutation must not commit to
// the store it is running against.
type Store interface {
	Readable
	// Commit runs t's mutation for payload against the subtree at path and
	// installs the result. The returned diffs are relative to path. When
	// the mutation changes nothing, the snapshot and its identity stay as
	// they were and subscribers are not called. On error nothing is
	// installed.
	Commit(t *Transaction, payload any, path ...any) (Changes, error)
}

type store struct {
	cell Cell
}

// New creates a store holding initial, which is frozen immediately, wrapped
// by middleware (first is outermost).
func New(initial any, middleware ...Middleware) Store {
	return NewWithCell(newWritable(Freeze(initial), nil), middleware...)
}

// NewWithCell creates a store on top of an existing observable value.
func NewWithCell(cell Cell, middleware ...Middleware) Store {
	Freeze(cell.Get())
	return ApplyMiddleware(&store{cell: cell}, middleware...)
}

func (s *store) Get(path ...any) any {
	return GetIn(s.cell.Get(), path...)
}

func (s *store) Subscribe(fn Subscriber) func() {
	return s.cell.Subscribe(fn)
}

func (s *store) Commit(t *Transaction, payload any, path ...any) (Changes, error) {
	m, err := t.mutation(payload)
	if err != nil {
		return nil, err
	}
	var changes Changes
	record := func(d Diff) { changes = append(changes, d) }
	next, err := updateIn(s.cell.Get(), path, Produce(m, record))
	if err != nil {
		return nil, fmt.Errorf("commit %v at [%v]: %w", t, Path(path), err)
	}
	s.cell.Update(func(any) any { return Freeze(next) })
	return changes, nil
}
