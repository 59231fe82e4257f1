package tinyx

import "fmt"

// Diff records one leaf-level change. HasOld is false when the location
// did not exist before; HasNew is false when it was removed.
type Diff struct {
	Path     Path
	OldValue any
	NewValue any
	HasOld   bool
	HasNew   bool
}

func (d Diff) String() string {
	switch {
	case !d.HasNew:
		return fmt.Sprintf("remove [%v] %v", d.Path, ToNative(d.OldValue))
	case !d.HasOld:
		return fmt.Sprintf("add [%v] %v", d.Path, ToNative(d.NewValue))
	}
	return fmt.Sprintf("change [%v] %v -> %v", d.Path, ToNative(d.OldValue), ToNative(d.NewValue))
}

// Changes is the ordered list of diffs produced by one commit.
type Changes []Diff

// Recorder receives diffs as a mutation performs them.
type Recorder func(Diff)

func (r Recorder) under(prefix Path) Recorder {
	if r == nil {
		return nil
	}
	return func(d Diff) {
		d.Path = prefix.Concat(d.Path...)
		r(d)
	}
}

// Mutation computes the next value of a subtree by calling operations on
// ops.
type Mutation func(ops *Ops) error

// Ops is the toolbox handed to a Mutation. It owns the running value of the
// subtree being produced; every operation reads and writes that value, never
// the input state. The first failed operation sticks: later operations
// return the same error without doing anything.
type Ops struct {
	value  any
	record Recorder
	err    error
}

// Value is the subtree as it stands after the operations so far.
func (o *Ops) Value() any { return o.value }

// Err returns the first error an operation failed with.
func (o *Ops) Err() error { return o.err }

func (o *Ops) Get(path ...any) any {
	return GetIn(o.value, path...)
}

func (o *Ops) Lookup(path ...any) (any, bool) {
	return Lookup(o.value, path...)
}

// Set writes value at path. It always records a diff, even when value is
// already there.
func (o *Ops) Set(path Path, value any) error {
	if o.err != nil {
		return o.err
	}
	old, had := Lookup(o.value, path...)
	next, err := SetIn(o.value, path, value)
	if err != nil {
		return o.fail(err)
	}
	o.value = next
	o.emit(Diff{Path: path.Concat(), OldValue: old, NewValue: value, HasOld: had, HasNew: true})
	return nil
}

// Update replaces the value at path with fn(old). If fn returns the same
// value nothing is written and nothing is recorded.
func (o *Ops) Update(path Path, fn Updater) error {
	if o.err != nil {
		return o.err
	}
	old, had := Lookup(o.value, path...)
	value := fn(old)
	if Same(value, old) {
		return nil
	}
	next, err := SetIn(o.value, path, value)
	if err != nil {
		return o.fail(err)
	}
	o.value = next
	o.emit(Diff{Path: path.Concat(), OldValue: old, NewValue: value, HasOld: had, HasNew: true})
	return nil
}

// Remove deletes the entry at path and records its old value.
func (o *Ops) Remove(path ...any) error {
	if o.err != nil {
		return o.err
	}
	old, had := Lookup(o.value, path...)
	next, err := DeleteIn(o.value, path...)
	if err != nil {
		return o.fail(err)
	}
	o.value = next
	o.emit(Diff{Path: Path(path).Concat(), OldValue: old, HasOld: had})
	return nil
}

// Apply runs m against the subtree at path and writes the result back.
// Diffs recorded by m are reported with path prepended.
func (o *Ops) Apply(path Path, m Mutation) error {
	if o.err != nil {
		return o.err
	}
	inner := Produce(m, o.record.under(path))
	next, err := updateIn(o.value, path, inner)
	if err != nil {
		return o.fail(err)
	}
	o.value = next
	return nil
}

func (o *Ops) emit(d Diff) {
	if o.record != nil {
		o.record(d)
	}
}

func (o *Ops) fail(err error) error {
	o.err = err
	return err
}

// Produce returns a function computing the next state by running m against
// it. The state passed in is never altered. A nil mutation returns the state
// unchanged. If m or any of its operations fails, no state is returned.
func Produce(m Mutation, record Recorder) func(state any) (any, error) {
	return func(state any) (any, error) {
		if m == nil {
			return state, nil
		}
		ops := &Ops{value: state, record: record}
		if err := m(ops); err != nil {
			return nil, err
		}
		if ops.err != nil {
			return nil, ops.err
		}
		return ops.value, nil
	}
}
