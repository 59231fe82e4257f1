package tinyx

type derived struct {
	source   Readable
	selector func(state any) any
	cell     *writable
	computed bool
	stop     func()
}

// Derived returns a read-only view of selector(state). Subscribers are only
// notified when equals(new, previous) is false; in that case the previously
// delivered value is kept, so Get keeps returning what subscribers last saw.
// A nil equals means Same. The view subscribes to source on its first
// subscriber and lets go after its last one; while nobody is subscribed, Get
// recomputes from source every time.
func Derived(source Readable, selector func(state any) any, equals EqualFunc) Readable {
	return &derived{
		source:   source,
		selector: selector,
		cell:     newWritable(nil, equals),
	}
}

func (d *derived) compute(state any) {
	value := d.selector(state)
	if !d.computed {
		d.computed = true
		d.cell.put(value)
		return
	}
	d.cell.Set(value)
}

func (d *derived) Get(path ...any) any {
	if d.cell.subscribers() == 0 {
		d.compute(d.source.Get())
	}
	return GetIn(d.cell.Get(), path...)
}

func (d *derived) Subscribe(fn Subscriber) func() {
	if d.stop == nil {
		d.stop = d.source.Subscribe(d.compute)
	}
	unsubscribe := d.cell.Subscribe(fn)
	done := false
	return func() {
		if done {
			return
		}
		done = true
		unsubscribe()
		if d.cell.subscribers() == 0 && d.stop != nil {
			d.stop()
			d.stop = nil
		}
	}
}

type selected struct {
	Readable
	parent   Store
	selector func(state any) Path
}

// Select returns a store addressing the subtree at selector(state). The path
// is recomputed from the current state on every call, so the view follows
// whichever location the state currently points at. Subscribers are notified
// when the selected value changes identity.
func Select(s Store, selector func(state any) Path) Store {
	return &selected{
		Readable: Derived(s, func(state any) any {
			return GetIn(state, selector(state)...)
		}, nil),
		parent:   s,
		selector: selector,
	}
}

// Commit commits to the parent store at the selected root followed by path.
// Diffs come back relative to path, as for any store.
func (s *selected) Commit(t *Transaction, payload any, path ...any) (Changes, error) {
	root := s.selector(s.parent.Get())
	return s.parent.Commit(t, payload, root.Concat(path...)...)
}
