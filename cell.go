package tinyx

// Subscriber receives the current value on subscription and after every
// change.
type Subscriber func(value any)

// Cell is an observable value a Store can be built on.
type Cell interface {
	Get() any
	// Update replaces the value with fn(current) and notifies subscribers
	// when the result differs. It reports whether anything changed.
	Update(fn func(current any) any) bool
	Subscribe(fn Subscriber) (unsubscribe func())
}

type subscription struct {
	fn Subscriber
}

type writable struct {
	value  any
	equals EqualFunc
	subs   []*subscription
}

// NewCell returns a Cell holding value. Writes for which equals(new, old)
// holds are ignored; a nil equals means Same.
func NewCell(value any, equals EqualFunc) Cell {
	return newWritable(value, equals)
}

func newWritable(value any, equals EqualFunc) *writable {
	if equals == nil {
		equals = Same
	}
	return &writable{value: value, equals: equals}
}

func (w *writable) Get() any { return w.value }

// Set stores value and notifies subscribers in registration order, unless
// it equals the current value.
func (w *writable) Set(value any) bool {
	if w.equals(value, w.value) {
		return false
	}
	w.put(value)
	return true
}

func (w *writable) Update(fn func(current any) any) bool {
	return w.Set(fn(w.value))
}

func (w *writable) put(value any) {
	w.value = value
	subs := append([]*subscription(nil), w.subs...)
	for _, s := range subs {
		s.fn(w.value)
	}
}

func (w *writable) Subscribe(fn Subscriber) func() {
	s := &subscription{fn: fn}
	w.subs = append(w.subs, s)
	fn(w.value)
	return func() {
		for i, other := range w.subs {
			if other == s {
				w.subs = append(w.subs[:i:i], w.subs[i+1:]...)
				return
			}
		}
	}
}

func (w *writable) subscribers() int { return len(w.subs) }
