package tinyx

import "reflect"

// EqualFunc decides whether two values should be treated as unchanged.
type EqualFunc func(a, b any) bool

// Same is the identity test behind no-op detection: containers and other
// reference kinds compare by pointer, comparable leaves with ==. Values that
// are neither are never the same, so replacing them always counts as a
// change.
func Same(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		// interface fields can still hold uncomparable dynamic values
		defer func() {
			if recover() != nil {
				same = false
			}
		}()
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// DeepEqual compares two value trees structurally. Records and Maps are
// compared regardless of insertion order, Seqs element by element, Sets by
// membership. Leaves fall back to reflect.DeepEqual.
func DeepEqual(a, b any) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch x := a.(type) {
	case *Record:
		y := b.(*Record)
		if x.Len() != y.Len() {
			return false
		}
		for k, v := range x.fields {
			w, ok := y.fields[k]
			if !ok || !DeepEqual(v, w) {
				return false
			}
		}
		return true
	case *Seq:
		y := b.(*Seq)
		if x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !DeepEqual(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Map:
		y := b.(*Map)
		if x.Len() != y.Len() {
			return false
		}
		for k, v := range x.values {
			w, ok := y.values[k]
			if !ok || !DeepEqual(v, w) {
				return false
			}
		}
		return true
	case *Set:
		y := b.(*Set)
		if x.Len() != y.Len() {
			return false
		}
		for k := range x.index {
			if _, ok := y.index[k]; !ok {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
