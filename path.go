package tinyx

import (
	"fmt"
	"strings"
)

// Path is a sequence of keys locating a value: strings address Record
// fields, ints address Seq indices, and any comparable key addresses a Map
// entry or a Set element. The empty Path is the root.
type Path []any

// P builds a Path.
func P(keys ...any) Path {
	return Path(keys)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, k := range p {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, ".")
}

// Concat returns a fresh path of p followed by more.
func (p Path) Concat(more ...any) Path {
	out := make(Path, 0, len(p)+len(more))
	out = append(out, p...)
	return append(out, more...)
}

// HasPrefix reports whether p starts with prefix, comparing keys with Same.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if !Same(p[i], prefix[i]) {
			return false
		}
	}
	return true
}

// TrimPrefix returns p relative to prefix, if p is under prefix.
func (p Path) TrimPrefix(prefix Path) (Path, bool) {
	if !p.HasPrefix(prefix) {
		return nil, false
	}
	return p.Concat()[len(prefix):], true
}

// Updater computes a new value from an old one.
type Updater func(old any) any

// GetIn returns the value at path, or nil if any step is missing.
func GetIn(v any, path ...any) any {
	x, _ := Lookup(v, path...)
	return x
}

// Lookup is GetIn that also reports whether the location exists.
func Lookup(v any, path ...any) (any, bool) {
	for _, key := range path {
		var ok bool
		if v, ok = child(v, key); !ok {
			return nil, false
		}
	}
	return v, true
}

func child(v any, key any) (any, bool) {
	switch c := v.(type) {
	case *Record:
		if k, ok := key.(string); ok {
			return c.Get(k)
		}
	case *Seq:
		if i, ok := key.(int); ok {
			return c.Get(i)
		}
	case *Map:
		return c.Get(key)
	case *Set:
		if c.Has(key) {
			return key, true
		}
	}
	return nil, false
}

// SetIn returns a frozen copy of v with x placed at path. Each container
// along the path is shallow-copied keeping its kind; everything off the
// path is shared with v. Missing intermediate containers become Records.
func SetIn(v any, path Path, x any) (any, error) {
	if len(path) == 0 {
		return Freeze(x), nil
	}
	key := path[0]
	current, _ := child(v, key)
	inner, err := SetIn(current, path[1:], x)
	if err != nil {
		return nil, err
	}
	return with(v, key, inner)
}

func with(v any, key, x any) (any, error) {
	var out any
	switch c := v.(type) {
	case nil:
		k, ok := key.(string)
		if !ok {
			return nil, invalidKey(v, key)
		}
		out = NewRecord().With(k, x)
	case *Record:
		k, ok := key.(string)
		if !ok {
			return nil, invalidKey(v, key)
		}
		out = c.With(k, x)
	case *Seq:
		i, ok := key.(int)
		if !ok || i < 0 {
			return nil, invalidKey(v, key)
		}
		out = c.With(i, x)
	case *Map:
		if !hashable(key) {
			return nil, invalidKey(v, key)
		}
		out = c.With(key, x)
	case *Set:
		if !hashable(key) || !Same(key, x) {
			return nil, invalidKey(v, key)
		}
		out = c.With(key)
	default:
		return nil, invalidKey(v, key)
	}
	return Freeze(out), nil
}

// UpdateIn replaces the value at path with fn(old). When fn returns the
// same value (see Same) v itself is returned, untouched.
func UpdateIn(v any, path Path, fn Updater) (any, error) {
	return updateIn(v, path, func(old any) (any, error) {
		return fn(old), nil
	})
}

func updateIn(v any, path Path, fn func(old any) (any, error)) (any, error) {
	old := GetIn(v, path...)
	next, err := fn(old)
	if err != nil {
		return nil, err
	}
	if Same(next, old) {
		return v, nil
	}
	return SetIn(v, path, next)
}

// DeleteIn returns a frozen copy of v without the entry at path: a Record
// field, Map entry or Set element is removed. Deleting the last Seq index
// shortens the Seq; any other index is left as a nil hole so later indices
// keep their meaning. Deleting at the root yields nil.
// If nothing is found at path, v is returned unchanged.
func DeleteIn(v any, path ...any) (any, error) {
	if len(path) == 0 {
		return nil, nil
	}
	key := path[0]
	if len(path) > 1 {
		current, ok := child(v, key)
		if !ok {
			return v, nil
		}
		inner, err := DeleteIn(current, path[1:]...)
		if err != nil {
			return nil, err
		}
		if Same(inner, current) {
			return v, nil
		}
		return with(v, key, inner)
	}
	if _, ok := child(v, key); !ok {
		if KindOf(v) == KindLeaf || hashable(key) {
			return v, nil
		}
		return nil, invalidKey(v, key)
	}
	var out any
	switch c := v.(type) {
	case *Record:
		out = c.Without(key.(string))
	case *Seq:
		seq := c.clone()
		_ = seq.Delete(key.(int))
		out = seq
	case *Map:
		out = c.Without(key)
	case *Set:
		out = c.Without(key)
	}
	return Freeze(out), nil
}

func invalidKey(v any, key any) error {
	return fmt.Errorf("%w: key %v (%T) into %s %T", ErrInvalidPath, key, key, KindOf(v), v)
}
