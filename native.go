package tinyx

// From converts plain Go data into containers: map[string]any becomes a
// Record, []any a Seq, map[any]any a Map. Containers and leaves are
// returned as they are. The result is not frozen.
func From(native any) any {
	switch n := native.(type) {
	case map[string]any:
		r := &Record{fields: make(map[string]any, len(n))}
		for k, v := range n {
			r.fields[k] = From(v)
		}
		return r
	case []any:
		s := &Seq{items: make([]any, len(n))}
		for i, v := range n {
			s.items[i] = From(v)
		}
		return s
	case map[any]any:
		m := NewMap()
		for k, v := range n {
			m.put(k, From(v))
		}
		return m
	}
	return native
}

// ToNative converts a value tree into plain Go data: Records become
// map[string]any, Seqs and Sets []any, Maps map[any]any. It is meant for
// comparisons, printing and encoding; the result shares leaves with v.
func ToNative(v any) any {
	switch c := v.(type) {
	case *Record:
		if c == nil {
			return nil
		}
		out := make(map[string]any, c.Len())
		for k, x := range c.fields {
			out[k] = ToNative(x)
		}
		return out
	case *Seq:
		if c == nil {
			return nil
		}
		out := make([]any, c.Len())
		for i, x := range c.items {
			out[i] = ToNative(x)
		}
		return out
	case *Map:
		if c == nil {
			return nil
		}
		out := make(map[any]any, c.Len())
		for k, x := range c.values {
			out[k] = ToNative(x)
		}
		return out
	case *Set:
		if c == nil {
			return nil
		}
		out := make([]any, 0, c.Len())
		for _, x := range c.elems {
			out = append(out, ToNative(x))
		}
		return out
	}
	return v
}
