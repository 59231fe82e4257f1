package tinyx

// Freeze recursively freezes every Record, Seq, Map and Set reachable from v
// and returns v. Other values, including user structs, are left alone and
// not descended into. Already-frozen containers are not revisited, so
// shared substructures are only walked once.
func Freeze(v any) any {
	switch c := v.(type) {
	case *Record:
		if c == nil || c.frozen {
			return v
		}
		c.frozen = true
		for _, x := range c.fields {
			Freeze(x)
		}
	case *Seq:
		if c == nil || c.frozen {
			return v
		}
		c.frozen = true
		for _, x := range c.items {
			Freeze(x)
		}
	case *Map:
		if c == nil || c.frozen {
			return v
		}
		c.frozen = true
		for k, x := range c.values {
			Freeze(k)
			Freeze(x)
		}
	case *Set:
		if c == nil || c.frozen {
			return v
		}
		c.frozen = true
		for _, x := range c.elems {
			Freeze(x)
		}
	}
	return v
}

// IsFrozen reports whether v is a frozen container.
func IsFrozen(v any) bool {
	switch c := v.(type) {
	case *Record:
		return c.Frozen()
	case *Seq:
		return c.Frozen()
	case *Map:
		return c.Frozen()
	case *Set:
		return c.Frozen()
	}
	return false
}
