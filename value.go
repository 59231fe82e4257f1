package tinyx

import (
	"fmt"
	"reflect"
	"sort"
)

// Kind enumerates the container kinds the engine knows how to copy, freeze
// and address. Everything else is a leaf.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindRecord
	KindSeq
	KindMap
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	}
	return "leaf"
}

// KindOf reports which container kind v is. Nil container pointers are leaves.
func KindOf(v any) Kind {
	switch c := v.(type) {
	case *Record:
		if c != nil {
			return KindRecord
		}
	case *Seq:
		if c != nil {
			return KindSeq
		}
	case *Map:
		if c != nil {
			return KindMap
		}
	case *Set:
		if c != nil {
			return KindSet
		}
	}
	return KindLeaf
}

// Record is a string-keyed mapping.
type Record struct {
	fields map[string]any
	frozen bool
}

// NewRecord returns an empty, unfrozen record.
func NewRecord() *Record {
	return &Record{fields: map[string]any{}}
}

// RecordOf returns a record holding a shallow copy of fields.
func RecordOf(fields map[string]any) *Record {
	r := &Record{fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.fields[key]
	return v, ok
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Keys returns the field names in sorted order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each visits fields in key order until f returns false.
func (r *Record) Each(f func(key string, value any) bool) {
	for _, k := range r.Keys() {
		if !f(k, r.fields[k]) {
			return
		}
	}
}

func (r *Record) Frozen() bool { return r != nil && r.frozen }

// Put sets a field in place. A nil record has nowhere to put it.
func (r *Record) Put(key string, value any) error {
	if r == nil {
		return fmt.Errorf("record put %q into nil record: %w", key, ErrInvalidPath)
	}
	if r.frozen {
		return fmt.Errorf("record put %q: %w", key, ErrFrozen)
	}
	if r.fields == nil {
		r.fields = map[string]any{}
	}
	r.fields[key] = value
	return nil
}

// Delete removes a field in place. Deleting from a nil record does nothing.
func (r *Record) Delete(key string) error {
	if r == nil {
		return nil
	}
	if r.frozen {
		return fmt.Errorf("record delete %q: %w", key, ErrFrozen)
	}
	delete(r.fields, key)
	return nil
}

// With returns an unfrozen copy of r with key set to value.
func (r *Record) With(key string, value any) *Record {
	c := r.clone()
	c.fields[key] = value
	return c
}

// Without returns an unfrozen copy of r lacking key.
func (r *Record) Without(key string) *Record {
	c := r.clone()
	delete(c.fields, key)
	return c
}

func (r *Record) clone() *Record {
	if r == nil {
		return NewRecord()
	}
	return RecordOf(r.fields)
}

// Seq is an ordered sequence addressed by int index.
type Seq struct {
	items  []any
	frozen bool
}

// SeqOf returns an unfrozen sequence holding a copy of items.
func SeqOf(items ...any) *Seq {
	return &Seq{items: append(make([]any, 0, len(items)), items...)}
}

func (s *Seq) Get(i int) (any, bool) {
	if s == nil || i < 0 || i >= len(s.items) {
		return nil, false
	}
	return s.items[i], true
}

func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the elements.
func (s *Seq) Items() []any {
	if s == nil {
		return nil
	}
	return append([]any(nil), s.items...)
}

func (s *Seq) Each(f func(i int, value any) bool) {
	if s == nil {
		return
	}
	for i, v := range s.items {
		if !f(i, v) {
			return
		}
	}
}

func (s *Seq) Frozen() bool { return s != nil && s.frozen }

// Put overwrites index i in place, growing the sequence with nils if i is
// past the end.
func (s *Seq) Put(i int, value any) error {
	if s == nil {
		return fmt.Errorf("seq put %d into nil seq: %w", i, ErrInvalidPath)
	}
	if s.frozen {
		return fmt.Errorf("seq put %d: %w", i, ErrFrozen)
	}
	if i < 0 {
		return fmt.Errorf("seq put %d: %w", i, ErrInvalidPath)
	}
	for len(s.items) <= i {
		s.items = append(s.items, nil)
	}
	s.items[i] = value
	return nil
}

func (s *Seq) Append(values ...any) error {
	if s.frozen {
		return fmt.Errorf("seq append: %w", ErrFrozen)
	}
	s.items = append(s.items, values...)
	return nil
}

// Delete clears index i in place, leaving a nil hole, or drops it when it
// is the last index.
func (s *Seq) Delete(i int) error {
	if s == nil {
		return nil
	}
	if s.frozen {
		return fmt.Errorf("seq delete %d: %w", i, ErrFrozen)
	}
	switch {
	case i == len(s.items)-1:
		s.items = s.items[:i:i]
	case i >= 0 && i < len(s.items):
		s.items[i] = nil
	}
	return nil
}

// With returns an unfrozen copy of s with index i set to value.
func (s *Seq) With(i int, value any) *Seq {
	c := s.clone()
	_ = c.Put(i, value)
	return c
}

// Appended returns an unfrozen copy of s with values added at the end.
func (s *Seq) Appended(values ...any) *Seq {
	c := s.clone()
	c.items = append(c.items, values...)
	return c
}

// Prepended returns an unfrozen copy of s with values added at the front.
func (s *Seq) Prepended(values ...any) *Seq {
	return &Seq{items: append(append(make([]any, 0, len(values)+s.Len()), values...), s.Items()...)}
}

// Slice returns an unfrozen sequence of the elements in [from, to).
func (s *Seq) Slice(from, to int) *Seq {
	if from < 0 {
		from = 0
	}
	if to > s.Len() {
		to = s.Len()
	}
	if from >= to {
		return SeqOf()
	}
	return SeqOf(s.items[from:to]...)
}

func (s *Seq) clone() *Seq {
	if s == nil {
		return SeqOf()
	}
	return SeqOf(s.items...)
}

// Map is an insertion-ordered mapping with arbitrary comparable keys.
type Map struct {
	keys   []any
	values map[any]any
	frozen bool
}

// NewMap returns an empty, unfrozen map.
func NewMap() *Map {
	return &Map{values: map[any]any{}}
}

// MapOf builds a map from alternating keys and values.
func MapOf(keysAndValues ...any) *Map {
	if len(keysAndValues)%2 != 0 {
		panic("MapOf needs an even number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(keysAndValues); i += 2 {
		if !hashable(keysAndValues[i]) {
			panic(fmt.Sprintf("MapOf: uncomparable key %T", keysAndValues[i]))
		}
		m.put(keysAndValues[i], keysAndValues[i+1])
	}
	return m
}

func (m *Map) Get(key any) (any, bool) {
	if m == nil || !hashable(key) {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	if m == nil {
		return nil
	}
	return append([]any(nil), m.keys...)
}

func (m *Map) Each(f func(key, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}

func (m *Map) Frozen() bool { return m != nil && m.frozen }

func (m *Map) Put(key, value any) error {
	if m == nil {
		return fmt.Errorf("map put %v into nil map: %w", key, ErrInvalidPath)
	}
	if m.frozen {
		return fmt.Errorf("map put %v: %w", key, ErrFrozen)
	}
	if !hashable(key) {
		return fmt.Errorf("map put %T: %w", key, ErrInvalidPath)
	}
	m.put(key, value)
	return nil
}

func (m *Map) Delete(key any) error {
	if m == nil {
		return nil
	}
	if m.frozen {
		return fmt.Errorf("map delete %v: %w", key, ErrFrozen)
	}
	m.del(key)
	return nil
}

func (m *Map) Clear() error {
	if m.frozen {
		return fmt.Errorf("map clear: %w", ErrFrozen)
	}
	m.keys = nil
	m.values = map[any]any{}
	return nil
}

// With returns an unfrozen copy of m with key set to value.
func (m *Map) With(key, value any) *Map {
	c := m.clone()
	c.put(key, value)
	return c
}

// Without returns an unfrozen copy of m lacking key.
func (m *Map) Without(key any) *Map {
	c := m.clone()
	c.del(key)
	return c
}

func (m *Map) put(key, value any) {
	if m.values == nil {
		m.values = map[any]any{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map) del(key any) {
	if !hashable(key) {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *Map) clone() *Map {
	c := &Map{values: make(map[any]any, m.Len())}
	m.Each(func(k, v any) bool {
		c.put(k, v)
		return true
	})
	return c
}

// Set is an insertion-ordered collection of unique comparable elements.
type Set struct {
	elems  []any
	index  map[any]struct{}
	frozen bool
}

// SetOf returns an unfrozen set of the given elements.
func SetOf(elems ...any) *Set {
	s := &Set{index: map[any]struct{}{}}
	for _, e := range elems {
		if !hashable(e) {
			panic(fmt.Sprintf("SetOf: uncomparable element %T", e))
		}
		s.add(e)
	}
	return s
}

func (s *Set) Has(elem any) bool {
	if s == nil || !hashable(elem) {
		return false
	}
	_, ok := s.index[elem]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elems)
}

// Elems returns the elements in insertion order.
func (s *Set) Elems() []any {
	if s == nil {
		return nil
	}
	return append([]any(nil), s.elems...)
}

func (s *Set) Each(f func(elem any) bool) {
	if s == nil {
		return
	}
	for _, e := range s.elems {
		if !f(e) {
			return
		}
	}
}

func (s *Set) Frozen() bool { return s != nil && s.frozen }

func (s *Set) Add(elem any) error {
	if s == nil {
		return fmt.Errorf("set add %v into nil set: %w", elem, ErrInvalidPath)
	}
	if s.frozen {
		return fmt.Errorf("set add %v: %w", elem, ErrFrozen)
	}
	if !hashable(elem) {
		return fmt.Errorf("set add %T: %w", elem, ErrInvalidPath)
	}
	s.add(elem)
	return nil
}

func (s *Set) Delete(elem any) error {
	if s == nil {
		return nil
	}
	if s.frozen {
		return fmt.Errorf("set delete %v: %w", elem, ErrFrozen)
	}
	s.del(elem)
	return nil
}

func (s *Set) Clear() error {
	if s.frozen {
		return fmt.Errorf("set clear: %w", ErrFrozen)
	}
	s.elems = nil
	s.index = map[any]struct{}{}
	return nil
}

// With returns an unfrozen copy of s including elem.
func (s *Set) With(elem any) *Set {
	c := s.clone()
	c.add(elem)
	return c
}

// Without returns an unfrozen copy of s lacking elem.
func (s *Set) Without(elem any) *Set {
	c := s.clone()
	c.del(elem)
	return c
}

func (s *Set) add(elem any) {
	if s.index == nil {
		s.index = map[any]struct{}{}
	}
	if _, ok := s.index[elem]; ok {
		return
	}
	s.index[elem] = struct{}{}
	s.elems = append(s.elems, elem)
}

func (s *Set) del(elem any) {
	if !s.Has(elem) {
		return
	}
	delete(s.index, elem)
	for i, e := range s.elems {
		if e == elem {
			s.elems = append(s.elems[:i:i], s.elems[i+1:]...)
			break
		}
	}
}

func (s *Set) clone() *Set {
	c := &Set{index: make(map[any]struct{}, s.Len())}
	s.Each(func(e any) bool {
		c.add(e)
		return true
	})
	return c
}

// hashable reports whether key can be used as a Go map key. Comparable
// types can still hold uncomparable values behind interface fields, and
// those only fail when hashed.
func hashable(key any) (ok bool) {
	if key == nil {
		return true
	}
	if !reflect.TypeOf(key).Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	trial := make(map[any]struct{}, 1)
	trial[key] = struct{}{}
	return len(trial) == 1
}
