package tinyx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope keys for kinds that have no direct JSON shape.
const (
	mapTag     = "$map"
	setTag     = "$set"
	changesTag = "$changes"
)

// EncodeJSON serializes a value tree. Records and Seqs map onto JSON
// objects and arrays; Maps, Sets and undo history are wrapped in
// single-key envelope objects. Record keys starting with "$" are written
// with an extra "$" so they never read back as an envelope.
func EncodeJSON(v any) ([]byte, error) {
	w, err := wireEncoder{}.encode(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// DecodeJSON is the inverse of EncodeJSON. Integral numbers decode as int,
// others as float64.
func DecodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var w any
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return fromWire(w)
}

// EncodeProto serializes a value tree as a google.protobuf.Value, using the
// same envelopes as EncodeJSON. Output is deterministic so that equal trees
// get equal checkpoint links. Protobuf numbers are doubles, so integers
// beyond 2^53 are refused rather than rounded.
func EncodeProto(v any) ([]byte, error) {
	w, err := wireEncoder{exactDoubles: true}.encode(v)
	if err != nil {
		return nil, err
	}
	pv, err := structpb.NewValue(w)
	if err != nil {
		return nil, fmt.Errorf("structpb: %w", err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(pv)
}

// DecodeProto is the inverse of EncodeProto.
func DecodeProto(b []byte) (any, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(b, &pv); err != nil {
		return nil, fmt.Errorf("unmarshal proto: %w", err)
	}
	return fromWire(pv.AsInterface())
}

// maxExactDouble bounds the integers a float64 holds without rounding.
const maxExactDouble = 1 << 53

type wireEncoder struct {
	// exactDoubles rejects integers a float64 cannot hold exactly.
	exactDoubles bool
}

func (e wireEncoder) encode(v any) (any, error) {
	switch c := v.(type) {
	case *Record:
		out := make(map[string]any, c.Len())
		for k, x := range c.fields {
			w, err := e.encode(x)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[escapeKey(k)] = w
		}
		return out, nil
	case *Seq:
		return e.encodeList(c.items)
	case *Map:
		pairs := make([]any, 0, c.Len())
		for _, k := range c.keys {
			pair, err := e.encodeList([]any{k, c.values[k]})
			if err != nil {
				return nil, fmt.Errorf("entry %v: %w", k, err)
			}
			pairs = append(pairs, pair)
		}
		return map[string]any{mapTag: pairs}, nil
	case *Set:
		elems, err := e.encodeList(c.elems)
		if err != nil {
			return nil, err
		}
		return map[string]any{setTag: elems}, nil
	case Changes:
		diffs := make([]any, len(c))
		for i, d := range c {
			path, err := e.encodeList(d.Path)
			if err != nil {
				return nil, err
			}
			wd := map[string]any{"path": path}
			if d.HasOld {
				if wd["old"], err = e.encode(d.OldValue); err != nil {
					return nil, err
				}
			}
			if d.HasNew {
				if wd["new"], err = e.encode(d.NewValue); err != nil {
					return nil, err
				}
			}
			diffs[i] = wd
		}
		return map[string]any{changesTag: diffs}, nil
	case nil, bool, string, float64:
		return v, nil
	case float32:
		return float64(c), nil
	case int64:
		return e.signed(c)
	case int:
		return e.signed(int64(c))
	case int8:
		return int64(c), nil
	case int16:
		return int64(c), nil
	case int32:
		return int64(c), nil
	case uint64:
		return e.unsigned(c)
	case uint:
		return e.unsigned(uint64(c))
	case uint8:
		return uint64(c), nil
	case uint16:
		return uint64(c), nil
	case uint32:
		return uint64(c), nil
	}
	return nil, fmt.Errorf("cannot encode %T", v)
}

func (e wireEncoder) signed(i int64) (any, error) {
	if e.exactDoubles && (i > maxExactDouble || i < -maxExactDouble) {
		return nil, fmt.Errorf("cannot encode %d exactly as a double", i)
	}
	return i, nil
}

func (e wireEncoder) unsigned(u uint64) (any, error) {
	if e.exactDoubles && u > maxExactDouble {
		return nil, fmt.Errorf("cannot encode %d exactly as a double", u)
	}
	return u, nil
}

func (e wireEncoder) encodeList(items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, x := range items {
		w, err := e.encode(x)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}

func escapeKey(k string) string {
	if strings.HasPrefix(k, "$") {
		return "$" + k
	}
	return k
}

func unescapeKey(k string) string {
	if strings.HasPrefix(k, "$$") {
		return k[1:]
	}
	return k
}

func fromWire(w any) (any, error) {
	switch c := w.(type) {
	case map[string]any:
		if len(c) == 1 {
			if pairs, ok := c[mapTag].([]any); ok {
				return mapFromWire(pairs)
			}
			if elems, ok := c[setTag].([]any); ok {
				return setFromWire(elems)
			}
			if diffs, ok := c[changesTag].([]any); ok {
				return changesFromWire(diffs)
			}
		}
		r := &Record{fields: make(map[string]any, len(c))}
		for k, x := range c {
			v, err := fromWire(x)
			if err != nil {
				return nil, err
			}
			r.fields[unescapeKey(k)] = v
		}
		return r, nil
	case []any:
		items, err := listFromWire(c)
		if err != nil {
			return nil, err
		}
		return &Seq{items: items}, nil
	case json.Number:
		if i, err := c.Int64(); err == nil {
			return int(i), nil
		}
		if u, err := strconv.ParseUint(c.String(), 10, 64); err == nil {
			return u, nil
		}
		f, err := c.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", c, err)
		}
		return f, nil
	case float64:
		if c == math.Trunc(c) && math.Abs(c) <= maxExactDouble {
			return int(c), nil
		}
		return c, nil
	}
	return w, nil
}

func listFromWire(ws []any) ([]any, error) {
	out := make([]any, len(ws))
	for i, x := range ws {
		v, err := fromWire(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func mapFromWire(pairs []any) (any, error) {
	m := NewMap()
	for _, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("malformed %s entry %v", mapTag, p)
		}
		kv, err := listFromWire(pair)
		if err != nil {
			return nil, err
		}
		if !hashable(kv[0]) {
			return nil, fmt.Errorf("uncomparable %s key %T", mapTag, kv[0])
		}
		m.put(kv[0], kv[1])
	}
	return m, nil
}

func setFromWire(elems []any) (any, error) {
	items, err := listFromWire(elems)
	if err != nil {
		return nil, err
	}
	s := SetOf()
	for _, e := range items {
		if !hashable(e) {
			return nil, fmt.Errorf("uncomparable %s element %T", setTag, e)
		}
		s.add(e)
	}
	return s, nil
}

func changesFromWire(diffs []any) (any, error) {
	out := make(Changes, len(diffs))
	for i, x := range diffs {
		wd, ok := x.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("malformed %s entry %v", changesTag, x)
		}
		rawPath, _ := wd["path"].([]any)
		path, err := listFromWire(rawPath)
		if err != nil {
			return nil, err
		}
		d := Diff{Path: path}
		if old, ok := wd["old"]; ok {
			if d.OldValue, err = fromWire(old); err != nil {
				return nil, err
			}
			d.HasOld = true
		}
		if nv, ok := wd["new"]; ok {
			if d.NewValue, err = fromWire(nv); err != nil {
				return nil, err
			}
			d.HasNew = true
		}
		out[i] = d
	}
	return out, nil
}
