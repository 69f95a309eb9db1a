package document

import (
	"github.com/ajitpratap0/strata/pkg/errors"
)

// Kind identifies the shape held by a Value.
type Kind int

const (
	// KindNull is an explicit YAML null or an empty value.
	KindNull Kind = iota
	// KindScalar is a string, number or boolean token.
	KindScalar
	// KindList is an ordered sequence.
	KindList
	// KindMap is an ordered mapping with string keys.
	KindMap
)

// String returns the shape name used in ShapeMismatch errors.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is one node of an untyped document: exactly one of scalar, list or
// map, or null. Use the As* accessors; they report whether the shape matched.
type Value struct {
	kind   Kind
	scalar string
	list   []Value
	m      *Map
	line   int
}

// Null returns a null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// Scalar returns a scalar Value holding s.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns a list Value holding items in order.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// MapValue wraps m as a Value.
func MapValue(m *Map) Value {
	return Value{kind: KindMap, m: m}
}

// Kind returns the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Line is the 1-based source line, or 0 for values built in code.
func (v Value) Line() int { return v.line }

// AsScalar returns the scalar token.
func (v Value) AsScalar() (string, bool) {
	if v.kind != KindScalar {
		return "", false
	}
	return v.scalar, true
}

// AsList returns the list items.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// AsMap returns the mapping.
func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Map is an ordered string-keyed mapping. Keys keep document order.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores v under key. A key that already exists keeps its position.
func (m *Map) Set(key string, v Value) *Map {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return m
}

// Keys returns the keys in document order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// Has reports whether key is present, including with a null value.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Get returns the value under key. Missing keys and null values both
// report ok=false: absence means "inherit", never an error.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	if !ok || v.kind == KindNull {
		return Value{}, false
	}
	return v, true
}

// Map returns the nested map under key.
func (m *Map) Map(key string) (*Map, bool, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false, nil
	}
	nested, ok := v.AsMap()
	if !ok {
		return nil, false, errors.NewShapeMismatch(key, KindMap.String()).WithDetail("line", v.line)
	}
	return nested, true, nil
}

// List returns the list under key.
func (m *Map) List(key string) ([]Value, bool, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false, nil
	}
	items, ok := v.AsList()
	if !ok {
		return nil, false, errors.NewShapeMismatch(key, KindList.String()).WithDetail("line", v.line)
	}
	return items, true, nil
}

// String returns the scalar token under key.
func (m *Map) String(key string) (string, bool, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.AsScalar()
	if !ok {
		return "", false, errors.NewShapeMismatch(key, KindScalar.String()).WithDetail("line", v.line)
	}
	return s, true, nil
}
