// Package optional provides an explicit "set or absent" wrapper used by the
// migration definition model. An absent value means "not specified here,
// inherit from the nearest ancestor", which must stay distinguishable from a
// value that was specified as empty (an empty list, an empty string, false, 0).
package optional

import (
	gojson "github.com/goccy/go-json"
)

// Value holds a T that may be absent. The zero Value is absent.
type Value[T any] struct {
	v   T
	set bool
}

// Of returns a Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPtr converts a nil-able pointer into a Value.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return Value[T]{}
	}
	return Of(*p)
}

// IsSet reports whether the value was specified.
func (o Value[T]) IsSet() bool {
	return o.set
}

// Get returns the held value and whether it is set.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.set
}

// OrElse returns the held value, or fallback when absent.
func (o Value[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.v
}

// Ptr returns a pointer to a copy of the held value, or nil when absent.
func (o Value[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.v
	return &v
}

// Or returns o when it is set and fallback otherwise. This is the
// nearest-wins rule: child.Or(parent).
func (o Value[T]) Or(fallback Value[T]) Value[T] {
	if o.set {
		return o
	}
	return fallback
}

// IsZero reports absence. yaml.v3 consults it for omitempty.
func (o Value[T]) IsZero() bool {
	return !o.set
}

// MarshalJSON encodes an absent value as null.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return gojson.Marshal(o.v)
}

// MarshalYAML encodes the held value; absent values are omitted by
// omitempty through IsZero, and encode as null otherwise.
func (o Value[T]) MarshalYAML() (any, error) {
	if !o.set {
		return nil, nil
	}
	return o.v, nil
}
