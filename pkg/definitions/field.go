package definitions

import (
	"maps"
	"slices"
	"strconv"

	"github.com/ajitpratap0/strata/pkg/document"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/optional"
)

// Policy is how a field combines a parent value with a child value.
type Policy int

const (
	// PolicyScalar takes the child's value if set, else the parent's.
	PolicyScalar Policy = iota
	// PolicyList takes the child's list if set (even when empty), else the
	// parent's. Lists are never concatenated.
	PolicyList
	// PolicyDictionary unions both maps; the child wins on key collisions.
	PolicyDictionary
	// PolicyNested merges a Template field by field.
	PolicyNested
)

func (p Policy) String() string {
	switch p {
	case PolicyScalar:
		return "scalar"
	case PolicyList:
		return "list"
	case PolicyDictionary:
		return "dictionary"
	case PolicyNested:
		return "nested"
	default:
		return "unknown"
	}
}

// field is one row of a merge table over records of type R. keys lists the
// document keys the field is read from; the first non-null key wins.
type field[R any] struct {
	keys   []string
	policy Policy
	merge  func(dst, parent, child *R)
	decode func(dst *R, m *document.Map, d *decoder) error
}

func (f field[R]) name() string { return f.keys[0] }

// key returns the first of f's keys holding a non-null value.
func (f field[R]) key(m *document.Map) string {
	for _, k := range f.keys {
		if _, ok := m.Get(k); ok {
			return k
		}
	}
	return f.keys[0]
}

func mergeRecords[R any](table []field[R], parent, child R) R {
	var dst R
	for _, f := range table {
		f.merge(&dst, &parent, &child)
	}
	return dst
}

func scalarField[R, T any](get func(*R) *optional.Value[T], parse func(string) (T, bool), keys ...string) field[R] {
	f := field[R]{keys: keys, policy: PolicyScalar}
	f.merge = func(dst, parent, child *R) {
		*get(dst) = get(child).Or(*get(parent))
	}
	f.decode = func(dst *R, m *document.Map, d *decoder) error {
		key := f.key(m)
		raw, ok, err := m.String(key)
		if err != nil || !ok {
			return err
		}
		v, ok := parse(raw)
		if !ok {
			d.fallback(key, raw)
			return nil
		}
		*get(dst) = optional.Of(v)
		return nil
	}
	return f
}

func listField[R any](get func(*R) *optional.Value[[]string], keys ...string) field[R] {
	f := field[R]{keys: keys, policy: PolicyList}
	f.merge = func(dst, parent, child *R) {
		*get(dst) = cloneList(get(child).Or(*get(parent)))
	}
	f.decode = func(dst *R, m *document.Map, _ *decoder) error {
		key := f.key(m)
		items, ok, err := m.List(key)
		if err != nil || !ok {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.AsScalar()
			if !ok {
				return errors.NewShapeMismatch(key, "list of scalars").WithDetail("line", item.Line())
			}
			out = append(out, s)
		}
		*get(dst) = optional.Of(out)
		return nil
	}
	return f
}

func dictField[R any](get func(*R) *optional.Value[map[string]string], keys ...string) field[R] {
	f := field[R]{keys: keys, policy: PolicyDictionary}
	f.merge = func(dst, parent, child *R) {
		*get(dst) = mergeDict(*get(parent), *get(child))
	}
	f.decode = func(dst *R, m *document.Map, _ *decoder) error {
		key := f.key(m)
		v, ok := m.Get(key)
		if !ok {
			return nil
		}
		dict, err := decodePlaceholders(key, v)
		if err != nil {
			return err
		}
		*get(dst) = optional.Of(dict)
		return nil
	}
	return f
}

func templateField[R any](get func(*R) *optional.Value[Template], valueKey string, keys ...string) field[R] {
	table := templateFields(valueKey)
	f := field[R]{keys: keys, policy: PolicyNested}
	f.merge = func(dst, parent, child *R) {
		p, pok := get(parent).Get()
		c, cok := get(child).Get()
		switch {
		case pok && cok:
			*get(dst) = optional.Of(MergeTemplate(p, c))
		case cok:
			*get(dst) = optional.Of(c.Clone())
		case pok:
			*get(dst) = optional.Of(p.Clone())
		default:
			*get(dst) = optional.None[Template]()
		}
	}
	f.decode = func(dst *R, m *document.Map, d *decoder) error {
		key := f.key(m)
		tm, ok, err := m.Map(key)
		if err != nil || !ok {
			return err
		}
		var t Template
		for _, tf := range table {
			if err := tf.decode(&t, tm, d.nested(key)); err != nil {
				return err
			}
		}
		*get(dst) = optional.Of(t)
		return nil
	}
	return f
}

// mergeDict unions parent and child. Only keys present in each map are read
// from it, so a parent-only key is carried over rather than looked up in
// the child.
func mergeDict(parent, child optional.Value[map[string]string]) optional.Value[map[string]string] {
	p, pok := parent.Get()
	c, cok := child.Get()
	switch {
	case !pok && !cok:
		return optional.None[map[string]string]()
	case !cok:
		return optional.Of(maps.Clone(p))
	case !pok:
		return optional.Of(maps.Clone(c))
	}

	out := make(map[string]string, len(p)+len(c))
	maps.Copy(out, p)
	maps.Copy(out, c)
	return optional.Of(out)
}

func cloneList(v optional.Value[[]string]) optional.Value[[]string] {
	s, ok := v.Get()
	if !ok {
		return v
	}
	return optional.Of(slices.Clone(s))
}

// decodePlaceholders accepts either a list of maps, flattened in order with
// later entries winning, or a single map.
func decodePlaceholders(key string, v document.Value) (map[string]string, error) {
	out := make(map[string]string)

	if m, ok := v.AsMap(); ok {
		return out, copyEntries(key, m, out)
	}

	items, ok := v.AsList()
	if !ok {
		return nil, errors.NewShapeMismatch(key, document.KindList.String()).WithDetail("line", v.Line())
	}
	for _, item := range items {
		m, ok := item.AsMap()
		if !ok {
			return nil, errors.NewShapeMismatch(key, document.KindMap.String()).WithDetail("line", item.Line())
		}
		if err := copyEntries(key, m, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func copyEntries(key string, m *document.Map, out map[string]string) error {
	for _, k := range m.Keys() {
		v, ok := m.Get(k)
		if !ok {
			out[k] = ""
			continue
		}
		s, ok := v.AsScalar()
		if !ok {
			return errors.NewShapeMismatch(key, document.KindScalar.String()).
				WithDetail("entry", k).
				WithDetail("line", v.Line())
		}
		out[k] = s
	}
	return nil
}

func parseString(s string) (string, bool) { return s, true }

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func parseBool(s string) (bool, bool) {
	b, err := strconv.ParseBool(s)
	return b, err == nil
}
