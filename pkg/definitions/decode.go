package definitions

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/document"
	"github.com/ajitpratap0/strata/pkg/errors"
)

// RootKey wraps every definition entry in the document.
const RootKey = "MigrationDefinitions"

const childrenKey = "Children"

// Fallback describes a token that could not be parsed into its field's type
// (an unknown enum member, a non-numeric number, a non-boolean flag). The
// field is left absent so it inherits from its ancestors.
type Fallback struct {
	Path  string
	Field string
	Token string
}

// Option configures ParseAll.
type Option func(*decoder)

// WithLogger logs unknown fields and fallbacks to log.
func WithLogger(log *zap.Logger) Option {
	return func(d *decoder) {
		if log != nil {
			d.log = log
		}
	}
}

// WithFallbackHook calls fn for every token that resolved to absent.
func WithFallbackHook(fn func(Fallback)) Option {
	return func(d *decoder) {
		d.onFallback = fn
	}
}

type decoder struct {
	log        *zap.Logger
	onFallback func(Fallback)
	path       string
}

func (d *decoder) nested(segment string) *decoder {
	cp := *d
	cp.path = d.path + "." + segment
	return &cp
}

func (d *decoder) fallback(field, token string) {
	d.log.Warn("unparsable value treated as absent",
		zap.String("path", d.path),
		zap.String("field", field),
		zap.String("token", token))
	if d.onFallback != nil {
		d.onFallback(Fallback{Path: d.path, Field: field, Token: token})
	}
}

var knownKeys = func() map[string]struct{} {
	known := map[string]struct{}{childrenKey: {}}
	for _, f := range nodeFields {
		for _, k := range f.keys {
			known[k] = struct{}{}
		}
	}
	return known
}()

// ParseAll parses definitions text into its root nodes, in document order.
// It fails with a parse error when the text is not a YAML sequence, with a
// shape mismatch when a field holds the wrong shape, and with a key not
// found error when an entry lacks the MigrationDefinitions key.
func ParseAll(text []byte, opts ...Option) ([]Node, error) {
	d := &decoder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}

	values, err := document.Parse(text)
	if err != nil {
		return nil, err
	}

	roots := make([]Node, 0, len(values))
	for i, v := range values {
		node, err := d.entry(v, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// entry decodes one {MigrationDefinitions: {...}} wrapper.
func (d *decoder) entry(v document.Value, path string) (Node, error) {
	wrapper, ok := v.AsMap()
	if !ok {
		return Node{}, annotate(errors.NewShapeMismatch(RootKey, document.KindMap.String()), path)
	}

	defs, found, err := wrapper.Map(RootKey)
	if err != nil {
		return Node{}, annotate(err, path)
	}
	if !found {
		if !wrapper.Has(RootKey) {
			return Node{}, annotate(errors.NewExpectedKeyNotFound(RootKey), path)
		}
		// "MigrationDefinitions:" with nothing under it sets nothing.
		defs = document.NewMap()
	}

	nd := &decoder{log: d.log, onFallback: d.onFallback, path: path}
	return nd.node(defs)
}

func (d *decoder) node(defs *document.Map) (Node, error) {
	var n Node

	for _, key := range defs.Keys() {
		if _, ok := knownKeys[key]; !ok {
			d.log.Debug("ignoring unknown definition field",
				zap.String("path", d.path),
				zap.String("field", key))
		}
	}

	for _, f := range nodeFields {
		if err := f.decode(&n, defs, d); err != nil {
			return Node{}, annotate(err, d.path)
		}
	}

	children, found, err := defs.List(childrenKey)
	if err != nil {
		return Node{}, annotate(err, d.path)
	}
	if found {
		n.Children = make([]Node, 0, len(children))
		for i, c := range children {
			child, err := d.entry(c, fmt.Sprintf("%s.%s[%d]", d.path, childrenKey, i))
			if err != nil {
				return Node{}, err
			}
			n.Children = append(n.Children, child)
		}
	}

	return n, nil
}

// annotate records where in the tree err was raised, without changing its
// type. The innermost location is kept.
func annotate(err error, path string) error {
	var e *errors.Error
	if errors.As(err, &e) {
		if _, ok := e.Details["node"]; !ok {
			e.WithDetail("node", path)
		}
	}
	return err
}
