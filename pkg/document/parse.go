// Package document parses raw definitions text into an ordered sequence of
// untyped nodes. Each node is a Value: a scalar, a list, a map with ordered
// keys, or null. Nothing here knows about migration definitions; shape checks
// happen through the Map accessors when a caller asks for a specific key.
package document

import (
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/strata/pkg/errors"
)

const mergeKey = "<<"

// Parse parses YAML text whose top-level node must be a sequence. An empty
// document yields an empty sequence.
func Parse(data []byte) ([]Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.NewParseError("failed to parse definitions YAML", err)
	}

	// Empty input leaves the document node unset.
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return []Value{}, nil
	}

	top := &root
	if top.Kind == yaml.DocumentNode {
		top = top.Content[0]
	}
	top = resolveAlias(top)

	if top.Kind != yaml.SequenceNode {
		return nil, errors.NewParseError("top-level document must be a sequence", nil).
			WithDetail("line", top.Line)
	}

	out := make([]Value, 0, len(top.Content))
	for _, item := range top.Content {
		v, err := convert(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func convert(node *yaml.Node) (Value, error) {
	node = resolveAlias(node)

	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return Value{kind: KindNull, line: node.Line}, nil
		}
		return Value{kind: KindScalar, scalar: node.Value, line: node.Line}, nil

	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := convert(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{kind: KindList, list: items, line: node.Line}, nil

	case yaml.MappingNode:
		m, err := convertMap(node)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m, line: node.Line}, nil

	default:
		return Value{kind: KindNull, line: node.Line}, nil
	}
}

// convertMap builds an ordered Map. "<<" merge keys are expanded after the
// explicit keys so explicit keys always win; among several merge sources the
// earlier one wins.
func convertMap(node *yaml.Node) (*Map, error) {
	m := NewMap()
	var merges []*yaml.Node

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		valNode := node.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, errors.NewParseError("mapping keys must be scalars", nil).
				WithDetail("line", keyNode.Line)
		}

		if keyNode.Value == mergeKey && keyNode.ShortTag() == "!!merge" {
			merges = append(merges, resolveAlias(valNode))
			continue
		}

		v, err := convert(valNode)
		if err != nil {
			return nil, err
		}
		m.Set(keyNode.Value, v)
	}

	for _, src := range merges {
		sources := []*yaml.Node{src}
		if src.Kind == yaml.SequenceNode {
			sources = src.Content
		}
		for _, s := range sources {
			s = resolveAlias(s)
			if s.Kind != yaml.MappingNode {
				return nil, errors.NewShapeMismatch(mergeKey, KindMap.String()).WithDetail("line", s.Line)
			}
			merged, err := convertMap(s)
			if err != nil {
				return nil, err
			}
			for _, k := range merged.keys {
				if !m.Has(k) {
					m.Set(k, merged.values[k])
				}
			}
		}
	}

	return m, nil
}
