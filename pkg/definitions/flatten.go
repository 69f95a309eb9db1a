package definitions

// Flatten resolves every leaf of every root, in document order of roots and
// declared order of children. Source trees are not modified.
func Flatten(roots []Node) []Resolved {
	out := make([]Resolved, 0, len(roots))
	for i := range roots {
		out = append(out, FlattenNode(roots[i])...)
	}
	return out
}

// FlattenNode resolves the leaves below a single root. A leaf resolves to a
// copy of itself. For an inner node each child subtree is flattened first
// and the node is then merged, as parent, into every leaf it produced, so
// the nearest ancestor that sets a field always wins.
func FlattenNode(n Node) []Resolved {
	if n.IsLeaf() {
		leaf := Merge(Node{}, n)
		leaf.Children = nil
		return []Resolved{{Node: leaf}}
	}

	var out []Resolved
	for i := range n.Children {
		for _, partial := range FlattenNode(n.Children[i]) {
			merged := Merge(n, partial.Node)
			merged.Children = nil
			out = append(out, Resolved{Node: merged})
		}
	}
	return out
}

// CountLeaves returns how many resolved entries Flatten would produce.
func CountLeaves(roots []Node) int {
	total := 0
	for i := range roots {
		total += countLeaves(roots[i])
	}
	return total
}

func countLeaves(n Node) int {
	if n.IsLeaf() {
		return 1
	}
	total := 0
	for i := range n.Children {
		total += countLeaves(n.Children[i])
	}
	return total
}
