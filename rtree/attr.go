package rtree

import (
	"errors"

	"github.com/lexegen/lexegen/valset"
)

// ErrTooManyPositions is returned by ComputeAttributes when assigning a
// position would exceed valset.MaxValue. The DFA builder wraps this into
// its own error kind before returning it to callers.
var ErrTooManyPositions = errors.New("rtree: position count exceeds maximum value")

// ComputeAttributes walks n, assigning a dense Position index to every
// positional node it visits (appending to *positions in visitation order)
// and computing Nullable/Firstpos/Lastpos for every node, mutating
// *followpos - indexed by Position - according to the standard
// Aho-Sethi-Ullman construction rules. Call it once per pattern tree, in
// pattern order, reusing the same *positions/*followpos slices so that
// position indices stay dense and unique across the whole pattern set.
func ComputeAttributes(n *Node, positions *[]*Node, followpos *[]valset.ValueSet) error {
	switch n.Kind {
	case KindSymbol, KindSymbSet, KindTerm:
		return assignPosition(n, positions, followpos)
	case KindEmptySymb:
		n.Nullable = true
		return nil
	case KindTrailingContext:
		return computeTrailingContext(n, positions, followpos)
	default:
		return computeInner(n, positions, followpos)
	}
}

func assignPosition(n *Node, positions *[]*Node, followpos *[]valset.ValueSet) error {
	pos := len(*positions)
	if pos > valset.MaxValue {
		return ErrTooManyPositions
	}
	n.Position = pos
	*positions = append(*positions, n)
	*followpos = append(*followpos, valset.ValueSet{})
	n.Nullable = false
	n.Firstpos.Add(pos)
	n.Lastpos.Add(pos)
	return nil
}

func computeTrailingContext(n *Node, positions *[]*Node, followpos *[]valset.ValueSet) error {
	if err := ComputeAttributes(n.Left, positions, followpos); err != nil {
		return err
	}
	if err := ComputeAttributes(n.Right, positions, followpos); err != nil {
		return err
	}
	if err := assignPosition(n, positions, followpos); err != nil {
		return err
	}
	q := n.Position

	n.Nullable = false
	n.Firstpos = n.Left.Firstpos.Clone()
	if n.Left.Nullable {
		n.Firstpos.Add(q)
	}
	n.Lastpos = n.Right.Lastpos.Clone()
	if n.Right.Nullable {
		n.Lastpos.Add(q)
	}

	for p := n.Left.Lastpos.First(); p != -1; p = n.Left.Lastpos.NextAfter(p) {
		(*followpos)[p].Add(q)
	}
	(*followpos)[q].UnionWith(n.Right.Firstpos)
	return nil
}

func computeInner(n *Node, positions *[]*Node, followpos *[]valset.ValueSet) error {
	if err := ComputeAttributes(n.Left, positions, followpos); err != nil {
		return err
	}
	if n.Right != nil {
		if err := ComputeAttributes(n.Right, positions, followpos); err != nil {
			return err
		}
	}

	switch n.Kind {
	case KindOr:
		n.Nullable = n.Left.Nullable || n.Right.Nullable
		n.Firstpos = valset.Union(n.Left.Firstpos, n.Right.Firstpos)
		n.Lastpos = valset.Union(n.Left.Lastpos, n.Right.Lastpos)

	case KindCat:
		n.Nullable = n.Left.Nullable && n.Right.Nullable
		n.Firstpos = n.Left.Firstpos.Clone()
		if n.Left.Nullable {
			n.Firstpos.UnionWith(n.Right.Firstpos)
		}
		n.Lastpos = n.Right.Lastpos.Clone()
		if n.Right.Nullable {
			n.Lastpos.UnionWith(n.Left.Lastpos)
		}
		for p := n.Left.Lastpos.First(); p != -1; p = n.Left.Lastpos.NextAfter(p) {
			(*followpos)[p].UnionWith(n.Right.Firstpos)
		}

	case KindStar, KindPlus, KindQuestion, KindLeftNlAnchor, KindLeftNotNlAnchor:
		n.Nullable = n.Kind == KindStar || n.Kind == KindQuestion || n.Left.Nullable
		n.Firstpos = n.Left.Firstpos.Clone()
		n.Lastpos = n.Left.Lastpos.Clone()
		if n.Kind == KindStar || n.Kind == KindPlus {
			for p := n.Left.Lastpos.First(); p != -1; p = n.Left.Lastpos.NextAfter(p) {
				(*followpos)[p].UnionWith(n.Left.Firstpos)
			}
		}
	}
	return nil
}

// ContainsLeftNlAnchor reports whether n or any of its descendants is a
// LeftNlAnchor node.
func ContainsLeftNlAnchor(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == KindLeftNlAnchor {
		return true
	}
	return ContainsLeftNlAnchor(n.Left) || ContainsLeftNlAnchor(n.Right)
}
