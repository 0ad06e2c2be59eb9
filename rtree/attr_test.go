package rtree

import (
	"testing"

	"github.com/lexegen/lexegen/valset"
)

// buildPositions runs ComputeAttributes over tree and returns the shared
// position/followpos slices, the way the DFA builder accumulates them
// across an entire pattern set.
func buildPositions(t *testing.T, tree *Node) ([]*Node, []valset.ValueSet) {
	t.Helper()
	var positions []*Node
	var followpos []valset.ValueSet
	if err := ComputeAttributes(tree, &positions, &followpos); err != nil {
		t.Fatalf("ComputeAttributes: %v", err)
	}
	return positions, followpos
}

func TestSingleSymbol(t *testing.T) {
	sym := NewSymbol('a')
	positions, _ := buildPositions(t, sym)
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if sym.Nullable {
		t.Fatalf("a single symbol is never nullable")
	}
	if !sym.Firstpos.Equal(valset.NewRange(0, 0)) || !sym.Lastpos.Equal(valset.NewRange(0, 0)) {
		t.Fatalf("expected firstpos=lastpos={0}")
	}
}

func TestCatFollowpos(t *testing.T) {
	// (ab): position 0 is 'a', position 1 is 'b'; followpos(0) == {1}.
	a := NewSymbol('a')
	b := NewSymbol('b')
	cat := NewCat(a, b)
	_, followpos := buildPositions(t, cat)

	if !followpos[0].Equal(valset.NewRange(1, 1)) {
		t.Fatalf("followpos(0) = %v, want {1}", followpos[0])
	}
	if cat.Nullable {
		t.Fatalf("ab is not nullable")
	}
}

func TestStarFollowpos(t *testing.T) {
	// (a)*: position 0 is 'a'; followpos(0) should include 0 (self-loop).
	a := NewSymbol('a')
	star := NewStar(a)
	_, followpos := buildPositions(t, star)

	if !star.Nullable {
		t.Fatalf("a* must be nullable")
	}
	if !followpos[0].Contains(0) {
		t.Fatalf("followpos(0) must contain 0 for a*, got %v", followpos[0])
	}
}

func TestPlusNotNullableUnlessChildIs(t *testing.T) {
	a := NewSymbol('a')
	plus := NewPlus(a)
	buildPositions(t, plus)
	if plus.Nullable {
		t.Fatalf("a+ must not be nullable")
	}

	empty := NewEmptySymb()
	plusEmpty := NewPlus(empty)
	var positions []*Node
	var followpos []valset.ValueSet
	if err := ComputeAttributes(plusEmpty, &positions, &followpos); err != nil {
		t.Fatalf("ComputeAttributes: %v", err)
	}
	if !plusEmpty.Nullable {
		t.Fatalf("plus over a nullable child must be nullable")
	}
}

func TestOrUnion(t *testing.T) {
	a := NewSymbol('a')
	b := NewSymbol('b')
	or := NewOr(a, b)
	buildPositions(t, or)

	if !or.Firstpos.Equal(valset.NewRange(0, 1)) {
		t.Fatalf("firstpos(a|b) = %v, want {0,1}", or.Firstpos)
	}
}

func TestTrailingContextFollowpos(t *testing.T) {
	// r/s: r is position 0, s is position 1, the TrailingContext node
	// itself takes position 2. followpos(0) must contain 2 (the marker),
	// and followpos(2) must equal firstpos(s) = {1}.
	r := NewSymbol('r')
	s := NewSymbol('s')
	tc := NewTrailingContext(r, s)
	_, followpos := buildPositions(t, tc)

	if tc.Position != 2 {
		t.Fatalf("expected trailing-context marker at position 2, got %d", tc.Position)
	}
	if !followpos[0].Contains(2) {
		t.Fatalf("followpos(0) must contain the trailing-context marker, got %v", followpos[0])
	}
	if !followpos[2].Equal(valset.NewRange(1, 1)) {
		t.Fatalf("followpos(marker) = %v, want {1}", followpos[2])
	}
}

func TestTooManyPositions(t *testing.T) {
	var tree *Node = NewSymbol('a')
	for i := 0; i < valset.MaxValue+1; i++ {
		tree = NewCat(tree, NewSymbol('a'))
	}
	var positions []*Node
	var followpos []valset.ValueSet
	err := ComputeAttributes(tree, &positions, &followpos)
	if err != ErrTooManyPositions {
		t.Fatalf("expected ErrTooManyPositions, got %v", err)
	}
}

func TestContainsLeftNlAnchor(t *testing.T) {
	a := NewSymbol('a')
	anchored := NewLeftNlAnchor(a)
	cat := NewCat(anchored, NewSymbol('b'))
	if !ContainsLeftNlAnchor(cat) {
		t.Fatalf("expected to find the anchor node")
	}
	if ContainsLeftNlAnchor(NewSymbol('x')) {
		t.Fatalf("did not expect an anchor in a plain symbol")
	}
}
