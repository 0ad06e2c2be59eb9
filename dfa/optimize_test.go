package dfa

import (
	"testing"

	"github.com/lexegen/lexegen/rtree"
	"github.com/lexegen/lexegen/valset"
)

func TestOptimizeDeadStateRemoval(t *testing.T) {
	// For "ab" the state reached after "a" is not dead (it can still
	// reach the accepting state on 'b'), so optimization must keep the
	// whole a-then-b path.
	b := NewBuilder(DefaultConfig())
	tree := rtree.NewCat(rtree.NewSymbol('a'), rtree.NewSymbol('b'))
	if _, err := b.AddPattern(tree, allSC(1)); err != nil {
		t.Fatal(err)
	}
	d, err := b.Build(1)
	if err != nil {
		t.Fatal(err)
	}
	before := len(d.Dtran)
	d.Optimize()
	if len(d.Dtran) > before {
		t.Fatalf("optimize should never increase state count: before=%d after=%d", before, len(d.Dtran))
	}
	if d.Stats.OptimizedStateCount != len(d.Dtran) {
		t.Fatalf("Stats.OptimizedStateCount = %d, want %d", d.Stats.OptimizedStateCount, len(d.Dtran))
	}

	s1 := d.Dtran[0]['a']
	if s1 == -1 {
		t.Fatalf("expected transition on 'a' to survive optimization")
	}
	s2 := d.Dtran[s1]['b']
	if s2 == -1 || d.Accept[s2] != 1 {
		t.Fatalf("expected 'ab' to still accept pattern 1 after optimization")
	}

	// A hand-built DFA with a dead state: start --a--> accept(1),
	// start --b--> state 1, which has no transitions and does not accept.
	// State 1 must be pruned and the 'b' transition must disappear.
	dead := &DFA{
		ScCount:      1,
		PatternCount: 1,
		Dtran:        make([][symbolCount]int32, 3),
		Accept:       []int32{0, 0, 1},
		LLS:          make([]valset.ValueSet, 3),
	}
	for s := range dead.Dtran {
		for symb := range dead.Dtran[s] {
			dead.Dtran[s][symb] = -1
		}
	}
	dead.Dtran[0]['a'] = 2
	dead.Dtran[0]['b'] = 1
	dead.Optimize()
	if len(dead.Dtran) != 2 {
		t.Fatalf("expected the dead state to be pruned, got %d states", len(dead.Dtran))
	}
	if dead.Dtran[0]['b'] != -1 {
		t.Fatalf("expected the transition into the dead state to be removed, got %d", dead.Dtran[0]['b'])
	}
	if s := dead.Dtran[0]['a']; s == -1 || dead.Accept[s] != 1 {
		t.Fatalf("expected 'a' to still accept pattern 1 after pruning")
	}
}

func TestOptimizePreservesStartStates(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	if _, err := b.AddPattern(rtree.NewSymbol('x'), allSC(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddPattern(rtree.NewSymbol('y'), allSC(1)); err != nil {
		t.Fatal(err)
	}
	d, err := b.Build(2)
	if err != nil {
		t.Fatal(err)
	}
	d.Optimize()
	if len(d.Dtran) < 2 {
		t.Fatalf("expected at least 2 states (one start state per start condition) to survive, got %d", len(d.Dtran))
	}
}
