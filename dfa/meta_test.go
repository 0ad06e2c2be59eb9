package dfa

import (
	"testing"

	"github.com/lexegen/lexegen/rtree"
)

func TestReduceMetaCollapsesUnusedBytes(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	if _, err := b.AddPattern(rtree.NewSymbol('a'), allSC(1)); err != nil {
		t.Fatal(err)
	}
	d, err := b.Build(1)
	if err != nil {
		t.Fatal(err)
	}
	d.Optimize()
	meta := d.ReduceMeta()

	// Only 'a' and "everything else" participate, so at most 2 live
	// classes plus the reserved dead class.
	if meta.MetaCount > 3 {
		t.Fatalf("expected a small meta-symbol count, got %d", meta.MetaCount)
	}
	if meta.Symb2Meta['z'] != meta.Symb2Meta[0] {
		t.Fatalf("'z' and NUL should share the dead class since neither is 'a'")
	}
	if meta.Symb2Meta['a'] == 0 {
		t.Fatalf("'a' must not map to the reserved dead class")
	}
	for s := range meta.Dtran {
		if len(meta.Dtran[s]) != meta.MetaCount {
			t.Fatalf("row %d has width %d, want %d", s, len(meta.Dtran[s]), meta.MetaCount)
		}
	}
}

func TestReduceMetaCaseInsensitiveAliasing(t *testing.T) {
	cfg := DefaultConfig().WithCaseInsensitive(true)
	b := NewBuilder(cfg)
	if _, err := b.AddPattern(rtree.NewSymbol('A'), allSC(1)); err != nil {
		t.Fatal(err)
	}
	d, err := b.Build(1)
	if err != nil {
		t.Fatal(err)
	}
	meta := d.ReduceMeta()
	if meta.Symb2Meta['a'] != meta.Symb2Meta['A'] {
		t.Fatalf("expected 'a' and 'A' to share a meta class")
	}
}
