// Package lexegen sequences the five-stage lexer-table pipeline - position
// and attribute computation, subset construction, minimization,
// meta-symbol reduction, and row-displacement compression - behind a
// single Builder.
//
// Everything upstream of this package (parsing pattern syntax into an
// rtree.Node forest) and everything downstream (emitting the resulting
// tables as source code) is out of scope: Builder takes trees, returns
// tables.
package lexegen

import (
	"github.com/lexegen/lexegen/dfa"
	"github.com/lexegen/lexegen/internal/conv"
	"github.com/lexegen/lexegen/rtree"
	"github.com/lexegen/lexegen/valset"
)

// Builder accumulates patterns and compiles them into a complete set of
// lexer tables.
type Builder struct {
	config dfa.Config
	inner  *dfa.Builder
}

// NewBuilder returns a Builder configured by config.
func NewBuilder(config dfa.Config) *Builder {
	return &Builder{config: config, inner: dfa.NewBuilder(config)}
}

// AddPattern registers tree as the next pattern, active under the start
// conditions in sc, and returns its 1-based pattern number.
func (b *Builder) AddPattern(tree *rtree.Node, sc valset.ValueSet) (int, error) {
	return b.inner.AddPattern(tree, sc)
}

// Artifacts is the outbound interface to an emitter: every table a
// generated lexer driver needs, plus the diagnostic Stats collected along
// the way. Nothing in this package prints or formats them.
type Artifacts struct {
	// Symb2Meta maps each of the 256 possible input bytes to its
	// meta-symbol class; MetaCount is the number of classes, with class 0
	// reserved as the dead class.
	Symb2Meta [256]byte
	MetaCount int

	// Def, Base, Next, Check are the row-displacement-compressed DFA
	// transition table, indexed as described on dfa.Compressed.
	Def, Base, Next, Check []int32

	// Accept holds, per state, the lowest-numbered pattern that state
	// accepts, or 0 if the state does not accept.
	Accept []int32

	// LLSIdx/LLSList are the CSR-flattened per-state sets of pattern
	// numbers with live trailing context in that state: for state i, the
	// pattern numbers are LLSList[LLSIdx[i]:LLSIdx[i+1]].
	LLSIdx, LLSList []int32

	HasTrailingContext bool
	HasLeftNlAnchoring bool

	Stats dfa.Stats
}

// Build runs the full pipeline - subset construction, minimization,
// meta-symbol reduction, compression - over every pattern registered with
// AddPattern, for a lexer with scCount start conditions.
func (b *Builder) Build(scCount int) (*Artifacts, error) {
	d, err := b.inner.Build(scCount)
	if err != nil {
		return nil, err
	}
	d.Optimize()
	meta := d.ReduceMeta()
	compressed := meta.Compress(b.config)
	d.Stats.CompressedTableSize = len(compressed.Next)

	lllsIdx, lllsList := flattenLLS(meta.LLS)

	return &Artifacts{
		Symb2Meta:          meta.Symb2Meta,
		MetaCount:          meta.MetaCount,
		Def:                compressed.Def,
		Base:               compressed.Base,
		Next:               compressed.Next,
		Check:              compressed.Check,
		Accept:             meta.Accept,
		LLSIdx:             lllsIdx,
		LLSList:            lllsList,
		HasTrailingContext: d.HasTrailingContext,
		HasLeftNlAnchoring: d.HasLeftNlAnchoring,
		Stats:              d.Stats,
	}, nil
}

// flattenLLS encodes a per-state slice of pattern-number sets as a CSR
// pair: idx has len(sets)+1 entries, and list concatenates every set's
// values in ascending order.
func flattenLLS(sets []valset.ValueSet) (idx, list []int32) {
	idx = make([]int32, len(sets)+1)
	for i, s := range sets {
		idx[i] = conv.IntToInt32(len(list))
		s.Each(func(v int) {
			list = append(list, conv.IntToInt32(v))
		})
	}
	idx[len(sets)] = conv.IntToInt32(len(list))
	return idx, list
}
