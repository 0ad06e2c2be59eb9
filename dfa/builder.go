// Package dfa turns an attributed syntax-tree forest into a compressed
// DFA transition table: subset construction directly from positions
// (builder.go), partition-refinement minimization with dead-state pruning
// (optimize.go), byte-equivalence-class reduction (meta.go), and
// row-displacement table compression (compress.go).
package dfa

import (
	"github.com/dolthub/swiss"

	"github.com/lexegen/lexegen/internal/conv"
	"github.com/lexegen/lexegen/rtree"
	"github.com/lexegen/lexegen/valset"
)

const symbolCount = 256

type pattern struct {
	sc     valset.ValueSet
	tree   *rtree.Node // augmented: Cat(original, Term(number))
	number int
}

// Builder accumulates patterns and, once every pattern has been added,
// runs subset construction to produce a DFA.
type Builder struct {
	config   Config
	patterns []pattern
}

// NewBuilder returns a Builder configured by config.
func NewBuilder(config Config) *Builder {
	return &Builder{config: config}
}

// AddPattern registers tree as pattern number len+1, active under the
// start conditions in sc, and returns that pattern number. tree is
// augmented internally as Cat(tree, Term(number)).
func (b *Builder) AddPattern(tree *rtree.Node, sc valset.ValueSet) (int, error) {
	number := len(b.patterns) + 1
	if number > valset.MaxValue {
		return 0, ErrTooManyPatterns
	}
	augmented := rtree.NewCat(tree, rtree.NewTerm(number))
	b.patterns = append(b.patterns, pattern{sc: sc, tree: augmented, number: number})
	return number, nil
}

// PatternHasTrailingContext reports whether pattern n's tree has a
// TrailingContext node directly to the left of its Term - i.e. whether
// matching it requires unreading part of the matched text.
func (b *Builder) PatternHasTrailingContext(n int) bool {
	for _, p := range b.patterns {
		if p.number != n {
			continue
		}
		return p.tree.Kind == rtree.KindCat && p.tree.Left.Kind == rtree.KindTrailingContext
	}
	return false
}

// HasLeftNlAnchoring reports whether any registered pattern contains a
// left-newline-anchoring node.
func (b *Builder) HasLeftNlAnchoring() bool {
	for _, p := range b.patterns {
		if rtree.ContainsLeftNlAnchor(p.tree) {
			return true
		}
	}
	return false
}

// DFA is the subset-construction output: one row of symbolCount
// transitions per state, an accepted pattern number per state (0 if
// none), and the set of pattern numbers with live trailing context per
// state.
type DFA struct {
	ScCount            int
	PatternCount       int
	Dtran              [][symbolCount]int32
	Accept             []int32
	LLS                []valset.ValueSet
	HasTrailingContext bool
	HasLeftNlAnchoring bool
	CaseInsensitive    bool
	Stats              Stats
}

// Build runs subset construction over every registered pattern and
// returns the resulting DFA. scCount is the number of start conditions;
// state indices [0, scCount) are reserved for, and equal to, the start
// states of each start condition.
func (b *Builder) Build(scCount int) (*DFA, error) {
	if len(b.patterns) == 0 {
		return nil, ErrEmptySpecification
	}
	if scCount < 1 {
		scCount = 1
	}

	var positions []*rtree.Node
	var followpos []valset.ValueSet
	for _, p := range b.patterns {
		if err := rtree.ComputeAttributes(p.tree, &positions, &followpos); err != nil {
			return nil, &Error{Kind: TooManyPositions, Message: "position count exceeds maximum value", Cause: err}
		}
	}

	stats := Stats{
		PatternCount:        len(b.patterns),
		StartConditionCount: scCount,
		PositionCount:       len(positions),
	}

	epsClosure := func(t valset.ValueSet) valset.ValueSet {
		closure := t.Clone()
		for p := t.First(); p != -1; p = t.NextAfter(p) {
			if positions[p].Kind == rtree.KindTrailingContext {
				closure.UnionWith(followpos[p])
			}
		}
		return closure
	}

	var states []valset.ValueSet
	var dtran [][symbolCount]int32
	index := swiss.NewMap[uint64, []int](16)

	registerIndex := func(h uint64, idx int) {
		bucket, _ := index.Get(h)
		bucket = append(bucket, idx)
		index.Put(h, bucket)
	}

	addState := func(s valset.ValueSet) int {
		idx := len(states)
		var row [symbolCount]int32
		for i := range row {
			row[i] = -1
		}
		states = append(states, s)
		dtran = append(dtran, row)
		return idx
	}

	findOrAdd := func(s valset.ValueSet) (idx int, isNew bool) {
		h := s.Hash()
		if bucket, ok := index.Get(h); ok {
			for _, candidate := range bucket {
				if states[candidate].Equal(s) {
					return candidate, false
				}
			}
		}
		idx = addState(s)
		registerIndex(h, idx)
		return idx, true
	}

	caseInsensitive := b.config.CaseInsensitive

	// Seed one start state per start condition, always as a fresh state
	// even if two start conditions happen to produce the same
	// position-set: state index must equal start-condition index.
	pending := make([]int, 0, scCount)
	for sc := 0; sc < scCount; sc++ {
		var firstpos valset.ValueSet
		for _, p := range b.patterns {
			if p.sc.Contains(sc) {
				firstpos.UnionWith(p.tree.Firstpos)
			}
		}
		closure := epsClosure(firstpos)
		idx := addState(closure)
		registerIndex(closure.Hash(), idx)
		pending = append(pending, idx)
	}

	matches := func(pos, symb int) bool {
		n := positions[pos]
		switch n.Kind {
		case rtree.KindSymbol:
			if int(n.Symbol) == symb {
				return true
			}
			return caseInsensitive && foldByte(int(n.Symbol)) == foldByte(symb)
		case rtree.KindSymbSet:
			if n.Set.Contains(symb) {
				return true
			}
			if caseInsensitive && symb >= 'A' && symb <= 'Z' {
				return n.Set.Contains(symb - 'A' + 'a')
			}
			return false
		default:
			return false
		}
	}

	for len(pending) > 0 {
		tIdx := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		T := states[tIdx]

		for symb := 0; symb < symbolCount; symb++ {
			if caseInsensitive && isLowerASCII(symb) {
				continue
			}
			var U valset.ValueSet
			for p := T.First(); p != -1; p = T.NextAfter(p) {
				if matches(p, symb) {
					U.UnionWith(followpos[p])
				}
			}
			if U.IsEmpty() {
				continue
			}
			closure := epsClosure(U)
			idx, isNew := findOrAdd(closure)
			if isNew {
				pending = append(pending, idx)
			}
			dtran[tIdx][symb] = conv.IntToInt32(idx)
		}

		if caseInsensitive {
			for symb := 'a'; symb <= 'z'; symb++ {
				dtran[tIdx][symb] = dtran[tIdx][symb-'a'+'A']
			}
		}
	}

	accept := make([]int32, len(states))
	lls := make([]valset.ValueSet, len(states))
	for i, T := range states {
		for p := T.First(); p != -1; p = T.NextAfter(p) {
			if positions[p].Kind == rtree.KindTerm {
				accept[i] = conv.IntToInt32(positions[p].PatternNo)
				break
			}
		}
		n := len(positions)
		for p := T.First(); p != -1; p = T.NextAfter(p) {
			if positions[p].Kind == rtree.KindTrailingContext && p+1 < n && positions[p+1].Kind == rtree.KindTerm {
				lls[i].Add(positions[p+1].PatternNo)
			}
		}
	}

	stats.StateCount = len(states)

	d := &DFA{
		ScCount:         scCount,
		PatternCount:    len(b.patterns),
		Dtran:           dtran,
		Accept:          accept,
		LLS:             lls,
		CaseInsensitive: caseInsensitive,
		Stats:           stats,
	}
	for n := 1; n <= len(b.patterns); n++ {
		if b.PatternHasTrailingContext(n) {
			d.HasTrailingContext = true
			break
		}
	}
	d.HasLeftNlAnchoring = b.HasLeftNlAnchoring()
	return d, nil
}

func isLowerASCII(c int) bool { return c >= 'a' && c <= 'z' }

// foldByte maps lower-case ASCII letters to their upper-case counterpart
// and leaves every other byte unchanged.
func foldByte(c int) int {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
