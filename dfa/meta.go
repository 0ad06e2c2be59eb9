package dfa

import "github.com/lexegen/lexegen/valset"

// MetaReduction is the DFA rewritten over meta-symbols: meta 0 is always
// the reserved dead class (every state fails on it), and every other
// meta index is a class of bytes that behave identically in every state's
// transition row.
type MetaReduction struct {
	Symb2Meta [symbolCount]byte
	MetaCount int
	Dtran     [][]int32 // one row per state, width MetaCount
	Accept    []int32
	LLS       []valset.ValueSet
}

// ReduceMeta collapses d's 256-byte alphabet down to the smallest set of
// equivalence classes ("meta-symbols") that preserve every state's
// transition behavior, and rewrites Dtran's columns accordingly. After
// this call the logical row width is MetaCount, not symbolCount.
func (d *DFA) ReduceMeta() *MetaReduction {
	stateCount := len(d.Dtran)

	isDeadByte := func(c int) bool {
		for s := 0; s < stateCount; s++ {
			if d.Dtran[s][c] != -1 {
				return false
			}
		}
		return true
	}
	sameColumn := func(c1, c2 int) bool {
		for s := 0; s < stateCount; s++ {
			if d.Dtran[s][c1] != d.Dtran[s][c2] {
				return false
			}
		}
		return true
	}

	var symb2meta [symbolCount]byte
	nextMeta := 1 // 0 is reserved for the dead class
	for c := 0; c < symbolCount; c++ {
		switch {
		case isDeadByte(c):
			symb2meta[c] = 0
		case d.CaseInsensitive && isLowerASCII(c):
			symb2meta[c] = symb2meta[foldByte(c)]
		default:
			assigned := byte(0)
			found := false
			for cp := 0; cp < c; cp++ {
				if symb2meta[cp] != 0 && sameColumn(c, cp) {
					assigned = symb2meta[cp]
					found = true
					break
				}
			}
			if !found {
				assigned = byte(nextMeta)
				nextMeta++
			}
			symb2meta[c] = assigned
		}
	}
	metaCount := nextMeta

	meta2byte := make([]int, metaCount)
	for i := range meta2byte {
		meta2byte[i] = -1
	}
	for c := 0; c < symbolCount; c++ {
		m := int(symb2meta[c])
		if meta2byte[m] == -1 {
			meta2byte[m] = c
		}
	}

	newDtran := make([][]int32, stateCount)
	for s := 0; s < stateCount; s++ {
		row := make([]int32, metaCount)
		row[0] = -1
		for m := 1; m < metaCount; m++ {
			if b := meta2byte[m]; b != -1 {
				row[m] = d.Dtran[s][b]
			} else {
				row[m] = -1
			}
		}
		newDtran[s] = row
	}

	accept := make([]int32, stateCount)
	copy(accept, d.Accept)
	lls := make([]valset.ValueSet, stateCount)
	for i, s := range d.LLS {
		lls[i] = s.Clone()
	}

	d.Stats.MetaCount = metaCount

	return &MetaReduction{
		Symb2Meta: symb2meta,
		MetaCount: metaCount,
		Dtran:     newDtran,
		Accept:    accept,
		LLS:       lls,
	}
}
