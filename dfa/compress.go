package dfa

import "github.com/lexegen/lexegen/internal/conv"

// Compressed is the row-displacement encoding of a meta-reduced DFA: four
// parallel arrays a runtime driver indexes as
//
//	state = check[base[state]+meta] == state ? next[base[state]+meta] : def[state]-driven fallback
//
// walked until a transition or -1 is found.
type Compressed struct {
	Def, Base, Next, Check []int32
}

// Compress packs m's per-state transition rows into a single shared
// arena, letting states that differ from an earlier state in only a few
// columns share most of their storage through a default-state pointer
// (def) plus a sparse patch (base/next/check).
func (m *MetaReduction) Compress(cfg Config) *Compressed {
	stateCount := len(m.Dtran)
	metaCount := m.MetaCount

	def := make([]int32, stateCount)
	base := make([]int32, stateCount)
	var next, check []int32
	firstFree := 0

	for s := 0; s < stateCount; s++ {
		row := m.Dtran[s]

		var allFailedDiffs []int
		for meta := 0; meta < metaCount; meta++ {
			if row[meta] != -1 {
				allFailedDiffs = append(allFailedDiffs, meta)
			}
		}

		simState := -1
		bestCount := len(allFailedDiffs)
		bestSegSize := 0
		if len(allFailedDiffs) > 0 {
			bestSegSize = allFailedDiffs[len(allFailedDiffs)-1] - allFailedDiffs[0] + 1
		}

		for s2 := 0; s2 < s; s2++ {
			u := m.Dtran[s2]
			count := 0
			firstDif, segSize := 0, 0
			for meta := 0; meta < metaCount; meta++ {
				if row[meta] != u[meta] {
					if count == 0 {
						firstDif = meta
					}
					segSize = meta - firstDif + 1
					count++
				}
			}
			if cfg.CountWeight*count+cfg.SegSizeWeight*segSize <
				cfg.CountWeight*bestCount+cfg.SegSizeWeight*bestSegSize {
				simState = s2
				bestCount = count
				bestSegSize = segSize
			}
		}

		var diffs []int
		if simState != -1 {
			u := m.Dtran[simState]
			for meta := 0; meta < metaCount; meta++ {
				if row[meta] != u[meta] {
					diffs = append(diffs, meta)
				}
			}
			def[s] = conv.IntToInt32(simState)
		} else {
			diffs = allFailedDiffs
			def[s] = -1
		}

		comprSize := len(next)
		b := firstFree
		if len(diffs) > 0 {
			i := firstFree
			if diffs[0] > firstFree {
				i = diffs[0]
			}
			b = i - diffs[0]
			for ; i < comprSize; i, b = i+1, b+1 {
				match := true
				for _, dfm := range diffs {
					l := b + dfm
					if l >= comprSize {
						break
					}
					if check[l] != -1 {
						match = false
						break
					}
				}
				if match {
					break
				}
			}
		}
		base[s] = conv.IntToInt32(b)

		upperBound := b + metaCount
		if upperBound > comprSize {
			grow := make([]int32, upperBound-comprSize)
			for i := range grow {
				grow[i] = -1
			}
			next = append(next, grow...)
			check = append(check, grow...)
			comprSize = upperBound
		}
		for _, dfm := range diffs {
			l := b + dfm
			next[l] = row[dfm]
			check[l] = conv.IntToInt32(s)
		}

		for ; firstFree < comprSize; firstFree++ {
			if check[firstFree] == -1 {
				break
			}
		}
	}

	// Final fill: every cell a state's row touches but that no write
	// above claimed (because some other state's base happened to cover
	// it first with a -1 hole) still needs this state's own value.
	for s := 0; s < stateCount; s++ {
		row := m.Dtran[s]
		for meta := 0; meta < metaCount; meta++ {
			l := int(base[s]) + meta
			if check[l] == -1 {
				next[l] = row[meta]
				check[l] = conv.IntToInt32(s)
			}
		}
	}

	return &Compressed{Def: def, Base: base, Next: next, Check: check}
}
