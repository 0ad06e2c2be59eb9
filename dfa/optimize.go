package dfa

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/lexegen/lexegen/internal/conv"
	"github.com/lexegen/lexegen/valset"
)

// Optimize minimizes d in place via partition refinement, keeping start
// states and trailing-context states in their own singleton groups, then
// prunes states that can never reach an accepting state (dead states),
// folding any trailing-context pattern numbers they carried into the
// representative state that absorbs them.
func (d *DFA) Optimize() {
	stateCount := len(d.Dtran)
	if stateCount == 0 {
		return
	}

	groupCount := d.ScCount + d.PatternCount
	stateGroup := make([]int, stateCount)
	stateUsed := make([]bool, stateCount)
	groupMainState := make([]int, groupCount)
	for i := range groupMainState {
		groupMainState[i] = -1
	}

	for state := 0; state < stateCount; state++ {
		groupNo := 0
		switch {
		case !d.LLS[state].IsEmpty():
			if !isStateDead(d, state) {
				groupNo = len(groupMainState)
				groupMainState = append(groupMainState, -1)
				groupCount++
			} else if state < d.ScCount {
				groupNo = state
			}
		case state < d.ScCount:
			groupNo = state
		case d.Accept[state] > 0:
			groupNo = d.ScCount + int(d.Accept[state]) - 1
		}
		if groupMainState[groupNo] == -1 {
			groupMainState[groupNo] = state
			stateUsed[state] = true
		} else {
			stateUsed[state] = false
		}
		stateGroup[state] = groupNo
	}

	change := true
	for change {
		change = false
		for symb := 0; symb < symbolCount; symb++ {
			oldStateGroup := append([]int(nil), stateGroup...)
			groupTrans := make([]*linkedhashmap.Map, groupCount)

			for state := 0; state < stateCount; state++ {
				group := oldStateGroup[state]
				newState := d.Dtran[state][symb]
				newGroup := -1
				if newState != -1 {
					newGroup = oldStateGroup[newState]
				}
				if groupTrans[group] == nil {
					groupTrans[group] = linkedhashmap.New()
				}
				gt := groupTrans[group]

				if v, found := gt.Get(newGroup); !found {
					gt.Put(newGroup, group)
					if gt.Size() > 1 {
						newGroupID := groupCount
						gt.Put(newGroup, newGroupID)
						stateGroup[state] = newGroupID
						groupCount++
						groupMainState = append(groupMainState, state)
						stateUsed[state] = true
						change = true
					}
				} else {
					stateGroup[state] = v.(int)
				}
			}
		}
	}

	for state := 0; state < stateCount; state++ {
		if !stateUsed[state] || state < d.ScCount || d.Accept[state] != 0 {
			continue
		}
		dead := true
		for symb := 0; symb < symbolCount && dead; symb++ {
			group := stateGroup[state]
			newState := d.Dtran[state][symb]
			if newState == -1 {
				continue
			}
			newGroup := stateGroup[newState]
			if group != newGroup && stateUsed[groupMainState[newGroup]] {
				dead = false
			}
		}
		if dead {
			stateUsed[state] = false
		}
	}

	newStateIndices := make([]int, stateCount)
	newStateCount := 0
	for state := 0; state < stateCount; state++ {
		if stateUsed[state] {
			newStateIndices[state] = newStateCount
			newStateCount++
		} else {
			newStateIndices[state] = -1
		}
	}

	newDtran := make([][symbolCount]int32, newStateCount)
	newAccept := make([]int32, newStateCount)
	newLLS := make([]valset.ValueSet, newStateCount)

	for state := 0; state < stateCount; state++ {
		if newIdx := newStateIndices[state]; newIdx != -1 {
			var row [symbolCount]int32
			for symb := 0; symb < symbolCount; symb++ {
				tran := d.Dtran[state][symb]
				if tran != -1 {
					tran = conv.IntToInt32(newStateIndices[groupMainState[stateGroup[tran]]])
				}
				row[symb] = tran
			}
			newDtran[newIdx] = row
			newAccept[newIdx] = d.Accept[state]
			newLLS[newIdx] = d.LLS[state].Clone()
		} else if mergedIdx := newStateIndices[groupMainState[stateGroup[state]]]; mergedIdx != -1 {
			newLLS[mergedIdx].UnionWith(d.LLS[state])
		}
	}

	d.Dtran = newDtran
	d.Accept = newAccept
	d.LLS = newLLS
	d.Stats.OptimizedStateCount = newStateCount
}

// isStateDead reports whether no state reachable from start (including
// start itself) accepts any pattern.
func isStateDead(d *DFA, start int) bool {
	if d.Accept[start] > 0 {
		return false
	}
	stateCount := len(d.Dtran)
	marked := make([]bool, stateCount)
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if marked[cur] {
			continue
		}
		marked[cur] = true
		for symb := 0; symb < symbolCount; symb++ {
			ns := d.Dtran[cur][symb]
			if ns == -1 {
				continue
			}
			if d.Accept[ns] > 0 {
				return false
			}
			if !marked[ns] {
				stack = append(stack, int(ns))
			}
		}
	}
	return true
}
