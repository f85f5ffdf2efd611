// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

import "github.com/cachecoh/cachecoh/lib/containers"

// lruPolicy keeps, per set, a recency ordering of the set's touched ways
// from least- to most-recent, plus a reverse index from way to its list
// entry for O(1) move-to-front and removal: the classic
// linked-list-plus-map LRU shape, keyed by bare way indices rather than
// (key, value) pairs.
type lruPolicy struct {
	sets map[uint64]*lruSetIndex
}

type lruSetIndex struct {
	byAge  containers.LinkedList[uint64]
	byName map[uint64]*containers.LinkedListEntry[uint64]
}

var _ Policy = (*lruPolicy)(nil)

func newLRUPolicy() *lruPolicy {
	return &lruPolicy{sets: make(map[uint64]*lruSetIndex)}
}

func (p *lruPolicy) setIndex(setIndex uint64) *lruSetIndex {
	idx, ok := p.sets[setIndex]
	if !ok {
		idx = &lruSetIndex{byName: make(map[uint64]*containers.LinkedListEntry[uint64])}
		p.sets[setIndex] = idx
	}
	return idx
}

func (p *lruPolicy) selectVictim(set *CacheSet, setIndex uint64) (uint64, bool) {
	if way, ok := findInvalidWay(set); ok {
		return way, false
	}
	idx := p.setIndex(setIndex)
	if idx.byAge.IsEmpty() {
		panic("lruPolicy.selectVictim: no invalid line and empty recency index")
	}
	return idx.byAge.Oldest.Value, true
}

func (p *lruPolicy) onTouch(setIndex, wayIndex uint64) {
	idx := p.setIndex(setIndex)
	if entry, ok := idx.byName[wayIndex]; ok {
		idx.byAge.MoveToNewest(entry)
		return
	}
	entry := &containers.LinkedListEntry[uint64]{Value: wayIndex}
	idx.byAge.Store(entry)
	idx.byName[wayIndex] = entry
}

func (p *lruPolicy) onEvict(setIndex, wayIndex uint64) {
	idx := p.setIndex(setIndex)
	entry, ok := idx.byName[wayIndex]
	if !ok {
		return
	}
	idx.byAge.Delete(entry)
	delete(idx.byName, wayIndex)
}
