// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

import "github.com/cachecoh/cachecoh/lib/containers"

// lfuPolicy keeps, per set, a map from frequency to the ordered list of
// ways currently at that frequency (newest = most recently promoted,
// oldest = least recently promoted, i.e. LRU-within-frequency), a reverse
// map from way to its current frequency and list entry, and a cached
// minFreq so selectVictim never has to scan all frequencies.
type lfuPolicy struct {
	sets map[uint64]*lfuSetIndex
}

type lfuSetIndex struct {
	buckets map[uint64]*containers.LinkedList[uint64]
	freqOf  map[uint64]uint64
	entryOf map[uint64]*containers.LinkedListEntry[uint64]
	minFreq uint64
}

var _ Policy = (*lfuPolicy)(nil)

func newLFUPolicy() *lfuPolicy {
	return &lfuPolicy{sets: make(map[uint64]*lfuSetIndex)}
}

func (p *lfuPolicy) setIndex(setIndex uint64) *lfuSetIndex {
	idx, ok := p.sets[setIndex]
	if !ok {
		idx = &lfuSetIndex{
			buckets: make(map[uint64]*containers.LinkedList[uint64]),
			freqOf:  make(map[uint64]uint64),
			entryOf: make(map[uint64]*containers.LinkedListEntry[uint64]),
		}
		p.sets[setIndex] = idx
	}
	return idx
}

func (p *lfuPolicy) selectVictim(set *CacheSet, setIndex uint64) (uint64, bool) {
	if way, ok := findInvalidWay(set); ok {
		return way, false
	}
	idx := p.setIndex(setIndex)
	bucket, ok := idx.buckets[idx.minFreq]
	if !ok || bucket.IsEmpty() {
		panic("lfuPolicy.selectVictim: no invalid line and empty min-frequency bucket")
	}
	return bucket.Oldest.Value, true
}

func (p *lfuPolicy) onTouch(setIndex, wayIndex uint64) {
	idx := p.setIndex(setIndex)
	oldFreq := idx.freqOf[wayIndex] // 0 if never touched (or reset by onEvict)
	newFreq := oldFreq + 1

	if oldFreq > 0 {
		oldBucket := idx.buckets[oldFreq]
		oldBucket.Delete(idx.entryOf[wayIndex])
		if oldBucket.IsEmpty() {
			delete(idx.buckets, oldFreq)
			if idx.minFreq == oldFreq {
				idx.minFreq = newFreq
			}
		}
	}

	newBucket, ok := idx.buckets[newFreq]
	if !ok {
		newBucket = &containers.LinkedList[uint64]{}
		idx.buckets[newFreq] = newBucket
	}
	entry := &containers.LinkedListEntry[uint64]{Value: wayIndex}
	newBucket.Store(entry)
	idx.entryOf[wayIndex] = entry
	idx.freqOf[wayIndex] = newFreq

	if idx.minFreq == 0 || newFreq < idx.minFreq {
		idx.minFreq = newFreq
	}
}

func (p *lfuPolicy) onEvict(setIndex, wayIndex uint64) {
	idx := p.setIndex(setIndex)
	freq, ok := idx.freqOf[wayIndex]
	if !ok || freq == 0 {
		return
	}
	bucket := idx.buckets[freq]
	bucket.Delete(idx.entryOf[wayIndex])
	if bucket.IsEmpty() {
		delete(idx.buckets, freq)
		if idx.minFreq == freq {
			idx.minFreq = idx.minBucketKey()
		}
	}
	delete(idx.entryOf, wayIndex)
	// Reset to 0 so the next install begins at frequency 1 via onTouch.
	idx.freqOf[wayIndex] = 0
}

// minBucketKey scans the (small, associativity-bounded) set of live
// frequencies for the minimum, used only when the previous minFreq bucket
// has just emptied out from an eviction.
func (idx *lfuSetIndex) minBucketKey() uint64 {
	var min uint64
	first := true
	for freq := range idx.buckets {
		if first || freq < min {
			min = freq
			first = false
		}
	}
	return min
}
