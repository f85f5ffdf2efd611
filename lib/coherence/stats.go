// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

// Stats holds monotonic per-cache counters plus the rates derived from
// them. It is a read-only snapshot; Cache.Stats returns one by value.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Reads     uint64
	Writes    uint64
	Conflicts uint64
}

// HitRate is hits/(hits+misses), 0 when there have been no accesses.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ConflictRate is conflicts/(hits+misses), 0 when there have been no
// accesses.
func (s Stats) ConflictRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Conflicts) / float64(total)
}

// Aggregate sums each counter across caches and integer-divides by the
// number of caches; derived rates are recomputed from the summed counters,
// not averaged independently. Aggregate of an empty slice is the zero
// Stats.
func Aggregate(all []Stats) Stats {
	if len(all) == 0 {
		return Stats{}
	}
	var sum Stats
	for _, s := range all {
		sum.Hits += s.Hits
		sum.Misses += s.Misses
		sum.Reads += s.Reads
		sum.Writes += s.Writes
		sum.Conflicts += s.Conflicts
	}
	n := uint64(len(all))
	return Stats{
		Hits:      sum.Hits / n,
		Misses:    sum.Misses / n,
		Reads:     sum.Reads / n,
		Writes:    sum.Writes / n,
		Conflicts: sum.Conflicts / n,
	}
}
