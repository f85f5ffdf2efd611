// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

// Policy is the capability set the engine drives the replacement index
// through: selectVictim on a conflict miss, onTouch on every hit and right
// after install, onEvict right before a victim's identity is reassigned.
//
// Implementations are keyed internally by (setIndex, wayIndex) rather than
// by a pointer or interface value, per the pointer-free identity scheme:
// lines never move or reallocate, so a (set, way) pair is a stable handle
// for the lifetime of the cache.
type Policy interface {
	// selectVictim picks a way within setIndex to evict. It prefers any
	// invalid line (stable by lowest slot index) before falling back to
	// the policy's preferred valid victim; conflict reports whether a
	// valid line had to be chosen (and so the caller should count a
	// conflict).
	selectVictim(set *CacheSet, setIndex uint64) (wayIndex uint64, conflict bool)

	// onTouch records a reference to (setIndex, wayIndex), called on
	// every hit and immediately after install.
	onTouch(setIndex, wayIndex uint64)

	// onEvict removes (setIndex, wayIndex) from the index, called with
	// the victim before its identity is reassigned to a new tag.
	onEvict(setIndex, wayIndex uint64)
}

// findInvalidWay returns the lowest-index invalid line in set, if any. This
// fast path is policy-agnostic and does not count as a conflict.
func findInvalidWay(set *CacheSet) (uint64, bool) {
	for i := range set.Lines {
		if !set.Lines[i].Valid {
			return uint64(i), true
		}
	}
	return 0, false
}

// newPolicy constructs the policy index named by kind.
func newPolicy(kind PolicyKind) Policy {
	switch kind {
	case PolicyLFU:
		return newLFUPolicy()
	default:
		return newLRUPolicy()
	}
}
