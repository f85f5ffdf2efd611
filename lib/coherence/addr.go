// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

// Decompose splits a 64-bit address into (tag, set index, block offset)
// per cfg's block size and set count. Both are required by NewCacheConfig
// to be powers of two, so the decomposition is shift-and-mask, not
// division/modulo.
func Decompose(addr uint64, cfg CacheConfig) (tag, setIndex, offset uint64) {
	offset = addr & (cfg.BlockSize - 1)
	setIndex = (addr >> cfg.blockLog) & (cfg.numSets - 1)
	tag = addr >> (cfg.blockLog + cfg.setLog)
	return tag, setIndex, offset
}
