// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

import "math/bits"

// PolicyKind selects which replacement strategy a Cache uses on a conflict miss.
type PolicyKind int

const (
	PolicyLRU PolicyKind = iota
	PolicyLFU
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyLRU:
		return "lru"
	case PolicyLFU:
		return "lfu"
	default:
		return "unknown"
	}
}

// CacheConfig is the immutable shape of a single-level cache: total size,
// block size, and associativity, all in bytes/lines as appropriate. NumSets
// is derived and cached at construction.
//
// cache_size and block_size×associativity must divide evenly, and both
// block_size and the resulting NumSets must be powers of two; Decompose
// depends on this to use shifts and masks instead of division.
type CacheConfig struct {
	CacheSize     uint64
	BlockSize     uint64
	Associativity uint64
	Policy        PolicyKind

	// derived
	numSets  uint64
	blockLog uint64
	setLog   uint64
}

// NewCacheConfig validates and constructs a CacheConfig. It fails fast: there
// is no partially-constructed config.
func NewCacheConfig(cacheSize, blockSize, associativity uint64, policy PolicyKind) (CacheConfig, error) {
	if cacheSize == 0 {
		return CacheConfig{}, configErrorf("cache_size", cacheSize, "must be positive")
	}
	if blockSize == 0 {
		return CacheConfig{}, configErrorf("block_size", blockSize, "must be positive")
	}
	if associativity == 0 {
		return CacheConfig{}, configErrorf("associativity", associativity, "must be positive")
	}
	if !isPowerOfTwo(blockSize) {
		return CacheConfig{}, configErrorf("block_size", blockSize, "must be a power of two")
	}

	setBytes := blockSize * associativity
	if setBytes == 0 || cacheSize%setBytes != 0 {
		return CacheConfig{}, configErrorf("cache_size", cacheSize,
			"must be divisible by block_size*associativity (%d)", setBytes)
	}
	numSets := cacheSize / setBytes
	if !isPowerOfTwo(numSets) {
		return CacheConfig{}, configErrorf("cache_size", cacheSize,
			"cache_size/(block_size*associativity) = %d must be a power of two", numSets)
	}

	return CacheConfig{
		CacheSize:     cacheSize,
		BlockSize:     blockSize,
		Associativity: associativity,
		Policy:        policy,

		numSets:  numSets,
		blockLog: uint64(bits.TrailingZeros64(blockSize)),
		setLog:   uint64(bits.TrailingZeros64(numSets)),
	}, nil
}

// NumSets returns the derived number of sets (cache_size / (block_size *
// associativity)).
func (c CacheConfig) NumSets() uint64 {
	return c.numSets
}

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
