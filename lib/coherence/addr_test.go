// SPDX-License-Identifier: GPL-2.0-or-later

package coherence_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cachecoh/cachecoh/lib/coherence"
)

func TestDecomposeS1(t *testing.T) {
	t.Parallel()
	cfg, err := coherence.NewCacheConfig(1024, 16, 4, coherence.PolicyLRU)
	require.NoError(t, err)
	require.Equal(t, uint64(16), cfg.NumSets())

	tag, setIndex, offset := coherence.Decompose(0x12345678, cfg)
	require.Equal(t, uint64(0x123456), tag)
	require.Equal(t, uint64(7), setIndex)
	require.Equal(t, uint64(8), offset)
}

func TestNewCacheConfigValidation(t *testing.T) {
	t.Parallel()

	_, err := coherence.NewCacheConfig(0, 16, 4, coherence.PolicyLRU)
	require.Error(t, err)

	_, err = coherence.NewCacheConfig(1024, 0, 4, coherence.PolicyLRU)
	require.Error(t, err)

	_, err = coherence.NewCacheConfig(1024, 16, 0, coherence.PolicyLRU)
	require.Error(t, err)

	// block_size not a power of two
	_, err = coherence.NewCacheConfig(1024, 17, 4, coherence.PolicyLRU)
	require.Error(t, err)

	// not divisible by block_size*associativity
	_, err = coherence.NewCacheConfig(1000, 16, 4, coherence.PolicyLRU)
	require.Error(t, err)

	// num_sets not a power of two: 1536/(16*4) = 24
	_, err = coherence.NewCacheConfig(1536, 16, 4, coherence.PolicyLRU)
	require.Error(t, err)

	cfg, err := coherence.NewCacheConfig(1024, 16, 4, coherence.PolicyLRU)
	require.NoError(t, err)
	require.Equal(t, uint64(16), cfg.NumSets())
}
