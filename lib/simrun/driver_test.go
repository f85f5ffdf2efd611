// SPDX-License-Identifier: GPL-2.0-or-later

package simrun_test

import (
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachecoh/cachecoh/lib/coherence"
	"github.com/cachecoh/cachecoh/lib/simrun"
	"github.com/cachecoh/cachecoh/lib/trace"
)

func TestDriverRunAccumulatesStats(t *testing.T) {
	t.Parallel()
	cfg, err := coherence.NewCacheConfig(1024, 16, 4, coherence.PolicyLRU)
	require.NoError(t, err)

	gen := trace.NewGenerator(trace.Config{
		Pattern:       trace.Random,
		AddressRange:  4096,
		WriteFraction: 0.25,
	}, 123)

	d := simrun.NewDriver(cfg, 4, gen, 123)
	ctx := dlog.NewTestContext(t, false)
	d.Run(ctx, 1000)

	all := d.Stats()
	require.Len(t, all, 4)

	var totalAccesses uint64
	for _, s := range all {
		totalAccesses += s.Hits + s.Misses
		assert.Equal(t, s.Reads+s.Writes, s.Hits+s.Misses)
	}
	assert.Equal(t, uint64(1000), totalAccesses)

	agg := coherence.Aggregate(all)
	assert.LessOrEqual(t, agg.Hits+agg.Misses, totalAccesses)
}

func TestDriverDeterministicGivenSameSeed(t *testing.T) {
	t.Parallel()
	cfg, err := coherence.NewCacheConfig(1024, 16, 4, coherence.PolicyLRU)
	require.NoError(t, err)
	ctx := dlog.NewTestContext(t, false)

	run := func(seed uint64) []coherence.Stats {
		gen := trace.NewGenerator(trace.Config{
			Pattern:          trace.Localized,
			AddressRange:     1 << 16,
			WorkingSetSize:   1024,
			WorkingSetPeriod: 50,
			WriteFraction:    0.25,
		}, seed)
		d := simrun.NewDriver(cfg, 2, gen, seed)
		d.Run(ctx, 500)
		return d.Stats()
	}

	a := run(7)
	b := run(7)
	assert.Equal(t, a, b)
}
