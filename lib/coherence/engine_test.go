// SPDX-License-Identifier: GPL-2.0-or-later

package coherence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachecoh/cachecoh/lib/coherence"
)

func mustConfig(t *testing.T, size, block, assoc uint64, policy coherence.PolicyKind) coherence.CacheConfig {
	t.Helper()
	cfg, err := coherence.NewCacheConfig(size, block, assoc, policy)
	require.NoError(t, err)
	return cfg
}

// S2: LRU eviction in a 2-way set.
func TestLRUEvictionTwoWay(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 512, 16, 2, coherence.PolicyLRU)
	c := coherence.NewCache(cfg, 0, nil)

	const a, b, cAddr = 0x0000, 0x0100, 0x0200

	assert.False(t, c.Read(a))
	assert.True(t, c.Read(a))
	assert.False(t, c.Read(b))
	assert.False(t, c.Read(cAddr))
	assert.False(t, c.Read(a))
	assert.True(t, c.Read(cAddr))
	assert.True(t, c.Read(a))
}

// S3: LFU eviction in a 2-way set.
func TestLFUEvictionTwoWay(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 512, 16, 2, coherence.PolicyLFU)
	c := coherence.NewCache(cfg, 0, nil)

	const a, b, cAddr = 0x0000, 0x0100, 0x0200

	assert.False(t, c.Read(a))
	assert.True(t, c.Read(a))
	assert.False(t, c.Read(b))
	assert.False(t, c.Read(cAddr))
	assert.True(t, c.Read(a))
	assert.True(t, c.Read(cAddr))
	assert.False(t, c.Read(b))
}

// S4: hit-rate counters.
func TestHitRateCounters(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 1024, 16, 4, coherence.PolicyLRU)
	c := coherence.NewCache(cfg, 0, nil)

	c.Read(0x1000)
	c.Read(0x1000)
	c.Read(0x2000)
	c.Read(0x2000)

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
}

// S5: conflict counter.
func TestConflictCounter(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 512, 16, 2, coherence.PolicyLRU)
	c := coherence.NewCache(cfg, 0, nil)

	c.Read(0x0000)
	c.Read(0x0100)
	c.Read(0x0200)

	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(3), stats.Misses)
	assert.Equal(t, uint64(1), stats.Conflicts)
	assert.InDelta(t, 1.0/3.0, stats.ConflictRate(), 1e-9)
}

// S6: MESI coherence across two caches on a bus.
func TestMESICoherenceTwoCaches(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 1024, 16, 4, coherence.PolicyLRU)
	bus := coherence.NewBus()
	c1 := coherence.NewCache(cfg, 0, bus)
	c2 := coherence.NewCache(cfg, 1, bus)
	bus.Attach(c1)
	bus.Attach(c2)

	const addr = 0x1000

	c1.Read(addr)
	line1, ok := c1.FindLine(addr)
	require.True(t, ok)
	assert.Equal(t, coherence.Exclusive, line1.State)

	c2.Read(addr)
	line2, ok := c2.FindLine(addr)
	require.True(t, ok)
	assert.Equal(t, coherence.Shared, line2.State)
	line1, ok = c1.FindLine(addr)
	require.True(t, ok)
	assert.Equal(t, coherence.Shared, line1.State)

	c1.Write(addr, 0xFF)
	line1, ok = c1.FindLine(addr)
	require.True(t, ok)
	assert.Equal(t, coherence.Modified, line1.State)
	line2, ok = c2.FindLine(addr) // invalidated lines are not found
	assert.False(t, ok)
	assert.Nil(t, line2)

	c2.Read(addr)
	line2, ok = c2.FindLine(addr)
	require.True(t, ok)
	assert.Equal(t, coherence.Shared, line2.State)
	line1, ok = c1.FindLine(addr)
	require.True(t, ok)
	assert.Equal(t, coherence.Shared, line1.State)
}

func TestReadTwiceIsQuietOnSecondHit(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 1024, 16, 4, coherence.PolicyLRU)
	c := coherence.NewCache(cfg, 0, nil)

	assert.False(t, c.Read(0x40))
	assert.True(t, c.Read(0x40))
}

func TestWriteThenReadIsModifiedDirty(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 1024, 16, 4, coherence.PolicyLRU)
	c := coherence.NewCache(cfg, 0, nil)

	c.Write(0x40, 0x01)
	assert.True(t, c.Read(0x40))

	line, ok := c.FindLine(0x40)
	require.True(t, ok)
	assert.Equal(t, coherence.Modified, line.State)
	assert.True(t, line.Dirty)
}

func TestSnoopIdempotence(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 1024, 16, 4, coherence.PolicyLRU)
	bus := coherence.NewBus()
	c1 := coherence.NewCache(cfg, 0, bus)
	c2 := coherence.NewCache(cfg, 1, bus)
	bus.Attach(c1)
	bus.Attach(c2)

	c2.Read(0x40)

	assert.True(t, c2.Snoop(0x40, coherence.BusRdX))
	assert.False(t, c2.Snoop(0x40, coherence.BusRdX))

	line, ok := c2.FindLine(0x40)
	assert.False(t, ok)
	_ = line
}

func TestSnoopUnknownAddressIsNotAnError(t *testing.T) {
	t.Parallel()
	cfg := mustConfig(t, 1024, 16, 4, coherence.PolicyLRU)
	c := coherence.NewCache(cfg, 0, nil)
	assert.False(t, c.Snoop(0xDEAD, coherence.BusRd))
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	all := []coherence.Stats{
		{Hits: 10, Misses: 10, Reads: 20, Writes: 0, Conflicts: 4},
		{Hits: 20, Misses: 10, Reads: 30, Writes: 0, Conflicts: 2},
	}
	agg := coherence.Aggregate(all)
	assert.Equal(t, uint64(15), agg.Hits)
	assert.Equal(t, uint64(10), agg.Misses)
	assert.Equal(t, uint64(3), agg.Conflicts)
	assert.InDelta(t, 0.6, agg.HitRate(), 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, coherence.Stats{}, coherence.Aggregate(nil))
}
