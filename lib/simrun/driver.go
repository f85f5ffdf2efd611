// SPDX-License-Identifier: GPL-2.0-or-later

// Package simrun is the glue the driver contract describes: it constructs
// a bus and N caches, feeds a trace generator's accesses to the right
// cache, and harvests statistics at the end. None of this lives in
// lib/coherence, since the core engine only needs read/write/snoop/stats.
package simrun

import (
	"context"
	"math/rand/v2"

	"github.com/datawire/dlib/dlog"

	"github.com/cachecoh/cachecoh/lib/coherence"
	"github.com/cachecoh/cachecoh/lib/trace"
)

// Driver owns a bus, one cache per core, and the trace generator feeding
// them. Core selection per access is random, mirroring the original
// simulator's core_dist: multi-core is simulated by picking which cache
// sees the next access, not by true concurrency.
type Driver struct {
	caches []*coherence.Cache
	bus    *coherence.Bus
	gen    *trace.Generator
	rng    *rand.Rand
}

// NewDriver constructs a bus, attaches numCores caches built from cfg, and
// wraps gen for generating the access stream. seed determines this
// driver's core selection; gen's randomness comes from the seed gen was
// built with, so a run is reproducible end to end given the same seeds.
func NewDriver(cfg coherence.CacheConfig, numCores int, gen *trace.Generator, seed uint64) *Driver {
	bus := coherence.NewBus()
	caches := make([]*coherence.Cache, numCores)
	for i := 0; i < numCores; i++ {
		c := coherence.NewCache(cfg, i, bus)
		bus.Attach(c)
		caches[i] = c
	}
	return &Driver{
		caches: caches,
		bus:    bus,
		gen:    gen,
		rng:    rand.New(rand.NewPCG(seed, seed^0xd1b54a32d192ed03)),
	}
}

// Caches returns the driver's per-core caches, in core-id order.
func (d *Driver) Caches() []*coherence.Cache {
	return d.caches
}

// Run feeds numAccesses generated accesses through the caches, logging
// each access's outcome at trace level.
func (d *Driver) Run(ctx context.Context, numAccesses uint64) {
	for i := uint64(0); i < numAccesses; i++ {
		access := d.gen.Next(i)
		coreID := int(d.rng.Uint64() % uint64(len(d.caches)))
		cache := d.caches[coreID]

		var hit bool
		if access.IsWrite {
			hit = cache.Write(access.Address, 0)
		} else {
			hit = cache.Read(access.Address)
		}

		log := dlog.WithField(ctx, "core", coreID)
		log = dlog.WithField(log, "address", access.Address)
		event := "read"
		if access.IsWrite {
			event = "write"
		}
		log = dlog.WithField(log, "event", event)
		if hit {
			dlog.Trace(log, "hit")
		} else {
			dlog.Trace(log, "miss")
		}
	}
}

// Stats returns a per-core snapshot, in core-id order.
func (d *Driver) Stats() []coherence.Stats {
	stats := make([]coherence.Stats, len(d.caches))
	for i, c := range d.caches {
		stats[i] = c.Stats()
	}
	return stats
}
