// SPDX-License-Identifier: GPL-2.0-or-later

// Package trace generates synthetic (core, address, is_write) access
// streams for driving a coherence simulation. It supplies the triples the
// driver contract expects but takes no part in the cache engine itself.
package trace

import (
	"math/rand/v2"

	"github.com/cachecoh/cachecoh/lib/containers"
)

// Pattern names the shape of the address stream a Generator produces.
type Pattern int

const (
	// Random draws addresses uniformly over [0, AddressRange).
	Random Pattern = iota
	// Sequential steps through addresses block_size apart, wrapping at
	// AddressRange.
	Sequential
	// Localized spends 90% of accesses within the current working-set
	// window and 10% uniformly over the full range, to model temporal
	// and spatial locality.
	Localized
)

func (p Pattern) String() string {
	switch p {
	case Random:
		return "random"
	case Sequential:
		return "sequential"
	case Localized:
		return "localized"
	default:
		return "unknown"
	}
}

// Access is one (address, is_write) pair a Generator emits; the core
// (which cache to apply it to) is chosen by the driver, not the
// generator.
type Access struct {
	Address uint64
	IsWrite bool
}

// Config parameterizes a Generator.
type Config struct {
	Pattern Pattern

	// AddressRange bounds every generated address to [0, AddressRange).
	AddressRange uint64

	// BlockSize is the per-step stride Sequential advances by.
	BlockSize uint64

	// WorkingSetSize sizes the working-set window Localized samples
	// within (cache_size worth of addresses).
	WorkingSetSize uint64

	// WorkingSetPeriod is, for Localized, how many accesses elapse
	// before the working-set window advances to the next
	// WorkingSetSize-sized region.
	WorkingSetPeriod uint64

	// WriteFraction is the fraction (out of 1.0) of accesses that are
	// writes; the original simulator fixed this at one in four.
	WriteFraction float64
}

// Generator produces the i'th access in a stream deterministically from a
// seeded source, so that a simulation run is reproducible given the same
// seed.
type Generator struct {
	cfg Config
	rng *rand.Rand

	// windowMemo caches the deterministic base address computed for
	// each working-set window index, so repeated in-window accesses
	// during the same period reuse the same base instead of
	// recomputing the arithmetic on every call.
	windowMemo *containers.LRUCache[uint64, uint64]
}

// NewGenerator builds a Generator seeded deterministically from seed.
func NewGenerator(cfg Config, seed uint64) *Generator {
	return &Generator{
		cfg:        cfg,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		windowMemo: containers.NewLRUCache[uint64, uint64](64),
	}
}

// Next returns the index'th access in the stream. index is the ordinal
// position of the access, used by Sequential for its step and by
// Localized to derive the current working-set window.
func (g *Generator) Next(index uint64) Access {
	return Access{
		Address: g.address(index),
		IsWrite: g.rng.Float64() < g.cfg.WriteFraction,
	}
}

func (g *Generator) address(index uint64) uint64 {
	switch g.cfg.Pattern {
	case Sequential:
		return (index * g.cfg.BlockSize) % g.cfg.AddressRange
	case Localized:
		return g.localizedAddress(index)
	default:
		return g.uniform(g.cfg.AddressRange)
	}
}

func (g *Generator) uniform(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return g.rng.Uint64() % n
}

func (g *Generator) localizedAddress(index uint64) uint64 {
	if g.rng.Float64() >= 0.9 {
		return g.uniform(g.cfg.AddressRange)
	}
	period := g.cfg.WorkingSetPeriod
	if period == 0 {
		period = 1
	}
	windowIndex := index / period
	base := g.windowMemo.GetOrElse(windowIndex, func() uint64 {
		return (windowIndex * g.cfg.WorkingSetSize) % g.cfg.AddressRange
	})
	offset := g.uniform(g.cfg.WorkingSetSize)
	return (base + offset) % g.cfg.AddressRange
}
