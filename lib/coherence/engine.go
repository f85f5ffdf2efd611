// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

// Cache is a single-core, set-associative cache with a pluggable
// replacement policy and MESI coherence maintained over an attached Bus.
// All operations are synchronous and run to completion before returning;
// there is no internal concurrency.
type Cache struct {
	id     int
	config CacheConfig
	sets   []CacheSet
	policy Policy
	stats  Stats
	bus    *Bus
	clock  uint64
}

var _ snoopable = (*Cache)(nil)

// NewCache constructs a cache with the given config and core id. bus may
// be nil, in which case misses never broadcast and are installed as if no
// peer ever holds the block (Exclusive on read miss, Modified on write
// miss). The cache is not automatically attached to bus; call Bus.Attach
// separately so construction and bus membership remain distinct steps.
func NewCache(config CacheConfig, id int, bus *Bus) *Cache {
	sets := make([]CacheSet, config.NumSets())
	for i := range sets {
		sets[i] = newCacheSet(config.Associativity)
	}
	return &Cache{
		id:     id,
		config: config,
		sets:   sets,
		policy: newPolicy(config.Policy),
		bus:    bus,
	}
}

// ID returns the core id this cache was constructed with.
func (c *Cache) ID() int { return c.id }

func (c *Cache) busID() int { return c.id }

// Config returns the cache's immutable configuration.
func (c *Cache) Config() CacheConfig { return c.config }

// Stats returns a read-only snapshot of the cache's counters.
func (c *Cache) Stats() Stats { return c.stats }

// FindLine returns the line currently holding address, if any. It performs
// no mutation and is intended for assertions and tests.
func (c *Cache) FindLine(address uint64) (*CacheLine, bool) {
	tag, setIndex, _ := Decompose(address, c.config)
	set := &c.sets[setIndex]
	way, ok := c.lookup(set, tag)
	if !ok {
		return nil, false
	}
	return set.Line(way), true
}

func (c *Cache) lookup(set *CacheSet, tag uint64) (wayIndex uint64, ok bool) {
	for i := range set.Lines {
		if set.Lines[i].Valid && set.Lines[i].Tag == tag {
			return uint64(i), true
		}
	}
	return 0, false
}

// Occupancy returns, for each set that holds at least one valid line, the
// number of valid lines in that set. Sets with no valid lines are omitted,
// so the map's keys are not contiguous; callers that want a deterministic
// ordering should sort them rather than range over the map directly.
func (c *Cache) Occupancy() map[uint64]int {
	occ := make(map[uint64]int)
	for i := range c.sets {
		n := 0
		for j := range c.sets[i].Lines {
			if c.sets[i].Lines[j].Valid {
				n++
			}
		}
		if n > 0 {
			occ[uint64(i)] = n
		}
	}
	return occ
}

// touch bumps the generic bookkeeping fields and informs the policy index
// of a reference, whether from a hit or right after an install.
func (c *Cache) touch(setIndex, wayIndex uint64) {
	c.clock++
	line := c.sets[setIndex].Line(wayIndex)
	line.AccessCount++
	line.LastAccessTime = c.clock
	c.policy.onTouch(setIndex, wayIndex)
}

// evictForInstall removes the victim from the policy index and resets its
// generic bookkeeping to the fresh-install value, before its identity is
// reassigned to the incoming tag.
func (c *Cache) evictForInstall(setIndex, wayIndex uint64) {
	c.policy.onEvict(setIndex, wayIndex)
	line := c.sets[setIndex].Line(wayIndex)
	line.AccessCount = 0
	line.LastAccessTime = 0
}

// Read performs a load of address, returning true on a hit.
func (c *Cache) Read(address uint64) bool {
	c.stats.Reads++
	tag, setIndex, _ := Decompose(address, c.config)
	set := &c.sets[setIndex]

	if way, ok := c.lookup(set, tag); ok {
		c.stats.Hits++
		c.touch(setIndex, way)
		return true
	}

	c.stats.Misses++
	victim, conflict := c.policy.selectVictim(set, setIndex)
	if conflict {
		c.stats.Conflicts++
	}
	c.evictForInstall(setIndex, victim)

	shared := false
	if c.bus != nil {
		shared = c.bus.Broadcast(c.id, address, BusRd)
	}

	line := set.Line(victim)
	line.Valid = true
	line.Tag = tag
	line.Dirty = false
	if shared {
		line.State = Shared
	} else {
		line.State = Exclusive
	}
	c.touch(setIndex, victim)
	return false
}

// Write performs a store of address, returning true on a hit. value is
// accepted for interface parity with the simulated instruction stream but
// is never stored: this cache models coherence metadata, not data
// contents.
func (c *Cache) Write(address uint64, value byte) bool {
	_ = value
	c.stats.Writes++
	tag, setIndex, _ := Decompose(address, c.config)
	set := &c.sets[setIndex]

	if way, ok := c.lookup(set, tag); ok {
		c.stats.Hits++
		line := set.Line(way)
		switch line.State {
		case Shared:
			if c.bus != nil {
				c.bus.Broadcast(c.id, address, BusRdX)
			}
			line.State = Modified
		case Exclusive:
			line.State = Modified
		case Modified:
			// already exclusively owned and dirty; no transition
		}
		line.Dirty = true
		c.touch(setIndex, way)
		return true
	}

	c.stats.Misses++
	victim, conflict := c.policy.selectVictim(set, setIndex)
	if conflict {
		c.stats.Conflicts++
	}
	c.evictForInstall(setIndex, victim)

	if c.bus != nil {
		c.bus.Broadcast(c.id, address, BusRdX)
	}

	line := set.Line(victim)
	line.Valid = true
	line.Tag = tag
	line.Dirty = true
	line.State = Modified
	c.touch(setIndex, victim)
	return false
}

// Snoop is called by the Bus on every peer cache except the issuer when a
// bus event is broadcast. It returns whether the block was present before
// the event.
func (c *Cache) Snoop(address uint64, event BusEvent) bool {
	tag, setIndex, _ := Decompose(address, c.config)
	set := &c.sets[setIndex]
	way, ok := c.lookup(set, tag)
	if !ok {
		return false
	}
	line := set.Line(way)

	switch event {
	case BusRd:
		switch line.State {
		case Modified:
			line.Dirty = false
			line.State = Shared
		case Exclusive:
			line.State = Shared
		case Shared:
			// unchanged
		}
		return true
	case BusRdX:
		// Unconditional invalidate. The replacement index is not
		// updated here: selectVictim's invalid-line fast path will
		// reclaim this way, and the install path's onEvict call then
		// drops its stale index entry.
		line.Valid = false
		line.State = Invalid
		line.Dirty = false
		return true
	default:
		panic("coherence: unknown bus event")
	}
}
