// SPDX-License-Identifier: GPL-2.0-or-later

package coherence

// snoopable is the narrow surface Bus needs from a Cache to broadcast to
// it, kept separate from Cache's public surface so Bus doesn't need to
// know anything about cache internals beyond id and Snoop.
type snoopable interface {
	busID() int
	Snoop(address uint64, event BusEvent) bool
}

// Bus is a pure dispatcher: it holds an ordered list of attached caches and
// has no mutable state of its own across calls.
type Bus struct {
	peers []snoopable
}

// NewBus returns an empty Bus with no attached caches.
func NewBus() *Bus {
	return &Bus{}
}

// Attach appends a cache to the bus's peer list, in the order caches join
// the simulation. Attach order is what Broadcast iterates in.
func (b *Bus) Attach(c *Cache) {
	b.peers = append(b.peers, c)
}

// Broadcast delivers event for address to every attached cache except the
// one with id senderID, in attach order, and returns the disjunction of
// their Snoop results.
func (b *Bus) Broadcast(senderID int, address uint64, event BusEvent) bool {
	shared := false
	for _, peer := range b.peers {
		if peer.busID() == senderID {
			continue
		}
		if peer.Snoop(address, event) {
			shared = true
		}
	}
	return shared
}
