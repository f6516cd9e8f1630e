package server

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/rxserver/rxserver/internal/resource"
)

// clientSpaceBits is the number of significant bits in a client resource id;
// the top 3 bits of a 32-bit XID are reserved by the server (spec.md §3,
// §4.9 "allocating non-overlapping (base, mask) ranges").
const clientSpaceBits = 29

// IDAllocator divides the 29-bit client resource space into equal
// power-of-two slots, one per connection ordinal, mirroring the scheme
// original_source/oldsrc/src/core/ids.rs describes (§12 supplemented
// feature) but left as policy by spec.md §4.9.
type IDAllocator struct {
	mu       sync.Mutex
	slotBits int
	capacity int
	inUse    map[int]bool
}

// NewIDAllocator sizes slots to the smallest power of two accommodating
// maxClients simultaneous connections plus ordinal 0, which holds the
// server's own well-known ids and is never handed to a client.
func NewIDAllocator(maxClients int) *IDAllocator {
	if maxClients < 1 {
		maxClients = 1
	}
	capacity := 1
	for capacity < maxClients+1 {
		capacity <<= 1
	}
	return &IDAllocator{
		capacity: capacity,
		slotBits: clientSpaceBits - bits.Len(uint(capacity-1)),
		inUse:    make(map[int]bool),
	}
}

// Acquire reserves the next free client ordinal (starting at 1) and returns
// its id range.
func (a *IDAllocator) Acquire() (resource.ClientRange, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ordinal := 1; ordinal < a.capacity; ordinal++ {
		if a.inUse[ordinal] {
			continue
		}
		a.inUse[ordinal] = true
		mask := uint32(1)<<uint(a.slotBits) - 1
		base := uint32(ordinal) << uint(a.slotBits)
		return resource.ClientRange{Base: base, Mask: mask}, ordinal, nil
	}
	return resource.ClientRange{}, 0, fmt.Errorf("server: id space exhausted, %d slots all in use", a.capacity)
}

// Release frees an ordinal at session close (spec.md §4.9 "mutated only at
// session setup and session close").
func (a *IDAllocator) Release(ordinal int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, ordinal)
}
