package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// localSite identifies this process when elements are shared with peers.
var localSite = uuid.NewString()

// LocalSite returns the site id stamped on locally authored elements.
func LocalSite() string { return localSite }

// Clock hands out element indices. Indices only grow, also across undo,
// so an index is never reused within a history.
type Clock struct {
	counter atomic.Int64
}

// Tick advances the clock and returns the new value.
func (c *Clock) Tick() int {
	return int(c.counter.Add(1))
}

// Update moves the clock forward to at least seen.
func (c *Clock) Update(seen int) {
	for {
		cur := c.counter.Load()
		if int64(seen) <= cur || c.counter.CompareAndSwap(cur, int64(seen)) {
			return
		}
	}
}

// Now returns the last value handed out.
func (c *Clock) Now() int { return int(c.counter.Load()) }
