package runtime

import (
	"strconv"
	"sync/atomic"
)

// idAllocator hands out prefixed identifiers. Identifiers are never reused
// within a Runtime.
type idAllocator struct {
	prefix string
	next   atomic.Uint64
}

func (a *idAllocator) allocate() string {
	return a.prefix + strconv.FormatUint(a.next.Add(1), 10)
}

// listenerIDs backs reactive.Listener identity for component instances.
// Process-global so instances from independent runtimes never collide in a
// shared reactive batch queue.
var listenerIDs atomic.Uint64
