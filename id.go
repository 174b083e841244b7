package reactor

import "sync/atomic"

// globalIDCounter is the source of unique IDs for every cell and callback.
// A single process-wide counter keeps IDs unique across all Reactor
// instances, not just within one.
var globalIDCounter uint64

// nextID returns the next unique ID.
// IDs are monotonically increasing, start at 1, and are never reused; zero
// is reserved so that zero-valued ID structs name nothing.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
