package choice

import "sync/atomic"

var idCounter uint64

// nextID returns a process-unique identifier for groups and elements.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
