//go:build multicore

package event

import "sync/atomic"

var barrier atomic.Uint32

// dataSyncBarrier orders the flag update before anything that follows it, so
// a second core that only signals the event sees a consistent state.
func dataSyncBarrier() {
	barrier.Add(1)
}
