//go:build !multicore

package event

// dataSyncBarrier is a no-op when only one core touches the event.
func dataSyncBarrier() {}
