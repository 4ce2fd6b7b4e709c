//go:build wasm

package internal

import "sync"

// wasm is effectively single-threaded (cooperative goroutines, no true
// parallelism), and goid does not support it; ambient binding degrades to a
// single process-wide slot guarded by a mutex instead of a per-goroutine map.
var (
	netrefMu  sync.Mutex
	netrefCur *NetRef
)

// CurrentNetRef returns the process-wide bound NetRef, or nil if none is
// bound.
func CurrentNetRef() *NetRef {
	netrefMu.Lock()
	defer netrefMu.Unlock()
	return netrefCur
}

// WithNetRef binds r for the duration of fn, restoring whatever was bound
// before on return.
func WithNetRef(r *NetRef, fn func()) {
	netrefMu.Lock()
	prev := netrefCur
	netrefCur = r
	netrefMu.Unlock()

	defer func() {
		netrefMu.Lock()
		netrefCur = prev
		netrefMu.Unlock()
	}()

	fn()
}
