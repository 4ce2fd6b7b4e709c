//go:build !wasm

package internal

import "sync"

var netrefs sync.Map // goroutine id -> *NetRef

// CurrentNetRef returns the NetRef bound to the calling goroutine by
// WithNetRef, or nil if none is bound.
func CurrentNetRef() *NetRef {
	gid := getGID()
	if r, ok := netrefs.Load(gid); ok {
		return r.(*NetRef)
	}
	return nil
}

// WithNetRef binds r as the calling goroutine's implicit netref for the
// duration of fn, restoring whatever was bound before on return.
func WithNetRef(r *NetRef, fn func()) {
	gid := getGID()

	prev, had := netrefs.Load(gid)
	netrefs.Store(gid, r)
	defer func() {
		if had {
			netrefs.Store(gid, prev)
		} else {
			netrefs.Delete(gid)
		}
	}()

	fn()
}
