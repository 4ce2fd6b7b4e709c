package internal

import "github.com/petermattis/goid"

// getGID returns the calling goroutine's id, the key used by the default
// (non-wasm) implicit netref registry in runtime_default.go.
func getGID() int64 {
	return goid.Get()
}
