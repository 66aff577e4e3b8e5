//go:build wasm

package internal

// goid has no wasm port, affinity is not enforced there.
func getGID() int64 {
	return 0
}
