//go:build js && wasm

package lockfile

import "os"

// File locking is unavailable in WASM; the runtime is single-process, so
// the locks exist only to satisfy the portable API.

// FlockSharedNonBlock is a no-op in WASM.
func FlockSharedNonBlock(f *os.File) error {
	return nil
}

// FlockExclusiveNonBlock is a no-op in WASM.
func FlockExclusiveNonBlock(f *os.File) error {
	return nil
}

// FlockUnlock is a no-op in WASM.
func FlockUnlock(f *os.File) error {
	return nil
}
