// Package memzero wipes secrets held in byte slices.
package memzero

import "runtime"

// Zero overwrites b with zeros. It is best effort: copies made before the
// call (by append growth or the garbage collector) are not reached.
//
//go:noinline
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
