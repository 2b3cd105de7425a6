// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "runtime"

// Zero overwrites every byte of the slice. Use it on heap-allocated
// intermediates (compression scratch, derived keys in transit, freshly
// read passphrase bytes) the moment they have been copied into a
// Buffer or are otherwise done with.
//
// The KeepAlive fence stops the compiler from treating the wipe of a
// dead slice as a removable store. This does not defeat earlier copies
// the runtime may have made (stack growth, append reallocation); for
// material with a lifetime longer than one function, use Buffer.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
	runtime.KeepAlive(data)
}
