// SPDX-License-Identifier: GPL-2.0-or-later

package bspfile

import "io"

const surfFlagsSize = 4

// NeedsTexInfoSidecar reports whether any texinfo carries flags the
// native format cannot hold.
func NeedsTexInfoSidecar(flags []uint32) bool {
	for _, f := range flags {
		if f != 0 {
			return true
		}
	}
	return false
}

// WriteTexInfoSidecar serializes the extended surface flags next to the
// bsp, one record per output texinfo in lump order.
func WriteTexInfoSidecar(w io.Writer, flags []uint32) error {
	var lw lumpWriter
	lw.put(uint32(len(flags)))
	lw.put(uint32(surfFlagsSize))
	for _, f := range flags {
		lw.put(f)
	}
	if lw.err != nil {
		return lw.err
	}
	_, err := w.Write(lw.buf.Bytes())
	return err
}
