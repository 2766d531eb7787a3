// SPDX-License-Identifier: GPL-2.0-or-later

package bspfile

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

const (
	maxShortIndex  = 32767
	maxUShortIndex = 65535
	texNameLen     = 16
	bspxNameLen    = 24
)

// NeedsExtended reports whether any lump overflows the 16 bit fields
// of the 29 format.
func (d *Data) NeedsExtended() bool {
	if len(d.Planes) > maxShortIndex ||
		len(d.Nodes) > maxShortIndex ||
		len(d.Leafs) > maxShortIndex ||
		len(d.ClipNodes) > maxShortIndex ||
		len(d.TexInfos) > maxShortIndex {
		return true
	}
	if len(d.Vertexes) > maxUShortIndex ||
		len(d.Faces) > maxUShortIndex ||
		len(d.MarkSurfaces) > maxUShortIndex {
		return true
	}
	for _, n := range d.Nodes {
		for i := 0; i < 3; i++ {
			if n.Mins[i] < math.MinInt16 || n.Maxs[i] > math.MaxInt16 {
				return true
			}
		}
	}
	for _, l := range d.Leafs {
		for i := 0; i < 3; i++ {
			if l.Mins[i] < math.MinInt16 || l.Maxs[i] > math.MaxInt16 {
				return true
			}
		}
	}
	return false
}

type lumpWriter struct {
	buf bytes.Buffer
	err error
}

func (lw *lumpWriter) put(v any) {
	if lw.err != nil {
		return
	}
	lw.err = binary.Write(&lw.buf, binary.LittleEndian, v)
}

func f32(v float64) float32 {
	if v > math32.MaxFloat32 {
		return math32.MaxFloat32
	}
	if v < -math32.MaxFloat32 {
		return -math32.MaxFloat32
	}
	return float32(v)
}

func (lw *lumpWriter) putVec32(v [3]float64) {
	for _, c := range v {
		lw.put(f32(c))
	}
}

func (lw *lumpWriter) putBounds16(mins, maxs [3]float64) {
	for _, c := range mins {
		lw.put(int16(math.Floor(c)))
	}
	for _, c := range maxs {
		lw.put(int16(math.Ceil(c)))
	}
}

func (lw *lumpWriter) putBounds32(mins, maxs [3]float64) {
	lw.putVec32(mins)
	lw.putVec32(maxs)
}

// Write serializes the bsp. With FormatAuto the 29 layout is used
// until a lump overflows, then everything upgrades to BSP2. Returns
// the format actually written.
func Write(w io.Writer, d *Data, format Format) (Format, error) {
	extended := d.NeedsExtended()
	switch format {
	case Format29:
		if extended {
			return 0, ErrNoExtendedFormat
		}
	case Format2:
		extended = true
	case FormatAuto:
		// keep the computed choice
	}

	lumps, err := d.buildLumps(extended)
	if err != nil {
		return 0, err
	}

	version := int32(Version29)
	if extended {
		version = Version2
	}

	// header: version plus 15 lump directory entries
	headerSize := 4 + numLumps*8
	var header lumpWriter
	header.put(version)
	ofs := headerSize
	for i := 0; i < numLumps; i++ {
		header.put(int32(ofs))
		header.put(int32(len(lumps[i])))
		ofs += len(lumps[i])
		ofs = (ofs + 3) &^ 3
	}
	if header.err != nil {
		return 0, header.err
	}

	bspxOfs := ofs
	if _, err := w.Write(header.buf.Bytes()); err != nil {
		return 0, err
	}
	written := headerSize
	var pad [4]byte
	for i := 0; i < numLumps; i++ {
		if _, err := w.Write(lumps[i]); err != nil {
			return 0, err
		}
		written += len(lumps[i])
		if n := (4 - written&3) & 3; n > 0 {
			if _, err := w.Write(pad[:n]); err != nil {
				return 0, err
			}
			written += n
		}
	}

	if len(d.BSPX) > 0 {
		if err := writeBSPX(w, d.BSPX, bspxOfs); err != nil {
			return 0, err
		}
	}

	if extended {
		return Format2, nil
	}
	return Format29, nil
}

func (d *Data) buildLumps(extended bool) ([numLumps][]byte, error) {
	var lumps [numLumps][]byte

	hulls := d.HullsPerModel
	if hulls <= 0 || hulls > MaxModelHulls {
		return lumps, errors.Errorf("bad hull count %d", d.HullsPerModel)
	}

	var lw lumpWriter

	take := func(idx int) {
		lumps[idx] = append([]byte(nil), lw.buf.Bytes()...)
		lw.buf.Reset()
	}

	// entities, NUL terminated
	lw.buf.WriteString(d.Entities)
	lw.buf.WriteByte(0)
	take(lumpEntities)

	for _, p := range d.Planes {
		lw.putVec32(p.Normal)
		lw.put(f32(p.Dist))
		lw.put(p.Type)
	}
	take(lumpPlanes)

	writeTextures(&lw, d.Textures)
	take(lumpTextures)

	for _, v := range d.Vertexes {
		lw.putVec32(v)
	}
	take(lumpVertexes)

	lw.buf.Write(d.Visibility)
	take(lumpVisibility)

	for _, n := range d.Nodes {
		lw.put(n.PlaneNum)
		if extended {
			lw.put(n.Children[0])
			lw.put(n.Children[1])
			lw.putBounds32(n.Mins, n.Maxs)
			lw.put(n.FirstFace)
			lw.put(n.NumFaces)
		} else {
			lw.put(int16(n.Children[0]))
			lw.put(int16(n.Children[1]))
			lw.putBounds16(n.Mins, n.Maxs)
			lw.put(uint16(n.FirstFace))
			lw.put(uint16(n.NumFaces))
		}
	}
	take(lumpNodes)

	for _, t := range d.TexInfos {
		for axis := 0; axis < 2; axis++ {
			for i := 0; i < 4; i++ {
				lw.put(f32(t.Vecs[axis][i]))
			}
		}
		lw.put(t.Miptex)
		lw.put(t.Flags)
	}
	take(lumpTexinfo)

	for _, f := range d.Faces {
		if extended {
			lw.put(f.PlaneNum)
			lw.put(f.Side)
			lw.put(f.FirstEdge)
			lw.put(f.NumEdges)
			lw.put(f.TexInfo)
		} else {
			lw.put(int16(f.PlaneNum))
			lw.put(int16(f.Side))
			lw.put(f.FirstEdge)
			lw.put(int16(f.NumEdges))
			lw.put(int16(f.TexInfo))
		}
		lw.put(f.Styles)
		lw.put(f.LightOfs)
	}
	take(lumpFaces)

	lw.buf.Write(d.Lighting)
	take(lumpLighting)

	for _, c := range d.ClipNodes {
		lw.put(c.PlaneNum)
		if extended {
			lw.put(c.Children[0])
			lw.put(c.Children[1])
		} else {
			lw.put(int16(c.Children[0]))
			lw.put(int16(c.Children[1]))
		}
	}
	take(lumpClipnodes)

	for _, l := range d.Leafs {
		lw.put(l.Contents)
		lw.put(l.VisOfs)
		if extended {
			lw.putBounds32(l.Mins, l.Maxs)
			lw.put(l.FirstMarkSurface)
			lw.put(l.NumMarkSurfaces)
		} else {
			lw.putBounds16(l.Mins, l.Maxs)
			lw.put(uint16(l.FirstMarkSurface))
			lw.put(uint16(l.NumMarkSurfaces))
		}
		lw.put(l.Ambient)
	}
	take(lumpLeafs)

	for _, m := range d.MarkSurfaces {
		if extended {
			lw.put(m)
		} else {
			lw.put(uint16(m))
		}
	}
	take(lumpMarksurfaces)

	for _, e := range d.Edges {
		if extended {
			lw.put(e[0])
			lw.put(e[1])
		} else {
			lw.put(uint16(e[0]))
			lw.put(uint16(e[1]))
		}
	}
	take(lumpEdges)

	for _, s := range d.SurfEdges {
		lw.put(s)
	}
	take(lumpSurfedges)

	for _, m := range d.Models {
		lw.putVec32(m.Mins)
		lw.putVec32(m.Maxs)
		lw.putVec32(m.Origin)
		for h := 0; h < hulls; h++ {
			lw.put(m.HeadNode[h])
		}
		lw.put(m.VisLeafs)
		lw.put(m.FirstFace)
		lw.put(m.NumFaces)
	}
	take(lumpModels)

	return lumps, lw.err
}

// writeTextures emits the miptex directory with names only. The data
// offsets stay zero so engines fall back to external textures.
func writeTextures(lw *lumpWriter, textures []Texture) {
	lw.put(int32(len(textures)))
	dirSize := 4 + 4*len(textures)
	for i := range textures {
		lw.put(int32(dirSize + i*40))
	}
	for _, t := range textures {
		var name [texNameLen]byte
		copy(name[:], t.Name)
		lw.put(name)
		lw.put(uint32(16)) // width
		lw.put(uint32(16)) // height
		var offsets [4]uint32
		lw.put(offsets)
	}
}

// writeBSPX appends the BSPX extension block after the classic lumps.
func writeBSPX(w io.Writer, lumps []BSPXLump, startOfs int) error {
	var lw lumpWriter
	lw.buf.WriteString("BSPX")
	lw.put(int32(len(lumps)))

	dataOfs := startOfs + 8 + len(lumps)*(bspxNameLen+8)
	for _, l := range lumps {
		var name [bspxNameLen]byte
		copy(name[:], l.Name)
		lw.put(name)
		lw.put(int32(dataOfs))
		lw.put(int32(len(l.Data)))
		dataOfs += (len(l.Data) + 3) &^ 3
	}
	for _, l := range lumps {
		lw.buf.Write(l.Data)
		if n := (4 - len(l.Data)&3) & 3; n > 0 {
			var pad [4]byte
			lw.buf.Write(pad[:n])
		}
	}
	if lw.err != nil {
		return lw.err
	}
	_, err := w.Write(lw.buf.Bytes())
	return err
}
