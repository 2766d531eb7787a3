// SPDX-License-Identifier: GPL-2.0-or-later

package bspfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalData() *Data {
	return &Data{
		Entities:      "{\n\"classname\" \"worldspawn\"\n}\n",
		HullsPerModel: 4,
		Planes:        []Plane{{Normal: [3]float64{1, 0, 0}, Dist: 32}},
		Edges:         []Edge{{}},
		Models:        []Model{{}},
	}
}

type dirEntry struct {
	Ofs, Len int32
}

func readDir(t *testing.T, raw []byte) [numLumps]dirEntry {
	t.Helper()
	require.GreaterOrEqual(t, len(raw), 4+numLumps*8)
	var dir [numLumps]dirEntry
	r := bytes.NewReader(raw[4:])
	require.NoError(t, binary.Read(r, binary.LittleEndian, &dir))
	return dir
}

func TestNeedsExtended(t *testing.T) {
	d := minimalData()
	assert.False(t, d.NeedsExtended())

	d.Planes = make([]Plane, maxShortIndex+1)
	assert.True(t, d.NeedsExtended())

	d = minimalData()
	d.Vertexes = make([][3]float64, maxUShortIndex+1)
	assert.True(t, d.NeedsExtended())

	// coordinates past the int16 range force the wide node bounds
	d = minimalData()
	d.Nodes = []Node{{Maxs: [3]float64{40000, 0, 0}}}
	assert.True(t, d.NeedsExtended())

	d = minimalData()
	d.Leafs = []Leaf{{Mins: [3]float64{0, -70000, 0}}}
	assert.True(t, d.NeedsExtended())
}

func TestWriteHeaderLayout(t *testing.T) {
	d := minimalData()

	var buf bytes.Buffer
	format, err := Write(&buf, d, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, Format29, format)

	raw := buf.Bytes()
	version := int32(binary.LittleEndian.Uint32(raw[0:4]))
	assert.Equal(t, int32(Version29), version)

	dir := readDir(t, raw)
	headerSize := int32(4 + numLumps*8)
	assert.Equal(t, headerSize, dir[lumpEntities].Ofs)
	assert.Equal(t, int32(len(d.Entities)+1), dir[lumpEntities].Len)

	ents := raw[dir[lumpEntities].Ofs : dir[lumpEntities].Ofs+dir[lumpEntities].Len]
	assert.Equal(t, byte(0), ents[len(ents)-1], "entities lump is NUL terminated")
	assert.Equal(t, d.Entities, string(ents[:len(ents)-1]))

	for i, e := range dir {
		assert.Zero(t, e.Ofs&3, "lump %d offset unaligned", i)
	}

	// a 29 plane is three float32, a float32 dist and an int32 type
	assert.Equal(t, int32(20), dir[lumpPlanes].Len)
	pl := raw[dir[lumpPlanes].Ofs:]
	assert.Equal(t, float32(1), readF32(pl[0:]))
	assert.Equal(t, float32(32), readF32(pl[12:]))

	// the empty texture directory still carries its count
	assert.Equal(t, int32(4), dir[lumpTextures].Len)
}

func readF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func TestWriteNodeWidths(t *testing.T) {
	d := minimalData()
	d.Nodes = []Node{{
		PlaneNum: 0,
		Children: [2]int32{-1, -2},
		Mins:     [3]float64{-64, -64, -64},
		Maxs:     [3]float64{64, 64, 64},
	}}

	var buf bytes.Buffer
	_, err := Write(&buf, d, FormatAuto)
	require.NoError(t, err)
	dir := readDir(t, buf.Bytes())
	assert.Equal(t, int32(24), dir[lumpNodes].Len)

	var buf2 bytes.Buffer
	format, err := Write(&buf2, d, Format2)
	require.NoError(t, err)
	assert.Equal(t, Format2, format)
	dir2 := readDir(t, buf2.Bytes())
	assert.Equal(t, int32(44), dir2[lumpNodes].Len)

	version := int32(binary.LittleEndian.Uint32(buf2.Bytes()[0:4]))
	assert.Equal(t, int32(Version2), version)
}

func TestWritePinned29Overflow(t *testing.T) {
	d := minimalData()
	d.Planes = make([]Plane, maxShortIndex+1)

	var buf bytes.Buffer
	_, err := Write(&buf, d, Format29)
	assert.ErrorIs(t, err, ErrNoExtendedFormat)
}

func TestWriteBadHullCount(t *testing.T) {
	d := minimalData()
	d.HullsPerModel = 0
	var buf bytes.Buffer
	_, err := Write(&buf, d, FormatAuto)
	assert.Error(t, err)

	d.HullsPerModel = MaxModelHulls + 1
	_, err = Write(&buf, d, FormatAuto)
	assert.Error(t, err)
}

func TestWriteBSPXAppendix(t *testing.T) {
	d := minimalData()

	var plain bytes.Buffer
	_, err := Write(&plain, d, FormatAuto)
	require.NoError(t, err)

	d.BSPX = []BSPXLump{{Name: "LMSHIFT", Data: []byte{4, 4, 2}}}
	var buf bytes.Buffer
	_, err = Write(&buf, d, FormatAuto)
	require.NoError(t, err)

	raw := buf.Bytes()
	base := plain.Len()
	require.Greater(t, len(raw), base+8)
	assert.Equal(t, plain.Bytes(), raw[:base], "classic lumps unchanged")
	assert.Equal(t, "BSPX", string(raw[base:base+4]))
	count := int32(binary.LittleEndian.Uint32(raw[base+4 : base+8]))
	assert.Equal(t, int32(1), count)

	entry := raw[base+8:]
	assert.Equal(t, "LMSHIFT", string(bytes.TrimRight(entry[:bspxNameLen], "\x00")))
	dataOfs := int32(binary.LittleEndian.Uint32(entry[bspxNameLen:]))
	dataLen := int32(binary.LittleEndian.Uint32(entry[bspxNameLen+4:]))
	assert.Equal(t, int32(3), dataLen)
	assert.Equal(t, []byte{4, 4, 2}, raw[dataOfs:dataOfs+dataLen])
}

func TestSidecarBytes(t *testing.T) {
	assert.False(t, NeedsTexInfoSidecar(nil))
	assert.False(t, NeedsTexInfoSidecar([]uint32{0, 0}))
	assert.True(t, NeedsTexInfoSidecar([]uint32{0, 1}))

	var buf bytes.Buffer
	require.NoError(t, WriteTexInfoSidecar(&buf, []uint32{0, 0x10}))
	assert.Equal(t, []byte{
		2, 0, 0, 0,
		4, 0, 0, 0,
		0, 0, 0, 0,
		0x10, 0, 0, 0,
	}, buf.Bytes())
}
