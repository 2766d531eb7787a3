// SPDX-License-Identifier: GPL-2.0-or-later

// Package bspfile holds the in-memory form of a compiled bsp and its
// little endian serialisation, in the original 29 format or the
// extended BSP2 format when a lump outgrows the 16 bit fields.
package bspfile

import "github.com/pkg/errors"

// Version29 is the classic format with 16 bit indices.
const Version29 = 29

// Version2 is the BSP2 magic, read as a little endian int32.
const Version2 = 'B' | 'S'<<8 | 'P'<<16 | '2'<<24

// Format selects the on-disk layout.
type Format int

const (
	// FormatAuto writes 29 and upgrades to BSP2 when a lump overflows.
	FormatAuto Format = iota
	Format29
	Format2
)

// ErrNoExtendedFormat reports a map that exceeds the fixed 29 format
// limits while the caller pinned that format.
var ErrNoExtendedFormat = errors.New("map exceeds bsp29 format limits")

const (
	lumpEntities = iota
	lumpPlanes
	lumpTextures
	lumpVertexes
	lumpVisibility
	lumpNodes
	lumpTexinfo
	lumpFaces
	lumpLighting
	lumpClipnodes
	lumpLeafs
	lumpMarksurfaces
	lumpEdges
	lumpSurfedges
	lumpModels
	numLumps
)

type Plane struct {
	Normal [3]float64
	Dist   float64
	Type   int32
}

// Texture is one entry of the texture lump. The compiler writes names
// only, with zero data offsets; no image data is embedded.
type Texture struct {
	Name string
}

type TexInfo struct {
	Vecs   [2][4]float64
	Miptex int32
	Flags  int32
}

type Node struct {
	PlaneNum  int32
	Children  [2]int32
	Mins      [3]float64
	Maxs      [3]float64
	FirstFace uint32
	NumFaces  uint32
}

type Leaf struct {
	Contents         int32
	VisOfs           int32
	Mins             [3]float64
	Maxs             [3]float64
	FirstMarkSurface uint32
	NumMarkSurfaces  uint32
	Ambient          [4]byte
}

type ClipNode struct {
	PlaneNum int32
	// negative children are contents values
	Children [2]int32
}

type Face struct {
	PlaneNum  int32
	Side      int32
	FirstEdge int32
	NumEdges  int32
	TexInfo   int32
	Styles    [4]byte
	LightOfs  int32
}

// Edge joins two vertices. Edge 0 is reserved, faces reference edges
// by signed surfedge index.
type Edge [2]uint32

// MaxModelHulls is the headnode array size of Hexen II models, the
// larger of the supported games.
const MaxModelHulls = 8

type Model struct {
	Mins      [3]float64
	Maxs      [3]float64
	Origin    [3]float64
	HeadNode  [MaxModelHulls]int32
	VisLeafs  int32
	FirstFace int32
	NumFaces  int32
}

// BSPXLump is one entry of the BSPX extension directory appended after
// the classic lumps.
type BSPXLump struct {
	Name string
	Data []byte
}

// Data is a complete bsp in memory, indices resolved, byte order and
// field widths not yet applied.
type Data struct {
	Entities     string
	Planes       []Plane
	Textures     []Texture
	Vertexes     [][3]float64
	Visibility   []byte
	Nodes        []Node
	TexInfos     []TexInfo
	Faces        []Face
	Lighting     []byte
	ClipNodes    []ClipNode
	Leafs        []Leaf
	MarkSurfaces []uint32
	Edges        []Edge
	SurfEdges    []int32
	Models       []Model

	// HullsPerModel is 4 for Quake and 8 for Hexen II.
	HullsPerModel int

	BSPX []BSPXLump
}
