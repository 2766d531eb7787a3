// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsp turns parsed map data into a compiled tree: brush face
// extraction, CSG, solid partitioning, portalization, t junction
// healing and face emission.
package bsp

import (
	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
	"gobsp/winding"
)

const (
	// planenumLeaf tags leaf nodes.
	planenumLeaf = -1

	// sideSpace pads the headnode bounds so portals at the world edge
	// keep area.
	sideSpace = 24

	// defaultLmshift is the engine's native 16 unit lightmap scale.
	defaultLmshift = 4
)

// Face is a polygon on a plane, carried through CSG and the tree
// build. Contents is indexed by the face relative side: 0 is the
// volume the normal points into, 1 the volume behind.
type Face struct {
	Next *Face

	Planenum  int
	Planeside int

	Texinfo int
	W       winding.Winding

	Contents [2]game.Contents
	Lmshift  int

	// Original points from a node face back to the surface face that
	// spawned it. Marksurfaces follow the chain.
	Original *Face

	OutputNumber int

	LineNum int
}

// NewFaceFromFace copies the plane and texture fields but not the
// winding.
func NewFaceFromFace(f *Face) *Face {
	return &Face{
		Planenum:     f.Planenum,
		Planeside:    f.Planeside,
		Texinfo:      f.Texinfo,
		Contents:     f.Contents,
		Lmshift:      f.Lmshift,
		Original:     f.Original,
		OutputNumber: -1,
		LineNum:      f.LineNum,
	}
}

// Surface groups all faces on one plane. The partitioner picks
// surfaces, not faces.
type Surface struct {
	Next     *Surface
	Planenum int
	Faces    *Face
	Bounds   vec.Bounds

	// OnNode is set once a node has used this surface's plane.
	OnNode bool

	// HasStruct notes at least one non detail face, which makes the
	// surface eligible as a structural partition.
	HasStruct bool
}

// CalcBounds refreshes the surface bounds from its faces.
func (s *Surface) CalcBounds() {
	s.Bounds = vec.EmptyBounds()
	for f := s.Faces; f != nil; f = f.Next {
		for _, p := range f.W {
			s.Bounds.AddPoint(p)
		}
	}
}

// Brush is a convex volume with its faces already built for one hull.
type Brush struct {
	Next     *Brush
	Contents game.Contents
	Faces    *Face
	Bounds   vec.Bounds
	Lmshift  int
	LineNum  int
}

// Node is a tree node. Leaf nodes have Planenum set to planenumLeaf
// and carry contents and marksurfaces; interior nodes carry the split
// plane and per node faces.
type Node struct {
	Planenum int
	Children [2]*Node
	Bounds   vec.Bounds

	// interior
	Faces *Face

	// DetailSeparator marks nodes whose partition came from a detail
	// only surface. Portalization stops at them.
	DetailSeparator bool

	// leaf
	Contents  game.Contents
	MarkFaces []*Face

	Portals *Portal

	VisLeafNum int
	VisCluster int

	// set during face emission
	FirstFace int
	NumFaces  int

	OutputNumber int
}

// IsLeaf reports whether the node terminates the tree.
func (n *Node) IsLeaf() bool { return n.Planenum == planenumLeaf }

// Portal joins two leaves or tree cells. Next is indexed by which end
// of Nodes the list belongs to.
type Portal struct {
	Planenum int
	Nodes    [2]*Node
	Next     [2]*Portal
	Winding  winding.Winding
}

// Tree is one compiled model: the root plus an outside node all
// boundary portals lead to.
type Tree struct {
	HeadNode    *Node
	Bounds      vec.Bounds
	OutsideNode Node
}

// Entity wraps a parsed map entity with its compile state.
type Entity struct {
	Map *mapfile.Entity

	// Brush lists per priority class, lowest to highest. Sorting puts
	// stronger contents later so CSG clips weaker brushes against
	// them.
	Brushes *Brush

	Bounds vec.Bounds

	// rotate offset subtracted from brush geometry
	Origin vec.Vec3

	Lmshift int

	ModelNumber int

	// per hull trees, index 0 is the render hull
	Trees []*Tree

	FirstOutputFace int
	NumOutputFaces  int
}
