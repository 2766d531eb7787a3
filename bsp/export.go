// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"

	"gobsp/bspfile"
	"gobsp/mapfile"
)

// exporter accumulates the output lumps. Planes and texinfos are
// numbered lazily, so pool entries no face references never reach the
// file.
type exporter struct {
	md   *mapfile.MapData
	opts *Options
	out  *bspfile.Data

	vertexLookup map[[3]float64]int
	edgeLookup   map[[2]int]int

	planeRemap   []int
	texinfoRemap []int

	// sidecar flags and lightmap shifts, parallel to the output
	// texinfo and face lumps
	texFlags    []uint32
	faceLmshift []byte

	modelVisLeafs int
}

func newExporter(md *mapfile.MapData, opts *Options) *exporter {
	ex := &exporter{
		md:           md,
		opts:         opts,
		out:          &bspfile.Data{},
		vertexLookup: map[[3]float64]int{},
		edgeLookup:   map[[2]int]int{},
		planeRemap:   make([]int, len(md.Planes)),
		texinfoRemap: make([]int, len(md.TexInfos)),
	}
	for i := range ex.planeRemap {
		ex.planeRemap[i] = -1
	}
	for i := range ex.texinfoRemap {
		ex.texinfoRemap[i] = -1
	}

	// edge 0 is reserved, leaf 0 is the shared solid leaf
	ex.out.Edges = append(ex.out.Edges, bspfile.Edge{})
	ex.out.Leafs = append(ex.out.Leafs, bspfile.Leaf{
		Contents: opts.Game.SolidContents().Native,
		VisOfs:   -1,
	})
	return ex
}

// planeNum maps a pool plane to its output number.
func (ex *exporter) planeNum(planenum int) int32 {
	if n := ex.planeRemap[planenum]; n >= 0 {
		return int32(n)
	}
	p := ex.md.Planes[planenum]
	n := len(ex.out.Planes)
	ex.out.Planes = append(ex.out.Planes, bspfile.Plane{
		Normal: p.Normal.Array(),
		Dist:   p.Dist,
		Type:   int32(p.Type),
	})
	ex.planeRemap[planenum] = n
	return int32(n)
}

// texinfoNum maps a pool texinfo to its output number. The extended
// flags land in the sidecar slice at the same index.
func (ex *exporter) texinfoNum(texinfo int) int32 {
	if n := ex.texinfoRemap[texinfo]; n >= 0 {
		return int32(n)
	}
	t := ex.md.TexInfos[texinfo]
	n := len(ex.out.TexInfos)
	ex.out.TexInfos = append(ex.out.TexInfos, bspfile.TexInfo{
		Vecs:   t.Vecs,
		Miptex: int32(t.Miptex),
		Flags:  t.Flags.Native,
	})
	ex.texFlags = append(ex.texFlags, t.Flags.Extended)
	ex.texinfoRemap[texinfo] = n
	return int32(n)
}

func bspFace(f *Face, firstEdge, numEdges int, ex *exporter) bspfile.Face {
	ex.faceLmshift = append(ex.faceLmshift, byte(f.Lmshift))
	return bspfile.Face{
		PlaneNum:  ex.planeNum(f.Planenum),
		Side:      int32(f.Planeside),
		FirstEdge: int32(firstEdge),
		NumEdges:  int32(numEdges),
		TexInfo:   ex.texinfoNum(f.Texinfo),
		Styles:    [4]byte{255, 255, 255, 255},
		LightOfs:  -1,
	}
}

// exportLeaf writes one leaf and returns the negative child value.
// Solid leaves all share leaf 0.
func (ex *exporter) exportLeaf(node *Node) int32 {
	g := ex.opts.Game
	nc := node.Contents
	if ex.opts.ContentHack && nc.IsDetailIllusionary() && g.IsLiquid(nc) {
		// older engines mishandle translucent submerged geometry
		nc = g.EmptyContents()
	}
	contents := g.RemapForExport(nc)
	if g.IsSolid(contents) {
		node.OutputNumber = 0
		return -1
	}

	n := len(ex.out.Leafs)
	node.OutputNumber = n
	leaf := bspfile.Leaf{
		Contents:         contents.Native,
		VisOfs:           -1,
		Mins:             node.Bounds.Min.Array(),
		Maxs:             node.Bounds.Max.Array(),
		FirstMarkSurface: uint32(len(ex.out.MarkSurfaces)),
	}

	for _, mf := range node.MarkFaces {
		for f := mf; f != nil; f = f.Original {
			if f.OutputNumber < 0 {
				continue
			}
			ex.out.MarkSurfaces = append(ex.out.MarkSurfaces, uint32(f.OutputNumber))
		}
	}
	leaf.NumMarkSurfaces = uint32(len(ex.out.MarkSurfaces)) - leaf.FirstMarkSurface

	ex.out.Leafs = append(ex.out.Leafs, leaf)
	ex.modelVisLeafs++
	return -int32(n + 1)
}

// exportDrawNodes writes the render tree and returns the root node
// number.
func (ex *exporter) exportDrawNodes(node *Node) int32 {
	n := len(ex.out.Nodes)
	node.OutputNumber = n
	ex.out.Nodes = append(ex.out.Nodes, bspfile.Node{
		PlaneNum:  ex.planeNum(node.Planenum),
		Mins:      node.Bounds.Min.Array(),
		Maxs:      node.Bounds.Max.Array(),
		FirstFace: uint32(node.FirstFace),
		NumFaces:  uint32(node.NumFaces),
	})

	var children [2]int32
	for i, child := range node.Children {
		if child.IsLeaf() {
			children[i] = ex.exportLeaf(child)
		} else {
			children[i] = ex.exportDrawNodes(child)
		}
	}
	ex.out.Nodes[n].Children = children
	return int32(n)
}

// exportClipNodes writes a collision hull tree. Leaf values are the
// negative contents of the volume.
func (ex *exporter) exportClipNodes(node *Node) int32 {
	if node.IsLeaf() {
		return ex.opts.Game.RemapForExport(node.Contents).Native
	}

	n := len(ex.out.ClipNodes)
	ex.out.ClipNodes = append(ex.out.ClipNodes, bspfile.ClipNode{
		PlaneNum: ex.planeNum(node.Planenum),
	})
	c0 := ex.exportClipNodes(node.Children[0])
	c1 := ex.exportClipNodes(node.Children[1])
	ex.out.ClipNodes[n].Children = [2]int32{c0, c1}
	return int32(n)
}

// exportEntity writes one model: faces and render tree from hull 0,
// one clip tree per further hull.
func (ex *exporter) exportEntity(e *Entity) error {
	e.FirstOutputFace = len(ex.out.Faces)
	if err := ex.emitTreeFaces(e.Trees[0].HeadNode); err != nil {
		return err
	}
	e.NumOutputFaces = len(ex.out.Faces) - e.FirstOutputFace

	model := bspfile.Model{
		FirstFace: int32(e.FirstOutputFace),
		NumFaces:  int32(e.NumOutputFaces),
	}
	// the written box drops the sideSpace padding of the tree bounds and
	// sits one further unit inside, one unit inside the brush extents
	if t := e.Trees[0]; !t.Bounds.Empty() {
		for i := 0; i < 3; i++ {
			model.Mins[i] = t.Bounds.Min.Idx(i) + sideSpace + 1
			model.Maxs[i] = t.Bounds.Max.Idx(i) - sideSpace - 1
		}
	}

	ex.modelVisLeafs = 0
	head := e.Trees[0].HeadNode
	if head.IsLeaf() {
		// an empty model still needs a root node
		n := len(ex.out.Nodes)
		ex.out.Nodes = append(ex.out.Nodes, bspfile.Node{
			Children: [2]int32{ex.exportLeaf(head), -1},
		})
		model.HeadNode[0] = int32(n)
	} else {
		model.HeadNode[0] = ex.exportDrawNodes(head)
	}
	model.VisLeafs = int32(ex.modelVisLeafs)

	for h := 1; h < len(e.Trees); h++ {
		model.HeadNode[h] = ex.exportClipNodes(e.Trees[h].HeadNode)
	}

	ex.out.Models = append(ex.out.Models, model)
	return nil
}

// finish fills the pool derived lumps and the BSPX appendix.
func (ex *exporter) finish() {
	for _, m := range ex.md.Miptex {
		ex.out.Textures = append(ex.out.Textures, bspfile.Texture{Name: m.Name})
	}

	for _, s := range ex.faceLmshift {
		if s != defaultLmshift {
			ex.out.BSPX = append(ex.out.BSPX, bspfile.BSPXLump{
				Name: "LMSHIFT",
				Data: append([]byte(nil), ex.faceLmshift...),
			})
			break
		}
	}

	slog.Info("export",
		"planes", len(ex.out.Planes),
		"texinfos", len(ex.out.TexInfos),
		"vertexes", len(ex.out.Vertexes),
		"faces", len(ex.out.Faces),
		"nodes", len(ex.out.Nodes),
		"leafs", len(ex.out.Leafs),
		"clipnodes", len(ex.out.ClipNodes),
		"edges", len(ex.out.Edges),
		"models", len(ex.out.Models))
}
