// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"math"

	"github.com/pkg/errors"

	"gobsp/game"
	"gobsp/math/vec"
)

// snapToInt pulls coordinates within zeroEpsilon of an integer onto it,
// so vertices shared between faces hash to the same key.
func snapToInt(v float64) float64 {
	r := math.Round(v)
	if math.Abs(v-r) < zeroEpsilon {
		return r
	}
	return v
}

func snapPoint(p vec.Vec3) [3]float64 {
	return [3]float64{snapToInt(p.X), snapToInt(p.Y), snapToInt(p.Z)}
}

// vertexNum returns the output number of a point, appending on first
// use.
func (ex *exporter) vertexNum(p vec.Vec3) int {
	key := snapPoint(p)
	if n, ok := ex.vertexLookup[key]; ok {
		return n
	}
	n := len(ex.out.Vertexes)
	ex.out.Vertexes = append(ex.out.Vertexes, key)
	ex.vertexLookup[key] = n
	return n
}

// edgeNum returns the signed surfedge value for the directed edge from
// v1 to v2. The reverse of an already emitted edge is reused once, as
// the negated number, which halves the edge lump for closed surfaces.
func (ex *exporter) edgeNum(v1, v2 int) int32 {
	if n, ok := ex.edgeLookup[[2]int{v2, v1}]; ok {
		delete(ex.edgeLookup, [2]int{v2, v1})
		return -int32(n)
	}
	n := len(ex.out.Edges)
	ex.out.Edges = append(ex.out.Edges, [2]uint32{uint32(v1), uint32(v2)})
	ex.edgeLookup[[2]int{v1, v2}] = n
	return int32(n)
}

// skipFace reports whether a drawn face stays out of the bsp. Hint
// faces always do, skip faces unless the compile keeps them.
func (ex *exporter) skipFace(f *Face) bool {
	flags := ex.md.TexInfos[f.Texinfo].Flags.Extended
	if flags&game.TexExHint != 0 {
		return true
	}
	if flags&game.TexExSkip != 0 && !ex.opts.IncludeSkip {
		return true
	}
	return false
}

func (ex *exporter) emitFace(f *Face) error {
	if len(ex.out.Faces) >= math.MaxInt32 {
		return errors.Wrap(ErrLimitExceeded, "faces")
	}
	f.OutputNumber = len(ex.out.Faces)

	verts := make([]int, len(f.W))
	for i, p := range f.W {
		verts[i] = ex.vertexNum(p)
	}

	firstEdge := len(ex.out.SurfEdges)
	for i := range verts {
		e := ex.edgeNum(verts[i], verts[(i+1)%len(verts)])
		ex.out.SurfEdges = append(ex.out.SurfEdges, e)
	}

	ex.out.Faces = append(ex.out.Faces, bspFace(f, firstEdge, len(verts), ex))
	return nil
}

// emitNodeFaces numbers and writes the drawn faces of one interior
// node, front side first.
func (ex *exporter) emitNodeFaces(node *Node) error {
	node.FirstFace = len(ex.out.Faces)
	for side := 0; side < 2; side++ {
		for f := node.Faces; f != nil; f = f.Next {
			if f.Planeside != side {
				continue
			}
			if len(f.W) == 0 {
				continue
			}
			if ex.skipFace(f) {
				f.OutputNumber = -1
				continue
			}
			if err := ex.emitFace(f); err != nil {
				return err
			}
		}
	}
	node.NumFaces = len(ex.out.Faces) - node.FirstFace
	return nil
}

// emitTreeFaces writes the drawn faces of a tree in node pre-order, so a
// model's faces occupy one contiguous run.
func (ex *exporter) emitTreeFaces(node *Node) error {
	if node.IsLeaf() {
		return nil
	}
	if err := ex.emitNodeFaces(node); err != nil {
		return err
	}
	if err := ex.emitTreeFaces(node.Children[0]); err != nil {
		return err
	}
	return ex.emitTreeFaces(node.Children[1])
}
