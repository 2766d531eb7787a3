// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"
	"math"

	"gobsp/math/vec"
	"gobsp/winding"
)

const (
	equalEpsilon = 0.0001
	tjuncEpsilon = 0.01
)

// wEdge is the canonical line an edge lies on, with every vertex the
// map places on that line, ordered by the parameter along the
// direction.
type wEdge struct {
	origin vec.Vec3
	dir    vec.Vec3
	verts  []float64
}

type tjuncState struct {
	edges map[[3]int64][]*wEdge

	healed int
	split  int
}

func hashOrigin(o vec.Vec3) [3]int64 {
	return [3]int64{
		int64(math.Round(o.X)),
		int64(math.Round(o.Y)),
		int64(math.Round(o.Z)),
	}
}

// findEdge canonicalises the line through p1 and p2 and returns the
// shared edge record plus the parameters of both points.
func (ts *tjuncState) findEdge(p1, p2 vec.Vec3) (*wEdge, float64, float64) {
	dir := vec.Sub(p2, p1)
	dir = dir.Normalize()
	t1 := vec.Dot(p1, dir)
	t2 := vec.Dot(p2, dir)

	// canonical direction: first significant component positive
	for i := 0; i < 3; i++ {
		d := dir.Idx(i)
		if d > equalEpsilon {
			break
		}
		if d < -equalEpsilon {
			dir = dir.Neg()
			t1, t2 = -t1, -t2
			break
		}
		dir.SetIdx(i, 0)
	}

	origin := vec.Add(p1, dir.Scale(-t1))
	key := hashOrigin(origin)
	for _, e := range ts.edges[key] {
		if vec.EpsilonEqual(e.origin, origin, equalEpsilon) &&
			vec.EpsilonEqual(e.dir, dir, equalEpsilon) {
			return e, t1, t2
		}
	}
	e := &wEdge{origin: origin, dir: dir}
	ts.edges[key] = append(ts.edges[key], e)
	return e, t1, t2
}

func (e *wEdge) addVert(t float64) {
	for i, v := range e.verts {
		if math.Abs(v-t) < tjuncEpsilon {
			return
		}
		if t < v {
			e.verts = append(e.verts, 0)
			copy(e.verts[i+1:], e.verts[i:])
			e.verts[i] = t
			return
		}
	}
	e.verts = append(e.verts, t)
}

func (ts *tjuncState) addFaceEdges(f *Face) {
	for i := range f.W {
		e, t1, t2 := ts.findEdge(f.W[i], f.W[(i+1)%len(f.W)])
		e.addVert(t1)
		e.addVert(t2)
	}
}

// fixFaceEdges inserts every registered vertex lying inside one of the
// face's edges. Faces that outgrow the winding limit are split, the
// extra pieces chained through Original so marksurfaces find them.
func (ts *tjuncState) fixFaceEdges(f *Face) {
	w := f.W
restart:
	for i := 0; i < len(w); i++ {
		p1 := w[i]
		p2 := w[(i+1)%len(w)]
		e, t1, t2 := ts.findEdge(p1, p2)
		lo, hi := t1, t2
		if lo > hi {
			lo, hi = hi, lo
		}
		for _, t := range e.verts {
			if t <= lo+tjuncEpsilon || t >= hi-tjuncEpsilon {
				continue
			}
			pt := vec.Add(e.origin, e.dir.Scale(t))
			// keep winding order when the edge runs against the
			// canonical direction
			nw := make(winding.Winding, 0, len(w)+1)
			nw = append(nw, w[:i+1]...)
			nw = append(nw, pt)
			nw = append(nw, w[i+1:]...)
			w = nw
			ts.healed++
			goto restart
		}
	}

	if len(w) <= winding.MaxPoints {
		f.W = w
		return
	}
	ts.splitFaceForTjunc(f, w)
}

// splitFaceForTjunc fans an oversized winding into several faces. The
// extra pieces join the node face list so they are emitted, and hang
// off the first face's Original chain so marksurfaces find them.
func (ts *tjuncState) splitFaceForTjunc(f *Face, w winding.Winding) {
	chain := f.Original
	for len(w) > winding.MaxPoints {
		ts.split++
		nf := NewFaceFromFace(f)
		nf.W = w[:winding.MaxPoints].Copy()
		nf.Original = chain
		chain = nf
		nf.Next = f.Next
		f.Next = nf

		rest := make(winding.Winding, 0, len(w)-winding.MaxPoints+2)
		rest = append(rest, w[0])
		rest = append(rest, w[winding.MaxPoints-1:]...)
		w = rest
	}
	f.W = w
	f.Original = chain
}

// TJunc heals t junctions across the drawn faces of a tree: every
// vertex that lies on another face's edge is inserted there, so the
// rasterizer leaves no cracks.
func TJunc(tree *Tree) {
	ts := &tjuncState{edges: map[[3]int64][]*wEdge{}}

	walkNodeFaces(tree.HeadNode, ts.addFaceEdges)
	walkNodeFaces(tree.HeadNode, ts.fixFaceEdges)

	slog.Debug("tjunc", "inserted", ts.healed, "split", ts.split)
}

// walkNodeFaces visits every face stored on the interior nodes,
// including pieces added while walking.
func walkNodeFaces(node *Node, visit func(*Face)) {
	if node.IsLeaf() {
		return
	}
	for f := node.Faces; f != nil; f = f.Next {
		visit(f)
	}
	walkNodeFaces(node.Children[0], visit)
	walkNodeFaces(node.Children[1], visit)
}
