// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/math/vec"
	"gobsp/winding"
)

func newTjuncState() *tjuncState {
	return &tjuncState{edges: map[[3]int64][]*wEdge{}}
}

func TestFindEdgeCanonical(t *testing.T) {
	ts := newTjuncState()

	e1, t1, t2 := ts.findEdge(vec.Vec3{}, vec.Vec3{X: 64})
	assert.InDelta(t, 0, t1, equalEpsilon)
	assert.InDelta(t, 64, t2, equalEpsilon)

	// a shorter edge on the same line, against the direction
	e2, u1, u2 := ts.findEdge(vec.Vec3{X: 64}, vec.Vec3{X: 32})
	assert.Same(t, e1, e2)
	assert.InDelta(t, 64, u1, equalEpsilon)
	assert.InDelta(t, 32, u2, equalEpsilon)

	// a different line gets its own record
	e3, _, _ := ts.findEdge(vec.Vec3{Y: 8}, vec.Vec3{X: 64, Y: 8})
	assert.NotSame(t, e1, e3)
}

func TestAddVertSortedDedup(t *testing.T) {
	e := &wEdge{}
	e.addVert(64)
	e.addVert(0)
	e.addVert(32)
	e.addVert(32.001) // within tjuncEpsilon of 32

	require.Len(t, e.verts, 3)
	assert.Equal(t, []float64{0, 32, 64}, e.verts)
}

func TestFixFaceEdgesInsertsVertex(t *testing.T) {
	ts := newTjuncState()

	square := &Face{W: winding.Winding{
		{}, {X: 64}, {X: 64, Y: 64}, {Y: 64},
	}}
	// a neighbour whose corner sits halfway along the square's bottom
	// edge
	tri := &Face{W: winding.Winding{
		{}, {X: 32}, {X: 32, Y: -32},
	}}

	ts.addFaceEdges(square)
	ts.addFaceEdges(tri)
	ts.fixFaceEdges(square)

	require.Len(t, square.W, 5)
	assert.Equal(t, 1, ts.healed)
	found := false
	for _, p := range square.W {
		if vec.EpsilonEqual(p, vec.Vec3{X: 32}, equalEpsilon) {
			found = true
		}
	}
	assert.True(t, found, "midpoint not inserted")
}

func TestSplitFaceForTjunc(t *testing.T) {
	ts := newTjuncState()

	w := make(winding.Winding, winding.MaxPoints+2)
	for i := range w {
		// a convex fan approximation is not needed, the splitter only
		// slices by index
		w[i] = vec.Vec3{X: float64(i), Y: float64(i * i)}
	}
	f := &Face{}
	ts.splitFaceForTjunc(f, w)

	assert.LessOrEqual(t, len(f.W), winding.MaxPoints)
	require.NotNil(t, f.Next)
	assert.LessOrEqual(t, len(f.Next.W), winding.MaxPoints)
	assert.Equal(t, 1, ts.split)

	// the piece hangs off the original chain for marksurfaces
	assert.Same(t, f.Next, f.Original)
}
