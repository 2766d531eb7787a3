// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
)

func testExporter() *exporter {
	g := game.QuakeGame()
	md := mapfile.NewMapData(g)
	return newExporter(md, DefaultOptions(g))
}

func TestVertexDedup(t *testing.T) {
	ex := testExporter()

	a := ex.vertexNum(vec.Vec3{X: 16, Y: 32, Z: 48})
	b := ex.vertexNum(vec.Vec3{X: 16, Y: 32, Z: 48})
	assert.Equal(t, a, b)

	// near integer coordinates snap onto the integer
	c := ex.vertexNum(vec.Vec3{X: 16.0004, Y: 32, Z: 47.9996})
	assert.Equal(t, a, c)

	d := ex.vertexNum(vec.Vec3{X: 16.5, Y: 32, Z: 48})
	assert.NotEqual(t, a, d)
	assert.Len(t, ex.out.Vertexes, 2)
}

func TestEdgeReuse(t *testing.T) {
	ex := testExporter()
	require.Len(t, ex.out.Edges, 1, "edge 0 is reserved")

	e1 := ex.edgeNum(3, 7)
	assert.Equal(t, int32(1), e1)

	// the reverse reuses the record, negated, exactly once
	e2 := ex.edgeNum(7, 3)
	assert.Equal(t, int32(-1), e2)

	e3 := ex.edgeNum(7, 3)
	assert.Equal(t, int32(2), e3)

	assert.Len(t, ex.out.Edges, 3)
}

func TestSolidLeafReserved(t *testing.T) {
	ex := testExporter()
	require.Len(t, ex.out.Leafs, 1)
	assert.Equal(t, game.QuakeGame().SolidContents().Native, ex.out.Leafs[0].Contents)
	assert.Equal(t, int32(-1), ex.out.Leafs[0].VisOfs)
}

func TestLazyPoolNumbering(t *testing.T) {
	g := game.QuakeGame()
	md := mapfile.NewMapData(g)

	_, _, err := md.FindPlane(mapfile.Plane{Normal: vec.Vec3{X: 1}, Dist: 0})
	require.NoError(t, err)
	pn, _, err := md.FindPlane(mapfile.Plane{Normal: vec.Vec3{Z: 1}, Dist: 64})
	require.NoError(t, err)

	ex := newExporter(md, DefaultOptions(g))

	// the second pool plane becomes output plane 0 because it is
	// referenced first
	assert.Equal(t, int32(0), ex.planeNum(pn))
	assert.Equal(t, int32(0), ex.planeNum(pn))
	assert.Len(t, ex.out.Planes, 1)
	assert.Equal(t, 64.0, ex.out.Planes[0].Dist)
}
