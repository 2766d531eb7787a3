// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
	"gobsp/winding"
)

func testMapData(t *testing.T) (*mapfile.MapData, int) {
	t.Helper()
	md := mapfile.NewMapData(game.QuakeGame())
	planenum, side, err := md.FindPlane(mapfile.Plane{
		Normal: vec.Vec3{Z: 1},
		Dist:   0,
	})
	require.NoError(t, err)
	require.Equal(t, mapfile.SideFront, side)
	return md, planenum
}

func quadFace(planenum int, pts ...vec.Vec3) *Face {
	f := &Face{Planenum: planenum, OutputNumber: -1}
	f.W = append(winding.Winding{}, pts...)
	return f
}

func TestTryMergeRectangles(t *testing.T) {
	md, pn := testMapData(t)

	f1 := quadFace(pn,
		vec.Vec3{X: 0, Y: 0}, vec.Vec3{X: 64, Y: 0},
		vec.Vec3{X: 64, Y: 64}, vec.Vec3{X: 0, Y: 64})
	f2 := quadFace(pn,
		vec.Vec3{X: 64, Y: 0}, vec.Vec3{X: 128, Y: 0},
		vec.Vec3{X: 128, Y: 64}, vec.Vec3{X: 64, Y: 64})

	nf := tryMerge(md, f1, f2)
	require.NotNil(t, nf)
	assert.Len(t, nf.W, 4)
	assert.InDelta(t, 128*64, nf.W.Area(), 0.01)
}

func TestTryMergeRejectsMismatches(t *testing.T) {
	md, pn := testMapData(t)

	f1 := quadFace(pn,
		vec.Vec3{X: 0, Y: 0}, vec.Vec3{X: 64, Y: 0},
		vec.Vec3{X: 64, Y: 64}, vec.Vec3{X: 0, Y: 64})

	// no shared edge
	far := quadFace(pn,
		vec.Vec3{X: 200, Y: 0}, vec.Vec3{X: 264, Y: 0},
		vec.Vec3{X: 264, Y: 64}, vec.Vec3{X: 200, Y: 64})
	assert.Nil(t, tryMerge(md, f1, far))

	// different texinfo
	f2 := quadFace(pn,
		vec.Vec3{X: 64, Y: 0}, vec.Vec3{X: 128, Y: 0},
		vec.Vec3{X: 128, Y: 64}, vec.Vec3{X: 64, Y: 64})
	f2.Texinfo = 1
	assert.Nil(t, tryMerge(md, f1, f2))

	// non convex union
	f2.Texinfo = 0
	f2.W = winding.Winding{
		{X: 64, Y: 0}, {X: 128, Y: -64},
		{X: 192, Y: 32}, {X: 64, Y: 64},
	}
	assert.Nil(t, tryMerge(md, f1, f2))
}

func TestMergeFaceToList(t *testing.T) {
	md, pn := testMapData(t)

	a := quadFace(pn,
		vec.Vec3{X: 0, Y: 0}, vec.Vec3{X: 64, Y: 0},
		vec.Vec3{X: 64, Y: 64}, vec.Vec3{X: 0, Y: 64})
	b := quadFace(pn,
		vec.Vec3{X: 64, Y: 0}, vec.Vec3{X: 128, Y: 0},
		vec.Vec3{X: 128, Y: 64}, vec.Vec3{X: 64, Y: 64})
	c := quadFace(pn,
		vec.Vec3{X: 128, Y: 0}, vec.Vec3{X: 192, Y: 0},
		vec.Vec3{X: 192, Y: 64}, vec.Vec3{X: 128, Y: 64})

	list := mergeFaceToList(md, a, nil)
	list = mergeFaceToList(md, c, list)
	list = mergeFaceToList(md, b, list)

	require.NotNil(t, list)
	assert.Nil(t, list.Next)
	assert.Len(t, list.W, 4)
	assert.InDelta(t, 192*64, list.W.Area(), 0.01)
}
