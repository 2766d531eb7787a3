// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/bspfile"
	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
)

func faceText(base, a, b vec.Vec3, tex string) string {
	p0 := vec.Add(base, a)
	p2 := vec.Add(base, b)
	return fmt.Sprintf("( %g %g %g ) ( %g %g %g ) ( %g %g %g ) %s 0 0 0 1 1\n",
		p0.X, p0.Y, p0.Z, base.X, base.Y, base.Z, p2.X, p2.Y, p2.Z, tex)
}

// boxBrush emits one axial brush in standard map syntax, outward
// normals.
func boxBrush(min, max vec.Vec3, tex string) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	sb.WriteString(faceText(vec.Vec3{X: max.X, Y: min.Y, Z: min.Z},
		vec.Vec3{Y: 1}, vec.Vec3{Z: 1}, tex))
	sb.WriteString(faceText(min, vec.Vec3{Z: 1}, vec.Vec3{Y: 1}, tex))
	sb.WriteString(faceText(vec.Vec3{X: min.X, Y: max.Y, Z: min.Z},
		vec.Vec3{Z: 1}, vec.Vec3{X: 1}, tex))
	sb.WriteString(faceText(min, vec.Vec3{X: 1}, vec.Vec3{Z: 1}, tex))
	sb.WriteString(faceText(vec.Vec3{X: min.X, Y: min.Y, Z: max.Z},
		vec.Vec3{X: 1}, vec.Vec3{Y: 1}, tex))
	sb.WriteString(faceText(min, vec.Vec3{Y: 1}, vec.Vec3{X: 1}, tex))
	sb.WriteString("}\n")
	return sb.String()
}

// hollowBoxMap is a sealed room: six slabs around a 128 unit cube of
// air.
func hollowBoxMap(extra string) string {
	var sb strings.Builder
	sb.WriteString("{\n\"classname\" \"worldspawn\"\n")
	sb.WriteString(boxBrush(vec.Vec3{X: -80, Y: -80, Z: -80}, vec.Vec3{X: 80, Y: 80, Z: -64}, "floor"))
	sb.WriteString(boxBrush(vec.Vec3{X: -80, Y: -80, Z: 64}, vec.Vec3{X: 80, Y: 80, Z: 80}, "ceil"))
	sb.WriteString(boxBrush(vec.Vec3{X: -80, Y: -80, Z: -64}, vec.Vec3{X: -64, Y: 80, Z: 64}, "wall"))
	sb.WriteString(boxBrush(vec.Vec3{X: 64, Y: -80, Z: -64}, vec.Vec3{X: 80, Y: 80, Z: 64}, "wall"))
	sb.WriteString(boxBrush(vec.Vec3{X: -64, Y: -80, Z: -64}, vec.Vec3{X: 64, Y: -64, Z: 64}, "wall"))
	sb.WriteString(boxBrush(vec.Vec3{X: -64, Y: 64, Z: -64}, vec.Vec3{X: 64, Y: 80, Z: 64}, "wall"))
	sb.WriteString("}\n")
	sb.WriteString("{\n\"classname\" \"info_player_start\"\n\"origin\" \"0 0 24\"\n}\n")
	sb.WriteString(extra)
	return sb.String()
}

func compileText(t *testing.T, text string) (*Result, string) {
	t.Helper()
	g := game.QuakeGame()
	md, err := mapfile.LoadMapText(text, g)
	require.NoError(t, err)

	opts := DefaultOptions(g)
	opts.Workers = 1
	var prt bytes.Buffer
	res, err := Compile(md, opts, &prt)
	require.NoError(t, err)
	return res, prt.String()
}

func TestCompileHollowBox(t *testing.T) {
	res, prt := compileText(t, hollowBoxMap(""))
	d := res.BSP

	require.Len(t, d.Models, 1)
	assert.Equal(t, 4, d.HullsPerModel)

	// six inner wall faces at least, plus the outward facing hull
	assert.GreaterOrEqual(t, len(d.Faces), 6)
	assert.Greater(t, len(d.Leafs), 1)
	assert.Equal(t, game.QuakeGame().SolidContents().Native, d.Leafs[0].Contents)

	// the two player hulls produce clipnodes
	assert.NotEmpty(t, d.ClipNodes)

	assert.Equal(t, bspfile.Edge{}, d.Edges[0], "edge 0 is reserved")
	for _, se := range d.SurfEdges {
		e := se
		if e < 0 {
			e = -e
		}
		assert.Greater(t, e, int32(0))
		assert.Less(t, int(e), len(d.Edges))
	}
	for _, f := range d.Faces {
		assert.GreaterOrEqual(t, f.NumEdges, int32(3))
	}
	for _, m := range d.MarkSurfaces {
		assert.Less(t, int(m), len(d.Faces))
	}

	assert.True(t, strings.HasPrefix(prt, "PRT1\n"), "got %q", prt)
	assert.Contains(t, d.Entities, "info_player_start")
}

func TestCompileBrushModel(t *testing.T) {
	door := "{\n\"classname\" \"func_wall\"\n" +
		boxBrush(vec.Vec3{X: -16, Y: -16, Z: -64}, vec.Vec3{X: 16, Y: 16, Z: 0}, "door") +
		"}\n"
	res, _ := compileText(t, hollowBoxMap(door))
	d := res.BSP

	require.Len(t, d.Models, 2)
	assert.Contains(t, d.Entities, "\"model\" \"*1\"")

	m := d.Models[1]
	assert.Greater(t, m.NumFaces, int32(0))
	// the model box is pulled one unit inside the brush extents
	assert.InDelta(t, -15, m.Mins[0], 0.5)
	assert.InDelta(t, 15, m.Maxs[1], 0.5)
}

func TestCompileDetailPortalFile(t *testing.T) {
	pillar := "{\n\"classname\" \"func_detail\"\n" +
		boxBrush(vec.Vec3{X: -8, Y: -8, Z: -64}, vec.Vec3{X: 8, Y: 8, Z: 64}, "pillar") +
		"}\n"
	_, prt := compileText(t, hollowBoxMap(pillar))
	assert.True(t, strings.HasPrefix(prt, "PRT"), "got %q", prt)
}

func TestCompileWriteRoundTrip(t *testing.T) {
	res, _ := compileText(t, hollowBoxMap(""))

	var buf bytes.Buffer
	format, err := bspfile.Write(&buf, res.BSP, bspfile.FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, bspfile.Format29, format)

	raw := buf.Bytes()
	require.Greater(t, len(raw), 4)
	version := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16 | int32(raw[3])<<24
	assert.Equal(t, int32(bspfile.Version29), version)
}

func TestCompileNoWorldBrushes(t *testing.T) {
	g := game.QuakeGame()
	md, err := mapfile.LoadMapText("{\n\"classname\" \"worldspawn\"\n}\n", g)
	require.NoError(t, err)

	_, err = Compile(md, DefaultOptions(g), nil)
	assert.Error(t, err)
}
