// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/game"
	"gobsp/math/vec"
)

const wedgeMap = `{
"classname" "worldspawn"
"message" "test chamber"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) floor 0 0 0 1 1
( 0 0 0 ) ( 128 0 0 ) ( 0 0 128 ) wall 16 0 0 1 1
( 0 128 0 ) ( 0 0 0 ) ( 0 0 128 ) wall 16 0 0 1 1
}
{
( 128 0 64 ) ( 0 0 64 ) ( 0 128 64 ) floor 0 0 0 1 1
}
}
{
"classname" "info_player_start"
"origin" "32 48 24"
}
`

func TestLoadMapText(t *testing.T) {
	md, err := LoadMapText(wedgeMap, game.QuakeGame())
	require.NoError(t, err)

	require.Len(t, md.Entities, 2)
	assert.Equal(t, "worldspawn", md.World().Classname())
	assert.Equal(t, "test chamber", md.World().ValueForKey("message"))

	require.Len(t, md.World().Brushes, 2)
	b := md.World().Brushes[0]
	require.Len(t, b.Faces, 3)

	// the first face's three points span the z = 0 plane, up normal
	f := b.Faces[0]
	assert.Equal(t, "floor", f.TexName)
	assert.InDelta(t, 1, f.Plane.Normal.Z, 0.0001)
	assert.InDelta(t, 0, f.Plane.Dist, 0.0001)

	// the second brush's floor is coplanar in projection terms, one
	// pool record
	b2 := md.World().Brushes[1]
	require.Len(t, b2.Faces, 1)
	assert.Equal(t, f.Texinfo, b2.Faces[0].Texinfo)
	assert.NotEqual(t, f.Texinfo, b.Faces[1].Texinfo)

	start := md.Entities[1]
	assert.Equal(t, vec.Vec3{X: 32, Y: 48, Z: 24}, start.VectorForKey("origin"))
}

func TestLoadMapErrors(t *testing.T) {
	g := game.QuakeGame()

	_, err := LoadMapText("", g)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = LoadMapText("{\n\"classname\" \"info_null\"\n}\n", g)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = LoadMapText(`{
"classname" "worldspawn"
{
( 128 0 bogus ) ( 0 0 0 ) ( 0 128 0 ) floor 0 0 0 1 1
}
}
`, g)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = LoadMapText("{\n\"classname\" \"worldspawn\"\n", g)
	assert.Error(t, err)
}

func TestDuplicatePlaneDiscarded(t *testing.T) {
	md, err := LoadMapText(`{
"classname" "worldspawn"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) floor 0 0 0 1 1
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) floor 0 0 0 1 1
}
}
`, game.QuakeGame())
	require.NoError(t, err)
	assert.Len(t, md.World().Brushes[0].Faces, 1)
}

func TestValve220Texture(t *testing.T) {
	md, err := LoadMapText(`{
"classname" "worldspawn"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) floor [ 1 0 0 8 ] [ 0 -1 0 16 ] 0 1 1
}
}
`, game.QuakeGame())
	require.NoError(t, err)

	f := md.World().Brushes[0].Faces[0]
	tx := md.TexInfos[f.Texinfo]
	assert.InDelta(t, 1, tx.Vecs[0][0], 0.0001)
	assert.InDelta(t, 8, tx.Vecs[0][3], 0.0001)
	assert.InDelta(t, -1, tx.Vecs[1][1], 0.0001)
	assert.InDelta(t, 16, tx.Vecs[1][3], 0.0001)
}

func TestSurfFlagsFromNames(t *testing.T) {
	md, err := LoadMapText(`{
"classname" "worldspawn"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) skip 0 0 0 1 1
( 0 0 0 ) ( 128 0 0 ) ( 0 0 128 ) hint 0 0 0 1 1
( 0 128 0 ) ( 0 0 0 ) ( 0 0 128 ) *water1 0 0 0 1 1
( 0 128 128 ) ( 0 0 128 ) ( 128 0 128 ) sky4 0 0 0 1 1
}
}
`, game.QuakeGame())
	require.NoError(t, err)

	faces := md.World().Brushes[0].Faces
	require.Len(t, faces, 4)
	assert.NotZero(t, faces[0].Flags.Extended&game.TexExSkip)
	assert.NotZero(t, faces[1].Flags.Extended&game.TexExHint)
	assert.NotZero(t, faces[2].Flags.Native&game.TexSpecial)
	assert.NotZero(t, faces[3].Flags.Native&game.TexSpecial)
}

func TestQuake2ExtendedTriple(t *testing.T) {
	md, err := LoadMapText(`{
"classname" "worldspawn"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) e1u1/floor1_1 0 0 0 1 1 0 0 0
}
}
`, game.Quake2Game())
	require.NoError(t, err)

	// contentless faces get solid during the legacy fixup
	f := md.World().Brushes[0].Faces[0]
	assert.NotZero(t, f.Contents&game.Q2_CONTENTS_SOLID)
}

func TestFindMiptexAnimationFrames(t *testing.T) {
	md := NewMapData(game.QuakeGame())

	i := md.FindMiptex("+2butn", 0, 0)
	assert.Equal(t, 0, i)
	require.Len(t, md.Miptex, 3)
	assert.Equal(t, "+0butn", md.Miptex[1].Name)
	assert.Equal(t, "+1butn", md.Miptex[2].Name)
}

func TestFindMiptexFoldsCaseAndPath(t *testing.T) {
	md := NewMapData(game.QuakeGame())

	a := md.FindMiptex("e1u1/CITY3_4", 0, 0)
	b := md.FindMiptex("city3_4", 0, 0)
	assert.Equal(t, a, b)
	assert.Equal(t, "CITY3_4", md.Miptex[a].Name)
}

func TestWriteEntitiesDropsFoldedBrushEntities(t *testing.T) {
	md, err := LoadMapText(`{
"classname" "worldspawn"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) floor 0 0 0 1 1
}
}
{
"classname" "func_detail"
{
( 128 0 0 ) ( 0 0 0 ) ( 0 128 0 ) pillar 0 0 0 1 1
}
}
{
"classname" "light"
"origin" "0 0 64"
"light" "300"
}
`, game.QuakeGame())
	require.NoError(t, err)

	out := md.WriteEntitiesToString()
	assert.Contains(t, out, "\"classname\" \"worldspawn\"")
	assert.Contains(t, out, "\"light\" \"300\"")
	assert.NotContains(t, out, "func_detail")
}
