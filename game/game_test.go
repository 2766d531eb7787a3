// SPDX-License-Identifier: GPL-2.0-or-later

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/math/vec"
)

func TestForName(t *testing.T) {
	for _, name := range []string{"q1", "quake", "q2", "quake2", "hexen2", "h2"} {
		g, err := ForName(name)
		require.NoError(t, err, name)
		require.NotNil(t, g, name)
	}
	_, err := ForName("doom")
	require.Error(t, err)
}

func TestQuakeHulls(t *testing.T) {
	g := QuakeGame()
	hulls := g.HullSizes()
	require.Len(t, hulls, 3)
	assert.Equal(t, Hull{}, hulls[0])
	assert.Equal(t, vec.Vec3{-16, -16, -24}, hulls[1].Min)
	assert.Equal(t, vec.Vec3{16, 16, 32}, hulls[1].Max)
}

func TestPortalCanSeeThrough(t *testing.T) {
	g := QuakeGame()
	empty := g.EmptyContents()
	solid := g.SolidContents()
	sky := g.SkyContents()
	water := g.LiquidContents(CONTENTS_WATER)

	assert.True(t, g.PortalCanSeeThrough(empty, empty, false, false))
	assert.False(t, g.PortalCanSeeThrough(empty, solid, true, true))
	assert.False(t, g.PortalCanSeeThrough(empty, water, false, false))
	assert.True(t, g.PortalCanSeeThrough(empty, water, true, false))
	assert.True(t, g.PortalCanSeeThrough(water, water, false, false))
	assert.False(t, g.PortalCanSeeThrough(empty, sky, false, false))
	assert.True(t, g.PortalCanSeeThrough(empty, sky, false, true))

	blocker := empty
	blocker.Extended |= FlagIllusionaryVisblocker
	assert.False(t, g.PortalCanSeeThrough(empty, blocker, true, true))
}

func TestClusterContents(t *testing.T) {
	g := QuakeGame()
	empty := g.EmptyContents()
	solid := g.SolidContents()
	water := g.LiquidContents(CONTENTS_WATER)
	lava := g.LiquidContents(CONTENTS_LAVA)

	assert.Equal(t, int32(CONTENTS_WATER), g.ClusterContents(solid, water).Native)
	assert.Equal(t, int32(CONTENTS_EMPTY), g.ClusterContents(empty, water).Native)
	assert.Equal(t, int32(CONTENTS_WATER), g.ClusterContents(lava, water).Native)
	assert.Equal(t, int32(CONTENTS_SOLID), g.ClusterContents(solid, solid).Native)
}

func TestRemapForExport(t *testing.T) {
	g := QuakeGame()
	fence := g.ExtendedContents(FlagDetailFence)
	assert.Equal(t, int32(CONTENTS_SOLID), g.RemapForExport(fence).Native)
	assert.Equal(t, ExtFlags(0), g.RemapForExport(fence).Extended)

	illus := g.ExtendedContents(FlagDetailIllusionary)
	assert.Equal(t, int32(CONTENTS_EMPTY), g.RemapForExport(illus).Native)
}

func TestValidateLeafContents(t *testing.T) {
	g := QuakeGame()
	assert.True(t, g.ValidateLeafContents(g.SolidContents()))
	assert.True(t, g.ValidateLeafContents(g.EmptyContents()))
	assert.False(t, g.ValidateLeafContents(Contents{Native: CONTENTS_ORIGIN}))
}

func TestQuake2Contents(t *testing.T) {
	g := Quake2Game()
	solid := g.SolidContents()
	water := g.LiquidContents(Q2_CONTENTS_WATER)

	assert.True(t, g.IsSolid(solid))
	assert.True(t, g.IsLiquid(water))
	assert.True(t, g.HasClusters())
	require.Len(t, g.HullSizes(), 1)

	cc := g.ClusterContents(solid, water)
	assert.Zero(t, cc.Native&Q2_CONTENTS_SOLID)
	assert.NotZero(t, cc.Native&Q2_CONTENTS_WATER)
}
