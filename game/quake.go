// SPDX-License-Identifier: GPL-2.0-or-later

package game

import (
	"gobsp/math/vec"
)

// quakeLike covers the games with negative enum contents.
type quakeLike struct {
	id               ID
	hulls            []Hull
	mirrorInsideClip bool
}

func QuakeGame() Game {
	return &quakeLike{
		id: Quake,
		hulls: []Hull{
			{},
			{Min: vec.Vec3{-16, -16, -24}, Max: vec.Vec3{16, 16, 32}},
			{Min: vec.Vec3{-32, -32, -24}, Max: vec.Vec3{32, 32, 64}},
		},
		mirrorInsideClip: true,
	}
}

func Hexen2Game() Game {
	return &quakeLike{
		id: Hexen2,
		hulls: []Hull{
			{},
			{Min: vec.Vec3{-16, -16, -24}, Max: vec.Vec3{16, 16, 32}},
			{Min: vec.Vec3{-24, -24, -20}, Max: vec.Vec3{24, 24, 20}},
			{Min: vec.Vec3{-16, -16, -12}, Max: vec.Vec3{16, 16, 16}},
			{Min: vec.Vec3{-8, -8, -8}, Max: vec.Vec3{8, 8, 8}},
			{Min: vec.Vec3{-48, -48, -50}, Max: vec.Vec3{48, 48, 50}},
		},
	}
}

func (g *quakeLike) ID() ID { return g.id }

func (g *quakeLike) SolidContents() Contents { return Contents{Native: CONTENTS_SOLID} }
func (g *quakeLike) EmptyContents() Contents { return Contents{Native: CONTENTS_EMPTY} }
func (g *quakeLike) SkyContents() Contents   { return Contents{Native: CONTENTS_SKY} }

func (g *quakeLike) LiquidContents(native int32) Contents {
	return Contents{Native: native}
}

func (g *quakeLike) ExtendedContents(f ExtFlags) Contents {
	c := Contents{Extended: f}
	switch {
	case f&FlagDetail != 0:
		c.Native = CONTENTS_SOLID
	case f&FlagDetailFence != 0:
		c.Native = CONTENTS_SOLID
	case f&FlagDetailIllusionary != 0:
		c.Native = CONTENTS_EMPTY
	case f&FlagHint != 0:
		c.Native = CONTENTS_EMPTY
	case f&FlagClip != 0:
		c.Native = CONTENTS_CLIP
	case f&FlagOrigin != 0:
		c.Native = CONTENTS_ORIGIN
	default:
		c.Native = CONTENTS_EMPTY
	}
	return c
}

func (g *quakeLike) IsEmpty(c Contents) bool { return c.Native == CONTENTS_EMPTY }
func (g *quakeLike) IsSolid(c Contents) bool {
	return c.Native == CONTENTS_SOLID && !c.IsAnyDetail()
}
func (g *quakeLike) IsSky(c Contents) bool { return c.Native == CONTENTS_SKY }

func (g *quakeLike) IsLiquid(c Contents) bool {
	switch c.Native {
	case CONTENTS_WATER, CONTENTS_SLIME, CONTENTS_LAVA:
		return true
	}
	return false
}

func (g *quakeLike) PortalCanSeeThrough(c0, c1 Contents, transwater, transsky bool) bool {
	if c0.IsVisblocker() || c1.IsVisblocker() {
		return false
	}
	n0, n1 := c0.Native, c1.Native
	if n0 == CONTENTS_SOLID || n1 == CONTENTS_SOLID {
		return false
	}
	if n0 == CONTENTS_SKY || n1 == CONTENTS_SKY {
		return transsky
	}
	if n0 == n1 {
		return true
	}
	// mixed empty and liquid, or two different liquids
	return transwater
}

func (g *quakeLike) ClusterContents(c0, c1 Contents) Contents {
	merged := Contents{Extended: c0.Extended | c1.Extended}
	switch {
	case c0.Native == c1.Native:
		merged.Native = c0.Native
	case c0.Native == CONTENTS_SOLID:
		merged.Native = c1.Native
	case c1.Native == CONTENTS_SOLID:
		merged.Native = c0.Native
	case c0.Native == CONTENTS_EMPTY || c1.Native == CONTENTS_EMPTY:
		merged.Native = CONTENTS_EMPTY
	case c0.Native > c1.Native:
		merged.Native = c0.Native
	default:
		merged.Native = c1.Native
	}
	return merged
}

func (g *quakeLike) HullSizes() []Hull { return g.hulls }

func (g *quakeLike) ValidateLeafContents(c Contents) bool {
	switch c.Native {
	case CONTENTS_EMPTY, CONTENTS_SOLID, CONTENTS_WATER, CONTENTS_SLIME,
		CONTENTS_LAVA, CONTENTS_SKY:
		return true
	}
	return false
}

func (g *quakeLike) RemapForExport(c Contents) Contents {
	switch {
	case c.IsDetailFence() || c.IsDetail():
		return Contents{Native: CONTENTS_SOLID}
	case c.IsDetailIllusionary():
		return Contents{Native: CONTENTS_EMPTY}
	}
	return Contents{Native: c.Native}
}

func (g *quakeLike) HasClusters() bool { return false }

func (g *quakeLike) MirrorInsideClip() bool { return g.mirrorInsideClip }
