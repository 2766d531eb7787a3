// SPDX-License-Identifier: GPL-2.0-or-later

package game

import (
	"gobsp/math/vec"
)

// quake2 contents are bit masks, not an enum. Only the pieces the
// compile pipeline needs are covered, collision is brush based so the
// hull table holds the point hull only.
type quake2 struct{}

func Quake2Game() Game { return quake2{} }

func (quake2) ID() ID { return Quake2 }

func (quake2) SolidContents() Contents { return Contents{Native: Q2_CONTENTS_SOLID} }
func (quake2) EmptyContents() Contents { return Contents{} }
func (quake2) SkyContents() Contents   { return Contents{Native: Q2_CONTENTS_SOLID} }

func (quake2) LiquidContents(native int32) Contents {
	return Contents{Native: native & Q2_CONTENTS_LIQUID}
}

func (quake2) ExtendedContents(f ExtFlags) Contents {
	c := Contents{Extended: f}
	switch {
	case f&(FlagDetail|FlagDetailFence) != 0:
		c.Native = Q2_CONTENTS_SOLID | Q2_CONTENTS_DETAIL
	case f&FlagDetailIllusionary != 0:
		c.Native = Q2_CONTENTS_MIST
	case f&FlagClip != 0:
		c.Native = Q2_CONTENTS_PLAYERCLIP | Q2_CONTENTS_MONSTERCLIP
	case f&FlagOrigin != 0:
		c.Native = Q2_CONTENTS_ORIGIN
	}
	return c
}

func (quake2) IsEmpty(c Contents) bool { return c.Native == 0 }
func (quake2) IsSolid(c Contents) bool {
	return c.Native&Q2_CONTENTS_SOLID != 0 && !c.IsAnyDetail()
}
func (quake2) IsSky(c Contents) bool { return false }
func (quake2) IsLiquid(c Contents) bool {
	return c.Native&Q2_CONTENTS_LIQUID != 0
}

func (g quake2) PortalCanSeeThrough(c0, c1 Contents, transwater, transsky bool) bool {
	if c0.IsVisblocker() || c1.IsVisblocker() {
		return false
	}
	blocking := int32(Q2_CONTENTS_SOLID)
	if !transwater {
		blocking |= Q2_CONTENTS_LIQUID
	}
	if (c0.Native|c1.Native)&blocking != 0 {
		return false
	}
	return true
}

func (quake2) ClusterContents(c0, c1 Contents) Contents {
	merged := Contents{
		Native:   c0.Native | c1.Native,
		Extended: c0.Extended | c1.Extended,
	}
	// a cluster is only solid if every leaf in it is
	if c0.Native&Q2_CONTENTS_SOLID == 0 || c1.Native&Q2_CONTENTS_SOLID == 0 {
		merged.Native &^= Q2_CONTENTS_SOLID
	}
	return merged
}

func (quake2) HullSizes() []Hull {
	return []Hull{{Min: vec.Vec3{}, Max: vec.Vec3{}}}
}

func (quake2) ValidateLeafContents(c Contents) bool {
	if c.Native&Q2_CONTENTS_SOLID != 0 && c.Native&Q2_CONTENTS_LIQUID != 0 {
		return false
	}
	return true
}

func (quake2) RemapForExport(c Contents) Contents {
	return Contents{Native: c.Native}
}

func (quake2) HasClusters() bool { return true }

func (quake2) MirrorInsideClip() bool { return false }
