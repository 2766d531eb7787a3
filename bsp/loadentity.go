// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
)

// brushContentsQuake classifies a brush by the texture name of its
// first face, warning when later faces disagree.
func brushContentsQuake(g game.Game, mb *mapfile.MapBrush) game.Contents {
	classify := func(name string) game.Contents {
		lower := strings.ToLower(name)
		switch {
		case mapfile.IsHintName(name):
			return g.ExtendedContents(game.FlagHint)
		case lower == "clip":
			return g.ExtendedContents(game.FlagClip)
		case lower == "origin":
			return g.ExtendedContents(game.FlagOrigin)
		case strings.HasPrefix(name, "*"):
			switch {
			case strings.HasPrefix(lower[1:], "lava"):
				return g.LiquidContents(game.CONTENTS_LAVA)
			case strings.HasPrefix(lower[1:], "slime"):
				return g.LiquidContents(game.CONTENTS_SLIME)
			}
			return g.LiquidContents(game.CONTENTS_WATER)
		case len(lower) >= 3 && lower[:3] == "sky":
			return g.SkyContents()
		}
		return g.SolidContents()
	}

	c := classify(mb.Faces[0].TexName)
	for _, f := range mb.Faces[1:] {
		if o := classify(f.TexName); !o.Equal(c) {
			slog.Warn("mixed face contents in brush",
				"line", mb.LineNum, "texture", f.TexName)
			break
		}
	}
	return c
}

// brushContentsQuake2 classifies a brush from the per side content
// bits. The first side wins, differing sides only warn.
func brushContentsQuake2(g game.Game, mb *mapfile.MapBrush) game.Contents {
	native := mb.Faces[0].Contents
	for _, f := range mb.Faces[1:] {
		if f.Contents != native {
			slog.Warn("mixed face contents in brush",
				"line", mb.LineNum, "texture", f.TexName)
			break
		}
	}

	trans := mb.Faces[0].Flags.Native&(game.Q2_SURF_TRANS33|game.Q2_SURF_TRANS66) != 0
	if trans {
		native |= game.Q2_CONTENTS_TRANSLUCENT
		if native&game.Q2_CONTENTS_SOLID != 0 {
			native = (native &^ game.Q2_CONTENTS_SOLID) | game.Q2_CONTENTS_WINDOW
		}
	}

	c := game.Contents{Native: native}
	switch {
	case native&game.Q2_CONTENTS_ORIGIN != 0:
		c.Extended |= game.FlagOrigin
	case native&(game.Q2_CONTENTS_PLAYERCLIP|game.Q2_CONTENTS_MONSTERCLIP) != 0:
		c.Extended |= game.FlagClip
	case native&game.Q2_CONTENTS_MIST != 0:
		c.Extended |= game.FlagDetailIllusionary
	case native&game.Q2_CONTENTS_DETAIL != 0:
		c.Extended |= game.FlagDetail
	}
	if mb.Faces[0].Flags.Native&game.Q2_SURF_HINT != 0 {
		c.Extended |= game.FlagHint
	}
	return c
}

func brushContents(g game.Game, mb *mapfile.MapBrush) game.Contents {
	if g.ID() == game.Quake2 {
		return brushContentsQuake2(g, mb)
	}
	return brushContentsQuake(g, mb)
}

// entityContents applies the classname and key modifiers on top of the
// texture derived contents.
func entityContents(g game.Game, e *mapfile.Entity, c game.Contents) game.Contents {
	switch e.Classname() {
	case "func_detail":
		if g.IsSolid(c) {
			c.Extended |= game.FlagDetail
		}
	case "func_detail_illusionary":
		c = g.ExtendedContents(game.FlagDetailIllusionary)
	case "func_detail_fence", "func_detail_wall":
		if g.IsSolid(c) {
			c.Extended |= game.FlagDetailFence
		}
	case "func_illusionary_visblocker":
		c = g.ExtendedContents(game.FlagIllusionaryVisblocker)
	}
	if boolKey(e, "_mirrorinside") {
		c.Extended |= game.FlagMirrorInside
	}
	if boolKey(e, "_noclipfaces") {
		c.Extended |= game.FlagNoClipSameType
	}
	return c
}

func boolKey(e *mapfile.Entity, key string) bool {
	v := e.ValueForKey(key)
	return v != "" && v != "0"
}

// lmshiftForEntity reads _lmscale and converts it to a power of two
// shift for the lightmap lump.
func lmshiftForEntity(opts *Options, e *mapfile.Entity) int {
	scale := opts.ForcedLightmapScale
	if scale <= 0 {
		if v := e.ValueForKey("_lmscale"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				scale = n
			}
		}
	}
	if scale <= 0 {
		return defaultLmshift
	}
	shift := int(math.Round(math.Log2(float64(scale)))) + 4
	if 1<<(shift-4) != scale {
		slog.Warn("_lmscale rounded to a power of two", "scale", scale)
	}
	if shift < 0 {
		shift = 0
	}
	return shift
}

func omitClass(opts *Options, c game.Contents) bool {
	switch {
	case c.IsDetailIllusionary():
		return opts.OmitDetailIllusionary
	case c.IsDetailFence():
		// func_detail_wall folds into the fence class
		return opts.OmitDetailFence || opts.OmitDetailWall
	case c.IsDetail():
		return opts.OmitDetail
	}
	return false
}

// brushPriority orders contents from weakest to strongest. CSG clips
// each brush against the brushes of equal or higher priority; a weaker
// liquid brush clips it too, but keeps the fragments inside it.
const (
	prioDetailIllusionary = iota
	prioLiquid
	prioDetailFence
	prioDetail
	prioSky
	prioSolid
	numPriorities
)

func priorityFor(g game.Game, c game.Contents) int {
	switch {
	case c.IsDetailIllusionary() || c.IsVisblocker():
		return prioDetailIllusionary
	case g.IsLiquid(c):
		return prioLiquid
	case c.IsDetailFence():
		return prioDetailFence
	case c.IsDetail():
		return prioDetail
	case g.IsSky(c):
		return prioSky
	}
	return prioSolid
}

// originFromBrush finds the centroid of an origin brush and writes it
// back as the entity origin key.
func originFromBrush(md *mapfile.MapData, opts *Options, e *mapfile.Entity,
	mb *mapfile.MapBrush) error {

	b, err := LoadBrush(md, opts, mb, md.Game.ExtendedContents(game.FlagOrigin),
		vec.Vec3{}, 0)
	if err != nil {
		return err
	}
	if b == nil {
		return errors.Errorf("line %d: degenerate origin brush", mb.LineNum)
	}
	o := b.Bounds.Center()
	e.SetKeyValue("origin", strconv.Itoa(int(o.X))+" "+
		strconv.Itoa(int(o.Y))+" "+strconv.Itoa(int(o.Z)))
	return nil
}

// LoadEntityBrushes builds the sorted brush chain of one entity for
// one hull. The world keeps its own contents, other entities are
// solidified where the engine expects it.
func LoadEntityBrushes(md *mapfile.MapData, opts *Options, e *Entity, hullnum int) error {
	me := e.Map
	isWorld := me == md.World()

	rotation := mapfile.RotationNone
	if strings.HasPrefix(me.Classname(), "rotate_") {
		md.FixRotateOrigin(me)
		rotation = mapfile.RotationHipnotic
	}

	var origin vec.Vec3
	if !isWorld {
		origin = me.VectorForKey("origin")
		if rotation == mapfile.RotationNone && origin != (vec.Vec3{}) {
			rotation = mapfile.RotationOriginBrush
		}
	} else if me.ValueForKey("origin") != "" {
		slog.Warn("ignoring origin key on worldspawn")
	}

	e.Lmshift = lmshiftForEntity(opts, me)
	e.Origin = origin
	me.Origin = origin
	me.Rotation = rotation

	var lists [numPriorities]*Brush
	if hullnum == 0 {
		e.Bounds = vec.EmptyBounds()
	}

	// the world also owns the brushes of folded group entities, which
	// keep their own contents qualifiers and lightmap scale
	sources := []*mapfile.Entity{me}
	if isWorld {
		for _, o := range md.Entities {
			if mapfile.IsWorldBrushEntity(o) {
				sources = append(sources, o)
			}
		}
	}

	for _, src := range sources {
		srcShift := e.Lmshift
		if src != me {
			srcShift = lmshiftForEntity(opts, src)
		}
		if err := e.loadSourceBrushes(md, opts, src, srcShift, hullnum, &lists); err != nil {
			return err
		}
	}

	// chain weakest first so CSG clips each brush against what follows
	var head, tail *Brush
	for _, l := range lists {
		for b := l; b != nil; {
			next := b.Next
			b.Next = nil
			if tail == nil {
				head = b
			} else {
				tail.Next = b
			}
			tail = b
			b = next
		}
	}
	e.Brushes = head
	return nil
}

// loadSourceBrushes builds the brushes of one source entity into the
// priority lists. For the world, folded group entities each pass
// through here with their own qualifiers.
func (e *Entity) loadSourceBrushes(md *mapfile.MapData, opts *Options,
	src *mapfile.Entity, lmshift, hullnum int, lists *[numPriorities]*Brush) error {

	me := e.Map
	isWorld := me == md.World()
	g := md.Game
	origin := e.Origin

	for _, mb := range src.Brushes {
		c := brushContents(g, mb)
		c = entityContents(g, src, c)

		if c.IsOrigin() {
			if isWorld {
				slog.Warn("ignoring origin brush in worldspawn", "line", mb.LineNum)
				continue
			}
			if hullnum <= 0 {
				if err := originFromBrush(md, opts, me, mb); err != nil {
					return err
				}
				origin = me.VectorForKey("origin")
				e.Origin = origin
				me.Origin = origin
				if me.Rotation == mapfile.RotationNone {
					me.Rotation = mapfile.RotationOriginBrush
				}
			}
			continue
		}
		if boolKey(src, "_omitbrushes") || omitClass(opts, c) {
			continue
		}

		if hullnum > 0 {
			// clip hulls carry only what blocks movement
			switch {
			case c.IsHint():
				continue
			case g.IsLiquid(c) && !(c.MirrorInside() && g.MirrorInsideClip()):
				continue
			case c.IsDetailIllusionary() || c.IsVisblocker():
				continue
			case g.IsEmpty(c):
				continue
			case c.IsClip() || g.IsSky(c):
				c = g.SolidContents()
			case !isWorld:
				// brush models are solid to movement
				keep := c.Extended & game.FlagNoClipSameType
				c = g.SolidContents()
				c.Extended |= keep
			default:
				keep := c.Extended & (game.FlagDetail | game.FlagDetailFence |
					game.FlagNoClipSameType)
				c = g.SolidContents()
				c.Extended |= keep
			}
		} else {
			if c.IsClip() && g.ID() != game.Quake2 {
				// clip brushes grow the model bounds but draw nothing
				b, err := LoadBrush(md, opts, mb, c, origin, hullnum)
				if err != nil {
					return err
				}
				if b != nil {
					e.Bounds.AddBounds(b.Bounds)
				}
				continue
			}
			if c.IsHint() {
				c = g.EmptyContents()
				c.Extended |= game.FlagHint
			}
		}

		b, err := LoadBrush(md, opts, mb, c, origin, hullnum)
		if err != nil {
			return err
		}
		if b == nil {
			continue
		}
		b.Lmshift = lmshift

		prio := priorityFor(g, b.Contents)
		b.Next = lists[prio]
		lists[prio] = b
		if hullnum == 0 {
			e.Bounds.AddBounds(b.Bounds)
		}
	}
	return nil
}
