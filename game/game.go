// SPDX-License-Identifier: GPL-2.0-or-later

package game

import (
	"github.com/pkg/errors"

	"gobsp/math/vec"
)

type ID int

const (
	Quake ID = iota
	Quake2
	Hexen2
)

// A Hull is the axis aligned box a clipping hull is expanded by.
type Hull struct {
	Min, Max vec.Vec3
}

// Game is the capability object swapped by target_game. It owns
// content construction, classification, portal visibility and the
// clipping hull table.
type Game interface {
	ID() ID

	SolidContents() Contents
	EmptyContents() Contents
	SkyContents() Contents
	// LiquidContents builds a liquid class from a native value
	// (CONTENTS_WATER, CONTENTS_SLIME, CONTENTS_LAVA or the Q2 bits).
	LiquidContents(native int32) Contents
	ExtendedContents(f ExtFlags) Contents

	IsEmpty(c Contents) bool
	IsSolid(c Contents) bool
	IsSky(c Contents) bool
	IsLiquid(c Contents) bool

	// PortalCanSeeThrough reports whether vision passes a portal
	// bordered by the two cluster contents.
	PortalCanSeeThrough(c0, c1 Contents, transwater, transsky bool) bool
	// ClusterContents combines two sibling contents into the
	// contents of their common cluster.
	ClusterContents(c0, c1 Contents) Contents

	// HullSizes returns the expansion boxes, hull 0 first (a point).
	HullSizes() []Hull

	ValidateLeafContents(c Contents) bool
	// RemapForExport rewrites compiler-internal classes into ones a
	// stock engine understands.
	RemapForExport(c Contents) Contents

	// HasClusters reports whether the game's visibility data is built
	// per cluster rather than per leaf. Quake 2 does so and still writes
	// a PRT1 portal file, keyed by cluster.
	HasClusters() bool
	// MirrorInsideClip reports whether liquid brushes marked
	// _mirrorinside stay in the clipping hulls.
	MirrorInsideClip() bool
}

// ForName returns the capability object for a target game name.
func ForName(name string) (Game, error) {
	switch name {
	case "q1", "quake":
		return QuakeGame(), nil
	case "q2", "quake2":
		return Quake2Game(), nil
	case "hexen2", "h2":
		return Hexen2Game(), nil
	}
	return nil, errors.Errorf("unknown target game %q", name)
}
