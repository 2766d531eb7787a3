// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import "gobsp/game"

// HullExpansionMode selects how much bevel work the clip hull builder
// does.
type HullExpansionMode int

const (
	// ExpandNone disables clipping hulls entirely.
	ExpandNone HullExpansionMode = iota
	// ExpandStandard pushes the face planes and adds axial bounding
	// planes.
	ExpandStandard
	// ExpandFullBevels additionally adds edge bevel planes between
	// non-axial faces.
	ExpandFullBevels
)

// Options is the full compile configuration. The zero value is not
// usable, call DefaultOptions.
type Options struct {
	Game game.Game

	// HullExpansion governs the clip hull builder for games that carry
	// player sized hulls.
	HullExpansion HullExpansionMode

	// MidsplitLevels is the number of top tree levels split at the
	// bounds midpoint instead of by surface heuristic. Zero means the
	// heuristic runs everywhere.
	MidsplitLevels int

	// MaxDepth caps tree recursion. Exceeding it fails the compile
	// with ErrTooDeep.
	MaxDepth int

	// WorldExtent bounds all geometry and sizes the base windings.
	WorldExtent float64

	// Subdivide is the maximum texture extent of a drawn face before
	// it is chopped for the lightmap builder.
	Subdivide int

	// Transwater and Transsky open water and sky portals for vis.
	Transwater bool
	Transsky   bool

	// ForcePRT1 writes the PRT1 format even when detail brushes would
	// call for PRT2.
	ForcePRT1 bool

	// IncludeSkip keeps skip textured faces in the output instead of
	// dropping them.
	IncludeSkip bool

	// OmitDetail and friends drop the matching detail classes after
	// parsing, before any geometry runs.
	OmitDetail            bool
	OmitDetailWall        bool
	OmitDetailFence       bool
	OmitDetailIllusionary bool

	// ContentHack treats func_detail_illusionary water as empty for
	// older engines.
	ContentHack bool

	// ForcedLightmapScale overrides per entity _lmscale when positive.
	ForcedLightmapScale int

	// Workers bounds parallel entity compilation. Zero means
	// GOMAXPROCS.
	Workers int

	// Verbose raises the log level for per stage statistics.
	Verbose bool
}

// DefaultOptions returns the options a plain compile uses.
func DefaultOptions(g game.Game) *Options {
	return &Options{
		Game:          g,
		HullExpansion: ExpandStandard,
		MaxDepth:      512,
		WorldExtent:   65536,
		Subdivide:     240,
	}
}
