// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobsp/bsp"
	"gobsp/game"
)

func TestParseDefaults(t *testing.T) {
	run, err := Parse([]string{"e1m1.map"})
	require.NoError(t, err)

	assert.Equal(t, "e1m1.map", run.MapFile)
	assert.Equal(t, "e1m1.bsp", run.BSPFile)
	assert.Equal(t, "e1m1.prt", run.PRTFile)
	assert.Equal(t, "e1m1.texinfo", run.SidecarFile)
	assert.False(t, run.NoPRT)

	assert.Equal(t, game.Quake, run.Opts.Game.ID())
	assert.Equal(t, bsp.ExpandStandard, run.Opts.HullExpansion)
	assert.Equal(t, 512, run.Opts.MaxDepth)
	assert.Equal(t, 240, run.Opts.Subdivide)
}

func TestParseFlags(t *testing.T) {
	run, err := Parse([]string{
		"--game", "hexen2",
		"--fullbevels",
		"--midsplit", "4",
		"--transwater",
		"--noprt",
		"--lmscale", "8",
		"maps/test.map", "out/test.bsp",
	})
	require.NoError(t, err)

	assert.Equal(t, game.Hexen2, run.Opts.Game.ID())
	assert.Equal(t, bsp.ExpandFullBevels, run.Opts.HullExpansion)
	assert.Equal(t, 4, run.Opts.MidsplitLevels)
	assert.True(t, run.Opts.Transwater)
	assert.True(t, run.NoPRT)
	assert.Equal(t, 8, run.Opts.ForcedLightmapScale)

	assert.Equal(t, "out/test.bsp", run.BSPFile)
	assert.Equal(t, "out/test.prt", run.PRTFile)
}

func TestParseOptionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"game: quake2\nsubdivide: 128\ntranssky: true\n"), 0o644))

	run, err := Parse([]string{"--options", path, "base1.map"})
	require.NoError(t, err)

	assert.Equal(t, game.Quake2, run.Opts.Game.ID())
	assert.Equal(t, 128, run.Opts.Subdivide)
	assert.True(t, run.Opts.Transsky)
}

func TestParseFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subdivide: 128\n"), 0o644))

	run, err := Parse([]string{"--options", path, "--subdivide", "64", "m.map"})
	require.NoError(t, err)
	assert.Equal(t, 64, run.Opts.Subdivide)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]string{})
	assert.Error(t, err)

	_, err = Parse([]string{"--game", "doom", "m.map"})
	assert.Error(t, err)

	_, err = Parse([]string{"a.map", "b.bsp", "c"})
	assert.Error(t, err)
}
