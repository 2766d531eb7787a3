// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline turns flags and an optional YAML option file
// into compile options and file paths. Flags override file values.
package commandline

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"gobsp/bsp"
	"gobsp/game"
)

// Config is the flat option surface, shared between the flag set and
// the YAML option file.
type Config struct {
	Game    string `yaml:"game"`
	Verbose bool   `yaml:"verbose"`

	NoExpand   bool `yaml:"noexpand"`
	FullBevels bool `yaml:"fullbevels"`

	Midsplit  int `yaml:"midsplit"`
	MaxDepth  int `yaml:"maxdepth"`
	Subdivide int `yaml:"subdivide"`

	Transwater bool `yaml:"transwater"`
	Transsky   bool `yaml:"transsky"`
	ForcePRT1  bool `yaml:"forceprt1"`
	NoPRT      bool `yaml:"noprt"`

	IncludeSkip           bool `yaml:"includeskip"`
	OmitDetail            bool `yaml:"omitdetail"`
	OmitDetailWall        bool `yaml:"omitdetailwall"`
	OmitDetailFence       bool `yaml:"omitdetailfence"`
	OmitDetailIllusionary bool `yaml:"omitdetailillusionary"`

	ContentHack bool    `yaml:"contenthack"`
	LmScale     int     `yaml:"lmscale"`
	WorldExtent float64 `yaml:"worldextent"`
	Workers     int     `yaml:"workers"`
}

func defaultConfig() Config {
	return Config{
		Game:      "quake",
		MaxDepth:  512,
		Subdivide: 240,
	}
}

// Run is a parsed invocation: the compile options plus the resolved
// file paths.
type Run struct {
	Opts *bsp.Options

	MapFile string
	BSPFile string
	PRTFile string

	// SidecarFile receives the extended texinfo flags when needed.
	SidecarFile string

	NoPRT bool
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("gobsp", pflag.ContinueOnError)

	fs.String("options", "", "YAML option file, flags override its values")

	fs.StringVar(&cfg.Game, "game", cfg.Game, "target game: quake, quake2 or hexen2")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "debug level logging")

	fs.BoolVar(&cfg.NoExpand, "noexpand", cfg.NoExpand, "skip the clipping hulls")
	fs.BoolVar(&cfg.FullBevels, "fullbevels", cfg.FullBevels,
		"add edge bevel planes to the clipping hulls")

	fs.IntVar(&cfg.Midsplit, "midsplit", cfg.Midsplit,
		"split this many top tree levels at the bounds midpoint")
	fs.IntVar(&cfg.MaxDepth, "maxdepth", cfg.MaxDepth, "tree recursion limit")
	fs.IntVar(&cfg.Subdivide, "subdivide", cfg.Subdivide,
		"maximum texture extent of a drawn face")

	fs.BoolVar(&cfg.Transwater, "transwater", cfg.Transwater,
		"open water portals for vis")
	fs.BoolVar(&cfg.Transsky, "transsky", cfg.Transsky, "open sky portals for vis")
	fs.BoolVar(&cfg.ForcePRT1, "forceprt1", cfg.ForcePRT1,
		"write PRT1 even with detail brushes")
	fs.BoolVar(&cfg.NoPRT, "noprt", cfg.NoPRT, "skip the portal file")

	fs.BoolVar(&cfg.IncludeSkip, "includeskip", cfg.IncludeSkip,
		"keep skip textured faces in the output")
	fs.BoolVar(&cfg.OmitDetail, "omitdetail", cfg.OmitDetail, "drop func_detail brushes")
	fs.BoolVar(&cfg.OmitDetailWall, "omitdetailwall", cfg.OmitDetailWall,
		"drop func_detail_wall brushes")
	fs.BoolVar(&cfg.OmitDetailFence, "omitdetailfence", cfg.OmitDetailFence,
		"drop func_detail_fence brushes")
	fs.BoolVar(&cfg.OmitDetailIllusionary, "omitdetailillusionary",
		cfg.OmitDetailIllusionary, "drop func_detail_illusionary brushes")

	fs.BoolVar(&cfg.ContentHack, "contenthack", cfg.ContentHack,
		"export detail illusionary liquids as empty")
	fs.IntVar(&cfg.LmScale, "lmscale", cfg.LmScale,
		"force this lightmap scale on all models")
	fs.Float64Var(&cfg.WorldExtent, "worldextent", cfg.WorldExtent,
		"absolute coordinate bound, 0 keeps the default")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers,
		"parallel tree builds, 0 means GOMAXPROCS")

	return fs
}

// optionsFile extracts the -options value without tripping over the
// flags the real parse owns.
func optionsFile(args []string) (string, error) {
	fs := newFlagSet(&Config{})
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return fs.GetString("options")
}

func loadOptionsFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "option file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "option file %s", path)
	}
	return nil
}

// replaceExt swaps the extension of a map path, keeping the directory.
func replaceExt(path, ext string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		return path[:i] + ext
	}
	return path + ext
}

func (c *Config) toOptions() (*bsp.Options, error) {
	g, err := game.ForName(c.Game)
	if err != nil {
		return nil, err
	}
	opts := bsp.DefaultOptions(g)

	switch {
	case c.NoExpand:
		opts.HullExpansion = bsp.ExpandNone
	case c.FullBevels:
		opts.HullExpansion = bsp.ExpandFullBevels
	}

	opts.MidsplitLevels = c.Midsplit
	if c.MaxDepth > 0 {
		opts.MaxDepth = c.MaxDepth
	}
	if c.Subdivide > 0 {
		opts.Subdivide = c.Subdivide
	}

	opts.Transwater = c.Transwater
	opts.Transsky = c.Transsky
	opts.ForcePRT1 = c.ForcePRT1
	opts.IncludeSkip = c.IncludeSkip
	opts.OmitDetail = c.OmitDetail
	opts.OmitDetailWall = c.OmitDetailWall
	opts.OmitDetailFence = c.OmitDetailFence
	opts.OmitDetailIllusionary = c.OmitDetailIllusionary
	opts.ContentHack = c.ContentHack
	opts.ForcedLightmapScale = c.LmScale
	if c.WorldExtent > 0 {
		opts.WorldExtent = c.WorldExtent
	}
	opts.Workers = c.Workers
	opts.Verbose = c.Verbose
	return opts, nil
}

// Parse reads the argument list. The map file is the first positional
// argument, the bsp path an optional second one.
func Parse(args []string) (*Run, error) {
	cfg := defaultConfig()

	path, err := optionsFile(args)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadOptionsFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	fs := newFlagSet(&cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		return nil, errors.New("usage: gobsp [flags] file.map [file.bsp]")
	}

	opts, err := cfg.toOptions()
	if err != nil {
		return nil, err
	}

	run := &Run{
		Opts:    opts,
		MapFile: rest[0],
		NoPRT:   cfg.NoPRT,
	}
	if len(rest) == 2 {
		run.BSPFile = rest[1]
	} else {
		run.BSPFile = replaceExt(run.MapFile, ".bsp")
	}
	run.PRTFile = replaceExt(run.BSPFile, ".prt")
	run.SidecarFile = replaceExt(run.BSPFile, ".texinfo")
	return run, nil
}
