// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"io"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"gobsp/bspfile"
	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
)

// Result is a fully compiled map, ready for serialisation.
type Result struct {
	BSP *bspfile.Data

	// TexFlags is the extended texinfo sidecar, one entry per output
	// texinfo.
	TexFlags []uint32
}

// collectEntities wraps the map entities that become models: the world
// first, then every brush entity not folded into it. Brush models get
// their *N reference written back into the entity lump.
func collectEntities(md *mapfile.MapData) []*Entity {
	out := []*Entity{{Map: md.World()}}
	model := 0
	for _, me := range md.Entities[1:] {
		if len(me.Brushes) == 0 || mapfile.IsWorldBrushEntity(me) {
			continue
		}
		model++
		me.SetKeyValue("model", "*"+strconv.Itoa(model))
		out = append(out, &Entity{Map: me, ModelNumber: model})
	}
	return out
}

func hullCount(opts *Options) int {
	if opts.HullExpansion == ExpandNone {
		return 1
	}
	return len(opts.Game.HullSizes())
}

// modelHulls is the headnode array length of the output format.
func modelHulls(g game.Game) int {
	if g.ID() == game.Hexen2 {
		return bspfile.MaxModelHulls
	}
	return 4
}

// emptyTree stands in for a hull without brushes, a single empty leaf.
func emptyTree(g game.Game) *Tree {
	leaf := &Node{
		Planenum:     planenumLeaf,
		Contents:     g.EmptyContents(),
		VisLeafNum:   -1,
		VisCluster:   -1,
		OutputNumber: -1,
	}
	return &Tree{HeadNode: leaf, Bounds: vec.EmptyBounds()}
}

type hullJob struct {
	e        *Entity
	hull     int
	surfaces *Surface
}

// Compile runs the whole pipeline: brush loading, CSG, tree building,
// t junction healing and export. When prt is non nil the world's
// portal graph is written to it for the vis stage.
func Compile(md *mapfile.MapData, opts *Options, prt io.Writer) (*Result, error) {
	g := opts.Game
	entities := collectEntities(md)
	hulls := hullCount(opts)

	// brush loading and CSG insert into the shared pools, so they run
	// serially; the tree builds only read them
	var jobs []*hullJob
	for _, e := range entities {
		e.Trees = make([]*Tree, hulls)
		for h := 0; h < hulls; h++ {
			if err := LoadEntityBrushes(md, opts, e, h); err != nil {
				return nil, err
			}
			if e.Brushes == nil {
				if h == 0 && e.ModelNumber == 0 {
					return nil, errors.New("no world brushes")
				}
				e.Trees[h] = emptyTree(g)
				continue
			}
			jobs = append(jobs, &hullJob{e: e, hull: h, surfaces: CSGFaces(md, e)})
			e.Brushes = nil
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			tree, err := SolidBSP(md, opts, j.surfaces, j.hull != 0)
			if err != nil {
				return errors.Wrapf(err, "model %d hull %d", j.e.ModelNumber, j.hull)
			}
			if j.hull == 0 {
				// clip brushes grow the entity bounds but make no
				// surfaces, so the tree bounds pick them up here
				tree.Bounds.AddBounds(j.e.Bounds.Expand(sideSpace))
				TJunc(tree)
			}
			j.e.Trees[j.hull] = tree
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if prt != nil {
		world := entities[0].Trees[0]
		Portalize(md, opts, world)
		if err := WritePortalFile(md, opts, world, prt); err != nil {
			return nil, err
		}
		FreeTreePortals(world)
	}

	ex := newExporter(md, opts)
	for _, e := range entities {
		if err := ex.exportEntity(e); err != nil {
			return nil, err
		}
	}
	ex.out.Entities = md.WriteEntitiesToString()
	ex.out.HullsPerModel = modelHulls(g)
	ex.finish()

	slog.Info("compile", "models", len(entities), "hulls", hulls)
	return &Result{BSP: ex.out, TexFlags: ex.texFlags}, nil
}
