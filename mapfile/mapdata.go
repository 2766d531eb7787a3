// SPDX-License-Identifier: GPL-2.0-or-later

// Package mapfile parses .map source text into entities, brushes and
// faces, and owns the shared plane, texinfo and miptex pools.
package mapfile

import (
	"sync"

	"gobsp/game"
)

// Miptex is one entry of the texture name pool. Flags and Value are
// only meaningful for Quake 2 maps.
type Miptex struct {
	Name  string
	Flags int32
	Value int32
}

// MapData is the shared state of one compile: the parsed entities plus
// the append-only pools. The pools may be hit from several goroutines,
// insertion is mutex guarded.
type MapData struct {
	Entities []*Entity

	planeMu   sync.Mutex
	Planes    []Plane
	planeHash map[int][]int

	texMu         sync.Mutex
	TexInfos      []TexInfo
	texinfoLookup map[TexInfo]int

	mipMu  sync.Mutex
	Miptex []Miptex

	Game game.Game
}

func NewMapData(g game.Game) *MapData {
	return &MapData{
		planeHash:     make(map[int][]int),
		texinfoLookup: make(map[TexInfo]int),
		Game:          g,
	}
}

// World returns the worldspawn entity.
func (m *MapData) World() *Entity {
	return m.Entities[0]
}

// PlaneAbs returns the pool plane, flipped to the front orientation
// for the given side.
func (m *MapData) PlaneAbs(num int, side int) Plane {
	p := m.Planes[num]
	if side == SideBack {
		return p.Flip()
	}
	return p
}

// Rotation is the rotation regime of a brush entity.
type Rotation int

const (
	RotationNone Rotation = iota
	RotationOriginBrush
	RotationHipnotic
)
