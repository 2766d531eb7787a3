// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"math"

	"github.com/pkg/errors"

	"gobsp/math/vec"
	"gobsp/winding"
)

const (
	PlaneX = iota
	PlaneY
	PlaneZ
	PlaneAnyX
	PlaneAnyY
	PlaneAnyZ
)

const (
	SideFront = 0
	SideBack  = 1
)

// OnEpsilon is the tolerance of all plane distance comparisons.
const OnEpsilon = winding.OnEpsilon

// ErrInvalidPlane reports a plane whose normal is not unit length.
var ErrInvalidPlane = errors.New("invalid plane")

// A Plane is an oriented half space boundary. Stored pool planes are
// canonical: axial components snapped, dominant normal component
// positive.
type Plane struct {
	Normal vec.Vec3
	Dist   float64
	Type   byte
}

func (p Plane) Flip() Plane {
	return Plane{
		Normal: p.Normal.Neg(),
		Dist:   -p.Dist,
		Type:   p.Type,
	}
}

func (p Plane) DistanceTo(pt vec.Vec3) float64 {
	return vec.Dot(pt, p.Normal) - p.Dist
}

func (p Plane) EpsilonEqual(o Plane) bool {
	return vec.EpsilonEqual(p.Normal, o.Normal, OnEpsilon) &&
		math.Abs(p.Dist-o.Dist) < OnEpsilon
}

// PlaneFromPoints derives the plane through three points, clockwise
// as seen from the front. Reports false for a degenerate
// triple.
func PlaneFromPoints(pts [3]vec.Vec3) (Plane, bool) {
	d1 := vec.Sub(pts[0], pts[1])
	d2 := vec.Sub(pts[2], pts[1])
	n := vec.Cross(d1, d2)
	if n.Length() == 0 {
		return Plane{}, false
	}
	n = n.Normalize()
	return Plane{
		Normal: n,
		Dist:   vec.Dot(pts[1], n),
	}, true
}

// normalize snaps axial planes, tags the type and, when flip is
// allowed, turns the plane so its dominant normal component is
// positive. Reports whether the plane was flipped.
func (p *Plane) normalize(flip bool) bool {
	n := &p.Normal
	for i := 0; i < 3; i++ {
		if n.Idx(i) == 1.0 {
			n.SetIdx((i+1)%3, 0)
			n.SetIdx((i+2)%3, 0)
			p.Type = byte(PlaneX + i)
			return false
		}
		if n.Idx(i) == -1.0 {
			if flip {
				n.SetIdx(i, 1.0)
				p.Dist = -p.Dist
			}
			n.SetIdx((i+1)%3, 0)
			n.SetIdx((i+2)%3, 0)
			p.Type = byte(PlaneX + i)
			return flip
		}
	}

	ax := math.Abs(n.X)
	ay := math.Abs(n.Y)
	az := math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		p.Type = PlaneAnyX
	case ay >= ax && ay >= az:
		p.Type = PlaneAnyY
	default:
		p.Type = PlaneAnyZ
	}

	if flip && n.Idx(int(p.Type-PlaneAnyX)) < 0 {
		*p = p.Flip()
		return true
	}
	return false
}

func planeHash(p Plane) int {
	return int(math.Round(math.Abs(p.Dist)))
}

func (m *MapData) newPlane(p Plane, wantSide bool) (int, int, error) {
	l := p.Normal.Length()
	if l < 1-OnEpsilon || l > 1+OnEpsilon {
		return 0, 0, errors.Wrapf(ErrInvalidPlane, "normal length %.4f", l)
	}

	side := SideFront
	if p.normalize(wantSide) {
		side = SideBack
	}
	num := len(m.Planes)
	m.Planes = append(m.Planes, p)
	h := planeHash(p)
	m.planeHash[h] = append(m.planeHash[h], num)
	return num, side, nil
}

// FindPlane returns a pool plane number and the side that is the
// caller's front. Equivalent planes converge on one number.
func (m *MapData) FindPlane(p Plane) (int, int, error) {
	m.planeMu.Lock()
	defer m.planeMu.Unlock()

	for _, i := range m.planeHash[planeHash(p)] {
		stored := m.Planes[i]
		if stored.EpsilonEqual(p) {
			return i, SideFront, nil
		}
		if stored.Flip().EpsilonEqual(p) {
			return i, SideBack, nil
		}
	}
	return m.newPlane(p, true)
}

// FindExactPlane matches without flipping, inserting the plane as
// given when absent.
func (m *MapData) FindExactPlane(p Plane) (int, error) {
	m.planeMu.Lock()
	defer m.planeMu.Unlock()

	for _, i := range m.planeHash[planeHash(p)] {
		if m.Planes[i].EpsilonEqual(p) {
			return i, nil
		}
	}
	num, _, err := m.newPlane(p, false)
	return num, err
}
