// SPDX-License-Identifier: GPL-2.0-or-later

// Package winding provides convex coplanar polygon construction and
// clipping against half spaces.
package winding

import (
	"math"

	"gobsp/math/vec"
)

const (
	// MaxPoints bounds the vertex count of a face winding.
	MaxPoints = 64

	// OnEpsilon is the distance below which a point counts as on a plane.
	OnEpsilon = 1e-4
)

const (
	SideFront = iota
	SideBack
	SideOn
	SideCross
)

// A Winding is an ordered loop of coplanar vertices forming a convex
// polygon, clockwise as seen from the front of its plane.
type Winding []vec.Vec3

// Base returns a huge square on the plane, large enough to cover
// coordinates within extent.
func Base(normal vec.Vec3, dist float64, extent float64) Winding {
	axis := vec.MaxAxis(normal)
	var up vec.Vec3
	if axis == 2 {
		up.X = 1
	} else {
		up.Z = 1
	}
	v := vec.Dot(up, normal)
	up = vec.Add(up, normal.Scale(-v))
	up = up.Normalize()

	org := normal.Scale(dist)
	right := vec.Cross(up, normal)

	up = up.Scale(extent)
	right = right.Scale(extent)

	return Winding{
		vec.Add(vec.Sub(org, right), up),
		vec.Add(vec.Add(org, right), up),
		vec.Sub(vec.Add(org, right), up),
		vec.Sub(vec.Sub(org, right), up),
	}
}

func (w Winding) Copy() Winding {
	c := make(Winding, len(w))
	copy(c, w)
	return c
}

// Flip returns the winding in reverse order, facing the other way.
func (w Winding) Flip() Winding {
	f := make(Winding, len(w))
	for i, p := range w {
		f[len(w)-1-i] = p
	}
	return f
}

func (w Winding) Center() vec.Vec3 {
	var c vec.Vec3
	for _, p := range w {
		c = vec.Add(c, p)
	}
	return c.Scale(1 / float64(len(w)))
}

func (w Winding) Area() float64 {
	total := 0.0
	for i := 2; i < len(w); i++ {
		d1 := vec.Sub(w[i-1], w[0])
		d2 := vec.Sub(w[i], w[0])
		c := vec.Cross(d1, d2)
		total += 0.5 * c.Length()
	}
	return total
}

func (w Winding) Bounds() vec.Bounds {
	b := vec.EmptyBounds()
	for _, p := range w {
		b.AddPoint(p)
	}
	return b
}

// Plane derives the plane of the winding from its first three vertices.
func (w Winding) Plane() (vec.Vec3, float64) {
	d1 := vec.Sub(w[0], w[1])
	d2 := vec.Sub(w[2], w[1])
	n := vec.Cross(d1, d2)
	n = n.Normalize()
	return n, vec.Dot(w[0], n)
}

// PlaneSide classifies the whole winding against a plane.
func (w Winding) PlaneSide(normal vec.Vec3, dist, eps float64) int {
	front, back := false, false
	for _, p := range w {
		d := vec.Dot(p, normal) - dist
		if d < -eps {
			back = true
		} else if d > eps {
			front = true
		}
	}
	switch {
	case front && back:
		return SideCross
	case front:
		return SideFront
	case back:
		return SideBack
	default:
		return SideOn
	}
}

// Clip keeps the part of the winding in front of the plane. Points on
// the plane are kept when keepOn is set and the winding does not cross.
// Returns nil if nothing remains.
func (w Winding) Clip(normal vec.Vec3, dist, eps float64, keepOn bool) Winding {
	front, back := w.split(normal, dist, eps, keepOn)
	_ = back
	return front
}

// Split divides the winding by the plane. Either result may be nil. A
// winding entirely on the plane goes to the front.
func (w Winding) Split(normal vec.Vec3, dist, eps float64) (Winding, Winding) {
	return w.split(normal, dist, eps, true)
}

func (w Winding) split(normal vec.Vec3, dist, eps float64, keepOn bool) (Winding, Winding) {
	dists := make([]float64, len(w)+1)
	sides := make([]int, len(w)+1)
	counts := [3]int{}

	for i, p := range w {
		d := vec.Dot(p, normal) - dist
		dists[i] = d
		switch {
		case d > eps:
			sides[i] = SideFront
		case d < -eps:
			sides[i] = SideBack
		default:
			sides[i] = SideOn
		}
		counts[sides[i]]++
	}
	dists[len(w)] = dists[0]
	sides[len(w)] = sides[0]

	if counts[SideFront] == 0 && counts[SideBack] == 0 {
		// all on plane
		if keepOn {
			return w, nil
		}
		return nil, nil
	}
	if counts[SideBack] == 0 {
		return w, nil
	}
	if counts[SideFront] == 0 {
		return nil, w
	}

	var f, b Winding
	for i, p := range w {
		switch sides[i] {
		case SideOn:
			f = append(f, p)
			b = append(b, p)
			continue
		case SideFront:
			f = append(f, p)
		case SideBack:
			b = append(b, p)
		}
		if sides[i+1] == SideOn || sides[i+1] == sides[i] {
			continue
		}
		// generate the crossing point
		p2 := w[(i+1)%len(w)]
		frac := dists[i] / (dists[i] - dists[i+1])
		var mid vec.Vec3
		for j := 0; j < 3; j++ {
			// avoid roundoff on axial planes
			switch {
			case normal.Idx(j) == 1:
				mid.SetIdx(j, dist)
			case normal.Idx(j) == -1:
				mid.SetIdx(j, -dist)
			default:
				mid.SetIdx(j, p.Idx(j)+frac*(p2.Idx(j)-p.Idx(j)))
			}
		}
		f = append(f, mid)
		b = append(b, mid)
	}
	return f, b
}

// EpsilonEqual reports whether two windings describe the same polygon,
// allowing a rotation of the starting vertex but not a flip.
func EpsilonEqual(a, b Winding, eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for off := 0; off < len(b); off++ {
		match := true
		for i := range a {
			if !vec.EpsilonEqual(a[i], b[(i+off)%len(b)], eps) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Check verifies the winding is a convex polygon on the given plane:
// at least three vertices, every vertex within eps of the plane, no
// edge shorter than eps, and every other vertex behind each edge plane.
func (w Winding) Check(normal vec.Vec3, dist, eps float64) error {
	if len(w) < 3 {
		return ErrTooFewPoints
	}
	if len(w) > MaxPoints {
		return ErrTooManyPoints
	}
	for i, p := range w {
		d := vec.Dot(p, normal) - dist
		if math.Abs(d) > eps {
			return ErrOffPlane
		}
		next := w[(i+1)%len(w)]
		edge := vec.Sub(next, p)
		if edge.Length() < eps {
			return ErrShortEdge
		}
		// edge plane faces outward
		en := vec.Cross(normal, edge)
		en = en.Normalize()
		ed := vec.Dot(p, en)
		for j, q := range w {
			if j == i {
				continue
			}
			if vec.Dot(q, en)-ed > eps {
				return ErrConcave
			}
		}
	}
	return nil
}

// RemoveShortEdges drops vertices that start an edge shorter than eps.
// Returns the healed winding and how many vertices were removed.
func (w Winding) RemoveShortEdges(eps float64) (Winding, int) {
	out := make(Winding, 0, len(w))
	removed := 0
	for i, p := range w {
		next := w[(i+1)%len(w)]
		e := vec.Sub(next, p)
		if e.Length() < eps {
			removed++
			continue
		}
		out = append(out, p)
	}
	if removed == 0 {
		return w, 0
	}
	return out, removed
}
