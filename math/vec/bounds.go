// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"math"
)

// Bounds is an axis aligned box. A zero value is not useful, use
// EmptyBounds so the first AddPoint wins on every axis.
type Bounds struct {
	Min, Max Vec3
}

func EmptyBounds() Bounds {
	return Bounds{
		Min: Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

func (b *Bounds) AddPoint(p Vec3) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Min.Z = math.Min(b.Min.Z, p.Z)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	b.Max.Z = math.Max(b.Max.Z, p.Z)
}

func (b *Bounds) AddBounds(o Bounds) {
	b.AddPoint(o.Min)
	b.AddPoint(o.Max)
}

// Expand grows the box by d on every axis, negative d shrinks it.
func (b Bounds) Expand(d float64) Bounds {
	e := Vec3{d, d, d}
	return Bounds{
		Min: Sub(b.Min, e),
		Max: Add(b.Max, e),
	}
}

func (b *Bounds) Empty() bool {
	return b.Min.X > b.Max.X
}

func (b *Bounds) Center() Vec3 {
	return Add(b.Min, b.Max).Scale(0.5)
}

func (b *Bounds) Size() Vec3 {
	return Sub(b.Max, b.Min)
}

// LongestAxis returns the axis index with the largest extent.
func (b *Bounds) LongestAxis() int {
	s := b.Size()
	return MaxAxis(s)
}

func (b *Bounds) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func (b *Bounds) Overlaps(o Bounds) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}
