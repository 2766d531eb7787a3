// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"testing"
)

var (
	NULL = Vec3{}
)

func TestLength(t *testing.T) {
	if NULL.Length() != 0 {
		t.Errorf("Null vector has not 0 length")
	}
	v := Vec3{2, 2, 1}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{2, 1, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{1, 2, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
}

func TestAdd(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Add(NULL, v)
	if v != got {
		t.Errorf("Adding a null vector changed the vector")
	}
	got = Add(v, NULL)
	if v != got {
		t.Errorf("Adding a null vector changed the vector")
	}
	got = Add(v, v)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("Add(%v,%v) = %v want %v", v, v, got, want)
	}
}

func TestSub(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Sub(v, NULL)
	if v != got {
		t.Errorf("Substracting a null vector changed the vector")
	}
	got = Sub(v, v)
	if got != NULL {
		t.Errorf("Sub(%v,%v) = %v want %v", v, v, got, NULL)
	}
	v2 := Vec3{9, 7, 5}
	got = Sub(v2, v)
	want := Vec3{8, 5, 2}
	if got != want {
		t.Errorf("Sub(%v,%v) = %v want %v", v2, v, got, want)
	}
}

func TestCross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := Vec3{0, 0, 1}
	if got := Cross(x, y); got != z {
		t.Errorf("Cross(%v,%v) = %v want %v", x, y, got, z)
	}
	if got := Cross(y, x); got != z.Neg() {
		t.Errorf("Cross(%v,%v) = %v want %v", y, x, got, z.Neg())
	}
}

func TestNormalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	got := v.Normalize()
	want := Vec3{0.6, 0, 0.8}
	if !EpsilonEqual(got, want, 1e-12) {
		t.Errorf("Normalize(%v) = %v want %v", v, got, want)
	}
	if got := NULL.Normalize(); got != NULL {
		t.Errorf("Normalize of a null vector is not null")
	}
}

func TestDot(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}
	if got := Dot(a, b); got != 12 {
		t.Errorf("Dot(%v,%v) = %v want 12", a, b, got)
	}
}

func TestMaxAxis(t *testing.T) {
	if got := MaxAxis(Vec3{-3, 2, 1}); got != 0 {
		t.Errorf("MaxAxis = %d want 0", got)
	}
	if got := MaxAxis(Vec3{0, 0, -1}); got != 2 {
		t.Errorf("MaxAxis = %d want 2", got)
	}
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	if !b.Empty() {
		t.Errorf("EmptyBounds is not empty")
	}
	b.AddPoint(Vec3{-16, 8, 0})
	b.AddPoint(Vec3{16, -8, 32})
	if b.Min != (Vec3{-16, -8, 0}) || b.Max != (Vec3{16, 8, 32}) {
		t.Errorf("bounds %v %v", b.Min, b.Max)
	}
	// x and z tie at 32; the first axis wins
	if b.LongestAxis() != 0 {
		t.Errorf("LongestAxis = %d want 0", b.LongestAxis())
	}
	e := b.Expand(8)
	if e.Min != (Vec3{-24, -16, -8}) || e.Max != (Vec3{24, 16, 40}) {
		t.Errorf("expand %v %v", e.Min, e.Max)
	}
}
