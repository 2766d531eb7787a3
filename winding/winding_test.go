// SPDX-License-Identifier: GPL-2.0-or-later

package winding

import (
	"testing"

	"gobsp/math/vec"
)

func TestBase(t *testing.T) {
	n := vec.Vec3{0, 0, 1}
	w := Base(n, 16, 1<<16)
	if len(w) != 4 {
		t.Fatalf("base winding has %d points", len(w))
	}
	for _, p := range w {
		if p.Z != 16 {
			t.Errorf("point %v not on plane z=16", p)
		}
	}
	gn, gd := w.Plane()
	if !vec.EpsilonEqual(gn, n, 1e-9) || gd != 16 {
		t.Errorf("Plane() = %v %v", gn, gd)
	}
	if err := w.Check(n, 16, OnEpsilon); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func square(z float64) Winding {
	return Winding{
		{-16, -16, z},
		{-16, 16, z},
		{16, 16, z},
		{16, -16, z},
	}
}

func TestSplit(t *testing.T) {
	w := square(0)
	f, b := w.Split(vec.Vec3{1, 0, 0}, 0, OnEpsilon)
	if f == nil || b == nil {
		t.Fatalf("split lost a side")
	}
	if f.Area() != b.Area() {
		t.Errorf("front area %v != back area %v", f.Area(), b.Area())
	}
	if f.Area() != 512 {
		t.Errorf("front area %v want 512", f.Area())
	}
	for _, p := range f {
		if p.X < 0 {
			t.Errorf("front point %v behind plane", p)
		}
	}
}

func TestSplitAllFront(t *testing.T) {
	w := square(0)
	f, b := w.Split(vec.Vec3{1, 0, 0}, -32, OnEpsilon)
	if b != nil {
		t.Errorf("back should be empty")
	}
	if len(f) != 4 {
		t.Errorf("front should keep the winding")
	}
}

func TestClipKeepOn(t *testing.T) {
	w := square(0)
	if got := w.Clip(vec.Vec3{0, 0, 1}, 0, OnEpsilon, true); len(got) != 4 {
		t.Errorf("coplanar winding dropped with keepOn")
	}
	if got := w.Clip(vec.Vec3{0, 0, 1}, 0, OnEpsilon, false); got != nil {
		t.Errorf("coplanar winding kept without keepOn")
	}
}

func TestFlip(t *testing.T) {
	w := square(8)
	f := w.Flip()
	n, d := w.Plane()
	fn, fd := f.Plane()
	if !vec.EpsilonEqual(fn, n.Neg(), 1e-9) || fd != -d {
		t.Errorf("flip plane %v %v, want %v %v", fn, fd, n.Neg(), -d)
	}
}

func TestCheckConcave(t *testing.T) {
	w := Winding{
		{0, 0, 0},
		{0, 16, 0},
		{4, 4, 0}, // dent
		{16, 16, 0},
		{16, 0, 0},
	}
	n, d := vec.Vec3{0, 0, 1}, 0.0
	if err := w.Check(n, d, OnEpsilon); err == nil {
		t.Errorf("concave winding passed Check")
	}
}

func TestRemoveShortEdges(t *testing.T) {
	w := square(0)
	w = append(w[:2], append(Winding{{-16 + 1e-6, 16, 0}}, w[2:]...)...)
	healed, n := w.RemoveShortEdges(OnEpsilon)
	if n != 1 || len(healed) != 4 {
		t.Errorf("healed %d removed %d", len(healed), n)
	}
}

func TestPlaneSide(t *testing.T) {
	w := square(8)
	up := vec.Vec3{0, 0, 1}
	if got := w.PlaneSide(up, 0, OnEpsilon); got != SideFront {
		t.Errorf("side = %d want front", got)
	}
	if got := w.PlaneSide(up, 16, OnEpsilon); got != SideBack {
		t.Errorf("side = %d want back", got)
	}
	if got := w.PlaneSide(up, 8, OnEpsilon); got != SideOn {
		t.Errorf("side = %d want on", got)
	}
	if got := w.PlaneSide(vec.Vec3{1, 0, 0}, 0, OnEpsilon); got != SideCross {
		t.Errorf("side = %d want cross", got)
	}
}
