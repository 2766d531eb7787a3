// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"math"

	"gobsp/math/vec"
)

// ZeroEpsilon is the tolerance used to snap texture vector components
// and to reject degenerate projections.
const ZeroEpsilon = 0.001

var baseaxis = [18]vec.Vec3{
	{0, 0, 1}, {1, 0, 0}, {0, -1, 0}, // floor
	{0, 0, -1}, {1, 0, 0}, {0, -1, 0}, // ceiling
	{1, 0, 0}, {0, 1, 0}, {0, 0, -1}, // west wall
	{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}, // east wall
	{0, 1, 0}, {1, 0, 0}, {0, 0, -1}, // south wall
	{0, -1, 0}, {1, 0, 0}, {0, 0, -1}, // north wall
}

// TextureAxisFromPlane picks the base s,t axes for the plane, the
// pair belonging to the base axis the normal agrees with most.
func TextureAxisFromPlane(p Plane) (xv, yv, snapped vec.Vec3) {
	best := 0.0
	bestaxis := 0
	for i := 0; i < 6; i++ {
		dot := vec.Dot(p.Normal, baseaxis[i*3])
		if dot > best {
			best = dot
			bestaxis = i
		}
	}
	return baseaxis[bestaxis*3+1], baseaxis[bestaxis*3+2], baseaxis[bestaxis*3]
}

// TexVecsQuakeEd builds texture vectors from the classic shift,
// rotate, scale fields.
func TexVecsQuakeEd(p Plane, shift [2]float64, rotate float64, scale [2]float64) [2][4]float64 {
	xv, yv, _ := TextureAxisFromPlane(p)
	vecs := [2]vec.Vec3{xv, yv}

	ang := rotate / 180 * math.Pi
	sinv, cosv := math.Sin(ang), math.Cos(ang)

	sv := 2
	if vecs[0].X != 0 {
		sv = 0
	} else if vecs[0].Y != 0 {
		sv = 1
	}
	tv := 2
	if vecs[1].X != 0 {
		tv = 0
	} else if vecs[1].Y != 0 {
		tv = 1
	}

	for i := 0; i < 2; i++ {
		ns := cosv*vecs[i].Idx(sv) - sinv*vecs[i].Idx(tv)
		nt := sinv*vecs[i].Idx(sv) + cosv*vecs[i].Idx(tv)
		vecs[i].SetIdx(sv, ns)
		vecs[i].SetIdx(tv, nt)
	}

	var out [2][4]float64
	for i := 0; i < 2; i++ {
		s := scale[i]
		if s == 0 {
			s = 1
		}
		for j := 0; j < 3; j++ {
			out[i][j] = vecs[i].Idx(j) / s
		}
		out[i][3] = shift[i]
	}
	return out
}

// TexVecsValve220 builds texture vectors from explicit axes.
func TexVecsValve220(axis [2]vec.Vec3, shift [2]float64, scale [2]float64) [2][4]float64 {
	var out [2][4]float64
	for i := 0; i < 2; i++ {
		s := scale[i]
		if s == 0 {
			s = 1
		}
		for j := 0; j < 3; j++ {
			out[i][j] = axis[i].Idx(j) / s
		}
		out[i][3] = shift[i]
	}
	return out
}

// ComputeAxisBase computes the brush primitives base axes. Editors use
// the identical construction, the two must stay in lockstep.
func ComputeAxisBase(normal vec.Vec3) (texX, texY vec.Vec3) {
	if math.Abs(normal.X) < 1e-6 {
		normal.X = 0
	}
	if math.Abs(normal.Y) < 1e-6 {
		normal.Y = 0
	}
	if math.Abs(normal.Z) < 1e-6 {
		normal.Z = 0
	}

	rotY := -math.Atan2(normal.Z, math.Sqrt(normal.Y*normal.Y+normal.X*normal.X))
	rotZ := math.Atan2(normal.Y, normal.X)

	texX = vec.Vec3{-math.Sin(rotZ), math.Cos(rotZ), 0}
	texY = vec.Vec3{
		-math.Sin(rotY) * math.Cos(rotZ),
		-math.Sin(rotY) * math.Sin(rotZ),
		-math.Cos(rotY),
	}
	return texX, texY
}

// TexVecsBrushPrimitives converts a 2x3 texture matrix into texture
// vectors, scaled by the texture dimensions.
func TexVecsBrushPrimitives(texMat [2][3]float64, normal vec.Vec3, width, height int) [2][4]float64 {
	texX, texY := ComputeAxisBase(normal)
	size := [2]float64{float64(width), float64(height)}

	var out [2][4]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = size[i] * (texX.Idx(j)*texMat[i][0] + texY.Idx(j)*texMat[i][1])
		}
		out[i][3] = size[i] * texMat[i][2]
	}
	return out
}

// ValidTextureProjection reports whether the s and t vectors span a
// plane that is not perpendicular to the face.
func ValidTextureProjection(faceNormal vec.Vec3, vecs [2][4]float64) bool {
	s := vec.Vec3{vecs[0][0], vecs[0][1], vecs[0][2]}
	t := vec.Vec3{vecs[1][0], vecs[1][1], vecs[1][2]}
	c := vec.Cross(s, t)
	texNormal := c.Normalize()
	if math.IsNaN(texNormal.X) || math.IsNaN(texNormal.Y) || math.IsNaN(texNormal.Z) {
		return false
	}
	if texNormal == (vec.Vec3{}) {
		return false
	}
	cosangle := vec.Dot(texNormal, faceNormal)
	if math.IsNaN(cosangle) || math.Abs(cosangle) < ZeroEpsilon {
		return false
	}
	return true
}

// roundTexVecs snaps components within ZeroEpsilon of an integer.
func roundTexVecs(vecs *[2][4]float64) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			r := math.Round(vecs[i][j])
			if math.Abs(vecs[i][j]-r) < ZeroEpsilon {
				vecs[i][j] = r
			}
		}
	}
}
