// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
	"gobsp/winding"
)

const (
	maxHullFaces  = 128
	maxHullPoints = 512
	maxHullEdges  = 1024

	angleEpsilon = 1e-5
	zeroEpsilon  = 0.001
)

// hullBrush is the scratch state while one brush is built for one
// hull. The planes start as parsed and get pushed outward during
// expansion.
type hullBrush struct {
	md    *mapfile.MapData
	opts  *Options
	faces []mapfile.MapFace

	bounds vec.Bounds

	points  []vec.Vec3
	corners []vec.Vec3
	edges   [][2]int
}

func newHullBrush(md *mapfile.MapData, opts *Options, mb *mapfile.MapBrush) *hullBrush {
	hb := &hullBrush{
		md:    md,
		opts:  opts,
		faces: make([]mapfile.MapFace, len(mb.Faces)),
	}
	copy(hb.faces, mb.Faces)
	return hb
}

// createFaces builds the winding of every brush plane by clipping a
// base polygon against the other planes. Returns the face list, or nil
// when the planes leave no volume.
func (hb *hullBrush) createFaces(offset vec.Vec3, hullnum int, contents game.Contents) (*Face, error) {
	var list *Face
	hb.bounds = vec.EmptyBounds()

	for i := range hb.faces {
		mf := &hb.faces[i]
		w := winding.Base(mf.Plane.Normal, mf.Plane.Dist, hb.opts.WorldExtent)
		for j := range hb.faces {
			if j == i || w == nil {
				continue
			}
			// keep the back side of every other plane
			flip := hb.faces[j].Plane.Flip()
			w = w.Clip(flip.Normal, flip.Dist, winding.OnEpsilon, false)
		}
		if w == nil {
			continue
		}
		if len(w) > winding.MaxPoints {
			return nil, errors.Wrapf(ErrHullOverflow,
				"line %d: too many points on brush face", mf.LineNum)
		}

		for k, p := range w {
			p = vec.Sub(p, offset)
			for j := 0; j < 3; j++ {
				v := p.Idx(j)
				r := math.Round(v)
				if v != r && math.Abs(v-r) < zeroEpsilon {
					p.SetIdx(j, r)
				}
				if math.Abs(p.Idx(j)) > hb.opts.WorldExtent {
					return nil, errors.Errorf(
						"line %d: brush coordinate %v outside +/-%v",
						mf.LineNum, p.Idx(j), hb.opts.WorldExtent)
				}
			}
			w[k] = p
			hb.bounds.AddPoint(p)
		}

		plane := mf.Plane
		plane.Dist -= vec.Dot(offset, plane.Normal)
		planenum, side, err := hb.md.FindPlane(plane)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", mf.LineNum)
		}

		f := &Face{
			Planenum:     planenum,
			Planeside:    side,
			W:            w,
			OutputNumber: -1,
			LineNum:      mf.LineNum,
		}
		if hullnum <= 0 {
			f.Texinfo = mf.Texinfo
			if offset != (vec.Vec3{}) {
				// keep the texture aligned with the shifted geometry
				tx := hb.md.TexInfos[mf.Texinfo]
				for k := 0; k < 2; k++ {
					tx.Vecs[k][3] += vec.Dot(offset,
						vec.Vec3{X: tx.Vecs[k][0], Y: tx.Vecs[k][1], Z: tx.Vecs[k][2]})
				}
				f.Texinfo = hb.md.FindTexinfo(tx)
			}
		}
		f.Contents[0] = hb.md.Game.EmptyContents()
		f.Contents[1] = contents
		f.Next = list
		list = f
	}
	return list, nil
}

// addBrushPlane appends a plane unless an equal one is already there.
func (hb *hullBrush) addBrushPlane(p mapfile.Plane) error {
	l := p.Normal.Length()
	if l < 1-angleEpsilon || l > 1+angleEpsilon {
		return errors.Errorf("line %d: bad expansion plane normal length %v",
			hb.faces[0].LineNum, l)
	}
	for i := range hb.faces {
		if hb.faces[i].Plane.EpsilonEqual(p) {
			return nil
		}
	}
	if len(hb.faces) >= maxHullFaces {
		return errors.Wrapf(ErrHullOverflow, "line %d: too many hull faces",
			hb.faces[0].LineNum)
	}
	nf := hb.faces[0]
	nf.Plane = p
	hb.faces = append(hb.faces, nf)
	return nil
}

// testAddPlane adds a bevel candidate if all brush corners lie on one
// side, flipped to face away from them.
func (hb *hullBrush) testAddPlane(p mapfile.Plane) error {
	flip := p.Flip()
	for i := range hb.faces {
		if hb.faces[i].Plane.EpsilonEqual(p) || hb.faces[i].Plane.EpsilonEqual(flip) {
			return nil
		}
	}

	front, back := false, false
	for _, c := range hb.corners {
		d := p.DistanceTo(c)
		if d < -winding.OnEpsilon {
			if front {
				return nil
			}
			back = true
		} else if d > winding.OnEpsilon {
			if back {
				return nil
			}
			front = true
		}
	}
	if front {
		p = flip
	}
	return hb.addBrushPlane(p)
}

// addHullPoint caches a winding vertex and the hull box corners around
// it. Returns the point index.
func (hb *hullBrush) addHullPoint(p vec.Vec3, hull game.Hull) (int, error) {
	for i, q := range hb.points {
		if vec.Equal(p, q) {
			return i, nil
		}
	}
	if len(hb.points) >= maxHullPoints {
		return 0, errors.Wrapf(ErrHullOverflow, "line %d: too many hull points",
			hb.faces[0].LineNum)
	}
	hb.points = append(hb.points, p)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				var c vec.Vec3
				if x == 0 {
					c.X = hull.Min.X
				} else {
					c.X = hull.Max.X
				}
				if y == 0 {
					c.Y = hull.Min.Y
				} else {
					c.Y = hull.Max.Y
				}
				if z == 0 {
					c.Z = hull.Min.Z
				} else {
					c.Z = hull.Max.Z
				}
				hb.corners = append(hb.corners, vec.Add(p, c))
			}
		}
	}
	return len(hb.points) - 1, nil
}

// addHullEdge bevels the corner along one winding edge: for each axis
// not parallel to the edge, planes through the edge offset by the hull
// box corners.
func (hb *hullBrush) addHullEdge(p1, p2 vec.Vec3, hull game.Hull) error {
	pt1, err := hb.addHullPoint(p1, hull)
	if err != nil {
		return err
	}
	pt2, err := hb.addHullPoint(p2, hull)
	if err != nil {
		return err
	}
	for _, e := range hb.edges {
		if (e[0] == pt1 && e[1] == pt2) || (e[0] == pt2 && e[1] == pt1) {
			return nil
		}
	}
	if len(hb.edges) >= maxHullEdges {
		return errors.Wrapf(ErrHullOverflow, "line %d: too many hull edges",
			hb.faces[0].LineNum)
	}
	hb.edges = append(hb.edges, [2]int{pt1, pt2})

	edgevec := vec.Sub(p1, p2)
	edgevec = edgevec.Normalize()

	hullMin := hull.Min.Array()
	hullMax := hull.Max.Array()

	for a := 0; a < 3; a++ {
		b := (a + 1) % 3
		c := (a + 2) % 3
		var axis vec.Vec3
		axis.SetIdx(a, 1)
		normal := vec.Cross(axis, edgevec)
		l := normal.Length()
		if l < angleEpsilon {
			// edge parallel to this axis
			continue
		}
		normal = normal.Scale(1 / l)
		for d := 0; d < 2; d++ {
			for e := 0; e < 2; e++ {
				org := p1
				if d == 0 {
					org.SetIdx(b, org.Idx(b)+hullMin[b])
				} else {
					org.SetIdx(b, org.Idx(b)+hullMax[b])
				}
				if e == 0 {
					org.SetIdx(c, org.Idx(c)+hullMin[c])
				} else {
					org.SetIdx(c, org.Idx(c)+hullMax[c])
				}
				p := mapfile.Plane{Normal: normal, Dist: vec.Dot(org, normal)}
				if err := hb.testAddPlane(p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// expand performs the Minkowski sum of the brush with the hull box:
// push every face plane to the box corner furthest along its normal,
// add the six axial bounding planes, then bevel the edges between non
// axial faces.
func (hb *hullBrush) expand(hull game.Hull, faces *Face) error {
	for i := range hb.faces {
		mf := &hb.faces[i]
		if mapfile.IsNoExpandName(mf.TexName) {
			continue
		}
		var corner vec.Vec3
		for x := 0; x < 3; x++ {
			if mf.Plane.Normal.Idx(x) > 0 {
				corner.SetIdx(x, hull.Max.Idx(x))
			} else if mf.Plane.Normal.Idx(x) < 0 {
				corner.SetIdx(x, hull.Min.Idx(x))
			}
		}
		mf.Plane.Dist += vec.Dot(corner, mf.Plane.Normal)
	}

	for x := 0; x < 3; x++ {
		for s := -1; s <= 1; s += 2 {
			var p mapfile.Plane
			p.Normal.SetIdx(x, float64(s))
			if s == -1 {
				p.Dist = -hb.bounds.Min.Idx(x) - hull.Min.Idx(x)
			} else {
				p.Dist = hb.bounds.Max.Idx(x) + hull.Max.Idx(x)
			}
			if err := hb.addBrushPlane(p); err != nil {
				return err
			}
		}
	}

	if hb.opts.HullExpansion != ExpandFullBevels {
		return nil
	}
	for f := faces; f != nil; f = f.Next {
		for i, p := range f.W {
			if err := hb.addHullEdge(p, f.W[(i+1)%len(f.W)], hull); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadBrush builds one brush for one hull. Hull numbers above zero
// expand the brush by the hull box first. Returns nil for brushes whose
// planes leave no volume.
func LoadBrush(md *mapfile.MapData, opts *Options, mb *mapfile.MapBrush,
	contents game.Contents, offset vec.Vec3, hullnum int) (*Brush, error) {

	hb := newHullBrush(md, opts, mb)
	if len(hb.faces) > maxHullFaces {
		return nil, errors.Wrapf(ErrHullOverflow, "line %d: too many brush faces", mb.LineNum)
	}

	var faces *Face
	var err error
	if hullnum > 0 {
		faces, err = hb.createFaces(offset, 0, contents)
		if err != nil {
			return nil, err
		}
		if faces == nil {
			slog.Warn("brush with no visible faces", "line", mb.LineNum)
			return nil, nil
		}
		hulls := md.Game.HullSizes()
		if err := hb.expand(hulls[hullnum], faces); err != nil {
			return nil, err
		}
	}
	faces, err = hb.createFaces(offset, hullnum, contents)
	if err != nil {
		return nil, err
	}
	if faces == nil {
		if hullnum == 0 {
			slog.Warn("brush with no visible faces", "line", mb.LineNum)
		}
		return nil, nil
	}

	return &Brush{
		Contents: contents,
		Faces:    faces,
		Bounds:   hb.bounds,
		LineNum:  mb.LineNum,
	}, nil
}
