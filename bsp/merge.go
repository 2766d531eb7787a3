// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"gobsp/mapfile"
	"gobsp/math/vec"
	"gobsp/winding"
)

// continuousEpsilon is the colinearity threshold when joining edges of
// merged faces.
const continuousEpsilon = 0.001

// tryMerge joins two faces that share an edge when the union stays
// convex. Returns nil if they cannot merge.
func tryMerge(md *mapfile.MapData, f1, f2 *Face) *Face {
	if len(f1.W) == 0 || len(f2.W) == 0 {
		return nil
	}
	if f1.Planenum != f2.Planenum || f1.Planeside != f2.Planeside {
		return nil
	}
	if f1.Texinfo != f2.Texinfo || f1.Lmshift != f2.Lmshift {
		return nil
	}
	if !f1.Contents[0].Equal(f2.Contents[0]) || !f1.Contents[1].Equal(f2.Contents[1]) {
		return nil
	}

	w1, w2 := f1.W, f2.W

	// find a shared edge, run in opposite directions
	var p1, p2 vec.Vec3
	i, j := -1, -1
	for ii := range w1 {
		p1 = w1[ii]
		p2 = w1[(ii+1)%len(w1)]
		for jj := range w2 {
			p3 := w2[jj]
			p4 := w2[(jj+1)%len(w2)]
			if vec.Equal(p1, p4) && vec.Equal(p2, p3) {
				i, j = ii, jj
				break
			}
		}
		if j != -1 {
			break
		}
	}
	if j == -1 {
		return nil
	}

	planenormal := md.Planes[f1.Planenum].Normal
	if f1.Planeside == mapfile.SideBack {
		planenormal = planenormal.Neg()
	}

	// the joined corners must stay convex
	back := w1[(i+len(w1)-1)%len(w1)]
	delta := vec.Sub(p1, back)
	normal := vec.Cross(planenormal, delta)
	normal = normal.Normalize()

	back = w2[(j+2)%len(w2)]
	delta = vec.Sub(back, p1)
	dot := vec.Dot(delta, normal)
	if dot > continuousEpsilon {
		return nil
	}
	keep1 := dot < -continuousEpsilon

	back = w1[(i+2)%len(w1)]
	delta = vec.Sub(back, p2)
	normal = vec.Cross(planenormal, delta)
	normal = normal.Normalize()

	back = w2[(j+len(w2)-1)%len(w2)]
	delta = vec.Sub(back, p2)
	dot = vec.Dot(delta, normal)
	if dot > continuousEpsilon {
		return nil
	}
	keep2 := dot < -continuousEpsilon

	var nw winding.Winding
	for k := (i + 1) % len(w1); k != i; k = (k + 1) % len(w1) {
		if k == (i+1)%len(w1) && !keep2 {
			continue
		}
		nw = append(nw, w1[k])
	}
	for k := (j + 1) % len(w2); k != j; k = (k + 1) % len(w2) {
		if k == (j+1)%len(w2) && !keep1 {
			continue
		}
		nw = append(nw, w2[k])
	}
	if len(nw) > winding.MaxPoints {
		return nil
	}

	nf := NewFaceFromFace(f1)
	nf.W = nw
	return nf
}

// mergeFaceToList adds a face to a plane list, joining it with any
// mergeable neighbours first.
func mergeFaceToList(md *mapfile.MapData, face *Face, list *Face) *Face {
	for {
		merged := false
		for prev := &list; *prev != nil; prev = &(*prev).Next {
			nf := tryMerge(md, face, *prev)
			if nf == nil {
				continue
			}
			*prev = (*prev).Next
			face = nf
			merged = true
			break
		}
		if !merged {
			break
		}
	}
	face.Next = list
	return face
}
