// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"

	"gobsp/mapfile"
	"gobsp/winding"
)

// splitFace divides a face by a pool plane. Either return may be nil.
// A face lying on the plane goes to the front.
func splitFace(md *mapfile.MapData, f *Face, planenum int) (front, back *Face) {
	p := md.Planes[planenum]
	fw, bw := f.W.Split(p.Normal, p.Dist, winding.OnEpsilon)
	if bw == nil {
		return f, nil
	}
	if fw == nil {
		return nil, f
	}
	front = NewFaceFromFace(f)
	front.W = fw
	back = NewFaceFromFace(f)
	back.W = bw
	return front, back
}

// mirrorFace returns the face turned around, volumes swapped.
func mirrorFace(f *Face) *Face {
	m := NewFaceFromFace(f)
	m.Planeside = f.Planeside ^ 1
	m.W = f.W.Flip()
	m.Contents[0] = f.Contents[1]
	m.Contents[1] = f.Contents[0]
	return m
}

func copyBrushFaces(b *Brush) *Face {
	var list *Face
	for f := b.Faces; f != nil; f = f.Next {
		n := NewFaceFromFace(f)
		n.W = f.W.Copy()
		n.Next = list
		list = n
	}
	return list
}

// clipInside splits the inside list by one clip brush face. Fragments
// in front move to the outside list. Coplanar faces stay outside
// unless the clip brush comes later in the chain.
func clipInside(md *mapfile.MapData, clipface *Face, precedence bool,
	inside, outside *Face) (newInside, newOutside *Face) {

	newOutside = outside
	for f := inside; f != nil; {
		next := f.Next
		var frags [2]*Face
		switch {
		case f.Planenum == clipface.Planenum && f.Planeside != clipface.Planeside:
			// coplanar, opposite facing: always hidden inside
			frags[1] = f
		case f.Planenum == clipface.Planenum:
			if precedence {
				frags[1] = f
			} else {
				frags[0] = f
			}
		default:
			fr, bk := splitFace(md, f, clipface.Planenum)
			if clipface.Planeside == mapfile.SideBack {
				fr, bk = bk, fr
			}
			frags[0], frags[1] = fr, bk
		}
		if frags[0] != nil {
			frags[0].Next = newOutside
			newOutside = frags[0]
		}
		if frags[1] != nil {
			frags[1].Next = newInside
			newInside = frags[1]
		}
		f = next
	}
	return newInside, newOutside
}

// mirrorsFaces reports brushes that show their far side from inside
// their volume.
func mirrorsFaces(md *mapfile.MapData, b *Brush) bool {
	c := b.Contents
	if c.MirrorInside() {
		return true
	}
	return md.Game.IsLiquid(c) || c.IsDetailFence() || c.IsDetailIllusionary()
}

// CSGFaces clips every brush face against the other brushes of the
// entity and returns the surviving fragments grouped into per plane
// surfaces.
func CSGFaces(md *mapfile.MapData, e *Entity) *Surface {
	planeFaces := map[int]*Face{}
	g := md.Game

	save := func(f *Face) {
		f.Next = nil
		planeFaces[f.Planenum] = mergeFaceToList(md, f, planeFaces[f.Planenum])
	}

	brushCount, faceCount := 0, 0
	for brush := e.Brushes; brush != nil; brush = brush.Next {
		brushCount++
		outside := copyBrushFaces(brush)
		overwrite := false
		bp := priorityFor(g, brush.Contents)

		for clip := e.Brushes; clip != nil; clip = clip.Next {
			if clip == brush {
				overwrite = true
				continue
			}
			if clip.Contents.IsHint() ||
				(g.IsEmpty(clip.Contents) && clip.Contents.Extended == 0) {
				// hint brushes never clip anything
				continue
			}
			if !brush.Bounds.Overlaps(clip.Bounds) {
				continue
			}
			same := clip.Contents.Equal(brush.Contents)
			if same && clip.Contents.NoClipSameType() {
				continue
			}
			cp := priorityFor(g, clip.Contents)
			keepInside := false
			if !same && cp < bp {
				if cp != prioLiquid {
					// weaker non liquid volumes hide nothing
					continue
				}
				// solid fragments submerged in liquid survive, fronted
				// by the liquid volume
				keepInside = true
			}

			inside := outside
			outside = nil
			for cf := clip.Faces; cf != nil; cf = cf.Next {
				inside, outside = clipInside(md, cf, overwrite, inside, outside)
			}

			if keepInside {
				for f := inside; f != nil; {
					next := f.Next
					f.Contents[0] = clip.Contents
					f.Next = outside
					outside = f
					f = next
				}
			}
			// remaining inside fragments are hidden
		}

		mirror := mirrorsFaces(md, brush)
		for f := outside; f != nil; {
			next := f.Next
			faceCount++
			if mirror {
				save(mirrorFace(f))
				faceCount++
			}
			save(f)
			f = next
		}
	}

	surfaces := buildSurfaces(md, planeFaces)
	slog.Debug("csg", "brushes", brushCount, "faces", faceCount)
	return surfaces
}

// buildSurfaces turns the per plane face lists into the surface chain
// the partitioner consumes.
func buildSurfaces(md *mapfile.MapData, planeFaces map[int]*Face) *Surface {
	var list *Surface
	for planenum := range md.Planes {
		faces := planeFaces[planenum]
		if faces == nil {
			continue
		}
		s := &Surface{Planenum: planenum, Faces: faces}
		for f := faces; f != nil; f = f.Next {
			if !f.Contents[1].IsAnyDetail() && !f.Contents[1].IsVisblocker() {
				s.HasStruct = true
			}
		}
		s.CalcBounds()
		s.Next = list
		list = s
	}
	return list
}
