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

// partitioner carries the per tree state of one SolidBSP run.
type partitioner struct {
	md   *mapfile.MapData
	opts *Options

	leafCount  int
	nodeCount  int
	splitCount int
}

// SolidBSP partitions the surfaces of one entity into a tree. With
// midsplit every level splits at the bounds middle, which builds
// faster, more balanced trees for clipping hulls.
func SolidBSP(md *mapfile.MapData, opts *Options, surfaces *Surface, midsplit bool) (*Tree, error) {
	if surfaces == nil {
		return nil, errors.New("no surfaces to partition")
	}
	p := &partitioner{md: md, opts: opts}
	tree := &Tree{}
	tree.Bounds = boundsOfSurfaces(surfaces).Expand(sideSpace)

	head, err := p.partition(surfaces, 0, midsplit)
	if err != nil {
		return nil, err
	}
	tree.HeadNode = head
	tree.OutsideNode.Planenum = planenumLeaf
	tree.OutsideNode.Contents = md.Game.SolidContents()
	tree.OutsideNode.VisLeafNum = -1
	tree.OutsideNode.VisCluster = -1
	tree.OutsideNode.OutputNumber = -1

	slog.Debug("solidbsp",
		"nodes", p.nodeCount, "leafs", p.leafCount, "splits", p.splitCount)
	return tree, nil
}

func boundsOfSurfaces(surfaces *Surface) vec.Bounds {
	b := vec.EmptyBounds()
	for s := surfaces; s != nil; s = s.Next {
		b.AddBounds(s.Bounds)
	}
	return b
}

// boundsPlaneSide classifies an axis aligned box against a plane.
func boundsPlaneSide(b vec.Bounds, normal vec.Vec3, dist float64) int {
	var near, far vec.Vec3
	for i := 0; i < 3; i++ {
		if normal.Idx(i) >= 0 {
			near.SetIdx(i, b.Min.Idx(i))
			far.SetIdx(i, b.Max.Idx(i))
		} else {
			near.SetIdx(i, b.Max.Idx(i))
			far.SetIdx(i, b.Min.Idx(i))
		}
	}
	if vec.Dot(near, normal)-dist > 0 {
		return winding.SideFront
	}
	if vec.Dot(far, normal)-dist < 0 {
		return winding.SideBack
	}
	return winding.SideCross
}

func (p *partitioner) partition(surfaces *Surface, depth int, midsplit bool) (*Node, error) {
	if depth > p.opts.MaxDepth {
		return nil, ErrTooDeep
	}

	node := &Node{OutputNumber: -1, VisLeafNum: -1, VisCluster: -1}
	node.Bounds = boundsOfSurfaces(surfaces)

	split, detail := p.selectPartition(surfaces, depth, midsplit)
	if split == nil {
		p.leafCount++
		node.Planenum = planenumLeaf
		p.linkConvexFaces(surfaces, node)
		return node, nil
	}
	p.nodeCount++

	node.Planenum = split.Planenum
	node.DetailSeparator = detail
	p.linkNodeFaces(split, node)

	splitplane := p.md.Planes[split.Planenum]
	var frontlist, backlist *Surface
	for s := surfaces; s != nil; {
		next := s.Next
		front, back := p.divideSurface(s, split.Planenum, splitplane)
		if front != nil {
			front.Next = frontlist
			frontlist = front
		}
		if back != nil {
			back.Next = backlist
			backlist = back
		}
		s = next
	}

	var err error
	node.Children[0], err = p.partition(frontlist, depth+1, midsplit)
	if err != nil {
		return nil, err
	}
	node.Children[1], err = p.partition(backlist, depth+1, midsplit)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// selectPartition picks the next split surface, or nil for a leaf.
// Structural surfaces take precedence; a split chosen among detail
// only surfaces is flagged as a detail separator.
func (p *partitioner) selectPartition(surfaces *Surface, depth int, midsplit bool) (*Surface, bool) {
	count := 0
	structCount := 0
	var only *Surface
	for s := surfaces; s != nil; s = s.Next {
		if s.OnNode {
			continue
		}
		count++
		only = s
		if s.HasStruct {
			structCount++
		}
	}
	if count == 0 {
		return nil, false
	}
	if count == 1 {
		return only, !only.HasStruct
	}

	detail := structCount == 0
	pick := func(s *Surface) bool {
		if s.OnNode {
			return false
		}
		if !detail && !s.HasStruct {
			return false
		}
		return true
	}

	if midsplit || depth < p.opts.MidsplitLevels {
		if s := p.chooseMidPlane(surfaces, pick); s != nil {
			return s, detail
		}
	}
	return p.choosePlane(surfaces, pick), detail
}

// chooseMidPlane prefers the axial surface closest to the middle of
// the set's bounds.
func (p *partitioner) chooseMidPlane(surfaces *Surface, pick func(*Surface) bool) *Surface {
	bounds := boundsOfSurfaces(surfaces)
	bestValue := math.MaxFloat64
	var best *Surface

	for s := surfaces; s != nil; s = s.Next {
		if !pick(s) {
			continue
		}
		plane := p.md.Planes[s.Planenum]
		if plane.Type > mapfile.PlaneZ {
			continue
		}
		l := int(plane.Type)

		value := 0.0
		for j := 0; j < 3; j++ {
			var v float64
			if j == l {
				dist := plane.Dist * plane.Normal.Idx(l)
				v = (bounds.Max.Idx(l)-dist)*(bounds.Max.Idx(l)-dist) +
					(dist-bounds.Min.Idx(l))*(dist-bounds.Min.Idx(l))
			} else {
				d := bounds.Max.Idx(j) - bounds.Min.Idx(j)
				v = 2 * d * d
			}
			value += v
		}
		if value < bestValue {
			bestValue = value
			best = s
		}
	}
	return best
}

// choosePlane minimizes the number of faces the split would cut, with
// axial planes tried first.
func (p *partitioner) choosePlane(surfaces *Surface, pick func(*Surface) bool) *Surface {
	for pass := 0; pass < 2; pass++ {
		bestSplits := math.MaxInt
		var best *Surface
		for s := surfaces; s != nil; s = s.Next {
			if !pick(s) {
				continue
			}
			plane := p.md.Planes[s.Planenum]
			axial := plane.Type <= mapfile.PlaneZ
			if (pass == 0) != axial {
				continue
			}

			splits := 0
			for s2 := surfaces; s2 != nil && splits < bestSplits; s2 = s2.Next {
				if s2 == s || s2.OnNode {
					continue
				}
				for f := s2.Faces; f != nil; f = f.Next {
					if f.W.PlaneSide(plane.Normal, plane.Dist, winding.OnEpsilon) == winding.SideCross {
						splits++
						if splits >= bestSplits {
							break
						}
					}
				}
			}
			if splits < bestSplits {
				bestSplits = splits
				best = s
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// divideSurface splits a surface by the node plane. Coplanar surfaces
// hand their faces to the side each one fronts.
func (p *partitioner) divideSurface(s *Surface, planenum int, split mapfile.Plane) (front, back *Surface) {
	if s.Planenum == planenum {
		s.OnNode = true
		var frontlist, backlist *Face
		for f := s.Faces; f != nil; {
			next := f.Next
			if f.Planeside == mapfile.SideBack {
				f.Next = backlist
				backlist = f
			} else {
				f.Next = frontlist
				frontlist = f
			}
			f = next
		}
		s.Faces = frontlist
		if s.Faces != nil {
			front = s
			front.CalcBounds()
		}
		if backlist != nil {
			back = &Surface{
				Planenum:  s.Planenum,
				Faces:     backlist,
				OnNode:    true,
				HasStruct: s.HasStruct,
			}
			back.CalcBounds()
		}
		return front, back
	}

	inplane := p.md.Planes[s.Planenum]
	if inplane.Normal == split.Normal {
		// parallel, never crosses
		if inplane.Dist > split.Dist {
			return s, nil
		}
		return nil, s
	}

	switch boundsPlaneSide(s.Bounds, split.Normal, split.Dist) {
	case winding.SideFront:
		return s, nil
	case winding.SideBack:
		return nil, s
	}

	var frontlist, backlist *Face
	for f := s.Faces; f != nil; {
		next := f.Next
		ff, bf := splitFace(p.md, f, planenum)
		if ff != nil && bf != nil {
			p.splitCount++
		}
		if ff != nil {
			ff.Next = frontlist
			frontlist = ff
		}
		if bf != nil {
			bf.Next = backlist
			backlist = bf
		}
		f = next
	}

	if frontlist == nil {
		s.Faces = backlist
		s.CalcBounds()
		return nil, s
	}
	if backlist == nil {
		s.Faces = frontlist
		s.CalcBounds()
		return s, nil
	}
	s.Faces = frontlist
	s.CalcBounds()
	back = &Surface{
		Planenum:  s.Planenum,
		Faces:     backlist,
		OnNode:    s.OnNode,
		HasStruct: s.HasStruct,
	}
	back.CalcBounds()
	return s, back
}

// linkNodeFaces copies the split surface's faces onto the node, after
// chopping oversized ones for the lightmap builder. The surface keeps
// its faces with Original pointing at the node copy.
func (p *partitioner) linkNodeFaces(s *Surface, node *Node) {
	for f := s.Faces; f != nil; f = f.Next {
		p.subdivideFace(f)
	}

	for f := s.Faces; f != nil; f = f.Next {
		nf := NewFaceFromFace(f)
		nf.W = f.W.Copy()
		f.Original = nf
		nf.Next = node.Faces
		node.Faces = nf
	}
}

// texSpecial reports texinfos that take no lightmap and are never
// subdivided.
func texSpecial(md *mapfile.MapData, texinfo int) bool {
	flags := md.TexInfos[texinfo].Flags
	if md.Game.ID() == game.Quake2 {
		return flags.Native&(game.Q2_SURF_WARP|game.Q2_SURF_SKY) != 0
	}
	return flags.Native&game.TexSpecial != 0
}

// subdivideFace chops a face so its texture extent fits the lightmap
// limit. Fragments are inserted after the face in its list.
func (p *partitioner) subdivideFace(f *Face) {
	if texSpecial(p.md, f.Texinfo) {
		return
	}
	tex := p.md.TexInfos[f.Texinfo]
	subdivide := float64(p.opts.Subdivide)
	if subdivide <= 0 {
		return
	}

	for axis := 0; axis < 2; axis++ {
		for {
			tmp := vec.Vec3{
				X: tex.Vecs[axis][0],
				Y: tex.Vecs[axis][1],
				Z: tex.Vecs[axis][2],
			}
			mins := math.MaxFloat64
			maxs := -math.MaxFloat64
			for _, pt := range f.W {
				v := vec.Dot(pt, tmp)
				if v < mins {
					mins = v
				}
				if v > maxs {
					maxs = v
				}
			}
			if maxs-mins <= subdivide {
				break
			}

			// cut one lightmap block short of the limit
			l := tmp.Length()
			normal := tmp.Scale(1 / l)
			dist := (mins + subdivide - 16) / l

			fw, bw := f.W.Split(normal, dist, winding.OnEpsilon)
			if fw == nil || bw == nil {
				slog.Warn("subdivide produced a degenerate fragment",
					"line", f.LineNum)
				break
			}
			piece := NewFaceFromFace(f)
			piece.W = bw
			piece.Next = f.Next
			f.Next = piece
			f.W = fw
		}
	}
}

// linkConvexFaces fills a leaf: contents from the faces fronting it
// and marksurfaces through their node face copies.
func (p *partitioner) linkConvexFaces(surfaces *Surface, node *Node) {
	node.Bounds = vec.EmptyBounds()
	var contents game.Contents
	set := false
	count := 0

	for s := surfaces; s != nil; s = s.Next {
		for f := s.Faces; f != nil; f = f.Next {
			count++
			for _, pt := range f.W {
				node.Bounds.AddPoint(pt)
			}
			fc := f.Contents[0]
			if !set {
				contents = fc
				set = true
				continue
			}
			if !fc.Equal(contents) {
				if p.md.Game.IsEmpty(contents) && !p.md.Game.IsEmpty(fc) {
					contents = fc
				} else if !p.md.Game.IsEmpty(fc) {
					slog.Warn("mixed leaf contents", "line", f.LineNum)
				}
			}
		}
	}
	if !set {
		contents = p.md.Game.SolidContents()
	}
	node.Contents = contents

	node.MarkFaces = make([]*Face, 0, count)
	for s := surfaces; s != nil; s = s.Next {
		for f := s.Faces; f != nil; f = f.Next {
			if f.Original == nil {
				continue
			}
			node.MarkFaces = append(node.MarkFaces, f.Original)
		}
	}
}
