// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"

	"gobsp/mapfile"
	"gobsp/math/vec"
	"gobsp/winding"
)

// addPortalToNodes links a portal between its front and back cells.
func addPortalToNodes(p *Portal, front, back *Node) {
	p.Nodes[0] = front
	p.Next[0] = front.Portals
	front.Portals = p

	p.Nodes[1] = back
	p.Next[1] = back.Portals
	back.Portals = p
}

// removePortalFromNode unlinks one end of a portal.
func removePortalFromNode(portal *Portal, n *Node) {
	pp := &n.Portals
	for {
		t := *pp
		if t == portal {
			break
		}
		if t.Nodes[0] == n {
			pp = &t.Next[0]
		} else {
			pp = &t.Next[1]
		}
	}
	if portal.Nodes[0] == n {
		*pp = portal.Next[0]
		portal.Nodes[0] = nil
	} else {
		*pp = portal.Next[1]
		portal.Nodes[1] = nil
	}
}

// makeHeadnodePortals seals the tree with six portals between the
// padded bounds and the outside node.
func (pz *portalizer) makeHeadnodePortals(tree *Tree) {
	bounds := tree.Bounds

	var portals [6]*Portal
	var planes [6]mapfile.Plane

	// plane normals point inward, the headnode sits on the front side
	n := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			var pl mapfile.Plane
			if j == 0 {
				pl.Normal.SetIdx(i, 1)
				pl.Dist = bounds.Min.Idx(i)
			} else {
				pl.Normal.SetIdx(i, -1)
				pl.Dist = -bounds.Max.Idx(i)
			}
			planes[n] = pl

			// the exact lookup keeps the inward orientation, so the
			// headnode is always the front side
			planenum, err := pz.md.FindExactPlane(pl)
			if err != nil {
				panic(err)
			}

			p := &Portal{
				Planenum: planenum,
				Winding:  winding.Base(pl.Normal, pl.Dist, pz.opts.WorldExtent*4),
			}
			addPortalToNodes(p, tree.HeadNode, &tree.OutsideNode)
			portals[n] = p
			n++
		}
	}

	// clip the base windings against each other
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if i == j {
				continue
			}
			portals[i].Winding = portals[i].Winding.Clip(
				planes[j].Normal, planes[j].Dist, winding.OnEpsilon, true)
		}
	}
}

type portalizer struct {
	md   *mapfile.MapData
	opts *Options

	count int
}

// Portalize builds the portal graph of a tree. Portalization does not
// descend past detail separators, leaving detail volumes inside one
// cluster cell.
func Portalize(md *mapfile.MapData, opts *Options, tree *Tree) {
	pz := &portalizer{md: md, opts: opts}
	pz.makeHeadnodePortals(tree)
	pz.cutNodePortals(tree.HeadNode)
	slog.Debug("portalize", "portals", pz.count)
}

func (pz *portalizer) cutNodePortals(node *Node) {
	if node.IsLeaf() || node.DetailSeparator {
		return
	}
	pz.makeNodePortal(node)
	pz.splitNodePortals(node)
	pz.cutNodePortals(node.Children[0])
	pz.cutNodePortals(node.Children[1])
}

// makeNodePortal cuts the node plane by all portals bounding the node
// and links the remainder between the two children.
func (pz *portalizer) makeNodePortal(node *Node) {
	plane := pz.md.Planes[node.Planenum]
	w := winding.Base(plane.Normal, plane.Dist, pz.opts.WorldExtent*4)

	for p := node.Portals; p != nil && w != nil; {
		var clip mapfile.Plane
		var next *Portal
		if p.Nodes[0] == node {
			clip = pz.md.Planes[p.Planenum]
			next = p.Next[0]
		} else {
			clip = pz.md.Planes[p.Planenum].Flip()
			next = p.Next[1]
		}
		w = w.Clip(clip.Normal, clip.Dist, winding.OnEpsilon, true)
		p = next
	}

	if w == nil {
		slog.Warn("cut away node portal", "plane", node.Planenum)
		return
	}

	pz.count++
	np := &Portal{Planenum: node.Planenum, Winding: w}
	addPortalToNodes(np, node.Children[0], node.Children[1])
}

// splitNodePortals distributes the node's portals to the children,
// splitting those the node plane crosses.
func (pz *portalizer) splitNodePortals(node *Node) {
	plane := pz.md.Planes[node.Planenum]
	front, back := node.Children[0], node.Children[1]

	for p := node.Portals; p != nil; {
		var side int
		if p.Nodes[0] == node {
			side = 0
		} else {
			side = 1
		}
		next := p.Next[side]
		other := p.Nodes[side^1]

		removePortalFromNode(p, node)
		removePortalFromNode(p, other)

		fw, bw := p.Winding.Split(plane.Normal, plane.Dist, winding.OnEpsilon)
		switch {
		case fw == nil:
			p.Winding = bw
			if side == 0 {
				addPortalToNodes(p, back, other)
			} else {
				addPortalToNodes(p, other, back)
			}
		case bw == nil:
			p.Winding = fw
			if side == 0 {
				addPortalToNodes(p, front, other)
			} else {
				addPortalToNodes(p, other, front)
			}
		default:
			np := &Portal{Planenum: p.Planenum, Winding: bw}
			p.Winding = fw
			if side == 0 {
				addPortalToNodes(p, front, other)
				addPortalToNodes(np, back, other)
			} else {
				addPortalToNodes(p, other, front)
				addPortalToNodes(np, other, back)
			}
		}
		p = next
	}
	node.Portals = nil
}

// FreeTreePortals unlinks every portal so the nodes drop their
// references before export.
func FreeTreePortals(tree *Tree) {
	freeNodePortals(tree.HeadNode)
	tree.OutsideNode.Portals = nil
}

func freeNodePortals(node *Node) {
	if !node.IsLeaf() && !node.DetailSeparator {
		freeNodePortals(node.Children[0])
		freeNodePortals(node.Children[1])
	}
	for p := node.Portals; p != nil; {
		var next *Portal
		if p.Nodes[0] == node {
			next = p.Next[0]
		} else {
			next = p.Next[1]
		}
		removePortalFromNode(p, p.Nodes[0])
		if p.Nodes[1] != nil {
			removePortalFromNode(p, p.Nodes[1])
		}
		p = next
	}
	node.Portals = nil
}

// nodeBoundsFromPortals grows leaf bounds by their portal windings so
// sealed empty leaves get real extents.
func nodeBoundsFromPortals(node *Node) vec.Bounds {
	b := node.Bounds
	for p := node.Portals; p != nil; {
		for _, pt := range p.Winding {
			b.AddPoint(pt)
		}
		if p.Nodes[0] == node {
			p = p.Next[0]
		} else {
			p = p.Next[1]
		}
	}
	return b
}
