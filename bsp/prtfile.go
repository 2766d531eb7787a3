// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gobsp/game"
	"gobsp/mapfile"
	"gobsp/math/vec"
)

// prtWriter numbers the vis leaves and clusters of a portalized tree
// and serializes the portal file.
type prtWriter struct {
	md   *mapfile.MapData
	opts *Options

	leafCount    int
	clusterCount int
	portalCount  int
}

// WritePortalFile numbers vis leaves and writes the portal graph of
// the world tree for the vis stage. The format is PRT1 unless detail
// brushes split leaves from clusters, which needs PRT2.
func WritePortalFile(md *mapfile.MapData, opts *Options, tree *Tree, w io.Writer) error {
	pw := &prtWriter{md: md, opts: opts}

	pw.numberLeafs(tree.HeadNode, -1)
	pw.countPortals(tree.HeadNode)

	bw := bufio.NewWriter(w)
	g := md.Game

	switch {
	case g.ID() == game.Quake2:
		fmt.Fprintf(bw, "PRT1\n%d\n%d\n", pw.clusterCount, pw.portalCount)
		pw.writePortals(tree.HeadNode, bw)
	case pw.clusterCount == pw.leafCount:
		fmt.Fprintf(bw, "PRT1\n%d\n%d\n", pw.leafCount, pw.portalCount)
		pw.writePortals(tree.HeadNode, bw)
	case opts.ForcePRT1:
		slog.Warn("forced PRT1 with detail brushes, vis data will be approximate")
		fmt.Fprintf(bw, "PRT1\n%d\n%d\n", pw.clusterCount, pw.portalCount)
		pw.writePortals(tree.HeadNode, bw)
	default:
		fmt.Fprintf(bw, "PRT2\n%d\n%d\n%d\n",
			pw.leafCount, pw.clusterCount, pw.portalCount)
		pw.writePortals(tree.HeadNode, bw)
		clusters := make([][]int, pw.clusterCount)
		pw.collectClusters(tree.HeadNode, clusters)
		for _, leafs := range clusters {
			for _, l := range leafs {
				fmt.Fprintf(bw, "%d ", l)
			}
			fmt.Fprintf(bw, "-1\n")
		}
	}

	slog.Info("portal file",
		"leafs", pw.leafCount, "clusters", pw.clusterCount, "portals", pw.portalCount)
	return bw.Flush()
}

// numberLeafs assigns vis leaf and cluster numbers. Everything under a
// detail separator shares one cluster.
func (pw *prtWriter) numberLeafs(node *Node, cluster int) {
	if !node.IsLeaf() {
		if cluster < 0 && node.DetailSeparator {
			cluster = pw.clusterCount
			pw.clusterCount++
			node.VisCluster = cluster
		}
		pw.numberLeafs(node.Children[0], cluster)
		pw.numberLeafs(node.Children[1], cluster)
		return
	}

	g := pw.md.Game
	if g.IsSolid(node.Contents) || g.IsSky(node.Contents) {
		node.VisLeafNum = -1
		node.VisCluster = -1
		return
	}
	node.VisLeafNum = pw.leafCount
	pw.leafCount++
	if cluster >= 0 {
		node.VisCluster = cluster
	} else {
		node.VisCluster = pw.clusterCount
		pw.clusterCount++
	}
}

// clusterContents folds the leaf contents below a portal cell.
func clusterContents(g game.Game, node *Node) game.Contents {
	if node.IsLeaf() {
		return node.Contents
	}
	c0 := clusterContents(g, node.Children[0])
	c1 := clusterContents(g, node.Children[1])
	return g.ClusterContents(c0, c1)
}

// portalThru reports whether vis may pass the portal.
func (pw *prtWriter) portalThru(p *Portal) bool {
	c0, c1 := p.Nodes[0].VisCluster, p.Nodes[1].VisCluster
	if c0 < 0 || c1 < 0 || c0 == c1 {
		return false
	}
	g := pw.md.Game
	return g.PortalCanSeeThrough(
		clusterContents(g, p.Nodes[0]),
		clusterContents(g, p.Nodes[1]),
		pw.opts.Transwater, pw.opts.Transsky)
}

// walkCells visits every portal cell: leaves plus detail separator
// nodes portalization stopped at.
func (pw *prtWriter) walkCells(node *Node, visit func(*Node)) {
	if node.IsLeaf() || node.DetailSeparator {
		visit(node)
		return
	}
	pw.walkCells(node.Children[0], visit)
	pw.walkCells(node.Children[1], visit)
}

func (pw *prtWriter) countPortals(head *Node) {
	pw.walkCells(head, func(cell *Node) {
		for p := cell.Portals; p != nil; {
			if p.Nodes[0] == cell && pw.portalThru(p) {
				pw.portalCount++
			}
			if p.Nodes[0] == cell {
				p = p.Next[0]
			} else {
				p = p.Next[1]
			}
		}
	})
}

func (pw *prtWriter) writePortals(head *Node, w io.Writer) {
	pw.walkCells(head, func(cell *Node) {
		for p := cell.Portals; p != nil; {
			if p.Nodes[0] == cell && pw.portalThru(p) {
				pw.writePortal(p, w)
			}
			if p.Nodes[0] == cell {
				p = p.Next[0]
			} else {
				p = p.Next[1]
			}
		}
	})
}

// writePortal emits one portal line. When roundoff turned the winding
// against its pool plane the leaf order flips, matching how vis will
// interpret the points.
func (pw *prtWriter) writePortal(p *Portal, w io.Writer) {
	c0, c1 := p.Nodes[0].VisCluster, p.Nodes[1].VisCluster

	normal, _ := p.Winding.Plane()
	if vec.Dot(normal, pw.md.Planes[p.Planenum].Normal) < 0.99 {
		c0, c1 = c1, c0
	}

	fmt.Fprintf(w, "%d %d %d ", len(p.Winding), c0, c1)
	for _, pt := range p.Winding {
		fmt.Fprintf(w, "(%s %s %s) ",
			prtFloat(pt.X), prtFloat(pt.Y), prtFloat(pt.Z))
	}
	fmt.Fprintf(w, "\n")
}

// prtFloat prints near integer coordinates without a fraction, which
// keeps portal files diffable.
func prtFloat(v float64) string {
	r := math.Round(v)
	if math.Abs(v-r) < zeroEpsilon {
		return fmt.Sprintf("%d", int64(r))
	}
	return fmt.Sprintf("%f", v)
}

func (pw *prtWriter) collectClusters(node *Node, clusters [][]int) {
	if !node.IsLeaf() {
		pw.collectClusters(node.Children[0], clusters)
		pw.collectClusters(node.Children[1], clusters)
		return
	}
	if node.VisLeafNum < 0 {
		return
	}
	c := node.VisCluster
	if c < 0 || c >= len(clusters) {
		slog.Error("leaf with invalid cluster", "leaf", node.VisLeafNum, "cluster", c)
		return
	}
	clusters[c] = append(clusters[c], node.VisLeafNum)
}
