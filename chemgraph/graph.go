/*
 * graph.go, part of pcore.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package chemgraph offers a gonum graph view of the bond graph of a topology,
//and the graph queries that are easier to express on it, such as ring systems.
package chemgraph

import (
	"sort"

	chem "github.com/rmera/pcore"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

//Atom wraps a chem.Atom so it implements graph.Node. The node ID is the index of
//the atom in its topology.
type Atom struct {
	*chem.Atom
}

//ID returns the node ID of the atom
func (A Atom) ID() int64 {
	return int64(A.Index())
}

//Bond wraps a chem.Bond so it implements graph.Edge.
type Bond struct {
	*chem.Bond
	reversed bool
}

//From returns the first atom of the bond (the second one if the bond has been reversed)
func (B Bond) From() graph.Node {
	if B.reversed {
		return Atom{B.At2}
	}
	return Atom{B.At1}
}

//To returns the second atom of the bond (the first one if the bond has been reversed)
func (B Bond) To() graph.Node {
	if B.reversed {
		return Atom{B.At1}
	}
	return Atom{B.At2}
}

//ReversedEdge returns the bond with its ends swapped. The original is not changed.
func (B Bond) ReversedEdge() graph.Edge {
	return Bond{Bond: B.Bond, reversed: !B.reversed}
}

//FromTopology returns an undirected graph with one node per atom of top, and one edge per
//bond for which keep returns true. If keep is nil, all bonds are kept.
func FromTopology(top *chem.Topology, keep func(*chem.Bond) bool) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for _, at := range top.Atoms {
		g.AddNode(Atom{at})
	}
	for _, b := range top.Bonds {
		if keep != nil && !keep(b) {
			continue
		}
		g.SetEdge(Bond{Bond: b})
	}
	return g
}

//Bond returns the chem.Bond behind the edge between the atoms with indexes i and j
//in a graph produced by FromTopology, or nil if there is no such edge.
func BondBetween(g graph.Undirected, i, j int) *chem.Bond {
	e := g.EdgeBetween(int64(i), int64(j))
	if e == nil {
		return nil
	}
	if b, ok := e.(Bond); ok {
		return b.Bond
	}
	return nil
}

//components returns the connected components of g with more than min atoms, as
//sorted slices of atom indexes. The components are sorted by their first atom.
func components(g graph.Undirected, min int) [][]int {
	cc := topo.ConnectedComponents(g)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		if len(c) <= min {
			continue
		}
		ids := make([]int, 0, len(c))
		for _, n := range c {
			ids = append(ids, int(n.ID()))
		}
		sort.Ints(ids)
		ret = append(ret, ids)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

//Fragments returns the covalently bonded fragments of top, each as a sorted slice of
//atom indexes.
func Fragments(top *chem.Topology) [][]int {
	return components(FromTopology(top, nil), 0)
}

//RingSystems returns the ring systems of top, i.e. the groups of rings that share at least
//one bond, each as a sorted slice of atom indexes.
func RingSystems(top *chem.Topology) [][]int {
	g := FromTopology(top, top.InRing)
	return components(g, 1) //atoms that are not in rings are isolated nodes
}

//SystemRings returns, for each ring system in systems, the indexes in top.Rings() of the
//rings that form it.
func SystemRings(top *chem.Topology, systems [][]int) [][]int {
	rings := top.Rings()
	ret := make([][]int, len(systems))
	for i, s := range systems {
		in := make(map[int]bool, len(s))
		for _, v := range s {
			in[v] = true
		}
		for j, r := range rings {
			if in[r.Atoms[0]] {
				ret[i] = append(ret[i], j)
			}
		}
	}
	return ret
}
