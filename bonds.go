/*
 * bonds.go, part of pcore.
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

package chem

import (
	"sort"
)

//Bond joins two atoms of a topology.
type Bond struct {
	Index    int
	At1      *Atom
	At2      *Atom
	Order    int //Order 0 means undetermined, 4 means aromatic, as in MDL files.
	Aromatic bool
}

//Cross returns the atom bonded to the origin atom by the bond B. Panics if origin
//doesn't belong to the bond
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.index == B.At1.index {
		return B.At2
	}
	if origin.index == B.At2.index {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //I think this got to be a programming error, so a panic is warranted.
}

//Contains returns true if the atom with index i is one of the ends of the bond.
func (B *Bond) Contains(i int) bool {
	return B.At1.index == i || B.At2.index == i
}

//Bond returns the bond between the atoms with indexes i and j, or nil if they
//are not bonded.
func (T *Topology) Bond(i, j int) *Bond {
	for _, b := range T.Atom(i).Bonds {
		if b.Cross(T.Atoms[i]).index == j {
			return b
		}
	}
	return nil
}

//Ring is a cycle in the bond graph of a topology. Atoms are atom indexes, in path
//order, and Bonds the indexes of the bonds closing the cycle, also in path order.
type Ring struct {
	Atoms []int
	Bonds []int
}

//Len returns the size of the ring.
func (R Ring) Len() int {
	return len(R.Atoms)
}

//HasAtom returns true if the atom with index i is in the ring.
func (R Ring) HasAtom(i int) bool {
	for _, v := range R.Atoms {
		if v == i {
			return true
		}
	}
	return false
}

//Rings returns the smallest ring through each ring bond of the topology, without
//repetitions. For the usual fused systems of drug-like molecules this is the
//smallest set of smallest rings. The result is cached until a bond is added.
func (T *Topology) Rings() []Ring {
	if T.rings != nil {
		return T.rings
	}
	rings := make([]Ring, 0, 3)
	seen := make(map[string]bool)
	for _, b := range T.Bonds {
		path := T.shortestPath(b.At1.index, b.At2.index, b.Index)
		if path == nil {
			continue //not a ring bond
		}
		k := ringKey(path)
		if seen[k] {
			continue
		}
		seen[k] = true
		rings = append(rings, T.ringFromPath(path))
	}
	T.rings = rings
	return rings
}

//ringFromPath builds a ring from a closed path of atom indexes.
func (T *Topology) ringFromPath(path []int) Ring {
	r := Ring{Atoms: path, Bonds: make([]int, 0, len(path))}
	for i, v := range path {
		next := path[(i+1)%len(path)]
		r.Bonds = append(r.Bonds, T.Bond(v, next).Index)
	}
	return r
}

//ringKey returns a string that is the same for all rings with the same atoms.
func ringKey(path []int) string {
	s := make([]int, len(path))
	copy(s, path)
	sort.Ints(s)
	k := make([]byte, 0, 4*len(s))
	for _, v := range s {
		k = append(k, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return string(k)
}

//shortestPath does a breadth-first search from the atom from, to the atom to, not
//walking through the bond with index banned. It returns the atoms in the path,
//including both ends, or nil if there is no such path.
func (T *Topology) shortestPath(from, to, banned int) []int {
	parent := make([]int, T.Len())
	for i := range parent {
		parent[i] = -1
	}
	parent[from] = from
	queue := []int{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			break
		}
		at := T.Atoms[current]
		for _, b := range at.Bonds {
			if b.Index == banned {
				continue
			}
			next := b.Cross(at).index
			if parent[next] >= 0 {
				continue
			}
			parent[next] = current
			queue = append(queue, next)
		}
	}
	if parent[to] < 0 {
		return nil
	}
	path := []int{to}
	for v := to; v != from; v = parent[v] {
		path = append(path, parent[v])
	}
	//we want it from "from" to "to"
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

//RingCount returns the number of rings (from Rings) the atom with index i belongs to.
func (T *Topology) RingCount(i int) int {
	n := 0
	for _, r := range T.Rings() {
		if r.HasAtom(i) {
			n++
		}
	}
	return n
}

//InRing returns true if the bond b is part of a ring.
func (T *Topology) InRing(b *Bond) bool {
	for _, r := range T.Rings() {
		for _, v := range r.Bonds {
			if v == b.Index {
				return true
			}
		}
	}
	return false
}

/*Hydrogens*/

//BondOrderSum returns the sum of the orders of the bonds of the atom with index i.
//Each aromatic-coded bond counts 1, and one extra unit is added once an atom has two
//or more of them, the double bond of the Kekule structure.
func (T *Topology) BondOrderSum(i int) int {
	sum := 0
	arom := 0
	for _, b := range T.Atom(i).Bonds {
		switch {
		case b.Order == AromaticOrder:
			arom++
		case b.Order <= 0:
			sum++ //undetermined bonds are taken as single.
		default:
			sum += b.Order
		}
	}
	sum += arom
	if arom >= 2 {
		sum++
	}
	return sum
}

//ImplicitH returns the number of hydrogens that need to be added to the atom with
//index i so it reaches its lowest allowed valence. Elements outside the organic
//subset get no implicit hydrogens.
func (T *Topology) ImplicitH(i int) int {
	at := T.Atom(i)
	valences := symbolValences[at.Symbol]
	if len(valences) == 0 {
		return 0
	}
	sum := T.BondOrderSum(i)
	for _, v := range valences {
		v = adjustValence(at.Symbol, v, at.Charge)
		if v >= sum {
			return v - sum
		}
	}
	return 0
}

//ExplicitH returns the number of hydrogen atoms bonded to the atom with index i.
func (T *Topology) ExplicitH(i int) int {
	at := T.Atom(i)
	n := 0
	for _, b := range at.Bonds {
		if b.Cross(at).Symbol == "H" {
			n++
		}
	}
	return n
}

//HCount returns the total number of hydrogens, explicit and implicit, of the atom with index i.
func (T *Topology) HCount(i int) int {
	return T.ExplicitH(i) + T.ImplicitH(i)
}

//Degree returns the number of explicit connections of the atom with index i.
func (T *Topology) Degree(i int) int {
	return len(T.Atom(i).Bonds)
}
