/*
 * pattern.go, part of pcore.
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

//Package smarts compiles SMARTS patterns and finds their embeddings in a topology.
//
//The supported language covers what pharmacophore group definitions usually need:
//organic subset and bracket atoms, the primitives *, a, A, #n, Hn, hn, Dn, Xn, xn, Rn,
//rn, vn, charges and recursive $(...) atoms, the logical operators !, &, "," and ;,
//the bonds -, =, #, :, ~ and @, branches and ring closures. Stereochemistry, isotopes
//and atom classes are rejected with a *SyntaxError.
package smarts

import (
	"sort"

	chem "github.com/rmera/pcore"
)

type patternBond struct {
	a, b int
	e    bondExpr
}

type neighbor struct {
	atom int
	e    bondExpr
}

//Pattern is a compiled SMARTS pattern.
type Pattern struct {
	src    string
	atoms  []atomExpr
	parent []int //the atom each atom was bonded to when it was read, or -1.
	bonds  []patternBond
	adj    [][]neighbor
}

//Compile parses a SMARTS pattern.
func Compile(s string) (*Pattern, error) {
	ps := &parser{s: s, p: &Pattern{src: s}}
	if err := ps.parse(); err != nil {
		return nil, err
	}
	return ps.p, nil
}

//MustCompile is like Compile but panics on error.
func MustCompile(s string) *Pattern {
	p, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return p
}

//String returns the source of the pattern
func (P *Pattern) String() string {
	return P.src
}

//Len returns the number of atoms in the pattern.
func (P *Pattern) Len() int {
	return len(P.atoms)
}

func (P *Pattern) addAtom(e atomExpr, parent int) int {
	P.atoms = append(P.atoms, e)
	P.parent = append(P.parent, parent)
	P.adj = append(P.adj, nil)
	return len(P.atoms) - 1
}

func (P *Pattern) addBond(a, b int, e bondExpr) {
	P.bonds = append(P.bonds, patternBond{a, b, e})
	P.adj[a] = append(P.adj[a], neighbor{b, e})
	P.adj[b] = append(P.adj[b], neighbor{a, e})
}

func (P *Pattern) bonded(a, b int) bool {
	for _, n := range P.adj[a] {
		if n.atom == b {
			return true
		}
	}
	return false
}

//Match returns all the embeddings of the pattern in top. Each embedding gives, for
//each pattern atom, the index of the topology atom it matches. Symmetry-equivalent
//embeddings are all returned, see UniqueMatch.
func (P *Pattern) Match(top *chem.Topology) [][]int {
	return P.MatchLimit(top, 0)
}

//MatchLimit is like Match, but stops after limit embeddings. A limit
//of 0 or less means no limit.
func (P *Pattern) MatchLimit(top *chem.Topology, limit int) [][]int {
	return P.embed(top, -1, limit)
}

//embed finds up to limit embeddings, with the first pattern atom mapped to root
//unless root is negative.
func (P *Pattern) embed(top *chem.Topology, root, limit int) [][]int {
	n := len(P.atoms)
	if n == 0 || top.Len() == 0 {
		return nil
	}
	mapping := make([]int, n)
	for i := range mapping {
		mapping[i] = -1
	}
	used := make([]bool, top.Len())
	var ret [][]int
	var rec func(k int) bool
	rec = func(k int) bool {
		if k == n {
			m := make([]int, n)
			copy(m, mapping)
			ret = append(ret, m)
			return limit <= 0 || len(ret) < limit
		}
		cands := P.candidates(top, k, mapping)
		if k == 0 && root >= 0 {
			cands = []int{root}
		}
		for _, c := range cands {
			if used[c] || !P.atoms[k].matchAtom(top, c) || !P.bondsMatch(top, k, c, mapping) {
				continue
			}
			used[c] = true
			mapping[k] = c
			if !rec(k + 1) {
				return false
			}
			used[c] = false
			mapping[k] = -1
		}
		return true
	}
	rec(0)
	return ret
}

//candidates returns the topology atoms that pattern atom k could be mapped to.
func (P *Pattern) candidates(top *chem.Topology, k int, mapping []int) []int {
	p := P.parent[k]
	if p < 0 {
		c := make([]int, top.Len())
		for i := range c {
			c[i] = i
		}
		return c
	}
	at := top.Atom(mapping[p])
	c := make([]int, 0, len(at.Bonds))
	for _, b := range at.Bonds {
		c = append(c, b.Cross(at).Index())
	}
	return c
}

//bondsMatch checks the bonds between pattern atom k, mapped to c, and the
//pattern atoms already mapped.
func (P *Pattern) bondsMatch(top *chem.Topology, k, c int, mapping []int) bool {
	for _, nb := range P.adj[k] {
		m := mapping[nb.atom]
		if m < 0 {
			continue
		}
		b := top.Bond(m, c)
		if b == nil || !nb.e.matchBond(top, b) {
			return false
		}
	}
	return true
}

//UniqueMatch returns the embeddings of the pattern in top that map to different
//sets of atoms, in the order they are found. Each is returned as a sorted set of
//atom indexes.
func (P *Pattern) UniqueMatch(top *chem.Topology) [][]int {
	all := P.Match(top)
	seen := make(map[string]bool, len(all))
	ret := make([][]int, 0, len(all))
	for _, m := range all {
		s := make([]int, len(m))
		copy(s, m)
		sort.Ints(s)
		k := key(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		ret = append(ret, s)
	}
	return ret
}

func key(s []int) string {
	b := make([]byte, 0, 4*len(s))
	for _, v := range s {
		b = append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return string(b)
}
