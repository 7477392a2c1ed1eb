/*
 * expr.go, part of pcore.
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

package smarts

import (
	chem "github.com/rmera/pcore"
)

//atom expressions

type atomExpr interface {
	matchAtom(top *chem.Topology, i int) bool
}

type atomPrimitive int

const (
	anyAtom atomPrimitive = iota
	aromaticAtom
	aliphaticAtom
	elementAtom   //value is the atomic number, aromatic is checked by arom.
	hcountAtom    //total H
	degreeAtom    //explicit connections
	connectAtom   //total connections
	ringCountAtom //-1 means in any ring
	ringSizeAtom  //-1 means in any ring
	valenceAtom
	chargeAtom
	implicitHAtom //-1 means at least one
	ringBondsAtom //-1 means at least one
)

type primitive struct {
	kind  atomPrimitive
	value int
	arom  int //for elements: 0 either, 1 aromatic only, 2 aliphatic only.
}

func (p primitive) matchAtom(top *chem.Topology, i int) bool {
	at := top.Atom(i)
	switch p.kind {
	case anyAtom:
		return true
	case aromaticAtom:
		return at.Aromatic
	case aliphaticAtom:
		return !at.Aromatic
	case elementAtom:
		if chem.AtomicNumber(at.Symbol) != p.value {
			return false
		}
		switch p.arom {
		case 1:
			return at.Aromatic
		case 2:
			return !at.Aromatic
		}
		return true
	case hcountAtom:
		return top.HCount(i) == p.value
	case degreeAtom:
		return top.Degree(i) == p.value
	case connectAtom:
		return top.Degree(i)+top.ImplicitH(i) == p.value
	case ringCountAtom:
		n := top.RingCount(i)
		if p.value < 0 {
			return n > 0
		}
		return n == p.value
	case ringSizeAtom:
		s := smallestRing(top, i)
		if p.value < 0 {
			return s > 0
		}
		return s == p.value
	case valenceAtom:
		return top.BondOrderSum(i)+top.ImplicitH(i) == p.value
	case chargeAtom:
		return at.Charge == p.value
	case implicitHAtom:
		return atLeast(top.ImplicitH(i), p.value)
	case ringBondsAtom:
		n := 0
		for _, b := range at.Bonds {
			if top.InRing(b) {
				n++
			}
		}
		return atLeast(n, p.value)
	}
	return false
}

//atLeast returns n == value, or n > 0 if value is negative.
func atLeast(n, value int) bool {
	if value < 0 {
		return n > 0
	}
	return n == value
}

//recursiveAtom matches the atoms a pattern can be rooted at.
type recursiveAtom struct{ p *Pattern }

func (r recursiveAtom) matchAtom(top *chem.Topology, i int) bool {
	return len(r.p.embed(top, i, 1)) > 0
}

//smallestRing returns the size of the smallest ring containing atom i, or 0.
func smallestRing(top *chem.Topology, i int) int {
	min := 0
	for _, r := range top.Rings() {
		if r.HasAtom(i) && (min == 0 || r.Len() < min) {
			min = r.Len()
		}
	}
	return min
}

type notAtom struct{ e atomExpr }

func (n notAtom) matchAtom(top *chem.Topology, i int) bool { return !n.e.matchAtom(top, i) }

type andAtom struct{ a, b atomExpr }

func (n andAtom) matchAtom(top *chem.Topology, i int) bool {
	return n.a.matchAtom(top, i) && n.b.matchAtom(top, i)
}

type orAtom struct{ a, b atomExpr }

func (n orAtom) matchAtom(top *chem.Topology, i int) bool {
	return n.a.matchAtom(top, i) || n.b.matchAtom(top, i)
}

//bond expressions

type bondExpr interface {
	matchBond(top *chem.Topology, b *chem.Bond) bool
}

type bondPrimitive int

const (
	singleBond bondPrimitive = iota
	doubleBond
	tripleBond
	aromaticBond
	anyBond
	ringBond
	defaultBond //single or aromatic
)

func (p bondPrimitive) matchBond(top *chem.Topology, b *chem.Bond) bool {
	switch p {
	case singleBond:
		return !b.Aromatic && (b.Order == 1 || b.Order == 0)
	case doubleBond:
		return !b.Aromatic && b.Order == 2
	case tripleBond:
		return b.Order == 3
	case aromaticBond:
		return b.Aromatic
	case anyBond:
		return true
	case ringBond:
		return top.InRing(b)
	case defaultBond:
		return b.Aromatic || b.Order == 1 || b.Order == 0
	}
	return false
}

type notBond struct{ e bondExpr }

func (n notBond) matchBond(top *chem.Topology, b *chem.Bond) bool { return !n.e.matchBond(top, b) }

type andBond struct{ a, b bondExpr }

func (n andBond) matchBond(top *chem.Topology, b *chem.Bond) bool {
	return n.a.matchBond(top, b) && n.b.matchBond(top, b)
}

type orBond struct{ a, b bondExpr }

func (n orBond) matchBond(top *chem.Topology, b *chem.Bond) bool {
	return n.a.matchBond(top, b) || n.b.matchBond(top, b)
}
