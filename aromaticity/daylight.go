/*
 * daylight.go, part of pcore.
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

//Package aromaticity perceives aromatic rings in a topology, following the
//Daylight model: a ring, or a fused ring system, is aromatic when every atom in it
//can contribute to a cyclic pi system and the number of pi electrons is 4n+2.
package aromaticity

import (
	"errors"
	"fmt"

	chem "github.com/rmera/pcore"
	"github.com/rmera/pcore/chemgraph"
)

//ErrMalformedRing is returned when an atom of a ring system has a valence higher
//than allowed for its element and charge.
var ErrMalformedRing = errors.New("aromaticity: malformed ring system")

//Daylight classifies aromaticity with the Daylight rules.
//The zero value is ready to use.
type Daylight struct {
	//MaxRingSize is the size of the largest ring that can be aromatic. 0 means no limit.
	MaxRingSize int
}

//notPi marks an atom that can't be part of an aromatic pi system.
const notPi = -1

//Classify sets the Aromatic flag of the atoms and bonds of the aromatic rings of top.
//Flags set by a previous classification are cleared first, but bonds declared aromatic
//in the input (order 4) stay aromatic.
func (D Daylight) Classify(top *chem.Topology) error {
	top.ResetAromaticity()
	rings := top.Rings()
	if len(rings) == 0 {
		return nil
	}
	systems := chemgraph.RingSystems(top)
	if err := checkValences(top, systems); err != nil {
		return err
	}
	sysrings := chemgraph.SystemRings(top, systems)
	for i, s := range systems {
		insys := make(map[int]bool, len(s))
		for _, v := range s {
			insys[v] = true
		}
		pi := make(map[int]int, len(s))
		for _, v := range s {
			pi[v] = piElectrons(top, v, insys)
		}
		failed := make([]chem.Ring, 0, len(sysrings[i]))
		for _, ri := range sysrings[i] {
			r := rings[ri]
			if D.MaxRingSize > 0 && r.Len() > D.MaxRingSize {
				continue
			}
			if declaredAromatic(top, r) || huckel(r.Atoms, pi) {
				mark(top, r)
				continue
			}
			failed = append(failed, r)
		}
		D.fused(top, failed, pi)
	}
	return nil
}

//fused tests pairs of rings that share a bond, and then all the rings together,
//for the rings that were not aromatic on their own.
func (D Daylight) fused(top *chem.Topology, failed []chem.Ring, pi map[int]int) {
	if len(failed) < 2 {
		return
	}
	for i := 0; i < len(failed); i++ {
		for j := i + 1; j < len(failed); j++ {
			if !shareBond(failed[i], failed[j]) {
				continue
			}
			atoms := union(failed[i].Atoms, failed[j].Atoms)
			if D.MaxRingSize > 0 && len(atoms) > D.MaxRingSize {
				continue
			}
			if huckel(atoms, pi) {
				mark(top, failed[i])
				mark(top, failed[j])
			}
		}
	}
	if len(failed) < 3 {
		return
	}
	all := failed[0].Atoms
	for _, r := range failed[1:] {
		all = union(all, r.Atoms)
	}
	if D.MaxRingSize > 0 && len(all) > D.MaxRingSize {
		return
	}
	if huckel(all, pi) {
		for _, r := range failed {
			mark(top, r)
		}
	}
}

func checkValences(top *chem.Topology, systems [][]int) error {
	for _, s := range systems {
		for _, v := range s {
			at := top.Atom(v)
			max := chem.MaxValence(at.Symbol, at.Charge)
			if max == 0 {
				continue
			}
			if sum := top.BondOrderSum(v); sum > max {
				return fmt.Errorf("%w: atom %d (%s) has valence %d, at most %d allowed", ErrMalformedRing, at.ID, at.Symbol, sum, max)
			}
		}
	}
	return nil
}

//huckel returns true if all the atoms contribute to the pi system and
//the electron count is 4n+2.
func huckel(atoms []int, pi map[int]int) bool {
	sum := 0
	for _, v := range atoms {
		p := pi[v]
		if p == notPi {
			return false
		}
		sum += p
	}
	return sum >= 2 && (sum-2)%4 == 0
}

//declaredAromatic returns true if all the bonds of the ring were aromatic in the input.
func declaredAromatic(top *chem.Topology, r chem.Ring) bool {
	for _, b := range r.Bonds {
		if top.Bonds[b].Order != chem.AromaticOrder {
			return false
		}
	}
	return true
}

func mark(top *chem.Topology, r chem.Ring) {
	for _, v := range r.Atoms {
		top.Atom(v).Aromatic = true
	}
	for _, b := range r.Bonds {
		top.Bonds[b].Aromatic = true
	}
}

//piElectrons returns the number of electrons atom i contributes to the pi system of
//the ring system insys, or notPi.
func piElectrons(top *chem.Topology, i int, insys map[int]bool) int {
	at := top.Atom(i)
	endo, exo, exoEN, aromatic := 0, 0, 0, 0
	for _, b := range at.Bonds {
		other := b.Cross(at)
		switch b.Order {
		case 2:
			if insys[other.Index()] {
				endo++
			} else {
				exo++
				if electronegative(other.Symbol) {
					exoEN++
				}
			}
		case 3:
			return notPi
		case chem.AromaticOrder:
			aromatic++
		}
	}
	if endo > 1 {
		return notPi //allenes and cumulenes
	}
	if endo == 1 {
		return 1
	}
	if exo > 0 {
		if exo == exoEN && at.Symbol != "N" {
			return 0 //carbonyl and similar, as in pyridones and quinones
		}
		return notPi
	}
	if aromatic > 0 {
		//only aromatic-coded bonds.
		if lonePairDonor(top, i) {
			return 2
		}
		return 1
	}
	switch at.Symbol {
	case "C":
		switch at.Charge {
		case -1:
			return 2
		case 1:
			return 0
		}
		return notPi
	case "N", "P", "As":
		if at.Charge == 0 && top.Degree(i)+top.ImplicitH(i) == 3 {
			return 2
		}
		if at.Charge == -1 {
			return 2
		}
		return notPi
	case "O", "S", "Se", "Te":
		if at.Charge == 0 && top.Degree(i)+top.ImplicitH(i) == 2 {
			return 2
		}
		return notPi
	case "B":
		if at.Charge == 0 {
			return 0
		}
	}
	return notPi
}

//lonePairDonor returns true for the atoms that can give a lone pair to a ring.
func lonePairDonor(top *chem.Topology, i int) bool {
	at := top.Atom(i)
	if at.Charge != 0 {
		return false
	}
	switch at.Symbol {
	case "N", "P", "As":
		return top.Degree(i) == 3
	case "O", "S", "Se", "Te":
		return true
	}
	return false
}

func electronegative(symbol string) bool {
	switch symbol {
	case "O", "S", "N", "Se":
		return true
	}
	return false
}

func shareBond(a, b chem.Ring) bool {
	for _, v := range a.Bonds {
		for _, w := range b.Bonds {
			if v == w {
				return true
			}
		}
	}
	return false
}

func union(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	ret := make([]int, 0, len(a)+len(b))
	for _, s := range [][]int{a, b} {
		for _, v := range s {
			if !seen[v] {
				seen[v] = true
				ret = append(ret, v)
			}
		}
	}
	return ret
}
