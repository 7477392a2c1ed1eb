/*
 * atomicdata.go, part of pcore.
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

//MarkerSymbol is the element symbol given to the atoms added to mark the
//position of a matched pharmacophore group. No real molecule in a screening
//library is expected to contain it.
const MarkerSymbol = "Xe"

//AromaticOrder is the bond order code for aromatic bonds in MDL files.
const AromaticOrder = 4

//A map for assigning atomic numbers to elements.
//The elements are those found in drug-like libraries, plus the marker.
var symbolNumber = map[string]int{
	"H":  1,
	"He": 2,
	"Li": 3,
	"Be": 4,
	"B":  5,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"Ne": 10,
	"Na": 11,
	"Mg": 12,
	"Al": 13,
	"Si": 14,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"Ar": 18,
	"K":  19,
	"Ca": 20,
	"Mn": 25,
	"Fe": 26,
	"Co": 27,
	"Ni": 28,
	"Cu": 29,
	"Zn": 30,
	"Ga": 31,
	"Ge": 32,
	"As": 33,
	"Se": 34,
	"Br": 35,
	"Kr": 36,
	"Sn": 50,
	"Te": 52,
	"I":  53,
	"Xe": 54,
}

//A map with the allowed valences for the elements for which
//implicit hydrogens are added, in increasing order. These are the
//"organic subset" of the SMILES language.
var symbolValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}

//AtomicNumber returns the atomic number of the element with the given symbol,
//or 0 if the symbol is unknown.
func AtomicNumber(symbol string) int {
	return symbolNumber[symbol]
}

//DefaultValences returns the allowed valences of an uncharged atom of the given element, or
//nil if the element has no defined valences.
func DefaultValences(symbol string) []int {
	return symbolValences[symbol]
}

//MaxValence returns the highest valence allowed for an atom with the given symbol
//and formal charge. It returns 0 when undefined.
func MaxValence(symbol string, charge int) int {
	if symbol == "H" {
		return 1
	}
	valences := symbolValences[symbol]
	if len(valences) == 0 {
		return 0
	}
	return adjustValence(symbol, valences[len(valences)-1], charge)
}

//adjustValence corrects a neutral-atom valence for the formal charge.
//Group 15 and 16 elements gain a bond per positive charge (NH4+, H3O+) and lose
//one per negative charge. Carbon and boron lose one bond per charge of either sign.
func adjustValence(symbol string, v, charge int) int {
	switch symbol {
	case "C", "B":
		if charge < 0 {
			charge = -charge
		}
		return v - charge
	case "N", "O", "S", "P":
		return v + charge
	}
	return v
}
