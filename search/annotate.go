/*
 * annotate.go, part of pcore.
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

package search

import (
	chem "github.com/rmera/pcore"
	"github.com/rmera/pcore/pharmacophore"
)

//Annotate returns a new one-frame molecule with a copy of the topology of mol and of its
//frame frame, plus one marker atom (chem.MarkerSymbol) per point of each match, placed at
//the point's position and named after its group. mol is not modified.
func Annotate(mol *chem.Molecule, frame int, matches []pharmacophore.Match) *chem.Molecule {
	ret := mol.CopyFrame(frame)
	for _, m := range matches {
		for _, p := range m {
			at := &chem.Atom{Name: p.Group, ID: ret.Len() + 1, Symbol: chem.MarkerSymbol}
			if err := ret.AppendAtom(at, p.Position); err != nil {
				panic("search.Annotate: " + err.Error()) //a point without a 3D position is a matcher bug.
			}
		}
	}
	return ret
}

//Markers returns the number of marker atoms Annotate adds for matches.
func Markers(matches []pharmacophore.Match) int {
	n := 0
	for _, m := range matches {
		n += len(m)
	}
	return n
}
