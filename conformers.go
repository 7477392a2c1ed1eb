/*
 * conformers.go, part of pcore.
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
	"io"
)

//ConformerReader reads an SD file in which the conformers of a molecule are
//contiguous records. Each call to Next returns all the conformers of one molecule
//as a single Molecule with one frame per conformer and one shared topology.
//Contiguous records belong to the same molecule when they have the same title and
//the same atoms, in the same order.
type ConformerReader struct {
	sdf     *SDFReader
	pending *Molecule
	err     error
}

//NewConformerReader returns a ConformerReader for the SD records in r.
func NewConformerReader(r io.Reader) *ConformerReader {
	return &ConformerReader{sdf: NewSDFReader(r)}
}

//Records returns the number of SD records read so far.
func (C *ConformerReader) Records() int {
	return C.sdf.Records()
}

//Next returns the next conformer group, or io.EOF when there are no more. An error
//reading a record is returned only after the group preceding it has been returned.
func (C *ConformerReader) Next() (*Molecule, error) {
	group := C.pending
	C.pending = nil
	if group == nil {
		if C.err != nil {
			return nil, C.err
		}
		var err error
		group, err = C.sdf.Next()
		if err != nil {
			C.err = err
			return nil, err
		}
	}
	for {
		next, err := C.sdf.Next()
		if err != nil {
			C.err = err //returned in the next call, io.EOF included.
			return group, nil
		}
		if !SameConformerGroup(group.Topology, next.Topology) {
			C.pending = next
			return group, nil
		}
		if err := group.AddFrame(next.Coords[0]); err != nil {
			return nil, errDecorate(err, "ConformerReader.Next")
		}
	}
}

//SameConformerGroup returns true if the topologies a and b can be taken as
//conformers of the same molecule, i.e. they have the same title and the same
//atoms and bonds.
func SameConformerGroup(a, b *Topology) bool {
	if a.Title() != b.Title() || a.Len() != b.Len() || len(a.Bonds) != len(b.Bonds) {
		return false
	}
	for i, at := range a.Atoms {
		o := b.Atoms[i]
		if at.Symbol != o.Symbol || at.Charge != o.Charge {
			return false
		}
	}
	return true
}
