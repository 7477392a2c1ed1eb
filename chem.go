/*
 * chem.go, part of pcore.
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
	"fmt"

	v3 "github.com/rmera/pcore/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

//Atom contains the atom information read, except for the coordinates, which will be in a matrix.
type Atom struct {
	Name     string
	ID       int //serial number, 1-based, as read from the file.
	Symbol   string
	Charge   int //formal charge
	MassDiff int
	Aromatic bool
	Bonds    []*Bond
	index    int
}

//Atom methods

//Index returns the position of the atom in its topology.
func (A *Atom) Index() int {
	return A.index
}

//Copy returns a copy of the Atom object. The bonds are not copied, since they
//only make sense inside a topology. See Topology.Copy.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	ret.Bonds = nil
	return &ret
}

//Property is one data item of an SD record.
type Property struct {
	Name  string
	Value string
}

/*****Topology type***/

//Topology contains the information about a molecule which is not expected to change between conformers,
//i.e. everything but the coordinates.
type Topology struct {
	Atoms []*Atom
	Bonds []*Bond
	title string
	props []Property
	rings []Ring //cache, nil means not computed.
}

//NewTopology returns an empty topology with the given title.
func NewTopology(title string) *Topology {
	return &Topology{title: title}
}

/*Topology methods*/

//Title returns the title of the topology (the first line of the SD record)
func (T *Topology) Title() string {
	return T.title
}

//SetTitle sets the title of the topology.
func (T *Topology) SetTitle(title string) {
	T.title = title
}

//Properties returns the SD data items of the topology, in file order.
func (T *Topology) Properties() []Property {
	return T.props
}

//Property returns the value of the data item name, and whether it was found.
func (T *Topology) Property(name string) (string, bool) {
	for _, v := range T.props {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

//SetProperty sets the data item name to value, appending it if it doesn't exist.
func (T *Topology) SetProperty(name, value string) {
	for i, v := range T.props {
		if v.Name == name {
			T.props[i].Value = value
			return
		}
	}
	T.props = append(T.props, Property{Name: name, Value: value})
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic(fmt.Sprintf("Topology: Requested Atom (%d) out of bounds (%d)", i, T.Len()))
	}
	return T.Atoms[i]
}

//AppendAtom appends an atom at the end of the topology and returns it.
//The bonds of the atom are discarded, use AddBond.
func (T *Topology) AppendAtom(at *Atom) *Atom {
	at.index = len(T.Atoms)
	at.Bonds = nil
	T.Atoms = append(T.Atoms, at)
	return at
}

//AddBond bonds the atoms with indexes i and j, with the given order. It returns the
//new bond, or an error if the indexes are out of range or equal.
//An order of 4 is the SD code for an aromatic bond, and sets the Aromatic flag.
func (T *Topology) AddBond(i, j int, order int) (*Bond, error) {
	if i == j || i < 0 || j < 0 || i >= T.Len() || j >= T.Len() {
		return nil, CError{fmt.Sprintf("Can't bond atoms %d and %d in a topology with %d atoms", i, j, T.Len()), []string{"AddBond"}, true, nil}
	}
	b := &Bond{Index: len(T.Bonds), At1: T.Atoms[i], At2: T.Atoms[j], Order: order}
	if order == AromaticOrder {
		b.Aromatic = true
	}
	b.At1.Bonds = append(b.At1.Bonds, b)
	b.At2.Bonds = append(b.At2.Bonds, b)
	T.Bonds = append(T.Bonds, b)
	T.rings = nil
	return b, nil
}

//Copy returns an independent copy of the topology, including bonds and properties.
func (T *Topology) Copy() *Topology {
	top := NewTopology(T.title)
	top.Atoms = make([]*Atom, 0, T.Len())
	for _, val := range T.Atoms {
		top.AppendAtom(val.Copy())
	}
	for _, b := range T.Bonds {
		nb, err := top.AddBond(b.At1.index, b.At2.index, b.Order)
		if err != nil {
			panic("Topology.Copy: corrupted topology: " + err.Error()) //copying a corrupted topology means that the program is wrong.
		}
		nb.Aromatic = b.Aromatic
	}
	if T.props != nil {
		top.props = make([]Property, len(T.props))
		copy(top.props, T.props)
	}
	return top
}

//ResetAromaticity clears the aromatic flags set on atoms and bonds, except for bonds that
//were declared aromatic in the input (order 4), and their atoms.
func (T *Topology) ResetAromaticity() {
	for _, at := range T.Atoms {
		at.Aromatic = false
	}
	for _, b := range T.Bonds {
		b.Aromatic = b.Order == AromaticOrder
		if b.Aromatic {
			b.At1.Aromatic = true
			b.At2.Aromatic = true
		}
	}
}

/**Type Molecule**/

//Molecule contains all the info for a molecule in many states, i.e. a set of conformers.
//The info that is expected to change between conformers, the coordinates, is stored
//separately from the topology, which is shared.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
}

//NewMolecule makes a molecule with the topology top and the coordinate sets
//coords. It returns an error if the topology is nil or if a coordinate set
//doesn't match the number of atoms.
func NewMolecule(top *Topology, coords ...*v3.Matrix) (*Molecule, error) {
	if top == nil {
		return nil, CError{"Supplied a nil Topology", []string{"NewMolecule"}, true, nil}
	}
	mol := &Molecule{Topology: top}
	for _, c := range coords {
		if err := mol.AddFrame(c); err != nil {
			return nil, errDecorate(err, "NewMolecule")
		}
	}
	return mol, nil
}

//The molecule methods:

//AddFrame takes a matrix of coordinates and appends it at the end of the Coords.
//It checks that the number of coordinates matches the number of atoms.
func (M *Molecule) AddFrame(newframe *v3.Matrix) error {
	if newframe == nil {
		return CError{"Attempted to add a nil frame", []string{"AddFrame"}, true, nil}
	}
	if M.Len() != newframe.NVecs() {
		return CError{fmt.Sprintf("Wrong number of coordinates (%d) for %d atoms", newframe.NVecs(), M.Len()), []string{"AddFrame"}, true, nil}
	}
	M.Coords = append(M.Coords, newframe)
	return nil
}

//LenFrames returns the number of frames (conformers) in the molecule
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//Coord returns a view of the coordinates of the atom atom in the frame frame.
//Panics if frame or atom are out of range.
func (M *Molecule) Coord(atom, frame int) *v3.Matrix {
	if frame >= len(M.Coords) {
		panic(fmt.Sprintf("Frame requested (%d) out of range", frame))
	}
	if atom >= M.Coords[frame].NVecs() {
		panic(fmt.Sprintf("Requested coordinate (%d) out of bounds (%d)", atom, M.Coords[frame].NVecs()))
	}
	return M.Coords[frame].VecView(atom)
}

//Has3D returns true if the frame frame of the molecule has 3D coordinates,
//i.e. the molecule has atoms and not all of them lie on the z=0 plane.
func (M *Molecule) Has3D(frame int) bool {
	if M == nil || M.Len() == 0 || frame >= len(M.Coords) {
		return false
	}
	c := M.Coords[frame]
	for i := 0; i < c.NVecs(); i++ {
		if c.At(i, 2) != 0 {
			return true
		}
	}
	return false
}

//Frame returns a one-frame molecule sharing the topology of M and the coordinates
//of the frame i. Nothing is copied.
func (M *Molecule) Frame(i int) *Molecule {
	if i >= len(M.Coords) {
		panic(fmt.Sprintf("Frame requested (%d) out of range", i))
	}
	return &Molecule{Topology: M.Topology, Coords: []*v3.Matrix{M.Coords[i]}}
}

//CopyFrame returns a one-frame molecule with an independent copy of the topology of M
//and of the coordinates of the frame i.
func (M *Molecule) CopyFrame(i int) *Molecule {
	if i >= len(M.Coords) {
		panic(fmt.Sprintf("Frame requested (%d) out of range", i))
	}
	c := v3.Zeros(M.Coords[i].NVecs())
	c.Copy(M.Coords[i])
	return &Molecule{Topology: M.Topology.Copy(), Coords: []*v3.Matrix{c}}
}

//AppendAtom appends at to the molecule, with the coordinates pos (one 1x3 matrix per frame).
//Only the topology of M and its coordinate slice change, but since the topology might be shared
//with other molecules, this should be used on copies. See CopyFrame.
func (M *Molecule) AppendAtom(at *Atom, pos ...*v3.Matrix) error {
	if len(pos) != len(M.Coords) {
		return CError{fmt.Sprintf("%d positions given for %d frames", len(pos), len(M.Coords)), []string{"AppendAtom"}, true, nil}
	}
	for i, p := range pos {
		if p == nil || p.NVecs() != 1 {
			return CError{fmt.Sprintf("Position for frame %d is not a single vector", i), []string{"AppendAtom"}, true, nil}
		}
	}
	for i, p := range pos {
		grown := v3.Zeros(M.Coords[i].NVecs() + 1)
		grown.Stack(M.Coords[i], p)
		M.Coords[i] = grown
	}
	M.Topology.AppendAtom(at)
	return nil
}

//Corrupted checks whether the molecule is corrupted, i.e. the
//coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	for i := range M.Coords {
		if M.Len() != M.Coords[i].NVecs() {
			return CError{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d, coords: %d", i, M.Len(), M.Coords[i].NVecs()), []string{"Corrupted"}, true, nil}
		}
	}
	return nil
}

//End Molecule methods
