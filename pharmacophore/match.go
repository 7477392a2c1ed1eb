/*
 * match.go, part of pcore.
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

package pharmacophore

import (
	"fmt"
	"sort"
	"strings"

	v3 "github.com/rmera/pcore/v3"
)

//Point is a pharmacophore group found in a structure: the atoms matched by the group
//pattern and their centroid.
type Point struct {
	Group    string
	Atoms    []int //sorted atom indexes
	Position *v3.Matrix
}

//Match is a set of points, one per group of the query, in the order of the query groups,
//that satisfies all the constraints of the query.
type Match []Point

//key identifies the set of points of a match, regardless of which group
//each point was assigned to.
func (M Match) key() string {
	keys := make([]string, len(M))
	for i, p := range M {
		keys[i] = atomsKey(p.Atoms)
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

func atomsKey(atoms []int) string {
	var b strings.Builder
	for i, v := range atoms {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	return b.String()
}

//Measurement is a constraint as measured in a match. It is implemented
//by Distance and Angle only.
type Measurement interface {
	//Groups returns the IDs of the groups measured
	Groups() []string
	//Measured returns the value, in A for distances, in degrees for angles, rounded to 2 decimals.
	Measured() float64
	measurement()
}

//Distance is the measured distance between the groups A and B.
type Distance struct {
	A, B  string
	Value float64
}

func (D Distance) Groups() []string  { return []string{D.A, D.B} }
func (D Distance) Measured() float64 { return D.Value }
func (D Distance) measurement()      {}

//Angle is the measured angle formed by the groups A, B and C, with B at the vertex.
type Angle struct {
	A, B, C string
	Value   float64
}

func (A Angle) Groups() []string  { return []string{A.A, A.B, A.C} }
func (A Angle) Measured() float64 { return A.Value }
func (A Angle) measurement()      {}
