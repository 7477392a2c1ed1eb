/*
 * geometric.go, part of pcore.
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
	"math"

	v3 "github.com/rmera/pcore/v3"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//Angle takes 2 vectors and calculate the angle in radians between them
//It does not check for correctness or return errors!
func Angle(v1, v2 *v3.Matrix) float64 {
	normproduct := v1.VecNorm(0) * v2.VecNorm(0)
	dotprod := v1.Dot(v2)
	argument := dotprod / normproduct
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

//VertexAngle returns the angle, in radians, formed by the points a, b and c, with b as the vertex.
func VertexAngle(a, b, c *v3.Matrix) float64 {
	ba := v3.Zeros(1)
	bc := v3.Zeros(1)
	ba.Sub(a, b)
	bc.Sub(c, b)
	return Angle(ba, bc)
}

//Distance returns the euclidean distance between the first vectors of a and b.
func Distance(a, b *v3.Matrix) float64 {
	d := v3.Zeros(1)
	d.Sub(a.VecView(0), b.VecView(0))
	return d.VecNorm(0)
}

//Centroid returns the geometric center of the vectors of coords with the given indexes.
//If no indexes are given, all the vectors are used.
//Panics if an index is out of range.
func Centroid(coords *v3.Matrix, indexes ...int) *v3.Matrix {
	if len(indexes) == 0 {
		indexes = make([]int, coords.NVecs())
		for i := range indexes {
			indexes[i] = i
		}
	}
	ret := v3.Zeros(1)
	r := ret.RawRowView(0)
	for _, i := range indexes {
		row := coords.RawRowView(i)
		for k := range r {
			r[k] += row[k]
		}
	}
	n := float64(len(indexes))
	for k := range r {
		r[k] /= n
	}
	return ret
}
