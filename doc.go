/*
 * doc.go, part of pcore.
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

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package chem is the main package of the pcore library. It provides atom, topology and molecule structures,
facilities for reading and writing MDL SD files and the few geometric functions needed to screen libraries
of 3D structures against pharmacophore queries.



	**pcore Capabilities**


    Reads and writes SD (V2000 molfile) records, with formal charges and data items,
	optionally gzip or zstd compressed.

    Reads conformer libraries: contiguous records for the same molecule are collected
	in one Molecule, with one topology and one coordinate set per conformer.

    Perceives rings (the smallest ring through each bond) and counts implicit and
	explicit hydrogens.

    Perceives aromaticity following the Daylight model (package aromaticity).

    Matches a subset of SMARTS against topologies (package smarts).

    Reads pharmacophore queries with distance and angle constraints in the CDK XML
	layout, and matches them against 3D structures (package pharmacophore).

    Screens molecule and conformer libraries, writing hits with marker atoms on the
	pharmacophore groups and a tab-separated report (package search, and the pcsearch
	command).



The coordinates are kept in v3.Matrix objects, which wrap gonum's Dense matrices.
A Molecule is a Topology plus a slice of v3.Matrix, one per frame, so the conformers of a
molecule share all their non-geometric information.

Some functions panic instead of returning errors. This happens when the
program is most likely wrong (out of range indexes, nil objects), not when the input is.
*/
package chem
