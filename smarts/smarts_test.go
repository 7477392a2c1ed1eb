/*
 * smarts_test.go, part of pcore.
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
	"errors"
	"testing"

	chem "github.com/rmera/pcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(Te *testing.T, symbols []string, bonds [][3]int) *chem.Topology {
	top := chem.NewTopology("test")
	for _, s := range symbols {
		top.AppendAtom(&chem.Atom{Symbol: s})
	}
	for _, b := range bonds {
		_, err := top.AddBond(b[0], b[1], b[2])
		require.NoError(Te, err)
	}
	top.ResetAromaticity()
	return top
}

//phenol-like: aromatic ring 0-5, O on atom 0, plus an acetic acid fragment.
func testTopology(Te *testing.T) *chem.Topology {
	symbols := []string{"C", "C", "C", "C", "C", "C", "O", "C", "C", "O", "O"}
	bonds := [][3]int{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 4, 4}, {4, 5, 4}, {5, 0, 4}, {0, 6, 1},
		{7, 8, 1}, {8, 9, 2}, {8, 10, 1}}
	return build(Te, symbols, bonds)
}

func TestMatchBasics(Te *testing.T) {
	top := testTopology(Te)
	cases := []struct {
		smarts string
		unique int
	}{
		{"c1ccccc1", 1},
		{"c", 6},
		{"C", 2},
		{"a", 6},
		{"A", 5},
		{"[OX2H]", 2},
		{"[OH]c", 1},
		{"C=O", 1},
		{"C-O", 1},
		{"C~O", 2},
		{"C(=O)[OH]", 1},
		{"[#8]", 3},
		{"[#7,#8]", 3},
		{"[!#6]", 3},
		{"[R]", 6},
		{"[R0;#6]", 2},
		{"[r6]", 6},
		{"[CH3]", 1},
		{"[D1;O]", 3},
		{"c:c", 6},
		{"c@c", 6},
		{"c!@O", 1},
		{"*", 11},
		{"[N]", 0},
		{"c1ccccc1.C", 2},
	}
	for _, c := range cases {
		p, err := Compile(c.smarts)
		require.NoError(Te, err, c.smarts)
		assert.Len(Te, p.UniqueMatch(top), c.unique, c.smarts)
	}
	benzene := MustCompile("c1ccccc1")
	assert.Len(Te, benzene.Match(top), 12)
	assert.Len(Te, benzene.MatchLimit(top, 3), 3)
	assert.Equal(Te, 6, benzene.Len())
	assert.Equal(Te, "c1ccccc1", benzene.String())
}

func TestCharges(Te *testing.T) {
	top := build(Te, []string{"N", "C", "C", "O", "O"}, [][3]int{{0, 1, 1}, {1, 2, 1}, {2, 3, 2}, {2, 4, 1}})
	top.Atom(0).Charge = 1
	top.Atom(4).Charge = -1
	assert.Len(Te, MustCompile("[N+]").Match(top), 1)
	assert.Len(Te, MustCompile("[NH3+]").Match(top), 1)
	assert.Len(Te, MustCompile("[N+1]").Match(top), 1)
	assert.Len(Te, MustCompile("[O-]").Match(top), 1)
	assert.Len(Te, MustCompile("[#8;-]").Match(top), 1)
	assert.Len(Te, MustCompile("[N++]").Match(top), 0)
	assert.Len(Te, MustCompile("[+0]").Match(top), 3)
	assert.Len(Te, MustCompile("[v4]").Match(top), 3)
	assert.Len(Te, MustCompile("[X4]").Match(top), 2)
}

func TestRecursiveAndImplicitH(Te *testing.T) {
	top := testTopology(Te)
	cases := []struct {
		smarts string
		unique int
	}{
		{"[c;$(cO)]", 1},
		{"[C;$(C(=O)O)]", 1},
		{"[$(c1ccccc1)]", 6},
		{"[O;!$(O=*)]", 2},
		{"[Oh1]", 2},
		{"[h3]", 1},
		{"[O;h0]", 1},
		{"[x2]", 6},
		{"[x]", 6},
		{"[x0;#6]", 2},
	}
	for _, c := range cases {
		p, err := Compile(c.smarts)
		require.NoError(Te, err, c.smarts)
		assert.Len(Te, p.UniqueMatch(top), c.unique, c.smarts)
	}
	//ethylamine and acetamide
	amines := build(Te, []string{"N", "C", "C", "N", "C", "O", "C"}, [][3]int{{0, 1, 1}, {1, 2, 1}, {3, 4, 1}, {4, 5, 2}, {4, 6, 1}})
	assert.Len(Te, MustCompile("[N;!$(NC=O)]").Match(amines), 1)
	assert.Equal(Te, [][]int{{0}}, MustCompile("[N;!$(NC=O)]").Match(amines))
	assert.Len(Te, MustCompile("[$(NC=O)]").Match(amines), 1)
	assert.Len(Te, MustCompile("[NX3;h2,h1,H1,H2]").Match(amines), 2)
	assert.Len(Te, MustCompile("[NX3;h2,h1,H1,H2;!$(NC=O)]").Match(amines), 1)
	assert.Len(Te, MustCompile("[$([NX3]C);$(N(C)C)]").Match(amines), 0)
}

func TestSyntaxErrors(Te *testing.T) {
	cases := []struct {
		smarts string
		pos    int
	}{
		{"", 0},
		{"C(", 2},
		{"C)", 1},
		{"C1CC", 4},
		{"C=", 2},
		{"[C", 2},
		{"[$C]", 1},
		{"[$(C=)]", 5},
		{"[$(C]", 1},
		{"C/C=C/C", 1},
		{"[C@H]", 2},
		{"[13C]", 1},
		{"Q", 0},
		{"=C", 0},
		{"C11", 3},
		{"[Zz]", 1},
	}
	for _, c := range cases {
		_, err := Compile(c.smarts)
		require.Error(Te, err, c.smarts)
		var se *SyntaxError
		require.True(Te, errors.As(err, &se), c.smarts)
		assert.Equal(Te, c.pos, se.Pos, c.smarts)
		assert.Equal(Te, c.smarts, se.Pattern)
	}
	assert.Panics(Te, func() { MustCompile("C(") })
}
