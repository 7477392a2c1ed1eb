/*
 * graph_test.go, part of pcore.
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

package chemgraph

import (
	"testing"

	chem "github.com/rmera/pcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//biphenyl-like: two 6-rings joined by a single bond, plus a detached methane.
func testTopology(Te *testing.T) *chem.Topology {
	top := chem.NewTopology("test")
	for i := 0; i < 13; i++ {
		top.AppendAtom(&chem.Atom{Symbol: "C"})
	}
	bonds := [][3]int{{0, 1, 2}, {1, 2, 1}, {2, 3, 2}, {3, 4, 1}, {4, 5, 2}, {5, 0, 1}, {3, 6, 1},
		{6, 7, 2}, {7, 8, 1}, {8, 9, 2}, {9, 10, 1}, {10, 11, 2}, {11, 6, 1}}
	for _, b := range bonds {
		_, err := top.AddBond(b[0], b[1], b[2])
		require.NoError(Te, err)
	}
	return top
}

func TestFragments(Te *testing.T) {
	top := testTopology(Te)
	f := Fragments(top)
	require.Len(Te, f, 2)
	assert.Len(Te, f[0], 12)
	assert.Equal(Te, []int{12}, f[1])
}

func TestRingSystems(Te *testing.T) {
	top := testTopology(Te)
	s := RingSystems(top)
	require.Len(Te, s, 2)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5}, s[0])
	assert.Equal(Te, []int{6, 7, 8, 9, 10, 11}, s[1])
	sr := SystemRings(top, s)
	assert.Len(Te, sr[0], 1)
	assert.Len(Te, sr[1], 1)
	g := FromTopology(top, nil)
	b := BondBetween(g, 3, 6)
	require.NotNil(Te, b)
	assert.False(Te, top.InRing(b))
	assert.Nil(Te, BondBetween(g, 0, 6))
	e := Bond{Bond: b}
	assert.Equal(Te, int64(6), e.ReversedEdge().From().ID())
	assert.Equal(Te, int64(3), e.From().ID())
}
