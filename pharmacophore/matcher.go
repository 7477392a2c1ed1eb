/*
 * matcher.go, part of pcore.
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

	chem "github.com/rmera/pcore"
	v3 "github.com/rmera/pcore/v3"
)

//DefaultMaxAssignments is the number of partial assignments of structure points to
//query groups the matcher explores, per call, before giving up.
const DefaultMaxAssignments = 1000000

//MatcherOptions sets the behavior of a Matcher.
type MatcherOptions struct {
	//MaxAssignments bounds the search. 0 means DefaultMaxAssignments, and a negative
	//number means no bound.
	MaxAssignments int
}

//Matcher matches one query against structures. A Matcher is not safe for concurrent use.
//
//Finding the candidate atoms for each group (a substructure search) only depends on the
//topology, so the Matcher keeps them until it's told to reset. The geometry is evaluated
//in every call. This allows conformers of the same molecule to be matched on the setup
//done for the first one.
type Matcher struct {
	q       *Query
	max     int
	gindex  map[string]int
	checks  [][]constraintCheck //constraints to check once each group is assigned.
	ordered []constraintCheck   //the same checks, in query order.
	top     *chem.Topology
	cands   [][][]int //for each group, the atom sets that match it.
	matches []Match
	measure [][]Measurement
}

type constraintCheck struct {
	c      Constraint
	groups []int
}

//NewMatcher returns a Matcher for the query q.
func NewMatcher(q *Query, opts MatcherOptions) (*Matcher, error) {
	if q == nil {
		return nil, fmt.Errorf("pharmacophore: nil query")
	}
	if err := q.Check(); err != nil {
		return nil, err
	}
	M := &Matcher{q: q, max: opts.MaxAssignments, gindex: make(map[string]int, len(q.Groups))}
	if M.max == 0 {
		M.max = DefaultMaxAssignments
	}
	for i, g := range q.Groups {
		M.gindex[g.ID] = i
	}
	//a constraint is checked as soon as the last of its groups is assigned.
	M.checks = make([][]constraintCheck, len(q.Groups))
	for _, c := range q.Constraints {
		ids := c.Groups()
		cc := constraintCheck{c: c, groups: make([]int, len(ids))}
		last := 0
		for i, id := range ids {
			cc.groups[i] = M.gindex[id]
			if cc.groups[i] > last {
				last = cc.groups[i]
			}
		}
		M.checks[last] = append(M.checks[last], cc)
		M.ordered = append(M.ordered, cc)
	}
	return M, nil
}

//Query returns the query of the Matcher.
func (M *Matcher) Query() *Query {
	return M.q
}

//Matches returns true if the structure with topology top and coordinates coords matches
//the query. If reset is true, the group candidates are searched again in top, which must
//be done for every new topology. With reset false, the candidates found in the last reset
//are used with the new coordinates. Aromaticity must have been perceived in top.
func (M *Matcher) Matches(top *chem.Topology, coords *v3.Matrix, reset bool) (bool, error) {
	M.matches = nil
	M.measure = nil
	if top == nil || coords == nil {
		return false, fmt.Errorf("pharmacophore: nil topology or coordinates")
	}
	if coords.NVecs() != top.Len() {
		return false, fmt.Errorf("pharmacophore: %d coordinates for %d atoms in %q", coords.NVecs(), top.Len(), top.Title())
	}
	if reset || M.top == nil {
		M.setup(top)
	} else if M.top != top {
		return false, fmt.Errorf("pharmacophore: matcher used on a new topology (%q) without a reset", top.Title())
	}
	for _, c := range M.cands {
		if len(c) == 0 {
			return false, nil
		}
	}
	points := make([][]Point, len(M.cands))
	for i, cs := range M.cands {
		points[i] = make([]Point, len(cs))
		for j, atoms := range cs {
			points[i][j] = Point{Group: M.q.Groups[i].ID, Atoms: atoms, Position: chem.Centroid(coords, atoms...)}
		}
	}
	found, err := M.search(points)
	if err != nil {
		return false, err
	}
	seen := make(map[string]bool, len(found))
	for _, m := range found {
		k := m.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		M.matches = append(M.matches, m)
		M.measure = append(M.measure, M.measureMatch(m))
	}
	return len(M.matches) > 0, nil
}

//setup finds the candidate atom sets for each group in top.
func (M *Matcher) setup(top *chem.Topology) {
	M.top = top
	M.cands = make([][][]int, len(M.q.Groups))
	for i, g := range M.q.Groups {
		seen := make(map[string]bool)
		for _, p := range g.patterns {
			for _, atoms := range p.UniqueMatch(top) {
				k := atomsKey(atoms)
				if seen[k] {
					continue
				}
				seen[k] = true
				M.cands[i] = append(M.cands[i], atoms)
			}
		}
	}
}

//search backtracks over the assignments of points to groups. Two groups can't be assigned
//points with the same atoms.
func (M *Matcher) search(points [][]Point) ([]Match, error) {
	n := len(points)
	current := make(Match, n)
	used := make(map[string]bool, n)
	var found []Match
	explored := 0
	var rec func(k int) error
	rec = func(k int) error {
		if k == n {
			m := make(Match, n)
			copy(m, current)
			found = append(found, m)
			return nil
		}
		for _, p := range points[k] {
			key := atomsKey(p.Atoms)
			if used[key] {
				continue
			}
			explored++
			if M.max > 0 && explored > M.max {
				return ErrSearchLimit
			}
			current[k] = p
			if !M.satisfied(k, current) {
				continue
			}
			used[key] = true
			if err := rec(k + 1); err != nil {
				return err
			}
			used[key] = false
		}
		return nil
	}
	if err := rec(0); err != nil {
		return nil, fmt.Errorf("%w (%d assignments explored)", err, explored)
	}
	return found, nil
}

//satisfied checks the constraints that become complete when group k is assigned.
func (M *Matcher) satisfied(k int, current Match) bool {
	for _, cc := range M.checks[k] {
		v := measureValue(cc, current)
		lo, up := cc.c.Bounds()
		if v < lo || v > up {
			return false
		}
	}
	return true
}

//measureValue returns the value of a constraint for the current assignment, rounded
//to 2 decimals.
func measureValue(cc constraintCheck, current Match) float64 {
	switch cc.c.(type) {
	case DistanceConstraint:
		return chem.RoundTo(chem.Distance(current[cc.groups[0]].Position, current[cc.groups[1]].Position), 2)
	case AngleConstraint:
		a := current[cc.groups[0]].Position
		b := current[cc.groups[1]].Position
		c := current[cc.groups[2]].Position
		return chem.RoundTo(chem.VertexAngle(a, b, c)*chem.Rad2Deg, 2)
	}
	panic(fmt.Sprintf("pharmacophore: unknown constraint type %T", cc.c))
}

func (M *Matcher) measureMatch(m Match) []Measurement {
	ret := make([]Measurement, 0, len(M.q.Constraints))
	for _, cc := range M.ordered {
		v := measureValue(cc, m)
		switch c := cc.c.(type) {
		case DistanceConstraint:
			ret = append(ret, Distance{A: c.A, B: c.B, Value: v})
		case AngleConstraint:
			ret = append(ret, Angle{A: c.A, B: c.B, C: c.C, Value: v})
		}
	}
	return ret
}

//UniqueMatches returns the matches found in the last call to Matches, without
//repeated sets of points.
func (M *Matcher) UniqueMatches() []Match {
	return M.matches
}

//MatchedConstraints returns, for each of the matches returned by UniqueMatches, the
//measured value of each constraint of the query, in the order of the query.
func (M *Matcher) MatchedConstraints() [][]Measurement {
	return M.measure
}
