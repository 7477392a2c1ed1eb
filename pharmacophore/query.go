/*
 * query.go, part of pcore.
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

//Package pharmacophore reads pharmacophore queries and matches them against the 3D
//structures of molecules.
//
//A query is a set of groups, each defined by one or more SMARTS patterns, and a set of
//geometric constraints between them: distances between two groups and angles between
//three. The position of a group in a structure is the centroid of the atoms matched
//by its pattern.
package pharmacophore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmera/pcore/smarts"
)

//Sentinel errors
var (
	//ErrEmptyQuerySet is returned when a query file defines no queries.
	ErrEmptyQuerySet = errors.New("pharmacophore: no queries defined")
	//ErrQueryNotFound is returned when no query has the requested name.
	ErrQueryNotFound = errors.New("pharmacophore: query not found")
	//ErrSearchLimit is returned when the matcher explores more assignments than allowed.
	ErrSearchLimit = errors.New("pharmacophore: assignment search limit exceeded")
)

//patternSeparator separates alternative SMARTS patterns in a group definition.
const patternSeparator = "|"

//Group is a pharmacophore group, such as a hydrogen bond donor or an aromatic ring.
type Group struct {
	ID          string
	Smarts      string
	Description string
	patterns    []*smarts.Pattern
}

//NewGroup returns a group with the given id. smartsdef can contain several patterns
//separated by "|", the group matches any of them.
func NewGroup(id, smartsdef string) (*Group, error) {
	g := &Group{ID: id, Smarts: smartsdef}
	if err := g.compile(); err != nil {
		return nil, err
	}
	return g, nil
}

func (G *Group) compile() error {
	G.patterns = G.patterns[:0]
	for _, s := range strings.Split(G.Smarts, patternSeparator) {
		p, err := smarts.Compile(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("group %s: %w", G.ID, err)
		}
		G.patterns = append(G.patterns, p)
	}
	return nil
}

//Patterns returns the compiled patterns of the group.
func (G *Group) Patterns() []*smarts.Pattern {
	return G.patterns
}

//Constraint is a geometric condition between groups. It is implemented by
//DistanceConstraint and AngleConstraint only.
type Constraint interface {
	//Groups returns the IDs of the groups involved, in order.
	Groups() []string
	//Bounds returns the lower and upper limits of the constraint. Both are inclusive.
	Bounds() (float64, float64)
	constraint()
}

//DistanceConstraint requires the distance, in A, between the groups A and B to lie between
//Lower and Upper.
type DistanceConstraint struct {
	A, B         string
	Lower, Upper float64
}

func (D DistanceConstraint) Groups() []string           { return []string{D.A, D.B} }
func (D DistanceConstraint) Bounds() (float64, float64) { return D.Lower, D.Upper }
func (D DistanceConstraint) constraint()                {}

//AngleConstraint requires the angle, in degrees, formed by the groups A, B and C, with B
//at the vertex, to lie between Lower and Upper.
type AngleConstraint struct {
	A, B, C      string
	Lower, Upper float64
}

func (A AngleConstraint) Groups() []string           { return []string{A.A, A.B, A.C} }
func (A AngleConstraint) Bounds() (float64, float64) { return A.Lower, A.Upper }
func (A AngleConstraint) constraint()                {}

//Query is a pharmacophore query.
type Query struct {
	Name        string
	Description string
	Groups      []*Group
	Constraints []Constraint
}

//Group returns the group of the query with the given ID, or nil.
func (Q *Query) Group(id string) *Group {
	for _, g := range Q.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

//Check verifies that the query has groups, that every constraint refers to groups of the
//query and that the bounds of the constraints make sense. It also compiles the patterns
//of groups built by hand.
func (Q *Query) Check() error {
	if len(Q.Groups) == 0 {
		return fmt.Errorf("pharmacophore: query %q has no groups", Q.Name)
	}
	for _, g := range Q.Groups {
		if len(g.patterns) == 0 {
			if err := g.compile(); err != nil {
				return err
			}
		}
	}
	for i, c := range Q.Constraints {
		for _, id := range c.Groups() {
			if Q.Group(id) == nil {
				return fmt.Errorf("pharmacophore: constraint %d of query %q refers to unknown group %q", i+1, Q.Name, id)
			}
		}
		lo, up := c.Bounds()
		if up < lo {
			return fmt.Errorf("pharmacophore: constraint %d of query %q has upper bound %g < lower bound %g", i+1, Q.Name, up, lo)
		}
	}
	return nil
}

//Selection chooses one query from a set. Use First or ByName.
type Selection struct {
	name   string
	byName bool
}

//First selects the first query of a set.
func First() Selection {
	return Selection{}
}

//ByName selects the query with the given name.
func ByName(name string) Selection {
	return Selection{name: name, byName: true}
}

func (S Selection) String() string {
	if S.byName {
		return fmt.Sprintf("query named %q", S.name)
	}
	return "first query"
}

//Resolve returns the query chosen by sel among queries, and the name of the query,
//which can be empty for an unnamed query selected with First.
func Resolve(queries []*Query, sel Selection) (*Query, string, error) {
	if len(queries) == 0 {
		return nil, "", ErrEmptyQuerySet
	}
	if !sel.byName {
		return queries[0], queries[0].Name, nil
	}
	for _, q := range queries {
		if q.Name == sel.name {
			return q, q.Name, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %q", ErrQueryNotFound, sel.name)
}
