/*
 * xml.go, part of pcore.
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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/pcore"
	"github.com/rmera/pcore/smarts"
)

//Query files follow the layout of the CDK pharmacophore definitions:
//
//	<pharmacophoreContainer version="1.0">
//	  <pharmacophore name="..." description="...">
//	    <pharmacophoreGroup id="N" smarts="[NX3]"/>
//	    <distanceConstraint lower="2.5" upper="3.5" units="A">
//	      <groupRef id="N"/>
//	      <groupRef id="O"/>
//	    </distanceConstraint>
//	    <angleConstraint lower="40" upper="60" units="degrees">
//	      <groupRef id="N"/> <groupRef id="A"/> <groupRef id="O"/>
//	    </angleConstraint>
//	  </pharmacophore>
//	  <pharmacophoreGroup id="O" smarts="[OX2]"/>
//	</pharmacophoreContainer>
//
//Groups defined directly in the container are global, and can be referenced by any
//pharmacophore. A local group with the same id takes precedence.

const (
	rootElement     = "pharmacophoreContainer"
	distanceElement = "distanceConstraint"
	angleElement    = "angleConstraint"
)

type xmlContainer struct {
	XMLName        xml.Name
	Version        string             `xml:"version,attr"`
	Pharmacophores []xmlPharmacophore `xml:"pharmacophore"`
	Groups         []xmlGroup         `xml:"pharmacophoreGroup"`
}

type xmlPharmacophore struct {
	Name        string       `xml:"name,attr"`
	Description string       `xml:"description,attr"`
	Groups      []xmlGroup   `xml:"pharmacophoreGroup"`
	Elements    []xmlElement `xml:",any"`
}

type xmlGroup struct {
	ID          *string `xml:"id,attr"`
	Smarts      *string `xml:"smarts,attr"`
	Description string  `xml:"description,attr"`
}

type xmlElement struct {
	XMLName xml.Name
	Lower   *string  `xml:"lower,attr"`
	Upper   *string  `xml:"upper,attr"`
	Refs    []xmlRef `xml:"groupRef"`
}

type xmlRef struct {
	ID string `xml:"id,attr"`
}

//ValidationError lists the structural problems found in a query file.
type ValidationError struct {
	Issues []string
}

func (V *ValidationError) Error() string {
	if len(V.Issues) == 1 {
		return "pharmacophore: invalid query file: " + V.Issues[0]
	}
	return fmt.Sprintf("pharmacophore: invalid query file, %d problems: %s", len(V.Issues), strings.Join(V.Issues, "; "))
}

func (V *ValidationError) addf(format string, a ...interface{}) {
	V.Issues = append(V.Issues, fmt.Sprintf(format, a...))
}

func decode(r io.Reader) (*xmlContainer, error) {
	c := new(xmlContainer)
	if err := xml.NewDecoder(r).Decode(c); err != nil {
		if err == io.EOF {
			return nil, &ValidationError{Issues: []string{"empty document"}}
		}
		return nil, fmt.Errorf("pharmacophore: can't parse query file: %w", err)
	}
	return c, nil
}

//Validate checks the structure of the query file read from r. It returns nil if the
//file is valid, a *ValidationError listing the problems found if it isn't, or other
//error if the file can't be read as XML.
func Validate(r io.Reader) error {
	c, err := decode(r)
	if err != nil {
		return err
	}
	_, err = c.build(true)
	return err
}

//Parse reads all the queries in the file read from r. The file is validated first, and
//a *ValidationError is returned if it's not valid. A file with no queries is not an
//error for Parse, see Resolve.
func Parse(r io.Reader) ([]*Query, error) {
	c, err := decode(r)
	if err != nil {
		return nil, err
	}
	return c.build(false)
}

//ReadFile reads all the queries in the file name. Compressed files are accepted, see
//chem.OpenInput.
func ReadFile(name string) ([]*Query, error) {
	f, err := chem.OpenInput(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	q, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return q, nil
}

//ValidateFile is like Validate, for the file name.
func ValidateFile(name string) error {
	f, err := chem.OpenInput(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return Validate(f)
}

//build turns the decoded document into queries, collecting every structural
//problem found. A document without pharmacophores is only a problem if strict.
func (c *xmlContainer) build(strict bool) ([]*Query, error) {
	verr := new(ValidationError)
	if c.XMLName.Local != rootElement {
		verr.addf("root element is <%s>, expected <%s>", c.XMLName.Local, rootElement)
		return nil, verr
	}
	if strict && len(c.Pharmacophores) == 0 {
		verr.addf("no <pharmacophore> definitions")
	}
	globals := buildGroups(c.Groups, "global group", verr)
	queries := make([]*Query, 0, len(c.Pharmacophores))
	for i, p := range c.Pharmacophores {
		where := fmt.Sprintf("pharmacophore %d", i+1)
		if p.Name != "" {
			where = fmt.Sprintf("pharmacophore %d (%s)", i+1, p.Name)
		}
		q := &Query{Name: p.Name, Description: p.Description}
		locals := buildGroups(p.Groups, where+": group", verr)
		used := make(map[string]bool)
		resolve := func(id string) *Group {
			if g, ok := locals[id]; ok {
				return g
			}
			return globals[id]
		}
		use := func(g *Group) {
			if !used[g.ID] {
				used[g.ID] = true
				q.Groups = append(q.Groups, g)
			}
		}
		//all local groups are part of the query, referenced or not, in file order.
		for _, g := range orderedGroups(p.Groups, locals) {
			use(g)
		}
		for j, e := range p.Elements {
			cwhere := fmt.Sprintf("%s: constraint %d <%s>", where, j+1, e.XMLName.Local)
			var arity int
			switch e.XMLName.Local {
			case distanceElement:
				arity = 2
			case angleElement:
				arity = 3
			default:
				verr.addf("%s: unknown element <%s>", where, e.XMLName.Local)
				continue
			}
			lo, up, ok := bounds(e, cwhere, verr)
			if ok && arity == 3 && (lo < 0 || up > 180) {
				verr.addf("%s: angle bounds must be within [0,180]", cwhere)
				ok = false
			}
			if ok && arity == 2 && lo < 0 {
				verr.addf("%s: negative distance", cwhere)
				ok = false
			}
			if len(e.Refs) != arity {
				verr.addf("%s: %d group references, expected %d", cwhere, len(e.Refs), arity)
				continue
			}
			ids := make([]string, arity)
			for k, ref := range e.Refs {
				g := resolve(ref.ID)
				if g == nil {
					verr.addf("%s: reference to undefined group %q", cwhere, ref.ID)
					ok = false
					continue
				}
				use(g)
				ids[k] = ref.ID
			}
			if !ok {
				continue
			}
			if arity == 2 {
				q.Constraints = append(q.Constraints, DistanceConstraint{A: ids[0], B: ids[1], Lower: lo, Upper: up})
			} else {
				q.Constraints = append(q.Constraints, AngleConstraint{A: ids[0], B: ids[1], C: ids[2], Lower: lo, Upper: up})
			}
		}
		if len(q.Groups) == 0 {
			verr.addf("%s: no groups", where)
		}
		queries = append(queries, q)
	}
	if len(verr.Issues) > 0 {
		return nil, verr
	}
	return queries, nil
}

//buildGroups compiles the group definitions, recording the problems in verr. Only the
//valid groups are returned.
func buildGroups(defs []xmlGroup, where string, verr *ValidationError) map[string]*Group {
	ret := make(map[string]*Group, len(defs))
	for i, d := range defs {
		if d.ID == nil || *d.ID == "" {
			verr.addf("%s %d: missing id", where, i+1)
			continue
		}
		if _, ok := ret[*d.ID]; ok {
			verr.addf("%s %s: duplicated id", where, *d.ID)
			continue
		}
		if d.Smarts == nil || strings.TrimSpace(*d.Smarts) == "" {
			verr.addf("%s %s: missing smarts", where, *d.ID)
			continue
		}
		g, err := NewGroup(*d.ID, *d.Smarts)
		if err != nil {
			var se *smarts.SyntaxError
			if errors.As(err, &se) {
				verr.addf("%s %s: %s at position %d of %q", where, *d.ID, se.Msg, se.Pos, se.Pattern)
			} else {
				verr.addf("%s %s: %s", where, *d.ID, err.Error())
			}
			continue
		}
		g.Description = d.Description
		ret[*d.ID] = g
	}
	return ret
}

//orderedGroups returns the groups in m in the order they were defined.
func orderedGroups(defs []xmlGroup, m map[string]*Group) []*Group {
	ret := make([]*Group, 0, len(m))
	for _, d := range defs {
		if d.ID == nil {
			continue
		}
		if g, ok := m[*d.ID]; ok && !containsGroup(ret, g) {
			ret = append(ret, g)
		}
	}
	return ret
}

func containsGroup(gs []*Group, g *Group) bool {
	for _, v := range gs {
		if v == g {
			return true
		}
	}
	return false
}

//bounds parses the lower and upper attributes of a constraint. A missing upper bound
//means that it's the same as the lower bound.
func bounds(e xmlElement, where string, verr *ValidationError) (float64, float64, bool) {
	if e.Lower == nil {
		verr.addf("%s: missing lower bound", where)
		return 0, 0, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(*e.Lower), 64)
	if err != nil {
		verr.addf("%s: lower bound %q is not a number", where, *e.Lower)
		return 0, 0, false
	}
	up := lo
	if e.Upper != nil {
		up, err = strconv.ParseFloat(strings.TrimSpace(*e.Upper), 64)
		if err != nil {
			verr.addf("%s: upper bound %q is not a number", where, *e.Upper)
			return 0, 0, false
		}
	}
	if up < lo {
		verr.addf("%s: upper bound %g is smaller than lower bound %g", where, up, lo)
		return 0, 0, false
	}
	return lo, up, true
}
