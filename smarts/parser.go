/*
 * parser.go, part of pcore.
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
	"fmt"
	"strings"

	chem "github.com/rmera/pcore"
)

//SyntaxError is returned when a pattern can't be parsed. Pos is the 0-based
//position of the offending character.
type SyntaxError struct {
	Pattern string
	Pos     int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("smarts: %s at position %d of %q", e.Msg, e.Pos, e.Pattern)
}

//characters that start a bond expression outside brackets
const bondChars = "-=#:~@!&,;"

type parser struct {
	s   string
	pos int
	p   *Pattern
}

func (ps *parser) errorf(format string, a ...interface{}) error {
	return &SyntaxError{Pattern: ps.s, Pos: ps.pos, Msg: fmt.Sprintf(format, a...)}
}

//peek returns the current character, or 0 at the end of the pattern.
func (ps *parser) peek() byte {
	if ps.pos >= len(ps.s) {
		return 0
	}
	return ps.s[ps.pos]
}

func (ps *parser) peekAt(offset int) byte {
	if ps.pos+offset >= len(ps.s) {
		return 0
	}
	return ps.s[ps.pos+offset]
}

//number reads an unsigned integer, returns false if there is none.
func (ps *parser) number() (int, bool) {
	start := ps.pos
	n := 0
	for c := ps.peek(); c >= '0' && c <= '9'; c = ps.peek() {
		n = 10*n + int(c-'0')
		ps.pos++
	}
	return n, ps.pos > start
}

type closure struct {
	atom int
	bond bondExpr
}

func (ps *parser) parse() error {
	if strings.TrimSpace(ps.s) == "" {
		return ps.errorf("empty pattern")
	}
	prev := -1
	var stack []int
	var pending bondExpr
	rings := make(map[int]closure)
	for ps.pos < len(ps.s) {
		c := ps.peek()
		switch {
		case c == '(':
			if prev < 0 {
				return ps.errorf("branch without a preceding atom")
			}
			if pending != nil {
				return ps.errorf("bond before a branch")
			}
			stack = append(stack, prev)
			ps.pos++
		case c == ')':
			if len(stack) == 0 {
				return ps.errorf("unbalanced parenthesis")
			}
			if pending != nil {
				return ps.errorf("bond without a following atom")
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ps.pos++
		case c == '.':
			if len(stack) > 0 || pending != nil || prev < 0 {
				return ps.errorf("unexpected '.'")
			}
			prev = -1
			ps.pos++
		case c == '/' || c == '\\':
			return ps.errorf("stereo bonds are not supported")
		case strings.IndexByte(bondChars, c) >= 0:
			if prev < 0 {
				return ps.errorf("bond without a preceding atom")
			}
			if pending != nil {
				return ps.errorf("two consecutive bonds")
			}
			e, err := ps.bondLow()
			if err != nil {
				return err
			}
			pending = e
		case (c >= '0' && c <= '9') || c == '%':
			if prev < 0 {
				return ps.errorf("ring closure without a preceding atom")
			}
			n, err := ps.ringNumber()
			if err != nil {
				return err
			}
			open, ok := rings[n]
			if !ok {
				rings[n] = closure{atom: prev, bond: pending}
				pending = nil
				continue
			}
			bond := pending
			if bond == nil {
				bond = open.bond
			}
			if bond == nil {
				bond = defaultBond
			}
			if open.atom == prev || ps.p.bonded(open.atom, prev) {
				return ps.errorf("invalid ring closure %d", n)
			}
			ps.p.addBond(open.atom, prev, bond)
			delete(rings, n)
			pending = nil
		default:
			e, err := ps.atom()
			if err != nil {
				return err
			}
			idx := ps.p.addAtom(e, prev)
			if prev >= 0 {
				bond := pending
				if bond == nil {
					bond = defaultBond
				}
				ps.p.addBond(prev, idx, bond)
			}
			pending = nil
			prev = idx
		}
	}
	switch {
	case len(stack) > 0:
		return ps.errorf("unclosed branch")
	case pending != nil:
		return ps.errorf("bond without a following atom")
	case len(rings) > 0:
		return ps.errorf("unclosed ring")
	case len(ps.p.atoms) == 0:
		return ps.errorf("no atoms in pattern")
	}
	return nil
}

func (ps *parser) ringNumber() (int, error) {
	c := ps.peek()
	if c != '%' {
		ps.pos++
		return int(c - '0'), nil
	}
	ps.pos++
	a, b := ps.peek(), ps.peekAt(1)
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, ps.errorf("'%%' must be followed by two digits")
	}
	ps.pos += 2
	return 10*int(a-'0') + int(b-'0'), nil
}

/****bonds****/

func (ps *parser) bondLow() (bondExpr, error) {
	a, err := ps.bondOr()
	if err != nil {
		return nil, err
	}
	for ps.peek() == ';' {
		ps.pos++
		b, err := ps.bondOr()
		if err != nil {
			return nil, err
		}
		a = andBond{a, b}
	}
	return a, nil
}

func (ps *parser) bondOr() (bondExpr, error) {
	a, err := ps.bondHigh()
	if err != nil {
		return nil, err
	}
	for ps.peek() == ',' {
		ps.pos++
		b, err := ps.bondHigh()
		if err != nil {
			return nil, err
		}
		a = orBond{a, b}
	}
	return a, nil
}

func (ps *parser) bondHigh() (bondExpr, error) {
	a, err := ps.bondNot()
	if err != nil {
		return nil, err
	}
	for {
		c := ps.peek()
		if c == '&' {
			ps.pos++
		} else if c == 0 || strings.IndexByte("-=#:~@!", c) < 0 {
			return a, nil
		}
		b, err := ps.bondNot()
		if err != nil {
			return nil, err
		}
		a = andBond{a, b}
	}
}

func (ps *parser) bondNot() (bondExpr, error) {
	if ps.peek() == '!' {
		ps.pos++
		e, err := ps.bondNot()
		if err != nil {
			return nil, err
		}
		return notBond{e}, nil
	}
	var e bondPrimitive
	switch ps.peek() {
	case '-':
		e = singleBond
	case '=':
		e = doubleBond
	case '#':
		e = tripleBond
	case ':':
		e = aromaticBond
	case '~':
		e = anyBond
	case '@':
		e = ringBond
	default:
		return nil, ps.errorf("expected a bond")
	}
	ps.pos++
	return e, nil
}

/****atoms****/

//organic subset atoms, aliphatic and aromatic.
var organic = map[string]primitive{
	"B":  {kind: elementAtom, value: 5, arom: 2},
	"C":  {kind: elementAtom, value: 6, arom: 2},
	"N":  {kind: elementAtom, value: 7, arom: 2},
	"O":  {kind: elementAtom, value: 8, arom: 2},
	"P":  {kind: elementAtom, value: 15, arom: 2},
	"S":  {kind: elementAtom, value: 16, arom: 2},
	"F":  {kind: elementAtom, value: 9, arom: 2},
	"Cl": {kind: elementAtom, value: 17, arom: 2},
	"Br": {kind: elementAtom, value: 35, arom: 2},
	"I":  {kind: elementAtom, value: 53, arom: 2},
	"b":  {kind: elementAtom, value: 5, arom: 1},
	"c":  {kind: elementAtom, value: 6, arom: 1},
	"n":  {kind: elementAtom, value: 7, arom: 1},
	"o":  {kind: elementAtom, value: 8, arom: 1},
	"p":  {kind: elementAtom, value: 15, arom: 1},
	"s":  {kind: elementAtom, value: 16, arom: 1},
	"*":  {kind: anyAtom},
	"a":  {kind: aromaticAtom},
	"A":  {kind: aliphaticAtom},
}

//aromatic symbols allowed in brackets
var aromaticSymbols = map[string]int{"b": 5, "c": 6, "n": 7, "o": 8, "p": 15, "s": 16, "se": 34, "as": 33, "te": 52}

func (ps *parser) atom() (atomExpr, error) {
	if ps.peek() == '[' {
		ps.pos++
		e, err := ps.atomLow()
		if err != nil {
			return nil, err
		}
		if ps.peek() != ']' {
			return nil, ps.errorf("expected ']'")
		}
		ps.pos++
		return e, nil
	}
	if ps.pos+2 <= len(ps.s) {
		if p, ok := organic[ps.s[ps.pos:ps.pos+2]]; ok {
			ps.pos += 2
			return p, nil
		}
	}
	if p, ok := organic[ps.s[ps.pos:ps.pos+1]]; ok {
		ps.pos++
		return p, nil
	}
	return nil, ps.errorf("unexpected character %q", ps.peek())
}

func (ps *parser) atomLow() (atomExpr, error) {
	a, err := ps.atomOr()
	if err != nil {
		return nil, err
	}
	for ps.peek() == ';' {
		ps.pos++
		b, err := ps.atomOr()
		if err != nil {
			return nil, err
		}
		a = andAtom{a, b}
	}
	return a, nil
}

func (ps *parser) atomOr() (atomExpr, error) {
	a, err := ps.atomHigh()
	if err != nil {
		return nil, err
	}
	for ps.peek() == ',' {
		ps.pos++
		b, err := ps.atomHigh()
		if err != nil {
			return nil, err
		}
		a = orAtom{a, b}
	}
	return a, nil
}

func (ps *parser) atomHigh() (atomExpr, error) {
	a, err := ps.atomNot()
	if err != nil {
		return nil, err
	}
	for {
		switch ps.peek() {
		case '&':
			ps.pos++
		case ']', ';', ',', 0:
			return a, nil
		}
		b, err := ps.atomNot()
		if err != nil {
			return nil, err
		}
		a = andAtom{a, b}
	}
}

func (ps *parser) atomNot() (atomExpr, error) {
	if ps.peek() == '!' {
		ps.pos++
		e, err := ps.atomNot()
		if err != nil {
			return nil, err
		}
		return notAtom{e}, nil
	}
	return ps.atomPrimitive()
}

//countOrDefault reads an optional number after a primitive.
func (ps *parser) countOrDefault(def int) int {
	if n, ok := ps.number(); ok {
		return n
	}
	return def
}

func (ps *parser) atomPrimitive() (atomExpr, error) {
	c := ps.peek()
	next := ps.peekAt(1)
	switch {
	case c == 0:
		return nil, ps.errorf("unexpected end of pattern")
	case c == '$':
		return ps.recursive()
	case c == '@':
		return nil, ps.errorf("chirality is not supported")
	case c == ':':
		return nil, ps.errorf("atom classes are not supported")
	case c >= '0' && c <= '9':
		return nil, ps.errorf("isotopes are not supported")
	case c == '*':
		ps.pos++
		return primitive{kind: anyAtom}, nil
	case c == '#':
		ps.pos++
		n, ok := ps.number()
		if !ok || n == 0 {
			return nil, ps.errorf("'#' must be followed by an atomic number")
		}
		return primitive{kind: elementAtom, value: n}, nil
	case c == '+' || c == '-':
		sign := 1
		if c == '-' {
			sign = -1
		}
		ps.pos++
		if n, ok := ps.number(); ok {
			return primitive{kind: chargeAtom, value: sign * n}, nil
		}
		n := 1
		for ps.peek() == c {
			n++
			ps.pos++
		}
		return primitive{kind: chargeAtom, value: sign * n}, nil
	case c == 'H':
		//[H], [H+] and [H-] are hydrogen atoms, anywhere else H is a hydrogen count.
		if ps.pos > 0 && ps.s[ps.pos-1] == '[' && (next == ']' || next == '+' || next == '-') {
			ps.pos++
			return primitive{kind: elementAtom, value: 1}, nil
		}
		ps.pos++
		return primitive{kind: hcountAtom, value: ps.countOrDefault(1)}, nil
	case c == 'D':
		ps.pos++
		return primitive{kind: degreeAtom, value: ps.countOrDefault(1)}, nil
	case c == 'X':
		ps.pos++
		return primitive{kind: connectAtom, value: ps.countOrDefault(1)}, nil
	case c == 'R':
		ps.pos++
		return primitive{kind: ringCountAtom, value: ps.countOrDefault(-1)}, nil
	case c == 'r':
		ps.pos++
		return primitive{kind: ringSizeAtom, value: ps.countOrDefault(-1)}, nil
	case c == 'v':
		ps.pos++
		return primitive{kind: valenceAtom, value: ps.countOrDefault(1)}, nil
	case c == 'h':
		ps.pos++
		return primitive{kind: implicitHAtom, value: ps.countOrDefault(-1)}, nil
	case c == 'x':
		ps.pos++
		return primitive{kind: ringBondsAtom, value: ps.countOrDefault(-1)}, nil
	case c >= 'a' && c <= 'z':
		if next >= 'a' && next <= 'z' {
			if n, ok := aromaticSymbols[string([]byte{c, next})]; ok {
				ps.pos += 2
				return primitive{kind: elementAtom, value: n, arom: 1}, nil
			}
		}
		if n, ok := aromaticSymbols[string(c)]; ok {
			ps.pos++
			return primitive{kind: elementAtom, value: n, arom: 1}, nil
		}
		if c == 'a' {
			ps.pos++
			return primitive{kind: aromaticAtom}, nil
		}
	case c >= 'A' && c <= 'Z':
		if next >= 'a' && next <= 'z' {
			if n := chem.AtomicNumber(string([]byte{c, next})); n > 0 {
				ps.pos += 2
				return primitive{kind: elementAtom, value: n, arom: 2}, nil
			}
		}
		if c == 'A' {
			ps.pos++
			return primitive{kind: aliphaticAtom}, nil
		}
		if n := chem.AtomicNumber(string(c)); n > 0 {
			ps.pos++
			return primitive{kind: elementAtom, value: n, arom: 2}, nil
		}
	}
	return nil, ps.errorf("unknown atom primitive %q", c)
}

//recursive reads a $(...) primitive: an atom that is the first atom of an
//embedding of the enclosed pattern.
func (ps *parser) recursive() (atomExpr, error) {
	if ps.peekAt(1) != '(' {
		return nil, ps.errorf("'$' must be followed by '('")
	}
	start := ps.pos + 2
	depth := 1
	end := start
	for ; end < len(ps.s) && depth > 0; end++ {
		switch ps.s[end] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	if depth > 0 {
		return nil, ps.errorf("unclosed recursive SMARTS")
	}
	end-- //the closing parenthesis
	sub, err := Compile(ps.s[start:end])
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			return nil, &SyntaxError{Pattern: ps.s, Pos: start + se.Pos, Msg: se.Msg}
		}
		return nil, err
	}
	ps.pos = end + 1
	return recursiveAtom{sub}, nil
}
