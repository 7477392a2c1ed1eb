/*
 * errors.go, part of pcore.
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

import "fmt"

//CError is the error type for the root package. It carries a message, a trail
//of the functions it went through (the "decoration"), whether it is critical
//and, optionally, the error that caused it.
type CError struct {
	msg      string
	deco     []string
	critical bool
	err      error
}

//Error returns a string with an error message.
func (err CError) Error() string {
	if err.err != nil {
		return fmt.Sprintf("%s: %s", err.msg, err.err.Error())
	}
	return err.msg
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored
func (err CError) Critical() bool { return err.critical }

//Unwrap returns the error that caused err, if any.
func (err CError) Unwrap() error { return err.err }

//Trail returns the functions the error went through, innermost first.
func (err CError) Trail() []string { return err.deco }

//errDecorate adds caller to the decoration of err if err implements Error,
//and returns err. CError values are decorated and returned as values.
func errDecorate(err error, caller string) error {
	if e, ok := err.(CError); ok {
		e.Decorate(caller)
		return e
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

//PanicMsg is the type used for panic messages of the package.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }
