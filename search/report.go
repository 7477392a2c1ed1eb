/*
 * report.go, part of pcore.
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

package search

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rmera/pcore/pharmacophore"
)

//ReportHeader is the first line of every report.
const ReportHeader = "Serial\tTitle\tNconf\tNhit"

//Reporter writes the tab-separated report of a scan. Rows are numbered from 0.
type Reporter struct {
	w      *bufio.Writer
	c      io.Closer
	serial int
	closed bool
}

//NewReporter returns a Reporter writing to w. The header is written right away.
//If w is an io.Closer, it is closed by Close.
func NewReporter(w io.Writer) *Reporter {
	R := &Reporter{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		R.c = c
	}
	fmt.Fprintln(R.w, ReportHeader)
	return R
}

//Rows returns the number of rows written so far.
func (R *Reporter) Rows() int {
	return R.serial
}

func (R *Reporter) row(title, nconf, hit string) error {
	if R.closed {
		return fmt.Errorf("report row for %s written after Close", title)
	}
	_, err := fmt.Fprintf(R.w, "%d\t%s\t%s\t%s\n", R.serial, title, nconf, hit)
	R.serial++
	return err
}

//Molecule writes the row for a molecule scanned on its own.
func (R *Reporter) Molecule(title string, matched bool) error {
	return R.row(title, "NA", fmt.Sprintf("%t", matched))
}

//Group writes the row for a group of nconf conformers, confhits of which matched.
func (R *Reporter) Group(title string, nconf, confhits int) error {
	return R.row(title, fmt.Sprintf("%d", nconf), fmt.Sprintf("%d", confhits))
}

//Details writes one MATCH line per unique match, with the measured value of each constraint,
//and a blank line at the end.
func (R *Reporter) Details(measured [][]pharmacophore.Measurement) error {
	for k, ms := range measured {
		fmt.Fprintf(R.w, "MATCH %d: ", k+1)
		for _, m := range ms {
			switch c := m.(type) {
			case pharmacophore.Distance:
				fmt.Fprintf(R.w, "(%s,%s,%.2f) ", c.A, c.B, c.Value)
			case pharmacophore.Angle:
				fmt.Fprintf(R.w, "(%s,%s,%s,%.2f) ", c.A, c.B, c.C, c.Value)
			}
		}
		fmt.Fprint(R.w, "\n")
	}
	_, err := fmt.Fprint(R.w, "\n")
	return err
}

//Close flushes the report and closes the underlying writer, if it can be closed.
//Only the first call has an effect.
func (R *Reporter) Close() error {
	if R.closed {
		return nil
	}
	R.closed = true
	err := R.w.Flush()
	if R.c != nil {
		if err2 := R.c.Close(); err == nil {
			err = err2
		}
	}
	return err
}
