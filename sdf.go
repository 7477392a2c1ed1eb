/*
 * sdf.go, part of pcore.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/rmera/pcore/v3"
)

//MDL SD files, V2000 connection tables only.

const sdfEndRecord = "$$$$"

//SDFReader reads the records of an SD file one at a time.
type SDFReader struct {
	r      *bufio.Reader
	line   int
	record int
}

//NewSDFReader returns a reader for the SD records in r.
func NewSDFReader(r io.Reader) *SDFReader {
	return &SDFReader{r: bufio.NewReader(r)}
}

//Records returns the number of records read so far.
func (S *SDFReader) Records() int {
	return S.record
}

//readLine returns the next line without the line terminator. A final line without
//terminator is returned normally, io.EOF is returned only when there is nothing left.
func (S *SDFReader) readLine() (string, error) {
	line, err := S.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	S.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (S *SDFReader) errorf(format string, a ...interface{}) error {
	return CError{fmt.Sprintf("SD record %d, line %d: ", S.record+1, S.line) + fmt.Sprintf(format, a...), []string{"SDFReader.Next"}, true, nil}
}

//Next reads the next record and returns it as a one-frame Molecule. It returns io.EOF
//when there are no more records.
func (S *SDFReader) Next() (*Molecule, error) {
	title, counts, err := S.readHeader()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errDecorate(err, "SDFReader.Next")
	}
	mol, err := S.readRecord(title, counts)
	if err != nil {
		return nil, errDecorate(err, "SDFReader.Next")
	}
	S.record++
	return mol, nil
}

//isCountsLine reports whether l can be the counts line of a record.
func isCountsLine(l string) bool {
	if strings.Contains(l, "V2000") || strings.Contains(l, "V3000") {
		return true
	}
	_, _, err := parseCounts(l)
	return err == nil
}

//readHeader reads the three header lines and the counts line of the next record,
//and returns the title and the counts line. Empty lines between records are tolerated,
//so the header is located from the counts line backwards: any of the title, program
//and comment lines can be blank.
func (S *SDFReader) readHeader() (string, string, error) {
	blanks := 0
	var first string
	for {
		l, err := S.readLine()
		if err != nil {
			if err == io.EOF {
				return "", "", io.EOF
			}
			return "", "", CError{"Can't read SD file", []string{"SDFReader.readHeader"}, true, err}
		}
		if strings.TrimSpace(l) != "" {
			first = l
			break
		}
		blanks++
	}
	lines := []string{first}
	for !isCountsLine(lines[len(lines)-1]) && len(lines) < 4 {
		l, err := S.mustLine()
		if err != nil {
			return "", "", err
		}
		lines = append(lines, l)
	}
	counts := lines[len(lines)-1]
	nonblank := len(lines) - 1 //header lines read after the blank ones.
	if nonblank == 3 || !isCountsLine(counts) {
		return strings.TrimSpace(lines[0]), counts, nil
	}
	if blanks < 3-nonblank {
		return "", "", S.errorf("missing header lines before the counts line")
	}
	return "", counts, nil
}

func (S *SDFReader) mustLine() (string, error) {
	l, err := S.readLine()
	if err == io.EOF {
		return "", S.errorf("unexpected end of file")
	}
	if err != nil {
		return "", CError{"Can't read SD file", []string{"SDFReader.Next"}, true, err}
	}
	return l, nil
}

func (S *SDFReader) readRecord(title, counts string) (*Molecule, error) {
	if strings.Contains(counts, "V3000") {
		return nil, S.errorf("V3000 connection tables are not supported")
	}
	natoms, nbonds, err := parseCounts(counts)
	if err != nil {
		return nil, S.errorf("bad counts line %q: %s", counts, err.Error())
	}
	top := NewTopology(title)
	coords := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		l, err := S.mustLine()
		if err != nil {
			return nil, err
		}
		at, pos, err := parseAtomLine(l)
		if err != nil {
			return nil, S.errorf("bad atom line %q: %s", l, err.Error())
		}
		at.ID = i + 1
		top.AppendAtom(at)
		copy(coords.RawRowView(i), pos[:])
	}
	for i := 0; i < nbonds; i++ {
		l, err := S.mustLine()
		if err != nil {
			return nil, err
		}
		a1, a2, order, err := parseBondLine(l)
		if err != nil {
			return nil, S.errorf("bad bond line %q: %s", l, err.Error())
		}
		if _, err := top.AddBond(a1-1, a2-1, order); err != nil {
			return nil, S.errorf("%s", err.Error())
		}
	}
	//properties block, until M  END
	chgseen := false
	for {
		l, err := S.mustLine()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(l, "M  END") {
			break
		}
		if l == sdfEndRecord {
			//a record without M  END and without data items.
			return NewMolecule(top, coords)
		}
		if strings.HasPrefix(l, "M  CHG") {
			if !chgseen {
				//M  CHG supersedes the charges of the atom block.
				for _, at := range top.Atoms {
					at.Charge = 0
				}
				chgseen = true
			}
			if err := parseChargeLine(l, top); err != nil {
				return nil, S.errorf("bad charge line %q: %s", l, err.Error())
			}
		}
	}
	if err := S.readData(top); err != nil {
		return nil, err
	}
	return NewMolecule(top, coords)
}

//readData reads the data items until the end of the record.
func (S *SDFReader) readData(top *Topology) error {
	var name string
	var value []string
	inItem := false
	for {
		l, err := S.readLine()
		if err == io.EOF {
			if inItem {
				top.SetProperty(name, strings.Join(value, "\n"))
			}
			return nil //last record without $$$$
		}
		if err != nil {
			return CError{"Can't read SD file", []string{"SDFReader.Next"}, true, err}
		}
		if l == sdfEndRecord {
			if inItem {
				top.SetProperty(name, strings.Join(value, "\n"))
			}
			return nil
		}
		if inItem {
			if strings.TrimSpace(l) == "" {
				top.SetProperty(name, strings.Join(value, "\n"))
				inItem = false
				continue
			}
			value = append(value, l)
			continue
		}
		if strings.HasPrefix(l, ">") {
			name = dataItemName(l)
			value = nil
			inItem = true
		}
	}
}

//dataItemName extracts the field name from a data header such as "> 25 <MELTING.POINT>".
func dataItemName(l string) string {
	start := strings.Index(l, "<")
	end := strings.LastIndex(l, ">")
	if start < 0 || end <= start {
		return strings.TrimSpace(strings.TrimPrefix(l, ">"))
	}
	return l[start+1 : end]
}

func parseCounts(l string) (int, int, error) {
	if len(l) >= 6 {
		a, err1 := strconv.Atoi(strings.TrimSpace(l[0:3]))
		b, err2 := strconv.Atoi(strings.TrimSpace(l[3:6]))
		if err1 == nil && err2 == nil {
			return a, b, nil
		}
	}
	f := strings.Fields(l)
	if len(f) < 2 {
		return 0, 0, fmt.Errorf("not enough fields")
	}
	a, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(f[1])
	return a, b, err
}

func parseAtomLine(l string) (*Atom, [3]float64, error) {
	var pos [3]float64
	f := strings.Fields(l)
	if len(f) < 4 {
		return nil, pos, fmt.Errorf("not enough fields")
	}
	for i := 0; i < 3; i++ {
		var err error
		pos[i], err = strconv.ParseFloat(f[i], 64)
		if err != nil {
			return nil, pos, err
		}
	}
	at := &Atom{Symbol: f[3], Name: f[3]}
	if len(f) > 4 {
		at.MassDiff, _ = strconv.Atoi(f[4])
	}
	if len(f) > 5 {
		code, err := strconv.Atoi(f[5])
		if err != nil {
			return nil, pos, err
		}
		at.Charge = chargeFromCode(code)
	}
	return at, pos, nil
}

func parseBondLine(l string) (int, int, int, error) {
	var v [3]int
	if len(l) >= 9 {
		var err error
		for i := 0; i < 3; i++ {
			v[i], err = strconv.Atoi(strings.TrimSpace(l[3*i : 3*i+3]))
			if err != nil {
				break
			}
		}
		if err == nil {
			return v[0], v[1], v[2], nil
		}
	}
	f := strings.Fields(l)
	if len(f) < 3 {
		return 0, 0, 0, fmt.Errorf("not enough fields")
	}
	for i := 0; i < 3; i++ {
		var err error
		v[i], err = strconv.Atoi(f[i])
		if err != nil {
			return 0, 0, 0, err
		}
	}
	return v[0], v[1], v[2], nil
}

//parseChargeLine reads an "M  CHGnn8 aaa vvv ..." line into the topology.
func parseChargeLine(l string, top *Topology) error {
	f := strings.Fields(strings.TrimPrefix(l, "M  CHG"))
	if len(f) < 1 {
		return fmt.Errorf("no entries")
	}
	n, err := strconv.Atoi(f[0])
	if err != nil {
		return err
	}
	if len(f) < 1+2*n {
		return fmt.Errorf("%d entries declared, %d found", n, (len(f)-1)/2)
	}
	for i := 0; i < n; i++ {
		idx, err := strconv.Atoi(f[1+2*i])
		if err != nil {
			return err
		}
		chg, err := strconv.Atoi(f[2+2*i])
		if err != nil {
			return err
		}
		if idx < 1 || idx > top.Len() {
			return fmt.Errorf("atom %d out of range", idx)
		}
		top.Atoms[idx-1].Charge = chg
	}
	return nil
}

//chargeFromCode translates the charge code of the atom block.
func chargeFromCode(code int) int {
	switch code {
	case 1, 2, 3, 5, 6, 7:
		return 4 - code
	}
	return 0 //0 is uncharged, 4 is a doublet radical.
}

func codeFromCharge(charge int) int {
	if charge == 0 || charge > 3 || charge < -3 {
		return 0
	}
	return 4 - charge
}

/***Writer***/

//SDFWriter writes molecules as SD records.
type SDFWriter struct {
	w      *bufio.Writer
	c      io.Closer
	closed bool
}

//NewSDFWriter returns a writer of SD records to w. If w is also an io.Closer,
//it will be closed by the Close method.
func NewSDFWriter(w io.Writer) *SDFWriter {
	S := &SDFWriter{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		S.c = c
	}
	return S
}

//Write writes the frame frame of mol as one SD record.
func (S *SDFWriter) Write(mol *Molecule, frame int) error {
	if S.closed {
		return CError{"Write on a closed SDFWriter", []string{"SDFWriter.Write"}, true, nil}
	}
	if frame < 0 || frame >= mol.LenFrames() {
		return CError{fmt.Sprintf("Frame %d out of range (%d frames)", frame, mol.LenFrames()), []string{"SDFWriter.Write"}, true, nil}
	}
	if err := mol.Corrupted(); err != nil {
		return errDecorate(err, "SDFWriter.Write")
	}
	if mol.Len() > 999 || len(mol.Bonds) > 999 {
		return CError{fmt.Sprintf("Molecule %s too large for a V2000 connection table", mol.Title()), []string{"SDFWriter.Write"}, true, nil}
	}
	c := mol.Coords[frame]
	w := S.w
	fmt.Fprintf(w, "%s\n  pcore             3D\n\n", mol.Title())
	fmt.Fprintf(w, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", mol.Len(), len(mol.Bonds))
	charged := make([]*Atom, 0, 2)
	for i, at := range mol.Atoms {
		r := c.RawRowView(i)
		fmt.Fprintf(w, "%10.4f%10.4f%10.4f %-3s%2d%3d  0  0  0  0  0  0  0  0  0  0\n", r[0], r[1], r[2], at.Symbol, at.MassDiff, codeFromCharge(at.Charge))
		if at.Charge != 0 {
			charged = append(charged, at)
		}
	}
	for _, b := range mol.Bonds {
		fmt.Fprintf(w, "%3d%3d%3d  0\n", b.At1.index+1, b.At2.index+1, b.Order)
	}
	for len(charged) > 0 {
		n := len(charged)
		if n > 8 {
			n = 8
		}
		fmt.Fprintf(w, "M  CHG%3d", n)
		for _, at := range charged[:n] {
			fmt.Fprintf(w, " %3d %3d", at.index+1, at.Charge)
		}
		fmt.Fprint(w, "\n")
		charged = charged[n:]
	}
	fmt.Fprint(w, "M  END\n")
	for _, p := range mol.Properties() {
		fmt.Fprintf(w, "> <%s>\n%s\n\n", p.Name, p.Value)
	}
	_, err := fmt.Fprintf(w, "%s\n", sdfEndRecord)
	if err != nil {
		return CError{"Can't write record " + mol.Title(), []string{"SDFWriter.Write"}, true, err}
	}
	return nil
}

//Close flushes the buffered records and closes the underlying writer, if it can be closed.
//Calling Close more than once has no effect.
func (S *SDFWriter) Close() error {
	if S.closed {
		return nil
	}
	S.closed = true
	err := S.w.Flush()
	if S.c != nil {
		if err2 := S.c.Close(); err == nil {
			err = err2
		}
	}
	if err != nil {
		return CError{"Can't close SD output", []string{"SDFWriter.Close"}, true, err}
	}
	return nil
}
