/*
 * search_test.go, part of pcore.
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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	chem "github.com/rmera/pcore"
	"github.com/rmera/pcore/aromaticity"
	"github.com/rmera/pcore/pharmacophore"
	v3 "github.com/rmera/pcore/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

/***Fakes***/

type sliceStream struct {
	mols []*chem.Molecule
	err  error //returned after the molecules, instead of io.EOF
	i    int
}

func (S *sliceStream) Next() (*chem.Molecule, error) {
	if S.i < len(S.mols) {
		S.i++
		return S.mols[S.i-1], nil
	}
	if S.err != nil {
		return nil, S.err
	}
	return nil, io.EOF
}

//scriptMatcher answers, for each title, the results in order, one per call.
//Titles in fail make it return an error.
type scriptMatcher struct {
	results map[string][]bool
	fail    map[string]bool
	calls   map[string]int
	resets  []bool
}

func newScriptMatcher(results map[string][]bool, fail ...string) *scriptMatcher {
	S := &scriptMatcher{results: results, fail: map[string]bool{}, calls: map[string]int{}}
	for _, v := range fail {
		S.fail[v] = true
	}
	return S
}

func (S *scriptMatcher) Matches(top *chem.Topology, coords *v3.Matrix, reset bool) (bool, error) {
	t := top.Title()
	S.resets = append(S.resets, reset)
	S.calls[t]++
	if S.fail[t] {
		return false, fmt.Errorf("matcher failure on %s", t)
	}
	r := S.results[t]
	if len(r) == 0 {
		return false, nil
	}
	return r[(S.calls[t]-1)%len(r)], nil
}

func (S *scriptMatcher) UniqueMatches() []pharmacophore.Match {
	p1, _ := v3.NewMatrix([]float64{0, 0, 0})
	p2, _ := v3.NewMatrix([]float64{1, 1, 1})
	return []pharmacophore.Match{{
		{Group: "N", Atoms: []int{0}, Position: p1},
		{Group: "O", Atoms: []int{1}, Position: p2},
	}}
}

func (S *scriptMatcher) MatchedConstraints() [][]pharmacophore.Measurement {
	return [][]pharmacophore.Measurement{{pharmacophore.Distance{A: "N", B: "O", Value: 3.14}}}
}

type failClassifier map[string]bool

func (F failClassifier) Classify(top *chem.Topology) error {
	if F[top.Title()] {
		return aromaticity.ErrMalformedRing
	}
	return nil
}

type memSink struct {
	mols   []*chem.Molecule
	failOn string
	closed int
}

func (M *memSink) Write(mol *chem.Molecule, frame int) error {
	if mol.Title() == M.failOn {
		return errors.New("disk full")
	}
	M.mols = append(M.mols, mol.Frame(frame))
	return nil
}

func (M *memSink) Close() error {
	M.closed++
	return nil
}

type closingBuffer struct {
	bytes.Buffer
	closed int
}

func (C *closingBuffer) Close() error {
	C.closed++
	return nil
}

//diatomic returns a C-O molecule with nframes frames. With flat, the molecule
//has no 3D coordinates.
func diatomic(Te *testing.T, title string, nframes int, flat bool) *chem.Molecule {
	top := chem.NewTopology(title)
	top.AppendAtom(&chem.Atom{Symbol: "C", ID: 1})
	top.AppendAtom(&chem.Atom{Symbol: "O", ID: 2})
	_, err := top.AddBond(0, 1, 1)
	require.NoError(Te, err)
	mol, err := chem.NewMolecule(top)
	require.NoError(Te, err)
	for i := 0; i < nframes; i++ {
		z := 0.1 * float64(i+1)
		if flat {
			z = 0
		}
		c, err := v3.NewMatrix([]float64{0, 0, z, 1.2, 0, z})
		require.NoError(Te, err)
		require.NoError(Te, mol.AddFrame(c))
	}
	return mol
}

func reportRows(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

/***Single molecule mode***/

func TestNo3DIsSkipped(Te *testing.T) {
	in := &sliceStream{mols: []*chem.Molecule{diatomic(Te, "MolA", 1, true)}}
	m := newScriptMatcher(map[string][]bool{"MolA": {true}})
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanMolecules(in, m, failClassifier{}, sink, NewReporter(buf), Options{})
	require.NoError(Te, err)
	assert.Equal(Te, 1, c.Skipped)
	assert.Equal(Te, 0, c.Hits)
	assert.Equal(Te, 0, c.Processed)
	assert.Equal(Te, ReportHeader+"\n", buf.String())
	assert.Empty(Te, m.resets, "the matcher should not be called")
	assert.Equal(Te, 1, sink.closed)
	assert.Equal(Te, 1, buf.closed)
}

func TestScanMolecules(Te *testing.T) {
	mols := []*chem.Molecule{
		diatomic(Te, "hit", 1, false),
		diatomic(Te, "flat", 1, true),
		diatomic(Te, "nohit", 1, false),
		diatomic(Te, "badring", 1, false),
		diatomic(Te, "badmatch", 1, false),
		diatomic(Te, "hit2", 1, false),
	}
	m := newScriptMatcher(map[string][]bool{"hit": {true}, "hit2": {true}, "badring": {true}}, "badmatch")
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanMolecules(&sliceStream{mols: mols}, m, failClassifier{"badring": true}, sink, NewReporter(buf), Options{})
	require.NoError(Te, err)
	assert.Equal(Te, 3, c.Processed)
	assert.Equal(Te, 2, c.Hits)
	assert.Equal(Te, 3, c.Skipped)
	assert.Equal(Te, len(mols), c.Pulled())
	assert.Equal(Te, []string{ReportHeader, "0\thit\tNA\ttrue", "1\tnohit\tNA\tfalse", "2\thit2\tNA\ttrue"}, reportRows(buf.String()))
	require.Len(Te, sink.mols, 2)
	for _, h := range sink.mols {
		require.Equal(Te, 4, h.Len())
		assert.Equal(Te, chem.MarkerSymbol, h.Atom(2).Symbol)
		assert.Equal(Te, chem.MarkerSymbol, h.Atom(3).Symbol)
		assert.Equal(Te, 1.0, h.Coords[0].At(3, 2))
		assert.Len(Te, h.Bonds, 1)
	}
	//the input molecules are never annotated in place.
	assert.Equal(Te, 2, mols[0].Len())
	assert.Equal(Te, 2, mols[0].Coords[0].NVecs())
	assert.Equal(Te, []bool{true, true, true, true}, m.resets)
}

func TestDetails(Te *testing.T) {
	top := chem.NewTopology("ethanolamine")
	for _, s := range []string{"N", "C", "C", "O"} {
		top.AppendAtom(&chem.Atom{Symbol: s})
	}
	for i := 0; i < 3; i++ {
		_, err := top.AddBond(i, i+1, 1)
		require.NoError(Te, err)
	}
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1, 1, 0.5, 2.14, 1, 0.5, 3.14, 0, 0})
	require.NoError(Te, err)
	mol, err := chem.NewMolecule(top, coords)
	require.NoError(Te, err)
	gn, err := pharmacophore.NewGroup("N", "[NX3]")
	require.NoError(Te, err)
	gO, err := pharmacophore.NewGroup("O", "[OX2]")
	require.NoError(Te, err)
	q := &pharmacophore.Query{Groups: []*pharmacophore.Group{gn, gO},
		Constraints: []pharmacophore.Constraint{pharmacophore.DistanceConstraint{A: "N", B: "O", Lower: 3.0, Upper: 3.2}}}
	m, err := pharmacophore.NewMatcher(q, pharmacophore.MatcherOptions{})
	require.NoError(Te, err)
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanMolecules(&sliceStream{mols: []*chem.Molecule{mol}}, m, aromaticity.Daylight{}, sink, NewReporter(buf), Options{Details: true})
	require.NoError(Te, err)
	assert.Equal(Te, 1, c.Hits)
	assert.Equal(Te, ReportHeader+"\n0\tethanolamine\tNA\ttrue\nMATCH 1: (N,O,3.14) \n\n", buf.String())
	require.Len(Te, sink.mols, 1)
	assert.Equal(Te, 6, sink.mols[0].Len())
	//the N marker sits on the N, the O marker on the O.
	assert.Equal(Te, 0.0, sink.mols[0].Coords[0].At(4, 0))
	assert.Equal(Te, 3.14, sink.mols[0].Coords[0].At(5, 0))
}

func TestWriteFailureIsFatal(Te *testing.T) {
	mols := []*chem.Molecule{diatomic(Te, "A", 1, false), diatomic(Te, "B", 1, false), diatomic(Te, "C", 1, false)}
	m := newScriptMatcher(map[string][]bool{"A": {true}, "B": {true}, "C": {true}})
	sink := &memSink{failOn: "B"}
	buf := &closingBuffer{}
	c, err := ScanMolecules(&sliceStream{mols: mols}, m, failClassifier{}, sink, NewReporter(buf), Options{})
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrWrite))
	var serr *Error
	require.True(Te, errors.As(err, &serr))
	assert.Equal(Te, "B", serr.Title)
	assert.Contains(Te, err.Error(), "[title = B]")
	assert.Equal(Te, 1, c.Processed)
	assert.Equal(Te, 1, sink.closed)
	assert.Equal(Te, 1, buf.closed)
	//what was written before the failure is kept.
	assert.Equal(Te, []string{ReportHeader, "0\tA\tNA\ttrue"}, reportRows(buf.String()))
}

func TestReadFailureIsFatal(Te *testing.T) {
	in := &sliceStream{mols: []*chem.Molecule{diatomic(Te, "A", 1, false)}, err: errors.New("bad record")}
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanMolecules(in, newScriptMatcher(nil), failClassifier{}, sink, NewReporter(buf), Options{})
	assert.True(Te, errors.Is(err, ErrRead))
	assert.Equal(Te, 1, c.Processed)
	assert.Equal(Te, 1, sink.closed)
}

func TestDeterminism(Te *testing.T) {
	run := func() (string, Counters) {
		mols := []*chem.Molecule{diatomic(Te, "A", 1, false), diatomic(Te, "B", 1, true), diatomic(Te, "C", 1, false)}
		m := newScriptMatcher(map[string][]bool{"A": {true}, "C": {false}})
		buf := &closingBuffer{}
		c, err := ScanMolecules(&sliceStream{mols: mols}, m, failClassifier{}, &memSink{}, NewReporter(buf), Options{Details: true})
		require.NoError(Te, err)
		c.Elapsed = 0
		return buf.String(), c
	}
	r1, c1 := run()
	r2, c2 := run()
	assert.Equal(Te, r1, r2)
	assert.Equal(Te, c1, c2)
}

func TestProgressAndTiming(Te *testing.T) {
	mols := make([]*chem.Molecule, 0, 250)
	for i := 0; i < 250; i++ {
		mols = append(mols, diatomic(Te, fmt.Sprintf("M%d", i), 1, false))
	}
	var seen []int
	opts := Options{Timing: true, Progress: func(c Counters) { seen = append(seen, c.Processed) }}
	c, err := ScanMolecules(&sliceStream{mols: mols}, newScriptMatcher(nil), failClassifier{}, &memSink{}, NewReporter(&closingBuffer{}), opts)
	require.NoError(Te, err)
	assert.Equal(Te, []int{100, 200}, seen)
	assert.Len(Te, c.MatchTimes, 250)
	assert.Len(Te, c.MatchTimesMs(), 250)
	assert.True(Te, c.MeanMatchTime() >= 0)
	assert.Equal(Te, c.Elapsed/250, c.AvgPerUnit())
}

func TestMeanMatchTime(Te *testing.T) {
	c := Counters{MatchTimes: []time.Duration{time.Millisecond, 3 * time.Millisecond}}
	assert.Equal(Te, 2*time.Millisecond, c.MeanMatchTime())
	assert.Equal(Te, []float64{1, 3}, c.MatchTimesMs())
	assert.Equal(Te, time.Duration(0), Counters{}.MeanMatchTime())
	assert.Equal(Te, time.Duration(0), Counters{}.AvgPerUnit())
}

/***Conformer mode***/

func TestScanConformers(Te *testing.T) {
	molB := diatomic(Te, "MolB", 3, false)
	molC := diatomic(Te, "MolC", 1, false)
	m := newScriptMatcher(map[string][]bool{"MolB": {true, false, true}})
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanConformers(&sliceStream{mols: []*chem.Molecule{molB, molC}}, m, failClassifier{}, sink, NewReporter(buf), Options{Annotate: true})
	require.NoError(Te, err)
	assert.Equal(Te, []string{ReportHeader, "0\tMolB\t3\t2", "1\tMolC\t1\t0"}, reportRows(buf.String()))
	assert.Equal(Te, 2, c.Processed)
	assert.Equal(Te, 2, c.Hits)
	assert.Equal(Te, []bool{true, false, false, true}, m.resets)
	require.Len(Te, sink.mols, 2)
	assert.Equal(Te, 4, sink.mols[0].Len())
	//the hits are conformers 1 and 3
	assert.InDelta(Te, 0.1, sink.mols[0].Coords[0].At(0, 2), 1e-9)
	assert.InDelta(Te, 0.3, sink.mols[1].Coords[0].At(0, 2), 1e-9)
	//the shared group is left alone.
	assert.Equal(Te, 2, molB.Len())
	assert.Equal(Te, 3, molB.LenFrames())
	for _, f := range molB.Coords {
		assert.Equal(Te, 2, f.NVecs())
	}
}

func TestScanConformersNoAnnotation(Te *testing.T) {
	molB := diatomic(Te, "MolB", 2, false)
	m := newScriptMatcher(map[string][]bool{"MolB": {true}})
	sink := &memSink{}
	_, err := ScanConformers(&sliceStream{mols: []*chem.Molecule{molB}}, m, failClassifier{}, sink, NewReporter(&closingBuffer{}), Options{})
	require.NoError(Te, err)
	require.Len(Te, sink.mols, 2)
	assert.Equal(Te, 2, sink.mols[1].Len())
}

func TestConformerClassifyIsFatal(Te *testing.T) {
	mols := []*chem.Molecule{diatomic(Te, "good", 2, false), diatomic(Te, "bad", 2, false), diatomic(Te, "never", 2, false)}
	m := newScriptMatcher(map[string][]bool{"good": {true}})
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanConformers(&sliceStream{mols: mols}, m, failClassifier{"bad": true}, sink, NewReporter(buf), Options{})
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrClassify))
	assert.True(Te, errors.Is(err, aromaticity.ErrMalformedRing))
	var serr *Error
	require.True(Te, errors.As(err, &serr))
	assert.Equal(Te, "bad", serr.Title)
	assert.Equal(Te, 1, c.Processed)
	assert.Equal(Te, 0, c.Skipped)
	assert.Equal(Te, []string{ReportHeader, "0\tgood\t2\t2"}, reportRows(buf.String()))
	assert.Equal(Te, 1, sink.closed)
	assert.Equal(Te, 1, buf.closed)
	assert.Zero(Te, m.calls["never"])
}

func TestConformerMatchErrorSkipsGroup(Te *testing.T) {
	mols := []*chem.Molecule{diatomic(Te, "bad", 3, false), diatomic(Te, "good", 1, false)}
	m := newScriptMatcher(map[string][]bool{"good": {true}}, "bad")
	sink := &memSink{}
	buf := &closingBuffer{}
	c, err := ScanConformers(&sliceStream{mols: mols}, m, failClassifier{}, sink, NewReporter(buf), Options{})
	require.NoError(Te, err)
	assert.Equal(Te, 1, c.Skipped)
	assert.Equal(Te, 1, c.Processed)
	assert.Equal(Te, 1, c.Hits)
	assert.Equal(Te, []string{ReportHeader, "0\tgood\t1\t1"}, reportRows(buf.String()))
	assert.Len(Te, sink.mols, 1)
}

func TestConformerWriteFailure(Te *testing.T) {
	m := newScriptMatcher(map[string][]bool{"MolB": {true}})
	_, err := ScanConformers(&sliceStream{mols: []*chem.Molecule{diatomic(Te, "MolB", 2, false)}}, m, failClassifier{}, &memSink{failOn: "MolB"}, NewReporter(&closingBuffer{}), Options{Annotate: true})
	assert.True(Te, errors.Is(err, ErrWrite))
	assert.Contains(Te, err.Error(), "MolB")
}

/***Annotation***/

func TestAnnotate(Te *testing.T) {
	mol := diatomic(Te, "A", 2, false)
	mol.SetProperty("ID", "42")
	matches := newScriptMatcher(nil).UniqueMatches()
	matches = append(matches, matches[0])
	ann := Annotate(mol, 1, matches)
	assert.Equal(Te, Markers(matches), ann.Len()-mol.Len())
	assert.Equal(Te, 4, Markers(matches))
	assert.Equal(Te, 1, ann.LenFrames())
	assert.Len(Te, ann.Bonds, len(mol.Bonds))
	v, ok := ann.Property("ID")
	assert.True(Te, ok)
	assert.Equal(Te, "42", v)
	assert.InDelta(Te, 0.2, ann.Coords[0].At(0, 2), 1e-9)
	assert.Equal(Te, "N", ann.Atom(2).Name)
	//nothing changes in the original.
	assert.Equal(Te, 2, mol.Len())
	assert.Equal(Te, 2, mol.Coords[1].NVecs())
	ann.SetProperty("ID", "0")
	v, _ = mol.Property("ID")
	assert.Equal(Te, "42", v)
	none := Annotate(mol, 0, nil)
	assert.Equal(Te, mol.Len(), none.Len())
	assert.Equal(Te, len(mol.Bonds), len(none.Bonds))
}

/***Reporter***/

func TestReporterDetails(Te *testing.T) {
	buf := &closingBuffer{}
	R := NewReporter(buf)
	require.NoError(Te, R.Molecule("x", true))
	require.NoError(Te, R.Details([][]pharmacophore.Measurement{
		{pharmacophore.Distance{A: "N", B: "O", Value: 3}, pharmacophore.Angle{A: "N", B: "C", C: "O", Value: 104.5}},
		{pharmacophore.Distance{A: "N", B: "O", Value: 3.1}},
	}))
	require.NoError(Te, R.Group("y", 10, 0))
	assert.Equal(Te, 2, R.Rows())
	require.NoError(Te, R.Close())
	require.NoError(Te, R.Close())
	assert.Equal(Te, 1, buf.closed)
	exp := ReportHeader + "\n0\tx\tNA\ttrue\nMATCH 1: (N,O,3.00) (N,C,O,104.50) \nMATCH 2: (N,O,3.10) \n\n1\ty\t10\t0\n"
	assert.Equal(Te, exp, buf.String())
	assert.Error(Te, R.Molecule("z", false))
}

/***Logging and metrics***/

func TestLogging(Te *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mols := []*chem.Molecule{diatomic(Te, "MolA", 1, true), diatomic(Te, "MolB", 1, false)}
	m := newScriptMatcher(map[string][]bool{"MolB": {true}})
	_, err := ScanMolecules(&sliceStream{mols: mols}, m, failClassifier{}, &memSink{}, NewReporter(&closingBuffer{}), Options{Logger: zap.New(core), Timing: true})
	require.NoError(Te, err)
	hits := logs.FilterMessage("hit")
	require.Equal(Te, 1, hits.Len())
	assert.Equal(Te, "MolB", hits.All()[0].ContextMap()["title"])
	assert.EqualValues(Te, Markers(m.UniqueMatches()), hits.All()[0].ContextMap()["markers"])
	skips := logs.FilterMessage("skipped")
	require.Equal(Te, 1, skips.Len())
	assert.Equal(Te, "MolA", skips.All()[0].ContextMap()["title"])
	assert.Equal(Te, string(SkipNo3D), skips.All()[0].ContextMap()["reason"])
	done := logs.FilterMessage("scan finished")
	require.Equal(Te, 1, done.Len())
	assert.Equal(Te, zapcore.DebugLevel, done.All()[0].Level)
	assert.EqualValues(Te, 1, done.All()[0].ContextMap()["processed"])
	assert.Contains(Te, done.All()[0].ContextMap(), "mean_match_mol")
}

func TestMetrics(Te *testing.T) {
	M := NewMetrics("q", "mol")
	mols := []*chem.Molecule{diatomic(Te, "flat", 1, true), diatomic(Te, "hit", 1, false), diatomic(Te, "ring", 1, false), diatomic(Te, "no", 1, false)}
	m := newScriptMatcher(map[string][]bool{"hit": {true}})
	_, err := ScanMolecules(&sliceStream{mols: mols}, m, failClassifier{"ring": true}, &memSink{}, NewReporter(&closingBuffer{}), Options{Observer: M})
	require.NoError(Te, err)
	assert.Equal(Te, 2.0, testutil.ToFloat64(M.processed))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.hits))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.skipped.WithLabelValues(string(SkipNo3D))))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.skipped.WithLabelValues(string(SkipClassify))))
	assert.Equal(Te, 1, testutil.CollectAndCount(M.matching))
	name := filepath.Join(Te.TempDir(), "pcsearch.prom")
	require.NoError(Te, M.WriteTextfile(name))
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	assert.Contains(Te, string(data), `pcsearch_hits_total{mode="mol",query="q"} 1`)
	assert.Contains(Te, string(data), `pcsearch_match_duration_seconds_count{mode="mol",query="q"} 2`)
}
