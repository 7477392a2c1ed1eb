/*
 * search.go, part of pcore.
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

//Package search screens molecules, or groups of conformers of a molecule, against a
//pharmacophore query. Hits are written, optionally annotated with marker atoms, to a
//structure sink, and every scanned unit gets a row in a tab-separated report.
package search

import (
	"errors"
	"fmt"
	"time"

	chem "github.com/rmera/pcore"
	"github.com/rmera/pcore/pharmacophore"
	v3 "github.com/rmera/pcore/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

//Classifier perceives aromaticity in a topology, setting the Aromatic flags of its atoms and bonds.
type Classifier interface {
	Classify(top *chem.Topology) error
}

//Matcher matches one pharmacophore query against structures. After a call to Matches that
//returns true, UniqueMatches and MatchedConstraints describe the hit.
type Matcher interface {
	Matches(top *chem.Topology, coords *v3.Matrix, reset bool) (bool, error)
	UniqueMatches() []pharmacophore.Match
	MatchedConstraints() [][]pharmacophore.Measurement
}

//Stream gives one unit (a molecule, or a conformer group) per call, and io.EOF
//when there is nothing left.
type Stream interface {
	Next() (*chem.Molecule, error)
}

//Sink receives the hits.
type Sink interface {
	Write(mol *chem.Molecule, frame int) error
	Close() error
}

//SkipReason tells why a unit was skipped.
type SkipReason string

const (
	SkipNo3D     SkipReason = "no3d"
	SkipClassify SkipReason = "classify"
	SkipMatch    SkipReason = "match"
)

//Observer is notified of the progress of a scan. See Metrics.
type Observer interface {
	Processed(title string, hits int)
	Skipped(title string, reason SkipReason)
	Matched(d time.Duration)
}

//DefaultProgressEvery is the number of processed units between calls to Options.Progress.
const DefaultProgressEvery = 100

//Options change what a scan reports. The zero value is a quiet scan with
//no details, no timing and no annotation of conformers.
type Options struct {
	Details       bool //write the measured constraints of each hit to the report.
	Annotate      bool //annotate conformer hits. Single molecule hits are always annotated.
	Timing        bool //keep the duration of each call to the matcher.
	ProgressEvery int  //0 means DefaultProgressEvery
	Progress      func(Counters)
	Logger        *zap.Logger //nil means no logging.
	Observer      Observer
}

//Counters accumulate the results of a scan.
type Counters struct {
	Processed  int
	Hits       int
	Skipped    int
	Elapsed    time.Duration
	MatchTimes []time.Duration //only with Options.Timing
}

//Pulled returns the number of units that were processed or skipped.
func (C Counters) Pulled() int {
	return C.Processed + C.Skipped
}

//AvgPerUnit returns the elapsed time divided by the units pulled from the stream, or 0
//if no unit was pulled.
func (C Counters) AvgPerUnit() time.Duration {
	if C.Pulled() == 0 {
		return 0
	}
	return C.Elapsed / time.Duration(C.Pulled())
}

//MatchTimesMs returns the match durations in milliseconds.
func (C Counters) MatchTimesMs() []float64 {
	ms := make([]float64, len(C.MatchTimes))
	for i, d := range C.MatchTimes {
		ms[i] = float64(d) / float64(time.Millisecond)
	}
	return ms
}

//MeanMatchTime returns the mean duration of the calls to the matcher, or 0 if
//there is none.
func (C Counters) MeanMatchTime() time.Duration {
	if len(C.MatchTimes) == 0 {
		return 0
	}
	ns := make([]float64, len(C.MatchTimes))
	for i, d := range C.MatchTimes {
		ns[i] = float64(d)
	}
	return time.Duration(stat.Mean(ns, nil))
}

//Errors that stop a scan. They are always wrapped in an *Error.
var (
	ErrRead     = errors.New("can't read input")
	ErrClassify = errors.New("aromaticity perception failed")
	ErrWrite    = errors.New("problem writing a hit to disk")
	ErrReport   = errors.New("problem writing the report")
)

//Error is a fatal scan error. Stage is one of ErrRead, ErrClassify, ErrWrite or ErrReport,
//Title is the title of the offending molecule, if known.
type Error struct {
	Stage error
	Title string
	Err   error
}

func (E *Error) Error() string {
	if E.Title == "" {
		return fmt.Sprintf("search: %v: %v", E.Stage, E.Err)
	}
	return fmt.Sprintf("search: %v [title = %s]: %v", E.Stage, E.Title, E.Err)
}

//Unwrap allows errors.Is to find both the stage and the cause.
func (E *Error) Unwrap() []error {
	return []error{E.Stage, E.Err}
}
