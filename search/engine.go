/*
 * engine.go, part of pcore.
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
	"errors"
	"io"
	"time"

	chem "github.com/rmera/pcore"
	v3 "github.com/rmera/pcore/v3"
	"go.uber.org/zap"
)

//scanner holds the state of one scan.
type scanner struct {
	m     Matcher
	cl    Classifier
	sink  Sink
	rep   *Reporter
	opts  Options
	every int
	log   *zap.Logger
	c     Counters
}

func newScanner(m Matcher, cl Classifier, sink Sink, rep *Reporter, opts Options) *scanner {
	s := &scanner{m: m, cl: cl, sink: sink, rep: rep, opts: opts, every: opts.ProgressEvery, log: opts.Logger}
	if s.every <= 0 {
		s.every = DefaultProgressEvery
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

//ScanMolecules scans each molecule of in, on its own, against the query of m.
//Molecules without 3D coordinates, or for which aromaticity perception or matching
//fails, are skipped and get no report row. Hits are annotated and written to sink.
//sink and rep are closed before returning, also when a fatal error stops the scan.
func ScanMolecules(in Stream, m Matcher, cl Classifier, sink Sink, rep *Reporter, opts Options) (Counters, error) {
	s := newScanner(m, cl, sink, rep, opts)
	return s.run(in, s.molecule, "mol")
}

//ScanConformers scans each conformer group of in against the query of m. Aromaticity is
//perceived once per group, on the shared topology, and a failure there stops the scan.
//The candidate atoms for each query group are searched on the first conformer and reused
//for the rest. Each group gets one report row with the number of conformers that matched.
//Matching conformers are written to sink, annotated only if opts.Annotate is set.
//sink and rep are closed before returning, also when a fatal error stops the scan.
func ScanConformers(in Stream, m Matcher, cl Classifier, sink Sink, rep *Reporter, opts Options) (Counters, error) {
	s := newScanner(m, cl, sink, rep, opts)
	return s.run(in, s.group, "conf")
}

func (s *scanner) run(in Stream, unit func(*chem.Molecule) error, per string) (Counters, error) {
	start := time.Now()
	var ferr error
	for {
		mol, err := in.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ferr = &Error{Stage: ErrRead, Err: err}
			break
		}
		if ferr = unit(mol); ferr != nil {
			break
		}
	}
	if err := s.close(); err != nil && ferr == nil {
		ferr = err
	}
	s.c.Elapsed = time.Since(start)
	if ferr != nil {
		s.log.Debug("scan aborted", zap.Error(ferr), zap.Int("processed", s.c.Processed), zap.Int("hits", s.c.Hits), zap.Int("skipped", s.c.Skipped))
		return s.c, ferr
	}
	fields := []zap.Field{zap.Int("processed", s.c.Processed), zap.Int("hits", s.c.Hits), zap.Int("skipped", s.c.Skipped),
		zap.Duration("elapsed", s.c.Elapsed), zap.Duration("per_unit", s.c.AvgPerUnit())}
	if s.opts.Timing {
		fields = append(fields, zap.Duration("mean_match_"+per, s.c.MeanMatchTime()))
	}
	s.log.Debug("scan finished", fields...)
	return s.c, nil
}

//close closes the sink and the reporter, in that order, and returns the first error.
func (s *scanner) close() error {
	var ferr error
	if err := s.sink.Close(); err != nil {
		ferr = &Error{Stage: ErrWrite, Err: err}
	}
	if err := s.rep.Close(); err != nil && ferr == nil {
		ferr = &Error{Stage: ErrReport, Err: err}
	}
	return ferr
}

func (s *scanner) match(top *chem.Topology, coords *v3.Matrix, reset bool) (bool, error) {
	t := time.Now()
	matched, err := s.m.Matches(top, coords, reset)
	d := time.Since(t)
	if s.opts.Timing {
		s.c.MatchTimes = append(s.c.MatchTimes, d)
	}
	if s.opts.Observer != nil {
		s.opts.Observer.Matched(d)
	}
	return matched, err
}

func (s *scanner) skip(title string, reason SkipReason, err error) {
	s.c.Skipped++
	s.log.Debug("skipped", zap.String("title", title), zap.String("reason", string(reason)), zap.Error(err))
	if s.opts.Observer != nil {
		s.opts.Observer.Skipped(title, reason)
	}
}

func (s *scanner) processed(title string, hits int) {
	s.c.Processed++
	if s.opts.Observer != nil {
		s.opts.Observer.Processed(title, hits)
	}
	if s.opts.Progress != nil && s.c.Processed%s.every == 0 {
		s.opts.Progress(s.c)
	}
}

//molecule scans one molecule in single mode. Only write errors are returned.
func (s *scanner) molecule(mol *chem.Molecule) error {
	title := mol.Title()
	if !mol.Has3D(0) {
		s.skip(title, SkipNo3D, nil)
		return nil
	}
	if err := s.cl.Classify(mol.Topology); err != nil {
		s.skip(title, SkipClassify, err)
		return nil
	}
	matched, err := s.match(mol.Topology, mol.Coords[0], true)
	if err != nil {
		s.skip(title, SkipMatch, err)
		return nil
	}
	hits := 0
	if matched {
		hits = 1
		s.c.Hits++
		matches := s.m.UniqueMatches()
		s.log.Debug("hit", zap.String("title", title), zap.Int("markers", Markers(matches)))
		if err := s.sink.Write(Annotate(mol, 0, matches), 0); err != nil {
			return &Error{Stage: ErrWrite, Title: title, Err: err}
		}
	}
	if err := s.rep.Molecule(title, matched); err != nil {
		return &Error{Stage: ErrReport, Title: title, Err: err}
	}
	if matched && s.opts.Details {
		if err := s.rep.Details(s.m.MatchedConstraints()); err != nil {
			return &Error{Stage: ErrReport, Title: title, Err: err}
		}
	}
	s.processed(title, hits)
	return nil
}

//group scans one conformer group. Hits are kept until the whole group has been
//matched, so a group skipped because of a matcher error leaves no trace in the output.
func (s *scanner) group(mol *chem.Molecule) error {
	title := mol.Title()
	if err := s.cl.Classify(mol.Topology); err != nil {
		return &Error{Stage: ErrClassify, Title: title, Err: err}
	}
	var hits []*chem.Molecule
	for i, coords := range mol.Coords {
		matched, err := s.match(mol.Topology, coords, i == 0)
		if err != nil {
			s.skip(title, SkipMatch, err)
			return nil
		}
		if !matched {
			continue
		}
		matches := s.m.UniqueMatches()
		s.log.Debug("hit", zap.String("title", title), zap.Int("conformer", i), zap.Int("markers", Markers(matches)))
		if s.opts.Annotate {
			hits = append(hits, Annotate(mol, i, matches))
		} else {
			hits = append(hits, mol.Frame(i))
		}
	}
	s.c.Hits += len(hits)
	for _, h := range hits {
		if err := s.sink.Write(h, 0); err != nil {
			return &Error{Stage: ErrWrite, Title: title, Err: err}
		}
	}
	if err := s.rep.Group(title, mol.LenFrames(), len(hits)); err != nil {
		return &Error{Stage: ErrReport, Title: title, Err: err}
	}
	s.processed(title, len(hits))
	return nil
}
