/*
 * run.go, part of pcore.
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

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chem "github.com/rmera/pcore"
	"github.com/rmera/pcore/aromaticity"
	"github.com/rmera/pcore/chemplot"
	"github.com/rmera/pcore/pharmacophore"
	"github.com/rmera/pcore/search"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//HitFileName returns the default name of the hits file: the first dot-separated token of the
//base name of the query file, the same for the input file, and the .sdf extension.
func HitFileName(query, input string) string {
	first := func(name string) string {
		return strings.SplitN(filepath.Base(name), ".", 2)[0]
	}
	return first(query) + "." + first(input) + ".sdf"
}

func usagef(cmd *cobra.Command, p *printer, format string, a ...interface{}) error {
	p.Errorf(format, a...)
	fmt.Fprint(p.err, cmd.UsageString())
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, a...)}
}

//run performs the search set up in cfg.
func run(cmd *cobra.Command, cfg *Config) error {
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.NoColor)
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.Debug)
	defer logger.Sync()
	if cfg.Validate != "" {
		return validate(p, cfg.Validate)
	}
	if cfg.SDFile == "" || cfg.Query == "" {
		return usagef(cmd, p, "both --sdfile and --query are needed")
	}
	for _, name := range []string{cfg.SDFile, cfg.Query} {
		if _, err := os.Stat(name); err != nil {
			return usagef(cmd, p, "%s does not exist!", name)
		}
	}
	if cfg.Align != "" {
		logger.Warn("alignment of hits is not implemented, ignoring --align", zap.String("method", cfg.Align))
	}
	queries, err := pharmacophore.ReadFile(cfg.Query)
	if err != nil {
		p.Errorf("%v", err)
		return &exitError{code: ExitUsage, err: err}
	}
	sel := pharmacophore.First()
	if cfg.QName != "" {
		sel = pharmacophore.ByName(cfg.QName)
	}
	q, qname, err := pharmacophore.Resolve(queries, sel)
	if err != nil {
		p.Errorf("%v in %s", err, cfg.Query)
		return &exitError{code: ExitUsage, err: err}
	}
	matcher, err := pharmacophore.NewMatcher(q, pharmacophore.MatcherOptions{MaxAssignments: cfg.MaxAssignments})
	if err != nil {
		p.Errorf("%v", err)
		return &exitError{code: ExitUsage, err: err}
	}
	if cfg.OFile == "" {
		cfg.OFile = HitFileName(cfg.Query, cfg.SDFile)
	}
	if cfg.PerfPlot != "" {
		cfg.Perf = true
	}
	r := &runner{cfg: cfg, p: p, log: logger, qname: qname}
	if err := r.scan(matcher); err != nil {
		p.Errorf("%v", err)
		return &exitError{code: ExitError, err: err}
	}
	return nil
}

//runner holds what a run needs once the query is ready.
type runner struct {
	cfg   *Config
	p     *printer
	log   *zap.Logger
	qname string
}

func (r *runner) mode() string {
	if r.cfg.Conf {
		return "conf"
	}
	return "mol"
}

func (r *runner) scan(matcher *pharmacophore.Matcher) error {
	cfg := r.cfg
	in, err := chem.OpenInput(cfg.SDFile)
	if err != nil {
		return err
	}
	defer in.Close()
	hits, err := chem.CreateOutput(cfg.OFile)
	if err != nil {
		return err
	}
	sink := chem.NewSDFWriter(hits)
	repfile, err := chem.CreateOutput(cfg.Report)
	if err != nil {
		sink.Close()
		return err
	}
	rep := search.NewReporter(repfile)
	if cfg.Verbose {
		r.p.Infof("Hits will go to %s", cfg.OFile)
		r.p.Infof("Using %s from %s", r.qname, cfg.Query)
	}
	opts := search.Options{
		Details:  cfg.Details,
		Annotate: cfg.Annotate,
		Timing:   cfg.Perf,
		Logger:   r.log,
	}
	if cfg.Verbose {
		opts.Progress = func(c search.Counters) {
			r.p.Progressf("Processed %d [hits = %d skip = %d]", c.Processed, c.Hits, c.Skipped)
		}
	}
	var metrics *search.Metrics
	if cfg.Metrics != "" {
		metrics = search.NewMetrics(r.qname, r.mode())
		opts.Observer = metrics
	}
	var counters search.Counters
	var serr error
	if cfg.Conf {
		if cfg.Verbose {
			r.p.Infof("Will process as conformers")
		}
		counters, serr = search.ScanConformers(chem.NewConformerReader(in), matcher, aromaticity.Daylight{}, sink, rep, opts)
	} else {
		if cfg.Verbose {
			r.p.Infof("Will not process conformers")
		}
		counters, serr = search.ScanMolecules(chem.NewSDFReader(in), matcher, aromaticity.Daylight{}, sink, rep, opts)
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.Metrics); err != nil {
			r.log.Error("can't write metrics", zap.String("file", cfg.Metrics), zap.Error(err))
		}
	}
	if serr != nil {
		return serr
	}
	r.report(counters)
	if cfg.Summary != "" {
		if err := writeSummary(cfg.Summary, newSummary(cfg, r.qname, counters)); err != nil {
			return err
		}
	}
	if cfg.PerfPlot != "" {
		r.plot(counters)
	}
	return nil
}

//report prints the final statistics of the run.
func (r *runner) report(c search.Counters) {
	if r.cfg.Verbose {
		fmt.Fprint(r.p.out, "\n")
		r.p.Infof("Processed %d molecules in %.2fs [%.2f s/mol] and got %d hits", c.Pulled(), c.Elapsed.Seconds(), c.AvgPerUnit().Seconds(), c.Hits)
	}
	if r.cfg.Perf {
		r.p.Infof("Average time for matching is %.2f ms/%s", float64(c.MeanMatchTime())/float64(time.Millisecond), r.mode())
	}
}

//plot saves the histogram of the match times, and their series, to a file named
//like the histogram with "-series" before the extension.
func (r *runner) plot(c search.Counters) {
	ms := c.MatchTimesMs()
	title := fmt.Sprintf("Matching %s", r.qname)
	if err := chemplot.TimingHistogram(ms, title, r.cfg.PerfPlot); err != nil {
		r.log.Warn("can't plot match times", zap.Error(err))
		return
	}
	ext := filepath.Ext(r.cfg.PerfPlot)
	series := strings.TrimSuffix(r.cfg.PerfPlot, ext) + "-series" + ext
	if err := chemplot.TimingSeries(ms, title, series); err != nil {
		r.log.Warn("can't plot match times", zap.Error(err))
	}
}
