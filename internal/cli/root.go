/*
 * root.go, part of pcore.
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

//Package cli implements the pcsearch command, which screens SD files against
//pharmacophore queries.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

//Version is the version of pcsearch. It can be set at build time with -ldflags.
var Version = "1.3.1"

//Exit codes of Run.
const (
	ExitOK    = 0
	ExitError = 1 //the scan failed, or a query file is invalid.
	ExitUsage = 2 //bad arguments, missing files or queries.
)

//exitError is returned by the commands once they have reported the problem to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

//Run runs pcsearch with the arguments argv (without the program name), printing to
//stdout and stderr, and returns the exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout, stderr)
	cmd.SetArgs(argv)
	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	//cobra's own errors: unknown flags and the like.
	newPrinter(stdout, stderr, true).Errorf("%v", err)
	fmt.Fprint(stderr, cmd.UsageString())
	return ExitUsage
}

//NewRootCommand returns the pcsearch command, with the validate subcommand.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var configfile string
	cmd := &cobra.Command{
		Use:   "pcsearch --sdfile FILE --query FILE [flags]",
		Short: "Pharmacophore searching of 3D structure libraries",
		Long: "pcsearch screens the molecules of an SD file against a pharmacophore query with\n" +
			"distance and angle constraints, defined in an XML file.\n" +
			"Hits are written to an SD file and every molecule scanned gets a row in a report.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), configfile)
			if err != nil {
				return &exitError{code: ExitUsage, err: err}
			}
			return run(cmd, cfg)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("pcsearch version {{.Version}}\n")

	f := cmd.Flags()
	f.String("sdfile", "", "input SD file. Can be a set of unique molecules or a collection of conformers for a set of molecules")
	f.String("query", "", "the pharmacophore queries in XML format")
	f.String("qname", "", "the name of the query to use. By default, the first query in the file is used")
	f.String("ofile", "", "output file for the hits (default <query base>.<input base>.sdf)")
	f.String("report", DefaultReport, "the report file")
	f.BoolP("conf", "c", false, "the input file contains conformers. The conformers of a molecule must be contiguous and have the same title")
	f.BoolP("verbose", "v", false, "verbose output")
	f.BoolP("details", "d", false, "write the measured constraints of each hit to the report. Implies verbose")
	f.BoolP("annotate", "a", false, "annotate conformer hits with Xe atoms at the pharmacophore groups (hits found without -c are always annotated)")
	f.BoolP("perf", "p", false, "time each match and report the average")
	f.String("perf-plot", "", "save a histogram of the match times to this file (png, svg, pdf). Implies --perf")
	f.String("summary", "", "write a YAML summary of the run to this file")
	f.String("metrics", "", "write the run metrics, in the Prometheus text format, to this file")
	f.Int("max-assignments", 0, "bound on the assignments explored per match, negative for no bound (default 1000000)")
	f.String("validate", "", "only validate the given query file")
	f.String("align", "", "align the hits with the given method (not implemented, ignored)")
	f.Bool("no-color", false, "disable colored output")
	f.Bool("debug", false, "debug logging")
	f.BoolP("version", "V", false, "print the version and exit")
	f.StringVar(&configfile, "config", "", "config file (YAML, TOML or JSON)")
	cmd.AddCommand(newValidateCommand(stdout, stderr))
	return cmd
}
