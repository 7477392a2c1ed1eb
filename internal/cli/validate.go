/*
 * validate.go, part of pcore.
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
	"errors"
	"fmt"
	"io"

	"github.com/rmera/pcore/pharmacophore"
	"github.com/spf13/cobra"
)

func newValidateCommand(stdout, stderr io.Writer) *cobra.Command {
	var nocolor bool
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check the structure of a pharmacophore query file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(newPrinter(stdout, stderr, nocolor), args[0])
		},
	}
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")
	return cmd
}

//validate reports whether the query file name is valid. The error returned,
//if any, is an *exitError.
func validate(p *printer, name string) error {
	err := pharmacophore.ValidateFile(name)
	if err == nil {
		p.Infof("%s is a valid query file", name)
		return nil
	}
	p.Errorf("%s is an invalid query file", name)
	var verr *pharmacophore.ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			fmt.Fprintf(p.err, "  %s\n", issue)
		}
	} else {
		fmt.Fprintf(p.err, "  %v\n", err)
	}
	return &exitError{code: ExitError, err: err}
}
