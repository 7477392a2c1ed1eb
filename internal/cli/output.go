/*
 * output.go, part of pcore.
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
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//printer writes the INFO and ERROR lines meant for the user.
type printer struct {
	out  io.Writer
	err  io.Writer
	info *color.Color
	bad  *color.Color
}

func newPrinter(out, err io.Writer, nocolor bool) *printer {
	p := &printer{out: out, err: err, info: color.New(color.FgCyan), bad: color.New(color.FgRed, color.Bold)}
	if nocolor {
		p.info.DisableColor()
		p.bad.DisableColor()
	}
	return p
}

//Infof prints an INFO line to the standard output.
func (p *printer) Infof(format string, a ...interface{}) {
	p.info.Fprint(p.out, "INFO:")
	fmt.Fprintf(p.out, " "+format+"\n", a...)
}

//Progressf rewrites the current line of the standard output with an INFO message.
func (p *printer) Progressf(format string, a ...interface{}) {
	fmt.Fprint(p.out, "\r")
	p.info.Fprint(p.out, "INFO:")
	fmt.Fprintf(p.out, " "+format, a...)
}

//Errorf prints an ERROR line to the standard error.
func (p *printer) Errorf(format string, a ...interface{}) {
	p.bad.Fprint(p.err, "ERROR:")
	fmt.Fprintf(p.err, " "+format+"\n", a...)
}

//newLogger returns a console logger writing to w. Only warnings and errors are
//logged, unless verbose (info) or debug are set.
func newLogger(w io.Writer, verbose, debug bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.InfoLevel
	}
	if debug {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core).Named("pcsearch")
}
