/*
 * files.go, part of pcore.
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
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//File compression is chosen from the file extension: names ending in .gz are
//gzip streams, names ending in .zst or .zstd are zstandard streams, anything
//else is plain text.

type compression int

const (
	plain compression = iota
	gz
	zst
)

func compressionFor(name string) compression {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".gz"):
		return gz
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return zst
	}
	return plain
}

//TrimCompression returns name without a compression extension, if it has one.
func TrimCompression(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".gz", ".zstd", ".zst"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

//Also, why couldn't *zstd.Decoder implement io.ReadCloser? :-(
type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

//Close closes the decoder and the underlying file.
func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

type gzReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g gzReadCloser) Close() error {
	err := g.Reader.Close()
	if err2 := g.f.Close(); err == nil {
		err = err2
	}
	return err
}

//OpenInput opens the file name for reading, decompressing it transparently
//if its extension indicates gzip or zstandard compression.
func OpenInput(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{"Can't open " + name, []string{"os.Open", "OpenInput"}, true, err}
	}
	switch compressionFor(name) {
	case gz:
		r, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, CError{"Can't read gzip header of " + name, []string{"gzip.NewReader", "OpenInput"}, true, err}
		}
		return gzReadCloser{r, f}, nil
	case zst:
		r, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, CError{"Can't start zstd decoder for " + name, []string{"zstd.NewReader", "OpenInput"}, true, err}
		}
		return zstdReadCloser{r, f}, nil
	}
	return f, nil
}

//a compressing writer and the file under it, closed in that order.
type compressedWriteCloser struct {
	io.WriteCloser
	f *os.File
}

func (c compressedWriteCloser) Close() error {
	err := c.WriteCloser.Close()
	if err2 := c.f.Close(); err == nil {
		err = err2
	}
	return err
}

//CreateOutput creates (or truncates) the file name for writing, compressing
//the output if its extension indicates gzip or zstandard compression.
func CreateOutput(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, CError{"Can't create " + name, []string{"os.Create", "CreateOutput"}, true, err}
	}
	switch compressionFor(name) {
	case gz:
		return compressedWriteCloser{gzip.NewWriter(f), f}, nil
	case zst:
		w, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, CError{"Can't start zstd encoder for " + name, []string{"zstd.NewWriter", "CreateOutput"}, true, err}
		}
		return compressedWriteCloser{w, f}, nil
	}
	return f, nil
}
