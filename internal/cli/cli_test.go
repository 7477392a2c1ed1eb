/*
 * cli_test.go, part of pcore.
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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/pcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(Te *testing.T, args ...string) (int, string, string) {
	var out, errb bytes.Buffer
	code := Run(append(args, "--no-color"), &out, &errb)
	Te.Logf("stdout:\n%s\nstderr:\n%s", out.String(), errb.String())
	return code, out.String(), errb.String()
}

func readHits(Te *testing.T, name string) []*chem.Molecule {
	f, err := chem.OpenInput(name)
	require.NoError(Te, err)
	defer f.Close()
	r := chem.NewSDFReader(f)
	var mols []*chem.Molecule
	for {
		m, err := r.Next()
		if err != nil {
			break
		}
		mols = append(mols, m)
	}
	return mols
}

func readFile(Te *testing.T, name string) string {
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	return string(data)
}

func TestHitFileName(Te *testing.T) {
	assert.Equal(Te, "query.mols.sdf", HitFileName("testdata/query.xml", "testdata/mols.sdf"))
	assert.Equal(Te, "q.lib.sdf", HitFileName("/a/b/q.xml.gz", "lib.sdf.zst"))
	assert.Equal(Te, "q.lib.sdf", HitFileName("q", "lib"))
}

func TestSingleMode(Te *testing.T) {
	dir := Te.TempDir()
	report := filepath.Join(dir, "report.txt")
	hits := filepath.Join(dir, "hits.sdf")
	summary := filepath.Join(dir, "summary.yaml")
	code, out, errs := runCLI(Te, "--sdfile", "testdata/mols.sdf", "--query", "testdata/query.xml",
		"--ofile", hits, "--report", report, "-d", "--summary", summary)
	require.Equal(Te, ExitOK, code)
	assert.Equal(Te, "Serial\tTitle\tNconf\tNhit\n0\tethanolamine\tNA\ttrue\nMATCH 1: (N,O,3.14) \n\n1\tstretched\tNA\tfalse\n", readFile(Te, report))
	assert.Contains(Te, out, "INFO: Hits will go to "+hits)
	assert.Contains(Te, out, "INFO: Using aminoalcohol from testdata/query.xml")
	assert.Contains(Te, out, "INFO: Will not process conformers")
	assert.Contains(Te, out, "INFO: Processed 3 molecules in ")
	assert.Contains(Te, out, "and got 1 hits")
	//the final statistics are printed once, not logged again.
	assert.Equal(Te, 1, strings.Count(out, "Processed 3 molecules"))
	assert.NotContains(Te, errs, "scan finished")
	mols := readHits(Te, hits)
	require.Len(Te, mols, 1)
	assert.Equal(Te, "ethanolamine", mols[0].Title())
	require.Equal(Te, 6, mols[0].Len())
	assert.Equal(Te, chem.MarkerSymbol, mols[0].Atom(4).Symbol)
	assert.Equal(Te, chem.MarkerSymbol, mols[0].Atom(5).Symbol)
	var s Summary
	require.NoError(Te, yaml.Unmarshal([]byte(readFile(Te, summary)), &s))
	assert.Equal(Te, "aminoalcohol", s.Query)
	assert.Equal(Te, 2, s.Processed)
	assert.Equal(Te, 1, s.HitCount)
	assert.Equal(Te, 1, s.Skipped)
	assert.Equal(Te, "mol", s.Mode)
}

func TestQuietByDefault(Te *testing.T) {
	dir := Te.TempDir()
	code, out, _ := runCLI(Te, "--sdfile", "testdata/mols.sdf", "--query", "testdata/query.xml",
		"--ofile", filepath.Join(dir, "h.sdf"), "--report", filepath.Join(dir, "r.txt"))
	require.Equal(Te, ExitOK, code)
	assert.Empty(Te, out)
}

func TestQueryByName(Te *testing.T) {
	dir := Te.TempDir()
	report := filepath.Join(dir, "report.txt")
	code, _, _ := runCLI(Te, "--sdfile", "testdata/mols.sdf", "--query", "testdata/query.xml", "--qname", "far",
		"--ofile", filepath.Join(dir, "h.sdf.gz"), "--report", report)
	require.Equal(Te, ExitOK, code)
	assert.Equal(Te, "Serial\tTitle\tNconf\tNhit\n0\tethanolamine\tNA\tfalse\n1\tstretched\tNA\ttrue\n", readFile(Te, report))
	mols := readHits(Te, filepath.Join(dir, "h.sdf.gz"))
	require.Len(Te, mols, 1)
	assert.Equal(Te, "stretched", mols[0].Title())

	code, _, errs := runCLI(Te, "--sdfile", "testdata/mols.sdf", "--query", "testdata/query.xml", "--qname", "nothere",
		"--ofile", filepath.Join(dir, "h2.sdf"), "--report", report)
	assert.Equal(Te, ExitUsage, code)
	assert.Contains(Te, errs, "ERROR:")
	assert.Contains(Te, errs, "nothere")
}

func TestConformerMode(Te *testing.T) {
	dir := Te.TempDir()
	report := filepath.Join(dir, "report.txt")
	hits := filepath.Join(dir, "hits.sdf")
	metrics := filepath.Join(dir, "pcsearch.prom")
	code, out, _ := runCLI(Te, "--sdfile", "testdata/confs.sdf", "--query", "testdata/query.xml",
		"--ofile", hits, "--report", report, "-c", "-a", "-v", "-p", "--metrics", metrics)
	require.Equal(Te, ExitOK, code)
	assert.Equal(Te, "Serial\tTitle\tNconf\tNhit\n0\tMolB\t3\t2\n1\tMolC\t1\t0\n", readFile(Te, report))
	assert.Contains(Te, out, "INFO: Will process as conformers")
	assert.Contains(Te, out, "INFO: Average time for matching is ")
	assert.Contains(Te, out, " ms/conf")
	mols := readHits(Te, hits)
	require.Len(Te, mols, 2)
	for _, m := range mols {
		assert.Equal(Te, "MolB", m.Title())
		assert.Equal(Te, 6, m.Len())
	}
	assert.Contains(Te, readFile(Te, metrics), `pcsearch_hits_total{mode="conf",query="aminoalcohol"} 2`)
}

func TestUsageErrors(Te *testing.T) {
	code, _, errs := runCLI(Te, "--query", "testdata/query.xml")
	assert.Equal(Te, ExitUsage, code)
	assert.Contains(Te, errs, "--sdfile")
	code, _, errs = runCLI(Te, "--sdfile", "testdata/nothere.sdf", "--query", "testdata/query.xml")
	assert.Equal(Te, ExitUsage, code)
	assert.Contains(Te, errs, "testdata/nothere.sdf does not exist!")
	code, _, _ = runCLI(Te, "--bogus")
	assert.Equal(Te, ExitUsage, code)
}

func TestVersion(Te *testing.T) {
	code, out, _ := runCLI(Te, "-V")
	assert.Equal(Te, ExitOK, code)
	assert.Equal(Te, "pcsearch version "+Version+"\n", out)
}

func TestValidate(Te *testing.T) {
	code, out, _ := runCLI(Te, "--validate", "testdata/query.xml")
	assert.Equal(Te, ExitOK, code)
	assert.Equal(Te, "INFO: testdata/query.xml is a valid query file\n", out)
	code, _, errs := runCLI(Te, "--validate", "testdata/bad.xml")
	assert.Equal(Te, ExitError, code)
	assert.True(Te, strings.HasPrefix(errs, "ERROR: testdata/bad.xml is an invalid query file\n"))
	assert.Contains(Te, errs, "X")
	code, out, _ = runCLI(Te, "validate", "testdata/query.xml")
	assert.Equal(Te, ExitOK, code)
	assert.Contains(Te, out, "is a valid query file")
	code, _, _ = runCLI(Te, "validate", "testdata/bad.xml")
	assert.Equal(Te, ExitError, code)
}

func TestEnvAndConfigFile(Te *testing.T) {
	dir := Te.TempDir()
	report := filepath.Join(dir, "report.txt")
	cfgfile := filepath.Join(dir, "pcsearch.yaml")
	cfg := "sdfile: testdata/mols.sdf\nquery: testdata/query.xml\nqname: aminoalcohol\nofile: " + filepath.Join(dir, "h.sdf") + "\n"
	require.NoError(Te, os.WriteFile(cfgfile, []byte(cfg), 0o644))
	Te.Setenv("PCSEARCH_REPORT", report)
	Te.Setenv("PCSEARCH_QNAME", "far")
	code, _, _ := runCLI(Te, "--config", cfgfile)
	require.Equal(Te, ExitOK, code)
	//the environment beats the file.
	assert.Contains(Te, readFile(Te, report), "1\tstretched\tNA\ttrue\n")
	//and the flags beat the environment.
	code, _, _ = runCLI(Te, "--config", cfgfile, "--qname", "aminoalcohol")
	require.Equal(Te, ExitOK, code)
	assert.Contains(Te, readFile(Te, report), "0\tethanolamine\tNA\ttrue\n")
}
