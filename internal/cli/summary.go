/*
 * summary.go, part of pcore.
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
	"time"

	"github.com/rmera/pcore/search"
	"gopkg.in/yaml.v3"
)

//Summary is the record of a run written by --summary.
type Summary struct {
	Query          string  `yaml:"query"`
	QueryFile      string  `yaml:"query_file"`
	Input          string  `yaml:"input"`
	Hits           string  `yaml:"hits_file"`
	Report         string  `yaml:"report_file"`
	Mode           string  `yaml:"mode"`
	Processed      int     `yaml:"processed"`
	HitCount       int     `yaml:"hits"`
	Skipped        int     `yaml:"skipped"`
	ElapsedSeconds float64 `yaml:"elapsed_seconds"`
	PerUnitSeconds float64 `yaml:"seconds_per_unit"`
	MeanMatchMs    float64 `yaml:"mean_match_ms,omitempty"`
}

func newSummary(cfg *Config, qname string, c search.Counters) Summary {
	s := Summary{
		Query:          qname,
		QueryFile:      cfg.Query,
		Input:          cfg.SDFile,
		Hits:           cfg.OFile,
		Report:         cfg.Report,
		Mode:           "mol",
		Processed:      c.Processed,
		HitCount:       c.Hits,
		Skipped:        c.Skipped,
		ElapsedSeconds: c.Elapsed.Seconds(),
		PerUnitSeconds: c.AvgPerUnit().Seconds(),
		MeanMatchMs:    float64(c.MeanMatchTime()) / float64(time.Millisecond),
	}
	if cfg.Conf {
		s.Mode = "conf"
	}
	return s
}

func writeSummary(name string, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("can't encode the summary: %w", err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("can't write the summary: %w", err)
	}
	return nil
}
