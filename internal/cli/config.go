/*
 * config.go, part of pcore.
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
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

//envPrefix is the prefix of the environment variables read by pcsearch,
//e.g. PCSEARCH_QUERY or PCSEARCH_PERF_PLOT.
const envPrefix = "PCSEARCH"

//DefaultReport is the name of the report file when none is given.
const DefaultReport = "report.txt"

//Config holds the settings of one run. Each field can come from a flag, an environment
//variable or a config file, in that order of precedence.
type Config struct {
	SDFile         string `mapstructure:"sdfile" yaml:"sdfile"`
	Query          string `mapstructure:"query" yaml:"query"`
	QName          string `mapstructure:"qname" yaml:"qname"`
	OFile          string `mapstructure:"ofile" yaml:"ofile"`
	Report         string `mapstructure:"report" yaml:"report"`
	Conf           bool   `mapstructure:"conf" yaml:"conf"`
	Verbose        bool   `mapstructure:"verbose" yaml:"verbose"`
	Details        bool   `mapstructure:"details" yaml:"details"`
	Annotate       bool   `mapstructure:"annotate" yaml:"annotate"`
	Perf           bool   `mapstructure:"perf" yaml:"perf"`
	PerfPlot       string `mapstructure:"perf-plot" yaml:"perf-plot"`
	Summary        string `mapstructure:"summary" yaml:"summary"`
	Metrics        string `mapstructure:"metrics" yaml:"metrics"`
	MaxAssignments int    `mapstructure:"max-assignments" yaml:"max-assignments"`
	Validate       string `mapstructure:"validate" yaml:"validate"`
	Align          string `mapstructure:"align" yaml:"align"`
	NoColor        bool   `mapstructure:"no-color" yaml:"no-color"`
	Debug          bool   `mapstructure:"debug" yaml:"debug"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

//loadConfig merges the flags in fs with the environment and, if configfile is not
//empty, with the file configfile (YAML, TOML or JSON, by extension).
func loadConfig(fs *pflag.FlagSet, configfile string) (*Config, error) {
	v := newViper()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: can't bind flags: %w", err)
	}
	if configfile != "" {
		v.SetConfigFile(configfile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configfile, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	if cfg.Details {
		cfg.Verbose = true
	}
	if cfg.Report == "" {
		cfg.Report = DefaultReport
	}
	return cfg, nil
}
