/*
 * config.go, part of gosiesta.
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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/rmera/gosiesta/fdf"
)

// Name of the configuration file looked for in the working directory.
const configName = "fdf.yaml"

// Prefix of the environment variables that override the configuration.
const envPrefix = "GOSIESTA_"

// Config is the configuration of the fdf command.
type Config struct {
	Base    string              `koanf:"base"`    //directory for included and companion files
	Output  bool                `koanf:"output"`  //read lattice and geometry from the output files first
	Order   map[string][]string `koanf:"order"`   //source order per quantity
	Sources []string            `koanf:"sources"` //source order for the current command
	Unit    string              `koanf:"unit"`
	Format  string              `koanf:"format"`
	Keep    bool                `koanf:"keep"`
	JSON    bool                `koanf:"json"`
	Verbose bool                `koanf:"verbose"`
	File    string              `koanf:"-"` //configuration file used, if any
}

func defaults() map[string]interface{} {
	O := fdf.DefaultOptions()
	return map[string]interface{}{
		"base":    "",
		"output":  false,
		"unit":    O.Unit(),
		"format":  O.Format(),
		"keep":    true,
		"json":    false,
		"verbose": false,
	}
}

// loadConfig loads the configuration. Precedence, from lowest to highest:
// defaults, the configuration file, environment variables and flags.
// If cfgFile is empty, fdf.yaml is used if it exists.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if cfgFile == "" {
		if _, err := os.Stat(configName); err == nil {
			cfgFile = configName
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}
	//GOSIESTA_ORDER_GEOMETRY -> order.geometry
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if rest, ok := strings.CutPrefix(s, "order_"); ok {
			return "order." + rest
		}
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	for q, v := range cfg.Order {
		cfg.Order[q] = splitList(v)
	}
	cfg.Sources = splitList(cfg.Sources)
	if cfgFile != "" {
		cfg.File, _ = filepath.Abs(cfgFile)
	}
	return cfg, nil
}

// splitList splits comma-separated elements, as they come from environment variables.
func splitList(l []string) []string {
	var ret []string
	for _, s := range l {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				ret = append(ret, f)
			}
		}
	}
	return ret
}

// options returns the fdf options to read the quantity q.
func (cfg *Config) options(q fdf.Quantity) (*fdf.Options, error) {
	O := fdf.DefaultOptions()
	O.Output(cfg.Output)
	O.Unit(cfg.Unit)
	O.Format(cfg.Format)
	order := cfg.Sources
	if len(order) == 0 {
		order = cfg.Order[string(q)]
	}
	if len(order) > 0 {
		s, err := fdf.ParseSources(order)
		if err != nil {
			return nil, err
		}
		O.Order(s)
	}
	return O, nil
}

// open opens the fdf file name with the configured base directory.
func (cfg *Config) open(name string) (*fdf.File, error) {
	return fdf.Open(name, fdf.WithBase(cfg.Base))
}
