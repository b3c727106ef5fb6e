/*
 * root.go, part of gosiesta.
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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	siesta "github.com/rmera/gosiesta"
)

// configKey stores the configuration in the command context.
type configKey struct{}

var cfgFile string

// newRootCmd returns the fdf command with all its subcommands.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fdf",
		Short: "Query and edit SIESTA fdf files and their output files",
		Long: `fdf reads and edits SIESTA fdf input files. Labels can be read and set,
and the lattice, geometry, basis and matrices of a calculation can be read
from the fdf file or from the files SIESTA writes next to it.

Configuration is read from fdf.yaml (or --config), GOSIESTA_* environment
variables and flags, in increasing order of precedence.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			siesta.SetLogger(logger)
			if cfg.File != "" {
				logger.Sugar().Infof("using config file %s", cfg.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./fdf.yaml)")
	pf.String("base", "", "directory for included and output files (default: that of the fdf file)")
	pf.Bool("output", false, "read the lattice and geometry from the output files first")
	pf.StringSlice("sources", nil, "files to read the quantity from, in order (e.g. XV,fdf)")
	pf.String("unit", "", "unit for written coordinates (Ang, Bohr, Fractional)")
	pf.String("format", "", "format for written real numbers (e.g. %.8f)")
	pf.Bool("json", false, "JSON output")
	pf.BoolP("verbose", "v", false, "verbose output")

	root.AddCommand(newGetCmd(), newSetCmd(), newIncludesCmd(), newLatticeCmd(),
		newGeometryCmd(), newBasisCmd(), newMatrixCmd(), newGridCmd(), newQueryCmd())
	return root
}

// newLogger returns a production logger at warn level, or a development
// one, which also logs informational messages, if verbose is true.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopmentConfig().Build()
	}
	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	c.Encoding = "console"
	c.DisableStacktrace = true
	return c.Build()
}

// getConfig returns the configuration stored in the context of cmd.
func getConfig(cmd *cobra.Command) *Config {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	cfg, err := loadConfig("", nil)
	if err != nil {
		panic(fmt.Sprintf("fdf: can't load the default configuration: %v", err))
	}
	return cfg
}
