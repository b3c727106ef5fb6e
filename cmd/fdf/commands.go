/*
 * commands.go, part of gosiesta.
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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/fdf"
	"github.com/rmera/gosiesta/siestajson"
	v3 "github.com/rmera/gosiesta/v3"
)

// fail writes err as JSON to the command output, if JSON output is on, and returns it.
func fail(cmd *cobra.Command, where, function string, err error) error {
	if err == nil {
		return nil
	}
	if getConfig(cmd).JSON {
		out := cmd.OutOrStdout()
		out.Write(siestajson.NewError(where, function, err).Marshal())
		fmt.Fprintln(out)
	}
	return err
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE LABEL...",
		Short: "Print the value of one or more labels",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			F, err := cfg.open(args[0])
			if err != nil {
				return fail(cmd, "input", "get", err)
			}
			out := cmd.OutOrStdout()
			values := make(map[string]interface{}, len(args)-1)
			for _, l := range args[1:] {
				v, err := F.Get(l)
				if err != nil {
					return fail(cmd, "input", "get", err)
				}
				if v == nil {
					siesta.Logger().Warnf("label %s not found in %s", l, F.FileName())
					continue
				}
				if cfg.JSON {
					values[l] = v
					continue
				}
				fmt.Fprintln(out, fdf.Print(l, v))
			}
			if cfg.JSON {
				return json.NewEncoder(out).Encode(values)
			}
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set FILE LABEL VALUE...",
		Short: "Set the value of a label",
		Long: `Set writes LABEL with the given value in the file where it is first
defined, or at the end of FILE if it is not defined. The values are joined
with spaces. With --block, each value is a line of a block.
The old value is kept as a comment unless --keep=false is given.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			F, err := cfg.open(args[0])
			if err != nil {
				return fail(cmd, "input", "set", err)
			}
			var value interface{} = strings.Join(args[2:], " ")
			if block, _ := cmd.Flags().GetBool("block"); block {
				value = args[2:]
			}
			return fail(cmd, "process", "set", F.Set(args[1], value, cfg.Keep))
		},
	}
	cmd.Flags().Bool("keep", true, "keep the old value as a comment")
	cmd.Flags().Bool("block", false, "set a block, one line per value")
	return cmd
}

func newIncludesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "includes FILE",
		Short: "List the files included or piped from an fdf file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			F, err := cfg.open(args[0])
			if err != nil {
				return fail(cmd, "input", "includes", err)
			}
			inc, err := F.Includes()
			if err != nil {
				return fail(cmd, "input", "includes", err)
			}
			out := cmd.OutOrStdout()
			if cfg.JSON {
				if inc == nil {
					inc = []string{}
				}
				return json.NewEncoder(out).Encode(inc)
			}
			for _, f := range inc {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}
}

// quantityCmd returns a command that reads q from an fdf file and writes it.
func quantityCmd(q fdf.Quantity, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(q) + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], q, "", nil)
		},
	}
}

func newLatticeCmd() *cobra.Command {
	return quantityCmd(fdf.Lattice, "Print the lattice")
}

func newGeometryCmd() *cobra.Command {
	return quantityCmd(fdf.Geometry, "Print the geometry, as fdf or JSON")
}

func newBasisCmd() *cobra.Command {
	return quantityCmd(fdf.Basis, "Print the species and their basis")
}

// matrixNames maps the names accepted by the matrix command to quantities.
var matrixNames = map[string]fdf.Quantity{
	"h":                     fdf.Hamiltonian,
	"hamiltonian":           fdf.Hamiltonian,
	"dm":                    fdf.DensityMatrix,
	"density_matrix":        fdf.DensityMatrix,
	"edm":                   fdf.EnergyDensityMatrix,
	"energy_density_matrix": fdf.EnergyDensityMatrix,
	"hessian":               fdf.Hessian,
	"dynamical_matrix":      fdf.Hessian,
}

func newMatrixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix FILE QUANTITY",
		Short: "Summarize a sparse matrix (H, DM, EDM or hessian)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, ok := matrixNames[strings.ToLower(args[1])]
			if !ok {
				return fail(cmd, "options", "matrix", siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("unknown matrix %q", args[1]), "", ""))
			}
			f := cmd.Flags()
			return run(cmd, args[0], q, "", func(O *fdf.Options) {
				if v, err := f.GetFloat64("cutoff-fc"); err == nil {
					O.CutoffFC(v)
				}
				if v, err := f.GetFloat64("cutoff-dist"); err == nil {
					O.CutoffDist(v)
				}
				if v, err := f.GetBool("correct-fc"); err == nil {
					O.CorrectFC(v)
				}
				if v, err := f.GetIntSlice("supercell"); err == nil && len(v) == 3 {
					O.Supercell([3]int{v[0], v[1], v[2]})
				}
			})
		},
	}
	O := fdf.DefaultOptions()
	cmd.Flags().Float64("cutoff-fc", O.CutoffFC(), "force constants below this are zero (hessian)")
	cmd.Flags().Float64("cutoff-dist", O.CutoffDist(), "force constants between atoms farther than this, in Angstrom, are zero (hessian)")
	cmd.Flags().Bool("correct-fc", O.CorrectFC(), "correct the force constants of the displaced atoms (hessian)")
	cmd.Flags().IntSlice("supercell", []int{1, 1, 1}, "supercell of the force constant calculation (hessian)")
	return cmd
}

func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid FILE NAME",
		Short: "Summarize a grid quantity (rho, vh, totalpotential...)",
		Long:  "Grid prints the shape, integral and statistics of a grid. NAME is one of: " + strings.Join(fdf.GridNames(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spin, _ := cmd.Flags().GetInt("spin")
			return run(cmd, args[0], fdf.Grid, args[1], func(O *fdf.Options) { O.Spin(spin) })
		},
	}
	cmd.Flags().Int("spin", 0, "spin component, a negative value sums all of them")
	return cmd
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Answer a JSON query read from the standard input",
		Long: `Query reads one line of JSON options from the standard input, with the
fields FDF (the fdf file), Quantity (a quantity or "label"), Labels, Order,
Output and Grid, and writes the result as JSON. It is meant to be used
through a pipe from other programs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			cfg.JSON = true
			opts, jerr := siestajson.DecodeOptions(bufio.NewReader(cmd.InOrStdin()))
			if jerr != nil {
				return fail(cmd, "options", "query", jerr)
			}
			cfg.Output = cfg.Output || opts.Output
			if len(opts.Order) > 0 {
				cfg.Sources = opts.Order
			}
			if opts.Quantity == "label" {
				return newGetCmd().RunE(cmd, append([]string{opts.FDF}, opts.Labels...))
			}
			return run(cmd, opts.FDF, fdf.Quantity(strings.ToLower(opts.Quantity)), opts.Grid, nil)
		},
	}
}

// run reads the quantity q (the grid name for grids) from the fdf file name
// and writes it to the command output.
func run(cmd *cobra.Command, name string, q fdf.Quantity, grid string, modify func(*fdf.Options)) error {
	cfg := getConfig(cmd)
	F, err := cfg.open(name)
	if err != nil {
		return fail(cmd, "input", string(q), err)
	}
	O, err := cfg.options(q)
	if err != nil {
		return fail(cmd, "options", string(q), err)
	}
	if modify != nil {
		modify(O)
	}
	v, err := read(F, q, O, grid)
	if err != nil {
		return fail(cmd, "input", string(q), err)
	}
	if v == nil {
		err := siesta.NewError(siesta.ErrMissing, fmt.Sprintf("no %s found", q), F.FileName(), "")
		return fail(cmd, "input", string(q), err)
	}
	return fail(cmd, "postprocess", string(q), send(cmd.OutOrStdout(), v, cfg.JSON, O))
}

// box returns v as an interface, which is nil if v is nil.
func box[T any](v *T, err error) (interface{}, error) {
	if v == nil {
		return nil, err
	}
	return v, err
}

// read returns the quantity q from F.
func read(F *fdf.File, q fdf.Quantity, O *fdf.Options, grid string) (interface{}, error) {
	switch q {
	case fdf.Lattice:
		return box(F.ReadLattice(O))
	case fdf.LatticeNsc:
		return F.ReadLatticeNsc(O)
	case fdf.Geometry:
		return box(F.ReadGeometry(O))
	case fdf.Basis:
		B, err := F.ReadBasis(O)
		if B == nil {
			return nil, err
		}
		return B, err
	case fdf.Force:
		return box(F.ReadForce(O))
	case fdf.ForceConstant:
		return box(F.ReadForceConstant(O))
	case fdf.Hessian:
		return box(F.ReadHessian(O))
	case fdf.DensityMatrix:
		return box(F.ReadDensityMatrix(O))
	case fdf.EnergyDensityMatrix:
		return box(F.ReadEnergyDensityMatrix(O))
	case fdf.Hamiltonian:
		return box(F.ReadHamiltonian(O))
	case fdf.Grid:
		return box(F.ReadGrid(grid, O))
	}
	return nil, siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("unknown quantity %q", q), F.FileName(), "")
}

// send writes v as fdf text (or a short summary) or as JSON.
func send(out io.Writer, v interface{}, asJSON bool, O *fdf.Options) error {
	enc := json.NewEncoder(out)
	var jerr *siestajson.Error
	switch t := v.(type) {
	case *siesta.Lattice:
		if !asJSON {
			return fdf.WriteLattice(out, t, O)
		}
		jerr = siestajson.SendLattice(t, out)
	case *siesta.Geometry:
		if !asJSON {
			return fdf.WriteGeometry(out, t, O)
		}
		jerr = siestajson.SendGeometry(t, out)
	case []*siesta.Atom:
		if asJSON {
			jerr = siestajson.EncodeAtoms(t, enc)
			break
		}
		for i, a := range t {
			fmt.Fprintf(out, "%3d %4d %-10s %4d orbitals, R max %.4f Ang\n", i+1, a.Z, a.Tag, a.No(), a.MaxR())
		}
	case *siesta.SparseOrbital:
		info := siestajson.MatrixInfo(t)
		if asJSON {
			jerr = info.Send(out)
			break
		}
		fmt.Fprintf(out, "%s: %d atoms, %d orbitals, %d non-zero elements, %d spin components, nsc %v\n", info.Quantity, info.Na, info.No, info.NNZ, info.Spin, info.Nsc)
		if t.Ef != 0 {
			fmt.Fprintf(out, "Fermi level: %.6f eV\n", t.Ef)
		}
	case *siesta.Grid:
		min, max, mean, std := t.Stats()
		info := &siestajson.Info{Quantity: "grid", IntInfo: [][]int{t.Shape[:]}, FloatInfo: [][]float64{{t.Integrate()}, {min, max, mean, std}}}
		if t.Geometry != nil {
			info.Na, info.No, info.Nsc = t.Geometry.Na(), t.Geometry.No(), t.Geometry.Lattice.Nsc
		}
		if asJSON {
			jerr = info.Send(out)
			break
		}
		fmt.Fprintf(out, "grid %v, integral %g\n", t.Shape, t.Integrate())
		fmt.Fprintf(out, "min %g, max %g, mean %g, standard deviation %g\n", min, max, mean, std)
	case *siesta.ForceConstant:
		info := &siestajson.Info{Quantity: string(fdf.ForceConstant), Na: t.Na, IntInfo: [][]int{{t.Ndispl}}}
		if asJSON {
			jerr = info.Send(out)
			break
		}
		fmt.Fprintf(out, "force constants: %d displaced atoms, %d atoms\n", t.Ndispl, t.Na)
	case *v3.Matrix:
		if asJSON {
			jerr = siestajson.EncodeCoords(t, enc)
			break
		}
		for i := 0; i < t.NVecs(); i++ {
			r := t.RawRowView(i)
			fmt.Fprintf(out, "%5d "+O.Format()+" "+O.Format()+" "+O.Format()+"\n", i+1, r[0], r[1], r[2])
		}
	case [3]int:
		if asJSON {
			return enc.Encode(t)
		}
		fmt.Fprintln(out, t[0], t[1], t[2])
	default:
		return fmt.Errorf("can't write a %T", v)
	}
	if jerr != nil {
		return jerr
	}
	return nil
}
