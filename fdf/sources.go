/*
 * sources.go, part of gosiesta.
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

package fdf

import (
	"fmt"
	"strings"

	siesta "github.com/rmera/gosiesta"
)

// Source identifies a file a quantity can be read from.
type Source int

const (
	FDF     Source = iota //the fdf file itself
	XV                    //<label>.XV
	NC                    //<label>.nc
	GridNC                //<Name>.grid.nc
	TSHS                  //<label>.TSHS
	HSX                   //<label>.HSX
	TSDE                  //<label>.TSDE
	DM                    //<label>.DM
	FA                    //<label>.FA
	FAC                   //<label>.FAC
	FC                    //<label>.FC
	OrbIndx               //<label>.ORB_INDX
	Ion                   //<species>.ion.nc or <species>.ion.xml
	nSources
)

var sourceNames = [nSources]string{"fdf", "XV", "nc", "grid.nc", "TSHS", "HSX", "TSDE", "DM", "FA", "FAC", "FC", "ORB_INDX", "ion"}

func (s Source) String() string {
	if s < 0 || s >= nSources {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceNames[s]
}

// Suffix returns the extension added to the system label to get the
// companion file for s. FDF, GridNC and Ion files are not named after the
// system label, so they have no suffix.
func (s Source) Suffix() string {
	switch s {
	case FDF, GridNC, Ion:
		return ""
	}
	return "." + s.String()
}

// ParseSource returns the source with the given name, case-insensitively
// (e.g. "xv", "ORB_INDX", "grid.nc").
func ParseSource(name string) (Source, error) {
	for i, n := range sourceNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Source(i), nil
		}
	}
	return FDF, siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("unknown source %q", name), "", "")
}

// ParseSources parses a list of source names.
func ParseSources(names []string) ([]Source, error) {
	ret := make([]Source, 0, len(names))
	for _, n := range names {
		s, err := ParseSource(n)
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// Quantity is something that can be read from an fdf file or its companions.
type Quantity string

const (
	Lattice             Quantity = "lattice"
	LatticeNsc          Quantity = "nsc"
	Geometry            Quantity = "geometry"
	Basis               Quantity = "basis"
	Force               Quantity = "force"
	ForceConstant       Quantity = "force_constant"
	Hessian             Quantity = "hessian"
	DensityMatrix       Quantity = "density_matrix"
	EnergyDensityMatrix Quantity = "energy_density_matrix"
	Hamiltonian         Quantity = "hamiltonian"
	Grid                Quantity = "grid"
)

// Quantities returns all the quantities that can be read.
func Quantities() []Quantity {
	return []Quantity{Lattice, LatticeNsc, Geometry, Basis, Force, ForceConstant, Hessian, DensityMatrix, EnergyDensityMatrix, Hamiltonian, Grid}
}

// DefaultOrder returns the sources tried, in order, to read q. output only
// matters for the lattice and the geometry, which are read from the fdf file
// alone unless output is true.
func DefaultOrder(q Quantity, output bool) []Source {
	switch q {
	case Lattice, Geometry:
		if output {
			return []Source{XV, NC, FDF}
		}
		return []Source{FDF}
	case LatticeNsc:
		return []Source{NC, OrbIndx}
	case Basis:
		return []Source{NC, Ion, OrbIndx, FDF}
	case Force:
		return []Source{FA, NC}
	case ForceConstant, Hessian:
		return []Source{FC}
	case DensityMatrix:
		return []Source{NC, TSDE, DM}
	case EnergyDensityMatrix:
		return []Source{NC, TSDE}
	case Hamiltonian:
		return []Source{NC, TSHS, HSX}
	case Grid:
		return []Source{NC, GridNC}
	}
	return nil
}

// Sources returns every source from which q can be read.
func Sources(q Quantity) []Source {
	var ret []Source
	for s := Source(0); s < nSources; s++ {
		if hasReader(q, s) {
			ret = append(ret, s)
		}
	}
	return ret
}

// reader reads a quantity from one source. ok is false if the source file
// does not exist.
type reader[T any] func(F *File, O *Options) (v T, ok bool, err error)

// resolve tries the sources in order and returns the first quantity found.
// If none is found, ok is false.
func resolve[T any](F *File, q Quantity, readers map[Source]reader[T], O *Options) (v T, ok bool, err error) {
	order := O.order
	if len(order) == 0 {
		order = DefaultOrder(q, O.output)
	}
	for _, s := range order {
		r, has := readers[s]
		if !has {
			return v, false, siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("%s can't be read from %s files", q, s), F.filename, "")
		}
		v, ok, err = r(F, O)
		if err != nil || ok {
			return v, ok, err
		}
	}
	return v, false, nil
}

// companion returns the name of the companion file with the suffix of s,
// and whether it exists.
func (F *File) companion(s Source) (string, bool, error) {
	label, err := F.GetString("SystemLabel", "siesta")
	if err != nil {
		return "", false, err
	}
	name := F.path(label + s.Suffix())
	return name, isFile(name), nil
}
