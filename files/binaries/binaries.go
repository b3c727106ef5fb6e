/*
 * binaries.go, part of gosiesta.
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

// Package binaries reads the SIESTA binary sparse-matrix files: the density
// matrix (.DM), the TranSIESTA density and energy density matrices (.TSDE),
// and the Hamiltonian and overlap (.HSX, .TSHS). All of them are Fortran
// sequential unformatted files.
package binaries

import (
	"fmt"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/fortran"
	v3 "github.com/rmera/gosiesta/v3"
)

// pattern is the sparsity pattern of a matrix: for each row, the columns in supercell
// orbital indexes (0-based).
type pattern struct {
	no   int
	cols [][]int
}

func (p *pattern) nnz() int {
	n := 0
	for _, c := range p.cols {
		n += len(c)
	}
	return n
}

// readPattern reads a record with the number of elements per row, then one record per row with its columns (1-based).
func readPattern(R *fortran.Reader, no int) (*pattern, error) {
	rec, err := R.Next()
	if err != nil {
		return nil, err
	}
	ncol, err := rec.Ints(no)
	if err != nil {
		return nil, err
	}
	p := &pattern{no: no, cols: make([][]int, no)}
	for io := 0; io < no; io++ {
		rec, err := R.Next()
		if err != nil {
			return nil, err
		}
		cols, err := rec.Ints(ncol[io])
		if err != nil {
			return nil, err
		}
		for i := range cols {
			cols[i]--
		}
		p.cols[io] = cols
	}
	return p, nil
}

// readValues reads one record per row with the values of the pattern, in double or single
// precision, and puts them, times factor, in the dim component of S.
func readValues(R *fortran.Reader, p *pattern, S *siesta.SparseOrbital, dim int, factor float64, single bool, image func(jo int) (siesta.Element, error)) error {
	for io := 0; io < p.no; io++ {
		rec, err := R.Next()
		if err != nil {
			return err
		}
		var vals []float64
		if single {
			vals, err = rec.Float32s(len(p.cols[io]))
		} else {
			vals, err = rec.Float64s(len(p.cols[io]))
		}
		if err != nil {
			return err
		}
		for i, jo := range p.cols[io] {
			e, err := image(jo)
			if err != nil {
				return err
			}
			e.Row = io
			S.Set(e, dim, vals[i]*factor)
		}
	}
	return nil
}

// imageFolder returns a function that maps a supercell column to the unit cell column and
// periodic image, using the lattice ordering of images.
func imageFolder(L *siesta.Lattice, no int, filename string) func(jo int) (siesta.Element, error) {
	nimg := L.NImages()
	return func(jo int) (siesta.Element, error) {
		if jo < 0 || jo >= no*nimg {
			return siesta.Element{}, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("column %d outside of the supercell (nsc %v)", jo+1, L.Nsc), filename, "")
		}
		return siesta.Element{Col: jo % no, Isc: L.Image(jo / no)}, nil
	}
}

// attach returns a copy of geom with the given nsc if geom has no orbitals. Otherwise it
// returns a placeholder geometry with one single-orbital atom per orbital, in geom's
// lattice (or a unit cubic one).
func attach(geom *siesta.Geometry, no int, nsc [3]int) *siesta.Geometry {
	if geom != nil && geom.No() == no {
		G := geom.Copy()
		G.Lattice.Nsc = nsc
		return G
	}
	var L *siesta.Lattice
	if geom != nil {
		L = geom.Lattice.Copy()
	} else {
		cell, _ := v3.NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
		L = siesta.NewLattice(cell)
	}
	L.Nsc = nsc
	atoms := make([]*siesta.Atom, no)
	a := siesta.NewAtom(1, "")
	for i := range atoms {
		atoms[i] = a
	}
	G, _ := siesta.NewGeometry(v3.Zeros(no), atoms, L)
	return G
}

// nscOf returns the nsc of geom's lattice, or [1 1 1] for a nil geom.
func nscOf(geom *siesta.Geometry) [3]int {
	if geom == nil {
		return [3]int{1, 1, 1}
	}
	return geom.Lattice.Nsc
}
