/*
 * hsx.go, part of gosiesta.
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

package binaries

import (
	"fmt"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/fortran"
	"github.com/rmera/gosiesta/unit"
)

// ReadHamiltonianHSX reads the Hamiltonian (eV) and overlap from a legacy .HSX file, written
// in single precision. The file has no lattice information, so the lattice
// and nsc of geom are used to assign periodic images to the supercell
// columns. If the nsc of geom does not match the size of the supercell, all images are
// laid along the first lattice vector and a warning is issued.
func ReadHamiltonianHSX(name string, geom *siesta.Geometry) (*siesta.SparseOrbital, error) {
	R, err := fortran.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "binaries.ReadHamiltonianHSX")
	}
	defer R.Close()
	S, err := readHSX(R, geom)
	return S, siesta.Decorate(eof(err, name), "binaries.ReadHamiltonianHSX")
}

func readHSX(R *fortran.Reader, geom *siesta.Geometry) (*siesta.SparseOrbital, error) {
	rec, err := R.Next()
	if err != nil {
		return nil, err
	}
	head, err := rec.Ints(4)
	if err != nil {
		return nil, err
	}
	no, nos, nspin := head[0], head[1], head[2]
	if no <= 0 || nos < no || nos%no != 0 {
		return nil, siesta.NewError(siesta.ErrParse, fmt.Sprintf("wrong orbital counts %d %d", no, nos), R.FileName(), "")
	}
	rec, err = R.Next()
	if err != nil {
		return nil, err
	}
	gamma, err := rec.Bool()
	if err != nil {
		return nil, err
	}
	indxuo := make([]int, nos)
	for i := range indxuo {
		indxuo[i] = i%no + 1
	}
	if !gamma {
		rec, err = R.Next()
		if err != nil {
			return nil, err
		}
		if indxuo, err = rec.Ints(nos); err != nil {
			return nil, err
		}
	}
	p, err := readPattern(R, no)
	if err != nil {
		return nil, err
	}
	nsc := nscOf(geom)
	if nsc[0]*nsc[1]*nsc[2]*no != nos {
		siesta.Logger().Warnf("nsc %v does not match the %d supercell orbitals in %s, images will be assigned along the first lattice vector", nsc, nos, R.FileName())
		nsc = [3]int{nos / no, 1, 1}
	}
	G := attach(geom, no, nsc)
	fold := func(jo int) (siesta.Element, error) {
		if jo < 0 || jo >= nos {
			return siesta.Element{}, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("column %d outside of the supercell", jo+1), R.FileName(), "")
		}
		return siesta.Element{Col: indxuo[jo] - 1, Isc: G.Lattice.Image(jo / no)}, nil
	}
	S := siesta.NewSparseOrbital(G, siesta.Hamiltonian, nspin, false)
	for s := 0; s < nspin; s++ {
		if err := readValues(R, p, S, s, unit.RyToEV, true, fold); err != nil {
			return nil, err
		}
	}
	if err := readValues(R, p, S, nspin, 1, true, fold); err != nil {
		return nil, err
	}
	return S, nil
}
