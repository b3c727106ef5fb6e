/*
 * dm.go, part of gosiesta.
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
	"io"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/fortran"
	"github.com/rmera/gosiesta/unit"
)

// dmReader holds the state after reading the density matrix part of a DM/TSDE file.
type dmReader struct {
	R     *fortran.Reader
	p     *pattern
	nspin int
	geom  *siesta.Geometry
	fold  func(int) (siesta.Element, error)
}

// readHeader reads the size and sparsity pattern. Files from older SIESTA versions lack the nsc,
// then the nsc of geom (if any) is used.
func readHeader(R *fortran.Reader, geom *siesta.Geometry) (*dmReader, error) {
	rec, err := R.Next()
	if err != nil {
		return nil, err
	}
	head, err := rec.Ints(-1)
	if err != nil {
		return nil, err
	}
	if len(head) < 2 {
		return nil, siesta.NewError(siesta.ErrParse, "header record too short", R.FileName(), "")
	}
	no, nspin := head[0], head[1]
	nsc := nscOf(geom)
	if len(head) >= 5 {
		copy(nsc[:], head[2:5])
	}
	p, err := readPattern(R, no)
	if err != nil {
		return nil, err
	}
	G := attach(geom, no, nsc)
	return &dmReader{R: R, p: p, nspin: nspin, geom: G, fold: imageFolder(G.Lattice, no, R.FileName())}, nil
}

func (D *dmReader) matrix(kind siesta.MatrixKind, factor float64) (*siesta.SparseOrbital, error) {
	S := siesta.NewSparseOrbital(D.geom, kind, D.nspin, true)
	for s := 0; s < D.nspin; s++ {
		if err := readValues(D.R, D.p, S, s, factor, false, D.fold); err != nil {
			return nil, err
		}
	}
	return S, nil
}

// ReadDensityMatrix reads the density matrix from a .DM or .TSDE file.
// If geom has as many orbitals as the matrix, it is attached to the result; otherwise a
// placeholder geometry with one atom per orbital is used, which can be
// reconciled later. The lattice (and, for old files, the nsc) of geom is used when given.
func ReadDensityMatrix(name string, geom *siesta.Geometry) (*siesta.SparseOrbital, error) {
	R, err := fortran.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "binaries.ReadDensityMatrix")
	}
	defer R.Close()
	D, err := readHeader(R, geom)
	if err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadDensityMatrix")
	}
	S, err := D.matrix(siesta.DensityMatrix, 1)
	return S, siesta.Decorate(eof(err, name), "binaries.ReadDensityMatrix")
}

// ReadEnergyDensityMatrix reads the energy density matrix, in eV, from a .TSDE file.
// The Fermi level in the file is stored in the Ef field of the result.
func ReadEnergyDensityMatrix(name string, geom *siesta.Geometry) (*siesta.SparseOrbital, error) {
	R, err := fortran.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "binaries.ReadEnergyDensityMatrix")
	}
	defer R.Close()
	D, err := readHeader(R, geom)
	if err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadEnergyDensityMatrix")
	}
	if err := R.Skip(D.nspin * D.p.no); err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadEnergyDensityMatrix")
	}
	S, err := D.matrix(siesta.EnergyDensityMatrix, unit.RyToEV)
	if err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadEnergyDensityMatrix")
	}
	rec, err := R.Next()
	if err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadEnergyDensityMatrix")
	}
	ef, err := rec.Float64()
	if err != nil {
		return nil, siesta.Decorate(err, "binaries.ReadEnergyDensityMatrix")
	}
	S.Ef = ef * unit.RyToEV
	return S, nil
}

// eof turns an unexpected end of file into a parse error.
func eof(err error, name string) error {
	if err == io.EOF {
		return siesta.NewError(siesta.ErrParse, "unexpected end of file", name, "")
	}
	return err
}
