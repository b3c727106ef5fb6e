/*
 * tshs.go, part of gosiesta.
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
	v3 "github.com/rmera/gosiesta/v3"
)

// tshs is the content of a TSHS file, before the supercell columns are folded.
type tshs struct {
	geom   *siesta.Geometry
	nspin  int
	onlyS  bool
	gamma  bool
	ef     float64
	p      *pattern
	s      [][]float64
	h      [][][]float64 //spin, row, column
	iscOff [][3]int
}

// readTSHSHeader reads the header of a TSHS file, up to and including lasto, into T.
// The species of the geometry are placeholders with the right number of orbitals.
func readTSHSHeader(R *fortran.Reader, T *tshs) (no, nos int, err error) {
	rec, err := R.Next()
	if err != nil {
		return 0, 0, err
	}
	if rec.Len() != 4 {
		return 0, 0, siesta.NewError(siesta.ErrUnsupported, "only version 1 TSHS files can be read", R.FileName(), "")
	}
	if v, _ := rec.Int(); v != 1 {
		return 0, 0, siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("TSHS version %d can't be read", v), R.FileName(), "")
	}
	rec, err = R.Next()
	if err != nil {
		return 0, 0, err
	}
	sizes, err := rec.Ints(5)
	if err != nil {
		return 0, 0, err
	}
	na, no, nos := sizes[0], sizes[1], sizes[2]
	T.nspin = sizes[3]
	rec, err = R.Next()
	if err != nil {
		return 0, 0, err
	}
	nsc, err := rec.Ints(3)
	if err != nil {
		return 0, 0, err
	}
	rec, err = R.Next()
	if err != nil {
		return 0, 0, err
	}
	cx, err := rec.Float64s(9 + 3*na)
	if err != nil {
		return 0, 0, err
	}
	for i := range cx {
		cx[i] *= unit.BohrToAng
	}
	cell, _ := v3.NewMatrix(cx[:9])
	coords, _ := v3.NewMatrix(cx[9:])
	L := siesta.NewLattice(cell, nsc...)
	rec, err = R.Next()
	if err != nil {
		return 0, 0, err
	}
	if T.gamma, err = rec.Bool(); err != nil {
		return 0, 0, err
	}
	rec.Bool() //TSGamma is not used
	if T.onlyS, err = rec.Bool(); err != nil {
		return 0, 0, err
	}
	if err := R.Skip(1); err != nil { //k-point sampling
		return 0, 0, err
	}
	rec, err = R.Next()
	if err != nil {
		return 0, 0, err
	}
	if T.ef, err = rec.Float64(); err != nil {
		return 0, 0, err
	}
	T.ef *= unit.RyToEV
	if err := R.Skip(1); err != nil { //istep, ia1
		return 0, 0, err
	}
	rec, err = R.Next()
	if err != nil {
		return 0, 0, err
	}
	lasto, err := rec.Ints(na + 1)
	if err != nil {
		return 0, 0, err
	}
	if lasto[na] != no {
		return 0, 0, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("lasto gives %d orbitals, header %d", lasto[na], no), R.FileName(), "")
	}
	species := make(map[int]*siesta.Atom)
	atoms := make([]*siesta.Atom, na)
	for i := 0; i < na; i++ {
		n := lasto[i+1] - lasto[i]
		if _, ok := species[n]; !ok {
			orbs := make([]siesta.Orbital, n)
			for j := range orbs {
				orbs[j].R = -1
			}
			species[n] = siesta.NewAtom(1, "", orbs...)
		}
		atoms[i] = species[n]
	}
	T.geom, err = siesta.NewGeometry(coords, atoms, L)
	return no, nos, err
}

func readTSHS(R *fortran.Reader) (*tshs, error) {
	T := new(tshs)
	no, nos, err := readTSHSHeader(R, T)
	if err != nil {
		return nil, err
	}
	if T.p, err = readPattern(R, no); err != nil {
		return nil, err
	}
	rows := func() ([][]float64, error) {
		ret := make([][]float64, no)
		for io := range ret {
			rec, err := R.Next()
			if err != nil {
				return nil, err
			}
			if ret[io], err = rec.Float64s(len(T.p.cols[io])); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	if T.s, err = rows(); err != nil {
		return nil, err
	}
	if !T.onlyS {
		T.h = make([][][]float64, T.nspin)
		for s := range T.h {
			if T.h[s], err = rows(); err != nil {
				return nil, err
			}
		}
	}
	nimg := T.geom.Lattice.NImages()
	if nimg*no != nos {
		return nil, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("nsc %v does not match %d supercell orbitals", T.geom.Lattice.Nsc, nos), R.FileName(), "")
	}
	T.iscOff = make([][3]int, nimg)
	if !T.gamma {
		rec, err := R.Next()
		if err != nil {
			return nil, err
		}
		off, err := rec.Ints(3 * nimg)
		if err != nil {
			return nil, err
		}
		for i := range T.iscOff {
			copy(T.iscOff[i][:], off[3*i:3*i+3])
		}
	}
	return T, nil
}

// ReadGeometryTSHS reads the geometry in a version 1 .TSHS file. The species have
// the right number of orbitals but no atomic information.
func ReadGeometryTSHS(name string) (*siesta.Geometry, error) {
	R, err := fortran.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "binaries.ReadGeometryTSHS")
	}
	defer R.Close()
	T := new(tshs)
	if _, _, err := readTSHSHeader(R, T); err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadGeometryTSHS")
	}
	return T.geom, nil
}

// ReadHamiltonianTSHS reads the Hamiltonian (eV) and overlap from a version 1 .TSHS file.
// The geometry in the file is attached to the matrix, and the Fermi level stored in Ef.
func ReadHamiltonianTSHS(name string) (*siesta.SparseOrbital, error) {
	R, err := fortran.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "binaries.ReadHamiltonianTSHS")
	}
	defer R.Close()
	T, err := readTSHS(R)
	if err != nil {
		return nil, siesta.Decorate(eof(err, name), "binaries.ReadHamiltonianTSHS")
	}
	no := T.p.no
	S := siesta.NewSparseOrbital(T.geom, siesta.Hamiltonian, T.nspin, false)
	S.Ef = T.ef
	for io, cols := range T.p.cols {
		for i, jo := range cols {
			if jo < 0 || jo >= no*len(T.iscOff) {
				return nil, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("column %d outside of the supercell", jo+1), name, "")
			}
			e := siesta.Element{Row: io, Col: jo % no, Isc: T.iscOff[jo/no]}
			if T.h != nil {
				for s := 0; s < T.nspin; s++ {
					S.Set(e, s, T.h[s][io][i]*unit.RyToEV)
				}
			}
			S.Set(e, T.nspin, T.s[io][i])
		}
	}
	return S, nil
}
