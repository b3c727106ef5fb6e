/*
 * xv.go, part of gosiesta.
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

// Package xv reads the SIESTA .XV files, which contain the lattice, the
// coordinates and the velocities of the last geometry of a run, in Bohr.
package xv

import (
	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/internal/text"
	"github.com/rmera/gosiesta/unit"
	v3 "github.com/rmera/gosiesta/v3"
)

func readLattice(S *text.Scanner) (*siesta.Lattice, error) {
	cell := v3.Zeros(3)
	for i := 0; i < 3; i++ {
		f, err := S.MustFields(3)
		if err != nil {
			return nil, err
		}
		v, err := S.Floats(f[:3])
		if err != nil {
			return nil, err
		}
		for j := range v {
			cell.Set(i, j, v[j]*unit.BohrToAng)
		}
	}
	return siesta.NewLattice(cell), nil
}

// ReadLattice reads the lattice from the XV file name. The returned lattice has nsc [1 1 1].
func ReadLattice(name string) (*siesta.Lattice, error) {
	S, err := text.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "xv.ReadLattice")
	}
	defer S.Close()
	L, err := readLattice(S)
	return L, siesta.Decorate(err, "xv.ReadLattice")
}

// ReadGeometry reads the geometry in the XV file name. If species is not nil, the
// species index of each atom is used to assign its basis. Otherwise, or if the
// index is out of range, a basis-less atom is built from the atomic number.
// It also returns the velocities, in Angstrom/fs.
func ReadGeometry(name string, species []*siesta.Atom) (*siesta.Geometry, *v3.Matrix, error) {
	S, err := text.Open(name)
	if err != nil {
		return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
	}
	defer S.Close()
	L, err := readLattice(S)
	if err != nil {
		return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
	}
	f, err := S.MustFields(1)
	if err != nil {
		return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
	}
	n, err := S.Ints(f[:1])
	if err != nil {
		return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
	}
	na := n[0]
	coords := v3.Zeros(na)
	vel := v3.Zeros(na)
	atoms := make([]*siesta.Atom, na)
	built := make(map[int]*siesta.Atom)
	//Bohr/(atomic unit of time) to Ang/fs
	vfac := unit.BohrToAng / 0.02418884326585747
	for i := 0; i < na; i++ {
		f, err := S.MustFields(8)
		if err != nil {
			return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
		}
		isz, err := S.Ints(f[:2])
		if err != nil {
			return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
		}
		v, err := S.Floats(f[2:8])
		if err != nil {
			return nil, nil, siesta.Decorate(err, "xv.ReadGeometry")
		}
		for j := 0; j < 3; j++ {
			coords.Set(i, j, v[j]*unit.BohrToAng)
			vel.Set(i, j, v[j+3]*vfac)
		}
		is := isz[0] - 1
		switch {
		case is >= 0 && is < len(species):
			atoms[i] = species[is]
		case built[is] != nil:
			atoms[i] = built[is]
		default:
			atoms[i] = siesta.NewAtom(isz[1], "")
			built[is] = atoms[i]
		}
	}
	G, err := siesta.NewGeometry(coords, atoms, L)
	if err != nil {
		return nil, nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrInconsistent, name), "xv.ReadGeometry")
	}
	return G, vel, nil
}
