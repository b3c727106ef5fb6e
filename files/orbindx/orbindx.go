/*
 * orbindx.go, part of gosiesta.
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

// Package orbindx reads the SIESTA .ORB_INDX files, which list every orbital in
// the supercell with its atom, species, quantum numbers, cutoff and image.
package orbindx

import (
	"io"
	"strconv"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/internal/text"
	"github.com/rmera/gosiesta/unit"
)

// one line of the file
type orbital struct {
	io, ia, is int
	spec       string
	n, l, m, z int
	pol        bool
	sym        string
	rc         float64
	isc        [3]int
}

// read returns the number of orbitals in the unit cell and the list of all the orbitals.
func read(name string) (int, []orbital, error) {
	S, err := text.Open(name)
	if err != nil {
		return 0, nil, err
	}
	defer S.Close()
	f, err := S.MustFields(2)
	if err != nil {
		return 0, nil, err
	}
	nos, err := S.Ints(f[:2])
	if err != nil {
		return 0, nil, err
	}
	orbs := make([]orbital, 0, nos[1])
	for len(orbs) < nos[1] {
		f, err := S.Fields()
		if err == io.EOF {
			return 0, nil, S.Errorf("expected %d orbitals, found %d", nos[1], len(orbs))
		}
		if err != nil {
			return 0, nil, err
		}
		if _, err := strconv.Atoi(f[0]); err != nil {
			continue //column titles
		}
		if len(f) < 15 {
			return 0, nil, S.Errorf("expected 16 columns, got %d", len(f))
		}
		ints, err := S.Ints(append(append([]string{}, f[0:3]...), f[4:9]...))
		if err != nil {
			return 0, nil, err
		}
		rc, err := S.Floats(f[11:12])
		if err != nil {
			return 0, nil, err
		}
		isc, err := S.Ints(f[12:15])
		if err != nil {
			return 0, nil, err
		}
		o := orbital{io: ints[0], ia: ints[1], is: ints[2], spec: f[3], n: ints[4], l: ints[5], m: ints[6], z: ints[7],
			pol: f[9] == "T", sym: f[10], rc: rc[0] * unit.BohrToAng}
		copy(o.isc[:], isc)
		orbs = append(orbs, o)
	}
	return nos[0], orbs, nil
}

// ReadLatticeNsc returns the number of periodic images along each lattice vector,
// 2*max(|isc|)+1.
func ReadLatticeNsc(name string) ([3]int, error) {
	nsc := [3]int{1, 1, 1}
	_, orbs, err := read(name)
	if err != nil {
		return nsc, siesta.Decorate(err, "orbindx.ReadLatticeNsc")
	}
	var m [3]int
	for _, o := range orbs {
		for i, v := range o.isc {
			if v < 0 {
				v = -v
			}
			if v > m[i] {
				m[i] = v
			}
		}
	}
	for i := range nsc {
		nsc[i] = 2*m[i] + 1
	}
	return nsc, nil
}

// ReadBasis returns the species in the file, ordered by species index.
// The atomic numbers are guessed from the species labels.
func ReadBasis(name string) ([]*siesta.Atom, error) {
	no, orbs, err := read(name)
	if err != nil {
		return nil, siesta.Decorate(err, "orbindx.ReadBasis")
	}
	var species []*siesta.Atom
	first := make(map[int]int) //first atom of each species
	for _, o := range orbs[:no] {
		is := o.is - 1
		for len(species) <= is {
			species = append(species, nil)
		}
		if species[is] == nil {
			Z := siesta.ZFromLabel(o.spec)
			species[is] = &siesta.Atom{Z: Z, Tag: o.spec, Mass: siesta.Mass(Z)}
			first[is] = o.ia
		}
		if first[is] != o.ia {
			continue
		}
		species[is].Orbitals = append(species[is].Orbitals, siesta.Orbital{R: o.rc, Tag: o.sym, N: o.n, L: o.l, M: o.m, Zeta: o.z, Pol: o.pol})
	}
	for i, s := range species {
		if s == nil {
			return nil, siesta.NewError(siesta.ErrInconsistent, "species "+strconv.Itoa(i+1)+" has no orbitals", name, "")
		}
	}
	siesta.Logger().Infof("basis read from %s has no radial functions", name)
	return species, nil
}
