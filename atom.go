/*
 * atom.go, part of gosiesta.
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

package siesta

import (
	"fmt"
	"math"
)

// Orbital is a localized basis orbital. R is the cutoff radius in Angstrom,
// a negative R means the radial extent is unknown.
type Orbital struct {
	R    float64
	Tag  string
	N    int
	L    int
	M    int
	Zeta int
	Pol  bool
	Q0   float64 //initial charge
}

// Atom is a species: the basis definition shared by all the sites of that species
// in a Geometry.
type Atom struct {
	Z        int //negative for ghost atoms
	Tag      string
	Mass     float64 //amu
	Orbitals []Orbital
}

// NewAtom returns an atom with atomic number Z, the standard mass for Z, and the given
// tag (the chemical symbol if tag is empty). An atom with no orbitals gets a
// single orbital of unknown range, so every site counts for at least one orbital.
func NewAtom(Z int, tag string, orbitals ...Orbital) *Atom {
	if tag == "" {
		tag = Symbol(Z)
	}
	if len(orbitals) == 0 {
		orbitals = []Orbital{{R: -1}}
	}
	return &Atom{Z: Z, Tag: tag, Mass: Mass(Z), Orbitals: orbitals}
}

// No returns the number of orbitals of the atom.
func (A *Atom) No() int {
	return len(A.Orbitals)
}

// MaxR returns the largest orbital cutoff radius, or -1 if none is known.
func (A *Atom) MaxR() float64 {
	r := -1.0
	for _, o := range A.Orbitals {
		r = math.Max(r, o.R)
	}
	return r
}

func (A *Atom) Symbol() string {
	return Symbol(A.Z)
}

// Copy returns a deep copy of the atom.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	ret.Orbitals = append([]Orbital(nil), A.Orbitals...)
	return &ret
}

// Equal returns true if both atoms have the same atomic number, tag, mass and orbitals.
func (A *Atom) Equal(B *Atom) bool {
	if A == B {
		return true
	}
	if A == nil || B == nil {
		return false
	}
	if A.Z != B.Z || A.Tag != B.Tag || A.Mass != B.Mass || len(A.Orbitals) != len(B.Orbitals) {
		return false
	}
	for i, o := range A.Orbitals {
		if o != B.Orbitals[i] {
			return false
		}
	}
	return true
}

func (A *Atom) String() string {
	return fmt.Sprintf("%s{Z: %d, mass: %.4f, orbitals: %d}", A.Tag, A.Z, A.Mass, A.No())
}

var mtags = [][]string{
	{"s"},
	{"py", "pz", "px"},
	{"dxy", "dyz", "dz2", "dxz", "dx2-y2"},
}

// ShellOrbitals returns the 2l+1 orbitals of an nl shell, ordered by m from -l to l.
// The shell population q0 is shared equally among them.
func ShellOrbitals(n, l, zeta int, pol bool, R, q0 float64) []Orbital {
	ret := make([]Orbital, 2*l+1)
	for i := range ret {
		m := i - l
		var tag string
		if l < len(mtags) {
			tag = fmt.Sprintf("%d%sZ%d", n, mtags[l][i], zeta)
		} else {
			tag = fmt.Sprintf("%d%c%dZ%d", n, "spdfghi"[l%7], m, zeta)
		}
		if pol {
			tag += "P"
		}
		ret[i] = Orbital{R: R, Tag: tag, N: n, L: l, M: m, Zeta: zeta, Pol: pol, Q0: q0 / float64(2*l+1)}
	}
	return ret
}
