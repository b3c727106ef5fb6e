/*
 * geometry.go, part of gosiesta.
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
	"sort"

	v3 "github.com/rmera/gosiesta/v3"
)

// Geometry is a set of atomic sites in a periodic lattice.
// Atoms holds one species entry per site, sites of the same species share the
// same *Atom. Coordinates are in Angstrom.
type Geometry struct {
	Coords  *v3.Matrix
	Atoms   []*Atom
	Lattice *Lattice
	//Names maps a name to a list of atom indexes, e.g. "CONSTRAIN-x" for atoms
	//fixed along x.
	Names map[string][]int
}

// NewGeometry returns a geometry with the given coordinates, species per site and lattice.
// It checks that there is one atom per coordinate.
func NewGeometry(coords *v3.Matrix, atoms []*Atom, lattice *Lattice) (*Geometry, error) {
	if coords.NVecs() != len(atoms) {
		return nil, NewError(ErrInconsistent, fmt.Sprintf("%d coordinates but %d atoms", coords.NVecs(), len(atoms)), "", "")
	}
	if lattice == nil {
		return nil, NewError(ErrMissing, "geometry without a lattice", "", "")
	}
	return &Geometry{Coords: coords, Atoms: atoms, Lattice: lattice, Names: make(map[string][]int)}, nil
}

// Na returns the number of atoms.
func (G *Geometry) Na() int {
	return len(G.Atoms)
}

// Len returns the number of atoms. It is there so Geometry works as an Atomer.
func (G *Geometry) Len() int {
	return len(G.Atoms)
}

// Atom returns the species of the site i.
func (G *Geometry) Atom(i int) *Atom {
	return G.Atoms[i]
}

// No returns the total number of orbitals.
func (G *Geometry) No() int {
	n := 0
	for _, a := range G.Atoms {
		n += a.No()
	}
	return n
}

// Firsto returns the index of the first orbital of each atom. The slice has
// Na()+1 elements, the last one being No().
func (G *Geometry) Firsto() []int {
	ret := make([]int, len(G.Atoms)+1)
	for i, a := range G.Atoms {
		ret[i+1] = ret[i] + a.No()
	}
	return ret
}

// OrbitalAtom returns the index of the atom to which orbital io belongs, or -1 if out of range.
func (G *Geometry) OrbitalAtom(io int) int {
	first := G.Firsto()
	if io < 0 || io >= first[len(first)-1] {
		return -1
	}
	return sort.SearchInts(first, io+1) - 1
}

// Masses returns the mass of each atom, in amu.
func (G *Geometry) Masses() ([]float64, error) {
	ret := make([]float64, len(G.Atoms))
	for i, a := range G.Atoms {
		ret[i] = a.Mass
	}
	return ret, nil
}

// Species returns the unique species in order of first appearance, and the
// species index of each site.
func (G *Geometry) Species() ([]*Atom, []int) {
	uniq := make([]*Atom, 0, 4)
	idx := make([]int, len(G.Atoms))
	for i, a := range G.Atoms {
		idx[i] = -1
		for j, u := range uniq {
			if u == a || u.Equal(a) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			uniq = append(uniq, a)
			idx[i] = len(uniq) - 1
		}
	}
	return uniq, idx
}

// ReplaceSpecies puts repl in every site where old (compared by pointer) is.
func (G *Geometry) ReplaceSpecies(old, repl *Atom) {
	for i, a := range G.Atoms {
		if a == old {
			G.Atoms[i] = repl
		}
	}
}

// Copy returns a deep copy of the geometry. Species shared among sites are
// still shared in the copy.
func (G *Geometry) Copy() *Geometry {
	copies := make(map[*Atom]*Atom)
	atoms := make([]*Atom, len(G.Atoms))
	for i, a := range G.Atoms {
		c, ok := copies[a]
		if !ok {
			c = a.Copy()
			copies[a] = c
		}
		atoms[i] = c
	}
	names := make(map[string][]int, len(G.Names))
	for k, v := range G.Names {
		names[k] = append([]int(nil), v...)
	}
	return &Geometry{Coords: G.Coords.Copy(), Atoms: atoms, Lattice: G.Lattice.Copy(), Names: names}
}

// Fxyz returns the fractional coordinates of the atoms.
func (G *Geometry) Fxyz() (*v3.Matrix, error) {
	return G.Lattice.Fractional(G.Coords)
}

// Remove returns a new geometry without the atoms in the list.
// Named groups are reindexed accordingly.
func (G *Geometry) Remove(atoms []int) *Geometry {
	drop := make(map[int]bool, len(atoms))
	for _, i := range atoms {
		drop[i] = true
	}
	keep := make([]int, 0, len(G.Atoms))
	newidx := make(map[int]int, len(G.Atoms))
	for i := range G.Atoms {
		if !drop[i] {
			newidx[i] = len(keep)
			keep = append(keep, i)
		}
	}
	return G.Sub(keep, newidx)
}

// Sub returns a new geometry with only the atoms in keep, in that order.
// newidx may be nil.
func (G *Geometry) Sub(keep []int, newidx map[int]int) *Geometry {
	if newidx == nil {
		newidx = make(map[int]int, len(keep))
		for j, i := range keep {
			newidx[i] = j
		}
	}
	coords := v3.Zeros(len(keep))
	coords.SomeVecs(G.Coords, keep)
	atoms := make([]*Atom, len(keep))
	for j, i := range keep {
		atoms[j] = G.Atoms[i]
	}
	names := make(map[string][]int, len(G.Names))
	for k, v := range G.Names {
		var nv []int
		for _, i := range v {
			if j, ok := newidx[i]; ok {
				nv = append(nv, j)
			}
		}
		names[k] = nv
	}
	return &Geometry{Coords: coords, Atoms: atoms, Lattice: G.Lattice.Copy(), Names: names}
}

// Tile returns a new geometry repeated reps times along the lattice vector axis.
// The new atoms come in blocks, the original atoms first.
func (G *Geometry) Tile(reps, axis int) *Geometry {
	na := len(G.Atoms)
	coords := v3.Zeros(na * reps)
	atoms := make([]*Atom, 0, na*reps)
	vec := G.Lattice.Cell.RawRowView(axis)
	shift := v3.Zeros(1)
	for r := 0; r < reps; r++ {
		for j := 0; j < 3; j++ {
			shift.Set(0, j, float64(r)*vec[j])
		}
		coords.View(r*na, na).AddVec(G.Coords, shift)
		atoms = append(atoms, G.Atoms...)
	}
	lat := G.Lattice.Copy()
	for j := 0; j < 3; j++ {
		lat.Cell.Set(axis, j, vec[j]*float64(reps))
	}
	return &Geometry{Coords: coords, Atoms: atoms, Lattice: lat, Names: make(map[string][]int)}
}

// Within returns the indexes of the atoms that are within R Angstrom of the
// point xyz, taking into account the periodic images in the lattice's Nsc.
func (G *Geometry) Within(xyz []float64, R float64) []int {
	ret := make([]int, 0, 8)
	na := len(G.Atoms)
	if na == 0 {
		return ret
	}
	p, _ := v3.NewMatrix([]float64{xyz[0], xyz[1], xyz[2]})
	in := make([]bool, na)
	img := v3.Zeros(na)
	off := v3.Zeros(1)
	for im := 0; im < G.Lattice.NImages(); im++ {
		copy(off.RawRowView(0), G.Lattice.Offset(G.Lattice.Image(im)))
		img.AddVec(G.Coords, off)
		for i := 0; i < na; i++ {
			if !in[i] && img.Distance(i, p, 0) <= R {
				in[i] = true
			}
		}
	}
	for i, ok := range in {
		if ok {
			ret = append(ret, i)
		}
	}
	return ret
}

func (G *Geometry) String() string {
	return fmt.Sprintf("Geometry{na: %d, no: %d, %s}", G.Na(), G.No(), G.Lattice)
}
