/*
 * hessian.go, part of gosiesta.
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
	"math"

	"gonum.org/v1/gonum/floats"

	siesta "github.com/rmera/gosiesta"
	v3 "github.com/rmera/gosiesta/v3"
)

// hessian builds the dynamical matrix from the force constants fc, on the
// geometry of the fdf file. Each atom gets three orbitals (x, y, z) and
// atoms without mass (ghosts) are removed.
func (F *File) hessian(fc *siesta.ForceConstant, O *Options) (*siesta.SparseOrbital, error) {
	nd, na := fc.Ndispl, fc.Na
	//sign-averaged force constants, (displaced atom, dir, atom, dir)
	avg := make([]float64, nd*3*na*3)
	at := func(id, dir, ja, fdir int) int { return ((id*3+dir)*na+ja)*3 + fdir }
	for id := 0; id < nd; id++ {
		for dir := 0; dir < 3; dir++ {
			for ja := 0; ja < na; ja++ {
				for fdir := 0; fdir < 3; fdir++ {
					v := (fc.At(id, dir, 0, ja, fdir) + fc.At(id, dir, 1, ja, fdir)) / 2
					if math.Abs(v) <= O.cutoffFC {
						v = 0
					}
					avg[at(id, dir, ja, fdir)] = v
				}
			}
		}
	}
	q := O.nested()
	q.order = []Source{FDF}
	geom, err := F.ReadGeometry(q)
	if err != nil {
		return nil, err
	}
	if geom.Na() != na {
		return nil, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("force constants for %d atoms but the geometry has %d", na, geom.Na()), F.filename, "NumberOfAtoms")
	}
	R := O.cutoffDist
	xyz := []siesta.Orbital{{R: R, Tag: "x"}, {R: R, Tag: "y"}, {R: R, Tag: "z"}}
	repl := make(map[*siesta.Atom]*siesta.Atom)
	var ghosts []int
	for i, a := range geom.Atoms {
		b, ok := repl[a]
		if !ok {
			b = &siesta.Atom{Z: a.Z, Tag: a.Tag, Mass: a.Mass, Orbitals: append([]siesta.Orbital(nil), xyz...)}
			if a.Z < 0 {
				b.Mass = 0
			}
			repl[a] = b
		}
		geom.Atoms[i] = b
		if b.Mass == 0 {
			ghosts = append(ghosts, i)
		}
	}
	if blk, err := F.GetBlock("AtomicMass"); err == nil && len(blk) > 0 {
		siesta.Logger().Warnf("the AtomicMass block in %s is not used for the Hessian, standard masses are used", F.filename)
	}
	newidx := make(map[int]int, na)
	for i, j := 0, 0; i < na; i++ {
		if len(ghosts) > 0 && contains(ghosts, i) {
			continue
		}
		newidx[i] = j
		j++
	}
	geom = geom.Remove(ghosts)
	geom.Lattice.Nsc = [3]int{1, 1, 1}
	m, _ := geom.Masses()
	first, last, err := F.displaced()
	if err != nil {
		return nil, err
	}
	//displaced atoms: displacement index, atom index in the force constants and in geom.
	var disp [][3]int
	for i := first - 1; i < last; i++ {
		if j, ok := newidx[i]; ok {
			disp = append(disp, [3]int{i - (first - 1), i, j})
		}
	}
	if O.supercell != [3]int{1, 1, 1} {
		return nil, tiling(geom, disp, O.supercell, F.filename)
	}
	if R > 0 {
		for _, a := range disp {
			near := geom.Within(geom.Coords.RawRowView(a[2]), R)
			for _, b := range disp {
				if contains(near, b[2]) {
					continue
				}
				for dir := 0; dir < 3; dir++ {
					for fdir := 0; fdir < 3; fdir++ {
						avg[at(a[0], dir, b[1], fdir)] = 0
					}
				}
			}
		}
	}
	H := siesta.NewSparseOrbital(geom, siesta.DynamicalMatrix, 1, true)
	for _, a := range disp {
		for _, b := range disp {
			w := math.Sqrt(4 * m[a[2]] * m[b[2]])
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					v := (avg[at(a[0], i, b[1], j)] + avg[at(b[0], j, a[1], i)]) / w
					H.Set(siesta.Element{Row: a[2]*3 + i, Col: b[2]*3 + j}, 0, v)
				}
			}
		}
	}
	H.EliminateZeros(0)
	return H, nil
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// tiling works out how the force-constant supercell was built from the unit
// cell of the displaced atoms. Supercell Hessians are not supported, so it
// always returns an error: ErrInconsistent if the tiling can't be determined,
// ErrUnsupported otherwise.
func tiling(geom *siesta.Geometry, disp [][3]int, sc [3]int, filename string) error {
	small := make([]int, len(disp))
	for i, d := range disp {
		small[i] = d[2]
		if i > 0 && small[i]-small[i-1] != 1 {
			return siesta.NewError(siesta.ErrInconsistent, "the displaced atoms of a supercell calculation must be consecutive", filename, "MD.FCFirst")
		}
	}
	ns := len(small)
	if ns == 0 || geom.Na() != ns*sc[0]*sc[1]*sc[2] {
		return siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("%d atoms can't be a %v supercell of %d displaced atoms", geom.Na(), sc, ns), filename, "")
	}
	cell := geom.Lattice.Cell.Copy()
	for k := 0; k < 3; k++ {
		floats.Scale(1/float64(sc[k]), cell.RawRowView(k))
	}
	var nsc [3]int
	for k := range nsc {
		nsc[k] = sc[k] + (sc[k]+1)%2
	}
	unitG := geom.Sub(small, nil)
	unitG.Lattice = siesta.NewLattice(cell, nsc[:]...)
	fsmall, err := unitG.Fxyz()
	if err != nil {
		return siesta.WrapFile(err, siesta.ErrInconsistent, filename)
	}
	fbig, err := unitG.Lattice.Fractional(geom.Coords)
	if err != nil {
		return siesta.WrapFile(err, siesta.ErrInconsistent, filename)
	}
	isc := v3.Zeros(geom.Na())
	for r := 0; r < geom.Na(); r++ {
		floats.SubTo(isc.RawRowView(r), fbig.RawRowView(r), fsmall.RawRowView(r%ns))
	}
	var axes []int
	offset := ns
	for k := 0; k < 3; k++ {
		if sc[k] <= 1 {
			continue
		}
		var count [3]float64
		for _, a := range small {
			r := a + offset
			if r >= geom.Na() {
				return siesta.NewError(siesta.ErrInconsistent, "could not figure out the tiling of the supercell", filename, "")
			}
			for c := 0; c < 3; c++ {
				if math.Round(isc.At(r, c)) == 1 {
					count[c]++
				}
			}
		}
		axis := floats.MaxIdx(count[:])
		axes = append(axes, axis)
		offset *= sc[axis]
	}
	tile := unitG
	for _, axis := range axes {
		tile = tile.Tile(sc[axis], axis)
	}
	if tile.Na() != geom.Na() {
		return siesta.NewError(siesta.ErrInconsistent, "could not figure out the tiling of the supercell", filename, "")
	}
	for r := 0; r < geom.Na(); r++ {
		for c := 0; c < 3; c++ {
			if math.Abs(tile.Coords.At(r, c)-geom.Coords.At(r, c)) > 0.01 {
				return siesta.NewError(siesta.ErrInconsistent, "could not figure out the tiling of the supercell", filename, "")
			}
		}
	}
	return siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("Hessians from %v supercells are not supported", sc), filename, "")
}
