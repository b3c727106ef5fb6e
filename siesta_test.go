/*
 * siesta_test.go, part of gosiesta.
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
	"errors"
	"math"
	"testing"

	v3 "github.com/rmera/gosiesta/v3"
	"gonum.org/v1/gonum/floats"
)

func cubic(a float64) *Lattice {
	cell, _ := v3.NewMatrix([]float64{a, 0, 0, 0, a, 0, 0, 0, a})
	return NewLattice(cell)
}

func TestLatticeParameters(Te *testing.T) {
	L := LatticeFromParameters(3, 4, 5, 80, 95, 110)
	l, a := L.Parameters()
	if !floats.EqualApprox(l[:], []float64{3, 4, 5}, 1e-8) {
		Te.Errorf("lengths %v", l)
	}
	if !floats.EqualApprox(a[:], []float64{80, 95, 110}, 1e-8) {
		Te.Errorf("angles %v", a)
	}
	if L.Cell.At(0, 1) != 0 || L.Cell.At(0, 2) != 0 || L.Cell.At(1, 2) != 0 {
		Te.Errorf("cell not lower-triangular: %v", L.Cell)
	}
}

func TestImageIndex(Te *testing.T) {
	L := cubic(2)
	L.Nsc = [3]int{3, 5, 1}
	seen := make(map[int]bool)
	for i := 0; i < L.NImages(); i++ {
		isc := L.Image(i)
		if j := L.ImageIndex(isc); j != i {
			Te.Errorf("image %d -> %v -> %d", i, isc, j)
		}
		seen[i] = true
	}
	if L.Image(0) != [3]int{} {
		Te.Errorf("first image should be the unit cell, got %v", L.Image(0))
	}
	if L.ImageIndex([3]int{2, 0, 0}) != -1 {
		Te.Error("offset out of nsc should give -1")
	}
	if len(seen) != 15 {
		Te.Errorf("expected 15 images, got %d", len(seen))
	}
}

func TestFractional(Te *testing.T) {
	L := LatticeFromParameters(4, 4, 6, 90, 90, 120)
	xyz, _ := v3.NewMatrix([]float64{1, 2, 3, 0.5, -1, 2})
	f, err := L.Fractional(xyz)
	if err != nil {
		Te.Fatal(err)
	}
	back := L.Cartesian(f)
	if !floats.EqualApprox(back.RawMatrix().Data, xyz.RawMatrix().Data, 1e-10) {
		Te.Errorf("round trip failed: %v vs %v", back, xyz)
	}
}

func testGeometry() *Geometry {
	C := NewAtom(6, "", Orbital{R: 2, Tag: "s"}, Orbital{R: 2.5, Tag: "p"})
	H := NewAtom(1, "")
	coords, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5})
	G, _ := NewGeometry(coords, []*Atom{C, H, H, C}, cubic(10))
	G.Names["CONSTRAIN"] = []int{1, 3}
	return G
}

func TestGeometryOrbitals(Te *testing.T) {
	G := testGeometry()
	if G.No() != 6 {
		Te.Errorf("expected 6 orbitals, got %d", G.No())
	}
	first := G.Firsto()
	if first[3] != 4 || first[4] != 6 {
		Te.Errorf("wrong firsto %v", first)
	}
	if G.OrbitalAtom(5) != 3 || G.OrbitalAtom(2) != 1 || G.OrbitalAtom(6) != -1 {
		Te.Errorf("wrong orbital atoms")
	}
	uniq, idx := G.Species()
	if len(uniq) != 2 || idx[3] != 0 || idx[2] != 1 {
		Te.Errorf("wrong species %v %v", uniq, idx)
	}
}

func TestGeometryRemoveTile(Te *testing.T) {
	G := testGeometry()
	R := G.Remove([]int{0})
	if R.Na() != 3 || R.Atoms[2].Z != 6 {
		Te.Errorf("wrong removal %v", R)
	}
	if n := R.Names["CONSTRAIN"]; len(n) != 2 || n[0] != 0 || n[1] != 2 {
		Te.Errorf("names not reindexed: %v", n)
	}
	T := G.Tile(2, 0)
	if T.Na() != 8 || T.Lattice.Cell.At(0, 0) != 20 {
		Te.Errorf("wrong tiling %v", T)
	}
	if T.Coords.At(7, 0) != 15 {
		Te.Errorf("wrong tiled coordinate %f", T.Coords.At(7, 0))
	}
}

func TestWithin(Te *testing.T) {
	G := testGeometry()
	w := G.Within([]float64{0, 0, 0}, 1.1)
	if len(w) != 3 {
		Te.Errorf("expected 3 atoms, got %v", w)
	}
	G.Lattice.Nsc = [3]int{3, 3, 3}
	w = G.Within([]float64{9.5, 0, 0}, 0.6)
	if len(w) != 1 || w[0] != 0 {
		Te.Errorf("periodic image not found: %v", w)
	}
}

func TestSparse(Te *testing.T) {
	G := testGeometry()
	S := NewSparseOrbital(G, Hamiltonian, 2, false)
	if S.Dim() != 3 {
		Te.Errorf("wrong dim %d", S.Dim())
	}
	e := Element{Row: 0, Col: 1, Isc: [3]int{0, 0, 1}}
	S.Set(e, 0, 1.5)
	S.Add(e, 0, 1)
	S.Set(Element{Row: 2, Col: 2}, 1, 1e-12)
	if S.At(e, 0) != 2.5 || S.NNZ() != 2 {
		Te.Errorf("wrong values")
	}
	S.EliminateZeros(1e-10)
	if S.NNZ() != 1 {
		Te.Errorf("zeros not eliminated, nnz %d", S.NNZ())
	}
}

func TestErrorKinds(Te *testing.T) {
	err := NewError(ErrMissing, "no LatticeConstant", "a.fdf", "LatticeConstant")
	d := Decorate(err, "ReadLattice")
	if !errors.Is(d, ErrMissing) || errors.Is(d, ErrParse) {
		Te.Errorf("kind not reachable: %v", d)
	}
	var e *Error
	if !errors.As(d, &e) || e.FileName() != "a.fdf" || len(e.Decorate("")) != 1 {
		Te.Errorf("wrong error %v", d)
	}
	if Decorate(nil, "x") != nil {
		Te.Error("nil error should stay nil")
	}
}

func TestMass(Te *testing.T) {
	if math.Abs(Mass(6)-12.0107) > 1e-6 || Mass(-6) != 0 || Symbol(-6) != "C" {
		Te.Error("wrong atomic data")
	}
	if ZFromLabel("Cl_surf") != 17 || ZFromLabel("C1") != 6 || ZFromLabel("Au") != 79 {
		Te.Errorf("wrong labels %d %d %d", ZFromLabel("Cl_surf"), ZFromLabel("C1"), ZFromLabel("Au"))
	}
}

func TestShellOrbitals(Te *testing.T) {
	o := ShellOrbitals(3, 1, 2, true, 4.5, 3)
	if len(o) != 3 || o[0].M != -1 || o[2].Tag != "3pxZ2P" || o[1].Q0 != 1 || o[1].R != 4.5 {
		Te.Errorf("wrong shell %v", o)
	}
	if f := ShellOrbitals(4, 3, 1, false, 1, 0); len(f) != 7 || f[0].Tag != "4f-3Z1" {
		Te.Errorf("wrong f shell %v", f)
	}
}

func TestGrid(Te *testing.T) {
	g := NewGrid([3]int{2, 2, 1}, cubic(2))
	g.Set(1, 1, 0, 4)
	g.Set(0, 1, 0, 2)
	if g.At(1, 1, 0) != 4 || g.Data[2] != 2 {
		Te.Errorf("wrong indexing %v", g.Data)
	}
	if v := g.Integrate(); math.Abs(v-12) > 1e-12 {
		Te.Errorf("integral %f, expected 12", v)
	}
	min, max, mean, std := g.Stats()
	if min != 0 || max != 4 || mean != 1.5 || math.Abs(std-math.Sqrt(11.0/3)) > 1e-12 {
		Te.Errorf("wrong stats %f %f %f %f", min, max, mean, std)
	}
}
