package nc

import (
	"math"
	"testing"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
	v3 "github.com/rmera/gosiesta/v3"
)

func TestFlatten(Te *testing.T) {
	v, shape, err := flatten([][]float32{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		Te.Fatal(err)
	}
	if len(v) != 6 || v[4] != 5 || len(shape) != 2 || shape[0] != 2 || shape[1] != 3 {
		Te.Errorf("wrong flattening %v %v", v, shape)
	}
	i, err := ints([]int32{3, 1, 1})
	if err != nil || i[0] != 3 {
		Te.Errorf("wrong ints %v %v", i, err)
	}
	if _, _, err := flatten([]string{"a"}); err == nil {
		Te.Error("strings should not flatten")
	}
	if s := str("Si\x00\x00 "); s != "Si" {
		Te.Errorf("wrong string %q", s)
	}
}

func testGeom(Te *testing.T, no int) *siesta.Geometry {
	cell, _ := v3.NewMatrix([]float64{5, 0, 0, 0, 5, 0, 0, 0, 5})
	atoms := make([]*siesta.Atom, no)
	a := siesta.NewAtom(1, "")
	for i := range atoms {
		atoms[i] = a
	}
	G, err := siesta.NewGeometry(v3.Zeros(no), atoms, siesta.NewLattice(cell, 3, 1, 1))
	if err != nil {
		Te.Fatal(err)
	}
	return G
}

func TestSparse(Te *testing.T) {
	G := testGeom(Te, 2)
	ncol := []int{2, 1}
	col := []int{1, 4, 6}
	isc := []int{0, 0, 0, 1, 0, 0, -1, 0, 0}
	vals := []float64{0.1, 0.2, 0.3, 1.1, 1.2, 1.3} //2 spins
	S, err := sparse(G, siesta.Hamiltonian, ncol, col, isc, vals, []int{2, 3}, []float64{1, 0.5, 0.25}, unit.RyToEV)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Spin != 2 || S.Orthogonal || S.NNZ() != 3 {
		Te.Fatalf("wrong matrix %v", S)
	}
	e := siesta.Element{Row: 0, Col: 1, Isc: [3]int{1, 0, 0}}
	if math.Abs(S.At(e, 1)-1.2*unit.RyToEV) > 1e-10 || S.Overlap(e) != 0.5 {
		Te.Errorf("wrong element %f %f", S.At(e, 1), S.Overlap(e))
	}
	e = siesta.Element{Row: 1, Col: 1, Isc: [3]int{-1, 0, 0}}
	if S.Overlap(e) != 0.25 {
		Te.Errorf("wrong overlap %f", S.Overlap(e))
	}
	if _, err := sparse(testGeom(Te, 3), siesta.Hamiltonian, ncol, col, isc, vals, nil, nil, 1); err == nil {
		Te.Error("orbital mismatch should fail")
	}
}

func TestGrid(Te *testing.T) {
	L, err := lattice([]float64{10, 0, 0, 0, 10, 0, 0, 0, 10})
	if err != nil {
		Te.Fatal(err)
	}
	//2 spins, nz=1, ny=2, nx=3
	data := []float64{0, 1, 2, 3, 4, 5, 10, 11, 12, 13, 14, 15}
	G, err := grid(L, data, []int{2, 1, 2, 3}, -1, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if G.Shape != [3]int{3, 2, 1} || G.At(2, 1, 0) != 20 {
		Te.Errorf("wrong grid %v %f", G.Shape, G.At(2, 1, 0))
	}
	G, _ = grid(L, data, []int{2, 1, 2, 3}, 1, 2)
	if G.At(1, 0, 0) != 22 {
		Te.Errorf("wrong spin selection %f", G.At(1, 0, 0))
	}
	if _, err := grid(L, data, []int{2, 1, 2, 3}, 2, 1); err == nil {
		Te.Error("spin out of range should fail")
	}
	if gridFactor("Vh") != unit.RyToEV || gridFactor("TotalPotential") != unit.RyToEV || math.Abs(gridFactor("RhoInit")-1/math.Pow(unit.BohrToAng, 3)) > 1e-10 {
		Te.Error("wrong grid units")
	}
}

func TestSpecies(Te *testing.T) {
	sp := shells{label: "Si", Z: 14, mass: 28.1, l: []int{0, 1}, n: []int{3, 3}, z: []int{1, 1}, pol: []int{0, 0}, cutoff: []float64{5, 6}}
	a := sp.atom()
	if a.No() != 4 || a.Z != 14 || a.Mass != 28.1 || a.Orbitals[3].Tag != "3pxZ1" {
		Te.Errorf("wrong species %v", a)
	}
	if math.Abs(a.Orbitals[1].R-6*unit.BohrToAng) > 1e-10 {
		Te.Errorf("wrong radius %f", a.Orbitals[1].R)
	}
	b := shells{label: "O_surf", no: 9}.atom()
	if b.No() != 9 || b.Z != 8 {
		Te.Errorf("wrong species %v", b)
	}
	atoms, err := siteSpecies(3, []*siesta.Atom{a, b}, []int{2, 1, 2}, nil)
	if err != nil || atoms[0] != b || atoms[1] != a {
		Te.Errorf("wrong sites %v", err)
	}
	atoms, err = siteSpecies(2, nil, nil, []int{4, 5})
	if err != nil || atoms[0].No() != 4 || atoms[1].No() != 1 {
		Te.Errorf("wrong sites from lasto %v", err)
	}
}
