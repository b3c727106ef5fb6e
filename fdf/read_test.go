/*
 * read_test.go, part of gosiesta.
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
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/fortran"
	"github.com/rmera/gosiesta/unit"
)

const cellFDF = `LatticeConstant 1.0 Ang
%block LatticeVectors
2.0 0.0 0.0
0.5 3.0 0.0
0.0 0.0 4.0
%endblock LatticeVectors
`

const speciesFDF = `%block ChemicalSpeciesLabel
1 6 C
2 1 H
%endblock ChemicalSpeciesLabel
`

func coordsFDF(format string, atoms ...string) string {
	s := ""
	if format != "" {
		s = "AtomicCoordinatesFormat " + format + "\n"
	}
	return s + "%block AtomicCoordinatesAndAtomicSpecies\n" + strings.Join(atoms, "\n") + "\n%endblock AtomicCoordinatesAndAtomicSpecies\n"
}

func openFDF(Te *testing.T, dir, content string) *File {
	F, err := Open(write(Te, dir, "test.fdf", content))
	if err != nil {
		Te.Fatal(err)
	}
	return F
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func nearRow(Te *testing.T, what string, got []float64, want ...float64) {
	for i := range want {
		if !near(got[i], want[i]) {
			Te.Errorf("%s is %v, want %v", what, got, want)
			return
		}
	}
}

func TestFractional(Te *testing.T) {
	logs := observe(Te)
	F := openFDF(Te, Te.TempDir(), cellFDF+"NumberOfAtoms 1\n"+speciesFDF+coordsFDF("Fractional", "0.5 0.5 0.25 1"))
	G, err := F.ReadGeometry(nil)
	if err != nil {
		Te.Fatal(err)
	}
	nearRow(Te, "position", G.Coords.RawRowView(0), 1.25, 1.5, 1.0)
	nearRow(Te, "first vector", G.Lattice.Cell.RawRowView(0), 2, 0, 0)
	nearRow(Te, "second vector", G.Lattice.Cell.RawRowView(1), 0.5, 3, 0)
	nearRow(Te, "third vector", G.Lattice.Cell.RawRowView(2), 0, 0, 4)
	if G.Atoms[0].Z != 6 || G.Lattice.Nsc != [3]int{1, 1, 1} {
		Te.Errorf("wrong atom %v or nsc %v", G.Atoms[0], G.Lattice.Nsc)
	}
	if logs.Len() != 0 {
		Te.Errorf("unexpected warnings: %v", logs.All())
	}
}

func TestLatticeFDF(Te *testing.T) {
	dir := Te.TempDir()
	F := openFDF(Te, dir, "LatticeConstant 2 Ang\n%block LatticeParameters\n1 1 1 90 90 90\n%endblock LatticeParameters\n")
	L, err := F.ReadLattice(nil)
	if err != nil {
		Te.Fatal(err)
	}
	nearRow(Te, "lattice from parameters", []float64{L.Cell.At(0, 0), L.Cell.At(1, 1), L.Cell.At(2, 2), L.Cell.At(0, 1)}, 2, 2, 2, 0)
	F = openFDF(Te, dir, strings.Replace(cellFDF, "Ang", "Bohr", 1))
	if L, err = F.ReadLattice(nil); err != nil {
		Te.Fatal(err)
	}
	if !near(L.Cell.At(0, 0), 2*unit.BohrToAng) {
		Te.Errorf("lattice constant in Bohr gives %f", L.Cell.At(0, 0))
	}
	F = openFDF(Te, dir, "%block LatticeVectors\n1 0 0\n0 1 0\n0 0 1\n%endblock LatticeVectors\n")
	if _, err := F.ReadLattice(nil); !errors.Is(err, siesta.ErrMissing) {
		Te.Errorf("no LatticeConstant should be missing data: %v", err)
	}
	F = openFDF(Te, dir, "LatticeConstant 1 Ang\n")
	if _, err := F.ReadLattice(nil); !errors.Is(err, siesta.ErrMissing) {
		Te.Errorf("no lattice vectors should be missing data: %v", err)
	}
}

func TestCoordinateFormats(Te *testing.T) {
	dir := Te.TempDir()
	base := cellFDF + speciesFDF
	origin := "%block AtomicCoordinatesOrigin\n1 1 1\n%endblock AtomicCoordinatesOrigin\n"
	cases := []struct {
		fdf  string
		want float64
	}{
		{base + coordsFDF("Ang", "1 1 1 1"), 1},
		{base + coordsFDF("", "1 1 1 1"), unit.BohrToAng},
		{base + coordsFDF("NotScaledCartesianBohr", "1 1 1 1"), unit.BohrToAng},
		{strings.Replace(base, "1.0 Ang", "3.0 Ang", 1) + coordsFDF("ScaledCartesian", "1 1 1 1"), 3},
		{base + coordsFDF("Ang", "1 1 1 1") + origin, 2},
		{base + coordsFDF("Bohr", "1 1 1 1") + origin, 2 * unit.BohrToAng},
	}
	for i, c := range cases {
		F := openFDF(Te, dir, c.fdf)
		G, err := F.ReadGeometry(nil)
		if err != nil {
			Te.Fatalf("case %d: %v", i, err)
		}
		if !near(G.Coords.At(0, 2), c.want) {
			Te.Errorf("case %d: z is %f, want %f", i, G.Coords.At(0, 2), c.want)
		}
	}
	F := openFDF(Te, dir, base+coordsFDF("Ang", "1 1 1 1")+origin)
	O := DefaultOptions()
	O.Origin(false)
	G, err := F.ReadGeometry(O)
	if err != nil || !near(G.Coords.At(0, 2), 1) {
		Te.Errorf("origin applied when disabled: %v", err)
	}
	F = openFDF(Te, dir, base+coordsFDF("Fractional", "0 0 0.25 1")+origin)
	if G, err = F.ReadGeometry(nil); err != nil || !near(G.Coords.At(0, 2), 1) {
		Te.Errorf("origin applied to fractional coordinates: %v", err)
	}
	F = openFDF(Te, dir, base+coordsFDF("Parsecs", "1 1 1 1"))
	if _, err := F.ReadGeometry(nil); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("unknown format should not parse: %v", err)
	}
}

func TestNumberOfAtoms(Te *testing.T) {
	dir := Te.TempDir()
	atoms := coordsFDF("Ang", "0 0 0 1", "1 0 0 2")
	F := openFDF(Te, dir, cellFDF+speciesFDF+atoms+"NumberOfAtoms 1\n")
	G, err := F.ReadGeometry(nil)
	if err != nil || G.Na() != 1 {
		Te.Errorf("block not truncated: %v %v", G, err)
	}
	F = openFDF(Te, dir, cellFDF+speciesFDF+atoms)
	if G, err = F.ReadGeometry(nil); err != nil || G.Na() != 2 || G.Atoms[1].Z != 1 {
		Te.Errorf("wrong geometry: %v %v", G, err)
	}
	F = openFDF(Te, dir, cellFDF+speciesFDF+atoms+"NumberOfAtoms 3\n")
	if _, err := F.ReadGeometry(nil); !errors.Is(err, siesta.ErrInconsistent) {
		Te.Errorf("too many atoms should be inconsistent: %v", err)
	}
	F = openFDF(Te, dir, cellFDF+speciesFDF)
	if _, err := F.ReadGeometry(nil); !errors.Is(err, siesta.ErrMissing) {
		Te.Errorf("no coordinates should be missing data: %v", err)
	}
}

func TestNoSpecies(Te *testing.T) {
	logs := observe(Te)
	F := openFDF(Te, Te.TempDir(), cellFDF+coordsFDF("Ang", "0 0 0 1", "1 0 0 2"))
	G, err := F.ReadGeometry(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if G.Atoms[0].Z != 1 || G.Atoms[1].Z != 1 {
		Te.Errorf("atoms should be hydrogen: %v", G.Atoms)
	}
	if logs.Len() != 1 {
		Te.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestOrder(Te *testing.T) {
	observe(Te)
	dir := Te.TempDir()
	F := openFDF(Te, dir, "SystemLabel test\n"+cellFDF+speciesFDF+coordsFDF("Ang", "1 1 1 1"))
	write(Te, dir, "test.XV", "4.0 0.0 0.0 0 0 0\n0.0 4.0 0.0 0 0 0\n0.0 0.0 4.0 0 0 0\n1\n1 6 2.0 2.0 2.0 0 0 0\n")
	fromXV := 2 * unit.BohrToAng
	cases := []struct {
		order  []string
		output bool
		want   float64
	}{
		{nil, false, 1},
		{nil, true, fromXV},
		{[]string{"XV", "fdf"}, false, fromXV},
		{[]string{"fdf", "XV"}, true, 1},
		{[]string{"nc", "xv", "xv"}, false, fromXV},
		{[]string{"nc", "fdf"}, false, 1},
	}
	for i, c := range cases {
		O := DefaultOptions()
		O.Output(c.output)
		if c.order != nil {
			s, err := ParseSources(c.order)
			if err != nil {
				Te.Fatal(err)
			}
			O.Order(s)
		}
		G, err := F.ReadGeometry(O)
		if err != nil {
			Te.Fatalf("case %d: %v", i, err)
		}
		if !near(G.Coords.At(0, 0), c.want) {
			Te.Errorf("case %d: x is %f, want %f", i, G.Coords.At(0, 0), c.want)
		}
	}
	O := DefaultOptions()
	O.Output(true)
	L, err := F.ReadLattice(O)
	if err != nil || !near(L.Cell.At(0, 0), 4*unit.BohrToAng) {
		Te.Errorf("lattice not read from XV: %v %v", L, err)
	}
	O.Order([]Source{TSHS})
	if _, err := F.ReadGeometry(O); !errors.Is(err, siesta.ErrUnsupported) {
		Te.Errorf("geometry from TSHS is not supported: %v", err)
	}
}

func TestMissingSource(Te *testing.T) {
	F := openFDF(Te, Te.TempDir(), "SystemLabel test\n")
	O := DefaultOptions()
	O.Order([]Source{TSHS})
	H, err := F.ReadHamiltonian(O)
	if err != nil || H != nil {
		Te.Errorf("expected nothing, got %v %v", H, err)
	}
	DM, err := F.ReadDensityMatrix(nil)
	if err != nil || DM != nil {
		Te.Errorf("expected nothing, got %v %v", DM, err)
	}
	if _, err := F.ReadGrid("nothing", nil); !errors.Is(err, siesta.ErrUnsupported) {
		Te.Errorf("unknown grid should be unsupported: %v", err)
	}
	if g, err := F.ReadGrid("Rho", nil); err != nil || g != nil {
		Te.Errorf("expected no grid, got %v %v", g, err)
	}
	names := GridNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			Te.Errorf("grid names not sorted: %v", names)
		}
	}
}

func TestSources(Te *testing.T) {
	for _, q := range Quantities() {
		for _, s := range DefaultOrder(q, true) {
			if !hasReader(q, s) {
				Te.Errorf("no reader for %s from %s", q, s)
			}
		}
	}
	if s, err := ParseSource("orb_indx"); err != nil || s != OrbIndx || s.Suffix() != ".ORB_INDX" {
		Te.Errorf("wrong source %v %v", s, err)
	}
	if _, err := ParseSource("xyz"); !errors.Is(err, siesta.ErrUnsupported) {
		Te.Errorf("unknown source: %v", err)
	}
}

const phononFDF = `SystemLabel ph
LatticeConstant 1.0 Ang
%block LatticeVectors
10 0 0
0 10 0
0 0 10
%endblock LatticeVectors
%block ChemicalSpeciesLabel
1 6 C
2 -6 C_ghost
%endblock ChemicalSpeciesLabel
AtomicCoordinatesFormat Ang
`

// fcFile writes an FC file where every force is (1, 2, 3).
func fcFile(Te *testing.T, dir string, lines int) {
	var b strings.Builder
	b.WriteString("Force constants matrix\n")
	for i := 0; i < lines; i++ {
		b.WriteString(" 1.0 2.0 3.0\n")
	}
	write(Te, dir, "ph.FC", b.String())
}

func phonons(Te *testing.T, atoms []string, first, last, lines int) *File {
	dir := Te.TempDir()
	fcFile(Te, dir, lines)
	fdf := phononFDF + coordsFDF("", atoms...) + fmt.Sprintf("NumberOfAtoms %d\n", len(atoms))
	if first > 0 {
		fdf += fmt.Sprintf("MD.FCFirst %d\nMD.FCLast %d\n", first, last)
	}
	return openFDF(Te, dir, fdf)
}

func TestForceConstant(Te *testing.T) {
	F := phonons(Te, []string{"0 0 0 1", "2 0 0 1"}, 1, 2, 24)
	fc, err := F.ReadForceConstant(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if fc.Ndispl != 2 || fc.Na != 2 {
		Te.Fatalf("wrong dimensions %d %d", fc.Ndispl, fc.Na)
	}
	nearRow(Te, "corrected force", []float64{fc.At(1, 2, 1, 1, 0), fc.At(1, 2, 1, 1, 1), fc.At(1, 2, 1, 1, 2)}, -1, -2, -3)
	nearRow(Te, "force", []float64{fc.At(1, 2, 1, 0, 0), fc.At(1, 2, 1, 0, 1), fc.At(1, 2, 1, 0, 2)}, 1, 2, 3)
	O := DefaultOptions()
	O.CorrectFC(false)
	if fc, err = F.ReadForceConstant(O); err != nil || fc.At(0, 0, 0, 0, 0) != 1 {
		Te.Errorf("uncorrected force constants: %v", err)
	}
	F = phonons(Te, []string{"0 0 0 1", "2 0 0 1", "4 0 0 1"}, 1, 3, 54)
	if fc, err = F.ReadForceConstant(nil); err != nil {
		Te.Fatal(err)
	}
	nearRow(Te, "corrected force, 3 atoms", fc.Forces(0, 0, 0)[:3], -2, -4, -6)
	F = phonons(Te, []string{"0 0 0 1", "2 0 0 1"}, 0, 0, 24)
	if _, err := F.ReadForceConstant(nil); !errors.Is(err, siesta.ErrMissing) {
		Te.Errorf("no MD.FCFirst should be missing data: %v", err)
	}
	F = phonons(Te, []string{"0 0 0 1", "2 0 0 1"}, 1, 1, 24)
	if _, err := F.ReadForceConstant(nil); !errors.Is(err, siesta.ErrInconsistent) {
		Te.Errorf("wrong number of displacements should be inconsistent: %v", err)
	}
}

func TestHessian(Te *testing.T) {
	m := siesta.Mass(6)
	F := phonons(Te, []string{"0 0 0 1", "2 0 0 1"}, 1, 2, 24)
	H, err := F.ReadHessian(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if H.No() != 6 || H.NNZ() != 36 || H.Kind != siesta.DynamicalMatrix {
		Te.Fatalf("wrong Hessian: %d orbitals, %d elements", H.No(), H.NNZ())
	}
	if v := H.At(siesta.Element{Row: 0, Col: 4}, 0); !near(v, 1.5/m) {
		Te.Errorf("H[0,4] is %f, want %f", v, 1.5/m)
	}
	if v := H.At(siesta.Element{Row: 0, Col: 0}, 0); !near(v, -1/m) {
		Te.Errorf("H[0,0] is %f, want %f", v, -1/m)
	}
	if v, w := H.At(siesta.Element{Row: 2, Col: 3}, 0), H.At(siesta.Element{Row: 3, Col: 2}, 0); v != w {
		Te.Errorf("Hessian not symmetric: %f %f", v, w)
	}
	O := DefaultOptions()
	O.CutoffDist(0.5)
	if H, err = F.ReadHessian(O); err != nil || H.NNZ() != 18 {
		Te.Errorf("distance cutoff not applied: %v", err)
	}
	O = DefaultOptions()
	O.CutoffFC(2.5)
	if H, err = F.ReadHessian(O); err != nil || H.At(siesta.Element{Row: 0, Col: 1}, 0) != 0 || H.At(siesta.Element{Row: 2, Col: 5}, 0) == 0 {
		Te.Errorf("force constant cutoff not applied: %v", err)
	}
}

func TestHessianGhosts(Te *testing.T) {
	m := siesta.Mass(6)
	F := phonons(Te, []string{"0 0 0 1", "2 0 0 1", "4 0 0 2"}, 1, 3, 54)
	H, err := F.ReadHessian(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if H.Geometry.Na() != 2 || H.No() != 6 || H.NNZ() != 36 {
		Te.Fatalf("ghost not removed: %d atoms, %d elements", H.Geometry.Na(), H.NNZ())
	}
	if v := H.At(siesta.Element{Row: 0, Col: 0}, 0); !near(v, -2/m) {
		Te.Errorf("H[0,0] is %f, want %f", v, -2/m)
	}
	if v := H.At(siesta.Element{Row: 0, Col: 4}, 0); !near(v, 1.5/m) {
		Te.Errorf("H[0,4] is %f, want %f", v, 1.5/m)
	}
}

func TestHessianSupercell(Te *testing.T) {
	O := DefaultOptions()
	O.Supercell([3]int{2, 1, 1})
	tiled := strings.Replace(phononFDF, "10 0 0\n0 10 0\n0 0 10", "4 0 0\n0 4 0\n0 0 4", 1)
	for _, c := range []struct {
		second string
		err    error
	}{
		{"2 0 0 1", siesta.ErrUnsupported},
		{"2 0.5 0 1", siesta.ErrInconsistent},
	} {
		dir := Te.TempDir()
		fcFile(Te, dir, 12)
		F := openFDF(Te, dir, tiled+coordsFDF("", "0 0 0 1", c.second)+"MD.FCFirst 1\nMD.FCLast 1\n")
		if _, err := F.ReadHessian(O); !errors.Is(err, c.err) {
			Te.Errorf("atom at %s: expected %v, got %v", c.second, c.err, err)
		}
	}
}

func writeDM(Te *testing.T, name string) {
	f, err := os.Create(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	W := fortran.NewWriter(f)
	records := [][]interface{}{
		{3, 1, 3, 1, 1},
		{[]int{2, 1, 1}},
		{[]int{1, 5}}, {[]int{2}}, {[]int{9}},
		{[]float64{0.5, 0.1}}, {[]float64{1.0}}, {[]float64{0.3}},
	}
	for _, r := range records {
		if err := W.Write(r...); err != nil {
			Te.Fatal(err)
		}
	}
}

func TestDensityMatrix(Te *testing.T) {
	logs := observe(Te)
	dir := Te.TempDir()
	writeDM(Te, filepath.Join(dir, "test.DM"))
	F := openFDF(Te, dir, "SystemLabel test\n"+cellFDF+speciesFDF+coordsFDF("Ang", "0 0 0 1", "1 0 0 2", "0 1 0 2"))
	DM, err := F.ReadDensityMatrix(nil)
	if err != nil {
		Te.Fatal(err)
	}
	G := DM.Geometry
	if G.Na() != 3 || G.Atoms[0].Z != 6 || G.Atoms[2].Z != 1 || G.Lattice.Nsc != [3]int{3, 1, 1} {
		Te.Errorf("geometry not reconciled: %v", G)
	}
	if v := DM.At(siesta.Element{Row: 0, Col: 1, Isc: [3]int{1, 0, 0}}, 0); v != 0.1 {
		Te.Errorf("wrong element %f", v)
	}
	if logs.Len() != 0 {
		Te.Errorf("unexpected warnings %v", logs.All())
	}
	F = openFDF(Te, dir, "SystemLabel test\n"+cellFDF+speciesFDF+coordsFDF("Ang", "0 0 0 1", "1 0 0 2"))
	if DM, err = F.ReadDensityMatrix(nil); err != nil {
		Te.Fatal(err)
	}
	if DM.Geometry.Na() != 3 || logs.FilterMessageSnippet("wrong supercell").Len() != 1 {
		Te.Errorf("mismatched geometry should be kept with a warning, got %d atoms", DM.Geometry.Na())
	}
}

func TestForce(Te *testing.T) {
	dir := Te.TempDir()
	F := openFDF(Te, dir, "SystemLabel test\n")
	if f, err := F.ReadForce(nil); err != nil || f != nil {
		Te.Errorf("expected no forces, got %v %v", f, err)
	}
	write(Te, dir, "test.FA", "2\n1 0.1 0.2 0.3\n2 -0.1 -0.2 -0.3\n")
	write(Te, dir, "test.FAC", "2\n1 1.0 2.0 3.0\n2 -1.0 -2.0 -3.0\n")
	f, err := F.ReadForce(nil)
	if err != nil {
		Te.Fatal(err)
	}
	nearRow(Te, "force", f.RawRowView(1), -0.1, -0.2, -0.3)
	O := DefaultOptions()
	O.Order([]Source{FAC, FA})
	if f, err = F.ReadForce(O); err != nil {
		Te.Fatal(err)
	}
	nearRow(Te, "corrected force", f.RawRowView(0), 1, 2, 3)
}

func TestBasisFDF(Te *testing.T) {
	F := openFDF(Te, Te.TempDir(), "SystemLabel test\n"+speciesFDF)
	B, err := F.ReadBasis(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if len(B) != 2 || B[0].Z != 6 || B[0].Tag != "C" || B[1].Z != 1 || B[1].Tag != "H" {
		Te.Errorf("wrong basis %v", B)
	}
	F = openFDF(Te, Te.TempDir(), "SystemLabel test\n")
	if B, err = F.ReadBasis(nil); err != nil || B != nil {
		Te.Errorf("expected no basis, got %v %v", B, err)
	}
}

func TestNscFallback(Te *testing.T) {
	logs := observe(Te)
	F := openFDF(Te, Te.TempDir(), "SystemLabel test\n"+cellFDF)
	nsc, err := F.ReadLatticeNsc(nil)
	if err != nil || nsc != [3]int{1, 1, 1} {
		Te.Errorf("expected [1 1 1], got %v %v", nsc, err)
	}
	if logs.FilterMessageSnippet("number of supercells").Len() != 1 {
		Te.Errorf("expected one warning, got %v", logs.All())
	}
	if _, err := F.ReadLattice(nil); err != nil {
		Te.Fatal(err)
	}
	if logs.Len() != 1 {
		Te.Errorf("the fdf lattice reader should not warn, got %v", logs.All())
	}
}
