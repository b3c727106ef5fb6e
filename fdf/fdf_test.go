/*
 * fdf_test.go, part of gosiesta.
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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
)

const testFDF = `# A test file
SystemLabel test
MeshCutoff 300. Ry
Energy.Shift 0.5 eV   # a comment
NumberOfAtoms 2
Spin.Polarized .true.
WriteForces
Title  a free   form string
! another comment
; and another
%block Data
 1 2 3
 # not a comment

 ! neither
%endblock Data
%block Other
Foo 3
%endblock Other
%include extra.fdf
Foo 4
After 1.5
`

const extraFDF = `Extra 7
Label 3
`

func write(Te *testing.T, dir, name, content string) string {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	return p
}

// observe makes the package log go to an observer, until the test ends.
func observe(Te *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.WarnLevel)
	siesta.SetLogger(zap.New(core))
	Te.Cleanup(func() { siesta.SetLogger(nil) })
	return logs
}

func testFile(Te *testing.T) *File {
	dir := Te.TempDir()
	write(Te, dir, "extra.fdf", extraFDF)
	F, err := Open(write(Te, dir, "test.fdf", testFDF))
	if err != nil {
		Te.Fatal(err)
	}
	return F
}

func TestNormalize(Te *testing.T) {
	F := testFile(Te)
	for _, l := range []string{"MeshCutoff", "meshcutoff", "Mesh_Cutoff", "mesh-cutoff", "MESH.CUTOFF", "m.e.s.h_cut-off"} {
		s, err := F.GetString(l, "")
		if err != nil {
			Te.Fatal(err)
		}
		if s != "300. Ry" {
			Te.Errorf("label %s gave %q", l, s)
		}
	}
}

func TestClassify(Te *testing.T) {
	cases := map[interface{}]Kind{
		"7":       Integer,
		"-3":      Integer,
		".5":      Real,
		"1.0":     Real,
		"1e3":     Real,
		"y":       Bool,
		"F":       Bool,
		".TRUE.":  Bool,
		"1.0 Ang": Physical,
		"3 Ry":    Physical,
		"a b":     Opaque,
		"a":       Opaque,
		"1 2 3":   Opaque,
	}
	for v, k := range cases {
		if c := Classify(v); c != k {
			Te.Errorf("%v classified as %s, not %s", v, c, k)
		}
	}
	if Classify(nil) != None || Classify([]string{"a"}) != Block || Classify([]float64{1}) != NumericArray {
		Te.Error("wrong classification of non-string values")
	}
}

func TestTypes(Te *testing.T) {
	F := testFile(Te)
	cases := map[string]Kind{
		"MeshCutoff":     Physical,
		"NumberOfAtoms":  Integer,
		"Spin.Polarized": Bool,
		"Title":          Opaque,
		"Data":           Block,
		"Nope":           None,
		"After":          Real,
		"Extra":          Integer,
	}
	for l, k := range cases {
		t, err := F.Type(l)
		if err != nil {
			Te.Fatal(err)
		}
		if t != k {
			Te.Errorf("%s is %s, not %s", l, t, k)
		}
	}
}

func TestGetValues(Te *testing.T) {
	F := testFile(Te)
	if n, err := F.GetInt("NumberOfAtoms", 0); err != nil || n != 2 {
		Te.Errorf("NumberOfAtoms %d %v", n, err)
	}
	if f, err := F.GetFloat("After", 0); err != nil || f != 1.5 {
		Te.Errorf("After %f %v", f, err)
	}
	if f, err := F.GetFloat("NumberOfAtoms", 0); err != nil || f != 2 {
		Te.Errorf("integer as float %f %v", f, err)
	}
	if _, err := F.GetInt("After", 0); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("a real is not an integer: %v", err)
	}
	if b, err := F.GetBool("Spin.Polarized", false); err != nil || !b {
		Te.Errorf("Spin.Polarized %t %v", b, err)
	}
	if b, err := F.GetBool("WriteForces", false); err != nil || !b {
		Te.Errorf("a label without value is true: %t %v", b, err)
	}
	if b, err := F.GetBool("Missing", true); err != nil || !b {
		Te.Errorf("default not used %t %v", b, err)
	}
	if s, err := F.GetString("Title", ""); err != nil || s != "a free form string" {
		Te.Errorf("Title %q %v", s, err)
	}
	if n, err := F.GetInt("Foo", 0); err != nil || n != 4 {
		Te.Errorf("labels inside other blocks must not be found, got %d %v", n, err)
	}
	if n, err := F.GetInt("Label", 0); err != nil || n != 3 {
		Te.Errorf("label from included file %d %v", n, err)
	}
	if _, err := F.GetBlock("SystemLabel"); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("a value is not a block: %v", err)
	}
	if b, err := F.GetBlock("Nope"); err != nil || b != nil {
		Te.Errorf("missing block %v %v", b, err)
	}
}

func TestPhysical(Te *testing.T) {
	F := testFile(Te)
	v, err := F.GetPhysical("MeshCutoff", "eV", 0)
	if err != nil {
		Te.Fatal(err)
	}
	if d := v - 300*unit.RyToEV; d > 1e-9 || d < -1e-9 {
		Te.Errorf("300 Ry is %f eV, not %f", 300*unit.RyToEV, v)
	}
	if def, _ := F.GetPhysical("MeshCutoff", "", 0); def != v {
		Te.Errorf("the default unit of energies is eV, got %f", def)
	}
	if ry, _ := F.GetFloat("MeshCutoff", 0); ry != v {
		Te.Errorf("GetFloat should convert to eV, got %f", ry)
	}
	if _, err := F.GetPhysical("MeshCutoff", "Ang", 0); !errors.Is(err, siesta.ErrUnit) {
		Te.Errorf("energy in Ang should fail: %v", err)
	}
	x, u, err := F.GetWithUnit("Energy.Shift", 0, "")
	if err != nil || x != 0.5 || u != "eV" {
		Te.Errorf("with unit: %f %s %v", x, u, err)
	}
	if x, _ := F.GetPhysical("Missing", "eV", 2); x != 2 {
		Te.Errorf("default not used: %f", x)
	}
}

func TestBlock(Te *testing.T) {
	F := testFile(Te)
	b, err := F.GetBlock("Data")
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{"1 2 3", "# not a comment", "! neither"}
	if !reflect.DeepEqual(b, want) {
		Te.Errorf("block %q, want %q", b, want)
	}
	dir := Te.TempDir()
	G, _ := Open(write(Te, dir, "blank.fdf", "%block Data\n\n\n 1 2 3\n # not a comment\n\n ! neither\n\n%endblock Data\n"))
	b, err = G.GetBlock("data")
	if err != nil || !reflect.DeepEqual(b, want) {
		Te.Errorf("blank lines changed the block: %q %v", b, err)
	}
	U, _ := Open(write(Te, dir, "unclosed.fdf", "%block Data\n1 2 3\n"))
	if _, err := U.GetBlock("Data"); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("unclosed block should fail: %v", err)
	}
}

func TestDefault(Te *testing.T) {
	dir := Te.TempDir()
	F, _ := Open(write(Te, dir, "a.fdf", "Label 7\n"))
	if n, err := F.GetInt("Label", 5); err != nil || n != 7 {
		Te.Errorf("got %d %v, want 7", n, err)
	}
	G, _ := Open(write(Te, dir, "b.fdf", "Other 7\n"))
	if n, err := G.GetInt("Label", 5); err != nil || n != 5 {
		Te.Errorf("got %d %v, want 5", n, err)
	}
}

func TestMissingInclude(Te *testing.T) {
	logs := observe(Te)
	dir := Te.TempDir()
	F, _ := Open(write(Te, dir, "a.fdf", "%include nothere.fdf\nA 1\n"))
	if n, err := F.GetInt("A", 0); err != nil || n != 1 {
		Te.Errorf("got %d %v", n, err)
	}
	if logs.Len() != 1 {
		Te.Errorf("expected a warning, got %d", logs.Len())
	}
}

func TestRecursiveInclude(Te *testing.T) {
	dir := Te.TempDir()
	write(Te, dir, "b.fdf", "B 2\n%include a.fdf\n")
	F, _ := Open(write(Te, dir, "a.fdf", "%include b.fdf\nA 1\n"))
	if n, err := F.GetInt("B", 0); err != nil || n != 2 {
		Te.Errorf("got %d %v", n, err)
	}
	if _, err := F.GetInt("A", 0); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("a recursive include should give a parse error, got %v", err)
	}
	if _, err := F.Includes(); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("Includes should fail on a recursive include, got %v", err)
	}
}

func TestPipes(Te *testing.T) {
	dir := Te.TempDir()
	write(Te, dir, "pos.dat", "# header\n1 0 0\n\n2 0 0\n")
	write(Te, dir, "other.fdf", "A 10\nB 20\n")
	write(Te, dir, "deep.fdf", "D 4\n")
	write(Te, dir, "extra.fdf", "%include deep.fdf\nE 5\n")
	F, _ := Open(write(Te, dir, "main.fdf", "%include extra.fdf\n%block Pos < pos.dat\nA B < other.fdf\nC 3\nZ < missing.fdf\n%include extra.fdf\n"))
	b, err := F.GetBlock("Pos")
	if err != nil || !reflect.DeepEqual(b, []string{"1 0 0", "2 0 0"}) {
		Te.Errorf("piped block %q %v", b, err)
	}
	if n, err := F.GetInt("B", 0); err != nil || n != 20 {
		Te.Errorf("piped label %d %v", n, err)
	}
	if n, err := F.GetInt("C", 0); err != nil || n != 3 {
		Te.Errorf("label after pipe %d %v", n, err)
	}
	if n, err := F.GetInt("D", 0); err != nil || n != 4 {
		Te.Errorf("nested include %d %v", n, err)
	}
	if _, err := F.GetInt("Z", 0); !errors.Is(err, siesta.ErrMissing) {
		Te.Errorf("pipe from a missing file should fail: %v", err)
	}
	inc, err := F.Includes()
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{"extra.fdf", "deep.fdf", "pos.dat", "other.fdf", "missing.fdf"}
	for i := range want {
		want[i] = filepath.Join(dir, want[i])
	}
	if !reflect.DeepEqual(inc, want) {
		Te.Errorf("includes %v, want %v", inc, want)
	}
}

func TestCompressed(Te *testing.T) {
	dir := Te.TempDir()
	gz := filepath.Join(dir, "a.fdf.gz")
	f, _ := os.Create(gz)
	w := gzip.NewWriter(f)
	w.Write([]byte("A 1\n%block B\nx\n%endblock B\n"))
	w.Close()
	f.Close()
	zs := filepath.Join(dir, "b.fdf.zst")
	f, _ = os.Create(zs)
	z, _ := zstd.NewWriter(f)
	z.Write([]byte("A 2\n"))
	z.Close()
	f.Close()
	F, err := Open(gz)
	if err != nil {
		Te.Fatal(err)
	}
	if n, err := F.GetInt("A", 0); err != nil || n != 1 {
		Te.Errorf("gzip: %d %v", n, err)
	}
	if b, err := F.GetBlock("B"); err != nil || len(b) != 1 {
		Te.Errorf("gzip block: %v %v", b, err)
	}
	if err := F.Set("A", "3", false); !errors.Is(err, siesta.ErrUnsupported) {
		Te.Errorf("compressed files can't be set: %v", err)
	}
	Z, _ := Open(zs)
	if n, err := Z.GetInt("A", 0); err != nil || n != 2 {
		Te.Errorf("zstd: %d %v", n, err)
	}
}

func TestSet(Te *testing.T) {
	dir := Te.TempDir()
	extra := write(Te, dir, "extra.fdf", "Extra 7\n")
	main := write(Te, dir, "main.fdf", "SystemLabel test\n%include extra.fdf\n%block Data\n1\n2\n%endblock Data\nLast 1\n")
	F, _ := Open(main)
	if err := F.Set("extra", "8", true); err != nil {
		Te.Fatal(err)
	}
	if n, _ := F.GetInt("Extra", 0); n != 8 {
		Te.Errorf("Extra not set: %d", n)
	}
	b, _ := os.ReadFile(extra)
	lines := strings.Split(string(b), "\n")
	if lines[0] != "extra 8" || !strings.HasPrefix(lines[1], "# Old value (") || lines[2] != "# Extra 7" {
		Te.Errorf("old value not kept: %q", lines)
	}
	if err := F.Set("Data", []string{"3", "4", "5"}, false); err != nil {
		Te.Fatal(err)
	}
	if b, _ := F.GetBlock("Data"); !reflect.DeepEqual(b, []string{"3", "4", "5"}) {
		Te.Errorf("block not set: %q", b)
	}
	if err := F.Set("New.Label", 2.5, false); err != nil {
		Te.Fatal(err)
	}
	if err := F.Set("Last", "2", false); err != nil {
		Te.Fatal(err)
	}
	if f, _ := F.GetFloat("newlabel", 0); f != 2.5 {
		Te.Errorf("new label not appended: %f", f)
	}
	if n, _ := F.GetInt("Last", 0); n != 2 {
		Te.Errorf("Last not set: %d", n)
	}
	b, _ = os.ReadFile(main)
	if strings.Contains(string(b), "Old value") || strings.Contains(string(b), "\n1\n") {
		Te.Errorf("unexpected content:\n%s", b)
	}
}

func TestPrint(Te *testing.T) {
	if s := Print("A", []string{"x", "y"}); s != "%block A\nx\ny\n%endblock A" {
		Te.Errorf("block printed as %q", s)
	}
	if s := Print("B", true); s != "B .true." {
		Te.Errorf("bool printed as %q", s)
	}
	if s := Print("C", "1 eV"); s != "C 1 eV" {
		Te.Errorf("value printed as %q", s)
	}
}
