/*
 * write.go, part of gosiesta.
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
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
)

// Longest list of atom indexes written in a constraint line.
const maxConstraintLen = 200

// Named atom groups that are written as constraints, and the direction
// each one fixes.
var constraints = []struct {
	name, dir string
}{
	{"CONSTRAIN", ""},
	{"CONSTRAIN-x", " 1. 0. 0."},
	{"CONSTRAIN-y", " 0. 1. 0."},
	{"CONSTRAIN-z", " 0. 0. 1."},
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func writeString(w io.Writer, s string, caller string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return siesta.Decorate(siesta.WrapFile(err, siesta.ErrUnsupported, ""), caller)
	}
	return nil
}

func lattice(b *strings.Builder, L *siesta.Lattice, O *Options) {
	u := capitalize(O.unit)
	conv := 1.0
	if u == "Ang" || u == "Bohr" {
		conv = unit.MustConvert("Ang", u)
	} else {
		u = "Ang"
	}
	f := O.format
	fmt.Fprintf(b, "LatticeConstant 1.0 %s\n", u)
	b.WriteString("%block LatticeVectors\n")
	for i := 0; i < 3; i++ {
		r := L.Cell.RawRowView(i)
		fmt.Fprintf(b, " "+f+" "+f+" "+f+"\n", r[0]*conv, r[1]*conv, r[2]*conv)
	}
	b.WriteString("%endblock LatticeVectors\n")
}

// WriteLattice writes L to w as LatticeConstant and LatticeVectors, in
// Options.Unit (Ang or Bohr, anything else gives Ang) and with Options.Format.
func WriteLattice(w io.Writer, L *siesta.Lattice, O *Options) error {
	O = optionsOrDefault(O)
	var b strings.Builder
	lattice(&b, L, O)
	return writeString(w, b.String(), "fdf.WriteLattice")
}

// WriteGeometry writes G to w: its lattice, the atomic coordinates in
// Options.Unit (any length unit, or Fractional) and the species. The named
// groups CONSTRAIN, CONSTRAIN-x, CONSTRAIN-y and CONSTRAIN-z of G are written
// as a Geometry.Constraints block.
func WriteGeometry(w io.Writer, G *siesta.Geometry, O *Options) error {
	O = optionsOrDefault(O)
	var b strings.Builder
	lattice(&b, G.Lattice, O)
	fmt.Fprintf(&b, "\nNumberOfAtoms %d\n", G.Na())
	u := capitalize(O.unit)
	f := O.format
	xyz := G.Coords
	if u == "Frac" || u == "Fractional" {
		b.WriteString("AtomicCoordinatesFormat Fractional\n")
		var err error
		if xyz, err = G.Fxyz(); err != nil {
			return siesta.Decorate(siesta.WrapFile(err, siesta.ErrInconsistent, ""), "fdf.WriteGeometry")
		}
	} else {
		conv, err := unit.Convert("Ang", u)
		if err != nil {
			return siesta.Decorate(siesta.NewError(siesta.ErrUnit, err.Error(), "", ""), "fdf.WriteGeometry")
		}
		fmt.Fprintf(&b, "AtomicCoordinatesFormat %s\n", u)
		xyz = xyz.Copy()
		xyz.Dense.Scale(conv, xyz.Dense)
		if strings.HasPrefix(f, "%.") {
			//all coordinates with the same width
			wmax := len(fmt.Sprintf(f, mat.Max(xyz.Dense)))
			wmin := len(fmt.Sprintf(f, mat.Min(xyz.Dense)))
			if wmin > wmax {
				wmax = wmin
			}
			f = "%" + strconv.Itoa(wmax) + f[1:]
		}
	}
	species, idx := G.Species()
	iw := len(strconv.Itoa(G.Na()))
	b.WriteString("%block AtomicCoordinatesAndAtomicSpecies\n")
	for ia := 0; ia < G.Na(); ia++ {
		r := xyz.RawRowView(ia)
		fmt.Fprintf(&b, " "+f+" "+f+" "+f+" %d # %*d: %s\n", r[0], r[1], r[2], idx[ia]+1, iw, ia+1, G.Atoms[ia].Tag)
	}
	b.WriteString("%endblock AtomicCoordinatesAndAtomicSpecies\n\n")
	fmt.Fprintf(&b, "NumberOfSpecies %d\n", len(species))
	b.WriteString("%block ChemicalSpeciesLabel\n")
	for i, a := range species {
		fmt.Fprintf(&b, " %d %d %s\n", i+1, a.Z, a.Tag)
	}
	b.WriteString("%endblock ChemicalSpeciesLabel\n")
	open := false
	for _, c := range constraints {
		atoms, ok := G.Names[c.name]
		if !ok {
			continue
		}
		list := rangeList(atoms)
		if len(list) > maxConstraintLen {
			siesta.Logger().Warnf("constraints %s not written, the line would be too long", c.name)
			continue
		}
		if !open {
			b.WriteString("\n# Constraints\n%block Geometry.Constraints\n")
			open = true
		}
		fmt.Fprintf(&b, " atom [%s]%s\n", list, c.dir)
	}
	if open {
		b.WriteString("%endblock\n")
	}
	return writeString(w, b.String(), "fdf.WriteGeometry")
}

// rangeList returns the 1-based indexes of the 0-based atoms as a
// comma-separated list where consecutive runs are written as "first -- last".
func rangeList(atoms []int) string {
	s := append([]int(nil), atoms...)
	sort.Ints(s)
	var parts []string
	for i := 0; i < len(s); {
		j := i
		for j+1 < len(s) && s[j+1] <= s[j]+1 {
			j++
		}
		if s[j] > s[i] {
			parts = append(parts, fmt.Sprintf("%d -- %d", s[i]+1, s[j]+1))
		} else {
			parts = append(parts, strconv.Itoa(s[i]+1))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}
