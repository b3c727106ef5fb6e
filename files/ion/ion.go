/*
 * ion.go, part of gosiesta.
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

// Package ion reads the <species>.ion.xml basis files written by SIESTA.
package ion

import (
	"encoding/xml"
	"os"
	"strings"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
)

type orbital struct {
	L          int     `xml:"l,attr"`
	N          int     `xml:"n,attr"`
	Z          int     `xml:"z,attr"`
	Ispol      int     `xml:"ispol,attr"`
	Population float64 `xml:"population,attr"`
	Cutoff     float64 `xml:"radfunc>cutoff"` //Bohr
}

type ion struct {
	XMLName  xml.Name  `xml:"ion"`
	Symbol   string    `xml:"symbol"`
	Label    string    `xml:"label"`
	Z        int       `xml:"z"`
	Mass     float64   `xml:"mass"`
	Orbitals []orbital `xml:"orbitals>orbital"`
}

// ReadIon returns the species described in the ion.xml file name. Each nl shell
// in the file gives its 2l+1 orbitals, with the cutoff radius in Angstrom.
func ReadIon(name string) (*siesta.Atom, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrMissing, name), "ion.ReadIon")
	}
	defer f.Close()
	var in ion
	if err := xml.NewDecoder(f).Decode(&in); err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrParse, name), "ion.ReadIon")
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = strings.TrimSpace(in.Symbol)
	}
	var orbs []siesta.Orbital
	for _, o := range in.Orbitals {
		orbs = append(orbs, siesta.ShellOrbitals(o.N, o.L, o.Z, o.Ispol != 0, o.Cutoff*unit.BohrToAng, o.Population)...)
	}
	a := siesta.NewAtom(in.Z, label, orbs...)
	if in.Mass > 0 {
		a.Mass = in.Mass
	}
	return a, nil
}
