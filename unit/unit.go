/*
 * unit.go, part of gosiesta.
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

// Package unit converts between the physical units understood by SIESTA.
// Every unit belongs to a group (length, energy...) and carries its value in
// SI units, so conversions are only defined within a group.
// Unit names are matched case-insensitively, as SIESTA does.
package unit

import (
	"fmt"
	"sort"
	"strings"
)

type entry struct {
	name  string //canonical spelling
	group string
	si    float64
}

// Values are the ones in SIESTA's own unit table, not the latest CODATA ones,
// so numbers read from SIESTA outputs round-trip exactly.
var table = []entry{
	{"kg", "mass", 1},
	{"g", "mass", 1e-3},
	{"amu", "mass", 1.66054e-27},

	{"m", "length", 1},
	{"cm", "length", 1e-2},
	{"nm", "length", 1e-9},
	{"Ang", "length", 1e-10},
	{"Bohr", "length", 0.529177e-10},

	{"s", "time", 1},
	{"fs", "time", 1e-15},
	{"ps", "time", 1e-12},
	{"ns", "time", 1e-9},

	{"J", "energy", 1},
	{"erg", "energy", 1e-7},
	{"eV", "energy", 1.60219e-19},
	{"meV", "energy", 1.60219e-22},
	{"Ry", "energy", 2.17991e-18},
	{"mRy", "energy", 2.17991e-21},
	{"Hartree", "energy", 4.35982e-18},
	{"Ha", "energy", 4.35982e-18},
	{"K", "energy", 1.38066e-23},
	{"kcal/mol", "energy", 6.9477e-21},
	{"kJ/mol", "energy", 1.6606e-21},
	{"Hz", "energy", 6.6262e-34},
	{"THz", "energy", 6.6262e-22},
	{"cm-1", "energy", 1.986e-23},
	{"cm**-1", "energy", 1.986e-23},
	{"cm^-1", "energy", 1.986e-23},

	{"N", "force", 1},
	{"eV/Ang", "force", 1.60219e-9},
	{"Ry/Bohr", "force", 4.11943e-8},

	{"Pa", "pressure", 1},
	{"GPa", "pressure", 1e9},
	{"atm", "pressure", 1.01325e5},
	{"bar", "pressure", 1e5},
	{"Kbar", "pressure", 1e8},
	{"Mbar", "pressure", 1e11},
	{"Ry/Bohr**3", "pressure", 1.47108e13},
	{"eV/Ang**3", "pressure", 1.60219e11},

	{"c", "charge", 1},
	{"e", "charge", 1.602177e-19},
}

var defaults = map[string]string{
	"mass":     "amu",
	"length":   "Ang",
	"time":     "fs",
	"energy":   "eV",
	"force":    "eV/Ang",
	"pressure": "GPa",
	"charge":   "e",
}

var byName = index()

// index builds the case-insensitive lookup table and checks that every
// group default is a known unit of that group.
func index() map[string]entry {
	ret := make(map[string]entry, len(table))
	for _, e := range table {
		k := strings.ToLower(e.name)
		if _, ok := ret[k]; ok {
			continue //case-insensitive collisions: the first spelling wins.
		}
		ret[k] = e
	}
	for g, d := range defaults {
		if e, ok := ret[strings.ToLower(d)]; !ok || e.group != g {
			panic(fmt.Sprintf("unit: default %s for group %s not in the unit table", d, g))
		}
	}
	return ret
}

func lookup(name string) (entry, error) {
	e, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return e, Error{fmt.Sprintf("unknown unit %q", name), name}
	}
	return e, nil
}

// Known returns true if name is a unit in the table.
func Known(name string) bool {
	_, err := lookup(name)
	return err == nil
}

// Canonical returns the canonical spelling of the unit name (e.g. "ang" gives "Ang").
func Canonical(name string) (string, error) {
	e, err := lookup(name)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// Group returns the group (length, energy...) to which the unit name belongs.
func Group(name string) (string, error) {
	e, err := lookup(name)
	if err != nil {
		return "", err
	}
	return e.group, nil
}

// Default returns the default unit for a group, i.e. the unit in which
// values of that group are returned when no unit is requested.
func Default(group string) (string, error) {
	d, ok := defaults[strings.ToLower(group)]
	if !ok {
		return "", Error{fmt.Sprintf("unknown unit group %q", group), group}
	}
	return d, nil
}

// Groups returns the sorted names of all unit groups.
func Groups() []string {
	ret := make([]string, 0, len(defaults))
	for g := range defaults {
		ret = append(ret, g)
	}
	sort.Strings(ret)
	return ret
}

// Convert returns the factor that transforms a value in the unit from to the unit to.
// It returns an error if either unit is unknown or if they belong to different groups.
func Convert(from, to string) (float64, error) {
	f, err := lookup(from)
	if err != nil {
		return 0, err
	}
	t, err := lookup(to)
	if err != nil {
		return 0, err
	}
	if f.group != t.group {
		return 0, Error{fmt.Sprintf("can't convert %s (%s) to %s (%s)", f.name, f.group, t.name, t.group), from}
	}
	return f.si / t.si, nil
}

// MustConvert is like Convert but panics on error. It is meant for unit pairs
// known at compile time.
func MustConvert(from, to string) float64 {
	c, err := Convert(from, to)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// Some conversions used all over the library.
var (
	BohrToAng     = MustConvert("Bohr", "Ang")
	AngToBohr     = MustConvert("Ang", "Bohr")
	RyToEV        = MustConvert("Ry", "eV")
	RyBohrToEVAng = MustConvert("Ry/Bohr", "eV/Ang")
)

// Error is returned for unknown units and group mismatches.
type Error struct {
	message string
	unit    string
}

func (err Error) Error() string { return "unit: " + err.message }

// Unit returns the offending unit (or group) name.
func (err Error) Unit() string { return err.unit }
