/*
 * interfaces.go, part of gosiesta.
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

// Atomer is the basic interface for a set of sites with species.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i.
	//Should panic if out of range.
	Atom(i int) *Atom

	Len() int
}

// Masser can return a slice with the masses of each atom in the reference.
type Masser interface {

	//Returns a slice with the massess of all atoms
	Masses() ([]float64, error)
}

//Errors

// Decorated is the interface for errors that can carry the chain of functions
// they went through. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Decorated interface {
	Error() string
	Decorate(string) []string //If passed an empty string, it should just return the current value.
}

// ReadError is the interface for errors in reading files.
type ReadError interface {
	Decorated
	Critical() bool
	FileName() string
	Label() string
}

var _ ReadError = (*Error)(nil)
var _ Atomer = (*Geometry)(nil)
var _ Masser = (*Geometry)(nil)
