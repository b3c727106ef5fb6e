/*
 * options.go, part of gosiesta.
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

// Options controls the reading and writing of quantities from an fdf file and
// its companion files. Each method returns the current value of an option and
// sets it to a new one, if given.
type Options struct {
	order      []Source
	output     bool
	correctFC  bool
	cutoffFC   float64
	cutoffDist float64
	supercell  [3]int
	origin     bool
	spin       int
	unit       string
	format     string
	quiet      bool //no warning when nsc can't be read
}

// DefaultOptions returns the options used when nil Options are given:
// the default source order for each quantity, read from the fdf file only,
// force constants corrected, no cutoffs, the origin shift applied, the first spin
// component, Angstrom and 8 decimals when writing.
func DefaultOptions() *Options {
	return &Options{
		correctFC:  true,
		cutoffDist: -1,
		supercell:  [3]int{1, 1, 1},
		origin:     true,
		unit:       "Ang",
		format:     "%.8f",
	}
}

// Order is the list of sources tried, in order, when reading a quantity.
// An empty order means the default one for the quantity being read.
func (O *Options) Order(order ...[]Source) []Source {
	if len(order) > 0 {
		O.order = append([]Source(nil), order[0]...)
	}
	return O.order
}

// Output selects whether the lattice and geometry are read from the
// output files of a calculation (XV, nc) before the fdf file.
// It has no effect if an Order is set.
func (O *Options) Output(output ...bool) bool {
	if len(output) > 0 {
		O.output = output[0]
	}
	return O.output
}

// CorrectFC sets whether the force on each displaced atom is replaced by minus
// the sum of the forces on all the atoms, when reading force constants.
func (O *Options) CorrectFC(c ...bool) bool {
	if len(c) > 0 {
		O.correctFC = c[0]
	}
	return O.correctFC
}

// CutoffFC is the absolute value below which force constants are set to zero
// when building a Hessian.
func (O *Options) CutoffFC(c ...float64) float64 {
	if len(c) > 0 && c[0] >= 0 {
		O.cutoffFC = c[0]
	}
	return O.cutoffFC
}

// CutoffDist is the distance, in Angstrom, beyond which force constants are set
// to zero when building a Hessian. It is also the range of the orbitals of the
// Hessian geometry. A value <= 0 disables the cutoff.
func (O *Options) CutoffDist(c ...float64) float64 {
	if len(c) > 0 {
		O.cutoffDist = c[0]
	}
	return O.cutoffDist
}

// Supercell is the number of repetitions, along each lattice vector, of the cell
// used for a force constant calculation.
func (O *Options) Supercell(s ...[3]int) [3]int {
	if len(s) > 0 && s[0][0] > 0 && s[0][1] > 0 && s[0][2] > 0 {
		O.supercell = s[0]
	}
	return O.supercell
}

// Origin sets whether the AtomicCoordinatesOrigin block is applied to the geometry.
func (O *Options) Origin(o ...bool) bool {
	if len(o) > 0 {
		O.origin = o[0]
	}
	return O.origin
}

// Spin is the spin component read for grids. A negative value sums all of them.
func (O *Options) Spin(s ...int) int {
	if len(s) > 0 {
		O.spin = s[0]
	}
	return O.spin
}

// Unit is the unit used when writing: Ang, Bohr, or, for atomic
// coordinates only, Fractional.
func (O *Options) Unit(u ...string) string {
	if len(u) > 0 && u[0] != "" {
		O.unit = u[0]
	}
	return O.unit
}

// Format is the fmt verb used to write real numbers, e.g. "%.8f".
func (O *Options) Format(f ...string) string {
	if len(f) > 0 && f[0] != "" {
		O.format = f[0]
	}
	return O.format
}

// nested returns a copy of O to read the quantities a reader depends on,
// which always use their default order.
func (O *Options) nested() *Options {
	r := *O
	r.order = nil
	r.output = false
	return &r
}

func optionsOrDefault(O *Options) *Options {
	if O == nil {
		return DefaultOptions()
	}
	return O
}
