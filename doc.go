/*
 * doc.go, part of gosiesta.
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

/*
Package siesta holds the data structures for the input and output of the SIESTA
DFT code: species and their basis orbitals, periodic lattices, geometries,
sparse orbital matrices (Hamiltonian, density matrices, dynamical matrices),
real-space grids and force-constant tensors.

The files are read and written by the subpackages: fdf handles the fdf input
format and resolves each quantity from whichever companion file (XV, nc, TSHS,
DM...) is available, while the files/ packages read the individual companion
formats.

All lengths are in Angstrom, energies in eV and masses in amu.

Recoverable problems are reported as warnings through the zap logger returned
by Logger(), errors are *Error values that can be classified with errors.Is and
the ErrMissing, ErrInconsistent, ErrUnsupported, ErrParse and ErrUnit kinds.
*/
package siesta
