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
Package fdf reads and writes SIESTA fdf input files.

An fdf file is a list of labels, each with a value or a block of lines:

	SystemLabel  water
	MeshCutoff   300. Ry
	%block ChemicalSpeciesLabel
	 1 8 O
	 2 1 H
	%endblock ChemicalSpeciesLabel
	%include basis.fdf
	Label1 Label2 < other.fdf

Labels are case insensitive and the characters '_', '-' and '.' in them
are ignored, so MD.FCFirst and mdfcfirst are the same label. The first
occurrence of a label wins. Comments start with '#', '!' or ';'.
Inside a block nothing is treated as a comment.

Besides single values (Get, GetInt, GetPhysical...), a File can read whole
quantities (lattice, geometry, basis, forces, force constants, Hessian,
density matrices, Hamiltonian and grids). Each quantity is looked for, in a
given order, in the fdf file itself and in the files that SIESTA writes next to
it, named after SystemLabel: <label>.XV, <label>.nc, <label>.TSHS and so on.
The first source that exists is used. See DefaultOrder and Options.Order.
*/
package fdf
