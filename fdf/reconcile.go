/*
 * reconcile.go, part of gosiesta.
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
	siesta "github.com/rmera/gosiesta"
)

// Reconcile puts the atoms of geom in the geometry of the sparse matrix S,
// which usually comes from a file without atomic information. It returns true
// if S and geom have the same number of orbitals.
//
// If the numbers of atoms differ but the numbers of orbitals match, geom (with
// the periodic images of S) replaces the geometry of S. If both differ, nothing
// is changed and a warning is logged. With the same number of atoms, the
// species of geom are put in S, site by site, keeping the orbitals of S where
// their number does not match.
func Reconcile(S *siesta.SparseOrbital, geom *siesta.Geometry) bool {
	SG := S.Geometry
	if SG.Na() != geom.Na() {
		if SG.No() == geom.No() {
			G := geom.Copy()
			G.Lattice.Nsc = SG.Lattice.Nsc
			S.Geometry = G
			return true
		}
		siesta.Logger().Warnf("can't replace the geometry of the %s (%d atoms, %d orbitals) with one of %d atoms and %d orbitals, the geometry may be wrong", S.Kind, SG.Na(), SG.No(), geom.Na(), geom.No())
		return false
	}
	same := SG.No() == geom.No()
	species, idx := geom.Species()
	for is, a := range species {
		first := -1
		for i, s := range idx {
			if s == is {
				first = i
				break
			}
		}
		if first < 0 {
			continue
		}
		if Sa := SG.Atoms[first]; Sa.No() != a.No() {
			a = &siesta.Atom{Z: a.Z, Tag: a.Tag, Mass: a.Mass, Orbitals: append([]siesta.Orbital(nil), Sa.Orbitals...)}
		}
		for i, s := range idx {
			if s == is {
				SG.Atoms[i] = a
			}
		}
	}
	return same
}
