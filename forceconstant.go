/*
 * forceconstant.go, part of gosiesta.
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

import "fmt"

// ForceConstant is the force-constant tensor from finite displacements, in eV/Angstrom^2.
// It is indexed by displaced atom, displacement direction, displacement
// sign (0 for -, 1 for +), affected atom and force direction.
type ForceConstant struct {
	Ndispl int
	Na     int
	data   []float64
}

// NewForceConstant returns a zero tensor for ndispl displaced atoms and na atoms.
func NewForceConstant(ndispl, na int) *ForceConstant {
	return &ForceConstant{Ndispl: ndispl, Na: na, data: make([]float64, ndispl*3*2*na*3)}
}

func (F *ForceConstant) index(id, dir, sign, ja, fdir int) int {
	if id < 0 || id >= F.Ndispl || ja < 0 || ja >= F.Na || dir < 0 || dir > 2 || fdir < 0 || fdir > 2 || sign < 0 || sign > 1 {
		panic(fmt.Sprintf("ForceConstant: index (%d %d %d %d %d) out of range", id, dir, sign, ja, fdir))
	}
	return (((id*3+dir)*2+sign)*F.Na+ja)*3 + fdir
}

func (F *ForceConstant) At(id, dir, sign, ja, fdir int) float64 {
	return F.data[F.index(id, dir, sign, ja, fdir)]
}

func (F *ForceConstant) Set(id, dir, sign, ja, fdir int, v float64) {
	F.data[F.index(id, dir, sign, ja, fdir)] = v
}

// Forces returns a view (not a copy) of the na*3 forces for the displacement (id, dir, sign).
func (F *ForceConstant) Forces(id, dir, sign int) []float64 {
	i := F.index(id, dir, sign, 0, 0)
	return F.data[i : i+F.Na*3]
}

// Raw returns the underlying data.
func (F *ForceConstant) Raw() []float64 {
	return F.data
}
