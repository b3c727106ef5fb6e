/*
 * sparse.go, part of gosiesta.
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

import (
	"fmt"
	"math"
	"sort"
)

// MatrixKind tells what physical quantity a SparseOrbital holds.
type MatrixKind int

const (
	Hamiltonian MatrixKind = iota
	DensityMatrix
	EnergyDensityMatrix
	DynamicalMatrix
)

func (k MatrixKind) String() string {
	switch k {
	case Hamiltonian:
		return "Hamiltonian"
	case DensityMatrix:
		return "DensityMatrix"
	case EnergyDensityMatrix:
		return "EnergyDensityMatrix"
	case DynamicalMatrix:
		return "DynamicalMatrix"
	}
	return fmt.Sprintf("MatrixKind(%d)", int(k))
}

// Element is the key of a sparse matrix element: the orbital row and column
// (both in the unit cell) and the periodic image of the column orbital.
type Element struct {
	Row int
	Col int
	Isc [3]int
}

// SparseOrbital is a sparse matrix in the orbital basis of a Geometry.
// Each element holds Spin values and, for non-orthogonal bases, the overlap
// as an extra, last, value.
type SparseOrbital struct {
	Geometry   *Geometry
	Kind       MatrixKind
	Spin       int
	Orthogonal bool
	Ef         float64 //Fermi level in eV, when the source file has it
	values     map[Element][]float64
}

// NewSparseOrbital returns an empty sparse matrix with spin components attached to geom.
func NewSparseOrbital(geom *Geometry, kind MatrixKind, spin int, orthogonal bool) *SparseOrbital {
	if spin < 1 {
		spin = 1
	}
	return &SparseOrbital{Geometry: geom, Kind: kind, Spin: spin, Orthogonal: orthogonal, values: make(map[Element][]float64)}
}

// Dim returns the number of values per element.
func (S *SparseOrbital) Dim() int {
	if S.Orthogonal {
		return S.Spin
	}
	return S.Spin + 1
}

// No returns the number of orbitals of the attached geometry.
func (S *SparseOrbital) No() int {
	return S.Geometry.No()
}

// NNZ returns the number of stored elements.
func (S *SparseOrbital) NNZ() int {
	return len(S.values)
}

// Set sets the value of component dim of the element e.
func (S *SparseOrbital) Set(e Element, dim int, v float64) {
	vals, ok := S.values[e]
	if !ok {
		vals = make([]float64, S.Dim())
		S.values[e] = vals
	}
	vals[dim] = v
}

// Add adds v to the component dim of the element e.
func (S *SparseOrbital) Add(e Element, dim int, v float64) {
	vals, ok := S.values[e]
	if !ok {
		vals = make([]float64, S.Dim())
		S.values[e] = vals
	}
	vals[dim] += v
}

// At returns the component dim of element e, 0 if the element is not stored.
func (S *SparseOrbital) At(e Element, dim int) float64 {
	vals, ok := S.values[e]
	if !ok {
		return 0
	}
	return vals[dim]
}

// Overlap returns the overlap of the element e, which is the identity for orthogonal bases.
func (S *SparseOrbital) Overlap(e Element) float64 {
	if S.Orthogonal {
		if e.Row == e.Col && e.Isc == [3]int{} {
			return 1
		}
		return 0
	}
	return S.At(e, S.Spin)
}

// Elements returns the stored elements sorted by row, image and column.
func (S *SparseOrbital) Elements() []Element {
	ret := make([]Element, 0, len(S.values))
	for e := range S.values {
		ret = append(ret, e)
	}
	sort.Slice(ret, func(i, j int) bool {
		a, b := ret[i], ret[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		for k := 2; k >= 0; k-- {
			if a.Isc[k] != b.Isc[k] {
				return a.Isc[k] < b.Isc[k]
			}
		}
		return a.Col < b.Col
	})
	return ret
}

// EliminateZeros removes the elements whose values all have absolute value
// less than or equal to atol.
func (S *SparseOrbital) EliminateZeros(atol float64) {
	for e, vals := range S.values {
		zero := true
		for _, v := range vals {
			if math.Abs(v) > atol {
				zero = false
				break
			}
		}
		if zero {
			delete(S.values, e)
		}
	}
}

func (S *SparseOrbital) String() string {
	return fmt.Sprintf("%s{spin: %d, orthogonal: %t, nnz: %d, %s}", S.Kind, S.Spin, S.Orthogonal, S.NNZ(), S.Geometry)
}
