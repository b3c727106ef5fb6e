/*
 * lattice.go, part of gosiesta.
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

	v3 "github.com/rmera/gosiesta/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Lattice is a periodic cell. Each row of Cell is a lattice vector, in Angstrom.
// Nsc is the number of periodic images along each lattice vector
// that interact with the unit cell (always odd).
type Lattice struct {
	Cell *v3.Matrix
	Nsc  [3]int
}

// NewLattice returns a lattice with the given cell (copied) and nsc. If nsc is not given,
// [1 1 1] is used.
func NewLattice(cell *v3.Matrix, nsc ...int) *Lattice {
	if cell.NVecs() != 3 {
		panic(fmt.Sprintf("NewLattice: cell must be 3x3, got %d rows", cell.NVecs()))
	}
	L := &Lattice{Cell: cell.Copy(), Nsc: [3]int{1, 1, 1}}
	for i := 0; i < len(nsc) && i < 3; i++ {
		L.Nsc[i] = nsc[i]
	}
	return L
}

// LatticeFromParameters builds a cell from the lengths a, b, c (Angstrom)
// and the angles alpha, beta, gamma (degrees). The first vector lies along x
// and the second one in the xy plane.
func LatticeFromParameters(a, b, c, alpha, beta, gamma float64) *Lattice {
	rad := math.Pi / 180
	ca, cb, cg := math.Cos(alpha*rad), math.Cos(beta*rad), math.Cos(gamma*rad)
	sg := math.Sin(gamma * rad)
	cell := v3.Zeros(3)
	cell.Set(0, 0, a)
	cell.Set(1, 0, b*cg)
	cell.Set(1, 1, b*sg)
	x := c * cb
	y := c * (ca - cb*cg) / sg
	cell.Set(2, 0, x)
	cell.Set(2, 1, y)
	cell.Set(2, 2, math.Sqrt(c*c-x*x-y*y))
	return &Lattice{Cell: cell, Nsc: [3]int{1, 1, 1}}
}

// Copy returns a deep copy of the lattice.
func (L *Lattice) Copy() *Lattice {
	return &Lattice{Cell: L.Cell.Copy(), Nsc: L.Nsc}
}

// Length returns the length of the lattice vector i.
func (L *Lattice) Length(i int) float64 {
	return floats.Norm(L.Cell.RawRowView(i), 2)
}

// Parameters returns the lengths (Angstrom) and angles (degrees) of the cell.
func (L *Lattice) Parameters() (lengths, angles [3]float64) {
	for i := 0; i < 3; i++ {
		lengths[i] = L.Length(i)
	}
	angle := func(i, j int) float64 {
		d := floats.Dot(L.Cell.RawRowView(i), L.Cell.RawRowView(j))
		return math.Acos(d/(lengths[i]*lengths[j])) * 180 / math.Pi
	}
	angles[0] = angle(1, 2)
	angles[1] = angle(0, 2)
	angles[2] = angle(0, 1)
	return
}

// Volume returns the cell volume in Angstrom^3.
func (L *Lattice) Volume() float64 {
	return math.Abs(mat.Det(L.Cell.Dense))
}

// NImages returns the total number of periodic images (product of Nsc).
func (L *Lattice) NImages() int {
	return L.Nsc[0] * L.Nsc[1] * L.Nsc[2]
}

// ImageIndex returns the index of the periodic image with offset isc. The image
// index runs fastest along the first lattice vector, and within an axis the
// offsets are ordered 0, 1, ..., n/2, -n/2, ..., -1.
// It returns -1 if the offset lies outside Nsc.
func (L *Lattice) ImageIndex(isc [3]int) int {
	idx := 0
	for i := 2; i >= 0; i-- {
		n := L.Nsc[i]
		if isc[i] > n/2 || isc[i] < -(n/2) {
			return -1
		}
		idx = idx*n + ((isc[i]%n)+n)%n
	}
	return idx
}

// Image returns the offset of the periodic image with index idx. It is the inverse of ImageIndex.
func (L *Lattice) Image(idx int) [3]int {
	var isc [3]int
	for i := 0; i < 3; i++ {
		n := L.Nsc[i]
		v := idx % n
		idx /= n
		if v > n/2 {
			v -= n
		}
		isc[i] = v
	}
	return isc
}

// Offset returns the cartesian translation vector for the image offset isc.
func (L *Lattice) Offset(isc [3]int) []float64 {
	ret := make([]float64, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[j] += float64(isc[i]) * L.Cell.At(i, j)
		}
	}
	return ret
}

// ICell returns the inverse of the cell matrix.
func (L *Lattice) ICell() (*v3.Matrix, error) {
	inv := v3.Zeros(3)
	if err := inv.Inverse(L.Cell.Dense); err != nil {
		return nil, NewError(ErrInconsistent, "singular lattice: "+err.Error(), "", "")
	}
	return inv, nil
}

// Fractional returns the coordinates in xyz expressed as fractions of the lattice vectors.
func (L *Lattice) Fractional(xyz *v3.Matrix) (*v3.Matrix, error) {
	inv, err := L.ICell()
	if err != nil {
		return nil, Decorate(err, "Fractional")
	}
	ret := v3.Zeros(xyz.NVecs())
	ret.Mul(xyz, inv)
	return ret, nil
}

// Cartesian returns the cartesian coordinates corresponding to the fractional coordinates frac.
func (L *Lattice) Cartesian(frac *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(frac.NVecs())
	ret.Mul(frac, L.Cell)
	return ret
}

func (L *Lattice) String() string {
	l, a := L.Parameters()
	return fmt.Sprintf("Lattice{a: %.4f, b: %.4f, c: %.4f, alpha: %.2f, beta: %.2f, gamma: %.2f, nsc: %v}",
		l[0], l[1], l[2], a[0], a[1], a[2], L.Nsc)
}
