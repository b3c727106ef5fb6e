/*
 * grid.go, part of gosiesta.
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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grid is a real-space scalar field sampled on a regular grid spanning a lattice.
// Data is stored with the first axis running fastest.
type Grid struct {
	Shape    [3]int
	Lattice  *Lattice
	Geometry *Geometry //may be nil
	Data     []float64
}

// NewGrid returns a zero-valued grid with the given shape.
func NewGrid(shape [3]int, lattice *Lattice) *Grid {
	return &Grid{Shape: shape, Lattice: lattice, Data: make([]float64, shape[0]*shape[1]*shape[2])}
}

// Index returns the position in Data of the grid point (i, j, k).
func (G *Grid) Index(i, j, k int) int {
	return i + G.Shape[0]*(j+G.Shape[1]*k)
}

func (G *Grid) At(i, j, k int) float64 {
	return G.Data[G.Index(i, j, k)]
}

func (G *Grid) Set(i, j, k int, v float64) {
	G.Data[G.Index(i, j, k)] = v
}

// DVolume returns the volume element of the grid, in Angstrom^3.
func (G *Grid) DVolume() float64 {
	return G.Lattice.Volume() / float64(len(G.Data))
}

// Integrate returns the sum of the grid values times the volume element.
func (G *Grid) Integrate() float64 {
	return floats.Sum(G.Data) * G.DVolume()
}

// Stats returns the smallest and largest grid values, their mean and their
// standard deviation. An empty grid gives zeros.
func (G *Grid) Stats() (min, max, mean, std float64) {
	if len(G.Data) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.MeanStdDev(G.Data, nil)
	if len(G.Data) == 1 {
		std = 0
	}
	return floats.Min(G.Data), floats.Max(G.Data), mean, std
}

func (G *Grid) String() string {
	return fmt.Sprintf("Grid{shape: %v, %s}", G.Shape, G.Lattice)
}
