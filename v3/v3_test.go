/*
 * v3_test.go, part of gosiesta.
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

package v3

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("expected 3 vectors, got %d", A.NVecs())
	}
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("a slice not divisible by 3 should fail")
	}
	View := A.View(1, 2)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 || View.NVecs() != 2 {
		Te.Errorf("changes in a view should be reflected in the matrix: %v", A)
	}
	C := A.Copy()
	C.Set(2, 2, -1)
	if A.At(2, 2) != 9 {
		Te.Errorf("a copy should not share storage: %v", A)
	}
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	B := Zeros(3)
	B.SomeVecs(A, []int{1, 3, 5})
	if !floats.Equal(B.RawRowView(1), []float64{10, 11, 12}) {
		Te.Errorf("wrong vector selected: %v", B)
	}
	defer func() {
		if r := recover(); r != ErrIndexOutOfRange {
			Te.Errorf("out of range selection should panic with %v, got %v", ErrIndexOutOfRange, r)
		}
	}()
	B.SomeVecs(A, []int{0, 1, 99})
}

func TestAddVec(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	Row, _ := NewMatrix([]float64{10, 20, 30})
	B := Zeros(2)
	B.AddVec(A, Row)
	if !floats.Equal(B.RawRowView(1), []float64{14, 25, 36}) {
		Te.Errorf("AddVec failed: %v", B)
	}
	if !floats.Equal(A.RawRowView(0), []float64{1, 2, 3}) {
		Te.Errorf("AddVec should not alter its operand: %v", A)
	}
	fmt.Println("sum\n", B)
}

func TestDistance(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if d := A.Distance(0, A, 1); !scalar.EqualWithinAbs(d, 5.196152422706632, 1e-12) {
		Te.Errorf("wrong distance %f", d)
	}
}
