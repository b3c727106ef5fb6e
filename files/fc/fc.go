/*
 * fc.go, part of gosiesta.
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

// Package fc reads the SIESTA .FC force-constant files.
package fc

import (
	"fmt"
	"io"
	"math"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/internal/text"
)

// ReadForceConstant reads the force constants in the file name, in eV/Angstrom^2.
// na is the number of atoms in the system. If na is 0 or less, it is guessed from
// the number of lines: all atoms displaced if possible, a single one otherwise.
// After a header line, the file has 3 values per line, for each displaced atom,
// direction, sign (-, +) and atom.
func ReadForceConstant(name string, na int) (*siesta.ForceConstant, error) {
	S, err := text.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "fc.ReadForceConstant")
	}
	defer S.Close()
	if _, err := S.MustFields(1); err != nil {
		return nil, siesta.Decorate(err, "fc.ReadForceConstant")
	}
	data := make([]float64, 0, 3*64)
	for {
		f, err := S.Fields()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, siesta.Decorate(err, "fc.ReadForceConstant")
		}
		if len(f) < 3 {
			return nil, S.Errorf("expected 3 values, got %d", len(f))
		}
		v, err := S.Floats(f[:3])
		if err != nil {
			return nil, siesta.Decorate(err, "fc.ReadForceConstant")
		}
		data = append(data, v...)
	}
	rows := len(data) / 3
	if rows == 0 || rows%6 != 0 {
		return nil, siesta.NewError(siesta.ErrParse, fmt.Sprintf("%d force lines is not a multiple of 6", rows), name, "")
	}
	if na <= 0 {
		na = rows / 6
		if r := int(math.Round(math.Sqrt(float64(rows / 6)))); r*r == rows/6 {
			na = r
		}
	}
	if rows%(6*na) != 0 {
		return nil, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("%d force lines do not fit %d atoms", rows, na), name, "")
	}
	F := siesta.NewForceConstant(rows/(6*na), na)
	copy(F.Raw(), data)
	return F, nil
}
