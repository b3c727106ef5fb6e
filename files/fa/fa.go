/*
 * fa.go, part of gosiesta.
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

// Package fa reads the SIESTA .FA and .FAC force files (eV/Angstrom).
package fa

import (
	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/internal/text"
	v3 "github.com/rmera/gosiesta/v3"
)

// ReadForce reads the atomic forces in the file name. The file starts with the number
// of atoms, followed by one "index fx fy fz" line per atom.
func ReadForce(name string) (*v3.Matrix, error) {
	S, err := text.Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "fa.ReadForce")
	}
	defer S.Close()
	f, err := S.MustFields(1)
	if err != nil {
		return nil, siesta.Decorate(err, "fa.ReadForce")
	}
	n, err := S.Ints(f[:1])
	if err != nil {
		return nil, siesta.Decorate(err, "fa.ReadForce")
	}
	if n[0] <= 0 {
		return nil, siesta.NewError(siesta.ErrParse, "no atoms in force file", name, "")
	}
	forces := v3.Zeros(n[0])
	for i := 0; i < n[0]; i++ {
		f, err := S.MustFields(4)
		if err != nil {
			return nil, siesta.Decorate(err, "fa.ReadForce")
		}
		v, err := S.Floats(f[1:4])
		if err != nil {
			return nil, siesta.Decorate(err, "fa.ReadForce")
		}
		copy(forces.RawRowView(i), v)
	}
	return forces, nil
}
