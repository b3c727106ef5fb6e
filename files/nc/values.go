/*
 * values.go, part of gosiesta.
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

package nc

import (
	"fmt"
	"reflect"
)

// flatten returns the numeric values in v, which can be a scalar or a (nested) slice
// of any numeric type, in row-major order, and the shape of v.
func flatten(v interface{}) ([]float64, []int, error) {
	var shape []int
	rv := reflect.ValueOf(v)
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}
	ret := make([]float64, 0, 64)
	var walk func(r reflect.Value) error
	walk = func(r reflect.Value) error {
		switch r.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < r.Len(); i++ {
				if err := walk(r.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Float32, reflect.Float64:
			ret = append(ret, r.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			ret = append(ret, float64(r.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			ret = append(ret, float64(r.Uint()))
		case reflect.Interface:
			return walk(r.Elem())
		default:
			return fmt.Errorf("non numeric value of kind %s", r.Kind())
		}
		return nil
	}
	if err := walk(rv); err != nil {
		return nil, nil, err
	}
	return ret, shape, nil
}

// ints is flatten for integer data.
func ints(v interface{}) ([]int, error) {
	f, _, err := flatten(v)
	if err != nil {
		return nil, err
	}
	ret := make([]int, len(f))
	for i, x := range f {
		ret[i] = int(x)
	}
	return ret, nil
}

// str returns v as a string, trimming the NUL padding of char arrays.
func str(v interface{}) string {
	switch t := v.(type) {
	case string:
		return trimNul(t)
	case []string:
		if len(t) > 0 {
			return trimNul(t[0])
		}
	case []byte:
		return trimNul(string(t))
	}
	return fmt.Sprint(v)
}

func trimNul(s string) string {
	for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}
