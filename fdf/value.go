/*
 * value.go, part of gosiesta.
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
	"fmt"
	"strconv"
	"strings"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
)

// Kind is the classification of an fdf value.
type Kind int

const (
	None Kind = iota
	Block
	NumericArray
	Bool
	Real
	Integer
	Physical
	Opaque
)

var kindNames = [...]string{"none", "block", "numeric array", "bool", "real", "integer", "physical", "opaque"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

var logicals = map[string]bool{
	".true.": true, "true": true, "yes": true, "y": true, "t": true,
	".false.": false, "false": false, "no": false, "n": false, "f": false,
}

// Classify returns the kind of the value v, which can be nil, a block
// ([]string), a numeric array ([]float64 or []int) or a string.
// Any other type is Opaque.
func Classify(v interface{}) Kind {
	switch t := v.(type) {
	case nil:
		return None
	case []string:
		return Block
	case []float64, []int:
		return NumericArray
	case string:
		return classifyString(t)
	}
	return Opaque
}

func classifyString(s string) Kind {
	f := strings.Fields(s)
	switch len(f) {
	case 1:
		v := strings.ToLower(f[0])
		if _, ok := logicals[v]; ok {
			return Bool
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			if strings.Contains(v, ".") {
				return Real
			}
			if _, err := strconv.Atoi(v); err == nil {
				return Integer
			}
			return Real //1e3, inf
		}
	case 2:
		if _, err := strconv.ParseFloat(f[0], 64); err == nil {
			return Physical
		}
	}
	return Opaque
}

// Get returns the raw value of label: nil if it is not present, a []string
// for blocks and a string otherwise.
func (F *File) Get(label string) (interface{}, error) {
	v, err := F.readLabel(label)
	return v.value, siesta.Decorate(err, "fdf.Get")
}

// Type returns the kind of the value of label.
func (F *File) Type(label string) (Kind, error) {
	v, err := F.readLabel(label)
	if err != nil {
		return None, siesta.Decorate(err, "fdf.Type")
	}
	return Classify(v.value), nil
}

// scalar returns the string value of label, and whether it was found.
// Blocks give an error.
func (F *File) scalar(label, caller string) (string, found, error) {
	v, err := F.readLabel(label)
	if err != nil {
		return "", v, siesta.Decorate(err, caller)
	}
	switch t := v.value.(type) {
	case nil:
		return "", v, nil
	case string:
		return t, v, nil
	}
	return "", v, siesta.Decorate(siesta.NewError(siesta.ErrParse, "block found where a value was expected", v.file, label), caller)
}

func parseError(v found, label, format string, args ...interface{}) error {
	return siesta.NewError(siesta.ErrParse, fmt.Sprintf(format, args...), v.file, label)
}

// GetString returns the value of label as a string, or def if label is not present.
func (F *File) GetString(label, def string) (string, error) {
	s, v, err := F.scalar(label, "fdf.GetString")
	if err != nil || v.value == nil {
		return def, err
	}
	return s, nil
}

// GetInt returns the integer value of label, or def if it is not present.
func (F *File) GetInt(label string, def int) (int, error) {
	s, v, err := F.scalar(label, "fdf.GetInt")
	if err != nil || v.value == nil {
		return def, err
	}
	if Classify(s) != Integer {
		return def, siesta.Decorate(parseError(v, label, "%q is not an integer", s), "fdf.GetInt")
	}
	i, _ := strconv.Atoi(strings.TrimSpace(s))
	return i, nil
}

// GetFloat returns the real value of label, or def if it is not present.
// Integers are accepted. Physical values are converted to the default unit
// of their group (Ang, eV...).
func (F *File) GetFloat(label string, def float64) (float64, error) {
	s, v, err := F.scalar(label, "fdf.GetFloat")
	if err != nil || v.value == nil {
		return def, err
	}
	switch Classify(s) {
	case Real, Integer:
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, nil
	case Physical:
		f, err := physical(s, "", v, label)
		return f, siesta.Decorate(err, "fdf.GetFloat")
	}
	return def, siesta.Decorate(parseError(v, label, "%q is not a number", s), "fdf.GetFloat")
}

// GetBool returns the logical value of label, or def if it is not present.
// A label with no value is true.
func (F *File) GetBool(label string, def bool) (bool, error) {
	s, v, err := F.scalar(label, "fdf.GetBool")
	if err != nil || v.value == nil {
		return def, err
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return true, nil
	}
	b, ok := logicals[s]
	if !ok {
		return def, siesta.Decorate(parseError(v, label, "%q is not a logical value", s), "fdf.GetBool")
	}
	return b, nil
}

// GetBlock returns the lines of the block label, or nil if it is not present.
func (F *File) GetBlock(label string) ([]string, error) {
	v, err := F.readLabel(label)
	if err != nil {
		return nil, siesta.Decorate(err, "fdf.GetBlock")
	}
	switch t := v.value.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	}
	return nil, siesta.Decorate(parseError(v, label, "value found where a block was expected"), "fdf.GetBlock")
}

// GetPhysical returns the physical value of label converted to the unit u
// (e.g. "eV"), or def if label is not present. If u is empty the default unit of
// the group is used. A unit of a different group than the one in the file gives
// an ErrUnit error. A value without unit is returned as it is.
func (F *File) GetPhysical(label, u string, def float64) (float64, error) {
	s, v, err := F.scalar(label, "fdf.GetPhysical")
	if err != nil || v.value == nil {
		return def, err
	}
	switch Classify(s) {
	case Physical:
		f, err := physical(s, u, v, label)
		return f, siesta.Decorate(err, "fdf.GetPhysical")
	case Real, Integer:
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, nil
	}
	return def, siesta.Decorate(parseError(v, label, "%q is not a physical value", s), "fdf.GetPhysical")
}

// GetWithUnit returns the value of label and its unit, as they are in the file.
// If label is not present, def and defUnit are returned.
func (F *File) GetWithUnit(label string, def float64, defUnit string) (float64, string, error) {
	s, v, err := F.scalar(label, "fdf.GetWithUnit")
	if err != nil || v.value == nil {
		return def, defUnit, err
	}
	f := strings.Fields(s)
	switch Classify(s) {
	case Physical:
		x, _ := strconv.ParseFloat(f[0], 64)
		return x, f[1], nil
	case Real, Integer:
		x, _ := strconv.ParseFloat(f[0], 64)
		return x, "", nil
	}
	return def, defUnit, siesta.Decorate(parseError(v, label, "%q is not a physical value", s), "fdf.GetWithUnit")
}

// physical converts the "value unit" string s to the unit to, or to the
// default unit of its group if to is empty.
func physical(s, to string, v found, label string) (float64, error) {
	f := strings.Fields(s)
	x, _ := strconv.ParseFloat(f[0], 64)
	group, err := unit.Group(f[1])
	if err != nil {
		return 0, siesta.NewError(siesta.ErrUnit, err.Error(), v.file, label)
	}
	if to == "" {
		to, _ = unit.Default(group)
	} else if g, err := unit.Group(to); err != nil || g != group {
		return 0, siesta.NewError(siesta.ErrUnit, fmt.Sprintf("requested unit %s but found %s", to, f[1]), v.file, label)
	}
	c, err := unit.Convert(f[1], to)
	if err != nil {
		return 0, siesta.NewError(siesta.ErrUnit, err.Error(), v.file, label)
	}
	return x * c, nil
}

// Print returns the fdf text for key with the given value. Blocks ([]string)
// are printed between %block and %endblock lines.
func Print(key string, value interface{}) string {
	switch t := value.(type) {
	case []string:
		var b strings.Builder
		fmt.Fprintf(&b, "%%block %s\n", key)
		for _, l := range t {
			b.WriteString(strings.TrimRight(l, "\n"))
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%%endblock %s", key)
		return b.String()
	case bool:
		if t {
			return key + " .true."
		}
		return key + " .false."
	case []float64:
		s := make([]string, len(t))
		for i, v := range t {
			s[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return key + " " + strings.Join(s, " ")
	}
	return fmt.Sprintf("%s %v", key, value)
}
