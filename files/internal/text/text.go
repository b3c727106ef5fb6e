/*
 * text.go, part of gosiesta.
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

// Package text has the line scanner shared by the readers of the
// plain-text companion files (XV, FA, FC, ORB_INDX).
package text

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	siesta "github.com/rmera/gosiesta"
)

// Scanner reads a text file line by line, splitting each line into fields.
type Scanner struct {
	r        *bufio.Reader
	fhandle  *os.File
	filename string
	line     int
}

// Open opens the file name for scanning.
func Open(name string) (*Scanner, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, siesta.WrapFile(err, siesta.ErrMissing, name)
	}
	return &Scanner{r: bufio.NewReader(f), fhandle: f, filename: name}, nil
}

func (S *Scanner) Close() error {
	return S.fhandle.Close()
}

func (S *Scanner) FileName() string { return S.filename }

// Errorf returns a parse error that includes the file name and current line number.
func (S *Scanner) Errorf(format string, args ...interface{}) error {
	return siesta.NewError(siesta.ErrParse, fmt.Sprintf("line %d: ", S.line)+fmt.Sprintf(format, args...), S.filename, "")
}

// Fields returns the fields of the next non-blank line. At the end of the
// file it returns io.EOF.
func (S *Scanner) Fields() ([]string, error) {
	for {
		line, err := S.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, S.Errorf("%s", err)
		}
		S.line++
		if f := strings.Fields(line); len(f) > 0 {
			return f, nil
		}
		if err == io.EOF {
			return nil, io.EOF
		}
	}
}

// MustFields is like Fields but an early end of file is a parse error.
// It also fails if the line has less than n fields.
func (S *Scanner) MustFields(n int) ([]string, error) {
	f, err := S.Fields()
	if err == io.EOF {
		return nil, S.Errorf("unexpected end of file")
	}
	if err != nil {
		return nil, err
	}
	if len(f) < n {
		return nil, S.Errorf("expected at least %d fields, got %d", n, len(f))
	}
	return f, nil
}

// Floats parses the given fields as floats. Fortran double-precision exponents ("1.0D-3") are accepted.
func (S *Scanner) Floats(fields []string) ([]float64, error) {
	ret := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(strings.NewReplacer("D", "e", "d", "e").Replace(s), 64)
		if err != nil {
			return nil, S.Errorf("unable to parse %q as a number", s)
		}
		ret[i] = v
	}
	return ret, nil
}

// Ints parses the given fields as integers.
func (S *Scanner) Ints(fields []string) ([]int, error) {
	ret := make([]int, len(fields))
	for i, s := range fields {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, S.Errorf("unable to parse %q as an integer", s)
		}
		ret[i] = v
	}
	return ret, nil
}
