/*
 * fdf.go, part of gosiesta.
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
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	siesta "github.com/rmera/gosiesta"
)

// Characters that start a comment line. A '#' also starts a comment in the
// middle of a line.
const commentMarkers = "#!;"

// File is an fdf file, together with the files it includes. No state is kept
// between lookups: every query reads the files again from the top, so the
// files can be edited between calls. A File must not be used concurrently.
type File struct {
	filename string
	base     string
}

// FileOption modifies a File when it is opened.
type FileOption func(*File)

// WithBase sets the directory against which included, piped and companion
// files are resolved. By default it is the directory of the fdf file.
func WithBase(dir string) FileOption {
	return func(F *File) {
		if dir != "" {
			F.base = dir
		}
	}
}

// Open returns a File for the fdf file filename, which may be compressed
// with gzip (.gz) or zstd (.zst).
func Open(filename string, opts ...FileOption) (*File, error) {
	if !isFile(filename) {
		return nil, siesta.NewError(siesta.ErrMissing, "fdf file does not exist", filename, "")
	}
	F := &File{filename: filename, base: filepath.Dir(filename)}
	for _, o := range opts {
		o(F)
	}
	return F, nil
}

// FileName returns the name of the primary fdf file.
func (F *File) FileName() string { return F.filename }

// Base returns the directory used to resolve other files.
func (F *File) Base() string { return F.base }

func (F *File) String() string {
	return fmt.Sprintf("fdf.File{%s, base: %s}", F.filename, F.base)
}

// path returns name relative to the base directory, unless it is absolute.
func (F *File) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(F.base, name)
}

// Normalize returns the canonical form of an fdf label: lower case, without
// the characters '_', '-' and '.'.
func Normalize(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return -1
		}
		return r
	}, strings.ToLower(label))
}

func normalizeAll(fields []string) []string {
	ret := make([]string, len(fields))
	for i, f := range fields {
		ret[i] = Normalize(f)
	}
	return ret
}

// lineFields returns the fields of a non-block line, or nil if the line
// is blank or a comment.
func lineFields(line string) []string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.IndexByte(commentMarkers, line[0]) >= 0 {
		return nil
	}
	return strings.Fields(line)
}

func index(fields []string, s string) int {
	for i, f := range fields {
		if f == s {
			return i
		}
	}
	return -1
}

// frame is an open file in the include stack.
type frame struct {
	name string
	rc   io.ReadCloser
	sc   *bufio.Scanner
}

// stack holds the open files while a File is scanned. Only the top one is read.
type stack struct {
	frames []*frame
}

func (s *stack) push(name string) error {
	rc, err := openText(name)
	if err != nil {
		return err
	}
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	s.frames = append(s.frames, &frame{name: name, rc: rc, sc: sc})
	return nil
}

func (s *stack) pop() {
	n := len(s.frames) - 1
	s.frames[n].rc.Close()
	s.frames = s.frames[:n]
}

// close pops and closes every open file.
func (s *stack) close() {
	for len(s.frames) > 0 {
		s.pop()
	}
}

// line returns the next line of the top file, without popping it.
// At the end of the file it returns io.EOF.
func (s *stack) line() (string, error) {
	f := s.frames[len(s.frames)-1]
	if f.sc.Scan() {
		return f.sc.Text(), nil
	}
	if err := f.sc.Err(); err != nil {
		return "", siesta.WrapFile(err, siesta.ErrParse, f.name)
	}
	return "", io.EOF
}

// next returns the next line and the file it was read from, popping the
// files that end. It returns io.EOF only when no file is left.
func (s *stack) next() (string, string, error) {
	for len(s.frames) > 0 {
		l, err := s.line()
		if err == nil {
			return l, s.frames[len(s.frames)-1].name, nil
		}
		if err != io.EOF {
			return "", "", err
		}
		s.pop()
	}
	return "", "", io.EOF
}

// block reads the body of the block label from the top file, up to its
// %endblock line. Lines are trimmed and blank lines are dropped, but
// comments are kept.
func (s *stack) block(label string) ([]string, error) {
	var ret []string
	for {
		l, err := s.line()
		if err == io.EOF {
			f := s.frames[len(s.frames)-1].name
			return nil, siesta.NewError(siesta.ErrParse, "end of file inside block", f, label)
		}
		if err != nil {
			return nil, err
		}
		l = strings.TrimSpace(l)
		if strings.HasPrefix(Normalize(l), "%endblock") {
			return ret, nil
		}
		if l != "" {
			ret = append(ret, l)
		}
	}
}

// include pushes the included file name into s. A missing file is skipped
// with a warning. Including a file that is already open is an error.
func (F *File) include(s *stack, name string) error {
	p := F.path(name)
	if !isFile(p) {
		siesta.Logger().Warnf("%s includes %s, which does not exist; it will be ignored", s.frames[len(s.frames)-1].name, p)
		return nil
	}
	for _, f := range s.frames {
		if f.name == p {
			return siesta.NewError(siesta.ErrParse, "recursive %include of "+p, s.frames[len(s.frames)-1].name, "")
		}
	}
	return s.push(p)
}

// pipedBlock returns the lines of the file name, trimmed, without blank and
// comment lines.
func pipedBlock(name, label string) ([]string, error) {
	if !isFile(name) {
		return nil, siesta.NewError(siesta.ErrMissing, "piped block file does not exist", name, label)
	}
	lines, err := readLines(name)
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.IndexByte(commentMarkers, l[0]) >= 0 {
			continue
		}
		ret = append(ret, l)
	}
	return ret, nil
}

// found is the raw value of a label and the file where it was found.
// value is nil, a string or a []string (blocks).
type found struct {
	value interface{}
	file  string
}

// readLabel finds the first occurrence of label in the fdf file and the
// files it includes. A label that is not present gives a zero found and no error.
func (F *File) readLabel(label string) (found, error) {
	key := Normalize(label)
	s := new(stack)
	defer s.close()
	if err := s.push(F.filename); err != nil {
		return found{}, err
	}
	for {
		line, file, err := s.next()
		if err == io.EOF {
			return found{}, nil
		}
		if err != nil {
			return found{}, err
		}
		fields := lineFields(line)
		if fields == nil {
			continue
		}
		norm := normalizeAll(fields)
		if p := index(norm, "<"); p >= 0 {
			if p+1 >= len(fields) {
				return found{}, siesta.NewError(siesta.ErrParse, "pipe without a file name", file, label)
			}
			piped := F.path(fields[p+1])
			if norm[0] == "%block" && len(norm) > 1 && norm[1] == key {
				lines, err := pipedBlock(piped, label)
				return found{value: lines, file: file}, err
			}
			if index(norm[:p], key) >= 0 {
				if !isFile(piped) {
					return found{}, siesta.NewError(siesta.ErrMissing, "piped fdf file does not exist", piped, label)
				}
				other := &File{filename: piped, base: F.base}
				return other.readLabel(label)
			}
			continue
		}
		switch {
		case norm[0] == key:
			return found{value: strings.Join(fields[1:], " "), file: file}, nil
		case norm[0] == "%block" && len(fields) > 1:
			lines, err := s.block(fields[1])
			if err != nil {
				return found{}, err
			}
			if norm[1] == key {
				return found{value: lines, file: file}, nil
			}
		case norm[0] == "%include" && len(fields) > 1:
			if err := F.include(s, fields[1]); err != nil {
				return found{}, err
			}
		}
	}
}

// Includes returns every file that is included (%include) or piped (<)
// from the fdf file, in the order in which they are found, without repetitions.
// Included files are also searched for further includes.
func (F *File) Includes() ([]string, error) {
	var ret []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			ret = append(ret, name)
		}
	}
	s := new(stack)
	defer s.close()
	if err := s.push(F.filename); err != nil {
		return nil, siesta.Decorate(err, "fdf.Includes")
	}
	for {
		line, _, err := s.next()
		if err == io.EOF {
			return ret, nil
		}
		if err != nil {
			return nil, siesta.Decorate(err, "fdf.Includes")
		}
		fields := lineFields(line)
		if fields == nil {
			continue
		}
		norm := normalizeAll(fields)
		if p := index(norm, "<"); p >= 0 {
			if p+1 < len(fields) {
				add(F.path(fields[p+1]))
			}
			continue
		}
		switch {
		case norm[0] == "%include" && len(fields) > 1:
			add(F.path(fields[1]))
			if err := F.include(s, fields[1]); err != nil {
				return nil, siesta.Decorate(err, "fdf.Includes")
			}
		case norm[0] == "%block" && len(fields) > 1:
			if _, err := s.block(fields[1]); err != nil {
				return nil, siesta.Decorate(err, "fdf.Includes")
			}
		}
	}
}
