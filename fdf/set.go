/*
 * set.go, part of gosiesta.
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
	"os"
	"strings"
	"time"

	siesta "github.com/rmera/gosiesta"
)

// Set writes key with the given value (a string, a number, a bool or a block
// as []string) in the file where key is first found, which can be an
// included file. The old line, or block, is replaced. If keep is true the old
// value is left, commented out and with a time stamp, right below the new one.
// If key is not present, it is appended to the primary fdf file.
// Compressed files can't be modified.
func (F *File) Set(key string, value interface{}, keep bool) error {
	v, err := F.readLabel(key)
	if err != nil {
		return siesta.Decorate(err, "fdf.Set")
	}
	target := F.filename
	if v.value != nil {
		target = v.file
	}
	if compressed(target) {
		return siesta.NewError(siesta.ErrUnsupported, "can't modify a compressed file", target, key)
	}
	st, err := os.Stat(target)
	if err != nil {
		return siesta.Decorate(siesta.WrapFile(err, siesta.ErrMissing, target), "fdf.Set")
	}
	lines, err := readLines(target)
	if err != nil {
		return siesta.Decorate(err, "fdf.Set")
	}
	repl := strings.Split(Print(key, value), "\n")
	if v.value == nil {
		lines = append(lines, repl...)
	} else {
		start, end := locate(lines, Normalize(key))
		if start < 0 {
			return siesta.NewError(siesta.ErrInconsistent, "label found while reading but not while editing", target, key)
		}
		if keep {
			repl = append(repl, fmt.Sprintf("# Old value (%s)", time.Now().Format("2006-01-02 15:04")))
			for _, l := range lines[start:end] {
				repl = append(repl, "# "+l)
			}
		}
		tail := append(repl, lines[end:]...)
		lines = append(lines[:start], tail...)
	}
	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(target, []byte(out), st.Mode().Perm()); err != nil {
		return siesta.Decorate(siesta.WrapFile(err, siesta.ErrUnsupported, target), "fdf.Set")
	}
	return nil
}

// locate returns the range of lines [start, end) holding the first definition
// of the normalized label key in lines, without following includes.
// start is -1 if key is not defined in lines.
func locate(lines []string, key string) (int, int) {
	for i := 0; i < len(lines); i++ {
		fields := lineFields(lines[i])
		if fields == nil {
			continue
		}
		norm := normalizeAll(fields)
		if p := index(norm, "<"); p >= 0 {
			if norm[0] == "%block" && len(norm) > 1 && norm[1] == key {
				return i, i + 1
			}
			continue
		}
		if norm[0] == key {
			return i, i + 1
		}
		if norm[0] != "%block" || len(norm) < 2 {
			continue
		}
		j := i + 1
		for j < len(lines) && !strings.HasPrefix(Normalize(strings.TrimSpace(lines[j])), "%endblock") {
			j++
		}
		if norm[1] == key {
			if j < len(lines) {
				j++
			}
			return i, j
		}
		i = j
	}
	return -1, -1
}
