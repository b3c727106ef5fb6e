/*
 * open.go, part of gosiesta.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	siesta "github.com/rmera/gosiesta"
)

// zstdCloser makes a zstd decoder close the underlying file too.
type zstdCloser struct {
	io.ReadCloser
	f *os.File
}

func (z zstdCloser) Close() error {
	z.ReadCloser.Close()
	return z.f.Close()
}

// gzipCloser does the same for gzip streams.
type gzipCloser struct {
	*gzip.Reader
	f *os.File
}

func (g gzipCloser) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// compressed returns true if the name has one of the compression
// extensions that are decompressed when reading.
func compressed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".gz" || ext == ".zst"
}

// openText opens name for reading, decompressing it on the fly if it ends
// in .gz or .zst.
func openText(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, siesta.WrapFile(err, siesta.ErrMissing, name)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		r, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, siesta.WrapFile(err, siesta.ErrParse, name)
		}
		return gzipCloser{Reader: r, f: f}, nil
	case ".zst":
		d, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, siesta.WrapFile(err, siesta.ErrParse, name)
		}
		return zstdCloser{ReadCloser: d.IOReadCloser(), f: f}, nil
	}
	return f, nil
}

// readLines returns all the lines of the (possibly compressed) file name,
// without the line terminators.
func readLines(name string) ([]string, error) {
	r, err := openText(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var ret []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		ret = append(ret, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, siesta.WrapFile(err, siesta.ErrParse, name)
	}
	return ret, nil
}

func isFile(name string) bool {
	st, err := os.Stat(name)
	return err == nil && !st.IsDir()
}
