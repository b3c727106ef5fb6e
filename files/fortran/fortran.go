/*
 * fortran.go, part of gosiesta.
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

// Package fortran reads and writes Fortran sequential unformatted files, the
// layout of the binary companion files written by SIESTA (DM, TSDE, HSX, TSHS).
// Each record is framed by its length in bytes, as a 4-byte integer, before and after the data.
package fortran

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	siesta "github.com/rmera/gosiesta"
)

// Reader reads records from a Fortran unformatted file.
type Reader struct {
	r        *bufio.Reader
	fhandle  *os.File
	filename string
	endian   binary.ByteOrder
	nrec     int
}

// Open opens the file name for record reading. The file is assumed to be little-endian.
func Open(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, siesta.WrapFile(err, siesta.ErrMissing, name)
	}
	R := NewReader(f, name)
	R.fhandle = f
	return R, nil
}

// NewReader returns a Reader that takes its data from r. name is only used in error messages.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{r: bufio.NewReader(r), filename: name, endian: binary.LittleEndian}
}

// Close closes the underlying file, if the Reader was obtained with Open.
func (R *Reader) Close() error {
	if R.fhandle == nil {
		return nil
	}
	return R.fhandle.Close()
}

func (R *Reader) FileName() string { return R.filename }

func (R *Reader) errorf(format string, args ...interface{}) error {
	return siesta.NewError(siesta.ErrParse, fmt.Sprintf("record %d: ", R.nrec)+fmt.Sprintf(format, args...), R.filename, "")
}

// Next reads the next whole record.
func (R *Reader) Next() (*Record, error) {
	var head, tail int32
	if err := binary.Read(R.r, R.endian, &head); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, R.errorf("unable to read record marker: %s", err)
	}
	if head < 0 {
		return nil, R.errorf("negative record length %d", head)
	}
	data := make([]byte, head)
	if _, err := io.ReadFull(R.r, data); err != nil {
		return nil, R.errorf("truncated record of %d bytes: %s", head, err)
	}
	if err := binary.Read(R.r, R.endian, &tail); err != nil {
		return nil, R.errorf("unable to read closing record marker: %s", err)
	}
	if head != tail {
		return nil, R.errorf("record markers don't match (%d, %d)", head, tail)
	}
	R.nrec++
	return &Record{data: data, endian: R.endian, reader: R}, nil
}

// Skip discards the next n records.
func (R *Reader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := R.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Record is the data of one record. Values are read from it in order.
type Record struct {
	data   []byte
	pos    int
	endian binary.ByteOrder
	reader *Reader
}

// Len returns the number of bytes in the record.
func (C *Record) Len() int { return len(C.data) }

// Remaining returns the number of unread bytes in the record.
func (C *Record) Remaining() int { return len(C.data) - C.pos }

func (C *Record) take(n int) ([]byte, error) {
	if C.pos+n > len(C.data) {
		return nil, C.reader.errorf("attempted to read %d bytes from a record with %d remaining", n, C.Remaining())
	}
	b := C.data[C.pos : C.pos+n]
	C.pos += n
	return b, nil
}

// Int reads one 4-byte integer.
func (C *Record) Int() (int, error) {
	b, err := C.take(4)
	if err != nil {
		return 0, err
	}
	return int(int32(C.endian.Uint32(b))), nil
}

// Ints reads n 4-byte integers. If n is negative, the rest of the record is read.
func (C *Record) Ints(n int) ([]int, error) {
	if n < 0 {
		n = C.Remaining() / 4
	}
	ret := make([]int, n)
	for i := range ret {
		v, err := C.Int()
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

// Bool reads a 4-byte Fortran logical.
func (C *Record) Bool() (bool, error) {
	v, err := C.Int()
	return v != 0, err
}

// Float64 reads one 8-byte real.
func (C *Record) Float64() (float64, error) {
	b, err := C.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(C.endian.Uint64(b)), nil
}

// Float64s reads n 8-byte reals. If n is negative, the rest of the record is read.
func (C *Record) Float64s(n int) ([]float64, error) {
	if n < 0 {
		n = C.Remaining() / 8
	}
	ret := make([]float64, n)
	for i := range ret {
		v, err := C.Float64()
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

// Float32s reads n 4-byte reals, returning them as float64. If n is negative, the rest of the record is read.
func (C *Record) Float32s(n int) ([]float64, error) {
	if n < 0 {
		n = C.Remaining() / 4
	}
	ret := make([]float64, n)
	for i := range ret {
		b, err := C.take(4)
		if err != nil {
			return nil, err
		}
		ret[i] = float64(math.Float32frombits(C.endian.Uint32(b)))
	}
	return ret, nil
}

// Writer writes Fortran unformatted records.
type Writer struct {
	w      io.Writer
	endian binary.ByteOrder
}

// NewWriter returns a little-endian record writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, endian: binary.LittleEndian}
}

// Write writes one record containing all the values. Values must be
// fixed-size types or slices of them, as accepted by binary.Write. int and
// bool values (and slices) are written as 4-byte integers and logicals.
func (W *Writer) Write(values ...interface{}) error {
	conv := make([]interface{}, len(values))
	size := 0
	for i, v := range values {
		switch t := v.(type) {
		case int:
			conv[i] = int32(t)
		case bool:
			conv[i] = boolInt(t)
		case []int:
			s := make([]int32, len(t))
			for j, k := range t {
				s[j] = int32(k)
			}
			conv[i] = s
		case []bool:
			s := make([]int32, len(t))
			for j, k := range t {
				s[j] = boolInt(k)
			}
			conv[i] = s
		default:
			conv[i] = v
		}
		n := binary.Size(conv[i])
		if n < 0 {
			return fmt.Errorf("fortran: value of type %T can't be written", v)
		}
		size += n
	}
	if err := binary.Write(W.w, W.endian, int32(size)); err != nil {
		return err
	}
	for _, v := range conv {
		if err := binary.Write(W.w, W.endian, v); err != nil {
			return err
		}
	}
	return binary.Write(W.w, W.endian, int32(size))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
