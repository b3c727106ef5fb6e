package fortran

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	siesta "github.com/rmera/gosiesta"
)

func TestRecords(Te *testing.T) {
	var buf bytes.Buffer
	W := NewWriter(&buf)
	if err := W.Write(3, true, []float64{1.5, -2}); err != nil {
		Te.Fatal(err)
	}
	if err := W.Write([]float32{0.5, 0.25}, []int{7, 8, 9}); err != nil {
		Te.Fatal(err)
	}
	R := NewReader(&buf, "test")
	rec, err := R.Next()
	if err != nil {
		Te.Fatal(err)
	}
	if rec.Len() != 4+4+16 {
		Te.Errorf("wrong record length %d", rec.Len())
	}
	n, _ := rec.Int()
	b, _ := rec.Bool()
	f, err := rec.Float64s(-1)
	if err != nil || n != 3 || !b || len(f) != 2 || f[1] != -2 {
		Te.Errorf("wrong values %d %t %v %v", n, b, f, err)
	}
	rec, err = R.Next()
	if err != nil {
		Te.Fatal(err)
	}
	f, _ = rec.Float32s(2)
	ints, _ := rec.Ints(-1)
	if f[0] != 0.5 || len(ints) != 3 || ints[2] != 9 {
		Te.Errorf("wrong values %v %v", f, ints)
	}
	if _, err := rec.Int(); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("reading past the record should fail, got %v", err)
	}
	if _, err := R.Next(); err != io.EOF {
		Te.Errorf("expected EOF, got %v", err)
	}
}

func TestBadMarker(Te *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(4))
	binary.Write(&buf, binary.LittleEndian, int32(1))
	binary.Write(&buf, binary.LittleEndian, int32(8))
	R := NewReader(&buf, "bad")
	if _, err := R.Next(); !errors.Is(err, siesta.ErrParse) {
		Te.Errorf("mismatched markers should give a parse error, got %v", err)
	}
}
