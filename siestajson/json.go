/*
 * json.go, part of gosiesta.
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

package siestajson

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	siesta "github.com/rmera/gosiesta"
	v3 "github.com/rmera/gosiesta/v3"
)

// Lattice is a ready-to-serialize container for a lattice. Cell holds the
// three lattice vectors, one after the other, in Angstrom.
type Lattice struct {
	Cell []float64
	Nsc  [3]int
}

// Coords is a ready-to-serialize container for the coordinates of one atom.
type Coords struct {
	Coords []float64
}

// Header precedes the atoms of a geometry in a stream.
type Header struct {
	Na    int
	Names map[string][]int `json:",omitempty"`
}

// Error is an easily JSON-serializable error.
type Error struct {
	deco          []string
	IsError       bool //If false, all the other fields are at their zero-values.
	InOptions     bool //Was it in parsing the options?
	InInput       bool //Was it in reading the fdf file or its companions?
	InProcess     bool
	InPostProcess bool   //Was it in preparing the output?
	Kind          string //The kind of gosiesta error, if any.
	File          string
	Label         string
	Function      string   //which go function gave the error
	Trace         []string `json:",omitempty"` //functions the error went through, innermost first
	Message       string
}

// Error implements the error interface.
func (J *Error) Error() string {
	return J.Message
}

// Decorate adds dec to the decoration slice of the error and returns the slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

// Marshal serializes the error. It panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - "))
	}
	return ret
}

// NewError takes an error and some additional info to create a json-marshalable error.
// where can be "options", "input", "postprocess" or anything else, for errors
// while processing. The kind, file and label of gosiesta errors are kept.
func NewError(where, function string, err error) *Error {
	jerr := new(Error)
	jerr.IsError = true
	switch where {
	case "options":
		jerr.InOptions = true
	case "input":
		jerr.InInput = true
	case "postprocess":
		jerr.InPostProcess = true
	default:
		jerr.InProcess = true
	}
	var kind siesta.Kind
	if errors.As(err, &kind) {
		jerr.Kind = string(kind)
	}
	var rerr siesta.ReadError
	if errors.As(err, &rerr) {
		jerr.File = rerr.FileName()
		jerr.Label = rerr.Label()
		jerr.Trace = append([]string(nil), rerr.Decorate("")...)
	}
	jerr.Function = function
	jerr.Message = err.Error()
	return jerr
}

// Info is a summary passed back to the calling program.
type Info struct {
	Quantity   string
	Source     string `json:",omitempty"`
	Na         int
	No         int
	NNZ        int
	Spin       int
	Nsc        [3]int
	Ef         float64
	Species    []string
	FloatInfo  [][]float64 `json:",omitempty"`
	StringInfo [][]string  `json:",omitempty"`
	IntInfo    [][]int     `json:",omitempty"`
}

// MatrixInfo returns the summary of a sparse matrix.
func MatrixInfo(S *siesta.SparseOrbital) *Info {
	J := &Info{Quantity: S.Kind.String(), NNZ: S.NNZ(), Spin: S.Spin, Ef: S.Ef}
	if G := S.Geometry; G != nil {
		J.Na, J.No, J.Nsc = G.Na(), G.No(), G.Lattice.Nsc
		species, _ := G.Species()
		for _, a := range species {
			J.Species = append(J.Species, a.Tag)
		}
	}
	return J
}

// Send marshals the info and writes it to out.
func (J *Info) Send(out io.Writer) *Error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(J); err != nil {
		return NewError("postprocess", "Info.Send", err)
	}
	return nil
}

// Options passed from the calling external program. Quantity is one of
// the quantities of the fdf package, or "label" to get the values of Labels.
type Options struct {
	FDF           string
	Quantity      string
	Labels        []string
	Order         []string
	Output        bool
	Grid          string
	StringOptions [][]string
	IntOptions    [][]int
	BoolOptions   [][]bool
	FloatOptions  [][]float64
}

// DecodeOptions decodes one line of JSON options into an Options structure.
func DecodeOptions(stdin *bufio.Reader) (*Options, *Error) {
	line, err := stdin.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return nil, NewError("options", "DecodeOptions", err)
	}
	ret := new(Options)
	if err = json.Unmarshal(line, ret); err != nil {
		return nil, NewError("options", "DecodeOptions", err)
	}
	return ret, nil
}

func latticeJSON(L *siesta.Lattice) *Lattice {
	cell := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		cell = append(cell, L.Cell.RawRowView(i)...)
	}
	return &Lattice{Cell: cell, Nsc: L.Nsc}
}

// EncodeLattice encodes L into JSON.
func EncodeLattice(L *siesta.Lattice, enc *json.Encoder) *Error {
	if err := enc.Encode(latticeJSON(L)); err != nil {
		return NewError("postprocess", "siestajson.EncodeLattice", err)
	}
	return nil
}

// SendLattice encodes L and writes it to out.
func SendLattice(L *siesta.Lattice, out io.Writer) *Error {
	return EncodeLattice(L, json.NewEncoder(out))
}

// DecodeLattice decodes a JSON lattice.
func DecodeLattice(stream *bufio.Reader) (*siesta.Lattice, *Error) {
	const funcname = "DecodeLattice"
	line, err := stream.ReadBytes('\n')
	if err != nil {
		return nil, NewError("input", funcname, err)
	}
	jl := new(Lattice)
	if err := json.Unmarshal(line, jl); err != nil {
		return nil, NewError("input", funcname, err)
	}
	cell, err := v3.NewMatrix(jl.Cell)
	if err != nil || cell.NVecs() != 3 {
		return nil, NewError("input", funcname, fmt.Errorf("a cell needs 9 values, got %d", len(jl.Cell)))
	}
	return siesta.NewLattice(cell, jl.Nsc[:]...), nil
}

// EncodeAtoms encodes each atom into JSON, one per line.
func EncodeAtoms(atoms []*siesta.Atom, enc *json.Encoder) *Error {
	const funcname = "EncodeAtoms"
	for _, a := range atoms {
		if err := enc.Encode(a); err != nil {
			return NewError("postprocess", funcname, err)
		}
	}
	return nil
}

// EncodeCoords encodes a set of coordinates into JSON, one atom per line.
func EncodeCoords(coords *v3.Matrix, enc *json.Encoder) *Error {
	c := new(Coords)
	for i := 0; i < coords.NVecs(); i++ {
		c.Coords = coords.RawRowView(i)
		if err := enc.Encode(c); err != nil {
			return NewError("postprocess", "siestajson.EncodeCoords", err)
		}
	}
	return nil
}

// SendGeometry encodes G and writes it to out: the lattice, a header with the
// number of atoms, the atom of each site, and the coordinates of each site.
func SendGeometry(G *siesta.Geometry, out io.Writer) *Error {
	const funcname = "SendGeometry"
	enc := json.NewEncoder(out)
	if err := EncodeLattice(G.Lattice, enc); err != nil {
		err.Decorate(funcname)
		return err
	}
	if err := enc.Encode(&Header{Na: G.Na(), Names: G.Names}); err != nil {
		return NewError("postprocess", funcname, err)
	}
	if err := EncodeAtoms(G.Atoms, enc); err != nil {
		err.Decorate(funcname)
		return err
	}
	if err := EncodeCoords(G.Coords, enc); err != nil {
		err.Decorate(funcname)
		return err
	}
	return nil
}

// DecodeGeometry decodes a geometry written by SendGeometry. Equal atoms
// end up sharing the same *siesta.Atom.
func DecodeGeometry(stream *bufio.Reader) (*siesta.Geometry, *Error) {
	const funcname = "DecodeGeometry"
	L, jerr := DecodeLattice(stream)
	if jerr != nil {
		jerr.Decorate(funcname)
		return nil, jerr
	}
	line, err := stream.ReadBytes('\n')
	if err != nil {
		return nil, NewError("input", funcname, err)
	}
	h := new(Header)
	if err := json.Unmarshal(line, h); err != nil {
		return nil, NewError("input", funcname, err)
	}
	atoms := make([]*siesta.Atom, 0, h.Na)
	for i := 0; i < h.Na; i++ {
		line, err := stream.ReadBytes('\n')
		if err != nil {
			return nil, NewError("input", funcname, fmt.Errorf("reading atom %d: %w", i+1, err))
		}
		at := new(siesta.Atom)
		if err := json.Unmarshal(line, at); err != nil {
			return nil, NewError("input", funcname, err)
		}
		for _, prev := range atoms {
			if prev.Equal(at) {
				at = prev
				break
			}
		}
		atoms = append(atoms, at)
	}
	coords, jerr := DecodeCoords(stream, h.Na)
	if jerr != nil {
		jerr.Decorate(funcname)
		return nil, jerr
	}
	G, err := siesta.NewGeometry(coords, atoms, L)
	if err != nil {
		return nil, NewError("input", funcname, err)
	}
	for k, v := range h.Names {
		G.Names[k] = v
	}
	return G, nil
}

// DecodeCoords decodes natoms lines, each with the JSON coordinates of one atom,
// into a v3.Matrix with natoms rows.
func DecodeCoords(stream *bufio.Reader, natoms int) (*v3.Matrix, *Error) {
	const funcname = "DecodeCoords"
	if natoms <= 0 {
		return nil, NewError("input", funcname, fmt.Errorf("no atoms to read"))
	}
	rawcoords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		line, err := stream.ReadBytes('\n')
		if err != nil {
			return nil, NewError("input", funcname, fmt.Errorf("reading coordinates %d: %w", i+1, err))
		}
		ctemp := new(Coords)
		if err = json.Unmarshal(line, ctemp); err != nil {
			return nil, NewError("input", funcname, err)
		}
		if len(ctemp.Coords) != 3 {
			return nil, NewError("input", funcname, fmt.Errorf("%d coordinates for atom %d", len(ctemp.Coords), i+1))
		}
		rawcoords = append(rawcoords, ctemp.Coords...)
	}
	coords, err := v3.NewMatrix(rawcoords)
	if err != nil {
		return nil, NewError("input", funcname, err)
	}
	return coords, nil
}
