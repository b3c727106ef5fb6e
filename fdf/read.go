/*
 * read.go, part of gosiesta.
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
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/files/binaries"
	"github.com/rmera/gosiesta/files/fa"
	fcfile "github.com/rmera/gosiesta/files/fc"
	"github.com/rmera/gosiesta/files/ion"
	"github.com/rmera/gosiesta/files/nc"
	"github.com/rmera/gosiesta/files/orbindx"
	"github.com/rmera/gosiesta/files/xv"
	"github.com/rmera/gosiesta/unit"
	v3 "github.com/rmera/gosiesta/v3"
)

type sparseReader = reader[*siesta.SparseOrbital]

var (
	nscReaders           map[Source]reader[[3]int]
	latticeReaders       map[Source]reader[*siesta.Lattice]
	geometryReaders      map[Source]reader[*siesta.Geometry]
	basisReaders         map[Source]reader[[]*siesta.Atom]
	forceReaders         map[Source]reader[*v3.Matrix]
	forceConstantReaders map[Source]reader[*siesta.ForceConstant]
	hessianReaders       map[Source]sparseReader
	dmReaders            map[Source]sparseReader
	edmReaders           map[Source]sparseReader
	hamiltonianReaders   map[Source]sparseReader
)

func init() {
	nscReaders = map[Source]reader[[3]int]{NC: nscNC, OrbIndx: nscOrbIndx}
	latticeReaders = map[Source]reader[*siesta.Lattice]{FDF: latticeFDF, XV: latticeXV, NC: latticeNC}
	geometryReaders = map[Source]reader[*siesta.Geometry]{FDF: geometryFDF, XV: geometryXV, NC: geometryNC}
	basisReaders = map[Source]reader[[]*siesta.Atom]{NC: basisNC, Ion: basisIon, OrbIndx: basisOrbIndx, FDF: basisFDF}
	forceReaders = map[Source]reader[*v3.Matrix]{FA: forceFA(FA), FAC: forceFA(FAC), NC: forceNC}
	forceConstantReaders = map[Source]reader[*siesta.ForceConstant]{FC: forceConstantFC}
	hessianReaders = map[Source]sparseReader{FC: hessianFC}
	dmReaders = map[Source]sparseReader{
		NC:   sparseNC(siesta.DensityMatrix),
		TSDE: sparseBinary(TSDE, "DM", binaries.ReadDensityMatrix, true),
		DM:   sparseBinary(DM, "DM", binaries.ReadDensityMatrix, true),
	}
	edmReaders = map[Source]sparseReader{
		NC:   sparseNC(siesta.EnergyDensityMatrix),
		TSDE: sparseBinary(TSDE, "EDM", binaries.ReadEnergyDensityMatrix, true),
	}
	hamiltonianReaders = map[Source]sparseReader{
		NC: sparseNC(siesta.Hamiltonian),
		TSHS: sparseBinary(TSHS, "H", func(name string, _ *siesta.Geometry) (*siesta.SparseOrbital, error) {
			return binaries.ReadHamiltonianTSHS(name)
		}, false),
		HSX: sparseBinary(HSX, "H", binaries.ReadHamiltonianHSX, true),
	}
	for _, q := range Quantities() {
		for _, output := range []bool{false, true} {
			for _, s := range DefaultOrder(q, output) {
				if !hasReader(q, s) {
					panic(fmt.Sprintf("fdf: no reader for %s from %s", q, s))
				}
			}
		}
	}
}

func hasReader(q Quantity, s Source) bool {
	var ok bool
	switch q {
	case LatticeNsc:
		_, ok = nscReaders[s]
	case Lattice:
		_, ok = latticeReaders[s]
	case Geometry:
		_, ok = geometryReaders[s]
	case Basis:
		_, ok = basisReaders[s]
	case Force:
		_, ok = forceReaders[s]
	case ForceConstant:
		_, ok = forceConstantReaders[s]
	case Hessian:
		_, ok = hessianReaders[s]
	case DensityMatrix:
		_, ok = dmReaders[s]
	case EnergyDensityMatrix:
		_, ok = edmReaders[s]
	case Hamiltonian:
		_, ok = hamiltonianReaders[s]
	case Grid:
		_, ok = gridReaders("rho")[s]
	}
	return ok
}

// numbers parses the first n fields of line as real numbers. Fortran
// exponents (1.0d-3) are accepted.
func numbers(line string, n int) ([]float64, error) {
	f := strings.Fields(line)
	if len(f) < n {
		return nil, fmt.Errorf("expected %d numbers in %q", n, line)
	}
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.NewReplacer("d", "e", "D", "e").Replace(f[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("can't parse %q in %q", f[i], line)
		}
		ret[i] = v
	}
	return ret, nil
}

// ReadLatticeNsc returns the number of periodic images along each lattice
// vector, from the output files. If it can't be read, [1 1 1] is returned and a
// warning is logged.
func (F *File) ReadLatticeNsc(O *Options) ([3]int, error) {
	O = optionsOrDefault(O)
	nsc, ok, err := resolve(F, LatticeNsc, nscReaders, O)
	if err != nil {
		return [3]int{1, 1, 1}, siesta.Decorate(err, "fdf.ReadLatticeNsc")
	}
	if !ok {
		if !O.quiet {
			siesta.Logger().Warnf("the number of supercells could not be read from the output files of %s, assuming no periodic images", F.filename)
		}
		return [3]int{1, 1, 1}, nil
	}
	return nsc, nil
}

func nscNC(F *File, O *Options) ([3]int, bool, error) {
	nsc := [3]int{1, 1, 1}
	name, ok, err := F.companion(NC)
	if err != nil || !ok {
		return nsc, false, err
	}
	f, err := nc.Open(name)
	if err != nil {
		return nsc, false, err
	}
	defer f.Close()
	nsc, err = f.ReadLatticeNsc()
	return nsc, err == nil, err
}

func nscOrbIndx(F *File, O *Options) ([3]int, bool, error) {
	name, ok, err := F.companion(OrbIndx)
	if err != nil || !ok {
		return [3]int{1, 1, 1}, false, err
	}
	nsc, err := orbindx.ReadLatticeNsc(name)
	return nsc, err == nil, err
}

// ReadLattice returns the lattice. By default it is read from the fdf file,
// see Options.Output and Options.Order for other sources. It returns nil
// if no source has the lattice.
func (F *File) ReadLattice(O *Options) (*siesta.Lattice, error) {
	L, _, err := resolve(F, Lattice, latticeReaders, optionsOrDefault(O))
	return L, siesta.Decorate(err, "fdf.ReadLattice")
}

// latticeFDF builds the lattice from LatticeConstant and either the LatticeVectors
// or the LatticeParameters blocks.
func latticeFDF(F *File, O *Options) (*siesta.Lattice, bool, error) {
	a, err := F.GetPhysical("LatticeConstant", "Ang", 0)
	if err != nil {
		return nil, false, err
	}
	if a == 0 {
		return nil, false, siesta.NewError(siesta.ErrMissing, "LatticeConstant not found", F.filename, "LatticeConstant")
	}
	var L *siesta.Lattice
	vecs, err := F.GetBlock("LatticeVectors")
	if err != nil {
		return nil, false, err
	}
	if len(vecs) > 0 {
		if len(vecs) < 3 {
			return nil, false, siesta.NewError(siesta.ErrParse, fmt.Sprintf("%d lattice vectors", len(vecs)), F.filename, "LatticeVectors")
		}
		cell := v3.Zeros(3)
		for i := 0; i < 3; i++ {
			v, err := numbers(vecs[i], 3)
			if err != nil {
				return nil, false, siesta.NewError(siesta.ErrParse, err.Error(), F.filename, "LatticeVectors")
			}
			floats.Scale(a, v)
			cell.SetRow(i, v)
		}
		L = siesta.NewLattice(cell)
	} else {
		pars, err := F.GetBlock("LatticeParameters")
		if err != nil {
			return nil, false, err
		}
		if len(pars) == 0 {
			return nil, false, siesta.NewError(siesta.ErrMissing, "neither LatticeVectors nor LatticeParameters found", F.filename, "LatticeVectors")
		}
		p, err := numbers(pars[0], 6)
		if err != nil {
			return nil, false, siesta.NewError(siesta.ErrParse, err.Error(), F.filename, "LatticeParameters")
		}
		L = siesta.LatticeFromParameters(p[0], p[1], p[2], p[3], p[4], p[5])
		L.Cell.Dense.Scale(a, L.Cell.Dense)
	}
	q := O.nested()
	q.quiet = true
	L.Nsc, err = F.ReadLatticeNsc(q)
	return L, true, err
}

func latticeXV(F *File, O *Options) (*siesta.Lattice, bool, error) {
	name, ok, err := F.companion(XV)
	if err != nil || !ok {
		return nil, false, err
	}
	nsc, err := F.ReadLatticeNsc(O.nested())
	if err != nil {
		return nil, false, err
	}
	L, err := xv.ReadLattice(name)
	if err != nil {
		return nil, false, err
	}
	L.Nsc = nsc
	return L, true, nil
}

func latticeNC(F *File, O *Options) (*siesta.Lattice, bool, error) {
	name, ok, err := F.companion(NC)
	if err != nil || !ok {
		return nil, false, err
	}
	f, err := nc.Open(name)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	L, err := f.ReadLattice()
	return L, err == nil, err
}

// ReadGeometry returns the geometry. By default it is read from the fdf file,
// see Options.Output and Options.Order for other sources. It returns nil
// if no source has the geometry.
func (F *File) ReadGeometry(O *Options) (*siesta.Geometry, error) {
	G, _, err := resolve(F, Geometry, geometryReaders, optionsOrDefault(O))
	return G, siesta.Decorate(err, "fdf.ReadGeometry")
}

// outputGeometry returns the geometry as read with the output files first.
func (F *File) outputGeometry(O *Options) (*siesta.Geometry, error) {
	q := O.nested()
	q.output = true
	return F.ReadGeometry(q)
}

// coordinateScale interprets AtomicCoordinatesFormat. It returns the factor that
// takes the coordinates to Angstrom, and whether they are fractional.
// The keyword is matched by substrings, in this order.
func (F *File) coordinateScale() (float64, bool, error) {
	format, err := F.GetString("AtomicCoordinatesFormat", "Bohr")
	if err != nil {
		return 0, false, err
	}
	lc := strings.ToLower(format)
	switch {
	case strings.Contains(lc, "ang") || strings.Contains(lc, "notscaledcartesianang"):
		return 1, false, nil
	case strings.Contains(lc, "bohr") || strings.Contains(lc, "notscaledcartesianbohr"):
		return unit.BohrToAng, false, nil
	case strings.Contains(lc, "scaledcartesian"):
		s, err := F.GetPhysical("LatticeConstant", "Ang", 0)
		return s, false, err
	case strings.Contains(lc, "fractional") || strings.Contains(lc, "scaledbylatticevectors"):
		return 1, true, nil
	}
	return 0, false, siesta.NewError(siesta.ErrParse, fmt.Sprintf("unknown coordinates format %q", format), F.filename, "AtomicCoordinatesFormat")
}

func geometryFDF(F *File, O *Options) (*siesta.Geometry, bool, error) {
	q := O.nested()
	q.order = []Source{FDF}
	L, err := F.ReadLattice(q)
	if err != nil {
		return nil, false, err
	}
	s, frac, err := F.coordinateScale()
	if err != nil {
		return nil, false, err
	}
	origin := make([]float64, 3)
	if lor, err := F.GetBlock("AtomicCoordinatesOrigin"); err != nil {
		return nil, false, err
	} else if len(lor) > 0 && O.origin && !frac {
		if origin, err = numbers(lor[0], 3); err != nil {
			return nil, false, siesta.NewError(siesta.ErrParse, err.Error(), F.filename, "AtomicCoordinatesOrigin")
		}
		floats.Scale(s, origin)
	}
	const block = "AtomicCoordinatesAndAtomicSpecies"
	atms, err := F.GetBlock(block)
	if err != nil {
		return nil, false, err
	}
	if atms == nil {
		return nil, false, siesta.NewError(siesta.ErrMissing, "block not found", F.filename, block)
	}
	na, err := F.GetInt("NumberOfAtoms", len(atms))
	if err != nil {
		return nil, false, err
	}
	switch {
	case na <= 0:
		return nil, false, siesta.NewError(siesta.ErrInconsistent, "no atoms in the geometry", F.filename, "NumberOfAtoms")
	case na > len(atms):
		return nil, false, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("NumberOfAtoms is %d but only %d atoms are defined", na, len(atms)), F.filename, "NumberOfAtoms")
	}
	atms = atms[:na]
	coords := v3.Zeros(na)
	species := make([]int, na)
	for i, l := range atms {
		v, err := numbers(l, 3)
		if err != nil {
			return nil, false, siesta.NewError(siesta.ErrParse, err.Error(), F.filename, block)
		}
		f := strings.Fields(l)
		if len(f) < 4 {
			return nil, false, siesta.NewError(siesta.ErrParse, fmt.Sprintf("no species in %q", l), F.filename, block)
		}
		if species[i], err = strconv.Atoi(f[3]); err != nil {
			return nil, false, siesta.NewError(siesta.ErrParse, fmt.Sprintf("species %q is not an integer", f[3]), F.filename, block)
		}
		species[i]--
		coords.SetRow(i, v)
	}
	if frac {
		coords = L.Cartesian(coords)
	}
	coords.Dense.Scale(s, coords.Dense)
	for i := 0; i < na; i++ {
		floats.Add(coords.RawRowView(i), origin)
	}
	basis, err := F.ReadBasis(O.nested())
	if err != nil {
		return nil, false, err
	}
	atoms := make([]*siesta.Atom, na)
	if basis == nil {
		siesta.Logger().Warnf("block ChemicalSpeciesLabel not found in %s, the basis can't be determined and all atoms will be hydrogen", F.filename)
		H := siesta.NewAtom(1, "")
		for i := range atoms {
			atoms[i] = H
		}
	} else {
		for i, is := range species {
			if is < 0 || is >= len(basis) || basis[is] == nil {
				return nil, false, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("atom %d has the undefined species %d", i+1, is+1), F.filename, block)
			}
			atoms[i] = basis[is]
		}
	}
	G, err := siesta.NewGeometry(coords, atoms, L)
	return G, err == nil, err
}

func geometryXV(F *File, O *Options) (*siesta.Geometry, bool, error) {
	name, ok, err := F.companion(XV)
	if err != nil || !ok {
		return nil, false, err
	}
	basis, err := F.ReadBasis(O.nested())
	if err != nil {
		return nil, false, err
	}
	G, _, err := xv.ReadGeometry(name, basis)
	if err != nil {
		return nil, false, err
	}
	if G.Lattice.Nsc, err = F.ReadLatticeNsc(O.nested()); err != nil {
		return nil, false, err
	}
	return G, true, nil
}

func geometryNC(F *File, O *Options) (*siesta.Geometry, bool, error) {
	name, ok, err := F.companion(NC)
	if err != nil || !ok {
		return nil, false, err
	}
	f, err := nc.Open(name)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	G, err := f.ReadGeometry()
	return G, err == nil, err
}

// ReadBasis returns the species of the system, in the order of the
// ChemicalSpeciesLabel block. It returns nil if no source has them.
func (F *File) ReadBasis(O *Options) ([]*siesta.Atom, error) {
	B, _, err := resolve(F, Basis, basisReaders, optionsOrDefault(O))
	return B, siesta.Decorate(err, "fdf.ReadBasis")
}

func basisNC(F *File, O *Options) ([]*siesta.Atom, bool, error) {
	name, ok, err := F.companion(NC)
	if err != nil || !ok {
		return nil, false, err
	}
	f, err := nc.Open(name)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	B, err := f.ReadBasis()
	return B, err == nil, err
}

// speciesLabels reads the ChemicalSpeciesLabel block. It returns, for each
// species index, the atomic number and label, or nil if the block is absent.
func (F *File) speciesLabels() ([]int, []string, error) {
	const block = "ChemicalSpeciesLabel"
	spcs, err := F.GetBlock(block)
	if err != nil || spcs == nil {
		return nil, nil, err
	}
	Z := make([]int, len(spcs))
	labels := make([]string, len(spcs))
	for _, l := range spcs {
		f := strings.Fields(l)
		if len(f) < 3 {
			return nil, nil, siesta.NewError(siesta.ErrParse, fmt.Sprintf("malformed species line %q", l), F.filename, block)
		}
		idx, err1 := strconv.Atoi(f[0])
		z, err2 := strconv.Atoi(f[1])
		if err1 != nil || err2 != nil {
			return nil, nil, siesta.NewError(siesta.ErrParse, fmt.Sprintf("malformed species line %q", l), F.filename, block)
		}
		if idx < 1 || idx > len(spcs) {
			return nil, nil, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("species index %d out of range", idx), F.filename, block)
		}
		Z[idx-1] = z
		labels[idx-1] = f[2]
	}
	return Z, labels, nil
}

// basisIon reads <label>.ion.nc or <label>.ion.xml for each species. Species
// without a file get an atom without basis information.
func basisIon(F *File, O *Options) ([]*siesta.Atom, bool, error) {
	Z, labels, err := F.speciesLabels()
	if err != nil || Z == nil {
		return nil, false, err
	}
	atoms := make([]*siesta.Atom, len(Z))
	one, all := false, true
	for i, lbl := range labels {
		p := F.path(lbl)
		switch {
		case isFile(p + ".ion.nc"):
			atoms[i], err = nc.ReadIon(p + ".ion.nc")
			one = true
		case isFile(p + ".ion.xml"):
			atoms[i], err = ion.ReadIon(p + ".ion.xml")
			one = true
		default:
			atoms[i] = siesta.NewAtom(Z[i], lbl)
			all = false
		}
		if err != nil {
			return nil, false, err
		}
	}
	if !one {
		return nil, false, nil
	}
	if !all {
		siesta.Logger().Warnf("not all the ion.nc/ion.xml files of %s could be read, only part of the basis information is available", F.filename)
	}
	return atoms, true, nil
}

func basisOrbIndx(F *File, O *Options) ([]*siesta.Atom, bool, error) {
	name, ok, err := F.companion(OrbIndx)
	if err != nil || !ok {
		return nil, false, err
	}
	B, err := orbindx.ReadBasis(name)
	return B, err == nil, err
}

func basisFDF(F *File, O *Options) ([]*siesta.Atom, bool, error) {
	Z, labels, err := F.speciesLabels()
	if err != nil || Z == nil {
		return nil, false, err
	}
	atoms := make([]*siesta.Atom, len(Z))
	for i := range atoms {
		atoms[i] = siesta.NewAtom(Z[i], labels[i])
	}
	return atoms, true, nil
}

// ReadForce returns the forces on the atoms, in eV/Angstrom, from the output
// files. It returns nil if no source has them.
func (F *File) ReadForce(O *Options) (*v3.Matrix, error) {
	f, _, err := resolve(F, Force, forceReaders, optionsOrDefault(O))
	return f, siesta.Decorate(err, "fdf.ReadForce")
}

func forceFA(src Source) reader[*v3.Matrix] {
	return func(F *File, O *Options) (*v3.Matrix, bool, error) {
		name, ok, err := F.companion(src)
		if err != nil || !ok {
			return nil, false, err
		}
		f, err := fa.ReadForce(name)
		return f, err == nil, err
	}
}

func forceNC(F *File, O *Options) (*v3.Matrix, bool, error) {
	name, ok, err := F.companion(NC)
	if err != nil || !ok {
		return nil, false, err
	}
	f, err := nc.Open(name)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	force, err := f.ReadForce()
	return force, err == nil, err
}

// ReadForceConstant returns the force constants of a phonon calculation, in
// eV/Angstrom^2. MD.FCFirst and MD.FCLast must be set in the fdf file. If
// Options.CorrectFC is true, the force on each displaced atom is set to minus
// the sum of the forces on the others. It returns nil if no source has them.
func (F *File) ReadForceConstant(O *Options) (*siesta.ForceConstant, error) {
	fc, _, err := resolve(F, ForceConstant, forceConstantReaders, optionsOrDefault(O))
	return fc, siesta.Decorate(err, "fdf.ReadForceConstant")
}

// displaced returns the first and last (1-based) displaced atoms.
func (F *File) displaced() (int, int, error) {
	first, err := F.GetInt("MD.FCFirst", 0)
	if err != nil {
		return 0, 0, err
	}
	last, err := F.GetInt("MD.FCLast", 0)
	if err != nil {
		return 0, 0, err
	}
	if first == 0 || last == 0 {
		return 0, 0, siesta.NewError(siesta.ErrMissing, fmt.Sprintf("MD.FCFirst (%d) and MD.FCLast (%d) must be set", first, last), F.filename, "MD.FCFirst")
	}
	if last < first {
		return 0, 0, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("MD.FCLast (%d) is smaller than MD.FCFirst (%d)", last, first), F.filename, "MD.FCLast")
	}
	return first, last, nil
}

func forceConstantFC(F *File, O *Options) (*siesta.ForceConstant, bool, error) {
	name, ok, err := F.companion(FC)
	if err != nil || !ok {
		return nil, false, err
	}
	na, err := F.GetInt("NumberOfAtoms", 0)
	if err != nil {
		return nil, false, err
	}
	fc, err := fcfile.ReadForceConstant(name, na)
	if err != nil {
		return nil, false, err
	}
	first, last, err := F.displaced()
	if err != nil {
		return nil, false, err
	}
	if last-first+1 != fc.Ndispl {
		return nil, false, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("expected %d displaced atoms, found %d", last-first+1, fc.Ndispl), name, "MD.FCLast")
	}
	if last > fc.Na {
		return nil, false, siesta.NewError(siesta.ErrInconsistent, fmt.Sprintf("displaced atom %d but only %d atoms", last, fc.Na), name, "MD.FCLast")
	}
	if O.correctFC {
		sum := make([]float64, 3)
		for i := first - 1; i < last; i++ {
			j := i - (first - 1)
			for dir := 0; dir < 3; dir++ {
				for sign := 0; sign < 2; sign++ {
					f := fc.Forces(j, dir, sign)
					floats.Scale(0, sum)
					for a := 0; a < fc.Na; a++ {
						floats.Add(sum, f[a*3:a*3+3])
					}
					floats.Sub(f[i*3:i*3+3], sum)
				}
			}
		}
	}
	return fc, true, nil
}

// ReadHessian returns the mass-weighted Hessian (dynamical matrix) built from
// the force constants, see Options.CutoffFC, Options.CutoffDist and
// Options.Supercell. It returns nil if no source has the force constants.
func (F *File) ReadHessian(O *Options) (*siesta.SparseOrbital, error) {
	H, _, err := resolve(F, Hessian, hessianReaders, optionsOrDefault(O))
	return H, siesta.Decorate(err, "fdf.ReadHessian")
}

func hessianFC(F *File, O *Options) (*siesta.SparseOrbital, bool, error) {
	q := O.nested()
	q.order = []Source{FC}
	fc, ok, err := resolve(F, ForceConstant, forceConstantReaders, q)
	if err != nil || !ok {
		return nil, false, err
	}
	H, err := F.hessian(fc, O)
	return H, err == nil, err
}

// ReadDensityMatrix returns the density matrix from the output files.
// It returns nil if no source has it.
func (F *File) ReadDensityMatrix(O *Options) (*siesta.SparseOrbital, error) {
	S, _, err := resolve(F, DensityMatrix, dmReaders, optionsOrDefault(O))
	return S, siesta.Decorate(err, "fdf.ReadDensityMatrix")
}

// ReadEnergyDensityMatrix returns the energy density matrix, in eV, from the
// output files. It returns nil if no source has it.
func (F *File) ReadEnergyDensityMatrix(O *Options) (*siesta.SparseOrbital, error) {
	S, _, err := resolve(F, EnergyDensityMatrix, edmReaders, optionsOrDefault(O))
	return S, siesta.Decorate(err, "fdf.ReadEnergyDensityMatrix")
}

// ReadHamiltonian returns the Hamiltonian, in eV, from the output files.
// It returns nil if no source has it.
func (F *File) ReadHamiltonian(O *Options) (*siesta.SparseOrbital, error) {
	S, _, err := resolve(F, Hamiltonian, hamiltonianReaders, optionsOrDefault(O))
	return S, siesta.Decorate(err, "fdf.ReadHamiltonian")
}

func sparseNC(kind siesta.MatrixKind) sparseReader {
	return func(F *File, O *Options) (*siesta.SparseOrbital, bool, error) {
		name, ok, err := F.companion(NC)
		if err != nil || !ok {
			return nil, false, err
		}
		f, err := nc.Open(name)
		if err != nil {
			return nil, false, err
		}
		defer f.Close()
		S, err := f.ReadSparse(kind)
		return S, err == nil, err
	}
}

// sparseBinary reads a matrix from one of the binary files, which don't have
// the atoms of the system, and reconciles it with the output geometry.
// If warn is true, a failed reconciliation is logged.
func sparseBinary(src Source, what string, read func(string, *siesta.Geometry) (*siesta.SparseOrbital, error), warn bool) sparseReader {
	return func(F *File, O *Options) (*siesta.SparseOrbital, bool, error) {
		name, ok, err := F.companion(src)
		if err != nil || !ok {
			return nil, false, err
		}
		G, err := F.outputGeometry(O)
		if err != nil {
			return nil, false, err
		}
		S, err := read(name, G)
		if err != nil {
			return nil, false, err
		}
		if G != nil && !Reconcile(S, G) && warn {
			siesta.Logger().Warnf("%s from %s will most likely have a wrong supercell specification", what, name)
		}
		return S, true, nil
	}
}

var gridNames = map[string]string{
	"rho":                    "Rho",
	"rhoinit":                "RhoInit",
	"vna":                    "Vna",
	"chlocal":                "Chlocal",
	"rhotot":                 "RhoTot",
	"totalcharge":            "RhoTot",
	"deltarho":               "RhoDelta",
	"rhodelta":               "RhoDelta",
	"electrostaticpotential": "Vh",
	"vh":                     "Vh",
	"rhoxc":                  "RhoXC",
	"totalpotential":         "Vt",
	"vt":                     "Vt",
	"baderrho":               "RhoBader",
	"rhobader":               "RhoBader",
}

var gridFileNames = map[string]string{
	"rho":                    "Rho",
	"rhoinit":                "RhoInit",
	"vna":                    "Vna",
	"chlocal":                "Chlocal",
	"rhotot":                 "TotalCharge",
	"totalcharge":            "TotalCharge",
	"deltarho":               "DeltaRho",
	"rhodelta":               "DeltaRho",
	"electrostaticpotential": "ElectrostaticPotential",
	"vh":                     "ElectrostaticPotential",
	"rhoxc":                  "RhoXC",
	"totalpotential":         "TotalPotential",
	"vt":                     "TotalPotential",
	"baderrho":               "BaderCharge",
	"rhobader":               "BaderCharge",
}

// GridNames returns the grid quantities understood by ReadGrid, sorted.
func GridNames() []string {
	ret := make([]string, 0, len(gridNames))
	for k := range gridNames {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// ReadGrid returns the grid quantity name (rho, vh, totalpotential... see
// GridNames), case insensitive, from the output files. Potentials are in eV
// and densities in electrons/Angstrom^3. Options.Spin selects the spin component.
// It returns nil if no source has the grid.
func (F *File) ReadGrid(name string, O *Options) (*siesta.Grid, error) {
	if _, ok := gridNames[strings.ToLower(name)]; !ok {
		return nil, siesta.NewError(siesta.ErrUnsupported, fmt.Sprintf("unknown grid quantity %q", name), F.filename, "")
	}
	G, _, err := resolve(F, Grid, gridReaders(name), optionsOrDefault(O))
	return G, siesta.Decorate(err, "fdf.ReadGrid")
}

func gridReaders(name string) map[Source]reader[*siesta.Grid] {
	key := strings.ToLower(name)
	return map[Source]reader[*siesta.Grid]{
		NC: func(F *File, O *Options) (*siesta.Grid, bool, error) {
			fname, ok, err := F.companion(NC)
			if err != nil || !ok {
				return nil, false, err
			}
			f, err := nc.Open(fname)
			if err != nil {
				return nil, false, err
			}
			defer f.Close()
			G, err := f.ReadGrid(gridNames[key], O.spin)
			return G, err == nil, err
		},
		GridNC: func(F *File, O *Options) (*siesta.Grid, bool, error) {
			fname := F.path(gridFileNames[key] + ".grid.nc")
			if !isFile(fname) {
				return nil, false, nil
			}
			G, err := nc.ReadGridFile(fname, O.spin)
			if err != nil {
				return nil, false, err
			}
			if G.Geometry, err = F.outputGeometry(O); err != nil {
				return nil, false, err
			}
			return G, true, nil
		},
	}
}
