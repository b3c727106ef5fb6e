/*
 * nc.go, part of gosiesta.
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

// Package nc reads the NetCDF files written by SIESTA: the aggregated
// <label>.nc output, the per-quantity <Name>.grid.nc files and the
// <species>.ion.nc basis files.
package nc

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
	v3 "github.com/rmera/gosiesta/v3"
)

// File is an open <label>.nc file.
type File struct {
	root     api.Group
	filename string
}

// Open opens the NetCDF file name.
func Open(name string) (*File, error) {
	g, err := netcdf.Open(name)
	if err != nil {
		return nil, siesta.WrapFile(err, siesta.ErrParse, name)
	}
	return &File{root: g, filename: name}, nil
}

func (F *File) Close() {
	F.root.Close()
}

func (F *File) FileName() string { return F.filename }

func (F *File) missing(what string) error {
	return siesta.NewError(siesta.ErrMissing, what+" not found", F.filename, "")
}

// values returns the flattened values of the variable name in the group g.
func (F *File) values(g api.Group, name string) ([]float64, []int, error) {
	vr, err := g.GetVariable(name)
	if err != nil || vr == nil {
		return nil, nil, F.missing("variable " + name)
	}
	v, shape, err := flatten(vr.Values)
	if err != nil {
		return nil, nil, siesta.NewError(siesta.ErrParse, fmt.Sprintf("variable %s: %s", name, err), F.filename, "")
	}
	return v, shape, nil
}

func (F *File) ints(g api.Group, name string) ([]int, error) {
	vr, err := g.GetVariable(name)
	if err != nil || vr == nil {
		return nil, F.missing("variable " + name)
	}
	v, err := ints(vr.Values)
	if err != nil {
		return nil, siesta.NewError(siesta.ErrParse, fmt.Sprintf("variable %s: %s", name, err), F.filename, "")
	}
	return v, nil
}

func (F *File) group(name string) (api.Group, error) {
	g, err := F.root.GetGroup(name)
	if err != nil || g == nil {
		return nil, F.missing("group " + name)
	}
	return g, nil
}

// ReadLatticeNsc returns the number of periodic images along each lattice vector.
func (F *File) ReadLatticeNsc() ([3]int, error) {
	nsc := [3]int{1, 1, 1}
	v, err := F.ints(F.root, "nsc")
	if err != nil {
		return nsc, siesta.Decorate(err, "nc.ReadLatticeNsc")
	}
	copy(nsc[:], v)
	return nsc, nil
}

// ReadLattice returns the lattice, with its nsc.
func (F *File) ReadLattice() (*siesta.Lattice, error) {
	cell, _, err := F.values(F.root, "cell")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadLattice")
	}
	L, err := lattice(cell)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrParse, F.filename), "nc.ReadLattice")
	}
	if nsc, err := F.ReadLatticeNsc(); err == nil {
		L.Nsc = nsc
	}
	return L, nil
}

// lattice builds a lattice from a cell in Bohr.
func lattice(cell []float64) (*siesta.Lattice, error) {
	if len(cell) != 9 {
		return nil, fmt.Errorf("cell with %d elements", len(cell))
	}
	c := make([]float64, 9)
	for i, v := range cell {
		c[i] = v * unit.BohrToAng
	}
	m, _ := v3.NewMatrix(c)
	return siesta.NewLattice(m), nil
}

// ReadBasis returns the species in the BASIS group, in file order.
func (F *File) ReadBasis() ([]*siesta.Atom, error) {
	b, err := F.group("BASIS")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadBasis")
	}
	var species []*siesta.Atom
	for _, name := range b.ListSubgroups() {
		g, err := b.GetGroup(name)
		if err != nil {
			return nil, siesta.Decorate(F.missing("group BASIS/"+name), "nc.ReadBasis")
		}
		a, err := F.species(g, name)
		if err != nil {
			return nil, siesta.Decorate(err, "nc.ReadBasis")
		}
		species = append(species, a)
	}
	return species, nil
}

// species reads one species group, or an ion.nc file, which share the layout.
func (F *File) species(g api.Group, name string) (*siesta.Atom, error) {
	attrs := g.Attributes()
	get := func(key string) (interface{}, bool) {
		if attrs == nil {
			return nil, false
		}
		return attrs.Get(key)
	}
	sp := shells{label: name}
	if v, ok := get("Label"); ok {
		sp.label = str(v)
	}
	if v, ok := get("Atomic_number"); ok {
		if z, err := ints(v); err == nil && len(z) > 0 {
			sp.Z = z[0]
		}
	}
	if v, ok := get("Mass"); ok {
		if m, _, err := flatten(v); err == nil && len(m) > 0 {
			sp.mass = m[0]
		}
	}
	if v, ok := get("Number_of_orbitals"); ok {
		if n, err := ints(v); err == nil && len(n) > 0 {
			sp.no = n[0]
		}
	}
	if l, err := F.ints(g, "orbnl_l"); err == nil {
		sp.l = l
		sp.n, _ = F.ints(g, "orbnl_n")
		sp.z, _ = F.ints(g, "orbnl_z")
		sp.pol, _ = F.ints(g, "orbnl_ispol")
		sp.pop, _, _ = F.values(g, "orbnl_pop")
		sp.cutoff, _, _ = F.values(g, "cutoff")
	}
	return sp.atom(), nil
}

// shells is the basis information of a species, as stored in NetCDF.
type shells struct {
	label   string
	Z       int
	mass    float64
	no      int
	l, n, z []int
	pol     []int
	pop     []float64
	cutoff  []float64 //Bohr
}

func (s shells) atom() *siesta.Atom {
	var orbs []siesta.Orbital
	at := func(v []int, i int) int {
		if i < len(v) {
			return v[i]
		}
		return 0
	}
	atf := func(v []float64, i int) float64 {
		if i < len(v) {
			return v[i]
		}
		return 0
	}
	for i, l := range s.l {
		R := -1.0
		if i < len(s.cutoff) {
			R = s.cutoff[i] * unit.BohrToAng
		}
		orbs = append(orbs, siesta.ShellOrbitals(at(s.n, i), l, at(s.z, i), at(s.pol, i) != 0, R, atf(s.pop, i))...)
	}
	if len(orbs) == 0 {
		for i := 0; i < s.no; i++ {
			orbs = append(orbs, siesta.Orbital{R: -1})
		}
	}
	Z := s.Z
	if Z == 0 {
		Z = siesta.ZFromLabel(s.label)
	}
	a := siesta.NewAtom(Z, s.label, orbs...)
	if s.mass > 0 {
		a.Mass = s.mass
	}
	return a
}

// ReadGeometry returns the geometry in the file. The species come from the
// BASIS group when present, otherwise from the atomic orbital counts (lasto)
// with unknown atomic numbers.
func (F *File) ReadGeometry() (*siesta.Geometry, error) {
	L, err := F.ReadLattice()
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGeometry")
	}
	xa, _, err := F.values(F.root, "xa")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGeometry")
	}
	for i := range xa {
		xa[i] *= unit.BohrToAng
	}
	coords, err := v3.NewMatrix(xa)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrParse, F.filename), "nc.ReadGeometry")
	}
	na := coords.NVecs()
	species, _ := F.ReadBasis()
	isa, _ := F.ints(F.root, "isa")
	lasto, _ := F.ints(F.root, "lasto")
	atoms, err := siteSpecies(na, species, isa, lasto)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrInconsistent, F.filename), "nc.ReadGeometry")
	}
	G, err := siesta.NewGeometry(coords, atoms, L)
	return G, siesta.Decorate(err, "nc.ReadGeometry")
}

// siteSpecies assigns a species to each of the na sites, from the 1-based species
// indexes isa if possible, or from the cumulative orbital counts lasto.
func siteSpecies(na int, species []*siesta.Atom, isa, lasto []int) ([]*siesta.Atom, error) {
	atoms := make([]*siesta.Atom, na)
	if len(species) > 0 && len(isa) == na {
		for i, is := range isa {
			if is < 1 || is > len(species) {
				return nil, fmt.Errorf("atom %d has species %d, out of %d", i+1, is, len(species))
			}
			atoms[i] = species[is-1]
		}
		return atoms, nil
	}
	//lasto may or may not include the leading 0
	if len(lasto) == na {
		lasto = append([]int{0}, lasto...)
	}
	byno := make(map[int]*siesta.Atom)
	for i := range atoms {
		n := 1
		if len(lasto) == na+1 {
			n = lasto[i+1] - lasto[i]
		}
		if byno[n] == nil {
			orbs := make([]siesta.Orbital, n)
			for j := range orbs {
				orbs[j].R = -1
			}
			byno[n] = siesta.NewAtom(1, "", orbs...)
		}
		atoms[i] = byno[n]
	}
	return atoms, nil
}

// ReadForce returns the atomic forces, in eV/Angstrom.
func (F *File) ReadForce() (*v3.Matrix, error) {
	fa, _, err := F.values(F.root, "fa")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadForce")
	}
	for i := range fa {
		fa[i] *= unit.RyBohrToEVAng
	}
	m, err := v3.NewMatrix(fa)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrParse, F.filename), "nc.ReadForce")
	}
	return m, nil
}

// ReadSparse returns the Hamiltonian, density matrix or energy density matrix in
// the SPARSE group, with the geometry of the file. Energies are in eV.
func (F *File) ReadSparse(kind siesta.MatrixKind) (*siesta.SparseOrbital, error) {
	var name string
	factor := 1.0
	switch kind {
	case siesta.Hamiltonian:
		name, factor = "H", unit.RyToEV
	case siesta.DensityMatrix:
		name = "DM"
	case siesta.EnergyDensityMatrix:
		name, factor = "EDM", unit.RyToEV
	default:
		return nil, siesta.NewError(siesta.ErrUnsupported, kind.String()+" is not stored in nc files", F.filename, "")
	}
	G, err := F.ReadGeometry()
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadSparse")
	}
	sp, err := F.group("SPARSE")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadSparse")
	}
	ncol, err := F.ints(sp, "n_col")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadSparse")
	}
	col, err := F.ints(sp, "list_col")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadSparse")
	}
	isc, err := F.ints(sp, "isc_off")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadSparse")
	}
	vals, shape, err := F.values(sp, name)
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadSparse")
	}
	overlap, _, err := F.values(sp, "S")
	if err != nil {
		overlap = nil
	}
	S, err := sparse(G, kind, ncol, col, isc, vals, shape, overlap, factor)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrInconsistent, F.filename), "nc.ReadSparse")
	}
	if ef, _, err := F.values(F.root, "Ef"); err == nil && len(ef) > 0 {
		S.Ef = ef[0] * unit.RyToEV
	}
	return S, nil
}

// sparse builds the matrix from the CSR data in the file. vals has shape (spin, nnz).
func sparse(G *siesta.Geometry, kind siesta.MatrixKind, ncol, col, isc []int, vals []float64, shape []int, overlap []float64, factor float64) (*siesta.SparseOrbital, error) {
	nnz := len(col)
	no := len(ncol)
	if no != G.No() {
		return nil, fmt.Errorf("matrix has %d orbitals, geometry %d", no, G.No())
	}
	if nnz == 0 || len(vals)%nnz != 0 {
		return nil, fmt.Errorf("%d values for %d non-zero elements", len(vals), nnz)
	}
	nspin := len(vals) / nnz
	if len(shape) == 2 && shape[0] != nspin {
		return nil, fmt.Errorf("value shape %v does not match %d elements", shape, nnz)
	}
	nimg := len(isc) / 3
	S := siesta.NewSparseOrbital(G, kind, nspin, overlap == nil)
	k := 0
	for io := 0; io < no; io++ {
		for c := 0; c < ncol[io]; c++ {
			if k >= nnz {
				return nil, fmt.Errorf("n_col adds up to more than %d elements", nnz)
			}
			jo := col[k] - 1
			im := jo / no
			if jo < 0 || im >= nimg {
				return nil, fmt.Errorf("column %d outside of the supercell", col[k])
			}
			e := siesta.Element{Row: io, Col: jo % no, Isc: [3]int{isc[3*im], isc[3*im+1], isc[3*im+2]}}
			for s := 0; s < nspin; s++ {
				S.Set(e, s, vals[s*nnz+k]*factor)
			}
			if overlap != nil {
				S.Set(e, nspin, overlap[k])
			}
			k++
		}
	}
	return S, nil
}

// gridFactor returns the factor that converts a SIESTA grid quantity to eV (potentials)
// or electrons/Angstrom^3 (densities).
func gridFactor(name string) float64 {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "v") || strings.Contains(n, "potential"):
		return unit.RyToEV
	case strings.Contains(n, "rho") || strings.Contains(n, "charge") || strings.Contains(n, "chlocal"):
		return 1 / (unit.BohrToAng * unit.BohrToAng * unit.BohrToAng)
	}
	return 1
}

// ReadGrid returns the grid quantity name (e.g. Rho, Vh) in the GRID group. spin selects the
// spin component, a negative spin sums all of them.
func (F *File) ReadGrid(name string, spin int) (*siesta.Grid, error) {
	L, err := F.ReadLattice()
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGrid")
	}
	g, err := F.group("GRID")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGrid")
	}
	data, shape, err := F.values(g, name)
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGrid")
	}
	G, err := grid(L, data, shape, spin, gridFactor(name))
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrInconsistent, F.filename), "nc.ReadGrid")
	}
	return G, nil
}

// grid builds a grid from data with shape (nz, ny, nx) or (spin, nz, ny, nx).
func grid(L *siesta.Lattice, data []float64, shape []int, spin int, factor float64) (*siesta.Grid, error) {
	if len(shape) == 3 {
		shape = append([]int{1}, shape...)
	}
	if len(shape) != 4 {
		return nil, fmt.Errorf("grid data with shape %v", shape)
	}
	nspin := shape[0]
	if spin >= nspin {
		return nil, fmt.Errorf("spin component %d requested, only %d present", spin, nspin)
	}
	G := siesta.NewGrid([3]int{shape[3], shape[2], shape[1]}, L)
	n := len(G.Data)
	if len(data) != n*nspin {
		return nil, fmt.Errorf("%d grid values for shape %v", len(data), shape)
	}
	for s := 0; s < nspin; s++ {
		if spin >= 0 && s != spin {
			continue
		}
		for i := 0; i < n; i++ {
			G.Data[i] += data[s*n+i] * factor
		}
	}
	return G, nil
}

// ReadGridFile reads a per-quantity <Name>.grid.nc file, with variables cell and gridfunc.
// The name of the file is used to choose the units. spin is as in File.ReadGrid.
func ReadGridFile(name string, spin int) (*siesta.Grid, error) {
	F, err := Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGridFile")
	}
	defer F.Close()
	cell, _, err := F.values(F.root, "cell")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGridFile")
	}
	L, err := lattice(cell)
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrParse, name), "nc.ReadGridFile")
	}
	data, shape, err := F.values(F.root, "gridfunc")
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadGridFile")
	}
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	G, err := grid(L, data, shape, spin, gridFactor(strings.TrimSuffix(base, ".grid.nc")))
	if err != nil {
		return nil, siesta.Decorate(siesta.WrapFile(err, siesta.ErrInconsistent, name), "nc.ReadGridFile")
	}
	return G, nil
}

// ReadIon reads the species in a <label>.ion.nc file.
func ReadIon(name string) (*siesta.Atom, error) {
	F, err := Open(name)
	if err != nil {
		return nil, siesta.Decorate(err, "nc.ReadIon")
	}
	defer F.Close()
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	a, err := F.species(F.root, strings.TrimSuffix(base, ".ion.nc"))
	return a, siesta.Decorate(err, "nc.ReadIon")
}
