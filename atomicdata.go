/*
 * atomicdata.go, part of gosiesta.
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

package siesta

import "strings"

// elements holds the symbol and standard atomic mass (amu) for each
// atomic number. The index is the atomic number, 0 is a placeholder.
var elements = [...]struct {
	symbol string
	mass   float64
}{
	{"X", 0},
	{"H", 1.00794}, {"He", 4.002602}, {"Li", 6.941}, {"Be", 9.012182}, {"B", 10.811},
	{"C", 12.0107}, {"N", 14.0067}, {"O", 15.9994}, {"F", 18.9984032}, {"Ne", 20.1797},
	{"Na", 22.98976928}, {"Mg", 24.305}, {"Al", 26.9815386}, {"Si", 28.0855}, {"P", 30.973762},
	{"S", 32.065}, {"Cl", 35.453}, {"Ar", 39.948}, {"K", 39.0983}, {"Ca", 40.078},
	{"Sc", 44.955912}, {"Ti", 47.867}, {"V", 50.9415}, {"Cr", 51.9961}, {"Mn", 54.938045},
	{"Fe", 55.845}, {"Co", 58.933195}, {"Ni", 58.6934}, {"Cu", 63.546}, {"Zn", 65.38},
	{"Ga", 69.723}, {"Ge", 72.64}, {"As", 74.9216}, {"Se", 78.96}, {"Br", 79.904},
	{"Kr", 83.798}, {"Rb", 85.4678}, {"Sr", 87.62}, {"Y", 88.90585}, {"Zr", 91.224},
	{"Nb", 92.90638}, {"Mo", 95.96}, {"Tc", 98}, {"Ru", 101.07}, {"Rh", 102.9055},
	{"Pd", 106.42}, {"Ag", 107.8682}, {"Cd", 112.411}, {"In", 114.818}, {"Sn", 118.71},
	{"Sb", 121.76}, {"Te", 127.6}, {"I", 126.90447}, {"Xe", 131.293}, {"Cs", 132.9054519},
	{"Ba", 137.327}, {"La", 138.90547}, {"Ce", 140.116}, {"Pr", 140.90765}, {"Nd", 144.242},
	{"Pm", 145}, {"Sm", 150.36}, {"Eu", 151.964}, {"Gd", 157.25}, {"Tb", 158.92535},
	{"Dy", 162.5}, {"Ho", 164.93032}, {"Er", 167.259}, {"Tm", 168.93421}, {"Yb", 173.054},
	{"Lu", 174.9668}, {"Hf", 178.49}, {"Ta", 180.94788}, {"W", 183.84}, {"Re", 186.207},
	{"Os", 190.23}, {"Ir", 192.217}, {"Pt", 195.084}, {"Au", 196.966569}, {"Hg", 200.59},
	{"Tl", 204.3833}, {"Pb", 207.2}, {"Bi", 208.9804}, {"Po", 209}, {"At", 210},
	{"Rn", 222}, {"Fr", 223}, {"Ra", 226}, {"Ac", 227}, {"Th", 232.03806},
	{"Pa", 231.03588}, {"U", 238.02891}, {"Np", 237}, {"Pu", 244}, {"Am", 243},
	{"Cm", 247}, {"Bk", 247}, {"Cf", 251}, {"Es", 252}, {"Fm", 257},
	{"Md", 258}, {"No", 259}, {"Lr", 262},
}

// Symbol returns the chemical symbol for the atomic number Z.
// Ghost atoms (negative Z) get the symbol of |Z|. Unknown numbers give "X".
func Symbol(Z int) string {
	if Z < 0 {
		Z = -Z
	}
	if Z >= len(elements) {
		return "X"
	}
	return elements[Z].symbol
}

// Mass returns the standard atomic mass, in amu, for the atomic number Z.
// Ghost atoms (negative Z) and unknown elements have zero mass.
func Mass(Z int) float64 {
	if Z <= 0 || Z >= len(elements) {
		return 0
	}
	return elements[Z].mass
}

// ZFromLabel guesses the atomic number from a species label such as "C", "Cbulk" or "Au_surf".
// The longest element symbol that prefixes the label wins. It returns 0 if nothing matches.
func ZFromLabel(label string) int {
	label = strings.TrimSpace(label)
	if len(label) >= 2 {
		for Z := 1; Z < len(elements); Z++ {
			if s := elements[Z].symbol; len(s) == 2 && strings.EqualFold(label[:2], s) && label[1] >= 'a' && label[1] <= 'z' {
				return Z
			}
		}
	}
	if len(label) >= 1 {
		for Z := 1; Z < len(elements); Z++ {
			if s := elements[Z].symbol; len(s) == 1 && strings.EqualFold(label[:1], s) {
				return Z
			}
		}
	}
	return 0
}
