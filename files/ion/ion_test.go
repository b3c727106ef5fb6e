package ion

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	siesta "github.com/rmera/gosiesta"
	"github.com/rmera/gosiesta/unit"
)

const testIon = `<ion version="0.1">
<symbol>           C </symbol>
<label>        C_bulk </label>
<z>    6 </z>
<valence>    4.00000 </valence>
<mass>    12.01000 </mass>
<lmax_basis> 1 </lmax_basis>
<norbs_nl> 2 </norbs_nl>
<orbitals>
 <orbital l="0" n="2" z="1" ispol="0" population="2.00000">
  <radfunc>
   <npts> 3 </npts>
   <delta> 0.01 </delta>
   <cutoff> 4.0 </cutoff>
   <data>
 0.0 1.0
   </data>
  </radfunc>
 </orbital>
 <orbital l="1" n="2" z="1" ispol="0" population="2.00000">
  <radfunc>
   <cutoff> 5.0 </cutoff>
  </radfunc>
 </orbital>
</orbitals>
</ion>
`

func TestReadIon(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "C_bulk.ion.xml")
	os.WriteFile(name, []byte(testIon), 0644)
	a, err := ReadIon(name)
	if err != nil {
		Te.Fatal(err)
	}
	if a.Tag != "C_bulk" || a.Z != 6 || a.No() != 4 || a.Mass != 12.01 {
		Te.Errorf("wrong species %v", a)
	}
	if math.Abs(a.Orbitals[2].R-5*unit.BohrToAng) > 1e-10 || a.Orbitals[0].Q0 != 2 {
		Te.Errorf("wrong orbitals %v", a.Orbitals)
	}
}

func TestMissingIon(Te *testing.T) {
	if _, err := ReadIon(filepath.Join(Te.TempDir(), "none.ion.xml")); !errors.Is(err, siesta.ErrMissing) {
		Te.Errorf("expected a missing-file error, got %v", err)
	}
}
