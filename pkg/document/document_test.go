package document

import (
	"testing"

	"github.com/zclconf/go-cty/cty"
)

func TestDocument_SetAndGetIsCaseInsensitive(t *testing.T) {
	doc := New()
	doc.Set("CLM_inparm", "DTime", cty.NumberIntVal(1800))

	v, ok := doc.Get("clm_inparm", "dtime")
	if !ok {
		t.Fatal("expected variable to be set")
	}
	if !v.RawEquals(cty.NumberIntVal(1800)) {
		t.Errorf("expected 1800, got %v", v)
	}
}

func TestDocument_MergeFromFillsOnlyGaps(t *testing.T) {
	doc := New()
	doc.Set("clm_inparm", "co2_ppmv", cty.NumberIntVal(300))

	other := New()
	other.Set("clm_inparm", "co2_ppmv", cty.NumberIntVal(367))
	other.Set("clm_inparm", "use_cn", cty.True)

	doc.MergeFrom(other)

	v, _ := doc.Get("clm_inparm", "co2_ppmv")
	if !v.RawEquals(cty.NumberIntVal(300)) {
		t.Errorf("merge must not overwrite an existing value, got %v", v)
	}
	if !doc.Has("clm_inparm", "use_cn") {
		t.Error("merge must fill variables the document does not have")
	}
}

func TestDocument_GroupsPreserveInsertionOrder(t *testing.T) {
	doc := New()
	doc.Set("clm_inparm", "dtime", cty.NumberIntVal(1800))
	doc.Set("soilhydrology_inparm", "origflag", cty.Zero)
	doc.Set("clm_inparm", "use_cn", cty.False)

	groups := doc.Groups()
	if len(groups) != 2 || groups[0] != "clm_inparm" || groups[1] != "soilhydrology_inparm" {
		t.Errorf("expected insertion-ordered groups, got %v", groups)
	}
}

func TestDocument_Equal(t *testing.T) {
	a := New()
	a.Set("clm_inparm", "dtime", cty.NumberIntVal(1800))
	a.Set("clm_inparm", "use_cn", cty.True)

	b := New()
	b.Set("clm_inparm", "use_cn", cty.True)
	b.Set("clm_inparm", "dtime", cty.NumberIntVal(1800))

	if !a.Equal(b) {
		t.Error("expected documents with the same content to be equal regardless of order")
	}

	b.Set("clm_inparm", "use_cn", cty.False)
	if a.Equal(b) {
		t.Error("expected documents with different values to be unequal")
	}
}

func TestDocument_Expand(t *testing.T) {
	doc := New()
	doc.Set("clm_inparm", "finidat", cty.StringVal("${DIN_LOC_ROOT}/initdata/clmi.nc"))
	doc.Set("clm_inparm", "fsurdat", cty.StringVal("${UNKNOWN}/surfdata.nc"))
	doc.Set("clm_inparm", "dtime", cty.NumberIntVal(1800))

	doc.Expand(map[string]string{"DIN_LOC_ROOT": "/data/inputdata"})

	v, _ := doc.Get("clm_inparm", "finidat")
	if v.AsString() != "/data/inputdata/initdata/clmi.nc" {
		t.Errorf("expected expanded path, got %q", v.AsString())
	}

	v, _ = doc.Get("clm_inparm", "fsurdat")
	if v.AsString() != "${UNKNOWN}/surfdata.nc" {
		t.Errorf("unknown references must pass through untouched, got %q", v.AsString())
	}
}

func TestExpand_UnbracedDollarPassesThrough(t *testing.T) {
	got := expand("$HOME/data and ${CASE}", map[string]string{"CASE": "I2000"})
	if got != "$HOME/data and I2000" {
		t.Errorf("expected only braced references to expand, got %q", got)
	}
}
