package document

import (
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/engine"
)

func TestParse_Basic(t *testing.T) {
	doc, err := Parse(`
! a leading comment
&clm_inparm
 dtime = 1800
 finidat = 'lnd/clm2/initdata/clmi.nc' ! trailing comment
 use_cn = .true.
 co2_ppmv = 367.0
/
&soilhydrology_inparm
 origflag = 0
/
`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	tests := []struct {
		group, name string
		want        cty.Value
	}{
		{"clm_inparm", "dtime", cty.NumberIntVal(1800)},
		{"clm_inparm", "finidat", cty.StringVal("lnd/clm2/initdata/clmi.nc")},
		{"clm_inparm", "use_cn", cty.True},
		{"clm_inparm", "co2_ppmv", cty.MustParseNumberVal("367.0")},
		{"soilhydrology_inparm", "origflag", cty.Zero},
	}
	for _, tt := range tests {
		v, ok := doc.Get(tt.group, tt.name)
		if !ok {
			t.Errorf("expected %s/%s to be set", tt.group, tt.name)
			continue
		}
		if !v.RawEquals(tt.want) {
			t.Errorf("%s/%s: expected %v, got %v", tt.group, tt.name, tt.want, v)
		}
	}
}

func TestParse_QuoteEscaping(t *testing.T) {
	doc, err := Parse("&clm_inparm\n finidat = 'it''s.nc'\n/")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	v, _ := doc.Get("clm_inparm", "finidat")
	if v.AsString() != "it's.nc" {
		t.Errorf("expected doubled quote to unescape, got %q", v.AsString())
	}
}

func TestParse_BangInsideQuotesIsNotAComment(t *testing.T) {
	doc, err := Parse("&clm_inparm\n finidat = 'weird!name.nc'\n/")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	v, _ := doc.Get("clm_inparm", "finidat")
	if v.AsString() != "weird!name.nc" {
		t.Errorf("expected bang inside quotes to survive, got %q", v.AsString())
	}
}

func TestParse_EndTerminator(t *testing.T) {
	doc, err := Parse("&clm_inparm\n dtime = 1800\n&end")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if !doc.Has("clm_inparm", "dtime") {
		t.Error("expected &end to close the group")
	}
}

func TestParse_TrailingComma(t *testing.T) {
	doc, err := Parse("&clm_inparm\n dtime = 1800,\n/")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	v, _ := doc.Get("clm_inparm", "dtime")
	if !v.RawEquals(cty.NumberIntVal(1800)) {
		t.Errorf("expected trailing comma to be stripped, got %v", v)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"assignment outside group", "dtime = 1800"},
		{"unterminated group", "&clm_inparm\n dtime = 1800"},
		{"nested group", "&clm_inparm\n&soilhydrology_inparm\n/"},
		{"terminator outside group", "/"},
		{"missing value", "&clm_inparm\n dtime =\n/"},
		{"missing equals", "&clm_inparm\n dtime 1800\n/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			if !engine.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestParseFile_MissingFileIsIOError(t *testing.T) {
	_, err := ParseFile("/nonexistent/user_nl_clm")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !engine.IsIO(err) {
		t.Errorf("expected an I/O error, got %v", err)
	}
}

func TestTokenVal(t *testing.T) {
	tests := []struct {
		raw  string
		want cty.Value
	}{
		{"'quoted'", cty.StringVal("quoted")},
		{`"double"`, cty.StringVal("double")},
		{".true.", cty.True},
		{".FALSE.", cty.False},
		{".t.", cty.True},
		{"42", cty.NumberIntVal(42)},
		{"-2.0", cty.MustParseNumberVal("-2.0")},
		{"bareword", cty.StringVal("bareword")},
	}
	for _, tt := range tests {
		if got := TokenVal(tt.raw); !got.RawEquals(tt.want) {
			t.Errorf("TokenVal(%q): expected %v, got %v", tt.raw, tt.want, got)
		}
	}
}
