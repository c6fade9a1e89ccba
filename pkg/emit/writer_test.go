package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/schema"
)

const testSchema = `
variables:
  - name: dtime
    group: clm_inparm
    type: integer
  - name: co2_ppmv
    group: clm_inparm
    type: real
  - name: use_cn
    group: clm_inparm
    type: logical
  - name: finidat
    group: clm_inparm
    type: string
    path_kind: absolute
  - name: fsurdat
    group: clm_inparm
    type: string
    path_kind: absolute
  - name: fpftcon
    group: clm_inparm
    type: string
    path_kind: relative
    relative_to: fsurdat
  - name: origflag
    group: soilhydrology_inparm
    type: integer
`

func loadTestSchema(t *testing.T) *schema.Catalog {
	t.Helper()
	sc, err := schema.Load(schema.Source{Name: "test", Data: []byte(testSchema)})
	if err != nil {
		t.Fatalf("failed to load test schema: %v", err)
	}
	return sc
}

func testDocument() *document.Document {
	doc := document.New()
	doc.Set("clm_inparm", "use_cn", cty.True)
	doc.Set("clm_inparm", "dtime", cty.NumberIntVal(1800))
	doc.Set("clm_inparm", "co2_ppmv", cty.NumberIntVal(367))
	doc.Set("clm_inparm", "finidat", cty.StringVal("initdata/clmi.nc"))
	doc.Set("soilhydrology_inparm", "origflag", cty.Zero)
	return doc
}

func TestWriter_Write(t *testing.T) {
	sc := loadTestSchema(t)
	var sb strings.Builder

	if err := NewWriter(sc).Write(&sb, testDocument()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	want := `&clm_inparm
 co2_ppmv = 367.
 dtime = 1800
 finidat = 'initdata/clmi.nc'
 use_cn = .true.
/
&soilhydrology_inparm
 origflag = 0
/
`
	if sb.String() != want {
		t.Errorf("unexpected output:\n got: %q\nwant: %q", sb.String(), want)
	}
}

func TestWriter_Header(t *testing.T) {
	sc := loadTestSchema(t)
	w := NewWriter(sc)
	w.Header = []string{"generated by: nlconf generate --res 0.9x1.25"}

	var sb strings.Builder
	if err := w.Write(&sb, testDocument()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	if !strings.HasPrefix(sb.String(), "! generated by: nlconf generate --res 0.9x1.25\n\n&clm_inparm\n") {
		t.Errorf("expected a leading comment block, got:\n%s", sb.String())
	}
}

func TestWriter_RoundTripsThroughParser(t *testing.T) {
	sc := loadTestSchema(t)
	doc := testDocument()

	var sb strings.Builder
	if err := NewWriter(sc).Write(&sb, doc); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	parsed, err := document.Parse(sb.String())
	if err != nil {
		t.Fatalf("failed to parse the emitted namelist: %v", err)
	}
	if parsed.Len() != doc.Len() {
		t.Errorf("expected %d variables after round trip, got %d", doc.Len(), parsed.Len())
	}
	v, _ := parsed.Get("clm_inparm", "use_cn")
	if !v.RawEquals(cty.True) {
		t.Errorf("expected use_cn to round-trip, got %v", v)
	}
}

func TestWriter_WriteFile(t *testing.T) {
	sc := loadTestSchema(t)
	path := filepath.Join(t.TempDir(), "lnd_in")

	if err := NewWriter(sc).WriteFile(path, testDocument()); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if !strings.Contains(string(data), "dtime = 1800") {
		t.Errorf("expected the namelist content on disk, got:\n%s", data)
	}
}
