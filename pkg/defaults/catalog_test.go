package defaults

import (
	"testing"

	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/schema"
)

const testSchema = `
variables:
  - name: fsurdat
    group: clm_inparm
    type: string
  - name: finidat
    group: clm_inparm
    type: string
  - name: use_cn
    group: clm_inparm
    type: logical
  - name: co2_ppmv
    group: clm_inparm
    type: real
  - name: sim_year
    group: run_definitions
    type: string
`

func loadTestSchema(t *testing.T) *schema.Catalog {
	t.Helper()
	sc, err := schema.Load(schema.Source{Name: "test", Data: []byte(testSchema)})
	if err != nil {
		t.Fatalf("failed to load test schema: %v", err)
	}
	return sc
}

func loadTestDefaults(t *testing.T, sc *schema.Catalog, yaml string) *Catalog {
	t.Helper()
	dc, err := Load(sc, Source{Name: "test", Data: []byte(yaml)})
	if err != nil {
		t.Fatalf("failed to load test defaults: %v", err)
	}
	return dc
}

func TestCatalog_Value_MostSpecificWins(t *testing.T) {
	sc := loadTestSchema(t)
	dc := loadTestDefaults(t, sc, `
defaults:
  - variable: fsurdat
    value: generic.nc
  - variable: fsurdat
    attributes: {hgrid: 0.9x1.25}
    value: by_grid.nc
  - variable: fsurdat
    attributes: {hgrid: 0.9x1.25, sim_yr: "2000"}
    value: by_grid_and_year.nc
`)

	tests := []struct {
		name  string
		query map[string]string
		want  string
	}{
		{"no attributes known", nil, "generic.nc"},
		{"grid known", map[string]string{"hgrid": "0.9x1.25"}, "by_grid.nc"},
		{"grid and year known", map[string]string{"hgrid": "0.9x1.25", "sim_yr": "2000"}, "by_grid_and_year.nc"},
		{"extra query attributes do not hurt", map[string]string{"hgrid": "0.9x1.25", "sim_yr": "2000", "phys": "clm5_0"}, "by_grid_and_year.nc"},
		{"mismatched grid falls back", map[string]string{"hgrid": "4x5", "sim_yr": "2000"}, "generic.nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dc.Value("fsurdat", tt.query)
			if !ok {
				t.Fatal("expected a value")
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCatalog_Value_PredicateAbsentFromQueryExcludes(t *testing.T) {
	sc := loadTestSchema(t)
	dc := loadTestDefaults(t, sc, `
defaults:
  - variable: finidat
    attributes: {ic_year: "2000"}
    value: clmi_2000.nc
`)

	// The query knows nothing about ic_year, so the entry must not match;
	// a predicate attribute missing from the query is a mismatch, not a
	// wildcard.
	if _, ok := dc.Value("finidat", map[string]string{"hgrid": "0.9x1.25"}); ok {
		t.Error("expected no match when a predicate attribute is absent from the query")
	}

	got, ok := dc.Value("finidat", map[string]string{"ic_year": "2000"})
	if !ok || got != "clmi_2000.nc" {
		t.Errorf("expected clmi_2000.nc, got %q (ok=%v)", got, ok)
	}
}

func TestCatalog_Value_TieBreakLastLoaded(t *testing.T) {
	sc := loadTestSchema(t)
	dc := loadTestDefaults(t, sc, `
defaults:
  - variable: co2_ppmv
    attributes: {sim_yr: "2000"}
    value: "367.0"
  - variable: co2_ppmv
    attributes: {sim_yr: "2000"}
    value: "368.9"
`)

	got, ok := dc.Value("co2_ppmv", map[string]string{"sim_yr": "2000"})
	if !ok {
		t.Fatal("expected a value")
	}
	if got != "368.9" {
		t.Errorf("expected the last-loaded entry to win the specificity tie, got %q", got)
	}
}

func TestCatalog_Value_LaterSourceWinsTies(t *testing.T) {
	sc := loadTestSchema(t)
	dc, err := Load(sc,
		Source{Name: "builtin", Data: []byte("defaults:\n  - variable: sim_year\n    value: \"2000\"\n")},
		Source{Name: "site", Data: []byte("defaults:\n  - variable: sim_year\n    value: \"1850\"\n")},
	)
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}

	got, _ := dc.Value("sim_year", nil)
	if got != "1850" {
		t.Errorf("expected the later source to win, got %q", got)
	}
}

func TestCatalog_Value_AttributesCompareCaseInsensitively(t *testing.T) {
	sc := loadTestSchema(t)
	dc := loadTestDefaults(t, sc, `
defaults:
  - variable: fsurdat
    attributes: {mask: gx1v7}
    value: surfdata.nc
`)

	if _, ok := dc.Value("fsurdat", map[string]string{"mask": "GX1V7"}); !ok {
		t.Error("expected attribute values to compare case-insensitively")
	}
}

func TestCatalog_Match_ExposesWinningEntry(t *testing.T) {
	sc := loadTestSchema(t)
	dc := loadTestDefaults(t, sc, `
defaults:
  - variable: use_cn
    attributes: {bgc_mode: bgc}
    value: .true.
`)

	e, ok := dc.Match("use_cn", map[string]string{"bgc_mode": "bgc"})
	if !ok {
		t.Fatal("expected a match")
	}
	if e.Value != ".true." || e.Source() != "test" {
		t.Errorf("unexpected winning entry: %+v", e)
	}
}

func TestLoad_UndeclaredVariableFails(t *testing.T) {
	sc := loadTestSchema(t)
	_, err := Load(sc, Source{Name: "bad", Data: []byte(`
defaults:
  - variable: not_in_schema
    value: x
`)})
	if err == nil {
		t.Fatal("expected a default for an undeclared variable to fail")
	}
	if !engine.IsSchemaError(err) {
		t.Errorf("expected a schema error, got %v", err)
	}
}

func TestLoad_UncoercibleValueFails(t *testing.T) {
	sc := loadTestSchema(t)
	_, err := Load(sc, Source{Name: "bad", Data: []byte(`
defaults:
  - variable: use_cn
    value: maybe
`)})
	if err == nil {
		t.Fatal("expected a default value that cannot coerce to fail at load time")
	}
	if !engine.IsSchemaError(err) {
		t.Errorf("expected a schema error, got %v", err)
	}
	cfgErr, ok := err.(*engine.ConfigError)
	if !ok || cfgErr.Variable != "use_cn" {
		t.Errorf("expected the offending variable to be named, got %v", err)
	}
}

func TestLoad_ShapeViolationFails(t *testing.T) {
	sc := loadTestSchema(t)
	// "value" must be a string per the shape schema.
	_, err := Load(sc, Source{Name: "bad", Data: []byte(`
defaults:
  - variable: use_cn
    value: [a, b]
`)})
	if err == nil {
		t.Fatal("expected a shape violation to fail")
	}
	if !engine.IsSchemaError(err) {
		t.Errorf("expected a schema error, got %v", err)
	}
}

func TestBuiltinDefaultsLoadAgainstBuiltinSchema(t *testing.T) {
	sc, err := schema.Load(schema.Builtin())
	if err != nil {
		t.Fatalf("failed to load builtin schema: %v", err)
	}
	dc, err := Load(sc, Builtin())
	if err != nil {
		t.Fatalf("failed to load builtin defaults: %v", err)
	}

	got, ok := dc.Value("use_cn", map[string]string{"bgc_mode": "bgc"})
	if !ok || got != ".true." {
		t.Errorf("expected use_cn default .true. for bgc mode, got %q (ok=%v)", got, ok)
	}
	got, ok = dc.Value("use_cn", map[string]string{"bgc_mode": "sp"})
	if !ok || got != ".false." {
		t.Errorf("expected use_cn default .false. for sp mode, got %q (ok=%v)", got, ok)
	}
}
