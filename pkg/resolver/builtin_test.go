package resolver

import (
	"context"
	"io"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/defaults"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/report"
	"github.com/openlsm/nlconf/pkg/schema"
	"github.com/openlsm/nlconf/pkg/validate"
)

func builtinFixture(t *testing.T) *fixture {
	t.Helper()
	sc, err := schema.Load(schema.Builtin())
	if err != nil {
		t.Fatalf("failed to load builtin schema: %v", err)
	}
	dc, err := defaults.Load(sc, defaults.Builtin())
	if err != nil {
		t.Fatalf("failed to load builtin defaults: %v", err)
	}
	ucs, err := defaults.LoadUseCases(sc, defaults.BuiltinUseCases())
	if err != nil {
		t.Fatalf("failed to load builtin use cases: %v", err)
	}
	return &fixture{sc: sc, dc: dc, ucs: ucs}
}

// The builtin catalogs must produce a complete, valid configuration with no
// settings at all.
func TestBuiltin_DefaultRunIsValid(t *testing.T) {
	f := builtinFixture(t)
	rep := report.New(report.Options{Silent: true, Out: io.Discard})
	ctx := rep.WithContext(context.Background())

	doc, flags, err := New(f.sc, f.dc, f.ucs, DefaultSettings()).Run(ctx)
	if err != nil {
		t.Fatalf("failed to resolve the builtin defaults: %v", err)
	}
	if err := validate.Schema(f.sc, doc); err != nil {
		t.Fatalf("resolved document failed schema validation: %v", err)
	}
	if err := validate.Consistency(ctx, doc, flags); err != nil {
		t.Fatalf("resolved document failed consistency validation: %v", err)
	}

	tests := []struct {
		group, name string
		want        cty.Value
	}{
		{"run_definitions", "res", cty.StringVal("0.9x1.25")},
		{"run_definitions", "phys", cty.StringVal("clm5_0")},
		{"run_definitions", "bgc_mode", cty.StringVal("sp")},
		{"clm_inparm", "dtime", cty.NumberIntVal(1800)},
		{"clm_inparm", "use_cn", cty.False},
		{"clm_inparm", "fsurdat", cty.StringVal("lnd/clm2/surfdata_map/surfdata_0.9x1.25_simyr2000.nc")},
		{"clm_inparm", "finidat", cty.StringVal("lnd/clm2/initdata_map/clmi.I2000.0.9x1.25_gx1v7_simyr2000.nc")},
		{"soilhydrology_inparm", "subgridflag", cty.NumberIntVal(1)},
		{"soilhydrology_inparm", "lower_boundary_condition", cty.NumberIntVal(2)},
		{"snowpack_inparm", "nlevsno", cty.NumberIntVal(12)},
	}
	for _, tt := range tests {
		v, ok := doc.Get(tt.group, tt.name)
		if !ok {
			t.Errorf("expected %s/%s to resolve", tt.group, tt.name)
			continue
		}
		if !v.RawEquals(tt.want) {
			t.Errorf("%s/%s: expected %v, got %v", tt.group, tt.name, tt.want, v)
		}
	}
}

func TestBuiltin_TransientUseCaseDemandsLandUse(t *testing.T) {
	f := builtinFixture(t)
	rep := report.New(report.Options{Silent: true, Out: io.Discard})
	ctx := rep.WithContext(context.Background())

	settings := DefaultSettings()
	settings.UseCase = "20thC_transient"

	doc, flags, err := New(f.sc, f.dc, f.ucs, settings).Run(ctx)
	if err != nil {
		t.Fatalf("failed to resolve the transient use case: %v", err)
	}

	if flags.Value(engine.FlagSimYearRange) != "1850-2000" {
		t.Errorf("expected transient sim-year range, got %q", flags.Value(engine.FlagSimYearRange))
	}
	v, ok := doc.Get("clm_inparm", "flanduse_timeseries")
	if !ok {
		t.Fatal("expected the transient land-use dataset to be demanded and resolved")
	}
	if v.AsString() != "lnd/clm2/surfdata_map/landuse.timeseries_0.9x1.25_hist_simyr1850-2000.nc" {
		t.Errorf("unexpected land-use dataset: %q", v.AsString())
	}

	// A transient run matches initial conditions on year alone, not the
	// exact start date.
	if _, ok := doc.Get("clm_inparm", "finidat"); !ok {
		t.Error("expected an initial condition for the range start year")
	}
}

func TestBuiltin_GridSelectsMask(t *testing.T) {
	f := builtinFixture(t)
	rep := report.New(report.Options{Silent: true, Out: io.Discard})
	ctx := rep.WithContext(context.Background())

	settings := DefaultSettings()
	settings.Resolution = "4x5"

	doc, _, err := New(f.sc, f.dc, f.ucs, settings).Run(ctx)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	v, _ := doc.Get("run_definitions", "mask")
	if v.AsString() != "gx3v7" {
		t.Errorf("expected the 4x5 grid to select the gx3v7 mask, got %q", v.AsString())
	}
}
