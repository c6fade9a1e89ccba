package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/defaults"
	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/report"
	"github.com/openlsm/nlconf/pkg/schema"
)

// Step is one named resolution step. Steps are deterministic given the
// current document and flags, idempotent, and never overwrite a variable
// that is already set; they only fill gaps, update flags, or validate.
type Step struct {
	// Name identifies the step.
	Name string

	// Requires names the steps that must run before this one. The
	// declared order of the pipeline is checked against these
	// prerequisites at startup.
	Requires []string

	// Run executes the step.
	Run func(rc *runContext) error
}

// pipeline returns the resolution steps in their declared order.
func pipeline() []Step {
	return []Step{
		{Name: "grid", Run: stepGrid},
		{Name: "bgc", Requires: []string{"grid"}, Run: stepBGC},
		{Name: "glacier", Requires: []string{"grid"}, Run: stepGlacier},
		{Name: "clock", Requires: []string{"grid"}, Run: stepClock},
		{Name: "demand", Requires: []string{"grid", "bgc"}, Run: stepDemand},
		{Name: "surface", Requires: []string{"demand", "glacier"}, Run: stepSurface},
		{Name: "initial", Requires: []string{"surface"}, Run: stepInitial},
		{Name: "control", Requires: []string{"bgc", "initial"}, Run: fillGroup("clm_inparm")},
		{Name: "hydrology", Requires: []string{"grid"}, Run: fillGroup("soilhydrology_inparm")},
		{Name: "canopy", Requires: []string{"grid"}, Run: fillGroup("canopyhydrology_inparm")},
		{Name: "snowpack", Requires: []string{"grid"}, Run: fillGroup("snowpack_inparm")},
		{Name: "forcing", Requires: []string{"glacier"}, Run: fillGroup("atm_forcing_inparm")},
		{Name: "lnd2atm", Requires: []string{"grid"}, Run: fillGroup("lnd2atm_inparm")},
		{
			Name: "hydrology-consistency",
			Requires: []string{
				"control", "hydrology", "canopy", "snowpack", "forcing", "lnd2atm",
			},
			Run: stepConsistency,
		},
	}
}

// validateOrder checks that the declared pipeline order forms a valid
// sequence: unique names, and every prerequisite naming a step that runs
// earlier. It runs once at startup so a misdeclared pipeline fails fast
// instead of resolving against stale flags.
func validateOrder(steps []Step) error {
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.Name == "" {
			return engine.NewValidationError("resolution step with an empty name", nil)
		}
		if seen[s.Name] {
			return engine.NewValidationError(fmt.Sprintf("duplicate resolution step %q", s.Name), nil)
		}
		for _, req := range s.Requires {
			if !seen[req] {
				return engine.NewValidationError(
					fmt.Sprintf("resolution step %q requires %q, which does not run before it", s.Name, req), nil)
			}
		}
		seen[s.Name] = true
	}
	return nil
}

// runContext carries the state a resolution step operates on.
type runContext struct {
	ctx      context.Context
	rep      *report.Reporter
	sc       *schema.Catalog
	dc       *defaults.Catalog
	doc      *document.Document
	flags    *engine.Flags
	settings *Settings
}

// value returns the document value of a schema variable.
func (rc *runContext) value(name string) (cty.Value, bool) {
	group, err := rc.sc.GroupOf(name)
	if err != nil {
		return cty.NilVal, false
	}
	return rc.doc.Get(group, name)
}

// stringValue returns a string variable's value, or "" when unset.
func (rc *runContext) stringValue(name string) string {
	v, ok := rc.value(name)
	if !ok || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}

// setValue coerces and writes a variable that must currently be unset.
func (rc *runContext) setValue(name string, v cty.Value) error {
	d, err := rc.sc.Descriptor(name)
	if err != nil {
		return err
	}
	coerced, err := rc.sc.Coerce(name, v)
	if err != nil {
		return err
	}
	rc.doc.Set(d.Group, d.Name, coerced)
	return nil
}

// fillDefault fills a variable from the defaults catalog when three things
// hold: the schema declares it, the document does not have it yet, and a
// default matches the current flags plus extra attributes. It returns
// whether the variable is set afterwards.
func (rc *runContext) fillDefault(name string, extra map[string]string) (bool, error) {
	d, err := rc.sc.Descriptor(name)
	if err != nil {
		// A variable the schema does not declare cannot be filled; steps
		// are schema-driven, so this is a skip, not an error.
		return false, nil
	}
	if _, set := rc.doc.Get(d.Group, d.Name); set {
		return true, nil
	}

	entry, ok := rc.dc.Match(d.Name, rc.flags.Query(extra))
	if !ok {
		return false, nil
	}
	v, err := rc.sc.CoerceToken(d.Name, entry.Value)
	if err != nil {
		return false, err
	}
	rc.doc.Set(d.Group, d.Name, v)
	rc.rep.Log().Debug().
		Str("variable", d.Name).
		Str("value", entry.Value).
		Str("source", entry.Source()).
		Msg("filled from defaults catalog")
	return true, nil
}

// requireDefault is fillDefault for variables the run cannot proceed
// without.
func (rc *runContext) requireDefault(name string, extra map[string]string) error {
	set, err := rc.fillDefault(name, extra)
	if err != nil {
		return err
	}
	if !set && rc.sc.Has(name) {
		return engine.NewNotFoundError("no default resolvable for required variable", nil).WithVariable(name)
	}
	return nil
}

// lookupDefault resolves a raw default token without touching the
// document, for control values like clm_demand that never enter the
// namelist.
func (rc *runContext) lookupDefault(name string, extra map[string]string) (string, bool) {
	return rc.dc.Value(name, rc.flags.Query(extra))
}

// lookupInt resolves a control value as an integer.
func (rc *runContext) lookupInt(name string, extra map[string]string) (int, bool) {
	raw, ok := rc.lookupDefault(name, extra)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// setFlagFromValue records a document variable's value as a resolved flag.
func (rc *runContext) setFlagFromValue(flag, variable string) error {
	v, ok := rc.value(variable)
	if !ok {
		return nil
	}
	d, err := rc.sc.Descriptor(variable)
	if err != nil {
		return err
	}
	return rc.flags.Set(flag, bareFlagToken(d, v))
}

func bareFlagToken(d *schema.Descriptor, v cty.Value) string {
	switch d.Type {
	case schema.TypeLogical:
		if v.True() {
			return ".true."
		}
		return ".false."
	case schema.TypeInteger, schema.TypeReal:
		return v.AsBigFloat().Text('f', -1)
	default:
		return v.AsString()
	}
}
