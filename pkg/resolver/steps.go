package resolver

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/validate"
)

// stepGrid resolves the run discriminators: grid resolution, land mask,
// physics version, simulation year, pathway, and start type. Every later
// step reads the flags it sets.
func stepGrid(rc *runContext) error {
	if err := rc.requireDefault("res", nil); err != nil {
		return err
	}
	if err := rc.setFlagFromValue(engine.FlagGrid, "res"); err != nil {
		return err
	}

	if err := rc.requireDefault("mask", nil); err != nil {
		return err
	}
	if err := rc.setFlagFromValue(engine.FlagMask, "mask"); err != nil {
		return err
	}

	if err := rc.requireDefault("phys", nil); err != nil {
		return err
	}
	if err := rc.setFlagFromValue(engine.FlagPhysics, "phys"); err != nil {
		return err
	}

	if _, err := rc.fillDefault("sim_year", nil); err != nil {
		return err
	}
	simYear := rc.stringValue("sim_year")
	if simYear == "" {
		simYear = rc.settings.SimYear
	}
	if simYear != "" {
		year, yearRange, err := splitSimYear(simYear)
		if err != nil {
			return err
		}
		if err := rc.flags.Set(engine.FlagSimYear, year); err != nil {
			return err
		}
		if err := rc.flags.Set(engine.FlagSimYearRange, yearRange); err != nil {
			return err
		}
	}

	if _, err := rc.fillDefault("rcp", nil); err != nil {
		return err
	}
	if err := rc.setFlagFromValue(engine.FlagRCP, "rcp"); err != nil {
		return err
	}

	st, err := rc.settings.startType()
	if err != nil {
		return err
	}
	if err := rc.flags.Set(engine.FlagStartType, string(st)); err != nil {
		return err
	}

	// Grid-determined datasets.
	if err := rc.requireDefault("paramfile", nil); err != nil {
		return err
	}
	set, err := rc.fillDefault("fatmlndfrc", nil)
	if err != nil {
		return err
	}
	if !set && rc.sc.Has("fatmlndfrc") {
		rc.rep.Warnf("no domain dataset (fatmlndfrc) for grid %s with mask %s",
			rc.flags.Value(engine.FlagGrid), rc.flags.Value(engine.FlagMask))
	}
	return nil
}

// bgcToggles are the booleans derived from the biogeochemistry mode.
var bgcToggles = []string{
	"use_cn",
	"use_lch4",
	"use_nitrif_denitrif",
	"use_vertsoilc",
	"use_century_decomp",
	"use_fun",
	"use_cndv",
}

// stepBGC resolves the biogeochemistry mode and its derived toggles.
func stepBGC(rc *runContext) error {
	if err := rc.requireDefault("bgc_mode", nil); err != nil {
		return err
	}
	if err := rc.setFlagFromValue(engine.FlagBGCMode, "bgc_mode"); err != nil {
		return err
	}
	for _, name := range bgcToggles {
		if _, err := rc.fillDefault(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// stepGlacier resolves the glacier elevation-class count and glacier
// behavior options.
func stepGlacier(rc *runContext) error {
	if _, err := rc.fillDefault("maxpatch_glcmec", nil); err != nil {
		return err
	}
	if err := rc.setFlagFromValue(engine.FlagGlcNec, "maxpatch_glcmec"); err != nil {
		return err
	}
	if _, err := rc.fillDefault("glc_do_dynglacier", nil); err != nil {
		return err
	}
	return nil
}

// secondsPerDay is the length of the model day in seconds.
const secondsPerDay = 86400

// stepClock derives the model timestep from the requested coupling
// frequency. A derived timestep that disagrees with an explicitly merged
// dtime is a conflict, never a silent overwrite.
func stepClock(rc *runContext) error {
	if !rc.sc.Has("dtime") {
		return nil
	}
	if rc.settings.CouplingsPerDay <= 0 {
		_, err := rc.fillDefault("dtime", nil)
		return err
	}

	if secondsPerDay%rc.settings.CouplingsPerDay != 0 {
		return engine.NewValidationError(
			fmt.Sprintf("coupling frequency %d does not divide the %d-second day",
				rc.settings.CouplingsPerDay, secondsPerDay), nil).WithVariable("dtime")
	}
	derived := int64(secondsPerDay / rc.settings.CouplingsPerDay)

	if existing, set := rc.value("dtime"); set {
		got, _ := existing.AsBigFloat().Int64()
		if got != derived {
			return engine.NewConflictError(
				fmt.Sprintf("coupling frequency %d implies dtime=%d but dtime=%d was set explicitly",
					rc.settings.CouplingsPerDay, derived, got), nil).
				WithVariable("dtime").
				WithValue(fmt.Sprintf("%d", got))
		}
		return nil
	}
	return rc.setValue("dtime", cty.NumberIntVal(derived))
}

// stepDemand resolves the demand list: variables that must resolve to a
// value, from the CLI plus the clm_demand control value. An explicitly
// merged clm_demand takes precedence over the catalog default. A transient
// simulation-year range implicitly demands the transient land-use dataset.
func stepDemand(rc *runContext) error {
	names := append([]string(nil), rc.settings.Demand...)
	if raw := rc.stringValue("clm_demand"); raw != "" {
		names = append(names, strings.Split(raw, ",")...)
	} else if raw, ok := rc.lookupDefault("clm_demand", nil); ok {
		names = append(names, strings.Split(raw, ",")...)
	}

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "null" {
			continue
		}
		if !rc.sc.Has(name) {
			return engine.NewSchemaError("demanded variable is not declared in the schema", nil).WithVariable(name)
		}
		if err := rc.requireDefault(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// stepSurface resolves the surface dataset. It must run after the demand
// step so any transient land-use setting is already fixed.
func stepSurface(rc *runContext) error {
	return rc.requireDefault("fsurdat", nil)
}

// fillGroup returns a step body that fills every unset variable of one
// namelist group for which a default matches the current flags.
func fillGroup(group string) func(rc *runContext) error {
	return func(rc *runContext) error {
		for _, name := range rc.sc.GroupVariables(group) {
			if _, err := rc.fillDefault(name, nil); err != nil {
				return err
			}
		}
		return nil
	}
}

// stepConsistency runs the cross-group consistency rules. It is last in
// the pipeline because the rules read flags set by several earlier groups.
func stepConsistency(rc *runContext) error {
	return validate.Consistency(rc.ctx, rc.doc, rc.flags)
}
