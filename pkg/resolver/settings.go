// Package resolver orchestrates the configuration resolution run: it
// merges the external input sources in strict precedence order, then runs
// a fixed pipeline of resolution steps that fill remaining variables from
// the defaults catalog using progressively resolved attribute flags.
package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openlsm/nlconf/pkg/engine"
)

// Settings holds the CLI-derived inputs of one resolution run. Zero values
// mean "not given": empty strings, a nil slice, GlcNec of -1, CO2PPMV of 0
// and CouplingsPerDay of 0 are all unset.
type Settings struct {
	// Resolution selects the horizontal grid (variable res).
	Resolution string

	// Mask selects the land/ocean mask (variable mask).
	Mask string

	// Physics selects the physics version (variable phys).
	Physics string

	// BGCMode selects the biogeochemistry mode (variable bgc_mode).
	BGCMode string

	// RCP selects the representative concentration pathway (variable rcp).
	RCP string

	// GlcNec is the glacier elevation-class count (variable
	// maxpatch_glcmec). -1 means not given.
	GlcNec int

	// SimYear is the simulation year, or a YYYY-YYYY range for a
	// transient run (variable sim_year).
	SimYear string

	// StartType is the run start mode (cold, startup, continue, branch).
	StartType string

	// RestartFile is the restart source for a branch run (variable nrevsn).
	RestartFile string

	// CO2PPMV is the atmospheric CO2 concentration (variable co2_ppmv).
	CO2PPMV float64

	// CO2Type is the CO2 treatment (variable co2_type).
	CO2Type string

	// CouplingsPerDay is the land/atmosphere coupling frequency. The
	// clock step derives dtime from it and conflict-checks the result.
	CouplingsPerDay int

	// Demand lists variables that must resolve to a value.
	Demand []string

	// UseCase names the use-case bundle to merge.
	UseCase string

	// InlineText is override text supplied directly as namelist syntax.
	InlineText string

	// OverrideFiles are override files merged in the order given.
	OverrideFiles []string

	// InputDataRoot is the directory absolute input pathnames resolve
	// against; used by the existence audit, not by resolution.
	InputDataRoot string

	// Env is the environment/case map used for ${VAR} expansion of string
	// values. It is read-only.
	Env map[string]string
}

// DefaultSettings returns a Settings with every input unset.
func DefaultSettings() Settings {
	return Settings{GlcNec: -1}
}

// settingOverride binds one CLI setting to the schema variable it
// overrides.
type settingOverride struct {
	variable string
	token    string
}

// overrides returns the single-purpose variable overrides present in the
// settings, in a fixed application order.
func (s *Settings) overrides() []settingOverride {
	var out []settingOverride
	add := func(variable, token string) {
		out = append(out, settingOverride{variable: variable, token: token})
	}

	if s.Resolution != "" {
		add("res", s.Resolution)
	}
	if s.Mask != "" {
		add("mask", s.Mask)
	}
	if s.Physics != "" {
		add("phys", s.Physics)
	}
	if s.BGCMode != "" {
		add("bgc_mode", s.BGCMode)
	}
	if s.RCP != "" {
		add("rcp", s.RCP)
	}
	if s.SimYear != "" {
		add("sim_year", s.SimYear)
	}
	if s.GlcNec >= 0 {
		add("maxpatch_glcmec", strconv.Itoa(s.GlcNec))
	}
	if s.CO2PPMV > 0 {
		add("co2_ppmv", strconv.FormatFloat(s.CO2PPMV, 'f', -1, 64))
	}
	if s.CO2Type != "" {
		add("co2_type", s.CO2Type)
	}
	if s.RestartFile != "" {
		add("nrevsn", s.RestartFile)
	}
	return out
}

// startType returns the validated start type, defaulting to startup.
func (s *Settings) startType() (engine.StartType, error) {
	if s.StartType == "" {
		return engine.StartTypeStartup, nil
	}
	return engine.ParseStartType(s.StartType)
}

// splitSimYear splits a simulation-year setting into the attribute-match
// year and the range token ("constant" for a fixed-year run).
func splitSimYear(simYear string) (year, yearRange string, err error) {
	if start, _, isRange := strings.Cut(simYear, "-"); isRange {
		if len(start) != 4 {
			return "", "", engine.NewValidationError(
				fmt.Sprintf("malformed simulation year range %q", simYear), nil).WithVariable("sim_year")
		}
		return start, simYear, nil
	}
	return simYear, engine.SimYearRangeConstant, nil
}
