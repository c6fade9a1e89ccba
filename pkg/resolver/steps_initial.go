package resolver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/engine"
)

// stepInitial selects the initial-condition dataset (finidat).
//
// A cold start forces finidat to the explicit empty sentinel and skips the
// lookup entirely. Otherwise the catalog is queried by grid, physics
// version, surface-dataset identity, and either the exact start date or
// just the simulation year, depending on whether a transient land-use
// dataset is in use. On a miss, the acceptable-year catalog and the
// maximum-year-distance tolerance drive a bounded retry loop with relaxed
// year matching and spatial interpolation enabled. A start type that
// demands an initial condition fails fatally when the loop is exhausted;
// anything else leaves finidat unset and warns.
func stepInitial(rc *runContext) error {
	if !rc.sc.Has("finidat") {
		return nil
	}

	startType := engine.StartType(rc.flags.Value(engine.FlagStartType))
	if startType == engine.StartTypeCold {
		if _, set := rc.value("finidat"); !set {
			return rc.setValue("finidat", cty.StringVal(""))
		}
		return nil
	}
	if _, set := rc.value("finidat"); set {
		return nil
	}

	simYear := rc.flags.Value(engine.FlagSimYear)
	transient := rc.stringValue("flanduse_timeseries") != ""

	extra := map[string]string{}
	if simYear != "" {
		extra["ic_year"] = simYear
		if !transient {
			// A fixed-year run matches on the exact start date.
			extra["ic_ymd"] = simYear + "0101"
		}
	}
	if fsurdat := rc.stringValue("fsurdat"); fsurdat != "" {
		extra["fsurdat"] = fsurdat
	}

	token, ok := rc.lookupDefault("finidat", extra)
	if !ok {
		var err error
		token, ok, err = rc.retryInitialLookup(extra, simYear)
		if err != nil {
			return err
		}
	}

	switch {
	case ok:
		return rc.setValue("finidat", cty.StringVal(token))
	case startType.DemandsInitialCondition():
		return engine.NewNotFoundError(
			fmt.Sprintf("no initial condition dataset matches simulation year %s and start type %s requires one",
				simYear, startType), nil).WithVariable("finidat")
	default:
		rc.rep.Warnf("no initial condition dataset matches simulation year %s; the run starts from arbitrary initial state", simYear)
		return nil
	}
}

// retryInitialLookup is the relaxed-matching loop: it walks the cataloged
// acceptable years within the configured distance of the requested year,
// nearest first, retrying the finidat lookup with year-only matching and
// the interpolation attribute overrides applied. The first hit enables
// spatial interpolation.
func (rc *runContext) retryInitialLookup(extra map[string]string, simYear string) (string, bool, error) {
	requested, err := strconv.Atoi(simYear)
	if err != nil {
		return "", false, nil
	}
	yearsRaw, ok := rc.lookupDefault("init_interp_sim_years", nil)
	if !ok {
		return "", false, nil
	}
	tolerance, ok := rc.lookupInt("init_interp_how_close", nil)
	if !ok {
		return "", false, nil
	}

	for _, year := range nearbyYears(yearsRaw, requested, tolerance) {
		query := make(map[string]string, len(extra)+1)
		for k, v := range extra {
			// Relaxed matching drops the exact-date key.
			if k != "ic_ymd" && k != "ic_year" {
				query[k] = v
			}
		}
		query["ic_year"] = strconv.Itoa(year)
		if attrs, found := rc.lookupDefault("init_interp_attributes", nil); found {
			for k, v := range parseAttrPairs(attrs) {
				query[k] = v
			}
		}

		token, found := rc.lookupDefault("finidat", query)
		if !found {
			continue
		}
		rc.rep.Warnf("using initial conditions for year %d instead of requested year %d; enabling spatial interpolation",
			year, requested)
		if rc.sc.Has("use_init_interp") {
			if _, set := rc.value("use_init_interp"); !set {
				if err := rc.setValue("use_init_interp", cty.True); err != nil {
					return "", false, err
				}
			}
		}
		return token, true, nil
	}
	return "", false, nil
}

// nearbyYears parses the acceptable-year list and returns the years within
// tolerance of the requested year, ordered nearest first. Equal distances
// keep catalog order.
func nearbyYears(csv string, requested, tolerance int) []int {
	var years []int
	for _, tok := range strings.Split(csv, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		if abs(y-requested) <= tolerance {
			years = append(years, y)
		}
	}
	sort.SliceStable(years, func(i, j int) bool {
		return abs(years[i]-requested) < abs(years[j]-requested)
	})
	return years
}

// parseAttrPairs parses an attribute-override string of space- or
// comma-separated key=value pairs.
func parseAttrPairs(s string) map[string]string {
	out := make(map[string]string)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	for _, f := range fields {
		if k, v, ok := strings.Cut(f, "="); ok && k != "" && v != "" {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
