package engine

import "fmt"

// Well-known resolved-flag names. Flags are scalar control values computed
// progressively during resolution; later steps read them both as gating
// conditions and as attribute-query keys for the defaults catalog.
const (
	FlagGrid         = "hgrid"
	FlagMask         = "mask"
	FlagPhysics      = "phys"
	FlagSimYear      = "sim_yr"
	FlagSimYearRange = "sim_yr_range"
	FlagRCP          = "rcp"
	FlagBGCMode      = "bgc_mode"
	FlagGlcNec       = "glc_nec"
	FlagStartType    = "start_type"
)

// SimYearRangeConstant is the sim_yr_range flag value for a fixed-year run.
const SimYearRangeConstant = "constant"

// Flags is the monotonic set of resolved control values. It starts empty,
// grows as resolution steps run, and is frozen once the pipeline completes.
// Setting a flag twice with the same value is a no-op; setting it to a
// different value is a conflict.
type Flags struct {
	values map[string]string
	order  []string
	frozen bool
}

// NewFlags creates an empty flag set.
func NewFlags() *Flags {
	return &Flags{values: make(map[string]string)}
}

// Set records a flag value. It returns a conflict error if the flag is
// already set to a different value, and a validation error if the set has
// been frozen.
func (f *Flags) Set(name, value string) error {
	if f.frozen {
		return NewValidationError(fmt.Sprintf("resolved flag %q set after the pipeline completed", name), nil)
	}
	if prev, ok := f.values[name]; ok {
		if prev != value {
			return NewConflictError(
				fmt.Sprintf("resolved flag %q already set to %q, cannot change to %q", name, prev, value), nil)
		}
		return nil
	}
	f.values[name] = value
	f.order = append(f.order, name)
	return nil
}

// Get returns the flag value and whether it has been set.
func (f *Flags) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Value returns the flag value, or the empty string if unset.
func (f *Flags) Value(name string) string {
	return f.values[name]
}

// Has reports whether the flag has been set.
func (f *Flags) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Freeze marks the flag set as complete. Further Set calls fail.
func (f *Flags) Freeze() {
	f.frozen = true
}

// Query returns a copy of all resolved flags as a defaults-catalog
// attribute query. Additional attributes can be layered on top without
// affecting the flag set.
func (f *Flags) Query(extra map[string]string) map[string]string {
	q := make(map[string]string, len(f.values)+len(extra))
	for k, v := range f.values {
		q[k] = v
	}
	for k, v := range extra {
		q[k] = v
	}
	return q
}

// Names returns the flag names in the order they were resolved.
func (f *Flags) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
