package engine

// StartType is the requested run start mode.
type StartType string

const (
	// StartTypeCold starts from arbitrary internal state with no initial
	// condition file.
	StartTypeCold StartType = "cold"

	// StartTypeStartup starts from an initial condition file when one can
	// be resolved, falling back to arbitrary initialization otherwise.
	StartTypeStartup StartType = "startup"

	// StartTypeContinue resumes a run and requires an initial condition.
	StartTypeContinue StartType = "continue"

	// StartTypeBranch branches from a prior run's restart file (nrevsn).
	StartTypeBranch StartType = "branch"
)

// StartTypes lists the accepted start types.
func StartTypes() []StartType {
	return []StartType{StartTypeCold, StartTypeStartup, StartTypeContinue, StartTypeBranch}
}

// ParseStartType validates a start type token.
func ParseStartType(s string) (StartType, error) {
	for _, st := range StartTypes() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", NewValidationError("unknown start type", nil).WithVariable("start_type").WithValue(s)
}

// DemandsInitialCondition reports whether the start type fails fatally
// when no initial condition file can be resolved.
func (s StartType) DemandsInitialCondition() bool {
	return s == StartTypeContinue
}

// physicsOrder ranks the known physics versions from oldest to newest.
var physicsOrder = []string{"clm4_5", "clm5_0", "clm5_1"}

// ComparePhysics compares two physics version tokens. It returns a
// negative value if a is older than b, zero if equal, positive if newer.
// Unknown versions rank before all known ones.
func ComparePhysics(a, b string) int {
	return physicsRank(a) - physicsRank(b)
}

func physicsRank(v string) int {
	for i, p := range physicsOrder {
		if p == v {
			return i
		}
	}
	return -1
}

// BGC modes supported by the biogeochemistry resolution step.
const (
	BGCModeSP    = "sp"
	BGCModeCN    = "cn"
	BGCModeBGC   = "bgc"
	BGCModeFates = "fates"
)
