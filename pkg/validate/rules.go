package validate

// Rule is one named cross-field consistency check, expressed as a Rego
// module. Every module lives in the consistency package and defines a
// deny document over input.vars (the set document variables) and
// input.flags (the resolved control values). Unset variables are absent
// from the input, so a reference to one leaves the rule body undefined.
type Rule struct {
	// Name identifies the rule in error messages.
	Name string

	// Message is the fatal message reported when the rule denies.
	Message string

	// Rego is the rule's policy module.
	Rego string
}

// Rules returns the consistency rules in their fixed evaluation order.
func Rules() []Rule {
	return []Rule{
		origflagSubgridflagRule(),
		h2osfcRule(),
		bedrockRule(),
		origflagDeprecatedRule(),
		branchRestartRule(),
		coldStartRule(),
		funRule(),
		dynrootHydrstressRule(),
		cndvTransientRule(),
		bgcTogglesRule(),
		constantCO2Rule(),
	}
}

// origflagSubgridflagRule rejects combining the legacy and subgrid
// surface-runoff formulations.
func origflagSubgridflagRule() Rule {
	return Rule{
		Name:    "origflag-subgridflag-exclusive",
		Message: "origflag=1 and subgridflag=1 cannot be combined: the legacy and subgrid surface-runoff formulations are mutually exclusive",
		Rego: `package consistency

import rego.v1

deny if {
	input.vars.origflag == 1
	input.vars.subgridflag == 1
}`,
	}
}

// h2osfcRule requires the subgrid formulation for prognostic surface water.
func h2osfcRule() Rule {
	return Rule{
		Name:    "h2osfc-requires-subgridflag",
		Message: "h2osfcflag=1 requires subgridflag=1: prognostic surface water depends on the subgrid surface-runoff formulation",
		Rego: `package consistency

import rego.v1

subgrid if input.vars.subgridflag == 1

deny if {
	input.vars.h2osfcflag == 1
	not subgrid
}`,
	}
}

func bedrockRule() Rule {
	return Rule{
		Name:    "bedrock-requires-flux-lbc",
		Message: "use_bedrock=.true. requires lower_boundary_condition=2 (flux)",
		Rego: `package consistency

import rego.v1

flux_lbc if input.vars.lower_boundary_condition == 2

deny if {
	input.vars.use_bedrock == true
	not flux_lbc
}`,
	}
}

// origflagDeprecatedRule rejects the legacy formulation at physics
// versions past clm4_5.
func origflagDeprecatedRule() Rule {
	return Rule{
		Name:    "origflag-deprecated",
		Message: "origflag=1 is not supported at this physics version: the legacy surface-runoff formulation ends at clm4_5",
		Rego: `package consistency

import rego.v1

deny if {
	input.vars.origflag == 1
	input.flags.phys in {"clm5_0", "clm5_1"}
}`,
	}
}

// branchRestartRule ties the branch start type and the restart source
// together: either both or neither.
func branchRestartRule() Rule {
	return Rule{
		Name:    "branch-restart-source",
		Message: "a branch start requires nrevsn, and nrevsn is only valid for a branch start",
		Rego: `package consistency

import rego.v1

branch if input.flags.start_type == "branch"

has_restart if input.vars.nrevsn != ""

deny if {
	branch
	not has_restart
}

deny if {
	has_restart
	not branch
}`,
	}
}

func coldStartRule() Rule {
	return Rule{
		Name:    "cold-start-no-finidat",
		Message: "a cold start must not name an initial condition dataset",
		Rego: `package consistency

import rego.v1

deny if {
	input.flags.start_type == "cold"
	input.vars.finidat != ""
}`,
	}
}

func funRule() Rule {
	return Rule{
		Name:    "fun-requires-nitrif-denitrif",
		Message: "use_fun=.true. requires use_nitrif_denitrif=.true.",
		Rego: `package consistency

import rego.v1

nitrif if input.vars.use_nitrif_denitrif == true

deny if {
	input.vars.use_fun == true
	not nitrif
}`,
	}
}

func dynrootHydrstressRule() Rule {
	return Rule{
		Name:    "dynroot-hydrstress-exclusive",
		Message: "use_dynroot and use_hydrstress cannot both be enabled",
		Rego: `package consistency

import rego.v1

deny if {
	input.vars.use_dynroot == true
	input.vars.use_hydrstress == true
}`,
	}
}

func cndvTransientRule() Rule {
	return Rule{
		Name:    "cndv-transient-landuse-exclusive",
		Message: "dynamic vegetation (use_cndv) cannot run with a transient land-use dataset",
		Rego: `package consistency

import rego.v1

deny if {
	input.vars.use_cndv == true
	input.vars.flanduse_timeseries != ""
}`,
	}
}

// bgcTogglesRule denies only when every derived toggle is set and every
// one of them contradicts the chosen mode; a single agreeing toggle
// clears the check.
func bgcTogglesRule() Rule {
	return Rule{
		Name:    "bgc-toggles-match-mode",
		Message: "the biogeochemistry toggles all contradict the chosen bgc mode",
		Rego: `package consistency

import rego.v1

bgc_toggles := ["use_lch4", "use_nitrif_denitrif", "use_vertsoilc", "use_century_decomp"]

mode := m if {
	m := input.flags.bgc_mode
} else := m if {
	m := input.vars.bgc_mode
}

want := mode == "bgc"

deny if {
	every name in bgc_toggles {
		input.vars[name] != want
	}
}`,
	}
}

func constantCO2Rule() Rule {
	return Rule{
		Name:    "constant-co2-requires-ppmv",
		Message: "co2_type=constant requires co2_ppmv",
		Rego: `package consistency

import rego.v1

deny if {
	input.vars.co2_type == "constant"
	not input.vars.co2_ppmv
}`,
	}
}
