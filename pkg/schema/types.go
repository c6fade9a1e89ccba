// Package schema provides the immutable catalog of variable descriptors:
// each variable's group, type, allowed values, and pathname kind. Sources
// are YAML documents validated against an embedded CUE shape schema before
// any typed decoding happens.
package schema

// VarType is the declared type of a namelist variable.
type VarType string

const (
	// TypeString is a character-valued variable, single-quoted on emission.
	TypeString VarType = "string"

	// TypeInteger is a whole-number variable.
	TypeInteger VarType = "integer"

	// TypeReal is a floating-point variable, always emitted with a decimal
	// point.
	TypeReal VarType = "real"

	// TypeLogical is a boolean variable, held as a native bool in memory
	// and rendered as .true./.false. only at the emission boundary.
	TypeLogical VarType = "logical"
)

// PathKind describes how a string variable's value relates to the
// filesystem.
type PathKind string

const (
	// PathNone marks a variable whose value is not a pathname.
	PathNone PathKind = "none"

	// PathAbsolute marks an input pathname resolved against the
	// input-data root directory.
	PathAbsolute PathKind = "absolute"

	// PathRelative marks a pathname relative to the directory named by
	// another variable (Descriptor.RelativeTo).
	PathRelative PathKind = "relative"
)

// Descriptor describes one namelist variable. Descriptors are immutable
// once loaded.
type Descriptor struct {
	// Name is the unique, canonical (lowercase) variable name.
	Name string `yaml:"name" validate:"required"`

	// Group is the namelist section the variable belongs to. Every
	// variable belongs to exactly one group.
	Group string `yaml:"group" validate:"required"`

	// Type is the variable's declared type.
	Type VarType `yaml:"type" validate:"required,oneof=string integer real logical"`

	// Allowed is the enumerated set of valid values, if constrained.
	Allowed []string `yaml:"allowed,omitempty"`

	// Pattern is a regular expression valid values must match, if
	// constrained. Allowed and Pattern are mutually exclusive.
	Pattern string `yaml:"pattern,omitempty"`

	// PathKind is the pathname kind for string variables.
	PathKind PathKind `yaml:"path_kind,omitempty" validate:"omitempty,oneof=none absolute relative"`

	// RelativeTo names the variable whose value is the base directory for
	// a relative pathname. Required when PathKind is relative.
	RelativeTo string `yaml:"relative_to,omitempty"`

	// Description is optional documentation surfaced by the list mode.
	Description string `yaml:"description,omitempty"`
}

// schemaFile is the on-disk shape of a schema source.
type schemaFile struct {
	Variables []Descriptor `yaml:"variables"`
}

// schemaShape is the CUE shape every schema source must satisfy.
const schemaShape = `
#Variable: {
	name:         string & =~"^[a-z][a-z0-9_]*$"
	group:        string & =~"^[a-z][a-z0-9_]*$"
	type:         "string" | "integer" | "real" | "logical"
	allowed?:     [...string]
	pattern?:     string
	path_kind?:   "none" | "absolute" | "relative"
	relative_to?: string
	description?: string
}

variables: [...#Variable]
`
