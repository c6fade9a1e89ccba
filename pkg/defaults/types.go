// Package defaults provides the ordered catalog of default values and the
// best-fit attribute-matching lookup used to select among them, plus the
// named use-case bundles that are resolved through the same lookup.
package defaults

// Entry is one (variable, predicate, value) default.
type Entry struct {
	// Variable is the canonical variable name the entry provides a value
	// for.
	Variable string `yaml:"variable" validate:"required"`

	// Attributes is the predicate: every named attribute must equal the
	// corresponding query attribute for the entry to match. An empty
	// predicate matches unconditionally.
	Attributes map[string]string `yaml:"attributes,omitempty"`

	// Value is the raw default token, coerced through the schema when the
	// entry is selected.
	Value string `yaml:"value"`

	// seq is the global load order, used to break specificity ties in
	// favor of the entry loaded last.
	seq int

	// source names the file the entry came from, for log messages.
	source string
}

// Source returns the name of the source the entry was loaded from.
func (e *Entry) Source() string { return e.source }

// defaultsFile is the on-disk shape of a defaults source.
type defaultsFile struct {
	Defaults []Entry `yaml:"defaults"`
}

// defaultsShape is the CUE shape every defaults source must satisfy.
const defaultsShape = `
#Entry: {
	variable:    string & =~"^[a-z][a-z0-9_]*$"
	attributes?: {[string]: string}
	value:       string
}

defaults: [...#Entry]
`

// useCaseShape is the CUE shape of a use-case source. A use-case is a
// defaults source scoped to one named scenario.
const useCaseShape = `
#Entry: {
	variable:    string & =~"^[a-z][a-z0-9_]*$"
	attributes?: {[string]: string}
	value:       string
}

use_cases: [...{
	name:        string & =~"^[a-zA-Z0-9_.-]+$"
	description: string
	defaults: [...#Entry]
}]
`
