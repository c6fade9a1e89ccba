package schema

import _ "embed"

//go:embed builtin/variables.yaml
var builtinVariables []byte

// Builtin returns the schema source compiled into the binary. User-supplied
// schema sources are loaded after it and may only add variables, never
// redefine builtin ones.
func Builtin() Source {
	return Source{Name: "builtin:variables", Data: builtinVariables}
}
