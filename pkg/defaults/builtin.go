package defaults

import _ "embed"

//go:embed builtin/defaults.yaml
var builtinDefaults []byte

//go:embed builtin/usecases.yaml
var builtinUseCases []byte

// Builtin returns the defaults source compiled into the binary. User
// sources are loaded after it, so their equally specific entries win ties.
func Builtin() Source {
	return Source{Name: "builtin:defaults", Data: builtinDefaults}
}

// BuiltinUseCases returns the use-case source compiled into the binary.
func BuiltinUseCases() Source {
	return Source{Name: "builtin:usecases", Data: builtinUseCases}
}
