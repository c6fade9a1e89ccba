package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/openlsm/nlconf/pkg/engine"
)

// ValidateShape checks a YAML source document against a CUE shape schema
// by unification, before any typed decoding happens. The defaults catalog
// reuses this for its own source shapes.
func ValidateShape(shape string, data []byte, sourceName string) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engine.NewSchemaError(fmt.Sprintf("%s: not valid YAML", sourceName), err)
	}

	ctx := cuecontext.New()
	shapeVal := ctx.CompileString(shape)
	if err := shapeVal.Err(); err != nil {
		return engine.NewSchemaError("failed to compile shape schema", err)
	}

	dataVal := ctx.Encode(doc)
	if err := dataVal.Err(); err != nil {
		return engine.NewSchemaError(fmt.Sprintf("%s: cannot encode document", sourceName), err)
	}

	unified := shapeVal.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return engine.NewSchemaError(fmt.Sprintf("%s: document does not match the expected shape", sourceName), err)
	}
	return nil
}
