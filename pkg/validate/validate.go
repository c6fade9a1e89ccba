// Package validate provides the final checks over a finished configuration
// document: the schema-conformance pass and the ordered table of named
// cross-field consistency rules evaluated through Rego.
package validate

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/schema"
)

// Schema checks every set variable for type and allowed-value conformance.
// The first violation aborts with an error naming the variable, its value,
// and the allowed set.
func Schema(sc *schema.Catalog, doc *document.Document) error {
	for _, group := range doc.Groups() {
		for _, name := range doc.Variables(group) {
			d, err := sc.Descriptor(name)
			if err != nil {
				return engine.NewSchemaError("document variable is not declared in the schema", nil).WithVariable(name)
			}
			if d.Group != group {
				return engine.NewSchemaError(
					fmt.Sprintf("variable belongs to group %s, not %s", d.Group, group), nil).WithVariable(name)
			}
			v, _ := doc.Get(group, name)
			if _, err := sc.Coerce(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Consistency evaluates the named rules in their fixed order, querying each
// rule's deny document against the set variables and resolved flags. The
// first denying rule aborts the run with its fatal message.
func Consistency(ctx context.Context, doc *document.Document, flags *engine.Flags) error {
	input := ruleInput(doc, flags)
	for _, rule := range Rules() {
		denied, err := evalRule(ctx, rule, input)
		if err != nil {
			return engine.NewConsistencyError("consistency rule failed to evaluate", err).WithRule(rule.Name)
		}
		if denied {
			return engine.NewConsistencyError(rule.Message, nil).WithRule(rule.Name)
		}
	}
	return nil
}

// evalRule compiles one rule's module and queries its deny document.
func evalRule(ctx context.Context, rule Rule, input map[string]interface{}) (bool, error) {
	r := rego.New(
		rego.Module(rule.Name, rule.Rego),
		rego.Query("data.consistency.deny"),
		rego.Input(input),
	)
	results, err := r.Eval(ctx)
	if err != nil {
		return false, err
	}
	for _, result := range results {
		for _, expr := range result.Expressions {
			if denied, ok := expr.Value.(bool); ok && denied {
				return true, nil
			}
		}
	}
	return false, nil
}

// ruleInput flattens the document and the resolved flags into the input
// the rules read: set variables under input.vars, flags under input.flags.
// Unset variables are simply absent, so rule references to them stay
// undefined rather than reading a zero value.
func ruleInput(doc *document.Document, flags *engine.Flags) map[string]interface{} {
	vars := make(map[string]interface{})
	for _, group := range doc.Groups() {
		for _, name := range doc.Variables(group) {
			v, _ := doc.Get(group, name)
			switch v.Type() {
			case cty.Bool:
				vars[name] = v.True()
			case cty.Number:
				f, _ := v.AsBigFloat().Float64()
				vars[name] = f
			case cty.String:
				vars[name] = v.AsString()
			}
		}
	}

	fl := make(map[string]interface{})
	for _, name := range flags.Names() {
		fl[name] = flags.Value(name)
	}
	return map[string]interface{}{"vars": vars, "flags": fl}
}
