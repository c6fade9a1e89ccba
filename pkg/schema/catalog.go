package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
)

// Catalog is the immutable registry of variable descriptors.
type Catalog struct {
	vars     map[string]*Descriptor
	groups   map[string][]string
	patterns map[string]*regexp.Regexp
}

// Descriptor returns the descriptor for a variable, or a not-found error.
func (c *Catalog) Descriptor(name string) (*Descriptor, error) {
	d, ok := c.vars[strings.ToLower(name)]
	if !ok {
		return nil, engine.NewNotFoundError("variable is not declared in the schema", nil).WithVariable(name)
	}
	return d, nil
}

// Has reports whether the variable is declared.
func (c *Catalog) Has(name string) bool {
	_, ok := c.vars[strings.ToLower(name)]
	return ok
}

// GroupOf returns the namelist group a variable belongs to.
func (c *Catalog) GroupOf(name string) (string, error) {
	d, err := c.Descriptor(name)
	if err != nil {
		return "", err
	}
	return d.Group, nil
}

// IsString reports whether the variable is string-typed.
func (c *Catalog) IsString(name string) bool {
	d, ok := c.vars[strings.ToLower(name)]
	return ok && d.Type == TypeString
}

// PathKindOf returns the pathname kind of a variable, PathNone for
// non-path and unknown variables.
func (c *Catalog) PathKindOf(name string) PathKind {
	d, ok := c.vars[strings.ToLower(name)]
	if !ok || d.PathKind == "" {
		return PathNone
	}
	return d.PathKind
}

// Variables returns all declared variable names, sorted.
func (c *Catalog) Variables() []string {
	names := make([]string, 0, len(c.vars))
	for n := range c.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GroupVariables returns the declared variables of one group, sorted.
func (c *Catalog) GroupVariables(group string) []string {
	names := append([]string(nil), c.groups[strings.ToLower(group)]...)
	sort.Strings(names)
	return names
}

// IsValidValue reports whether a value conforms to the variable's type and
// allowed-value or pattern constraint, applying type coercion first.
func (c *Catalog) IsValidValue(name string, v cty.Value) bool {
	_, err := c.Coerce(name, v)
	return err == nil
}

// Coerce converts a value to the variable's declared type and checks it
// against the allowed-value set or pattern. It returns a validation error
// naming the variable, the value, and the allowed set on failure.
func (c *Catalog) Coerce(name string, v cty.Value) (cty.Value, error) {
	d, err := c.Descriptor(name)
	if err != nil {
		return cty.NilVal, err
	}

	want := ctyType(d.Type)
	converted, convErr := convert.Convert(v, want)
	if convErr != nil || converted.IsNull() {
		return cty.NilVal, c.invalid(d, v, fmt.Sprintf("expected %s", d.Type))
	}
	if d.Type == TypeInteger {
		if _, acc := converted.AsBigFloat().Int64(); acc != 0 {
			return cty.NilVal, c.invalid(d, v, "expected a whole number")
		}
	}

	token := bareToken(d, converted)
	if len(d.Allowed) > 0 {
		ok := false
		for _, a := range d.Allowed {
			if strings.EqualFold(a, token) {
				ok = true
				break
			}
		}
		if !ok {
			return cty.NilVal, c.invalid(d, v, fmt.Sprintf("allowed values are %s", strings.Join(d.Allowed, ", ")))
		}
	}
	if re := c.patterns[d.Name]; re != nil && !re.MatchString(token) {
		return cty.NilVal, c.invalid(d, v, fmt.Sprintf("value must match pattern %q", d.Pattern))
	}
	return converted, nil
}

// CoerceToken converts a raw textual token (from a defaults catalog or a
// CLI setting) to a typed, checked value.
func (c *Catalog) CoerceToken(name, raw string) (cty.Value, error) {
	return c.Coerce(name, document.TokenVal(raw))
}

func (c *Catalog) invalid(d *Descriptor, v cty.Value, detail string) error {
	return engine.NewValidationError(detail, nil).
		WithVariable(d.Name).
		WithValue(displayToken(v))
}

// ctyType maps a declared variable type to its in-memory representation.
func ctyType(t VarType) cty.Type {
	switch t {
	case TypeInteger, TypeReal:
		return cty.Number
	case TypeLogical:
		return cty.Bool
	default:
		return cty.String
	}
}

// bareToken renders a coerced value as the bare token constraints are
// written against (no quoting).
func bareToken(d *Descriptor, v cty.Value) string {
	switch d.Type {
	case TypeLogical:
		if v.True() {
			return ".true."
		}
		return ".false."
	case TypeInteger, TypeReal:
		return v.AsBigFloat().Text('f', -1)
	default:
		return v.AsString()
	}
}

// displayToken renders an arbitrary value for an error message.
func displayToken(v cty.Value) string {
	if v.IsNull() {
		return "<null>"
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		if v.True() {
			return ".true."
		}
		return ".false."
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	default:
		return v.GoString()
	}
}
