package schema

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Render converts a resolved value to the textual token the emitter
// writes: strings single-quoted, logicals as lowercase dotted tokens, real
// values always carrying a decimal point. Values of unknown variables are
// rendered by their in-memory type alone.
func (c *Catalog) Render(name string, v cty.Value) string {
	d, ok := c.vars[strings.ToLower(name)]
	if !ok {
		return displayToken(v)
	}
	switch d.Type {
	case TypeLogical:
		if v.True() {
			return ".true."
		}
		return ".false."
	case TypeInteger:
		return v.AsBigFloat().Text('f', 0)
	case TypeReal:
		t := v.AsBigFloat().Text('f', -1)
		if !strings.ContainsAny(t, ".eE") {
			t += "."
		}
		return t
	default:
		return "'" + strings.ReplaceAll(v.AsString(), "'", "''") + "'"
	}
}
