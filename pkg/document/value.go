package document

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// TokenVal converts a raw namelist token to a typed value. Quoted tokens
// are strings, the dotted logical tokens become native booleans, and
// anything that parses as a number becomes a number. Bare words fall back
// to strings; the schema catalog's coercion decides whether that is valid
// for the variable in question.
func TokenVal(raw string) cty.Value {
	tok := strings.TrimSpace(raw)
	if len(tok) >= 2 {
		if (tok[0] == '\'' && tok[len(tok)-1] == '\'') || (tok[0] == '"' && tok[len(tok)-1] == '"') {
			return cty.StringVal(unquote(tok))
		}
	}
	switch strings.ToLower(tok) {
	case ".true.", ".t.", "true":
		return cty.True
	case ".false.", ".f.", "false":
		return cty.False
	}
	if n, err := cty.ParseNumberVal(tok); err == nil {
		return n
	}
	return cty.StringVal(tok)
}

// unquote strips the surrounding quotes and collapses doubled quote
// characters, the namelist escape convention.
func unquote(tok string) string {
	q := string(tok[0])
	body := tok[1 : len(tok)-1]
	return strings.ReplaceAll(body, q+q, q)
}
