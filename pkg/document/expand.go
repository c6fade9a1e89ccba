package document

import "strings"

// expand substitutes ${NAME} references from env. Unbraced $NAME is not a
// reference in the override syntax and passes through verbatim, as do
// references to names absent from env.
func expand(s string, env map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], "${")
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+j])
		i += j
		k := strings.Index(s[i:], "}")
		if k < 0 {
			b.WriteString(s[i:])
			break
		}
		name := s[i+2 : i+k]
		if v, ok := env[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[i : i+k+1])
		}
		i += k + 1
	}
	return b.String()
}
