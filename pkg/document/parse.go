package document

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/openlsm/nlconf/pkg/engine"
)

// Parse reads namelist override text into a document. The accepted dialect
// is the one the emitter writes: `&group` opens a section, `/` closes it,
// and each line inside is a `variable = value` assignment. `!` starts a
// comment outside quotes. Values are single scalar tokens: quoted strings,
// dotted logicals, or numbers.
func Parse(text string) (*Document, error) {
	return parse(text, "<inline>")
}

// ParseFile reads an override file. A missing or unreadable file is an I/O
// error; syntax problems are validation errors naming the file and line.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.NewIOError(fmt.Sprintf("cannot read override file %s", path), err)
	}
	return parse(string(data), path)
}

func parse(text, source string) (*Document, error) {
	doc := New()
	current := ""
	lineNo := 0

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "&"):
			name := strings.TrimSpace(line[1:])
			if strings.EqualFold(name, "end") {
				current = ""
				continue
			}
			if current != "" {
				return nil, parseErr(source, lineNo, fmt.Sprintf("group %q opened inside group %q", name, current))
			}
			if name == "" {
				return nil, parseErr(source, lineNo, "empty group name")
			}
			current = strings.ToLower(name)

		case line == "/":
			if current == "" {
				return nil, parseErr(source, lineNo, "group terminator outside a group")
			}
			current = ""

		default:
			if current == "" {
				return nil, parseErr(source, lineNo, fmt.Sprintf("assignment %q outside a group", line))
			}
			name, raw, ok := strings.Cut(line, "=")
			if !ok {
				return nil, parseErr(source, lineNo, fmt.Sprintf("expected variable = value, got %q", line))
			}
			name = strings.TrimSpace(name)
			raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), ","))
			if name == "" || raw == "" {
				return nil, parseErr(source, lineNo, fmt.Sprintf("expected variable = value, got %q", line))
			}
			doc.Set(current, name, TokenVal(raw))
		}
	}
	if current != "" {
		return nil, parseErr(source, lineNo, fmt.Sprintf("group %q is not terminated", current))
	}
	return doc, nil
}

// stripComment removes a trailing ! comment, respecting quoted strings.
func stripComment(line string) string {
	inQuote := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
		case c == '!':
			return line[:i]
		}
	}
	return line
}

func parseErr(source string, line int, msg string) error {
	return engine.NewValidationError(fmt.Sprintf("%s:%d: %s", source, line, msg), nil)
}
