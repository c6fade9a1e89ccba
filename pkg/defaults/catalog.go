package defaults

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/schema"
)

// Catalog is the immutable, ordered collection of default entries.
type Catalog struct {
	byVar   map[string][]*Entry
	nextSeq int
}

// Source is one defaults source document.
type Source struct {
	// Name identifies the source in error messages and logs.
	Name string

	// Data is the raw YAML content.
	Data []byte
}

// FileSource reads a defaults source from disk.
func FileSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, engine.NewIOError(fmt.Sprintf("cannot read defaults source %s", path), err)
	}
	return Source{Name: path, Data: data}, nil
}

// Load builds the catalog from an ordered list of sources. Later sources
// are appended after earlier ones, which makes them win specificity ties.
// Every entry's variable must be declared in the schema.
func Load(sc *schema.Catalog, sources ...Source) (*Catalog, error) {
	c := &Catalog{byVar: make(map[string][]*Entry)}
	structValidate := validator.New()

	for _, src := range sources {
		if err := schema.ValidateShape(defaultsShape, src.Data, src.Name); err != nil {
			return nil, err
		}
		var file defaultsFile
		if err := yaml.Unmarshal(src.Data, &file); err != nil {
			return nil, engine.NewSchemaError(fmt.Sprintf("%s: cannot decode defaults source", src.Name), err)
		}
		for i := range file.Defaults {
			e := file.Defaults[i]
			if err := structValidate.Struct(e); err != nil {
				return nil, engine.NewSchemaError(fmt.Sprintf("%s: invalid default entry", src.Name), err).WithVariable(e.Variable)
			}
			if err := c.append(sc, src.Name, e); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// append registers one entry, canonicalizing names and checking it against
// the schema. An entry whose value can never pass the variable's type and
// constraint checks is rejected at load time rather than on first lookup.
func (c *Catalog) append(sc *schema.Catalog, sourceName string, e Entry) error {
	e.Variable = strings.ToLower(e.Variable)
	if !sc.Has(e.Variable) {
		return engine.NewSchemaError(
			fmt.Sprintf("%s: default for a variable that is not declared in the schema", sourceName), nil).
			WithVariable(e.Variable)
	}
	if !sc.IsValidValue(e.Variable, document.TokenVal(e.Value)) {
		return engine.NewSchemaError(
			fmt.Sprintf("%s: default value does not satisfy the variable's declared type and constraints", sourceName), nil).
			WithVariable(e.Variable).
			WithValue(e.Value)
	}
	attrs := make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[strings.ToLower(k)] = v
	}
	e.Attributes = attrs
	e.seq = c.nextSeq
	e.source = sourceName
	c.nextSeq++
	c.byVar[e.Variable] = append(c.byVar[e.Variable], &e)
	return nil
}

// Value returns the best-fit default for a variable under the given
// attribute query. The second return is false when no entry matches;
// absence is not an error.
func (c *Catalog) Value(variable string, query map[string]string) (string, bool) {
	e := bestFit(c.byVar[strings.ToLower(variable)], query)
	if e == nil {
		return "", false
	}
	return e.Value, true
}

// Match returns the winning entry itself, for callers that need the
// source or predicate of the selected default.
func (c *Catalog) Match(variable string, query map[string]string) (*Entry, bool) {
	e := bestFit(c.byVar[strings.ToLower(variable)], query)
	return e, e != nil
}

// Entries returns all entries for a variable in load order.
func (c *Catalog) Entries(variable string) []*Entry {
	src := c.byVar[strings.ToLower(variable)]
	out := make([]*Entry, len(src))
	copy(out, src)
	return out
}

// Variables returns the names of all variables that have at least one
// default entry.
func (c *Catalog) Variables() []string {
	names := make([]string, 0, len(c.byVar))
	for n := range c.byVar {
		names = append(names, n)
	}
	return names
}
