package schema

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openlsm/nlconf/pkg/engine"
)

// Source is one schema source document.
type Source struct {
	// Name identifies the source in error messages.
	Name string

	// Data is the raw YAML content.
	Data []byte
}

// FileSource reads a schema source from disk.
func FileSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, engine.NewIOError(fmt.Sprintf("cannot read schema source %s", path), err)
	}
	return Source{Name: path, Data: data}, nil
}

// Load builds the catalog from an ordered list of sources. A variable
// defined twice, in one source or across sources, is a schema error.
func Load(sources ...Source) (*Catalog, error) {
	if len(sources) == 0 {
		return nil, engine.NewSchemaError("no schema sources given", nil)
	}

	c := &Catalog{
		vars:     make(map[string]*Descriptor),
		groups:   make(map[string][]string),
		patterns: make(map[string]*regexp.Regexp),
	}
	structValidate := validator.New()

	for _, src := range sources {
		if err := ValidateShape(schemaShape, src.Data, src.Name); err != nil {
			return nil, err
		}
		var file schemaFile
		if err := yaml.Unmarshal(src.Data, &file); err != nil {
			return nil, engine.NewSchemaError(fmt.Sprintf("%s: cannot decode schema source", src.Name), err)
		}

		for i := range file.Variables {
			d := file.Variables[i]
			if err := structValidate.Struct(d); err != nil {
				return nil, engine.NewSchemaError(fmt.Sprintf("%s: invalid descriptor", src.Name), err).WithVariable(d.Name)
			}
			if err := c.register(src.Name, d); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Catalog) register(sourceName string, d Descriptor) error {
	d.Name = strings.ToLower(d.Name)
	d.Group = strings.ToLower(d.Group)
	d.RelativeTo = strings.ToLower(d.RelativeTo)

	if _, dup := c.vars[d.Name]; dup {
		return engine.NewSchemaError(fmt.Sprintf("%s: duplicate variable definition", sourceName), nil).WithVariable(d.Name)
	}
	if d.PathKind == "" {
		d.PathKind = PathNone
	}
	if d.PathKind == PathRelative && d.RelativeTo == "" {
		return engine.NewSchemaError(fmt.Sprintf("%s: relative pathname without relative_to", sourceName), nil).WithVariable(d.Name)
	}
	if d.PathKind != PathNone && d.Type != TypeString {
		return engine.NewSchemaError(fmt.Sprintf("%s: pathname variable must be string-typed", sourceName), nil).WithVariable(d.Name)
	}
	if len(d.Allowed) > 0 && d.Pattern != "" {
		return engine.NewSchemaError(fmt.Sprintf("%s: allowed values and pattern are mutually exclusive", sourceName), nil).WithVariable(d.Name)
	}
	if d.Pattern != "" {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return engine.NewSchemaError(fmt.Sprintf("%s: invalid pattern", sourceName), err).WithVariable(d.Name)
		}
		c.patterns[d.Name] = re
	}

	c.vars[d.Name] = &d
	c.groups[d.Group] = append(c.groups[d.Group], d.Name)
	return nil
}
