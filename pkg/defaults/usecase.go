package defaults

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/schema"
)

// UseCase is a named, pre-packaged bundle of default overrides representing
// one experiment configuration. Its entries have the same shape as catalog
// defaults and are resolved through the same best-fit lookup.
type UseCase struct {
	// Name is the unique use-case name.
	Name string `yaml:"name" validate:"required"`

	// Description is the human-readable summary shown by the listing mode.
	Description string `yaml:"description" validate:"required"`

	// Defaults are the bundle's entries.
	Defaults []Entry `yaml:"defaults"`
}

type useCaseFile struct {
	UseCases []UseCase `yaml:"use_cases"`
}

// UseCases is the registry of loaded use-case bundles.
type UseCases struct {
	byName map[string]*UseCase
	order  []string
}

// LoadUseCases builds the registry from an ordered list of sources.
func LoadUseCases(sc *schema.Catalog, sources ...Source) (*UseCases, error) {
	u := &UseCases{byName: make(map[string]*UseCase)}
	structValidate := validator.New()

	for _, src := range sources {
		if err := schema.ValidateShape(useCaseShape, src.Data, src.Name); err != nil {
			return nil, err
		}
		var file useCaseFile
		if err := yaml.Unmarshal(src.Data, &file); err != nil {
			return nil, engine.NewSchemaError(fmt.Sprintf("%s: cannot decode use-case source", src.Name), err)
		}
		for i := range file.UseCases {
			uc := file.UseCases[i]
			if err := structValidate.Struct(uc); err != nil {
				return nil, engine.NewSchemaError(fmt.Sprintf("%s: invalid use-case %s", src.Name, uc.Name), err)
			}
			if _, dup := u.byName[uc.Name]; dup {
				return nil, engine.NewSchemaError(fmt.Sprintf("%s: duplicate use-case %s", src.Name, uc.Name), nil)
			}
			for j := range uc.Defaults {
				e := &uc.Defaults[j]
				e.Variable = strings.ToLower(e.Variable)
				if !sc.Has(e.Variable) {
					return nil, engine.NewSchemaError(
						fmt.Sprintf("%s: use-case %s sets a variable that is not declared in the schema", src.Name, uc.Name), nil).
						WithVariable(e.Variable)
				}
				attrs := make(map[string]string, len(e.Attributes))
				for k, v := range e.Attributes {
					attrs[strings.ToLower(k)] = v
				}
				e.Attributes = attrs
				e.seq = j
				e.source = src.Name
			}
			u.byName[uc.Name] = &uc
			u.order = append(u.order, uc.Name)
		}
	}
	return u, nil
}

// Get returns a use case by name.
func (u *UseCases) Get(name string) (*UseCase, error) {
	uc, ok := u.byName[name]
	if !ok {
		return nil, engine.NewNotFoundError(fmt.Sprintf("unknown use case %q", name), nil)
	}
	return uc, nil
}

// List returns all use cases in load order.
func (u *UseCases) List() []*UseCase {
	out := make([]*UseCase, 0, len(u.order))
	for _, n := range u.order {
		out = append(out, u.byName[n])
	}
	return out
}

// Resolve selects one value per variable in the bundle using the best-fit
// lookup against the given attribute query, coerces it through the schema,
// and returns the result as a partial document ready to merge. Variables
// whose entries all fail the query are simply absent from the result.
func (uc *UseCase) Resolve(sc *schema.Catalog, query map[string]string) (*document.Document, error) {
	byVar := make(map[string][]*Entry)
	var varOrder []string
	for i := range uc.Defaults {
		e := &uc.Defaults[i]
		if _, seen := byVar[e.Variable]; !seen {
			varOrder = append(varOrder, e.Variable)
		}
		byVar[e.Variable] = append(byVar[e.Variable], e)
	}

	doc := document.New()
	for _, name := range varOrder {
		e := bestFit(byVar[name], query)
		if e == nil {
			continue
		}
		group, err := sc.GroupOf(name)
		if err != nil {
			return nil, err
		}
		v, err := sc.CoerceToken(name, e.Value)
		if err != nil {
			return nil, err
		}
		doc.Set(group, name, v)
	}
	return doc, nil
}
