package commands

import (
	"github.com/spf13/cobra"

	"github.com/openlsm/nlconf/pkg/defaults"
	"github.com/openlsm/nlconf/pkg/schema"
)

// catalogPaths holds the user-supplied source files layered after the
// built-in catalogs. Later sources win specificity ties in the defaults
// catalog, so a site file overrides a built-in default by restating it;
// schema and use-case sources must not redefine built-in entries.
type catalogPaths struct {
	schemaFiles  []string
	defaultFiles []string
	useCaseFiles []string
}

// register adds the source-file flags to a command.
func (p *catalogPaths) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&p.schemaFiles, "schema-file", nil, "extra schema source file, loaded after the built-in schema (repeatable)")
	cmd.Flags().StringSliceVar(&p.defaultFiles, "defaults-file", nil, "extra defaults source file, loaded after the built-in catalog (repeatable)")
	cmd.Flags().StringSliceVar(&p.useCaseFiles, "use-case-file", nil, "extra use-case source file, loaded after the built-in bundles (repeatable)")
}

// load builds the catalogs from the built-in sources plus the user files,
// in the order given on the command line.
func (p *catalogPaths) load() (*schema.Catalog, *defaults.Catalog, *defaults.UseCases, error) {
	schemaSources := []schema.Source{schema.Builtin()}
	for _, path := range p.schemaFiles {
		src, err := schema.FileSource(path)
		if err != nil {
			return nil, nil, nil, err
		}
		schemaSources = append(schemaSources, src)
	}
	sc, err := schema.Load(schemaSources...)
	if err != nil {
		return nil, nil, nil, err
	}

	defaultSources := []defaults.Source{defaults.Builtin()}
	for _, path := range p.defaultFiles {
		src, err := defaults.FileSource(path)
		if err != nil {
			return nil, nil, nil, err
		}
		defaultSources = append(defaultSources, src)
	}
	dc, err := defaults.Load(sc, defaultSources...)
	if err != nil {
		return nil, nil, nil, err
	}

	useCaseSources := []defaults.Source{defaults.BuiltinUseCases()}
	for _, path := range p.useCaseFiles {
		src, err := defaults.FileSource(path)
		if err != nil {
			return nil, nil, nil, err
		}
		useCaseSources = append(useCaseSources, src)
	}
	ucs, err := defaults.LoadUseCases(sc, useCaseSources...)
	if err != nil {
		return nil, nil, nil, err
	}

	return sc, dc, ucs, nil
}
