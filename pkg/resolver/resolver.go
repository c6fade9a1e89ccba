package resolver

import (
	"context"
	"fmt"

	"github.com/openlsm/nlconf/pkg/defaults"
	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/report"
	"github.com/openlsm/nlconf/pkg/schema"
)

// Resolver merges the external input sources in precedence order and runs
// the resolution step pipeline over the result.
type Resolver struct {
	sc       *schema.Catalog
	dc       *defaults.Catalog
	ucs      *defaults.UseCases
	settings Settings
}

// New creates a resolver. The use-case registry may be nil when no
// use case will be requested.
func New(sc *schema.Catalog, dc *defaults.Catalog, ucs *defaults.UseCases, settings Settings) *Resolver {
	return &Resolver{sc: sc, dc: dc, ucs: ucs, settings: settings}
}

// Run resolves the complete configuration. It returns the finished
// document and the frozen resolved-flag set. The first error aborts the
// run.
func (r *Resolver) Run(ctx context.Context) (*document.Document, *engine.Flags, error) {
	rep := report.FromContext(ctx)
	log := rep.Component("resolver")

	steps := pipeline()
	if err := validateOrder(steps); err != nil {
		return nil, nil, err
	}

	doc := document.New()

	// Source precedence, highest first. Each source fills only gaps left
	// by the sources merged before it; the CLI overrides come last because
	// they are conflict-checked rather than gap-filling.
	if r.settings.InlineText != "" {
		inline, err := document.Parse(r.settings.InlineText)
		if err != nil {
			return nil, nil, err
		}
		if err := r.mergeSource(doc, inline, "inline"); err != nil {
			return nil, nil, err
		}
	}

	for _, path := range r.settings.OverrideFiles {
		parsed, err := document.ParseFile(path)
		if err != nil {
			return nil, nil, err
		}
		if err := r.mergeSource(doc, parsed, path); err != nil {
			return nil, nil, err
		}
	}

	if r.settings.UseCase != "" {
		if r.ucs == nil {
			return nil, nil, engine.NewNotFoundError(fmt.Sprintf("unknown use case %q", r.settings.UseCase), nil)
		}
		uc, err := r.ucs.Get(r.settings.UseCase)
		if err != nil {
			return nil, nil, err
		}
		bundle, err := uc.Resolve(r.sc, r.knownAttributes(doc))
		if err != nil {
			return nil, nil, err
		}
		doc.MergeFrom(bundle)
		doc.Expand(r.settings.Env)
		log.Debug().Str("use_case", uc.Name).Int("variables", bundle.Len()).Msg("merged use case")
	}

	if err := r.applySettings(doc); err != nil {
		return nil, nil, err
	}
	doc.Expand(r.settings.Env)

	rc := &runContext{
		ctx:      ctx,
		rep:      rep,
		sc:       r.sc,
		dc:       r.dc,
		doc:      doc,
		flags:    engine.NewFlags(),
		settings: &r.settings,
	}
	for _, step := range steps {
		log.Debug().Str("step", step.Name).Msg("running resolution step")
		if err := step.Run(rc); err != nil {
			return nil, nil, err
		}
	}

	rc.flags.Freeze()
	doc.Expand(r.settings.Env)
	log.Info().Int("variables", doc.Len()).Msg("resolution complete")
	return doc, rc.flags, nil
}

// mergeSource canonicalizes a parsed override source against the schema,
// merges it into doc without overwriting, and expands string values.
func (r *Resolver) mergeSource(doc, parsed *document.Document, sourceName string) error {
	typed, err := canonicalize(r.sc, parsed, sourceName)
	if err != nil {
		return err
	}
	doc.MergeFrom(typed)
	doc.Expand(r.settings.Env)
	return nil
}

// canonicalize turns a freshly parsed override document into a typed one:
// every variable must be declared in the schema, must appear under its
// declared group, and its value must coerce to the declared type.
func canonicalize(sc *schema.Catalog, parsed *document.Document, sourceName string) (*document.Document, error) {
	out := document.New()
	for _, g := range parsed.Groups() {
		for _, name := range parsed.Variables(g) {
			d, err := sc.Descriptor(name)
			if err != nil {
				return nil, engine.NewSchemaError(
					fmt.Sprintf("%s: variable is not declared in the schema", sourceName), nil).WithVariable(name)
			}
			if d.Group != g {
				return nil, engine.NewSchemaError(
					fmt.Sprintf("%s: variable belongs to group %s, not %s", sourceName, d.Group, g), nil).
					WithVariable(name)
			}
			raw, _ := parsed.Get(g, name)
			v, err := sc.Coerce(name, raw)
			if err != nil {
				return nil, err
			}
			out.Set(d.Group, d.Name, v)
		}
	}
	return out, nil
}

// applySettings applies the single-purpose CLI overrides. A setting that
// contradicts a value already merged from the inline text, an override
// file, or the use case is a conflict, never a silent overwrite.
func (r *Resolver) applySettings(doc *document.Document) error {
	for _, ov := range r.settings.overrides() {
		d, err := r.sc.Descriptor(ov.variable)
		if err != nil {
			return err
		}
		v, err := r.sc.CoerceToken(d.Name, ov.token)
		if err != nil {
			return err
		}
		if prev, set := doc.Get(d.Group, d.Name); set {
			if !prev.RawEquals(v) {
				return engine.NewConflictError(
					"command-line setting disagrees with an explicitly merged value", nil).
					WithVariable(d.Name).
					WithValue(ov.token)
			}
			continue
		}
		doc.Set(d.Group, d.Name, v)
	}
	return nil
}

// knownAttributes builds the attribute query the use-case bundle is
// resolved against: the discriminators known before the pipeline runs,
// from the CLI settings first and the already-merged document second.
func (r *Resolver) knownAttributes(doc *document.Document) map[string]string {
	attrs := make(map[string]string)
	pick := func(attr, variable, setting string) {
		switch {
		case setting != "":
			attrs[attr] = setting
		default:
			d, err := r.sc.Descriptor(variable)
			if err != nil {
				return
			}
			if v, ok := doc.Get(d.Group, d.Name); ok {
				attrs[attr] = bareFlagToken(d, v)
			}
		}
	}

	pick(engine.FlagGrid, "res", r.settings.Resolution)
	pick(engine.FlagMask, "mask", r.settings.Mask)
	pick(engine.FlagPhysics, "phys", r.settings.Physics)
	pick(engine.FlagBGCMode, "bgc_mode", r.settings.BGCMode)
	pick(engine.FlagRCP, "rcp", r.settings.RCP)

	if simYear := firstNonEmpty(r.settings.SimYear, docString(r.sc, doc, "sim_year")); simYear != "" {
		if year, yearRange, err := splitSimYear(simYear); err == nil {
			attrs[engine.FlagSimYear] = year
			attrs[engine.FlagSimYearRange] = yearRange
		}
	}
	return attrs
}

func docString(sc *schema.Catalog, doc *document.Document, name string) string {
	group, err := sc.GroupOf(name)
	if err != nil {
		return ""
	}
	v, ok := doc.Get(group, name)
	if !ok {
		return ""
	}
	return v.AsString()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
