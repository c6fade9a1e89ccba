package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/report"
	"github.com/openlsm/nlconf/pkg/schema"
)

// InputPath is one pathname-valued variable of a resolved document together
// with its on-disk location.
type InputPath struct {
	Variable string
	Path     string
}

// InputPaths collects the pathname-valued variables of a document, sorted
// by variable name. Absolute-kind values resolve against the input-data
// root; relative-kind values resolve against the value of the variable
// named by the descriptor's relative_to. Empty values (the explicit
// no-dataset sentinel) are skipped.
func InputPaths(sc *schema.Catalog, doc *document.Document, root string) []InputPath {
	var paths []InputPath
	for _, group := range doc.Groups() {
		for _, name := range doc.Variables(group) {
			kind := sc.PathKindOf(name)
			if kind == schema.PathNone {
				continue
			}
			v, _ := doc.Get(group, name)
			if v.Type() != cty.String || v.AsString() == "" {
				continue
			}
			paths = append(paths, InputPath{
				Variable: name,
				Path:     resolvePath(sc, doc, root, name, kind, v.AsString()),
			})
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Variable < paths[j].Variable })
	return paths
}

// resolvePath turns one pathname value into the location the model would
// open. Values that are already absolute are left alone. The base variable
// named by relative_to contributes only when it is a set string variable;
// the loader does not force relative_to to name one.
func resolvePath(sc *schema.Catalog, doc *document.Document, root, name string, kind schema.PathKind, value string) string {
	if filepath.IsAbs(value) {
		return value
	}
	base := root
	if kind == schema.PathRelative {
		if d, err := sc.Descriptor(name); err == nil && d.RelativeTo != "" && sc.IsString(d.RelativeTo) {
			if group, err := sc.GroupOf(d.RelativeTo); err == nil {
				if v, ok := doc.Get(group, d.RelativeTo); ok && v.Type() == cty.String {
					base = filepath.Join(root, v.AsString())
				}
			}
		}
	}
	return filepath.Join(base, value)
}

// AuditInputs checks that every pathname-valued variable of the document
// names an existing file under the input-data root. Missing files are
// warnings, not errors, so a namelist can be generated ahead of data
// staging; strict mode escalates them afterwards.
func AuditInputs(sc *schema.Catalog, doc *document.Document, root string, rep *report.Reporter) {
	for _, in := range InputPaths(sc, doc, root) {
		if _, err := os.Stat(in.Path); err != nil {
			rep.Warnf("input dataset %s does not exist: %s", in.Variable, in.Path)
		}
	}
}

// DumpInputPaths writes the resolved input pathnames, one per line, for
// external staging tools.
func DumpInputPaths(out io.Writer, sc *schema.Catalog, doc *document.Document, root string) error {
	for _, in := range InputPaths(sc, doc, root) {
		if _, err := fmt.Fprintf(out, "%s = %s\n", in.Variable, in.Path); err != nil {
			return err
		}
	}
	return nil
}

// DumpReals writes every real-typed variable of the document with its
// rendered token, for numeric diffing between runs.
func DumpReals(out io.Writer, sc *schema.Catalog, doc *document.Document) error {
	for _, group := range doc.Groups() {
		for _, name := range doc.SortedVariables(group) {
			d, err := sc.Descriptor(name)
			if err != nil || d.Type != schema.TypeReal {
				continue
			}
			v, _ := doc.Get(group, name)
			if _, err := fmt.Fprintf(out, "%s = %s\n", name, sc.Render(name, v)); err != nil {
				return err
			}
		}
	}
	return nil
}
