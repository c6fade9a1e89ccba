// Package emit serializes a validated configuration document as a grouped
// namelist file and provides the read-only input-pathname audit and dump
// modes.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/openlsm/nlconf/pkg/document"
	"github.com/openlsm/nlconf/pkg/engine"
	"github.com/openlsm/nlconf/pkg/schema"
)

// Writer serializes documents. The caller must not write a document that
// has not passed validation; partial or inconsistent namelists must never
// reach disk.
type Writer struct {
	sc *schema.Catalog

	// Header lines are written as a leading comment block, typically the
	// invoking command line.
	Header []string
}

// NewWriter creates a writer over a schema catalog.
func NewWriter(sc *schema.Catalog) *Writer {
	return &Writer{sc: sc}
}

// Write emits the document: each group as a `&group` section of
// `key = value` lines terminated by `/`. Strings are single-quoted,
// logicals are lowercase dotted tokens, and real values always carry a
// decimal point. Variables within a group are sorted so output is
// deterministic.
func (w *Writer) Write(out io.Writer, doc *document.Document) error {
	bw := bufio.NewWriter(out)

	for _, line := range w.Header {
		fmt.Fprintf(bw, "! %s\n", line)
	}
	if len(w.Header) > 0 {
		fmt.Fprintln(bw)
	}

	for _, group := range doc.Groups() {
		fmt.Fprintf(bw, "&%s\n", group)
		for _, name := range doc.SortedVariables(group) {
			v, _ := doc.Get(group, name)
			fmt.Fprintf(bw, " %s = %s\n", name, w.sc.Render(name, v))
		}
		fmt.Fprintln(bw, "/")
	}
	return bw.Flush()
}

// WriteFile emits the document to a file, creating or truncating it.
func (w *Writer) WriteFile(path string, doc *document.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return engine.NewIOError(fmt.Sprintf("cannot create output file %s", path), err)
	}
	defer f.Close()

	if err := w.Write(f, doc); err != nil {
		return engine.NewIOError(fmt.Sprintf("cannot write output file %s", path), err)
	}
	return f.Close()
}
