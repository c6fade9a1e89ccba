// Package document provides the mutable configuration document built up
// during resolution: an insertion-ordered group -> variable -> value store
// with fill-gaps merge semantics, a parser for namelist override text, and
// ${VAR} expansion of string values.
package document

import (
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Document is a group -> variable -> value store. Group and variable names
// are case-insensitive and canonicalized to lowercase. Groups and variables
// remember insertion order so emission is deterministic.
type Document struct {
	groups map[string]*group
	order  []string
}

type group struct {
	values map[string]cty.Value
	order  []string
}

// New creates an empty document.
func New() *Document {
	return &Document{groups: make(map[string]*group)}
}

// Set writes a value unconditionally. Overwrite protection is the
// responsibility of callers that know the semantic meaning of a collision.
func (d *Document) Set(groupName, variable string, value cty.Value) {
	gn := strings.ToLower(groupName)
	vn := strings.ToLower(variable)
	g, ok := d.groups[gn]
	if !ok {
		g = &group{values: make(map[string]cty.Value)}
		d.groups[gn] = g
		d.order = append(d.order, gn)
	}
	if _, exists := g.values[vn]; !exists {
		g.order = append(g.order, vn)
	}
	g.values[vn] = value
}

// Get returns the value of a variable and whether it is set.
func (d *Document) Get(groupName, variable string) (cty.Value, bool) {
	g, ok := d.groups[strings.ToLower(groupName)]
	if !ok {
		return cty.NilVal, false
	}
	v, ok := g.values[strings.ToLower(variable)]
	return v, ok
}

// Has reports whether a variable is set.
func (d *Document) Has(groupName, variable string) bool {
	_, ok := d.Get(groupName, variable)
	return ok
}

// MergeFrom copies every set variable of other into d, writing only
// variables d does not already have. Conflicts are not reported; callers
// that need conflict detection must compare values before merging.
func (d *Document) MergeFrom(other *Document) {
	for _, gn := range other.order {
		og := other.groups[gn]
		for _, vn := range og.order {
			if !d.Has(gn, vn) {
				d.Set(gn, vn, og.values[vn])
			}
		}
	}
}

// Groups returns the group names in insertion order.
func (d *Document) Groups() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Variables returns the variable names of a group in insertion order.
func (d *Document) Variables(groupName string) []string {
	g, ok := d.groups[strings.ToLower(groupName)]
	if !ok {
		return nil
	}
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// SortedVariables returns the variable names of a group in lexical order.
func (d *Document) SortedVariables(groupName string) []string {
	vars := d.Variables(groupName)
	sort.Strings(vars)
	return vars
}

// Len returns the total number of set variables.
func (d *Document) Len() int {
	n := 0
	for _, g := range d.groups {
		n += len(g.values)
	}
	return n
}

// Equal reports whether two documents hold the same variables with the
// same values, ignoring insertion order.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for gn, g := range d.groups {
		for vn, v := range g.values {
			ov, ok := other.Get(gn, vn)
			if !ok || !v.RawEquals(ov) {
				return false
			}
		}
	}
	return true
}

// Expand applies ${VAR} expansion to every string value using the supplied
// environment map. References to unknown keys are left untouched so a later
// merge can still expand them. Expansion runs once per call; it never
// recurses into expanded text.
func (d *Document) Expand(env map[string]string) {
	for _, g := range d.groups {
		for vn, v := range g.values {
			if v.Type() != cty.String || v.IsNull() {
				continue
			}
			g.values[vn] = cty.StringVal(expand(v.AsString(), env))
		}
	}
}
