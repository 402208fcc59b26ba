// Package deptree models installed-package dependency forests and the
// operations depdrift is built around: parsing the indentation-structured
// listing format, injecting environment markers, filtering, subtracting
// ignore lists, diffing two forests, and serializing back to text.
//
// A forest is an ordered sequence of package nodes. Order is always
// preserved from the source text; there is no canonical sort. Nodes are
// reconstructed purely from indentation depth, never by name matching.
//
// All operations are pure: they return freshly built forests and never
// alias their input. Callers must compare forests by value, not identity.
package deptree

import "strings"

// Marker is a single environment-condition key/value pair attached to a
// package node (e.g., python_version == 3.11). Markers form an ordered
// bag, not a fixed schema: keys are free-form strings, and insertion
// order is significant for serialization.
type Marker struct {
	Key string
	Val string
}

// Package is a node in a dependency forest.
//
// Version and Source are optional; the empty string means "absent".
// An explicit empty version in the source text (e.g., "foo==") collapses
// to absent, so an unconstrained node matches any version during
// comparison.
type Package struct {
	Name    string
	Version string   // exact version pin, "" = unconstrained
	Source  string   // alternate-source locator from an "@" suffix, "" = none
	Markers []Marker // environment markers, insertion order preserved
	Deps    Forest   // direct dependencies, in listing order
}

// Forest is an ordered sequence of top-level package nodes.
type Forest []*Package

// Marker returns the value for key and whether the node carries it.
func (p *Package) Marker(key string) (string, bool) {
	for _, m := range p.Markers {
		if m.Key == key {
			return m.Val, true
		}
	}
	return "", false
}

// String renders the package identity without markers or children:
// name[ @ source][ == version]. This is the form used in drift reports
// and pull-request bodies.
func (p *Package) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Source != "" {
		b.WriteString(" @ ")
		b.WriteString(p.Source)
	}
	if p.Version != "" {
		b.WriteString(" == ")
		b.WriteString(p.Version)
	}
	return b.String()
}

// clone returns a deep copy of the node, including markers and children.
func (p *Package) clone() *Package {
	q := &Package{
		Name:    p.Name,
		Version: p.Version,
		Source:  p.Source,
	}
	if len(p.Markers) > 0 {
		q.Markers = make([]Marker, len(p.Markers))
		copy(q.Markers, p.Markers)
	}
	if len(p.Deps) > 0 {
		q.Deps = make(Forest, 0, len(p.Deps))
		for _, d := range p.Deps {
			q.Deps = append(q.Deps, d.clone())
		}
	}
	return q
}
