package deptree

import "strings"

// Direction distinguishes the two asymmetric drift reports.
type Direction string

const (
	// DirMissing reports packages installed but absent from the manifest.
	DirMissing Direction = "missing"
	// DirExtra reports manifest packages not installed.
	DirExtra Direction = "extra"
)

// Contains reports whether some node anywhere in forest has pkg's name
// and, when both sides pin a version, the same version. An unconstrained
// side matches any version. Markers never participate in the equality
// test; they only influence which nodes reach the comparison via
// upstream filtering.
func Contains(pkg *Package, forest Forest) bool {
	for _, q := range forest {
		if pkg.Name == q.Name &&
			(pkg.Version == "" || q.Version == "" || pkg.Version == q.Version) {
			return true
		}
		if Contains(pkg, q.Deps) {
			return true
		}
	}
	return false
}

// Diff returns the packages in a that are not present in b, after
// subtracting the ignore list from a. Ignored subtrees are dropped
// entirely before the walk, so an ignored node's children are never
// individually diffed. The walk is a full pre-order traversal of every
// node at every depth; the result is deduplicated by name, keeping the
// first occurrence in traversal order.
//
// The symmetric "extra" report is Diff(b, a, ignores).
func Diff(a, b Forest, ignores Forest) []*Package {
	a = Ignore(a, ignores)

	var out []*Package
	seen := make(map[string]bool)
	var walk func(Forest)
	walk = func(f Forest) {
		for _, p := range f {
			if !seen[p.Name] && !Contains(p, b) {
				seen[p.Name] = true
				out = append(out, p)
			}
			walk(p.Deps)
		}
	}
	walk(a)
	return out
}

// DriftError is the structured failure raised when two forests disagree.
// It carries the delta so callers can inspect the packages, not just the
// rendered message.
type DriftError struct {
	Direction Direction
	Packages  []*Package
}

// Error formats one line per package: name[ == version].
func (e *DriftError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Direction))
	b.WriteString(" packages:\n")
	for _, p := range e.Packages {
		b.WriteString(p.Name)
		if p.Version != "" {
			b.WriteString(" == ")
			b.WriteString(p.Version)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Check computes Diff(a, b, ignores) and returns a *DriftError tagged
// with direction when the delta is non-empty, nil otherwise. Detection
// and enforcement stay separate: callers wanting to report without
// failing use Diff directly.
func Check(a, b Forest, ignores Forest, direction Direction) error {
	delta := Diff(a, b, ignores)
	if len(delta) == 0 {
		return nil
	}
	return &DriftError{Direction: direction, Packages: delta}
}
