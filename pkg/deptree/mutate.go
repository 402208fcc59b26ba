package deptree

// AddInfo returns a copy of the forest with the given markers injected
// into every node, recursively. Injected keys that already exist on a
// node overwrite the value in place (the key keeps its original
// position); new keys append in call order. The forest shape is
// unchanged.
func AddInfo(forest Forest, info ...Marker) Forest {
	out := make(Forest, 0, len(forest))
	for _, p := range forest {
		q := p.clone()
		q.Deps = AddInfo(p.Deps, info...)
		for _, m := range info {
			q.setMarker(m)
		}
		out = append(out, q)
	}
	return out
}

func (p *Package) setMarker(m Marker) {
	for i := range p.Markers {
		if p.Markers[i].Key == m.Key {
			p.Markers[i].Val = m.Val
			return
		}
	}
	p.Markers = append(p.Markers, m)
}

// Filter returns the top-level nodes satisfying every criterion. A node
// lacking a criterion's key passes vacuously; only an explicit value
// mismatch excludes it. Filter is shallow: children are carried along
// untouched and never inspected.
func Filter(forest Forest, criteria ...Marker) Forest {
	var out Forest
	for _, p := range forest {
		if matchesCriteria(p, criteria) {
			out = append(out, p.clone())
		}
	}
	return out
}

func matchesCriteria(p *Package, criteria []Marker) bool {
	for _, c := range criteria {
		if val, ok := p.Marker(c.Key); ok && val != c.Val {
			return false
		}
	}
	return true
}

// Ignore returns a copy of the forest with every node matching an ignore
// entry removed, at any depth. A match removes the whole subtree; the
// removed node's children are discarded, not promoted. Applying Ignore
// twice with the same list yields the same forest as applying it once.
//
// An ignore entry matches when names are equal and, for version and
// source, either the entry leaves the field unset (wildcard) or the
// values are equal. Only the top level of ignores is consulted; ignore
// files are flat listings.
func Ignore(forest Forest, ignores Forest) Forest {
	if len(ignores) == 0 {
		return forest
	}
	var out Forest
	for _, p := range forest {
		if MatchesIgnore(p, ignores) {
			continue
		}
		q := p.clone()
		q.Deps = Ignore(p.Deps, ignores)
		out = append(out, q)
	}
	return out
}

// MatchesIgnore reports whether pkg matches any entry in ignores.
func MatchesIgnore(pkg *Package, ignores Forest) bool {
	for _, ig := range ignores {
		if pkg.Name != ig.Name {
			continue
		}
		if ig.Version != "" && pkg.Version != ig.Version {
			continue
		}
		if ig.Source != "" && pkg.Source != ig.Source {
			continue
		}
		return true
	}
	return false
}
