package deptree

import (
	"strings"

	"github.com/depdrift/depdrift/pkg/errors"
)

// indentUnit is the two-space token that encodes one level of nesting.
const indentUnit = "  "

// Parse converts an indentation-structured package listing into a forest.
//
// Each line has the shape
//
//	name[==version][ @ source][; key==val[ and key==val]*]
//
// with two spaces of indentation per nesting level. Depth is the
// non-overlapping count of the two-space token in the line, and the tree
// is rebuilt with a stack of open ancestors: the stack is popped until
// its height equals the line's depth, and the new node attaches to the
// stack top (or the forest root when the stack is empty).
//
// A single trailing blank line is stripped. Malformed lines (an empty
// name, or a marker clause without "==") are a hard parse error naming
// the offending line; Parse never skips input silently.
func Parse(text string) (Forest, error) {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}

	var forest Forest
	var stack []*Package
	for _, line := range lines {
		pkg, err := ParseLine(line)
		if err != nil {
			return nil, err
		}

		depth := strings.Count(line, indentUnit)
		for len(stack) > depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			forest = append(forest, pkg)
		} else {
			parent := stack[len(stack)-1]
			parent.Deps = append(parent.Deps, pkg)
		}
		stack = append(stack, pkg)
	}
	return forest, nil
}

// ParseLine parses a single listing line into a package node, ignoring
// indentation. Exposed for callers that match individual manifest lines
// without rebuilding a whole forest.
func ParseLine(line string) (*Package, error) {
	head, markerPart, hasMarkers := strings.Cut(line, ";")

	name, version, _ := strings.Cut(strings.TrimSpace(head), "==")
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)

	var source string
	if strings.Contains(name, "@") {
		n, s, _ := strings.Cut(name, "@")
		name, source = strings.TrimSpace(n), strings.TrimSpace(s)
	}
	if name == "" {
		return nil, errors.New(errors.ErrCodeParse, "malformed dependency line: %q", line)
	}

	pkg := &Package{Name: name, Version: version, Source: source}
	if hasMarkers {
		for _, clause := range strings.Split(markerPart, " and ") {
			key, val, ok := strings.Cut(clause, "==")
			if !ok {
				return nil, errors.New(errors.ErrCodeParse,
					"malformed marker clause %q in line %q", strings.TrimSpace(clause), line)
			}
			pkg.Markers = append(pkg.Markers, Marker{
				Key: strings.TrimSpace(key),
				Val: strings.TrimSpace(val),
			})
		}
	}
	return pkg, nil
}
