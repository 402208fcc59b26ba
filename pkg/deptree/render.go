package deptree

import (
	"io"
	"os"
	"strings"
)

// Line renders a single node without its children:
// name[ @ source][ == version][; key == val[ and ...]].
//
// The source suffix renders before the version so that the output
// re-parses losslessly: the parser splits a line on its first "==", and
// the "@" locator must stay on the name side of that split.
func Line(p *Package) string {
	var b strings.Builder
	b.WriteString(p.String())
	for i, m := range p.Markers {
		if i == 0 {
			b.WriteString("; ")
		} else {
			b.WriteString(" and ")
		}
		b.WriteString(m.Key)
		b.WriteString(" == ")
		b.WriteString(m.Val)
	}
	return b.String()
}

// Fprint writes the forest to w in the canonical line-oriented format:
// depth-first pre-order, one node per line, two spaces per depth level.
func Fprint(w io.Writer, forest Forest) error {
	return fprint(w, forest, 0)
}

func fprint(w io.Writer, forest Forest, depth int) error {
	for _, p := range forest {
		line := strings.Repeat(indentUnit, depth) + Line(p) + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
		if err := fprint(w, p.Deps, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the forest serialized to a string.
// Parse(Render(f)) reproduces f for any forest produced by Parse.
func Render(forest Forest) string {
	var b strings.Builder
	_ = fprint(&b, forest, 0)
	return b.String()
}

// WriteFile serializes the forest to path, replacing any existing file.
func WriteFile(path string, forest Forest) error {
	return os.WriteFile(path, []byte(Render(forest)), 0o644)
}
