// Package manifest patches a dependency manifest file in place. Unlike
// the serializer, which rewrites a whole forest, the updater edits only
// the lines a delta touches: untouched lines survive byte-for-byte,
// including their whitespace.
package manifest

import (
	"os"
	"strings"

	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
)

// Update applies a drift delta to the manifest at path.
//
// Extra packages are removed: any line whose parsed (name, source,
// version) matches an extra entry is dropped, using the same wildcard
// rule as ignore matching (an unset field on the entry matches
// anything). Missing packages are inserted as top-level lines carrying
// the sysInfo markers; when sysInfo is given they land after the last
// existing line whose markers satisfy every sysInfo pair, otherwise at
// the end of the file.
//
// At least one of missing or extra must be supplied.
func Update(path string, missing, extra []*deptree.Package, sysInfo []deptree.Marker) error {
	if len(missing) == 0 && len(extra) == 0 {
		return errors.New(errors.ErrCodeConfig,
			"manifest update requires a missing or extra delta")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(data)
	hadTrailingNewline := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	if len(extra) > 0 {
		lines = removeExtra(lines, extra)
	}
	appendedAtEnd := false
	if len(missing) > 0 {
		lines, appendedAtEnd = insertMissing(lines, missing, sysInfo)
	}

	// The file's trailing-newline style is preserved; a newline is added
	// only when the last line is one we just inserted.
	out := strings.Join(lines, "\n")
	if len(lines) > 0 && (hadTrailingNewline || appendedAtEnd) {
		out += "\n"
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

// removeExtra drops lines matching an extra-package entry. Lines that
// don't parse are never candidates for removal and pass through
// verbatim.
func removeExtra(lines []string, extra []*deptree.Package) []string {
	ignores := deptree.Forest(extra)
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			if pkg, err := deptree.ParseLine(line); err == nil && deptree.MatchesIgnore(pkg, ignores) {
				continue
			}
		}
		kept = append(kept, line)
	}
	return kept
}

// insertMissing renders the missing packages as top-level lines and
// splices them in after the last line whose markers satisfy sysInfo.
// The second return reports whether the file now ends with an inserted
// line.
func insertMissing(lines []string, missing []*deptree.Package, sysInfo []deptree.Marker) ([]string, bool) {
	rendered := make([]string, 0, len(missing))
	for _, p := range missing {
		withInfo := deptree.AddInfo(deptree.Forest{p}, sysInfo...)
		node := withInfo[0]
		node.Deps = nil // deltas insert as flat lines, children stay in the tree report
		rendered = append(rendered, deptree.Line(node))
	}

	at := insertionPoint(lines, sysInfo)
	if at < 0 {
		return append(lines, rendered...), true
	}
	out := make([]string, 0, len(lines)+len(rendered))
	out = append(out, lines[:at+1]...)
	out = append(out, rendered...)
	out = append(out, lines[at+1:]...)
	return out, at == len(lines)-1
}

// insertionPoint returns the index of the last line whose markers
// satisfy every sysInfo pair, or -1 when sysInfo is empty or no line
// matches.
func insertionPoint(lines []string, sysInfo []deptree.Marker) int {
	if len(sysInfo) == 0 {
		return -1
	}
	at := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pkg, err := deptree.ParseLine(line)
		if err != nil {
			continue
		}
		if satisfies(pkg, sysInfo) {
			at = i
		}
	}
	return at
}

func satisfies(pkg *deptree.Package, sysInfo []deptree.Marker) bool {
	for _, want := range sysInfo {
		val, ok := pkg.Marker(want.Key)
		if !ok || val != want.Val {
			return false
		}
	}
	return true
}
