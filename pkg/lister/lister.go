// Package lister invokes the external package lister (pipdeptree) and
// returns its output in the canonical listing format. The lister is an
// opaque collaborator: depdrift only requires that its output conform
// to the line-oriented tree format, and never retries a failed run.
package lister

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/depdrift/depdrift/pkg/errors"
)

// separator precedes the actual listing in pipdeptree output when
// warnings are printed; everything up to the last occurrence is noise.
var separator = strings.Repeat("-", 72) + "\n"

// defaultCommand is the standard invocation: flat tree, one package per
// line, two-space indentation.
var defaultCommand = []string{"pipdeptree", "-fl"}

// Lister runs the external package-listing command.
type Lister struct {
	// Command overrides the default pipdeptree invocation; element zero
	// is the binary, the rest are arguments.
	Command []string
}

// List runs the lister and returns the raw listing text. A non-zero
// exit or I/O failure propagates as a fatal LISTER_ERROR with the
// command's stderr attached.
func (l *Lister) List(ctx context.Context) (string, error) {
	argv := l.Command
	if len(argv) == 0 {
		argv = defaultCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(errors.ErrCodeLister, err,
			"%s failed: %s", strings.Join(argv, " "), strings.TrimSpace(stderr.String()))
	}

	return StripHeader(stdout.String()), nil
}

// StripHeader removes everything up to and including the last warning
// separator line, leaving only the listing.
func StripHeader(text string) string {
	if i := strings.LastIndex(text, separator); i >= 0 {
		return text[i+len(separator):]
	}
	return text
}
