// Package pyenv probes the active Python interpreter for the
// environment-marker values depdrift attaches to listings:
// python_version (major.minor), sys_platform, and the PEP 508 style
// full interpreter version.
package pyenv

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
)

// probeScript prints the interpreter version fields and platform on one
// line: major minor micro releaselevel serial platform.
const probeScript = "import sys; v = sys.implementation.version; " +
	"print(v.major, v.minor, v.micro, v.releaselevel, v.serial, sys.platform)"

// interpreters are tried in order when probing.
var interpreters = []string{"python3", "python"}

// Info holds the probed environment values.
type Info struct {
	PythonVersion string // "3.11"
	SysPlatform   string // "linux", "darwin", "win32"
	FullVersion   string // "3.11.4", "3.13.0rc1"
}

// Markers returns the environment markers for listings written with
// --with-info, in the order they serialize.
func (i *Info) Markers() []deptree.Marker {
	return []deptree.Marker{
		{Key: "python_version", Val: i.PythonVersion},
		{Key: "sys_platform", Val: i.SysPlatform},
	}
}

// Probe queries the first available Python interpreter. An environment
// without one is a fatal error: there is nothing to check.
func Probe(ctx context.Context) (*Info, error) {
	var lastErr error
	for _, bin := range interpreters {
		if _, err := exec.LookPath(bin); err != nil {
			lastErr = err
			continue
		}
		cmd := exec.CommandContext(ctx, bin, "-c", probeScript)
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		if err := cmd.Run(); err != nil {
			lastErr = err
			continue
		}
		return parseProbe(stdout.String())
	}
	return nil, errors.Wrap(errors.ErrCodeLister, lastErr, "no usable python interpreter found")
}

// parseProbe decodes the probe script's single output line.
func parseProbe(out string) (*Info, error) {
	fields := strings.Fields(out)
	if len(fields) != 6 {
		return nil, errors.New(errors.ErrCodeLister, "unexpected interpreter probe output: %q", strings.TrimSpace(out))
	}
	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLister, err, "unexpected interpreter probe output: %q", strings.TrimSpace(out))
		}
		nums[i] = n
	}
	serial, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLister, err, "unexpected interpreter probe output: %q", strings.TrimSpace(out))
	}

	return &Info{
		PythonVersion: fmt.Sprintf("%d.%d", nums[0], nums[1]),
		SysPlatform:   strings.ToLower(fields[5]),
		FullVersion:   FormatFullVersion(nums[0], nums[1], nums[2], fields[3], serial),
	}, nil
}

// FormatFullVersion renders the full interpreter version: major.minor.micro,
// with the release level's initial letter and serial appended for
// non-final releases ("3.13.0c1" for releaselevel "candidate", serial 1).
func FormatFullVersion(major, minor, micro int, releaseLevel string, serial int) string {
	version := fmt.Sprintf("%d.%d.%d", major, minor, micro)
	if releaseLevel != "final" && releaseLevel != "" {
		version += releaseLevel[:1] + strconv.Itoa(serial)
	}
	return version
}
