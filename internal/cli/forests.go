package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/depdrift/depdrift/pkg/config"
	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/lister"
	"github.com/depdrift/depdrift/pkg/pyenv"
)

// listInstalled invokes the package lister and parses its output into
// the installed forest.
func (c *CLI) listInstalled(ctx context.Context, cfg *config.Config) (deptree.Forest, error) {
	prog := newProgress(c.Logger)
	l := &lister.Lister{Command: cfg.Lister.Command}
	out, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	forest, err := deptree.Parse(out)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Listed %d top-level packages", len(forest)))
	return forest, nil
}

// loadManifest parses the manifest file. A missing file is not an
// error: it returns (nil, false, nil) so sync can create the manifest.
func loadManifest(path string) (deptree.Forest, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	forest, err := deptree.Parse(string(data))
	if err != nil {
		return nil, false, err
	}
	return forest, true, nil
}

// loadIgnores builds the ignore list from a file and/or inline package
// specs. Both sources use the listing line format.
func loadIgnores(file string, inline []string) (deptree.Forest, error) {
	var ignores deptree.Forest
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		parsed, err := deptree.Parse(string(data))
		if err != nil {
			return nil, err
		}
		ignores = append(ignores, parsed...)
	}
	if len(inline) > 0 {
		parsed, err := deptree.Parse(strings.Join(inline, "\n") + "\n")
		if err != nil {
			return nil, err
		}
		ignores = append(ignores, parsed...)
	}
	return ignores, nil
}

// scopeManifest narrows a manifest to the current environment. When the
// manifest's first node carries environment markers, the interpreter is
// probed and the manifest is filtered by the marker keys the manifest
// actually uses; a manifest written without markers passes through
// untouched and no probe runs.
func (c *CLI) scopeManifest(ctx context.Context, manifest deptree.Forest) (deptree.Forest, *pyenv.Info, error) {
	if len(manifest) == 0 || len(manifest[0].Markers) == 0 {
		return manifest, nil, nil
	}

	env, err := pyenv.Probe(ctx)
	if err != nil {
		return nil, nil, err
	}

	var criteria []deptree.Marker
	for _, m := range env.Markers() {
		if _, ok := manifest[0].Marker(m.Key); ok {
			criteria = append(criteria, m)
		}
	}
	if len(criteria) == 0 {
		return manifest, env, nil
	}

	c.Logger.Debug("Scoping manifest to environment", "criteria", criteria)
	return deptree.Filter(manifest, criteria...), env, nil
}
