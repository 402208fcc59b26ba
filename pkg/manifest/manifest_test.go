package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestUpdateRequiresDelta(t *testing.T) {
	path := writeManifest(t, "alpha == 1.0\n")
	err := Update(path, nil, nil, nil)
	if err == nil {
		t.Fatal("Update() expected error for empty delta")
	}
	if errors.GetCode(err) != errors.ErrCodeConfig {
		t.Errorf("GetCode() = %q, want %q", errors.GetCode(err), errors.ErrCodeConfig)
	}
}

func TestUpdateInsertMissing(t *testing.T) {
	t.Run("appends at the end without sysinfo", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0\nbeta == 2.0\n")
		missing := []*deptree.Package{{Name: "gamma", Version: "3.0"}}

		if err := Update(path, missing, nil, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0\nbeta == 2.0\ngamma == 3.0\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})

	t.Run("inserts after the matching sysinfo block", func(t *testing.T) {
		path := writeManifest(t,
			"alpha == 1.0; sys_platform == linux\n"+
				"beta == 2.0; sys_platform == darwin\n")
		missing := []*deptree.Package{{Name: "gamma", Version: "3.0"}}
		sysInfo := []deptree.Marker{{Key: "sys_platform", Val: "linux"}}

		if err := Update(path, missing, nil, sysInfo); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0; sys_platform == linux\n" +
			"gamma == 3.0; sys_platform == linux\n" +
			"beta == 2.0; sys_platform == darwin\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})

	t.Run("inserted line drops children", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0\n")
		missing := []*deptree.Package{{
			Name:    "gamma",
			Version: "3.0",
			Deps:    deptree.Forest{{Name: "delta"}},
		}}

		if err := Update(path, missing, nil, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0\ngamma == 3.0\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})
}

func TestUpdateRemoveExtra(t *testing.T) {
	t.Run("drops matching lines", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0\nbeta == 2.0\ngamma == 3.0\n")
		extra := []*deptree.Package{{Name: "beta"}}

		if err := Update(path, nil, extra, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0\ngamma == 3.0\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})

	t.Run("pinned entry only removes matching version", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0\nalpha == 2.0\n")
		extra := []*deptree.Package{{Name: "alpha", Version: "2.0"}}

		if err := Update(path, nil, extra, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})

	t.Run("unparseable lines pass through verbatim", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0\n== broken line\nbeta == 2.0\n")
		extra := []*deptree.Package{{Name: "beta"}}

		if err := Update(path, nil, extra, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0\n== broken line\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})
}

func TestUpdatePreservesUntouchedLines(t *testing.T) {
	original := "alpha == 1.0; python_version == 3.11\n" +
		"\n" +
		"beta   ==   2.0\n"
	path := writeManifest(t, original)
	missing := []*deptree.Package{{Name: "gamma"}}
	extra := []*deptree.Package{{Name: "alpha"}}

	if err := Update(path, missing, extra, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := "\nbeta   ==   2.0\ngamma\n"
	if got := readBack(t, path); got != want {
		t.Errorf("manifest = %q, want %q", got, want)
	}
}

func TestUpdateTrailingNewline(t *testing.T) {
	t.Run("removal keeps a newline-less tail", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0\nbeta == 2.0")
		extra := []*deptree.Package{{Name: "beta"}}

		if err := Update(path, nil, extra, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})

	t.Run("appended line is terminated", func(t *testing.T) {
		path := writeManifest(t, "alpha == 1.0")
		missing := []*deptree.Package{{Name: "gamma"}}

		if err := Update(path, missing, nil, nil); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0\ngamma\n"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})

	t.Run("mid-file insert keeps a newline-less tail", func(t *testing.T) {
		path := writeManifest(t,
			"alpha == 1.0; sys_platform == linux\nbeta == 2.0; sys_platform == darwin")
		missing := []*deptree.Package{{Name: "gamma"}}
		sysInfo := []deptree.Marker{{Key: "sys_platform", Val: "linux"}}

		if err := Update(path, missing, nil, sysInfo); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		want := "alpha == 1.0; sys_platform == linux\n" +
			"gamma; sys_platform == linux\n" +
			"beta == 2.0; sys_platform == darwin"
		if got := readBack(t, path); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
	})
}

func TestUpdateMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	err := Update(path, []*deptree.Package{{Name: "alpha"}}, nil, nil)
	if err == nil {
		t.Fatal("Update() expected error for missing file")
	}
}
