package cli

import (
	"io"
	"testing"

	"github.com/depdrift/depdrift/pkg/config"
	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
)

func TestNew(t *testing.T) {
	c := New(io.Discard, LogInfo)

	if c.Logger == nil {
		t.Fatal("New() returned nil logger")
	}
	if len(c.RunID) != 8 {
		t.Errorf("RunID = %q, want 8 characters", c.RunID)
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}

	want := map[string]bool{"list": false, "check": false, "sync": false, "cache": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

func TestResolveCacheDir(t *testing.T) {
	t.Run("configured directory wins", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.cfg = config.Default()
		c.cfg.Cache.Dir = "/var/cache/depdrift"

		dir, err := c.resolveCacheDir()
		if err != nil {
			t.Fatalf("resolveCacheDir() error = %v", err)
		}
		if dir != "/var/cache/depdrift" {
			t.Errorf("dir = %q", dir)
		}
	})

	t.Run("non-file backend is a config error", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.cfg = config.Default()
		c.cfg.Cache.Backend = config.BackendRedis
		c.cfg.Cache.RedisAddr = "localhost:6379"

		_, err := c.resolveCacheDir()
		if errors.GetCode(err) != errors.ErrCodeConfig {
			t.Errorf("resolveCacheDir() error = %v, want CONFIG_ERROR", err)
		}
	})
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    deptree.Marker
		wantErr bool
	}{
		{
			name:  "plain pair",
			input: "sys_platform=linux",
			want:  deptree.Marker{Key: "sys_platform", Val: "linux"},
		},
		{
			name:  "spaces trimmed",
			input: " python_version = 3.11 ",
			want:  deptree.Marker{Key: "python_version", Val: "3.11"},
		},
		{
			name:  "empty value allowed",
			input: "key=",
			want:  deptree.Marker{Key: "key"},
		},
		{name: "no separator", input: "justkey", wantErr: true},
		{name: "empty key", input: "=value", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePair(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePair(%q) expected error", tt.input)
				}
				if errors.GetCode(err) != errors.ErrCodeInvalidInput {
					t.Errorf("GetCode() = %q", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePair(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parsePair(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
