package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depdrift/depdrift/pkg/errors"
)

func TestPushTypeValidate(t *testing.T) {
	tests := []struct {
		name     string
		pushType PushType
		wantErr  bool
	}{
		{name: "create", pushType: PushCreate, wantErr: false},
		{name: "update", pushType: PushUpdate, wantErr: false},
		{name: "empty", pushType: PushType(""), wantErr: true},
		{name: "unknown", pushType: PushType("merge"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pushType.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				if errors.GetCode(err) != errors.ErrCodeInvalidInput {
					t.Errorf("GetCode() = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidInput)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestPushTypeTitle(t *testing.T) {
	tests := []struct {
		pushType PushType
		want     string
	}{
		{pushType: PushCreate, want: "Create"},
		{pushType: PushUpdate, want: "Update"},
		{pushType: PushType(""), want: ""},
	}

	for _, tt := range tests {
		if got := tt.pushType.Title(); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.pushType, got, tt.want)
		}
	}
}

func TestPushInvalidType(t *testing.T) {
	r := &Repo{Dir: t.TempDir()}
	err := r.Push(context.Background(), "requirements.txt", "branch", PushType("merge"), "")
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("Push() error = %v, want INVALID_INPUT", err)
	}
}

// setupTestRepos creates a bare remote and a working clone with one
// initial commit on main.
func setupTestRepos(t *testing.T) (work, remote string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	base := t.TempDir()
	remote = filepath.Join(base, "remote.git")
	work = filepath.Join(base, "work")

	run := func(dir string, args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}

	run(base, "init", "--bare", remote)
	run(base, "init", "-b", "main", work)
	if err := os.WriteFile(filepath.Join(work, "README"), []byte("test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run(work, "add", "README")
	run(work, "commit", "-m", "initial")
	return work, remote
}

func TestPush(t *testing.T) {
	work, remote := setupTestRepos(t)
	ctx := context.Background()

	manifest := filepath.Join(work, "requirements.txt")
	if err := os.WriteFile(manifest, []byte("alpha == 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &Repo{Dir: work}
	if err := r.Push(ctx, "requirements.txt", "deps", PushCreate, remote); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	// The branch exists on the remote with the commit message.
	out, err := r.git(ctx, "ls-remote", "--heads", "origin", "deps")
	if err != nil {
		t.Fatalf("ls-remote: %v", err)
	}
	if !strings.Contains(out, "refs/heads/deps") {
		t.Errorf("branch not pushed: %q", out)
	}
	msg, err := r.git(ctx, "log", "-1", "--format=%s", "deps")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if msg != "Create requirements.txt" {
		t.Errorf("commit message = %q", msg)
	}

	// A second push with no changes is a no-op, not an error.
	if err := r.Push(ctx, "requirements.txt", "deps", PushUpdate, remote); err != nil {
		t.Errorf("Push() repeat error = %v", err)
	}
}

func TestPushCommitIdentity(t *testing.T) {
	work, remote := setupTestRepos(t)
	ctx := context.Background()

	manifest := filepath.Join(work, "requirements.txt")
	if err := os.WriteFile(manifest, []byte("alpha == 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &Repo{Dir: work}
	if err := r.Push(ctx, "requirements.txt", "deps", PushCreate, remote); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	author, err := r.git(ctx, "log", "-1", "--format=%an <%ae>", "deps")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if author != "depdrift[bot] <bot@depdrift.dev>" {
		t.Errorf("author = %q", author)
	}
}
