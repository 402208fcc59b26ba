// Package gitops records manifest changes in a git repository: it
// switches to the depdrift work branch, commits the updated manifest,
// and pushes the branch so a pull request can be opened against it.
//
// All operations shell out to the git binary. Failures propagate with
// git's stderr attached; nothing is retried.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/depdrift/depdrift/pkg/errors"
)

// PushType distinguishes first-time manifest creation from updates. It
// selects the commit message and the pull-request title.
type PushType string

const (
	PushCreate PushType = "create"
	PushUpdate PushType = "update"
)

// Validate returns an error unless t is "create" or "update".
func (t PushType) Validate() error {
	switch t {
	case PushCreate, PushUpdate:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput,
		"wrong push type %q: it should be %q or %q", string(t), PushCreate, PushUpdate)
}

// Title returns the capitalized verb for commit messages and PR titles.
func (t PushType) Title() string {
	if len(t) == 0 {
		return ""
	}
	return strings.ToUpper(string(t)[:1]) + string(t)[1:]
}

// Committer identity used for manifest commits.
const (
	botName  = "depdrift[bot]"
	botEmail = "bot@depdrift.dev"
)

// Repo is a local git working copy.
type Repo struct {
	Dir string // working directory, "" for the current directory
}

// Push commits filePath on branch and pushes the branch to remoteURL's
// origin. The branch is created if it doesn't exist. When the staged
// file has no changes the commit and push are skipped and Push returns
// nil.
//
// If remoteURL is non-empty the origin remote is pointed at it first
// (added when missing, updated otherwise).
func (r *Repo) Push(ctx context.Context, filePath, branch string, pushType PushType, remoteURL string) error {
	if err := pushType.Validate(); err != nil {
		return err
	}

	if remoteURL != "" {
		if _, err := r.git(ctx, "remote", "set-url", "origin", remoteURL); err != nil {
			if _, err := r.git(ctx, "remote", "add", "origin", remoteURL); err != nil {
				return err
			}
		}
	}

	// Switch to the work branch, creating it on first use.
	if _, err := r.git(ctx, "checkout", branch); err != nil {
		if _, err := r.git(ctx, "checkout", "-b", branch); err != nil {
			return err
		}
	}

	if _, err := r.git(ctx, "add", "--", filePath); err != nil {
		return err
	}

	clean, err := r.stagedClean(ctx, filePath)
	if err != nil {
		return err
	}
	if clean {
		return nil
	}

	msg := fmt.Sprintf("%s %s", pushType.Title(), filePath)
	if _, err := r.git(ctx,
		"-c", "user.name="+botName,
		"-c", "user.email="+botEmail,
		"commit", "-m", msg); err != nil {
		return err
	}

	_, err = r.git(ctx, "push", "origin", "HEAD:"+branch)
	return err
}

// stagedClean reports whether the staged copy of filePath matches HEAD.
func (r *Repo) stagedClean(ctx context.Context, filePath string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet", "--", filePath)
	cmd.Dir = r.Dir
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, errors.Wrap(errors.ErrCodeGit, err, "git diff --cached")
}

// git runs a git subcommand in the repository directory.
func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(errors.ErrCodeGit, err,
			"git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
