package cli

import (
	"github.com/spf13/cobra"

	"github.com/depdrift/depdrift/pkg/config"
	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
	"github.com/depdrift/depdrift/pkg/gitops"
	"github.com/depdrift/depdrift/pkg/integrations/github"
	"github.com/depdrift/depdrift/pkg/manifest"
	"github.com/depdrift/depdrift/pkg/pyenv"
)

// syncOpts holds the command-line flags for the sync command.
type syncOpts struct {
	manifest   string
	ignoreFile string
	ignore     []string
	withInfo   bool
	push       bool
	pr         bool
	repo       string
	base       string
	branch     string
}

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var opts syncOpts

	cmd := &cobra.Command{
		Use:   "sync [manifest]",
		Short: "Patch the manifest to match the environment",
		Long: `Compute the drift between the installed packages and the manifest,
then patch the manifest in place: missing packages are appended, extra
packages removed, and every untouched line is preserved byte-for-byte.
A manifest that doesn't exist yet is created from the full installed
forest.

With --push the change is committed on the work branch by the bot
identity and pushed. With --pr a pull request is opened against the base
branch, or the existing open one is refreshed.

Examples:
  depdrift sync                                  # patch the file only
  depdrift sync --with-info                      # annotate inserts with env markers
  depdrift sync --push --pr --repo acme/backend  # full pipeline`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.manifest = args[0]
			}
			return c.runSync(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "manifest file (default from config)")
	cmd.Flags().StringVar(&opts.ignoreFile, "ignore-file", "", "file of packages to skip, one listing line each")
	cmd.Flags().StringArrayVar(&opts.ignore, "ignore", nil, "package to skip, listing line format (repeatable)")
	cmd.Flags().BoolVar(&opts.withInfo, "with-info", false, "annotate inserted lines with interpreter version and platform")
	cmd.Flags().BoolVar(&opts.push, "push", false, "commit and push the manifest to the work branch")
	cmd.Flags().BoolVar(&opts.pr, "pr", false, "open or refresh a pull request (implies --push)")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "GitHub repository as owner/name (default from config)")
	cmd.Flags().StringVar(&opts.base, "base", "", "pull-request base branch (default from config)")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "work branch to push to (default from config)")

	return cmd
}

func (c *CLI) runSync(cmd *cobra.Command, opts *syncOpts) error {
	ctx := cmd.Context()

	cfg, err := c.Config()
	if err != nil {
		return err
	}
	opts.applyDefaults(cfg)
	if opts.pr {
		opts.push = true
	}

	installed, err := c.listInstalled(ctx, cfg)
	if err != nil {
		return err
	}
	recorded, found, err := loadManifest(opts.manifest)
	if err != nil {
		return err
	}

	var env *pyenv.Info
	if found {
		recorded, env, err = c.scopeManifest(ctx, recorded)
		if err != nil {
			return err
		}
	}

	var sysInfo []deptree.Marker
	if opts.withInfo {
		if env == nil {
			if env, err = pyenv.Probe(ctx); err != nil {
				return err
			}
		}
		sysInfo = env.Markers()
	}

	ignores, err := loadIgnores(opts.ignoreFile, opts.ignore)
	if err != nil {
		return err
	}

	var (
		pushType       gitops.PushType
		missing, extra []*deptree.Package
	)
	if !found {
		// No manifest yet: record the whole environment as the delta.
		pushType = gitops.PushCreate
		out := installed
		if len(sysInfo) > 0 {
			out = deptree.AddInfo(out, sysInfo...)
		}
		if err := deptree.WriteFile(opts.manifest, out); err != nil {
			return err
		}
		missing = deptree.Diff(installed, nil, ignores)
		printSuccess("Created %s with %d top-level packages", opts.manifest, len(out))
	} else {
		pushType = gitops.PushUpdate
		missing = deptree.Diff(installed, recorded, ignores)
		extra = deptree.Diff(recorded, installed, ignores)
		if len(missing) == 0 && len(extra) == 0 {
			printSuccess("No drift against %s, nothing to sync", opts.manifest)
			return nil
		}
		printDrift(deptree.DirMissing, missing)
		printDrift(deptree.DirExtra, extra)
		if err := manifest.Update(opts.manifest, missing, extra, sysInfo); err != nil {
			return err
		}
		printSuccess("Updated %s (%d added, %d removed)", opts.manifest, len(missing), len(extra))
	}

	if !opts.push {
		return nil
	}

	prog := newProgress(c.Logger)
	repo := &gitops.Repo{}
	if err := repo.Push(ctx, opts.manifest, opts.branch, pushType, cfg.GitHub.RemoteURL); err != nil {
		return err
	}
	prog.done("Pushed " + opts.branch)

	if !opts.pr {
		return nil
	}
	if opts.repo == "" {
		return errors.New(errors.ErrCodeConfig,
			"pull requests require a repository: set --repo or github.repo in %s", config.FileName)
	}

	title, body, err := github.BuildPull(pushType, missing, extra, sysInfo)
	if err != nil {
		return err
	}
	responseCache, err := c.newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer responseCache.Close()

	gh := github.NewClient(cfg.Token(), responseCache, cfg.CacheTTL())

	// Validate the token first; the account lookup is served from the
	// response cache on repeat runs.
	account, err := gh.User(ctx, false)
	if err != nil {
		return err
	}
	printDetail("Authenticated as %s", account.Login)

	pull, err := gh.EnsurePull(ctx, opts.repo, opts.base, opts.branch, title, body)
	if err != nil {
		return err
	}
	printSuccess("Pull request #%d: %s", pull.Number, pull.Title)
	printDetail("%s", StyleLink.Render(pull.HTMLURL))
	return nil
}

// applyDefaults fills unset flags from the configuration file.
func (o *syncOpts) applyDefaults(cfg *config.Config) {
	if o.manifest == "" {
		o.manifest = cfg.Check.Manifest
	}
	if o.ignoreFile == "" {
		o.ignoreFile = cfg.Check.IgnoreFile
	}
	if len(o.ignore) == 0 {
		o.ignore = cfg.Check.Ignore
	}
	if o.repo == "" {
		o.repo = cfg.GitHub.Repo
	}
	if o.base == "" {
		o.base = cfg.GitHub.BaseBranch
	}
	if o.branch == "" {
		o.branch = cfg.GitHub.Branch
	}
}
