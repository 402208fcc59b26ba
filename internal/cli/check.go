package cli

import (
	"github.com/spf13/cobra"

	"github.com/depdrift/depdrift/pkg/config"
	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	manifest   string
	missing    bool
	extra      bool
	strict     bool
	ignoreFile string
	ignore     []string
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Report drift between the environment and the manifest",
		Long: `Compare the installed dependency forest against the manifest and
report missing packages (installed but not recorded) and extra packages
(recorded but not installed). With --strict a non-empty report fails the
command, for use as a CI gate.

Examples:
  depdrift check                          # report both directions
  depdrift check --missing --strict       # fail CI on unrecorded packages
  depdrift check --ignore "pip" --ignore "setuptools"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.manifest = args[0]
			}
			return c.runCheck(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "manifest file (default from config)")
	cmd.Flags().BoolVar(&opts.missing, "missing", false, "report packages installed but not in the manifest")
	cmd.Flags().BoolVar(&opts.extra, "extra", false, "report manifest packages not installed")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when drift is found")
	cmd.Flags().StringVar(&opts.ignoreFile, "ignore-file", "", "file of packages to skip, one listing line each")
	cmd.Flags().StringArrayVar(&opts.ignore, "ignore", nil, "package to skip, listing line format (repeatable)")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, opts *checkOpts) error {
	ctx := cmd.Context()

	cfg, err := c.Config()
	if err != nil {
		return err
	}
	opts.applyDefaults(cfg)

	installed, err := c.listInstalled(ctx, cfg)
	if err != nil {
		return err
	}
	recorded, found, err := loadManifest(opts.manifest)
	if err != nil {
		return err
	}
	if !found {
		return errors.New(errors.ErrCodeNotFound, "manifest %s not found", opts.manifest)
	}
	recorded, _, err = c.scopeManifest(ctx, recorded)
	if err != nil {
		return err
	}
	ignores, err := loadIgnores(opts.ignoreFile, opts.ignore)
	if err != nil {
		return err
	}

	// Neither direction flag means both.
	wantMissing := opts.missing || !opts.extra
	wantExtra := opts.extra || !opts.missing

	var missing, extra []*deptree.Package
	if wantMissing {
		missing = deptree.Diff(installed, recorded, ignores)
		printDrift(deptree.DirMissing, missing)
	}
	if wantExtra {
		extra = deptree.Diff(recorded, installed, ignores)
		printDrift(deptree.DirExtra, extra)
	}

	if len(missing) == 0 && len(extra) == 0 {
		printSuccess("No drift against %s", opts.manifest)
		return nil
	}
	printInfo("%d missing, %d extra", len(missing), len(extra))

	if !opts.strict {
		return nil
	}
	if len(missing) > 0 {
		return &deptree.DriftError{Direction: deptree.DirMissing, Packages: missing}
	}
	return &deptree.DriftError{Direction: deptree.DirExtra, Packages: extra}
}

// applyDefaults fills unset flags from the configuration file.
func (o *checkOpts) applyDefaults(cfg *config.Config) {
	if o.manifest == "" {
		o.manifest = cfg.Check.Manifest
	}
	if o.ignoreFile == "" {
		o.ignoreFile = cfg.Check.IgnoreFile
	}
	if len(o.ignore) == 0 {
		o.ignore = cfg.Check.Ignore
	}
}
