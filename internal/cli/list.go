package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/pyenv"
)

// listOpts holds the command-line flags for the list command.
type listOpts struct {
	withInfo bool     // attach python_version/sys_platform markers
	info     []string // extra key=value markers to inject
	filter   []string // key=value criteria to filter top-level nodes
	output   string   // output file path (stdout if empty)
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the installed dependency forest",
		Long: `List the installed packages as an indentation-structured dependency
tree, optionally annotated with environment markers.

Examples:
  depdrift list                                  # print to stdout
  depdrift list -o requirements.txt              # write a manifest
  depdrift list --with-info                      # attach python_version/sys_platform
  depdrift list --filter sys_platform=linux      # only linux-scoped roots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.withInfo, "with-info", false, "attach interpreter version and platform markers")
	cmd.Flags().StringArrayVar(&opts.info, "info", nil, "extra key=value marker to inject (repeatable)")
	cmd.Flags().StringArrayVar(&opts.filter, "filter", nil, "key=value criterion on top-level nodes (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runList(cmd *cobra.Command, opts *listOpts) error {
	ctx := cmd.Context()

	cfg, err := c.Config()
	if err != nil {
		return err
	}
	forest, err := c.listInstalled(ctx, cfg)
	if err != nil {
		return err
	}

	var markers []deptree.Marker
	if opts.withInfo {
		env, err := pyenv.Probe(ctx)
		if err != nil {
			return err
		}
		markers = append(markers, env.Markers()...)
	}
	for _, pair := range opts.info {
		m, err := parsePair(pair)
		if err != nil {
			return err
		}
		markers = append(markers, m)
	}
	if len(markers) > 0 {
		forest = deptree.AddInfo(forest, markers...)
	}

	if len(opts.filter) > 0 {
		var criteria []deptree.Marker
		for _, pair := range opts.filter {
			m, err := parsePair(pair)
			if err != nil {
				return err
			}
			criteria = append(criteria, m)
		}
		forest = deptree.Filter(forest, criteria...)
	}

	if opts.output == "" {
		return deptree.Fprint(os.Stdout, forest)
	}
	if err := deptree.WriteFile(opts.output, forest); err != nil {
		return err
	}
	printSuccess("Wrote %d top-level packages", len(forest))
	printDetail("File: %s", opts.output)
	return nil
}
