package declarative

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-logr/logr"
	"github.com/rajithacharith/thunder-sub007/internal/cli/common"
	"github.com/rajithacharith/thunder-sub007/store"
	"github.com/spf13/cobra"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "declarative",
		Short: "Inspect declarative resource files",
		Args:  cobra.NoArgs,
	}
	command.AddCommand(newCheckCommand(deps, globalFlags))
	return command
}

func newCheckCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var strict bool

	command := &cobra.Command{
		Use:   "check",
		Short: "Load declarative directories and report counts and skipped files",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			ctx, cancel := common.CommandContext(command, globalFlags)
			defer cancel()

			check, err := common.RequireDeclarativeCheck(deps)
			if err != nil {
				return err
			}
			cfg, err := common.RequireConfig(ctx, deps, globalFlags)
			if err != nil {
				return err
			}

			summary, err := check(ctx, cfg, common.EngineOptions{Logger: logr.FromContextOrDiscard(ctx)})
			if err != nil {
				return err
			}
			if err := common.WriteOutput(command, globalFlags.Output, summary, renderSummaryText); err != nil {
				return err
			}
			if strict && len(summary.Diagnostics) > 0 {
				return common.ValidationError(fmt.Sprintf("%d declarative file(s) skipped", len(summary.Diagnostics)), nil)
			}
			return nil
		},
	}
	command.Flags().BoolVar(&strict, "strict", false, "fail when any file is skipped")
	return command
}

func renderSummaryText(w io.Writer, summary store.SnapshotSummary) error {
	_, _ = fmt.Fprintf(w, "base dir: %s\ndigest:   %s\n\n", summary.BaseDir, summary.Digest)

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "TYPE\tMODE\tRESOURCES\tSKIPPED")
	for _, item := range summary.Types {
		_, _ = fmt.Fprintf(table, "%s\t%s\t%d\t%d\n", item.Type, item.Mode, item.Resources, item.Skipped)
	}
	if err := table.Flush(); err != nil {
		return err
	}

	for _, diagnostic := range summary.Diagnostics {
		if _, err := fmt.Fprintf(w, "skipped %s: %s\n", diagnostic.Subject, diagnostic.Message); err != nil {
			return err
		}
	}
	return nil
}
