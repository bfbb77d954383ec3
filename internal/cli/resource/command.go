package resource

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rajithacharith/thunder-sub007/internal/cli/common"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "resource",
		Short: "Read and write resources through the store engine",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newListCommand(deps, globalFlags),
		newGetCommand(deps, globalFlags),
		newCreateCommand(deps, globalFlags),
		newUpdateCommand(deps, globalFlags),
		newDeleteCommand(deps, globalFlags),
	)
	return command
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var page common.PageFlags

	command := &cobra.Command{
		Use:   "list <type>",
		Short: "List resources of a type",
		Example: strings.Join([]string{
			"  thunder-store resource list application",
			"  thunder-store resource list application --offset 30 --limit 30 -o json",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			return withStore(command, deps, globalFlags, func(ctx context.Context, resources store.Store) error {
				result, err := resources.List(ctx, args[0], store.PageRequest{Offset: page.Offset, Limit: page.Limit})
				if err != nil {
					return err
				}
				if warning := result.Warning(); warning != "" {
					_, _ = fmt.Fprintf(command.ErrOrStderr(), "warning: %s\n", warning)
				}
				return common.WriteOutput(command, globalFlags.Output, result, renderListText)
			})
		},
	}
	common.BindPageFlags(command, &page)
	return command
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Get one resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			return withStore(command, deps, globalFlags, func(ctx context.Context, resources store.Store) error {
				item, err := resources.Get(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return common.WriteOutput(command, globalFlags.Output, item, renderResourceText)
			})
		},
	}
}

func newCreateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var input common.InputFlags

	command := &cobra.Command{
		Use:   "create <type>",
		Short: "Create a mutable resource",
		Example: strings.Join([]string{
			"  thunder-store resource create application --payload app.yaml",
			"  echo '{\"id\":\"a\",\"name\":\"Portal\"}' | thunder-store resource create application -i json -f -",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			value, err := common.DecodeResource(command, input)
			if err != nil {
				return err
			}
			return withStore(command, deps, globalFlags, func(ctx context.Context, resources store.Store) error {
				created, err := resources.Create(ctx, args[0], value)
				if err != nil {
					return err
				}
				return common.WriteOutput(command, globalFlags.Output, created, renderResourceText)
			})
		},
	}
	common.BindInputFlags(command, &input)
	return command
}

func newUpdateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var input common.InputFlags
	var revision string

	command := &cobra.Command{
		Use:   "update <type> <id>",
		Short: "Replace the attributes of a mutable resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			value, err := common.DecodeResource(command, input)
			if err != nil {
				return err
			}
			if value.ID == "" {
				value.ID = args[1]
			}
			if strings.TrimSpace(revision) != "" {
				value.Revision = revision
			}
			if strings.TrimSpace(value.ID) != strings.TrimSpace(args[1]) {
				return common.ValidationError(fmt.Sprintf("payload id %q does not match %q", value.ID, args[1]), nil)
			}

			return withStore(command, deps, globalFlags, func(ctx context.Context, resources store.Store) error {
				updated, err := resources.Update(ctx, args[0], value)
				if err != nil {
					return err
				}
				return common.WriteOutput(command, globalFlags.Output, updated, renderResourceText)
			})
		},
	}
	common.BindInputFlags(command, &input)
	command.Flags().StringVar(&revision, "revision", "", "expected current revision; the update fails if the record changed")
	return command
}

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a mutable resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			return withStore(command, deps, globalFlags, func(ctx context.Context, resources store.Store) error {
				return resources.Delete(ctx, args[0], args[1])
			})
		},
	}
}

func withStore(
	command *cobra.Command,
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	run func(context.Context, store.Store) error,
) error {
	ctx, cancel := common.CommandContext(command, globalFlags)
	defer cancel()

	engine, err := common.RequireEngine(ctx, deps, globalFlags, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	return run(ctx, engine.Store())
}

func renderListText(w io.Writer, result store.PageResult) error {
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "ID\tSOURCE\tREVISION")
	for _, item := range result.Items {
		_, _ = fmt.Fprintf(table, "%s\t%s\t%s\n", item.ID, item.Source, item.Revision)
	}
	if err := table.Flush(); err != nil {
		return err
	}

	total := fmt.Sprintf("%d", result.TotalCount)
	if result.TotalCapped {
		total = "at least " + total
	}
	_, err := fmt.Fprintf(w, "%d of %s\n", len(result.Items), total)
	return err
}

func renderResourceText(w io.Writer, item resource.Resource) error {
	encoded, err := yaml.Marshal(item)
	if err != nil {
		return err
	}
	_, err = w.Write(encoded)
	return err
}
