package config

import (
	"fmt"
	"io"

	configdomain "github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/internal/cli/common"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Inspect the engine config",
		Args:  cobra.NoArgs,
	}
	command.AddCommand(
		newShowCommand(deps, globalFlags),
		newValidateCommand(deps, globalFlags),
	)
	return command
}

func newShowCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved engine config, after env overrides",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			ctx, cancel := common.CommandContext(command, globalFlags)
			defer cancel()

			cfg, err := common.RequireConfig(ctx, deps, globalFlags)
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, cfg, func(w io.Writer, value configdomain.Engine) error {
				encoded, err := yaml.Marshal(value)
				if err != nil {
					return err
				}
				_, err = w.Write(encoded)
				return err
			})
		},
	}
}

func newValidateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the engine config",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			ctx, cancel := common.CommandContext(command, globalFlags)
			defer cancel()

			cfg, err := common.RequireConfig(ctx, deps, globalFlags)
			if err != nil {
				return err
			}
			return common.WriteText(command, globalFlags.Output, fmt.Sprintf("config is valid: %d resource type(s)", len(cfg.Resources)))
		},
	}
}
