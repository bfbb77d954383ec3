package common

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

type GlobalFlags struct {
	Config   string
	Debug    bool
	NoStatus bool
	Output   string
	Timeout  time.Duration
}

type InputFlags struct {
	Payload string
	Format  string
}

type PageFlags struct {
	Offset int
	Limit  int
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVar(&flags.Config, "config", "", "engine config file (default $THUNDER_STORE_CONFIG or ~/.thunder/store.yaml)")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug logging")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "deadline for the whole command (0 uses the engine operation timeout)")
}

func BindInputFlags(command *cobra.Command, flags *InputFlags) {
	command.Flags().StringVarP(&flags.Payload, "payload", "f", "", "payload file path (use '-' to read object from stdin)")
	command.Flags().StringVarP(&flags.Format, "format", "i", OutputYAML, "input format: json|yaml")
}

func BindPageFlags(command *cobra.Command, flags *PageFlags) {
	command.Flags().IntVar(&flags.Offset, "offset", 0, "number of records to skip")
	command.Flags().IntVar(&flags.Limit, "limit", 0, "page size (default 30, max 100)")
}

// CommandContext derives the context for one command run, bounded by
// --timeout when set.
func CommandContext(command *cobra.Command, flags *GlobalFlags) (context.Context, context.CancelFunc) {
	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if flags == nil || flags.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, flags.Timeout)
}
