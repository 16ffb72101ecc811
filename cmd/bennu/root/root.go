package root

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/flarebyte/bennu/internal/dispatch"
	"github.com/flarebyte/bennu/internal/reload"
	"github.com/flarebyte/bennu/internal/upload"
)

// NewRootCmd creates the root command for bennu. There are no subcommands
// and cobra flag parsing is off: the raw argument vector routes to exactly
// one collaborator, keyed on the first element alone.
func NewRootCmd() *cobra.Command {
	d := dispatch.Dispatcher{
		Upload: upload.New(os.Stdout),
		Reload: reload.New(os.Stdout),
	}
	cmd := &cobra.Command{
		Use:   "bennu",
		Short: "CLI: the self-renewing heron that reruns your app on change and sends it off to a hosted space",
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.Run(cmd.Context(), args)
		},
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true,
	}
	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
