package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/sonaveeb-anki/internal/config"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/version"
)

type rootOptions struct {
	configPath string
	verbose    bool
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           version.Name,
		Short:         "Look up Estonian words on Sõnaveeb and turn them into Anki notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug mode with trace logging")

	root.AddCommand(newLookupCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newNoteTypesCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprint(cmd.OutOrStdout(), version.GetDetailedVersionInfo())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include commit and Go version")
	return cmd
}
