package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yoelcortes/setupforge/internal/version"
	"github.com/yoelcortes/setupforge/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "setupforge",
		Short: "Compile declarative installer descriptors into installer bundles",
		Long: `setupforge ingests an Inno Setup style descriptor and a source file tree
and produces a single self-contained installer bundle with the resolved
file plan, shortcut and post-install actions embedded as metadata.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGenconfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("setupforge %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
