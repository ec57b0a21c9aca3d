package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set by the build system
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth-desktop",
		Short: "Desktop sign-in client",
		Long:  "Signs a user in with the OAuth2 authorization code flow and shows their tenant profile.",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(
		versionCmd(),
		runCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func setupLogging() {
	level := zerolog.InfoLevel
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "DEV" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
