package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "action-router",
		Short: "Route agent actions to the search and directory backend",
		Long: `Receives action invocations from a conversational agent orchestrator,
dispatches them by API path to a directory lookup or a parameterized search,
and returns a response envelope for every invocation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (default ./config/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newInvokeCmd(opts))

	return rootCmd
}
