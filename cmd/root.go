// Package cmd holds the solace command tree.
package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solace",
		Short:         "Solace: post-conversation processing for the voice companion",
		Long:          "solace turns finished voice-companion conversations into transcript artifacts and user profiles, publishes the profiles back into the agent's knowledge base, and keeps a ledger so each conversation is processed exactly once.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newWatchCmd(),
		newProcessCmd(),
		newRepublishCmd(),
		newAnalyzeCmd(),
	)

	return rootCmd
}
