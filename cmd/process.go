package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	var force bool

	processCmd := &cobra.Command{
		Use:   "process <conversation-id>",
		Short: "Run the pipeline for a single conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			id := args[0]
			if !force && a.ledger.Contains(id) {
				a.logger.Info("conversation already processed, use --force to rerun", "conversation_id", id)
				return nil
			}

			res := a.proc.Process(cmd.Context(), id)
			if res.Err != nil {
				return fmt.Errorf("process %s: %w", id, res.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %s\n  transcript: %s\n  profile:    %s\n  published:  %v\n",
				id, res.TranscriptPath, orNone(res.ProfilePath), res.Published)
			return nil
		},
	}

	processCmd.Flags().BoolVar(&force, "force", false, "process even if the ledger already has this conversation")
	return processCmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
