package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solacelabs/solace/internal/config"
	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/knowledge"
)

func newRepublishCmd() *cobra.Command {
	var dir string

	republishCmd := &cobra.Command{
		Use:   "republish",
		Short: "Upload every stored profile to the knowledge base again",
		Long:  "Replays all profile artifacts into the agent's knowledge base. Use after an outage left pipeline runs finished but unpublished.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			setupLogging(cfg.LogLevel)

			if cfg.ElevenLabsAPIKey == "" {
				return errors.New("ELEVENLABS_API_KEY is required")
			}
			if dir == "" {
				dir = resolveProfilesDir(cfg)
			}

			eleven := elevenlabs.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsURL)
			publisher := knowledge.NewPublisher(eleven, slog.Default())

			published, failed, err := publisher.RepublishAll(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "republished %d profiles, %d failed\n", published, failed)
			if failed > 0 {
				return fmt.Errorf("%d profiles failed to publish", failed)
			}
			return nil
		},
	}

	republishCmd.Flags().StringVar(&dir, "dir", "", "profile directory (default derived from the conversations dir)")
	return republishCmd
}
