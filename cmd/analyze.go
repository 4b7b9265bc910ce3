package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solacelabs/solace/internal/config"
	"github.com/solacelabs/solace/internal/extractor"
	"github.com/solacelabs/solace/internal/groq"
	"github.com/solacelabs/solace/internal/knowledge"
	"github.com/solacelabs/solace/internal/sentiment"
	"github.com/solacelabs/solace/internal/transcript"
)

func newAnalyzeCmd() *cobra.Command {
	var asText bool
	var withSentiment bool

	analyzeCmd := &cobra.Command{
		Use:   "analyze <transcript-file>",
		Short: "Extract a profile from a stored transcript without touching the pipeline",
		Long:  "Runs the profile extraction on a local transcript artifact and prints the result. Nothing is saved, published or marked in the ledger.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg.LogLevel)

			if cfg.GroqAPIKey == "" {
				return errors.New("GROQ_API_KEY is required")
			}

			text, err := transcript.ReadFile(args[0])
			if err != nil {
				return err
			}

			llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
			ext := extractor.New(llm, cfg.GroqTemperature, cfg.GroqMaxTokens, cfg.UpstreamRetries, slog.Default())

			rec, err := ext.Extract(cmd.Context(), text)
			if err != nil {
				return err
			}

			if asText {
				fmt.Fprintln(cmd.OutOrStdout(), knowledge.FormatProfile(rec))
			} else {
				out, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}

			if withSentiment {
				printSentiment(cmd, text)
			}
			return nil
		},
	}

	analyzeCmd.Flags().BoolVar(&asText, "text", false, "print the knowledge-base text block instead of JSON")
	analyzeCmd.Flags().BoolVar(&withSentiment, "sentiment", false, "also classify the user's turns and print coping advice")
	return analyzeCmd
}

// printSentiment classifies every user turn, reports the last detected
// emotion with a matching supportive line, and flags crisis language.
func printSentiment(cmd *cobra.Command, text string) {
	out := cmd.OutOrStdout()
	last := sentiment.Neutral
	escalated := false

	for _, turn := range transcript.Parse(text) {
		if turn.Speaker != transcript.SpeakerUser {
			continue
		}
		emotion, escalate := sentiment.Analyze(turn.Text)
		if emotion != sentiment.Neutral {
			last = emotion
		}
		if escalate {
			escalated = true
		}
	}

	fmt.Fprintf(out, "\nemotion: %s\nadvice:  %s\n", last, sentiment.Advice(last))
	if escalated {
		fmt.Fprintln(out, "warning: crisis language detected in a user turn")
	}
}
