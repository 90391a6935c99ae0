package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

var (
	askLimit       int
	askMaxDistance float64
	askDocuments   []string
	askSince       time.Duration
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Asks a question against the document library.
The answer is grounded in retrieved passages and cites its sources.
When the library contains nothing relevant, veridoc says so explicitly
rather than inventing an answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of passages to retrieve")
	askCmd.Flags().Float64Var(&askMaxDistance, "max-distance", 0, "relevance distance ceiling (0 uses the default)")
	askCmd.Flags().StringSliceVarP(&askDocuments, "document", "d", nil, "restrict to specific document IDs (repeatable)")
	askCmd.Flags().DurationVar(&askSince, "since", 0, "only use documents uploaded within this duration (e.g. 24h)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if askService == nil {
		return errors.New("ask service not configured")
	}

	opts := domain.RetrieveOptions{
		Limit:       askLimit,
		MaxDistance: askMaxDistance,
		DocumentIDs: askDocuments,
	}
	if askSince > 0 {
		cutoff := time.Now().Add(-askSince)
		opts.CreatedAfter = &cutoff
	}

	answer, err := askService.Ask(context.Background(), question, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, c := range answer.Citations {
			cmd.Printf("  [%d] %s (relevance: %.2f)\n", i+1, c.DocumentTitle, c.Relevance)
		}
	}

	if answer.EmptyContext != nil {
		cmd.Println()
		switch answer.EmptyContext.Type {
		case domain.EmptyNoDocuments:
			cmd.Println("The library is empty. Upload documents with 'veridoc upload'.")
		case domain.EmptyNoRecentDocuments:
			cmd.Println("No documents match the --since window.")
		case domain.EmptyNoRelevantChunks:
			cmd.Println("No passages in the library were relevant to this question.")
		}
	}

	if answer.Diagnostic != "" {
		cmd.Printf("\nDiagnostic: %s\n", answer.Diagnostic)
	}

	return nil
}
