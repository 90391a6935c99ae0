package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from stored chunks",
	Long: `Rebuilds the vector index from the relational chunk rows.
Safe to run at any time; useful after a crash left the index out of
step with stored documents.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	report, err := libraryService.RebuildIndex(context.Background())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Chunk rows:      %d\n", report.ChunkRows)
	cmd.Printf("Vectors written: %d\n", report.Restored)
	cmd.Printf("Index size:      %d\n", report.IndexSize)
	return nil
}
