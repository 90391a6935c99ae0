package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

// uploadContentType optionally overrides extension-based detection.
var uploadContentType string

// extensionContentTypes maps file extensions to the MIME types the
// extractor registry understands.
var extensionContentTypes = map[string]string{
	".txt":      "text/plain",
	".csv":      "text/csv",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document to the library",
	Long: `Uploads a document and processes it for question answering.
Supported formats: plain text, CSV, Markdown, PDF and DOCX.

Processing happens in the background; the command waits for it to
finish and reports the final status.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadContentType, "type", "t", "", "content type override (e.g. text/plain)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	contentType := uploadContentType
	if contentType == "" {
		contentType = detectContentType(path)
	}
	if contentType == "" {
		return fmt.Errorf("cannot determine content type for %q; use --type", filepath.Base(path))
	}

	ctx := context.Background()
	doc, err := libraryService.Upload(ctx, filepath.Base(path), contentType, data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Printf("Uploaded %s (%s), processing...\n", doc.Title, doc.ID)

	if processingWaiter != nil {
		processingWaiter.Wait()
	}

	final, err := libraryService.Get(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("check processing status: %w", err)
	}

	if !final.Status.Terminal() {
		cmd.Printf("Status: %s\n", final.Status)
		return nil
	}
	if final.Status == domain.StatusFailed {
		cmd.Printf("Processing failed: %s\n", final.ErrorMessage)
		return nil
	}
	cmd.Printf("Done. %s is ready for questions.\n", final.Title)

	return nil
}

func detectContentType(path string) string {
	return extensionContentTypes[strings.ToLower(filepath.Ext(path))]
}
