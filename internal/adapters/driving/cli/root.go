// Package cli implements the veridoc command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/veridoc-labs/veridoc/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. Wired by the composition root before
// Execute runs; commands fail with a clear error when unset.
var (
	askService     driving.AskService
	libraryService driving.LibraryService
)

// processingWaiter blocks until background document processing drains.
// Set alongside the services so upload can report a final status.
var processingWaiter interface{ Wait() }

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "veridoc",
	Short: "Ask questions about your private document library",
	Long: `Veridoc indexes your documents locally and answers questions about
them with citations back to the exact passages used.

Upload documents, then ask questions in plain language. Answers are
grounded in your library; when the library has nothing relevant,
veridoc says so instead of guessing.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices wires the driving services into the command tree.
func SetServices(ask driving.AskService, library driving.LibraryService) {
	askService = ask
	libraryService = library
}

// SetProcessingWaiter wires the background processing drain used by
// commands that wait for uploads to finish.
func SetProcessingWaiter(w interface{ Wait() }) {
	processingWaiter = w
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
