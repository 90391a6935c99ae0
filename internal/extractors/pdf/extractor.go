// Package pdf extracts text from PDF documents by shelling out to the
// pdftotext utility from poppler.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes an external command and returns its stdout.
// Extracted as an interface so tests can run without poppler installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct {
	runner CommandRunner
}

// Option configures the extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner, for testing.
func WithRunner(r CommandRunner) Option {
	return func(e *Extractor) {
		e.runner = r
	}
}

// New creates a new PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentTypes returns the content types this extractor handles.
func (e *Extractor) ContentTypes() []string {
	return []string{"application/pdf"}
}

// Extract writes the PDF to a temporary file and converts it with
// pdftotext, reading the text from stdout.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyDocument
	}

	tmp, err := os.CreateTemp("", "veridoc-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", domain.ErrExtraction, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: write temp file: %v", domain.ErrExtraction, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close temp file: %v", domain.ErrExtraction, err)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", "-nopgbrk", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// CheckAvailable reports whether pdftotext can be found in PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires the pdftotext utility from poppler:

  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}
