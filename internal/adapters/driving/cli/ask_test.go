package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_HasLimitFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "how many vacation days?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Vacation allowance is 25 days. [1]")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "[1] Employee Handbook")
}

func TestAskCmd_PassesRetrieveOptions(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := askService.(*mockAskService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "-n", "3", "--max-distance", "0.5", "-d", "doc-1", "--since", "24h", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
		askLimit = 0
		askMaxDistance = 0
		askDocuments = nil
		askSince = 0
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 3, mock.lastOpts.Limit)
	assert.Equal(t, 0.5, mock.lastOpts.MaxDistance)
	assert.Equal(t, []string{"doc-1"}, mock.lastOpts.DocumentIDs)
	require.NotNil(t, mock.lastOpts.CreatedAfter)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
		askJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"Text\"")
	assert.Contains(t, buf.String(), "\"Citations\"")
}

func TestAskCmd_EmptyLibraryHint(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	askService.(*mockAskService).answer = &domain.Answer{
		Text:         "The library contains no information that answers this question.",
		EmptyContext: &domain.EmptyContext{Type: domain.EmptyNoDocuments},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "anything?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The library is empty.")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	oldService := askService
	askService = nil
	defer func() { askService = oldService }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "question"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask service not configured")
}

func TestAskCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	askService.(*mockAskService).err = errors.New("question cannot be blank")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", " "})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}
