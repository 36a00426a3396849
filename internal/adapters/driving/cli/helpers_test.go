package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// mockQueryService is a test double for the driving port.
type mockQueryService struct {
	result      domain.QueryResult
	taskResult  domain.QueryResult
	taskErr     error
	lastQuery   string
	lastHistory []domain.ChatMessage
	lastOpts    domain.QueryOptions
	lastDocID   string
	lastAction  string
}

func (m *mockQueryService) Process(
	_ context.Context, query string, history []domain.ChatMessage, opts domain.QueryOptions,
) domain.QueryResult {
	m.lastQuery = query
	m.lastHistory = history
	m.lastOpts = opts
	return m.result
}

func (m *mockQueryService) ProcessDocumentTask(
	_ context.Context, documentID, action string,
) (domain.QueryResult, error) {
	m.lastDocID = documentID
	m.lastAction = action
	return m.taskResult, m.taskErr
}

// executeCommand runs the root command with args and captures its output.
// Injected services are restored when the test finishes.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores package-level flag state between tests.
func resetFlags() {
	askDocumentID = ""
	askTopK = 0
	askJSON = false
	askInteractive = false
	taskJSON = false
	documentAddTitle = ""
	verbose = false
}

// withQueryService injects a query service double for the test's duration.
func withQueryService(t *testing.T, svc *mockQueryService) {
	t.Helper()
	original := queryService
	queryService = svc
	t.Cleanup(func() { queryService = original })
}
