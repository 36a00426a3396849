package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer resetLogger()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("query %q classified", "summarize this")

	assert.Equal(t, "[DEBUG] query \"summarize this\" classified\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("should not appear")

	assert.Empty(t, buf.String())
}

func TestInfoAndWarn_WhenVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("intent %s", "ANSWER")
	Warn("semantic search failed")

	assert.Contains(t, buf.String(), "[INFO] intent ANSWER\n")
	assert.Contains(t, buf.String(), "[WARN] semantic search failed\n")
}

func TestSection_WhenVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Query Execution")

	assert.Equal(t, "\n=== Query Execution ===\n", buf.String())
}

func TestError_AlwaysPrinted(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Error("provider unreachable: %v", "timeout")

	assert.Equal(t, "[ERROR] provider unreachable: timeout\n", buf.String())
}
