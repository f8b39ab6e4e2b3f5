package llmobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/logger"
)

type echoPrompter struct {
	err error
}

func (e echoPrompter) Prompt(ctx context.Context, text, model string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return model + ": " + text, nil
}

func initLogFile(t *testing.T, detailed bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llm.log")
	require.NoError(t, logger.InitWithConfig(logger.LogConfig{
		Level:           "DEBUG",
		Format:          "json",
		Output:          path,
		DetailedLogging: detailed,
	}))
	t.Cleanup(func() {
		_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Output: "stderr"})
	})
	return path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	_ = logger.Sync()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestPromptLogsTextOnlyInDetailedMode(t *testing.T) {
	path := initLogFile(t, true)
	reply, err := Wrap(echoPrompter{}).Prompt(context.Background(), "is INFY a buy?", "openrouter/auto")
	require.NoError(t, err)
	assert.Equal(t, "openrouter/auto: is INFY a buy?", reply)
	out := readLog(t, path)
	assert.Contains(t, out, `"prompt":"is INFY a buy?"`)
	assert.Contains(t, out, "Prompt answered")

	path = initLogFile(t, false)
	_, err = Wrap(echoPrompter{}).Prompt(context.Background(), "is INFY a buy?", "openrouter/auto")
	require.NoError(t, err)
	out = readLog(t, path)
	assert.Contains(t, out, `"prompt_chars":14`)
	assert.NotContains(t, out, `"prompt":`)
}

func TestPromptPassesErrorsThrough(t *testing.T) {
	boom := errors.New("upstream down")
	_, err := Wrap(echoPrompter{err: boom}).Prompt(context.Background(), "hi", "m")
	assert.ErrorIs(t, err, boom)
}
