package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]any{"api_key", "sk-123", "learner_id", "ada", "item_id", "q1", "dangling"})
	require.Len(t, out, 7)
	assert.Equal(t, "[REDACTED]", out[1])
	assert.Contains(t, out[3], "hash:")
	assert.NotEqual(t, "ada", out[3])
	assert.Equal(t, "q1", out[5])
	assert.Equal(t, "dangling", out[6])
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("session_id", "s-1").Warn("commit failed", "points", 70)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "commit failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "s-1", fields["session_id"])
	assert.EqualValues(t, 70, fields["points"])
}

func TestTokenCountsNotRedacted(t *testing.T) {
	out := sanitizeKVs([]any{"input_tokens", 12, "refresh_token", "abc"})
	assert.Equal(t, 12, out[1])
	assert.Equal(t, "[REDACTED]", out[3])
}

func TestHashValueStable(t *testing.T) {
	assert.Equal(t, hashValue("ada"), hashValue("ada"))
	assert.Equal(t, "", hashValue(""))
}
