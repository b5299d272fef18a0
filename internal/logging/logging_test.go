package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWithOperation_TagsRecords(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "debug")

	ctx := WithOperation(context.Background(), base, "transfer")
	FromContext(ctx).Info("done", slog.String("account_id", "a-1"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "transfer", rec["operation"])
	assert.Equal(t, "a-1", rec["account_id"])
	assert.NotEmpty(t, rec["operation_id"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
