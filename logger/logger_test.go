package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/amp-labs/litecollections/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsesInjectedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	injected := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithLogger(t.Context(), injected)
	ctx = WithSubsystem(ctx, "sortedset")
	ctx = With(ctx, "table", "data")

	Get(ctx).Debug("executing", "query", "SELECT 1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "executing", record["msg"])
	assert.Equal(t, "sortedset", record["subsystem"])
	assert.Equal(t, "data", record["table"])
	assert.Equal(t, "SELECT 1", record["query"])
}

func TestMuted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := WithLogger(t.Context(), slog.New(slog.NewTextHandler(&buf, nil)))
	ctx = WithMuted(ctx, true)

	Get(ctx).Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestWithNoValuesKeepsContext(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	assert.Equal(t, ctx, With(ctx))
}

func TestConfigureLogging(t *testing.T) { //nolint:paralleltest
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := envutil.WithEnvOverrides(t.Context(), map[string]string{
		"LOG_JSON":   "true",
		"LOG_LEVEL":  "debug",
		"LOG_OUTPUT": "stderr",
	})

	var buf bytes.Buffer

	logger, err := ConfigureLogging(ctx, "litecollections-test", func(o *Options) {
		o.Output = &buf
	})
	require.NoError(t, err)

	logger.Debug("configured")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Equal(t, "litecollections-test", GetSubsystem(t.Context()))

	bad := envutil.WithEnvOverride(t.Context(), "LOG_OUTPUT", "nowhere")
	_, err = ConfigureLogging(bad, "x")
	require.ErrorIs(t, err, ErrInvalidLogOutput)
}
