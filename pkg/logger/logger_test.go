package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/pkg/logger"
)

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: logger.FormatJSON, Service: "billingd"},
		logger.WithOutput(&buf))

	log.Debug("hidden")
	log.Info("subscription renewed", logger.UserID("u-1"))

	out := buf.String()
	require.NotContains(t, out, "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[:strings.IndexByte(out, '\n')+1]), &record))
	assert.Equal(t, "subscription renewed", record["msg"])
	assert.Equal(t, "billingd", record["service"])
	assert.Equal(t, "u-1", record["user_id"])
}

func TestNewTextWithLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: logger.FormatText},
		logger.WithOutput(&buf))

	log.Debug("verbose detail")
	assert.Contains(t, buf.String(), "verbose detail")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "chatty"}, logger.WithOutput(&buf))

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(assert.AnError).Key)
}
