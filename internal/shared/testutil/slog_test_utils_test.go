package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records and levels", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg", slog.String("key", "value"))
		logger.Error("error msg", slog.Int("code", 500))

		assert.Equal(t, 3, logs.Count())
		assert.Len(t, logs.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.True(t, logs.ContainsMessage("info"))
		assert.True(t, logs.ContainsAttr("key", "value"))
		assert.True(t, logs.ContainsAttr("code", int64(500)))
	})

	t.Run("keeps attributes from With", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.With(slog.String("component", "export_service")).Info("workbook exported")

		r, ok := logs.Find("exported")
		require.True(t, ok)
		assert.Equal(t, "export_service", r.Attrs["component"])
	})

	t.Run("derived loggers share the buffer", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.WithGroup("request").Info("done", slog.String("method", "POST"))
		logger.Info("other")

		assert.Equal(t, 2, logs.Count())
		assert.True(t, logs.ContainsAttr("request.method", "POST"))
	})

	t.Run("clear", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.Info("one")
		logs.Clear()
		assert.Zero(t, logs.Count())
	})
}
