package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, FormatJSON).With(interfaces.F("run_id", "abc"))

	logger.Debug("hidden")
	logger.Warn("Cannot resolve JBR", interfaces.F("version", "11_0_10b1145.77"), interfaces.F("error", errors.New("404")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Cannot resolve JBR", record["msg"])
	assert.Equal(t, "abc", record["run_id"])
	assert.Equal(t, "11_0_10b1145.77", record["version"])
	assert.Equal(t, "404", record["error"])
	assert.NotEmpty(t, record["time"])
}

func TestSlogLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelDebug, FormatText).Debug("Probing channel", interfaces.F("channel", "eap"))

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="Probing channel"`)
	assert.Contains(t, buf.String(), "channel=eap")
}
