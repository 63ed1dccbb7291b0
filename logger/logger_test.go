package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.value))
		})
	}
}

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{ServiceName: "railtrace-test", Output: &buf})

	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "railtrace-test", entry["service"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestWithFieldsAttachesToContext(t *testing.T) {
	var buf bytes.Buffer
	Set(New(Options{ServiceName: "railtrace-test", Output: &buf}))
	defer Set(zerolog.Nop())

	ctx := WithFields(context.Background(), map[string]any{"request_id": "req-1"})
	FromContext(ctx).Info().Msg("scoped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
}

func TestFromContextFallsBackToBase(t *testing.T) {
	var buf bytes.Buffer
	Set(New(Options{ServiceName: "fallback", Output: &buf}))
	defer Set(zerolog.Nop())

	FromContext(context.Background()).Warn().Msg("base")

	assert.Contains(t, buf.String(), `"service":"fallback"`)
}
