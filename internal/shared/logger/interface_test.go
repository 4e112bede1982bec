package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingLogger() (Interface, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLoggerWithSlog(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithCarriesAttributes(t *testing.T) {
	log, buf := recordingLogger()

	log.With("validator", "ldap").Warn("authority unreachable")

	entry := lastEntry(t, buf)
	assert.Equal(t, "ldap", entry["validator"])
	assert.Equal(t, "authority unreachable", entry["msg"])
}

func TestNamedTagsEntries(t *testing.T) {
	log, buf := recordingLogger()

	log.Named("sessions").Info("session created", "user", "colon")

	entry := lastEntry(t, buf)
	assert.Equal(t, "sessions", entry["logger"])
	assert.Equal(t, "colon", entry["user"])
}
