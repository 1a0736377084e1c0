package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(WithOutput(&buf), WithLevel(LevelWarn))

	log.Debug("TEST", "hidden debug")
	log.Info("TEST", "hidden info")
	log.Warn("TEST", "visible warn")
	log.Error("TEST", "visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN ] [TEST] visible warn")
	assert.Contains(t, out, "[ERROR] [TEST] visible error")
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(WithOutput(&buf), WithLevel(LevelDebug))

	log.LogBooking("CREATE", 42, "ground 1 on 2025-11-05")
	log.LogDatabase("INSERT", "mysql", "booking saved")
	log.LogKafka("PUBLISH", "booking-created", "sent")
	log.LogSecurity("AUTH_FAILED", "bad token")

	out := buf.String()
	assert.Contains(t, out, "[BOOKING] CREATE #42 ground 1 on 2025-11-05")
	assert.Contains(t, out, "[DB:mysql] INSERT booking saved")
	assert.Contains(t, out, "[KAFKA:booking-created] PUBLISH sent")
	assert.Contains(t, out, "[SECURITY] AUTH_FAILED bad token")
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	log := NewLogger(WithOutput(&buf), WithExit(func(c int) { code = c }))

	log.Fatal("STARTUP", "cannot continue")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "[FATAL] [STARTUP] cannot continue")
}

func TestFileMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	var buf bytes.Buffer
	log := NewLogger(WithOutput(&buf), WithFile(path))

	log.Info("SYSTEM", "to both")
	require.NoError(t, log.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[SYSTEM] to both")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
