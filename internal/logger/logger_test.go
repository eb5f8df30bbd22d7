package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesErrorFile(t *testing.T) {
	dir := t.TempDir()
	log, closer, err := Setup(Config{Level: "debug", Dir: dir, ToFile: true, Format: "json"})
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	Named(log, "test").Info("hello")
	Named(log, "test").Error("boom")
	require.NoError(t, closer.Close())

	appLog, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(appLog), "hello")
	assert.Contains(t, string(appLog), `"logger":"test"`)

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "boom")
	assert.NotContains(t, string(errLog), "hello")
}

func TestSetupInvalidLevelFallsBack(t *testing.T) {
	log, closer, err := Setup(Config{Level: "loud"})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
