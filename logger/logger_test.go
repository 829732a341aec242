package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Enabled: true, Level: LevelWarn, Output: &buf})

	l.Info("deduction for table %s", "7100")
	l.Warn("settings file %s created with defaults", "income_details.json")

	out := buf.String()
	assert.NotContains(t, out, "deduction for table")
	assert.Contains(t, out, "settings file income_details.json created with defaults")
}

func TestDisabledLoggerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Enabled: false, Level: LevelDebug, Output: &buf})

	l.Error("remote call failed")

	assert.Empty(t, buf.String())
}

func TestConfigureReplacesDefault(t *testing.T) {
	previous := Default()
	defer SetDefault(previous)

	var buf bytes.Buffer
	Configure(Config{Enabled: true, Level: LevelDebug, Output: &buf})
	Debug("GET %s", "https://tax.example.test")

	assert.Contains(t, buf.String(), "GET https://tax.example.test")
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, LevelDebug, LevelFromString("DEBUG"))
	assert.Equal(t, LevelNone, LevelFromString("NONE"))
	assert.Equal(t, LevelInfo, LevelFromString("verbose"))
	assert.Equal(t, "WARN", LevelWarn.String())
}
