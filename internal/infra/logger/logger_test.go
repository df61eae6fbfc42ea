package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"retail_reminder_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	configure(l, &buf, &config.AppConfig{LogLevel: "debug", Environment: "production"})

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.WithField("policy", "debt").Info("Reminder tick completed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debt", line["policy"])
	assert.Equal(t, "Reminder tick completed", line["msg"])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	configure(l, &buf, &config.AppConfig{LogLevel: "chatty", Environment: "development"})

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
	_, isText := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}
