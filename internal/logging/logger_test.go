package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DevelopmentIsDebugText(t *testing.T) {
	logger := New("todo", "development", "")

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNew_ProductionIsInfoJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "todo", "production", "")
	logger.WithField("k", "v").Info("hello")

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "v", entry["k"])
}

func TestNew_ExplicitLevelWins(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, New("todo", "development", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("todo", "production", "bogus").GetLevel())
}

func TestLogError_AddsErrorField(t *testing.T) {
	logger, hook := test.NewNullLogger()

	LogError(logger, "boom", errors.New("db down"), logrus.Fields{"op": "save"})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "db down", entry.Data["error"])
	assert.Equal(t, "save", entry.Data["op"])
}

func TestLogError_NilFields(t *testing.T) {
	logger, hook := test.NewNullLogger()

	LogError(logger, "boom", nil, nil)

	require.Len(t, hook.Entries, 1)
	_, ok := hook.LastEntry().Data["error"]
	assert.False(t, ok)
}
