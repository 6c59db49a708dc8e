package logging

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerSingleton(t *testing.T) {
	a := NewLogger("test-singleton")
	b := NewLogger("test-singleton")
	assert.Same(t, a, b, "same component should return the same entry")

	c := NewLogger("test-other")
	assert.NotSame(t, a, c)
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "channel full",
		Data: logrus.Fields{
			"component": "stream",
			"path":      "/tmp/x",
			"dropped":   1,
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "2024-03-01 12:30:00")
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "[stream]")
	assert.Contains(t, line, "channel full")
	// Fields render in sorted order after the message.
	assert.Regexp(t, `dropped=1 path=/tmp/x\n$`, line)
}

func TestTextFormatterSimple(t *testing.T) {
	f := &TextFormatter{DisableTimestamp: true, DisableComponent: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "started",
		Data:    logrus.Fields{"component": "stream"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[INFO] started\n", string(out))
}
