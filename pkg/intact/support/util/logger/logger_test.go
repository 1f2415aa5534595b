package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	logger.ConfigureWithWriter(logger.Options{Level: level, Format: "console"}, zapcore.AddSync(buf))
	t.Cleanup(func() { logger.Configure(logger.Options{Level: "INFO"}) })
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "WARN")

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	_ = logger.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "WARN")
}

func TestSetLogLevel(t *testing.T) {
	_ = capture(t, "INFO")

	logger.SetLogLevel("debug")
	assert.Equal(t, logger.LevelDebug, logger.GetLogLevel())

	logger.SetLogLevel("nonsense")
	assert.Equal(t, logger.LevelInfo, logger.GetLogLevel())
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.ConfigureWithWriter(logger.Options{Level: "DEBUG", Format: "json"}, zapcore.AddSync(buf))
	t.Cleanup(func() { logger.Configure(logger.Options{Level: "INFO"}) })

	logger.Debugf("synchronized %s", "EBI-1")
	_ = logger.Sync()

	assert.Contains(t, buf.String(), `"msg":"synchronized EBI-1"`)
}
