package gorm

import (
	"fmt"
	"strings"
	"time"

	gorm_logger "gorm.io/gorm/logger"

	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// NewGormLogger creates a gorm logger that writes through the package logger.
// Unknown levels default to SILENT.
func NewGormLogger(level string) gorm_logger.Interface {
	var gormLevel gorm_logger.LogLevel
	switch strings.ToUpper(level) {
	case "ERROR":
		gormLevel = gorm_logger.Error
	case "WARN":
		gormLevel = gorm_logger.Warn
	case "INFO", "DEBUG":
		gormLevel = gorm_logger.Info
	default:
		gormLevel = gorm_logger.Silent
	}

	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects gorm log output to the package logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements gorm_logger.Writer. SQL trace lines go to DEBUG, everything else to WARN.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if isSQLTrace(msg) {
		logger.Debugf("[GORM] %s", msg)
		return
	}
	logger.Warnf("[GORM] %s", msg)
}

func isSQLTrace(msg string) bool {
	if !strings.Contains(msg, "[") || !strings.Contains(msg, "]") {
		return false
	}
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.Contains(msg, verb) {
			return true
		}
	}
	return false
}
