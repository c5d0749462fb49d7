// Package logging configures logrus for hook processes.
//
// stdout and stderr belong to the host's hook protocol, so log output goes
// to a small rotating file next to the usage cache.
package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const FileName = "usage-gate.log"

// Setup points the standard logrus logger at dir/usage-gate.log. An unknown
// level falls back to warn. When dir cannot be created logging is discarded.
// The returned closer flushes the rotating file.
func Setup(dir, level string) io.Closer {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    1, // megabytes
		MaxBackups: 1,
		MaxAge:     7,
	}
	log.SetOutput(rotator)
	return rotator
}

// Discard silences logging, used by tests and the preview tool.
func Discard() {
	log.SetOutput(io.Discard)
}
