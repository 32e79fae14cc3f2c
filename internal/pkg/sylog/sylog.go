// Package sylog provides the leveled logger used throughout the runtime and
// the config generator pipeline. The call surface (Debugf/Verbosef/Infof/
// Warningf/Errorf/Fatalf) matches every import site in this tree; the level
// threshold is controlled by the SYLOG_LEVEL env var (any level name
// logrus.ParseLevel accepts: panic|fatal|error|warn|info|debug|trace),
// defaulting to "info" when unset or unrecognized. There is no separate
// "verbose" level; Verbosef logs at info.
package sylog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})

	level := logrus.InfoLevel
	if lvl, err := logrus.ParseLevel(os.Getenv("SYLOG_LEVEL")); err == nil {
		level = lvl
	}
	l.SetLevel(level)
	return l
}

// Debugf logs a debug-level message.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Verbosef logs a verbose (info-adjacent) message. Mapped to logrus'
// InfoLevel since logrus has no distinct "verbose" tier.
func Verbosef(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Infof logs an info-level message.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warningf logs a warning-level message.
func Warningf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs an error-level message. It does not exit.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatalf logs a fatal-level message then exits the process with status 1.
// Callers on paths that must perform cleanup before exiting should log via
// Errorf and drive the exit through their own cleanup path instead.
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}
