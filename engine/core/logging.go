package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "Content 📦 ",
				})
				l.SetLevel(log.InfoLevel)
				// the helpers below add one frame
				l.SetCallerOffset(1)
				singleton = &logger{l}
			})
	}
	return singleton
}

// Logger exposes the shared logger for callers that want structured fields.
func Logger() *log.Logger {
	return getLogger().Logger
}

// SetLogLevel parses a level name ("debug", "info", "warn", "error") and applies it.
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// DebugEnabled reports whether debug messages are logged.
func DebugEnabled() bool {
	return getLogger().GetLevel() <= log.DebugLevel
}

// SetLogOutput redirects the shared logger, mostly for tests.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
