package logging

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the process-wide logger, creating it on first use.
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "ragdoll",
			Level:           log.InfoLevel,
		})
	})
	return singleton
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies it.
// Unknown names leave the level unchanged and return the parse error.
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger().SetLevel(lvl)
	return nil
}

func Debugf(msg string, args ...interface{}) {
	Logger().Debugf(msg, args...)
}

func Infof(msg string, args ...interface{}) {
	Logger().Infof(msg, args...)
}

func Warnf(msg string, args ...interface{}) {
	Logger().Warnf(msg, args...)
}

func Errorf(msg string, args ...interface{}) {
	Logger().Errorf(msg, args...)
}
