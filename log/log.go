// Package log wraps logrus. Nothing is written unless logs.write is set or a test installs a writer.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var enabled bool

// Setup opens today's log file under the logs directory.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")

	f, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		enabled = false
		return fmt.Errorf("open log file: %w", err)
	}

	configure(f, viper.GetBool(key.LogsJson), viper.GetString(key.LogsLevel))
	return nil
}

// SetupWriter routes logs to w regardless of the logs.write setting.
func SetupWriter(w io.Writer, level string) {
	enabled = true
	configure(w, false, level)
}

func configure(w io.Writer, json bool, level string) {
	logrus.SetOutput(w)

	var formatter logrus.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	if json {
		formatter = &logrus.JSONFormatter{}
	}
	logrus.SetFormatter(formatter)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// Logger tags every entry with a "component" field.
type Logger struct {
	component string
}

func For(component string) Logger {
	return Logger{component: component}
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// With returns an entry carrying the component field plus fields.
func (l Logger) With(fields map[string]any) *logrus.Entry {
	if !enabled {
		return logrus.NewEntry(discard)
	}
	return logrus.WithField("component", l.component).WithFields(fields)
}

func (l Logger) logf(level logrus.Level, format string, args []any) {
	if enabled {
		logrus.WithField("component", l.component).Logf(level, format, args...)
	}
}

func (l Logger) Errorf(format string, args ...any) { l.logf(logrus.ErrorLevel, format, args) }
func (l Logger) Warnf(format string, args ...any)  { l.logf(logrus.WarnLevel, format, args) }
func (l Logger) Infof(format string, args ...any)  { l.logf(logrus.InfoLevel, format, args) }
func (l Logger) Debugf(format string, args ...any) { l.logf(logrus.DebugLevel, format, args) }
func (l Logger) Tracef(format string, args ...any) { l.logf(logrus.TraceLevel, format, args) }

// Error logs without a component.
func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

// Warnf logs without a component.
func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}
