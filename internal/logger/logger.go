package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

// Initialize sets up the global logger with the specified level and format ("text" or "json").
func Initialize(level, format string) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	defaultLogger = l
}

// Get returns the default logger
func Get() *logrus.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

// SetOutput redirects the default logger, mostly for tests.
func SetOutput(w io.Writer) {
	Get().SetOutput(w)
}

// WithService returns a logger with service name attached
func WithService(serviceName string) *logrus.Entry {
	return Get().WithField("service", serviceName)
}

// WithFields returns a logger carrying the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

func Debug(msg string, args ...any) { Get().WithFields(toFields(args)).Debug(msg) }
func Info(msg string, args ...any)  { Get().WithFields(toFields(args)).Info(msg) }
func Warn(msg string, args ...any)  { Get().WithFields(toFields(args)).Warn(msg) }
func Error(msg string, args ...any) { Get().WithFields(toFields(args)).Error(msg) }

// toFields turns alternating key/value args into logrus fields. A trailing key without
// a value is kept under "!BADKEY".
func toFields(args []any) logrus.Fields {
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if i+1 >= len(args) {
			fields["!BADKEY"] = key
			break
		}
		fields[key] = args[i+1]
	}
	return fields
}
