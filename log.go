package wiimote

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface shared by the host, its transports and the CLI.
// Packages derive tagged loggers from it with ChildLogger.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})

	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	ChildLogger(tags map[string]interface{}) Logger
}

var (
	loggerMu sync.Mutex
	logger   Logger
)

// SetLogger replaces the module logger. Loggers already derived with
// ChildLogger keep writing to the old one.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the module logger, building the logrus default on first use.
func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = newLogrusLogger(os.Stderr)
	}
	return logger
}

// SetLogLevelMax turns on trace output for the default logger.
func SetLogLevelMax() {
	SetLogLevel(logrus.TraceLevel)
}

// SetLogLevel sets the level of the default logger.
func SetLogLevel(lvl logrus.Level) {
	l := GetLogger()
	lg, ok := l.(*logrusLogger)
	if !ok {
		l.Warnf("custom logger installed, level %v not applied", lvl)
		return
	}
	lg.Logger.SetLevel(lvl)
}

// SetLogLevelName parses a level name such as "debug" and applies it.
func SetLogLevelName(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return errors.Wrapf(err, "log level %q", name)
	}
	SetLogLevel(lvl)
	return nil
}

// logrusLogger writes text lines without timestamps, level info by default.
type logrusLogger struct {
	*logrus.Entry
}

func newLogrusLogger(w io.Writer) *logrusLogger {
	l := logrus.New()
	l.Out = w
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	l.Level = logrus.InfoLevel
	return &logrusLogger{Entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) ChildLogger(tags map[string]interface{}) Logger {
	return &logrusLogger{Entry: l.Entry.WithFields(tags)}
}
