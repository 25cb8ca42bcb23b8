// Package logging builds the logrus logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/config"
)

// Level maps a settings level name onto logrus. "critical" maps to
// ErrorLevel; nothing in this module logs at Fatal or Panic.
func Level(name string) (logrus.Level, error) {
	n, err := config.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, err
	}
	switch n {
	case "debug":
		return logrus.DebugLevel, nil
	case "warning":
		return logrus.WarnLevel, nil
	case "error", "critical":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, nil
	}
}

// New returns a logger writing to stderr at the console level and, when a
// log file is configured, appending to it at the file level. The returned
// closer releases the log file.
func New(s config.LoggerSettings) (*logrus.Logger, io.Closer, error) {
	consoleLevel, err := Level(s.LevelConsole)
	if err != nil {
		return nil, nil, err
	}

	formatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetFormatter(formatter)
	log.AddHook(&writerHook{w: os.Stderr, levels: levelsUpTo(consoleLevel), formatter: formatter})
	maxLevel := consoleLevel

	var closer io.Closer = nopCloser{}
	if s.File != "" {
		fileLevel, err := Level(s.LevelFile)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", s.File, err)
		}
		plain := &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableSorting:  true,
		}
		log.AddHook(&writerHook{w: f, levels: levelsUpTo(fileLevel), formatter: plain})
		if fileLevel > maxLevel {
			maxLevel = fileLevel
		}
		closer = f
	}
	log.SetLevel(maxLevel)
	return log, closer, nil
}

// Discard returns a logger that drops everything, for tests and library
// callers that do not care about findings output.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writerHook sends entries at the given levels to w.
type writerHook struct {
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level { return h.levels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

func levelsUpTo(limit logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= limit {
			out = append(out, l)
		}
	}
	return out
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
