package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level     string
	Dir       string
	ToConsole bool
	ToFile    bool
	UseColors bool
	Format    string // "text" or "json"
}

// Setup builds the root logger. The returned closer releases any log files
// and must be closed on shutdown.
func Setup(cfg Config) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	closers := multiCloser{}

	level, levelErr := logrus.ParseLevel(cfg.Level)
	if levelErr != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(newFormatter(cfg.Format, cfg.UseColors))

	var writers []io.Writer
	if cfg.ToConsole {
		writers = append(writers, os.Stdout)
	}
	if cfg.ToFile {
		if cfg.Dir == "" {
			cfg.Dir = "logs"
		}
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		appLog, err := openLogFile(filepath.Join(cfg.Dir, "app.log"))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, appLog)
		writers = append(writers, appLog)

		errLog, err := openLogFile(filepath.Join(cfg.Dir, "error.log"))
		if err != nil {
			_ = closers.Close()
			return nil, nil, err
		}
		closers = append(closers, errLog)
		log.AddHook(&errorFileHook{
			writer:    errLog,
			formatter: &logrus.JSONFormatter{},
		})
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}

	if levelErr != nil {
		log.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.Level, level.String())
	}
	return log, closers, nil
}

// Named returns an entry tagged with the module it logs for.
func Named(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("logger", name)
}

func newFormatter(format string, colors bool) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     colors,
		DisableColors:   !colors,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// errorFileHook copies error-and-above entries into a dedicated file.
type errorFileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *errorFileHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

func (h *errorFileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
