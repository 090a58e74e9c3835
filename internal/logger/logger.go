package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rpattn/leadcrm/internal/config"
)

// TimestampFormat is shared by every formatter the service configures.
const TimestampFormat = "2006-01-02 15:04:05.000"

// New builds a logrus logger from configuration. The returned closer flushes
// the rotating file writer, if any.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("Invalid log level '%s', using 'info' as default", cfg.Level)
	}
	log.SetLevel(level)

	formatter, err := newFormatter(cfg.Format)
	if err != nil {
		return nil, nil, err
	}
	log.SetFormatter(formatter)
	log.SetReportCaller(cfg.Caller)

	out, closer, err := newOutput(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(out)

	return log, closer, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		}, nil
	case "text":
		return &logrus.TextFormatter{
			TimestampFormat: TimestampFormat,
			FullTimestamp:   true,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newOutput(cfg config.LogConfig) (io.Writer, io.Closer, error) {
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		return os.Stdout, nopCloser{}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("log output is file but no file path is configured")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rolling := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		// Debug level mirrors file output to the console.
		if strings.EqualFold(cfg.Level, "debug") {
			return io.MultiWriter(os.Stdout, rolling), rolling, nil
		}
		return rolling, rolling, nil
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
}
