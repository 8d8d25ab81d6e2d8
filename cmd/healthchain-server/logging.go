package main

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"

	"github.com/healthchain/portal/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func bootstrapLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// newLogger builds the process logger. Development gets a console writer on
// out; LOG_FILE adds a rotated JSON file. The returned closer flushes the
// file writer.
func newLogger(cfg *config.Config, out io.Writer) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	console := out
	if cfg.IsDev() {
		console = zerolog.ConsoleWriter{Out: out}
	}
	writers := []io.Writer{console}

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown LOG_LEVEL, using info")
	}
	return logger, closer
}
