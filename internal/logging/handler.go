package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log outputs.
type Options struct {
	// Verbose lowers the console level to debug.
	Verbose bool
	// File, when set, receives a JSON copy of every record at debug level,
	// rotated by size.
	File string
	// Console defaults to os.Stderr.
	Console io.Writer
}

// NewSlog builds the process logger: a tint console handler, plus a rotating
// JSON file handler when opts.File is set. The returned closer releases the
// log file and is never nil.
func NewSlog(opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	noColor := true
	if f, ok := console.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	handlers := []slog.Handler{
		tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    noColor,
		}),
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		logFile := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // MB
			MaxBackups: 3,
			MaxAge:     30, // days
		}
		closer = logFile
		handlers = append(handlers, slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
