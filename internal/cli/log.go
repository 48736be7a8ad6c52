package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/boardtex/internal/config"
)

// newLogger returns the CLI logger: timestamps as "15:04:05.00", no caller.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logWriter tees w into the configured log file. The file rotates once it
// reaches cfg.MaxSizeMB; old files are pruned by count and age.
func logWriter(w io.Writer, cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return w
	}
	return io.MultiWriter(w, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
}

// progress times one command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info with the elapsed time as "duration".
func (p *progress) done(msg string) {
	p.logger.Info(msg, "duration", time.Since(p.start).Round(time.Millisecond))
}
