// Package logger points the standard logger at a rotating log file.
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds log file configuration. An empty Path keeps logging on the
// console writer passed to Setup.
type Config struct {
	Path       string `yaml:"path" json:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"maxSizeMB"`
	MaxBackups int    `yaml:"max_backups" json:"maxBackups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"maxAgeDays"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 7
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the standard logger. With a Path set, output rotates
// through lumberjack and is mirrored to console when console is non-nil.
// Without a Path, output goes to console, or is discarded when console is nil.
// The returned closer releases the log file.
func Setup(cfg Config, console io.Writer) (io.Closer, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if cfg.Path == "" {
		if console == nil {
			console = io.Discard
		}
		log.SetOutput(console)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, err
	}

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = defaultMaxSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = defaultMaxBackups
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = defaultMaxAgeDays
	}

	file := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	var out io.Writer = file
	if console != nil {
		out = io.MultiWriter(file, console)
	}
	log.SetOutput(out)
	log.Printf("[logger] writing to %s (max %d MB x %d)", cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups)
	return file, nil
}
