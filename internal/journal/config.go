package journal

import (
	"time"

	"codeberg.org/mutker/hostctl/internal/errors"
)

const (
	defaultDirPerm       = 0o755
	defaultPath          = "hostctl-journal.db"
	defaultBatchSize     = 16
	defaultFlushInterval = 5 * time.Second
)

type Config struct {
	Path          string
	Enabled       bool
	BatchSize     int
	FlushInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Path:          defaultPath,
		Enabled:       false, // Disabled by default
		BatchSize:     defaultBatchSize,
		FlushInterval: defaultFlushInterval,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate Path if the journal is enabled
	if c.Enabled && c.Path == "" {
		return errFactory.New(ErrInvalidPath)
	}
	if c.BatchSize < 0 || c.FlushInterval < 0 {
		return errFactory.WithData(ErrInvalidConfig, "batch size and flush interval must not be negative")
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
