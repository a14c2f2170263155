// Package journal keeps an optional SQLite log of control actions and
// launches.
package journal

import (
	"context"

	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation
type noopJournal struct{}

// Noop returns a journal that discards everything.
func Noop() Journal {
	return noopJournal{}
}

func NewService(cfg Config) (Journal, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If the journal is disabled, return a no-op journal
	if !cfg.Enabled {
		logger.Debug().Msg("Action journal disabled, using no-op journal")
		return Noop(), nil
	}

	repo, err := NewRepository(cfg, logger.New("journal"))
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to create journal repository")
		return nil, err
	}

	logger.Debug().
		Str("path", cfg.Path).
		Bool("enabled", cfg.Enabled).
		Msg("Action journal initialized successfully")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, entry *Entry) error {
	errFactory := errors.New()

	if entry == nil || entry.Action == "" {
		return errFactory.New(ErrInvalidEntry)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(entry); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.New().Wrap(ErrOperationTimeout, err)
	}

	return s.repo.Recent(limit)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*service) Enabled() bool {
	return true
}

func (noopJournal) Record(context.Context, *Entry) error {
	return nil
}

func (noopJournal) Recent(context.Context, int) ([]Entry, error) {
	return nil, nil
}

func (noopJournal) Close() error {
	return nil
}

func (noopJournal) Enabled() bool {
	return false
}
