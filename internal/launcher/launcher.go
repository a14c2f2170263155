// Package launcher starts operator-configured applications.
package launcher

import (
	"context"
	"time"

	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/executor"
	"codeberg.org/mutker/hostctl/internal/journal"
	"codeberg.org/mutker/hostctl/internal/logger"
)

// Launcher reads its catalog fresh on every call.
type Launcher struct {
	path    string
	spawner executor.Spawner
	goos    string
	journal journal.Journal
	log     logger.Logger
}

type Option func(*Launcher)

// WithJournal records every launch attempt.
func WithJournal(j journal.Journal) Option {
	return func(l *Launcher) {
		l.journal = j
	}
}

func New(path string, spawner executor.Spawner, goos string, opts ...Option) *Launcher {
	l := &Launcher{
		path:    path,
		spawner: spawner,
		goos:    goos,
		journal: journal.Noop(),
		log:     logger.New("launcher"),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// List returns every configured target's id, label and icon.
func (l *Launcher) List() ([]Entry, error) {
	catalog, err := Load(l.path)
	if err != nil {
		return nil, err
	}

	return catalog.Entries(), nil
}

// Launch starts the target with the given id. Every attempt is journaled
// as "launch:<id>".
func (l *Launcher) Launch(ctx context.Context, id string) error {
	start := time.Now()
	err := l.launch(id)
	l.record(ctx, id, start, err)

	return err
}

func (l *Launcher) launch(id string) error {
	errFactory := errors.New()

	catalog, err := Load(l.path)
	if err != nil {
		return err
	}

	target, ok := catalog[id]
	if !ok {
		return errFactory.WithMessage(errors.ErrResourceNotFound, "unknown app id")
	}
	if target.Command.IsZero() {
		return errFactory.WithData(errors.ErrInvalidConfig, "target "+id+" has no command")
	}

	argv := Argv(target, l.goos)
	if err := l.spawner.Spawn(argv); err != nil {
		l.log.Warn().Str("id", id).Err(err).Msg("Launch failed")
		return errFactory.Wrap(errors.ErrExecutionFailed, err)
	}

	l.log.Info().Str("id", id).Str("mode", string(target.Mode)).Msg("Launched target")

	return nil
}

func (l *Launcher) record(ctx context.Context, id string, start time.Time, err error) {
	entry := &journal.Entry{
		Time:     start,
		Action:   "launch:" + id,
		OK:       err == nil,
		Kind:     string(errors.KindOf(err)),
		Duration: time.Since(start),
	}
	if err != nil {
		entry.Message = err.Error()
	}
	if jerr := l.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
		l.log.Warn().Err(jerr).Str("id", id).Msg("Failed to journal launch")
	}
}

// Argv renders how a target is started on goos. Shell strings come only
// from the operator's catalog.
func Argv(t Target, goos string) []string {
	if t.Mode == ModeOpen {
		location := t.Command.Line
		if t.Command.IsArgv() {
			location = t.Command.Argv[0]
		}
		return openArgv(location, goos)
	}

	if t.Command.IsArgv() {
		return append([]string(nil), t.Command.Argv...)
	}

	return shellArgv(t.Command.Line, goos)
}

func openArgv(location, goos string) []string {
	switch goos {
	case "windows":
		return []string{"cmd", "/c", "start", "", location}
	case "darwin":
		return []string{"open", location}
	default:
		return []string{"xdg-open", location}
	}
}

func shellArgv(line, goos string) []string {
	if goos == "windows" {
		return []string{"cmd", "/C", line}
	}

	return []string{"sh", "-c", line}
}
