// Package probe decides whether an external tool can be used right now.
package probe

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/hostctl/internal/capability"
)

// Result describes the availability of one provider.
type Result struct {
	Available bool
	Path      string
}

// Prober checks provider availability.
type Prober interface {
	Probe(p capability.Provider) Result
	// Locate returns the first existing candidate path.
	Locate(candidates []string) Result
}

// LibraryCheck reports whether an in-process library provider is usable.
type LibraryCheck func() bool

type entry struct {
	result  Result
	expires time.Time
}

// FileProber probes the filesystem and PATH. A zero TTL disables caching.
type FileProber struct {
	ttl       time.Duration
	libraries map[string]LibraryCheck
	now       func() time.Time
	lookPath  func(string) (string, error)

	mu    sync.Mutex
	cache map[string]entry
}

// Option configures a FileProber.
type Option func(*FileProber)

// WithTTL enables a short-lived result cache.
func WithTTL(ttl time.Duration) Option {
	return func(p *FileProber) {
		p.ttl = ttl
	}
}

// WithLibrary registers an availability check for a library provider.
func WithLibrary(name string, check LibraryCheck) Option {
	return func(p *FileProber) {
		p.libraries[name] = check
	}
}

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) Option {
	return func(p *FileProber) {
		p.now = now
	}
}

// New creates a FileProber.
func New(opts ...Option) *FileProber {
	p := &FileProber{
		libraries: make(map[string]LibraryCheck),
		now:       time.Now,
		lookPath:  exec.LookPath,
		cache:     make(map[string]entry),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe never fails: anything that is not positively found is unavailable.
func (p *FileProber) Probe(provider capability.Provider) Result {
	switch provider.Kind {
	case capability.KindShell:
		return Result{Available: true, Path: provider.Command}
	case capability.KindLibrary:
		check, ok := p.libraries[provider.Name]
		return Result{Available: ok && check(), Path: provider.Name}
	default:
		return p.cached(provider.Command, func() Result {
			return p.resolve(provider.Command)
		})
	}
}

func (p *FileProber) Locate(candidates []string) Result {
	for _, candidate := range candidates {
		if res := p.cached(candidate, func() Result { return p.resolve(candidate) }); res.Available {
			return res
		}
	}

	return Result{}
}

func (p *FileProber) resolve(command string) Result {
	if command == "" {
		return Result{}
	}

	if isPath(command) {
		info, err := os.Stat(command)
		if err != nil || !info.Mode().IsRegular() {
			return Result{Path: command}
		}

		return Result{Available: true, Path: command}
	}

	path, err := p.lookPath(command)
	if err != nil {
		return Result{Path: command}
	}

	return Result{Available: true, Path: path}
}

func (p *FileProber) cached(key string, compute func() Result) Result {
	if p.ttl <= 0 {
		return compute()
	}

	now := p.now()

	p.mu.Lock()
	if e, ok := p.cache[key]; ok && now.Before(e.expires) {
		p.mu.Unlock()
		return e.result
	}
	p.mu.Unlock()

	res := compute()

	p.mu.Lock()
	p.cache[key] = entry{result: res, expires: now.Add(p.ttl)}
	p.mu.Unlock()

	return res
}

// isPath treats both separators as path markers so Windows-style registry
// entries are recognised on any host.
func isPath(command string) bool {
	return filepath.IsAbs(command) || strings.ContainsAny(command, `/\`)
}
