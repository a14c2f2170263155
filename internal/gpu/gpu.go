// Package gpu reads GPU utilization and temperature through NVML.
package gpu

import (
	"sync"

	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/logger"
)

// LibraryName is the provider name used when probing the library.
const LibraryName = "nvml"

type reader struct {
	ctrl nvmlController
	log  logger.Logger

	mu          sync.Mutex
	initialized bool
	failed      bool
	count       int
}

// New returns a Reader that initializes NVML lazily on first use.
func New() Reader {
	return newReader(newController())
}

func newReader(ctrl nvmlController) *reader {
	return &reader{ctrl: ctrl, log: logger.New("gpu")}
}

func (r *reader) init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	if r.initialized {
		return nil
	}
	// A failed load is not retried for the life of the process.
	if r.failed {
		return errFactory.New(ErrNotInitialized)
	}

	if err := r.ctrl.Initialize(); err != nil {
		r.failed = true
		r.log.Debug().Err(err).Msg("NVML unavailable")
		return err
	}

	count, err := r.ctrl.GetDeviceCount()
	if err != nil || count == 0 {
		r.failed = true
		if shutdownErr := r.ctrl.Shutdown(); shutdownErr != nil {
			r.log.Debug().Err(shutdownErr).Msg("NVML shutdown failed")
		}
		if err != nil {
			return err
		}
		return errFactory.New(ErrDeviceNotFound)
	}

	r.count = count
	r.initialized = true
	r.log.Debug().Int("devices", count).Msg("NVML initialized")

	return nil
}

func (r *reader) Available() bool {
	return r.init() == nil
}

// Utilization returns the busiest device's utilization percentage.
func (r *reader) Utilization() (float64, error) {
	return r.maxOver(r.ctrl.Utilization)
}

// Temperature returns the hottest device's core temperature.
func (r *reader) Temperature() (float64, error) {
	return r.maxOver(r.ctrl.Temperature)
}

func (r *reader) maxOver(read func(int) (uint32, error)) (float64, error) {
	if err := r.init(); err != nil {
		return 0, err
	}

	var (
		best    uint32
		lastErr error
		found   bool
	)
	for i := 0; i < r.count; i++ {
		v, err := read(i)
		if err != nil {
			lastErr = err
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	if !found {
		return 0, lastErr
	}

	return float64(best), nil
}

func (r *reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil
	}
	r.initialized = false

	return r.ctrl.Shutdown()
}
