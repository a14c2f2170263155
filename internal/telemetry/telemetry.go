// Package telemetry builds point-in-time host snapshots from ordered
// fallback chains of measurement strategies.
package telemetry

import (
	"context"
	stderrors "errors"
	"math"
	"time"

	"codeberg.org/mutker/hostctl/internal/capability"
	"codeberg.org/mutker/hostctl/internal/executor"
	"codeberg.org/mutker/hostctl/internal/gpu"
	"codeberg.org/mutker/hostctl/internal/logger"
	"codeberg.org/mutker/hostctl/internal/observability"
	"codeberg.org/mutker/hostctl/internal/probe"
)

// Aggregator produces Snapshots. It never fails.
type Aggregator struct {
	registry *capability.Registry
	prober   probe.Prober
	runner   executor.Runner
	host     HostStats
	gpu      gpu.Reader
	log      logger.Logger
}

type Option func(*Aggregator)

// WithHostStats sets the in-process fallback source. Nil disables it.
func WithHostStats(host HostStats) Option {
	return func(a *Aggregator) {
		a.host = host
	}
}

// WithGPUReader enables the vendor library strategy for GPU metrics.
func WithGPUReader(reader gpu.Reader) Option {
	return func(a *Aggregator) {
		a.gpu = reader
	}
}

func New(registry *capability.Registry, prober probe.Prober, runner executor.Runner, opts ...Option) *Aggregator {
	a := &Aggregator{
		registry: registry,
		prober:   prober,
		runner:   runner,
		host:     NewHostStats(),
		log:      logger.New("telemetry"),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Snapshot measures every metric in turn. Commands run detached from ctx
// cancellation and are bounded by the executor timeout.
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	snap := EmptySnapshot()
	snap.CPUUsage = a.measure(ctx, MetricCPUUsage, a.cpuUsageChain())
	snap.CPUTemp = a.measure(ctx, MetricCPUTemp, a.cpuTempChain())

	vendorPath := a.prober.Locate(a.registry.VendorPaths)
	snap.GPUUsage = a.measure(ctx, MetricGPUUsage, a.gpuUsageChain(vendorPath))
	snap.GPUTemp = a.measure(ctx, MetricGPUTemp, a.gpuTempChain(vendorPath))

	snap.RAMUsage = a.measure(ctx, MetricRAMUsage, a.ramUsageChain())
	snap.BatteryLevel = a.measure(ctx, MetricBatteryLevel, a.batteryChain())

	a.log.Debug().Dur("duration", time.Since(start)).Msg("telemetry snapshot")

	return snap
}

// measure runs the chain until a strategy yields a value. Strategies whose
// trigger does not hold are recorded as skipped.
func (a *Aggregator) measure(ctx context.Context, metric string, chain []Strategy) float64 {
	prior := make([]error, 0, len(chain))

	for _, s := range chain {
		if s.When != nil && !s.When(prior) {
			prior = append(prior, errSkipped)
			continue
		}

		v, err := s.Read(ctx)
		if err == nil && !math.IsNaN(v) {
			observability.RecordMetricAvailability(metric, true)
			return round1(v)
		}
		if err == nil {
			err = errNoReading
		}
		if !stderrors.Is(err, errNoProvider) {
			a.log.Debug().Str("metric", metric).Str("strategy", s.Name).Err(err).Msg("strategy failed")
		}
		prior = append(prior, err)
	}

	observability.RecordMetricAvailability(metric, false)

	return Unavailable
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
