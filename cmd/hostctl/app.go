package main

import (
	"codeberg.org/mutker/hostctl/internal/capability"
	"codeberg.org/mutker/hostctl/internal/config"
	"codeberg.org/mutker/hostctl/internal/control"
	"codeberg.org/mutker/hostctl/internal/executor"
	"codeberg.org/mutker/hostctl/internal/gpu"
	"codeberg.org/mutker/hostctl/internal/journal"
	"codeberg.org/mutker/hostctl/internal/launcher"
	"codeberg.org/mutker/hostctl/internal/observability"
	"codeberg.org/mutker/hostctl/internal/probe"
	"codeberg.org/mutker/hostctl/internal/telemetry"
)

// app holds the wired components shared by serve and doctor.
type app struct {
	registry   *capability.Registry
	prober     *probe.FileProber
	executor   *executor.Executor
	journal    journal.Journal
	gpu        gpu.Reader
	dispatcher *control.Dispatcher
	aggregator *telemetry.Aggregator
	launcher   *launcher.Launcher
}

func build(cfg *config.Config) (*app, error) {
	registry, err := capability.ForPlatform(cfg.Platform)
	if err != nil {
		return nil, err
	}

	observability.RegisterMetrics()

	probeOpts := []probe.Option{probe.WithTTL(cfg.Probe.CacheTTL)}
	var gpuReader gpu.Reader
	if cfg.GPU.NVML {
		gpuReader = gpu.New()
		probeOpts = append(probeOpts, probe.WithLibrary(gpu.LibraryName, gpuReader.Available))
	}
	prober := probe.New(probeOpts...)

	exec := executor.New(cfg.Executor.Timeout)

	journalCfg := journal.DefaultConfig()
	journalCfg.Enabled = cfg.Journal.Enabled
	journalCfg.Path = cfg.Journal.Path
	j, err := journal.NewService(journalCfg)
	if err != nil {
		return nil, err
	}

	telemetryOpts := []telemetry.Option{}
	if gpuReader != nil {
		telemetryOpts = append(telemetryOpts, telemetry.WithGPUReader(gpuReader))
	}

	return &app{
		registry: registry,
		prober:   prober,
		executor: exec,
		journal:  j,
		gpu:      gpuReader,
		dispatcher: control.New(registry, prober, exec,
			control.WithJournal(j),
			control.WithGraceDelay(cfg.Power.GraceDelay),
		),
		aggregator: telemetry.New(registry, prober, exec, telemetryOpts...),
		launcher:   launcher.New(cfg.Launch.Config, exec, cfg.Platform, launcher.WithJournal(j)),
	}, nil
}

func (a *app) close() {
	if a.gpu != nil {
		_ = a.gpu.Close()
	}
	_ = a.journal.Close()
}
