package telemetry

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"codeberg.org/mutker/hostctl/internal/capability"
	"codeberg.org/mutker/hostctl/internal/parse"
	"codeberg.org/mutker/hostctl/internal/probe"
)

// query runs the first available provider for c and returns its stdout.
func (a *Aggregator) query(ctx context.Context, c capability.Capability, path string) (string, error) {
	for _, p := range a.registry.Lookup(c) {
		argv := p.Argv(nil)
		if p.Kind == capability.KindVendor {
			if path == "" {
				continue
			}
			argv[0] = path
		} else {
			res := a.prober.Probe(p)
			if !res.Available {
				continue
			}
			argv[0] = res.Path
		}

		res := a.runner.Run(ctx, argv)
		if !res.OK() {
			return "", fmt.Errorf("%w: %s exit %d %s", errCommandFailed, p.Name, res.ExitCode, strings.TrimSpace(res.Stderr))
		}

		return res.Stdout, nil
	}

	return "", errNoProvider
}

func (a *Aggregator) shell(name string, c capability.Capability, decode func(string) (float64, error)) Strategy {
	return Strategy{
		Name: name,
		Read: func(ctx context.Context) (float64, error) {
			out, err := a.query(ctx, c, "")
			if err != nil {
				return 0, err
			}
			return decode(out)
		},
	}
}

func (a *Aggregator) native(name string, read func(context.Context, HostStats) (float64, error)) Strategy {
	return Strategy{
		Name: name,
		Read: func(ctx context.Context) (float64, error) {
			if a.host == nil {
				return 0, errNoProvider
			}
			return read(ctx, a.host)
		},
	}
}

func (a *Aggregator) cpuUsageChain() []Strategy {
	return []Strategy{
		a.shell("perf-counter", capability.QueryCPUUsage, parse.Percentage),
		a.native("host-cpu", func(ctx context.Context, h HostStats) (float64, error) {
			v, err := h.CPUPercent(ctx)
			return parse.Clamp(v), err
		}),
	}
}

func tenthsKelvin(raw string) (float64, error) {
	return parse.TenthsKelvin(raw, parse.CPUBand)
}

func maxZone(raw string) (float64, error) {
	return parse.MaxZoneTemperature(raw, parse.CPUBand)
}

// nonBlank reports blank output as no reading rather than a parse failure.
func nonBlank(decode func(string) (float64, error)) func(string) (float64, error) {
	return func(raw string) (float64, error) {
		if strings.TrimSpace(raw) == "" {
			return 0, errNoReading
		}
		return decode(raw)
	}
}

// noUsableZone holds when the zone listing ran and produced output but no
// zone yielded a plausible reading. A listing that failed to run skips
// straight to the pre-filtered query.
func noUsableZone(prior []error) bool {
	return len(prior) > 0 &&
		(stderrors.Is(prior[0], parse.ErrImplausible) || stderrors.Is(prior[0], parse.ErrUnparsable))
}

// firstZoneUnparsable holds when the single-zone query ran and its output
// could not be read as a number.
func firstZoneUnparsable(prior []error) bool {
	return len(prior) > 1 && stderrors.Is(prior[1], parse.ErrUnparsable)
}

func (a *Aggregator) cpuTempChain() []Strategy {
	firstZone := a.shell("thermal-first-zone", capability.QueryCPUTempFirst, nonBlank(tenthsKelvin))
	firstZone.When = noUsableZone

	retry := a.shell("thermal-first-zone/retry", capability.QueryCPUTempFirst, nonBlank(tenthsKelvin))
	retry.When = firstZoneUnparsable

	return []Strategy{
		a.shell("thermal-zones", capability.QueryCPUTempZones, nonBlank(maxZone)),
		firstZone,
		retry,
		a.shell("thermal-max-zone", capability.QueryCPUTempMax, func(raw string) (float64, error) {
			return parse.Celsius(raw, parse.CPUBand)
		}),
		a.native("host-sensors", func(ctx context.Context, h HostStats) (float64, error) {
			sensors, err := h.Temperatures(ctx)
			if len(sensors) == 0 {
				if err == nil {
					err = errNoReading
				}
				return 0, err
			}
			return hottestCPUSensor(sensors)
		}),
	}
}

// cpuSensorKeys mark sensors that belong to the CPU package.
var cpuSensorKeys = []string{"coretemp", "k10temp", "zenpower", "cpu", "package", "tctl", "tdie"}

// hottestCPUSensor prefers CPU sensors and falls back to any in-band sensor.
func hottestCPUSensor(sensors []Sensor) (float64, error) {
	best, found := 0.0, false
	for _, cpuOnly := range []bool{true, false} {
		for _, s := range sensors {
			if cpuOnly && !isCPUSensor(s.Key) {
				continue
			}
			if parse.CPUBand.Contains(s.Temperature) && (!found || s.Temperature > best) {
				best, found = s.Temperature, true
			}
		}
		if found {
			return best, nil
		}
	}

	return 0, parse.ErrImplausible
}

func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	for _, k := range cpuSensorKeys {
		if strings.Contains(key, k) {
			return true
		}
	}

	return false
}

// vendorQuery reads one nvidia-smi field. It never runs when the binary
// was not located.
func (a *Aggregator) vendorQuery(name string, c capability.Capability, located probe.Result, decode func(string) (float64, error)) Strategy {
	return Strategy{
		Name: name,
		Read: func(ctx context.Context) (float64, error) {
			if !located.Available {
				return 0, errNoProvider
			}
			out, err := a.query(ctx, c, located.Path)
			if err != nil {
				return 0, err
			}
			return decode(out)
		},
	}
}

func (a *Aggregator) library(name string, read func() (float64, error), band *parse.Band) Strategy {
	return Strategy{
		Name: name,
		Read: func(context.Context) (float64, error) {
			if a.gpu == nil || !a.gpu.Available() {
				return 0, errNoProvider
			}
			v, err := read()
			if err != nil {
				return 0, err
			}
			if band != nil {
				return parse.CheckBand(v, *band)
			}
			return parse.Clamp(v), nil
		},
	}
}

func (a *Aggregator) gpuUsageChain(located probe.Result) []Strategy {
	chain := []Strategy{a.vendorQuery("nvidia-smi", capability.QueryGPUUsage, located, parse.Percentage)}
	if a.gpu != nil {
		chain = append(chain, a.library("nvml", a.gpu.Utilization, nil))
	}

	return chain
}

func (a *Aggregator) gpuTempChain(located probe.Result) []Strategy {
	chain := []Strategy{a.vendorQuery("nvidia-smi", capability.QueryGPUTemp, located, func(raw string) (float64, error) {
		return parse.Celsius(raw, parse.GPUBand)
	})}
	if a.gpu != nil {
		band := parse.GPUBand
		chain = append(chain, a.library("nvml", a.gpu.Temperature, &band))
	}

	return chain
}

func (a *Aggregator) ramUsageChain() []Strategy {
	return []Strategy{
		a.shell("wmi-memory", capability.QueryRAMUsage, parse.Percentage),
		a.native("host-memory", func(ctx context.Context, h HostStats) (float64, error) {
			v, err := h.MemoryPercent(ctx)
			return parse.Clamp(v), err
		}),
	}
}

func (a *Aggregator) batteryChain() []Strategy {
	return []Strategy{
		a.shell("wmi-battery", capability.QueryBattery, parse.Percentage),
		a.native("power-supply", func(ctx context.Context, h HostStats) (float64, error) {
			v, err := h.BatteryPercent(ctx)
			return parse.Clamp(v), err
		}),
	}
}
