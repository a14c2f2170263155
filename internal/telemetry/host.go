package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/hostctl/internal/parse"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	cpuSampleInterval = 250 * time.Millisecond
	powerSupplyGlob   = "/sys/class/power_supply/BAT*/capacity"
)

type hostStats struct {
	batteryGlob string
}

// NewHostStats reads from gopsutil and the Linux power_supply class.
func NewHostStats() HostStats {
	return &hostStats{batteryGlob: powerSupplyGlob}
}

func (*hostStats) CPUPercent(ctx context.Context) (float64, error) {
	values, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, errNoReading
	}

	return values[0], nil
}

func (*hostStats) MemoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}

	return vm.UsedPercent, nil
}

// Temperatures may return readings alongside a partial-read warning.
func (*hostStats) Temperatures(ctx context.Context) ([]Sensor, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)

	sensors := make([]Sensor, 0, len(temps))
	for _, t := range temps {
		sensors = append(sensors, Sensor{Key: t.SensorKey, Temperature: t.Temperature})
	}

	return sensors, err
}

func (h *hostStats) BatteryPercent(context.Context) (float64, error) {
	matches, err := filepath.Glob(h.batteryGlob)
	if err != nil {
		return 0, err
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if v, err := parse.Percentage(string(data)); err == nil {
			return v, nil
		}
	}

	return 0, errNoProvider
}
