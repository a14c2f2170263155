package telemetry

import (
	"context"
)

// Unavailable marks a metric no strategy could measure.
const Unavailable = -1.0

// Metric names, also used as JSON keys.
const (
	MetricCPUUsage     = "cpu_usage"
	MetricCPUTemp      = "cpu_temp"
	MetricGPUUsage     = "gpu_usage"
	MetricGPUTemp      = "gpu_temp"
	MetricRAMUsage     = "ram_usage"
	MetricBatteryLevel = "battery_level"
)

// Snapshot is one point-in-time reading. Every field is either a measured
// value or Unavailable.
type Snapshot struct {
	CPUUsage     float64 `json:"cpu_usage"`
	CPUTemp      float64 `json:"cpu_temp"`
	GPUUsage     float64 `json:"gpu_usage"`
	GPUTemp      float64 `json:"gpu_temp"`
	RAMUsage     float64 `json:"ram_usage"`
	BatteryLevel float64 `json:"battery_level"`
}

// EmptySnapshot has every metric unavailable.
func EmptySnapshot() Snapshot {
	return Snapshot{
		CPUUsage:     Unavailable,
		CPUTemp:      Unavailable,
		GPUUsage:     Unavailable,
		GPUTemp:      Unavailable,
		RAMUsage:     Unavailable,
		BatteryLevel: Unavailable,
	}
}

// Map returns the snapshot keyed by metric name.
func (s Snapshot) Map() map[string]float64 {
	return map[string]float64{
		MetricCPUUsage:     s.CPUUsage,
		MetricCPUTemp:      s.CPUTemp,
		MetricGPUUsage:     s.GPUUsage,
		MetricGPUTemp:      s.GPUTemp,
		MetricRAMUsage:     s.RAMUsage,
		MetricBatteryLevel: s.BatteryLevel,
	}
}

// Strategy is one way to measure a metric. When, if set, decides from the
// errors of the earlier strategies in the chain whether this one runs.
type Strategy struct {
	Name string
	When func(prior []error) bool
	Read func(ctx context.Context) (float64, error)
}

// HostStats reads metrics from in-process OS interfaces.
type HostStats interface {
	CPUPercent(ctx context.Context) (float64, error)
	MemoryPercent(ctx context.Context) (float64, error)
	Temperatures(ctx context.Context) ([]Sensor, error)
	BatteryPercent(ctx context.Context) (float64, error)
}

// Sensor is one temperature reading in Celsius.
type Sensor struct {
	Key         string
	Temperature float64
}
