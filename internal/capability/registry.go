package capability

import (
	"sort"

	"codeberg.org/mutker/hostctl/internal/errors"
)

// Telemetry query capabilities. Their providers are shell or helper
// queries whose raw output is handled by the telemetry strategies.
const (
	QueryCPUUsage     Capability = "query.cpu_usage"
	QueryCPUTempZones Capability = "query.cpu_temp.zones"
	QueryCPUTempFirst Capability = "query.cpu_temp.first_zone"
	QueryCPUTempMax   Capability = "query.cpu_temp.max_zone"
	QueryRAMUsage     Capability = "query.ram_usage"
	QueryBattery      Capability = "query.battery"
	QueryGPUUsage     Capability = "query.gpu_usage"
	QueryGPUTemp      Capability = "query.gpu_temp"
)

// VolumeScaleMax is the full-scale value of the helper volume interface.
const VolumeScaleMax = 65535

// Registry lists providers per capability in preference order, plus the
// known install locations of the GPU vendor diagnostic binary.
type Registry struct {
	Platform    string
	Providers   map[Capability][]Provider
	VendorPaths []string
}

// Lookup returns the providers for c in preference order.
func (r *Registry) Lookup(c Capability) []Provider {
	if r == nil {
		return nil
	}

	return r.Providers[c]
}

// Capabilities returns every capability with at least one provider,
// sorted by name.
func (r *Registry) Capabilities() []Capability {
	caps := make([]Capability, 0, len(r.Providers))
	for c, providers := range r.Providers {
		if len(providers) > 0 {
			caps = append(caps, c)
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })

	return caps
}

// ForPlatform returns the default registry for a GOOS value.
func ForPlatform(goos string) (*Registry, error) {
	switch goos {
	case "windows":
		return Windows(), nil
	case "linux":
		return Linux(), nil
	default:
		return nil, errors.New().WithData(errors.ErrInvalidPlatform, goos)
	}
}
