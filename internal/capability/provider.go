// Package capability describes the external tools that can perform a class
// of host action, and the per-platform registries that list them in
// preference order.
package capability

import (
	"strings"
)

// Capability names one abstract host operation.
type Capability string

const (
	VolumeSet      Capability = "volume.set"
	VolumeGet      Capability = "volume.get"
	MuteToggle     Capability = "mute.toggle"
	BrightnessSet  Capability = "brightness.set"
	BrightnessGet  Capability = "brightness.get"
	ThemeRead      Capability = "theme.read"
	ThemeWrite     Capability = "theme.write"
	MediaKey       Capability = "media.key"
	PowerShutdown  Capability = "power.shutdown"
	PowerRestart   Capability = "power.restart"
	PowerSleep     Capability = "power.sleep"
	PowerHibernate Capability = "power.hibernate"
)

// Kind identifies how a provider is invoked and probed.
type Kind string

const (
	// KindHelper is a standalone helper executable at a known location.
	KindHelper Kind = "helper"
	// KindShell is a scripting shell running an OS management query. The
	// shell itself is assumed present.
	KindShell Kind = "shell"
	// KindVendor is a vendor diagnostic binary.
	KindVendor Kind = "vendor"
	// KindLibrary is an in-process vendor library.
	KindLibrary Kind = "library"
)

// Output describes how a provider's stdout maps to a typed value.
type Output string

const (
	OutputNone    Output = ""
	OutputPercent Output = "percent"
	// OutputEmbeddedPercent is free text containing an "NN%" token.
	OutputEmbeddedPercent Output = "embedded_percent"
	OutputFlag            Output = "flag"
)

// Argument placeholders. Each is replaced as a whole argv element or
// inside one; values are never joined into a shell command line.
const (
	PlaceholderValue  = "{value}"
	PlaceholderScaled = "{scaled}"
	PlaceholderKey    = "{key}"
	PlaceholderDelay  = "{delay}"
)

// Provider is one way to perform a capability.
type Provider struct {
	Name    string
	Kind    Kind
	Command string
	Args    []string
	Output  Output
	// Keys maps abstract media actions to provider key codes.
	Keys map[string]string
}

// Vars holds placeholder substitutions for one invocation.
type Vars map[string]string

// Argv renders the provider invocation. Unknown placeholders are left
// untouched so that a misconfigured template fails visibly in the tool.
func (p Provider) Argv(vars Vars) []string {
	argv := make([]string, 0, len(p.Args)+1)
	argv = append(argv, p.Command)
	for _, arg := range p.Args {
		for placeholder, value := range vars {
			arg = strings.ReplaceAll(arg, placeholder, value)
		}
		argv = append(argv, arg)
	}

	return argv
}

// String implements the Stringer interface
func (p Provider) String() string {
	return p.Name + " (" + string(p.Kind) + ")"
}
