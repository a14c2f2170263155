// Package control turns abstract host actions into provider invocations.
package control

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/hostctl/internal/capability"
	"codeberg.org/mutker/hostctl/internal/executor"
	"codeberg.org/mutker/hostctl/internal/journal"
	"codeberg.org/mutker/hostctl/internal/logger"
	"codeberg.org/mutker/hostctl/internal/observability"
	"codeberg.org/mutker/hostctl/internal/parse"
	"codeberg.org/mutker/hostctl/internal/probe"
)

// DefaultGraceDelay is the countdown given to shutdown and restart.
const DefaultGraceDelay = 5 * time.Second

var mediaActions = map[string]bool{
	"playpause": true,
	"next":      true,
	"prev":      true,
	"stop":      true,
}

var powerActions = map[string]capability.Capability{
	"shutdown":  capability.PowerShutdown,
	"restart":   capability.PowerRestart,
	"sleep":     capability.PowerSleep,
	"hibernate": capability.PowerHibernate,
}

// Dispatcher performs control actions against the host.
type Dispatcher struct {
	registry   *capability.Registry
	prober     probe.Prober
	runner     executor.Runner
	journal    journal.Journal
	graceDelay time.Duration
	log        logger.Logger
}

type Option func(*Dispatcher)

func WithJournal(j journal.Journal) Option {
	return func(d *Dispatcher) {
		d.journal = j
	}
}

func WithGraceDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		d.graceDelay = delay
	}
}

func New(registry *capability.Registry, prober probe.Prober, runner executor.Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:   registry,
		prober:     prober,
		runner:     runner,
		journal:    journal.Noop(),
		graceDelay: DefaultGraceDelay,
		log:        logger.New("control"),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// SetVolume sets the output volume to a clamped percentage.
func (d *Dispatcher) SetVolume(ctx context.Context, value int) Outcome {
	return d.track(ctx, "volume", func() Outcome {
		value = parse.ClampInt(value)

		provider, path, failed := d.selectProvider(capability.VolumeSet)
		if failed != nil {
			return *failed
		}

		scaled := parse.ToScale(value, capability.VolumeScaleMax)
		vars := capability.Vars{
			capability.PlaceholderValue:  strconv.Itoa(value),
			capability.PlaceholderScaled: strconv.Itoa(scaled),
		}
		if _, failed := d.run(ctx, provider, path, vars); failed != nil {
			return *failed
		}

		// Report the level the device scale can represent.
		return Success("volume", parse.FromScale(scaled, capability.VolumeScaleMax))
	})
}

// Volume reads the output volume.
func (d *Dispatcher) Volume(ctx context.Context) Outcome {
	return d.read(ctx, capability.VolumeGet, "volume")
}

// ToggleMute flips the output mute state.
func (d *Dispatcher) ToggleMute(ctx context.Context) Outcome {
	return d.track(ctx, "mute", func() Outcome {
		provider, path, failed := d.selectProvider(capability.MuteToggle)
		if failed != nil {
			return *failed
		}
		if _, failed := d.run(ctx, provider, path, nil); failed != nil {
			return *failed
		}

		return Success("", nil)
	})
}

// SetBrightness sets the primary display brightness.
func (d *Dispatcher) SetBrightness(ctx context.Context, value int) Outcome {
	return d.track(ctx, "brightness", func() Outcome {
		value = parse.ClampInt(value)

		provider, path, failed := d.selectProvider(capability.BrightnessSet)
		if failed != nil {
			return *failed
		}
		if _, failed := d.run(ctx, provider, path, capability.Vars{capability.PlaceholderValue: strconv.Itoa(value)}); failed != nil {
			return *failed
		}

		return Success("brightness", value)
	})
}

// Brightness reads the primary display brightness.
func (d *Dispatcher) Brightness(ctx context.Context) Outcome {
	return d.read(ctx, capability.BrightnessGet, "brightness")
}

// ToggleTheme inverts the light-theme flag. A failed read never writes.
func (d *Dispatcher) ToggleTheme(ctx context.Context) Outcome {
	return d.track(ctx, "theme", func() Outcome {
		reader, readerPath, failed := d.selectProvider(capability.ThemeRead)
		if failed != nil {
			return *failed
		}
		writer, writerPath, failed := d.selectProvider(capability.ThemeWrite)
		if failed != nil {
			return *failed
		}

		res, failed := d.run(ctx, reader, readerPath, nil)
		if failed != nil {
			return Failure(KindExecution, "could not determine current theme")
		}
		light, err := parse.Flag(res.Stdout)
		if err != nil {
			return Failure(KindExecution, "could not determine current theme")
		}

		next := !light
		if _, failed := d.run(ctx, writer, writerPath, capability.Vars{capability.PlaceholderValue: flag(next)}); failed != nil {
			return *failed
		}

		return Success("theme", themeName(next))
	})
}

// Media sends a media key. Unknown actions fail before any probing.
func (d *Dispatcher) Media(ctx context.Context, action string) Outcome {
	return d.track(ctx, "media", func() Outcome {
		if !mediaActions[action] {
			return rejectAction(action)
		}

		provider, path, failed := d.selectProvider(capability.MediaKey)
		if failed != nil {
			return *failed
		}
		key, ok := provider.Keys[action]
		if !ok {
			return Failure(KindUnavailable, fmt.Sprintf("%s has no key for %q", provider.Name, action))
		}
		if _, failed := d.run(ctx, provider, path, capability.Vars{capability.PlaceholderKey: key}); failed != nil {
			return *failed
		}

		return Success("action", action)
	})
}

// Power requests a power transition.
func (d *Dispatcher) Power(ctx context.Context, action string) Outcome {
	return d.track(ctx, "power", func() Outcome {
		c, ok := powerActions[action]
		if !ok {
			return rejectAction(action)
		}

		provider, path, failed := d.selectProvider(c)
		if failed != nil {
			return *failed
		}
		delay := strconv.Itoa(int(d.graceDelay / time.Second))
		if _, failed := d.run(ctx, provider, path, capability.Vars{capability.PlaceholderDelay: delay}); failed != nil {
			return *failed
		}

		return Success("action", action)
	})
}

func rejectAction(action string) Outcome {
	if action == "" {
		return Failure(KindClient, "missing action")
	}

	return Failure(KindClient, "unknown action")
}

func (d *Dispatcher) read(ctx context.Context, c capability.Capability, field string) Outcome {
	provider, path, failed := d.selectProvider(c)
	if failed != nil {
		return *failed
	}

	res, failed := d.run(ctx, provider, path, nil)
	if failed != nil {
		return *failed
	}

	value, err := decodeOutput(provider.Output, res.Stdout)
	if err != nil {
		return Failure(KindExecution, err.Error())
	}

	return Success(field, value)
}

// selectProvider returns the first available provider and its resolved
// path, or an unavailable outcome.
func (d *Dispatcher) selectProvider(c capability.Capability) (capability.Provider, string, *Outcome) {
	providers := d.registry.Lookup(c)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		if res := d.prober.Probe(p); res.Available {
			return p, res.Path, nil
		}
		names = append(names, p.Name)
	}

	msg := fmt.Sprintf("%s is not supported on this host", c)
	if len(names) > 0 {
		msg = fmt.Sprintf("%s not found; install %s", strings.Join(names, ", "), strings.Join(names, " or "))
	}
	failed := Failure(KindUnavailable, msg)

	return capability.Provider{}, "", &failed
}

func (d *Dispatcher) run(ctx context.Context, p capability.Provider, path string, vars capability.Vars) (executor.Result, *Outcome) {
	argv := p.Argv(vars)
	if path != "" {
		argv[0] = path
	}

	res := d.runner.Run(context.WithoutCancel(ctx), argv)
	if res.OK() {
		return res, nil
	}

	failed := Failure(KindExecution, describeFailure(p, res))

	return res, &failed
}

func (d *Dispatcher) track(ctx context.Context, action string, fn func() Outcome) Outcome {
	start := time.Now()
	out := fn()
	elapsed := time.Since(start)

	observability.RecordControlAction(action, out.OK)

	event := d.log.Debug()
	if !out.OK {
		event = d.log.Warn()
	}
	event.Str("action", action).
		Bool("ok", out.OK).
		Str("kind", string(out.Kind)).
		Str("error", out.Error).
		Dur("duration", elapsed).
		Msg("control action")

	entry := &journal.Entry{
		Time:     start,
		Action:   action,
		OK:       out.OK,
		Kind:     string(out.Kind),
		Message:  out.Error,
		Duration: elapsed,
	}
	if err := d.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		d.log.Warn().Err(err).Str("action", action).Msg("Failed to journal action")
	}

	return out
}

func describeFailure(p capability.Provider, res executor.Result) string {
	switch {
	case res.TimedOut:
		return fmt.Sprintf("%s timed out", p.Name)
	case strings.TrimSpace(res.Stderr) != "":
		return fmt.Sprintf("%s failed: %s", p.Name, strings.TrimSpace(res.Stderr))
	default:
		return fmt.Sprintf("%s exited with status %d", p.Name, res.ExitCode)
	}
}

func decodeOutput(output capability.Output, raw string) (int, error) {
	var (
		v   float64
		err error
	)

	switch output {
	case capability.OutputEmbeddedPercent:
		v, err = parse.EmbeddedPercent(raw)
	default:
		v, err = parse.Percentage(raw)
	}
	if err != nil {
		return 0, err
	}

	return int(v + 0.5), nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func themeName(light bool) string {
	if light {
		return "light"
	}
	return "dark"
}
