package control

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/hostctl/internal/capability"
	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/executor"
	"codeberg.org/mutker/hostctl/internal/journal"
	"codeberg.org/mutker/hostctl/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	missing map[string]bool
}

func (f fakeProber) Probe(p capability.Provider) probe.Result {
	if f.missing[p.Command] {
		return probe.Result{Path: p.Command}
	}
	return probe.Result{Available: true, Path: p.Command}
}

func (fakeProber) Locate([]string) probe.Result {
	return probe.Result{}
}

// fakeRunner answers by the first argument after the command and records
// every invocation.
type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	respond func(argv []string) executor.Result
}

func (f *fakeRunner) Run(_ context.Context, argv []string) executor.Result {
	f.mu.Lock()
	f.calls = append(f.calls, argv)
	f.mu.Unlock()

	if f.respond == nil {
		return executor.Result{}
	}
	return f.respond(argv)
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memJournal struct {
	journal.Journal
	entries []journal.Entry
}

func (m *memJournal) Record(_ context.Context, e *journal.Entry) error {
	m.entries = append(m.entries, *e)
	return nil
}

func windowsDispatcher(runner executor.Runner, opts ...Option) *Dispatcher {
	return New(capability.Windows(), fakeProber{}, runner, opts...)
}

func TestSetVolumeScalesAndClamps(t *testing.T) {
	runner := &fakeRunner{}
	d := windowsDispatcher(runner)

	out := d.SetVolume(context.Background(), 50)
	require.True(t, out.OK)
	assert.Equal(t, "volume", out.Field)
	assert.Equal(t, 50, out.Value)
	assert.Equal(t, []string{"C:/Windows/nircmd.exe", "setsysvolume", "32767"}, runner.calls[0])

	out = d.SetVolume(context.Background(), 150)
	require.True(t, out.OK)
	assert.Equal(t, 100, out.Value)
	assert.Equal(t, "65535", runner.calls[1][2])
}

func TestSetVolumeReportsDeviceScaleLevel(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		runner := &fakeRunner{}
		out := windowsDispatcher(runner).SetVolume(context.Background(), pct)
		require.True(t, out.OK)

		scaled, err := strconv.Atoi(runner.calls[0][2])
		require.NoError(t, err)
		assert.InDelta(t, pct, scaled*100/capability.VolumeScaleMax, 1, "pct %d", pct)
		assert.InDelta(t, pct, out.Value, 1, "pct %d", pct)
	}
}

func TestSetVolumeUnavailable(t *testing.T) {
	runner := &fakeRunner{}
	d := New(capability.Windows(), fakeProber{missing: map[string]bool{"C:/Windows/nircmd.exe": true}}, runner)

	out := d.SetVolume(context.Background(), 10)
	assert.False(t, out.OK)
	assert.Equal(t, KindUnavailable, out.Kind)
	assert.Contains(t, out.Error, "nircmd not found")
	assert.Zero(t, runner.count())
}

func TestExecutionFailure(t *testing.T) {
	runner := &fakeRunner{respond: func([]string) executor.Result {
		return executor.Result{ExitCode: -1, TimedOut: true}
	}}
	out := windowsDispatcher(runner).ToggleMute(context.Background())

	assert.False(t, out.OK)
	assert.Equal(t, KindExecution, out.Kind)
	assert.Contains(t, out.Error, "timed out")
}

func TestVolumeRead(t *testing.T) {
	runner := &fakeRunner{respond: func([]string) executor.Result {
		return executor.Result{Stdout: "37.6\r\n"}
	}}

	out := windowsDispatcher(runner).Volume(context.Background())
	require.True(t, out.OK)
	assert.Equal(t, 38, out.Value)
}

func TestLinuxVolumeReadEmbeddedPercent(t *testing.T) {
	runner := &fakeRunner{respond: func([]string) executor.Result {
		return executor.Result{Stdout: "Volume: front-left: 26214 /  40% / -23.88 dB"}
	}}

	out := New(capability.Linux(), fakeProber{}, runner).Volume(context.Background())
	require.True(t, out.OK)
	assert.Equal(t, 40, out.Value)
}

func TestBrightnessPassesValueAsArgument(t *testing.T) {
	runner := &fakeRunner{}

	out := windowsDispatcher(runner).SetBrightness(context.Background(), -20)
	require.True(t, out.OK)
	assert.Equal(t, 0, out.Value)

	argv := runner.calls[0]
	assert.Equal(t, "0", argv[len(argv)-1])
	assert.NotContains(t, argv[len(argv)-2], "{value}")
}

func TestBrightnessReadUnparsable(t *testing.T) {
	runner := &fakeRunner{respond: func([]string) executor.Result {
		return executor.Result{Stdout: "Get-WmiObject : Not supported"}
	}}

	out := windowsDispatcher(runner).Brightness(context.Background())
	assert.False(t, out.OK)
	assert.Equal(t, KindExecution, out.Kind)
}

// themeHost simulates the registry flags behind the theme providers.
func themeHost(light *bool) *fakeRunner {
	return &fakeRunner{respond: func(argv []string) executor.Result {
		script := argv[len(argv)-1]
		if strings.Contains(script, "Get-ItemProperty") {
			if *light {
				return executor.Result{Stdout: "1\r\n"}
			}
			return executor.Result{Stdout: "0\r\n"}
		}
		*light = argv[len(argv)-1] == "1"
		return executor.Result{}
	}}
}

func TestToggleThemeTwiceRestoresState(t *testing.T) {
	light := true
	runner := themeHost(&light)
	d := windowsDispatcher(runner)

	out := d.ToggleTheme(context.Background())
	require.True(t, out.OK)
	assert.Equal(t, "dark", out.Value)
	assert.False(t, light)

	out = d.ToggleTheme(context.Background())
	require.True(t, out.OK)
	assert.Equal(t, "light", out.Value)
	assert.True(t, light)

	// One read and one write per toggle.
	assert.Equal(t, 4, runner.count())
}

func TestToggleThemeReadFailureNeverWrites(t *testing.T) {
	runner := &fakeRunner{respond: func([]string) executor.Result {
		return executor.Result{Stdout: "Get-ItemProperty : Property AppsUseLightTheme does not exist"}
	}}

	out := windowsDispatcher(runner).ToggleTheme(context.Background())
	assert.False(t, out.OK)
	assert.Equal(t, KindExecution, out.Kind)
	assert.Equal(t, "could not determine current theme", out.Error)
	assert.Equal(t, 1, runner.count())
}

func TestToggleThemeUnsupportedOnLinux(t *testing.T) {
	runner := &fakeRunner{}

	out := New(capability.Linux(), fakeProber{}, runner).ToggleTheme(context.Background())
	assert.Equal(t, KindUnavailable, out.Kind)
	assert.Zero(t, runner.count())
}

func TestMediaUnknownActionMakesNoInvocation(t *testing.T) {
	runner := &fakeRunner{}

	out := windowsDispatcher(runner).Media(context.Background(), "rewind")
	assert.False(t, out.OK)
	assert.Equal(t, KindClient, out.Kind)
	assert.Equal(t, "unknown action", out.Error)
	assert.Zero(t, runner.count())
}

func TestMissingActionIsDistinctFromUnknown(t *testing.T) {
	runner := &fakeRunner{}
	d := windowsDispatcher(runner)

	for _, out := range []Outcome{
		d.Media(context.Background(), ""),
		d.Power(context.Background(), ""),
	} {
		assert.Equal(t, KindClient, out.Kind)
		assert.Equal(t, "missing action", out.Error)
	}

	out := d.Power(context.Background(), "reboot-now")
	assert.Equal(t, "unknown action", out.Error)
	assert.Zero(t, runner.count())
}

func TestMediaKeyMapping(t *testing.T) {
	runner := &fakeRunner{}

	out := windowsDispatcher(runner).Media(context.Background(), "prev")
	require.True(t, out.OK)
	assert.Equal(t, "prev", out.Value)
	assert.Equal(t, []string{"C:/Windows/nircmd.exe", "sendkeypress", "mediaprev"}, runner.calls[0])

	runner = &fakeRunner{}
	out = New(capability.Linux(), fakeProber{}, runner).Media(context.Background(), "playpause")
	require.True(t, out.OK)
	assert.Equal(t, []string{"playerctl", "play-pause"}, runner.calls[0])
}

func TestPower(t *testing.T) {
	runner := &fakeRunner{}
	d := windowsDispatcher(runner, WithGraceDelay(10*time.Second))

	out := d.Power(context.Background(), "restart")
	require.True(t, out.OK)
	assert.Equal(t, "restart", out.Value)
	assert.Equal(t, []string{"shutdown", "/r", "/t", "10"}, runner.calls[0])

	out = d.Power(context.Background(), "reboot-now")
	assert.Equal(t, KindClient, out.Kind)
	assert.Equal(t, 1, runner.count())
}

func TestActionsAreJournaled(t *testing.T) {
	j := &memJournal{}
	d := windowsDispatcher(&fakeRunner{}, WithJournal(j))

	d.ToggleMute(context.Background())
	d.Media(context.Background(), "rewind")

	require.Len(t, j.entries, 2)
	assert.Equal(t, "mute", j.entries[0].Action)
	assert.True(t, j.entries[0].OK)
	assert.Equal(t, "media", j.entries[1].Action)
	assert.Equal(t, string(KindClient), j.entries[1].Kind)
}

func TestFromError(t *testing.T) {
	errFactory := errors.New()

	assert.Equal(t, KindNotFound, FromError(errFactory.New(errors.ErrResourceNotFound)).Kind)
	assert.Equal(t, KindClient, FromError(errFactory.New(errors.ErrInvalidArgument)).Kind)
	assert.Equal(t, KindUnavailable, FromError(errFactory.New(errors.ErrCapabilityUnavailable)).Kind)
	assert.Equal(t, KindExecution, FromError(assert.AnError).Kind)
	assert.True(t, FromError(nil).OK)
}
