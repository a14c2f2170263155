package executor

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper re-executes the test binary as a scripted child process.
func helper(mode string, args ...string) []string {
	return append([]string{os.Args[0], "-test.run=TestHelperProcess", "--", mode}, args...)
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("HOSTCTL_WANT_HELPER") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}

	switch args[1] {
	case "echo":
		fmt.Fprint(os.Stdout, args[2])
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "boom")
		os.Exit(3)
	case "sleep":
		time.Sleep(time.Minute)
		os.Exit(0)
	case "invalid-utf8":
		os.Stdout.Write([]byte{'4', '2', 0xff, 0xfe})
		os.Exit(0)
	}
	os.Exit(2)
}

func TestMain(m *testing.M) {
	os.Setenv("HOSTCTL_WANT_HELPER", "1")
	os.Exit(m.Run())
}

func TestRunSuccess(t *testing.T) {
	res := New(5*time.Second).Run(context.Background(), helper("echo", "42.5"))

	assert.True(t, res.OK())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "42.5", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestRunNonZeroExit(t *testing.T) {
	res := New(5*time.Second).Run(context.Background(), helper("fail"))

	assert.False(t, res.OK())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom", res.Stderr)
}

func TestRunMissingBinary(t *testing.T) {
	res := New(time.Second).Run(context.Background(), []string{"/definitely/not/here/nircmd.exe", "mutesysvolume", "2"})

	assert.Equal(t, -1, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.NotEmpty(t, res.Stderr)
}

func TestRunEmptyArgv(t *testing.T) {
	res := New(time.Second).Run(context.Background(), nil)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunTimeoutIsBounded(t *testing.T) {
	timeout := 300 * time.Millisecond

	start := time.Now()
	res := New(timeout).Run(context.Background(), helper("sleep"))
	elapsed := time.Since(start)

	assert.True(t, res.TimedOut)
	assert.Equal(t, -1, res.ExitCode)
	require.Less(t, elapsed, timeout+waitDelay+2*time.Second)
}

func TestRunIgnoresCallerCancellationWhenDetached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(5*time.Second).Run(context.WithoutCancel(ctx), helper("echo", "ok"))
	assert.True(t, res.OK())
}

func TestRunDecodesPermissively(t *testing.T) {
	res := New(5*time.Second).Run(context.Background(), helper("invalid-utf8"))

	assert.True(t, res.OK())
	assert.Equal(t, "42\uFFFD", res.Stdout)
}

func TestSpawn(t *testing.T) {
	e := New(time.Second)

	require.NoError(t, e.Spawn(helper("echo", "x")))
	assert.Error(t, e.Spawn(nil))
	assert.Error(t, e.Spawn([]string{"/definitely/not/here"}))
}

func TestDefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New(0).Timeout())
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "nircmd.exe", commandName("C:/Windows/nircmd.exe"))
	assert.Equal(t, "nvidia-smi.exe", commandName(`C:\Windows\System32\nvidia-smi.exe`))
	assert.Equal(t, "pactl", commandName("pactl"))
}
