// Package executor runs external commands with a hard timeout and never
// reports failure through an error: every outcome is encoded in Result.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/hostctl/internal/logger"
	"codeberg.org/mutker/hostctl/internal/observability"
)

// DefaultTimeout bounds every invocation unless configured otherwise.
const DefaultTimeout = 6 * time.Second

// waitDelay is how long Wait may block on inherited pipes after the
// process has been killed.
const waitDelay = 500 * time.Millisecond

// Result is the outcome of one invocation. ExitCode is -1 when the process
// could not be started or was killed on timeout.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// OK reports a zero exit status.
func (r Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Runner executes an argument vector to completion.
type Runner interface {
	Run(ctx context.Context, argv []string) Result
}

// Spawner starts an argument vector without waiting for it.
type Spawner interface {
	Spawn(argv []string) error
}

// Executor runs host commands. The zero value is not usable; call New.
type Executor struct {
	timeout time.Duration
	log     logger.Logger
}

func New(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		timeout: timeout,
		log:     logger.New("executor"),
	}
}

// Timeout returns the per-invocation bound.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

func (e *Executor) Run(ctx context.Context, argv []string) Result {
	start := time.Now()
	if len(argv) == 0 || argv[0] == "" {
		return Result{ExitCode: -1, Stderr: "empty command"}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   decode(stdout.Bytes()),
		Stderr:   decode(stderr.Bytes()),
		Duration: time.Since(start),
	}

	outcome := observability.OutcomeOK
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		res.ExitCode = -1
		res.TimedOut = true
		outcome = observability.OutcomeTimeout
	case err == nil:
		res.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			res.ExitCode = exitErr.ExitCode()
			outcome = observability.OutcomeFailed
		} else {
			res.ExitCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
			outcome = observability.OutcomeSpawnFailed
		}
	}

	name := commandName(argv[0])
	observability.RecordExec(name, outcome, res.Duration)
	e.log.Debug().
		Str("command", name).
		Int("exit_code", res.ExitCode).
		Bool("timed_out", res.TimedOut).
		Dur("duration", res.Duration).
		Msg("command finished")

	return res
}

// Spawn starts argv detached from the request and reaps it in the
// background.
func (e *Executor) Spawn(argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return errors.New("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	detach(cmd)

	start := time.Now()
	name := commandName(argv[0])
	if err := cmd.Start(); err != nil {
		observability.RecordExec(name, observability.OutcomeSpawnFailed, time.Since(start))
		return err
	}

	go func() {
		err := cmd.Wait()
		outcome := observability.OutcomeOK
		if err != nil {
			outcome = observability.OutcomeFailed
		}
		observability.RecordExec(name, outcome, time.Since(start))
		e.log.Debug().Str("command", name).Err(err).Msg("spawned process exited")
	}()

	e.log.Debug().Str("command", name).Int("pid", cmd.Process.Pid).Msg("process spawned")

	return nil
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// commandName strips directories from both separator styles.
func commandName(command string) string {
	if i := strings.LastIndexAny(command, `/\`); i >= 0 {
		command = command[i+1:]
	}

	return filepath.Base(command)
}
