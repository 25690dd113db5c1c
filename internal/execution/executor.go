// Package execution manages the single external runner process for a
// pipeline invocation: shell spawn, live output streaming, timeout with
// graceful-then-forced termination, and explicit cancellation.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// DefaultGracePeriod is how long a process gets between the graceful
// termination signal and the forced kill.
const DefaultGracePeriod = 2000 * time.Millisecond

// ErrRunInProgress is returned when Run is called while a process is
// already active on this executor. Callers own the decision to cancel the
// prior run first.
var ErrRunInProgress = errors.New("execution: a process is already running")

// Result is the outcome of one process run. A failing test suite exits
// non-zero; that still resolves as a Result, never as an error, so the
// caller can parse whatever output was produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Executor runs one external process at a time. The current-process handle
// is non-nil only while a run is active and is cleared on every exit path.
type Executor struct {
	mu       sync.Mutex
	current  *exec.Cmd
	timedOut bool

	sink  io.Writer
	grace time.Duration
}

// NewExecutor creates an Executor. Captured output is forwarded to sink as
// it arrives, for operator visibility; a nil sink discards the live copy.
func NewExecutor(sink io.Writer) *Executor {
	if sink == nil {
		sink = io.Discard
	}
	return &Executor{sink: sink, grace: DefaultGracePeriod}
}

// Run spawns command via the platform shell in cwd and waits for it to
// finish. A timer armed at timeout sends SIGTERM; if the process is still
// alive after the grace window it is SIGKILLed and the result carries
// TimedOut=true. Extra env entries are appended to the inherited
// environment. Only spawn-level failures return an error.
func (e *Executor) Run(ctx context.Context, command, cwd string, timeout time.Duration, env []string) (*Result, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = cwd
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}
	// The shell always has children (the runner, its workers). A dedicated
	// process group lets termination signal all of them, and WaitDelay
	// closes the I/O pipes after the shell exits so an orphaned child
	// holding the pipe FDs cannot block Wait.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = e.grace

	var stdout, stderr strings.Builder
	cmd.Stdout = io.MultiWriter(&stdout, e.sink)
	cmd.Stderr = io.MultiWriter(&stderr, e.sink)

	e.mu.Lock()
	if e.current != nil {
		e.mu.Unlock()
		return nil, ErrRunInProgress
	}
	if err := cmd.Start(); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("start %q: %w", command, err)
	}
	e.current = cmd
	e.timedOut = false
	e.mu.Unlock()

	timer := time.AfterFunc(timeout, func() {
		e.mu.Lock()
		e.timedOut = true
		e.mu.Unlock()
		e.terminate(cmd)
	})

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.terminate(cmd)
		case <-watchDone:
		}
	}()

	waitErr := cmd.Wait()
	close(watchDone)
	timer.Stop()

	e.mu.Lock()
	timedOut := e.timedOut
	e.current = nil
	e.mu.Unlock()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: timedOut,
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case errors.Is(waitErr, exec.ErrWaitDelay):
			// The shell exited cleanly but an orphaned child held the
			// pipes past the grace window; the captured output stands.
		default:
			// Wait itself failed; this is a process-level error, not a
			// failing suite.
			return nil, fmt.Errorf("wait for %q: %w", command, waitErr)
		}
	}

	return result, nil
}

// Cancel sends the graceful termination signal to the active process, if
// any. Idempotent: calling with nothing running is a no-op. The resulting
// Result reports TimedOut=false and whatever exit code the OS assigns to
// the killed process.
func (e *Executor) Cancel() {
	e.mu.Lock()
	cmd := e.current
	e.mu.Unlock()
	if cmd != nil {
		e.terminate(cmd)
	}
}

// Running reports whether a process is currently active.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// terminate sends SIGTERM to the whole process group now and escalates to
// SIGKILL after the grace window if the group has not exited.
func (e *Executor) terminate(cmd *exec.Cmd) {
	proc := cmd.Process
	if proc == nil {
		return
	}
	signalGroup(proc.Pid, syscall.SIGTERM)

	time.AfterFunc(e.grace, func() {
		e.mu.Lock()
		stillRunning := e.current == cmd
		e.mu.Unlock()
		if stillRunning {
			signalGroup(proc.Pid, syscall.SIGKILL)
		}
	})
}

// signalGroup signals the process group led by pid, falling back to the
// single process if the group is already gone.
func signalGroup(pid int, sig syscall.Signal) {
	if err := syscall.Kill(-pid, sig); err != nil {
		_ = syscall.Kill(pid, sig)
	}
}
