package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"embacle-hq/embacle/pkg/providers"
)

// CliOutput is the result of one bounded subprocess invocation.
type CliOutput struct {
	// Stdout is the captured standard output, truncated at the cap.
	Stdout []byte

	// Stderr is the captured standard error, truncated at the cap.
	Stderr []byte

	// ExitCode is the child's exit code; -1 when the child was killed
	// or no code is available.
	ExitCode int

	// Duration is the elapsed wall-clock time.
	Duration time.Duration

	// StdoutTruncated reports that stdout hit the capture cap.
	StdoutTruncated bool

	// StderrTruncated reports that stderr hit the capture cap.
	StderrTruncated bool
}

// Command builds an exec.Cmd for the given binary with the sandbox
// policy applied and any extra environment appended after the
// whitelist.
func Command(binary string, args []string, policy SandboxPolicy, extraEnv map[string]string) *exec.Cmd {
	cmd := exec.Command(binary, args...)
	policy.Apply(cmd)
	for key, value := range extraEnv {
		cmd.Env = append(cmd.Env, key+"="+value)
	}
	return cmd
}

// Run executes cmd with a wall-clock timeout and a per-stream capture
// cap. Both output streams are drained continuously: once a stream
// reaches the cap, reading continues and the surplus is discarded so
// the child can never block on a full pipe.
//
// On timeout the child's process group is killed and a TimeoutError
// carrying the budget is returned. A failure to spawn is an
// InternalError. A non-zero exit is NOT an error at this layer; the
// exit code is reported in CliOutput and the caller decides. The exit
// code is -1 when the child was killed.
//
// A maxBytes of zero or less selects DefaultMaxOutputBytes. A timeout
// of zero or less means no timeout; ctx remains in force either way.
func Run(ctx context.Context, cmd *exec.Cmd, timeout time.Duration, maxBytes int64) (*CliOutput, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxOutputBytes
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, providers.WrapInternalError("", "failed to open stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, providers.WrapInternalError("", "failed to open stderr pipe", err)
	}

	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, providers.WrapInternalError("", "failed to spawn process", err)
	}

	var (
		drains       sync.WaitGroup
		outBuf       []byte
		errBuf       []byte
		outTruncated bool
		errTruncated bool
	)
	drains.Add(2)
	go func() {
		defer drains.Done()
		outBuf, outTruncated = drainCapped(stdout, maxBytes)
	}()
	go func() {
		defer drains.Done()
		errBuf, errTruncated = drainCapped(stderr, maxBytes)
	}()

	// Wait must run after both pipe readers reach EOF.
	waitCh := make(chan error, 1)
	go func() {
		drains.Wait()
		waitCh <- cmd.Wait()
	}()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case waitErr := <-waitCh:
		return finishRun(cmd, waitErr, outBuf, errBuf, outTruncated, errTruncated, start)

	case <-timeoutCh:
		if err := killProcess(cmd); err != nil {
			slog.Warn("failed to kill timed-out process", "error", err)
		}
		reapAfterKill(waitCh)
		return nil, providers.NewTimeoutError("", timeout)

	case <-ctx.Done():
		if err := killProcess(cmd); err != nil {
			slog.Warn("failed to kill cancelled process", "error", err)
		}
		reapAfterKill(waitCh)
		return nil, providers.WrapInternalError("", "command cancelled", ctx.Err())
	}
}

func finishRun(cmd *exec.Cmd, waitErr error, outBuf, errBuf []byte, outTruncated, errTruncated bool, start time.Time) (*CliOutput, error) {
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, providers.WrapInternalError("", "failed waiting for process", waitErr)
		}
		// Non-zero exit: reported via ExitCode, not as an error.
	}

	if outTruncated || errTruncated {
		slog.Debug("subprocess output hit capture cap",
			"stdout_truncated", outTruncated,
			"stderr_truncated", errTruncated,
		)
	}

	return &CliOutput{
		Stdout:          outBuf,
		Stderr:          errBuf,
		ExitCode:        exitCode,
		Duration:        time.Since(start),
		StdoutTruncated: outTruncated,
		StderrTruncated: errTruncated,
	}, nil
}

// reapAfterKill waits briefly for the killed child's wait status so no
// zombie is left behind. After SIGKILL the pipes close, the drains hit
// EOF, and Wait returns almost immediately.
func reapAfterKill(waitCh <-chan error) {
	select {
	case <-waitCh:
	case <-time.After(2 * time.Second):
		slog.Warn("killed process did not report exit status in time")
	}
}

// drainCapped reads r to EOF, retaining at most max bytes. Reading
// continues past the cap with the surplus discarded.
func drainCapped(r io.Reader, max int64) (buf []byte, truncated bool) {
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			remaining := max - int64(len(buf))
			switch {
			case remaining >= int64(n):
				buf = append(buf, chunk[:n]...)
			case remaining > 0:
				buf = append(buf, chunk[:remaining]...)
				truncated = true
			default:
				truncated = true
			}
		}
		if err != nil {
			return buf, truncated
		}
	}
}
