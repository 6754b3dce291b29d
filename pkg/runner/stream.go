package runner

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"embacle-hq/embacle/pkg/providers"
)

// Scanner buffer sizing for line-delimited CLI output. Single events
// can carry whole file contents, so the ceiling is generous.
const (
	scannerInitialBuffer = 256 * 1024
	scannerMaxBuffer     = 4 * 1024 * 1024
)

// LineTranslator converts one line of child stdout into zero or more
// stream chunks. Returning done=true ends the stream after the
// returned chunks are delivered; remaining child output is discarded.
type LineTranslator func(line string) (chunks []*providers.StreamChunk, done bool)

// GuardedStream owns a streaming child process and its stderr drain.
// Chunks are produced by scanning the child's stdout line by line
// through a LineTranslator.
//
// The stream is bound to the context passed at creation: cancelling it
// kills the child's process group, stops the stderr drain, and closes
// the chunk channel. The same teardown runs on normal completion and
// on read errors, so the child's wait status is always collected and
// no zombies are left, regardless of how the consumer leaves.
type GuardedStream struct {
	cmd    *exec.Cmd
	chunks chan *providers.StreamChunk

	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	stderrMu  sync.Mutex
	stderrBuf []byte
}

// StartStream spawns cmd and returns a guarded stream over its stdout.
// The caller consumes Chunks() until it closes; abandoning the stream
// requires cancelling ctx (HTTP handlers get this for free from the
// request context).
func StartStream(ctx context.Context, cmd *exec.Cmd, translate LineTranslator) (*GuardedStream, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, providers.WrapInternalError("", "failed to open stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, providers.WrapInternalError("", "failed to open stderr pipe", err)
	}

	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, providers.WrapInternalError("", "failed to spawn process", err)
	}

	s := &GuardedStream{
		cmd:    cmd,
		chunks: make(chan *providers.StreamChunk, 16),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}

	var stderrDone sync.WaitGroup
	stderrDone.Add(1)
	go func() {
		defer stderrDone.Done()
		buf, truncated := drainCapped(stderr, StreamStderrCap)
		s.stderrMu.Lock()
		s.stderrBuf = buf
		s.stderrMu.Unlock()
		if truncated {
			slog.Debug("streaming stderr hit retention cap")
		}
	}()

	go s.produce(stdout, &stderrDone, translate)

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// Chunks returns the stream's chunk channel. It closes when the stream
// ends; a mid-stream failure arrives as a final chunk with Err set.
func (s *GuardedStream) Chunks() <-chan *providers.StreamChunk {
	return s.chunks
}

// Close kills the child and waits until its exit status has been
// collected and the chunk channel closed. It is idempotent and safe to
// call from any goroutine.
func (s *GuardedStream) Close() error {
	s.kill()
	<-s.done
	return nil
}

// Stderr returns the stderr retained so far, up to StreamStderrCap.
func (s *GuardedStream) Stderr() []byte {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()
	return s.stderrBuf
}

// kill signals teardown exactly once: consumers stop receiving and the
// child's process group dies, which unblocks the pipe readers.
func (s *GuardedStream) kill() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if err := killProcess(s.cmd); err != nil {
			slog.Warn("failed to kill streaming process", "error", err)
		}
	})
}

// produce is the only writer and the only closer of s.chunks. It exits
// when the translator reports done, stdout reaches EOF, reading fails,
// or the stream is killed, and then reaps the child.
func (s *GuardedStream) produce(stdout io.Reader, stderrDone *sync.WaitGroup, translate LineTranslator) {
	defer func() {
		s.kill()
		stderrDone.Wait()
		if err := s.cmd.Wait(); err != nil {
			slog.Debug("streaming process exited", "error", err)
		}
		close(s.chunks)
		close(s.done)
	}()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, scannerInitialBuffer), scannerMaxBuffer)

scan:
	for scanner.Scan() {
		chunks, done := translate(scanner.Text())
		for _, chunk := range chunks {
			select {
			case s.chunks <- chunk:
			case <-s.closed:
				break scan
			}
		}
		if done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-s.closed:
			// Torn-down streams surface no read error; the pipe broke
			// because the child was killed.
		default:
			select {
			case s.chunks <- &providers.StreamChunk{
				Err: providers.WrapInternalError("", "failed to read stream output", err),
			}:
			case <-s.closed:
			}
		}
	}
}
