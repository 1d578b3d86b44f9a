package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/pithecene-io/mangle/iox"
)

// Process abstracts the callee process lifecycle for testing.
type Process interface {
	// Start launches the process with stdin, stdout and stderr piped.
	Start(ctx context.Context) error
	// Send writes the request and closes stdin. Stdin is closed even when
	// the write fails, so Wait can always follow.
	Send(request []byte) error
	// Wait blocks until the process exits and its output is drained.
	Wait() (*ProcessResult, error)
}

// ProcessFactory creates a Process for an argument vector. Used for test injection.
type ProcessFactory func(argv []string) Process

// ProcessResult is the outcome of one process run.
type ProcessResult struct {
	// ExitCode is the process exit code (-1 when killed by a signal).
	ExitCode int
	// Stdout is everything the process wrote to stdout.
	Stdout []byte
	// Stderr is everything the process wrote to stderr.
	Stderr []byte
}

// waitDelay bounds how long Wait keeps draining output after the child has
// exited or the deadline passed. It only applies to calls with a deadline;
// otherwise a grandchild holding stdout open keeps the call waiting.
var waitDelay = 2 * time.Second

// ProcessManager runs the callee as an OS process.
// The environment and working directory are inherited unchanged.
type ProcessManager struct {
	argv   []string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// NewProcessManager creates a process manager for argv.
func NewProcessManager(argv []string) *ProcessManager {
	return &ProcessManager{argv: argv}
}

// Start starts the process.
// Stdout and stderr are drained concurrently into buffers so a chatty child
// never blocks on a full pipe while the request is being written.
func (m *ProcessManager) Start(ctx context.Context) error {
	if len(m.argv) == 0 {
		return errors.New("empty command")
	}

	m.cmd = exec.CommandContext(ctx, m.argv[0], m.argv[1:]...)
	if _, ok := ctx.Deadline(); ok {
		m.cmd.WaitDelay = waitDelay
	}

	stdin, err := m.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	m.stdin = stdin
	m.cmd.Stdout = &m.stdout
	m.cmd.Stderr = &m.stderr

	if err := m.cmd.Start(); err != nil {
		iox.DiscardClose(stdin)
		return err
	}
	return nil
}

// Send writes the request to stdin and closes it to signal end of input.
func (m *ProcessManager) Send(request []byte) error {
	if m.stdin == nil {
		return errors.New("process not started")
	}
	if _, err := m.stdin.Write(request); err != nil {
		iox.DiscardClose(m.stdin)
		return fmt.Errorf("write request: %w", err)
	}
	return m.stdin.Close()
}

// Wait waits for exit and returns the captured output.
// A non-zero exit is reported through ExitCode, not as an error.
func (m *ProcessManager) Wait() (*ProcessResult, error) {
	if m.cmd == nil {
		return nil, errors.New("process not started")
	}

	err := m.cmd.Wait()

	result := &ProcessResult{
		Stdout: m.stdout.Bytes(),
		Stderr: m.stderr.Bytes(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrWaitDelay):
		// Clean exit; a leftover descendant still held stdout or stderr.
	default:
		return nil, err
	}

	return result, nil
}
