package isolate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/seantiz/linebench/internal/model"
)

// outboxSize is the channel buffer between a worker and its coordinator.
const outboxSize = 16

// ErrNoResult is returned when a worker stops without sending its Result.
var ErrNoResult = errors.New("worker exited without a result")

// Isolate is a running worker. Its outbox is closed after the final message.
type Isolate interface {
	Outbox() <-chan Message
	// Wait blocks until the worker has terminated and returns any failure of
	// the worker itself (as opposed to a failure reported in its Result).
	Wait() error
}

// Spawner starts isolated workers.
type Spawner interface {
	Mode() string
	Spawn(ctx context.Context, req Request) (Isolate, error)
}

// NewSpawner returns the spawner for the given isolation mode.
func NewSpawner(mode string) (Spawner, error) {
	switch mode {
	case model.IsolationActor, "":
		return ActorSpawner{}, nil
	case model.IsolationProcess:
		return &ProcessSpawner{}, nil
	default:
		return nil, fmt.Errorf("unknown isolation mode %q", mode)
	}
}

// ActorSpawner runs each worker as a goroutine actor that owns a private
// inbox and outbox. Values sent through the mailboxes change ownership; the
// actor keeps no reference to anything it has sent.
type ActorSpawner struct{}

// Mode returns model.IsolationActor.
func (ActorSpawner) Mode() string { return model.IsolationActor }

// Spawn starts an actor and posts req to its inbox.
func (ActorSpawner) Spawn(ctx context.Context, req Request) (Isolate, error) {
	a := &actor{
		inbox:  make(chan Request, 1),
		outbox: make(chan Message, outboxSize),
		done:   make(chan struct{}),
	}
	go a.loop(ctx)

	a.inbox <- req
	close(a.inbox)
	spawnedTotal.WithLabelValues(model.IsolationActor).Inc()
	return a, nil
}

type actor struct {
	inbox  chan Request
	outbox chan Message
	done   chan struct{}
}

func (a *actor) loop(ctx context.Context) {
	defer close(a.done)
	defer close(a.outbox)

	for req := range a.inbox {
		res := Process(ctx, req, func(batch []string) error {
			select {
			case a.outbox <- Message{Type: MsgTypeLines, Lines: batch}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		select {
		case a.outbox <- Message{Type: MsgTypeResult, Result: &res}:
		case <-ctx.Done():
			return
		}
	}
}

func (a *actor) Outbox() <-chan Message { return a.outbox }

func (a *actor) Wait() error {
	<-a.done
	return nil
}

// ProcessSpawner runs each worker as a child process that reads a framed
// Request from stdin and writes framed Messages to stdout.
type ProcessSpawner struct {
	// Path is the worker executable. Empty means the running binary.
	Path string
	// Args are passed to the executable. Nil means the worker subcommand.
	Args []string
	// Env is appended to the current environment.
	Env []string
}

// Mode returns model.IsolationProcess.
func (p *ProcessSpawner) Mode() string { return model.IsolationProcess }

// Spawn starts the worker process and sends it req.
func (p *ProcessSpawner) Spawn(ctx context.Context, req Request) (Isolate, error) {
	path := p.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve worker executable: %w", err)
		}
		path = exe
	}
	args := p.Args
	if args == nil {
		args = []string{"worker"}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), p.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	proc := &process{
		cmd:    cmd,
		outbox: make(chan Message, outboxSize),
		done:   make(chan struct{}),
	}
	cmd.Stderr = &proc.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}
	spawnedTotal.WithLabelValues(model.IsolationProcess).Inc()

	go proc.readLoop(ctx, stdout)

	werr := WriteMessage(stdin, &req)
	cerr := stdin.Close()
	if err := errors.Join(werr, cerr); err != nil {
		// The read loop sees EOF once the process dies; Wait reaps it.
		return nil, errors.Join(fmt.Errorf("send request: %w", err), kill(cmd), proc.Wait())
	}
	return proc, nil
}

type process struct {
	cmd     *exec.Cmd
	outbox  chan Message
	done    chan struct{}
	readErr error
	stderr  lockedBuffer
}

// readLoop forwards frames from the worker's stdout until the final result,
// EOF, a protocol error, or cancellation.
func (p *process) readLoop(ctx context.Context, stdout io.Reader) {
	defer close(p.done)
	defer close(p.outbox)

	br := bufio.NewReader(stdout)
	for {
		var msg Message
		if err := ReadMessage(br, &msg); err != nil {
			if !errors.Is(err, io.EOF) {
				// Nobody drains the pipe anymore, so the worker could block forever.
				p.readErr = errors.Join(err, kill(p.cmd))
			}
			return
		}
		select {
		case p.outbox <- msg:
		case <-ctx.Done():
			return
		}
		if msg.Type == MsgTypeResult {
			return
		}
	}
}

// kill stops the worker process. A process that already exited is not an
// error.
func kill(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill worker: %w", err)
	}
	return nil
}

func (p *process) Outbox() <-chan Message { return p.outbox }

// Wait reaps the process once its output has been consumed.
func (p *process) Wait() error {
	<-p.done
	err := p.cmd.Wait()
	if err != nil {
		if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
	}
	return errors.Join(p.readErr, err)
}

// lockedBuffer is a thread-safe wrapper around bytes.Buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (lb *lockedBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.Write(p)
}

func (lb *lockedBuffer) String() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.String()
}
