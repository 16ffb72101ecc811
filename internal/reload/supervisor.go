package reload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/flarebyte/bennu/internal/buildinfo"
	"github.com/flarebyte/bennu/internal/proc"
)

const stderrTailMax = 8192

// supervisor owns the app child process across restarts. All state is
// guarded so the status server can read it while the loop runs.
type supervisor struct {
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	child      *proc.Child
	state      string
	restarts   int
	watched    int
	lastChange string
	lastError  string
	stderrTail *proc.CappedBuffer
}

func newSupervisor(opts Options, logger *slog.Logger) *supervisor {
	return &supervisor{
		opts:       opts,
		logger:     logger,
		state:      "stopped",
		stderrTail: &proc.CappedBuffer{Max: stderrTailMax},
	}
}

// start launches a fresh child. Child output streams to the parent's, with
// stderr teed into the tail buffer for the status endpoint.
func (s *supervisor) start() error {
	program, args := s.opts.command()
	s.stderrTail.Reset()
	child, err := proc.Start(proc.Options{
		Program:      program,
		Args:         args,
		Env:          s.opts.Env,
		Stderr:       io.MultiWriter(os.Stderr, s.stderrTail),
		ProcessGroup: true,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.child = child
	s.state = "running"
	s.lastError = ""
	s.mu.Unlock()
	s.logger.Info("app started", "pid", child.Pid(), "program", program)
	return nil
}

// restart stops the current child and starts a new one.
func (s *supervisor) restart() error {
	s.stopChild()
	if err := s.start(); err != nil {
		return err
	}
	s.mu.Lock()
	s.restarts++
	s.lastChange = time.Now().Format(time.RFC3339)
	s.mu.Unlock()
	return nil
}

// stop terminates the child for good.
func (s *supervisor) stop() {
	s.stopChild()
	s.mu.Lock()
	s.state = "stopped"
	s.mu.Unlock()
}

func (s *supervisor) stopChild() {
	s.mu.Lock()
	child := s.child
	s.mu.Unlock()
	if child == nil {
		return
	}
	child.Stop(s.opts.Grace)
	s.logger.Debug("app stopped", "pid", child.Pid())
}

// doneChan exposes the current child's exit channel for the loop's select.
func (s *supervisor) doneChan() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.child == nil {
		return nil
	}
	return s.child.Done()
}

// noteExit records a child that exited on its own. The loop stays alive; the
// next change event starts a fresh child.
func (s *supervisor) noteExit() {
	s.mu.Lock()
	child := s.child
	s.mu.Unlock()
	if child == nil {
		return
	}
	code := child.ExitCode()
	msg := fmt.Sprintf("exit status %d", code)
	if tail := strings.Join(strings.Fields(s.stderrTail.String()), " "); tail != "" {
		msg = fmt.Sprintf("%s: %s", msg, clip(tail, 200))
	}
	s.mu.Lock()
	s.state = "exited"
	if code != 0 {
		s.lastError = msg
	}
	s.mu.Unlock()
	s.logger.Warn("app exited", "code", code)
}

func (s *supervisor) setWatched(n int) {
	s.mu.Lock()
	s.watched = n
	s.mu.Unlock()
}

// statusInfo is the /status JSON document.
type statusInfo struct {
	State      string `json:"state"`
	Pid        int    `json:"pid"`
	Restarts   int    `json:"restarts"`
	Watched    int    `json:"watched"`
	LastChange string `json:"lastChange,omitempty"`
	LastError  string `json:"lastError,omitempty"`
	Version    string `json:"version"`
}

func (s *supervisor) status() statusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := statusInfo{
		State:      s.state,
		Restarts:   s.restarts,
		Watched:    s.watched,
		LastChange: s.lastChange,
		LastError:  s.lastError,
		Version:    buildinfo.Summary(),
	}
	if s.child != nil && s.state == "running" {
		info.Pid = s.child.Pid()
	}
	return info
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
