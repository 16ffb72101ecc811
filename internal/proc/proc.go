// Package proc starts and supervises the app child process for the reload
// loop. The child runs in its own process group so a stop takes down anything
// it spawned: SIGTERM first, SIGKILL after the grace period.
package proc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Options describe how to launch the child.
type Options struct {
	Program string
	Args    []string
	Dir     string
	// Env is overlaid on the parent environment.
	Env map[string]string
	// Stdout and Stderr default to the parent's streams.
	Stdout io.Writer
	Stderr io.Writer
	// ProcessGroup runs the child with Setpgid and signals the whole group.
	ProcessGroup bool
}

// Child is one started process. All methods are safe after exit.
type Child struct {
	cmd          *exec.Cmd
	processGroup bool
	exited       chan struct{}
	waitErr      error
}

// Start launches the child and begins reaping it in the background.
func Start(opts Options) (*Child, error) {
	cmd := exec.Command(opts.Program, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = applyEnvOverlay(os.Environ(), opts.Env)
	if opts.ProcessGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("program %s not found", opts.Program)
		}
		return nil, fmt.Errorf("program %s start failed", opts.Program)
	}

	c := &Child{cmd: cmd, processGroup: opts.ProcessGroup, exited: make(chan struct{})}
	go func() {
		c.waitErr = cmd.Wait()
		close(c.exited)
	}()
	return c, nil
}

// Pid returns the child's process id.
func (c *Child) Pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Done is closed once the child has exited and been reaped.
func (c *Child) Done() <-chan struct{} { return c.exited }

// ExitCode reports the child's exit status. Valid once Done is closed;
// -1 covers signal deaths and wait failures.
func (c *Child) ExitCode() int {
	select {
	case <-c.exited:
	default:
		return 0
	}
	if c.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(c.waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Stop terminates the child: SIGTERM, wait up to grace, then SIGKILL. It
// returns once the child is reaped and is a no-op if it already exited.
func (c *Child) Stop(grace time.Duration) {
	select {
	case <-c.exited:
		return
	default:
	}
	signalProcess(c.cmd, c.processGroup, syscall.SIGTERM)
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-c.exited:
	case <-timer.C:
		signalProcess(c.cmd, c.processGroup, syscall.SIGKILL)
		<-c.exited
	}
}

func signalProcess(cmd *exec.Cmd, killGroup bool, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if killGroup && pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}

func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	m := map[string]string{}
	for _, kv := range base {
		i := -1
		for j := 0; j < len(kv); j++ {
			if kv[j] == '=' {
				i = j
				break
			}
		}
		if i <= 0 {
			continue
		}
		m[kv[:i]] = kv[i+1:]
	}
	for k, v := range overlay {
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}
