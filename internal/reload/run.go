// Package reload runs the development loop: watch the project for changes
// and restart the app subprocess when its files do change.
package reload

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flarebyte/bennu/internal/buildinfo"
	"github.com/flarebyte/bennu/internal/dispatch"
)

// New returns the reload collaborator. stdout receives machine-readable
// output (--check); loop logs go to stderr.
func New(stdout io.Writer) dispatch.Collaborator {
	return func(ctx context.Context, args []string) error {
		a, err := parseArgs(args)
		if err != nil {
			return err
		}
		opts, err := resolveOptions(a, stdout)
		if err != nil {
			return err
		}
		if opts.Check {
			return writeCheck(opts)
		}
		return Run(ctx, opts)
	}
}

// Run starts the app under watch and blocks until ctx is cancelled or the
// process is signalled. A child that exits on its own does not end the loop;
// the next change starts a fresh one.
func Run(ctx context.Context, opts Options) error {
	logger := slog.New(slog.NewTextHandler(opts.LogOutput, &slog.HandlerOptions{Level: opts.LogLevel}))

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	snap, err := takeSnapshot(opts)
	if err != nil {
		return err
	}

	sup := newSupervisor(opts, logger)
	sup.setWatched(len(snap))
	logger.Info("bennu reload starting",
		"version", buildinfo.Summary(),
		"file", opts.File,
		"watched", len(snap),
		"poll", opts.Poll.String(),
	)

	if opts.StatusPort > 0 {
		statusSrv, err := startStatusServer(opts.StatusPort, sup, logger)
		if err != nil {
			return err
		}
		defer statusSrv.shutdown()
	}

	if err := sup.start(); err != nil {
		return err
	}
	defer sup.stop()

	ticker := time.NewTicker(opts.Poll)
	defer ticker.Stop()

	exitSeen := false
	for {
		var done <-chan struct{}
		if !exitSeen {
			done = sup.doneChan()
		}
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-done:
			sup.noteExit()
			exitSeen = true
		case <-ticker.C:
			next, err := takeSnapshot(opts)
			if err != nil {
				logger.Warn("watch poll failed", "error", err)
				continue
			}
			changes := snap.Diff(next)
			snap = next
			sup.setWatched(len(next))
			if changes.Empty() {
				continue
			}
			paths := filterChanges(changes.Paths(), opts.Filter, logger)
			if len(paths) == 0 {
				logger.Debug("changes filtered out", "count", len(changes.Paths()))
				continue
			}
			logger.Info("change detected", "paths", strings.Join(paths, ","))
			if err := sup.restart(); err != nil {
				return err
			}
			exitSeen = false
		}
	}
}
