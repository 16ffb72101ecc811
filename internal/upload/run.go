// Package upload publishes a project directory to a git-backed hosting
// space. The flow is fixed: resolve options, collect files, settle README
// metadata, stage a clone, push one commit, report a single JSON line.
package upload

import (
	"context"
	"io"

	"github.com/flarebyte/bennu/internal/dispatch"
)

// New returns the upload collaborator. stdout receives the machine-readable
// result; error text goes to the caller.
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
		return Run(ctx, opts)
	}
}

// Run executes one upload with fully resolved options.
func Run(ctx context.Context, opts Options) error {
	entries, err := collectFiles(opts)
	if err != nil {
		return err
	}
	synthesizedReadme, err := resolveReadme(opts, entries)
	if err != nil {
		return err
	}

	if opts.DryRun {
		return writeDryRunPlan(opts.Stdout, entries, synthesizedReadme)
	}

	res, err := publish(ctx, opts, entries, synthesizedReadme)
	if err != nil {
		return err
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	total += int64(len(synthesizedReadme))
	files := len(entries)
	if synthesizedReadme != nil {
		files++
	}
	return writeReport(opts.Stdout, report{
		OK:       true,
		Space:    opts.Space,
		URL:      spaceRepoURL(opts.Endpoint, opts.Space),
		Files:    files,
		Bytes:    total,
		Commit:   res.commit,
		UpToDate: res.upToDate,
	})
}
