package reload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flarebyte/bennu/internal/hook"
	"github.com/flarebyte/bennu/internal/scan"
)

// takeSnapshot fingerprints every watched file. Roots are the app file's
// directory plus the extra watch paths; a root may be a single file. Walk
// problems inside a root are tolerated, files vanish mid-poll all the time.
func takeSnapshot(opts Options) (scan.Snapshot, error) {
	scanOpts := scan.Options{Exclude: opts.Ignore, KeepGoing: true}
	merged := scan.Snapshot{}
	roots := append([]string{opts.Dir}, opts.WatchPaths...)
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("watch path %s: %v", root, err)
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() {
				merged[locator(root)] = scan.Fingerprint{Size: info.Size(), ModTime: info.ModTime()}
			}
			continue
		}
		entries, _, err := scan.Walk(root, scanOpts)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			merged[locator(filepath.Join(root, e.Rel))] = scan.Fingerprint{Size: e.Size, ModTime: e.ModTime}
		}
	}

	// The app file is watched even when gitignore or globs hide it.
	if info, err := os.Stat(opts.File); err == nil && info.Mode().IsRegular() {
		merged[locator(opts.File)] = scan.Fingerprint{Size: info.Size(), ModTime: info.ModTime()}
	}
	return merged, nil
}

func locator(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// filterChanges applies the optional change predicate. Hook failures count
// as changes: a broken filter must not wedge the loop into never restarting.
func filterChanges(paths []string, pred *hook.Predicate, logger *slog.Logger) []string {
	if pred == nil {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		trigger, err := pred.Eval(p)
		if err != nil {
			logger.Warn("change filter failed, keeping change", "path", p, "error", err)
			out = append(out, p)
			continue
		}
		if trigger {
			out = append(out, p)
		}
	}
	return out
}
