// Package scan walks a project tree and reports its regular files. The walk
// honors .gitignore files (via the go-git matcher), never enters .git, visits
// symlinked directories at most once, and applies caller exclusion globs with
// gitignore semantics. Both the reload watcher and the upload packer build on
// the same walk so a path means the same thing in both.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	gitgitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Entry is one regular file found by a walk. Rel is the slash-separated
// locator relative to the walk root.
type Entry struct {
	Rel     string
	Size    int64
	ModTime time.Time
}

// Problem is a non-fatal walk error recorded in keep-going mode.
type Problem struct {
	Path    string
	Message string
}

// Options control a walk.
type Options struct {
	// NoGitignore disables .gitignore handling.
	NoGitignore bool
	// Exclude holds additional exclusion globs, matched with gitignore
	// semantics against the locator.
	Exclude []string
	// FollowSymlinks lets the walk descend into symlinked directories.
	// Cycles are broken by a canonical-path visit set either way.
	FollowSymlinks bool
	// IncludeGitignoreFiles returns .gitignore files as entries instead of
	// hiding them. Their patterns are honored regardless.
	IncludeGitignoreFiles bool
	// KeepGoing records per-path errors as Problems instead of failing the
	// walk on the first one.
	KeepGoing bool
}

// Walk returns the regular files under root, sorted by locator.
func Walk(root string, opts Options) ([]Entry, []Problem, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}
	w := &walker{
		absRoot: absRoot,
		opts:    opts,
		exclude: compileExcludes(opts.Exclude),
		visited: map[string]struct{}{},
	}
	if err := w.walkDir(absRoot, nil); err != nil {
		return nil, nil, err
	}
	sort.Slice(w.entries, func(i, j int) bool { return w.entries[i].Rel < w.entries[j].Rel })
	return w.entries, w.problems, nil
}

type walker struct {
	absRoot  string
	opts     Options
	exclude  gitgitignore.Matcher
	visited  map[string]struct{}
	entries  []Entry
	problems []Problem
}

func (w *walker) displayPath(p string) string {
	rel, err := filepath.Rel(w.absRoot, p)
	if err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}

// report records err for p, or converts it into a fatal walk error when
// keep-going is off.
func (w *walker) report(p string, err error) error {
	if w.opts.KeepGoing {
		w.problems = append(w.problems, Problem{Path: w.displayPath(p), Message: err.Error()})
		return nil
	}
	return fmt.Errorf("scan: %s: %v", w.displayPath(p), err)
}

func (w *walker) walkDir(dirPath string, inherited []gitgitignore.Pattern) error {
	canonDir, err := filepath.EvalSymlinks(dirPath)
	if err != nil {
		return w.report(dirPath, err)
	}
	if _, ok := w.visited[canonDir]; ok {
		return nil
	}
	w.visited[canonDir] = struct{}{}

	patterns := inherited
	if !w.opts.NoGitignore {
		patterns = appendGitignorePatterns(inherited, w.absRoot, w.displayPath(dirPath))
	}
	matcher := gitgitignore.NewMatcher(patterns)

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return w.report(dirPath, err)
	}

	var symlinkDirs []string
	for _, ent := range entries {
		name := ent.Name()
		childPath := filepath.Join(dirPath, name)
		rel, err := filepath.Rel(w.absRoot, childPath)
		if err != nil {
			if err := w.report(childPath, err); err != nil {
				return err
			}
			continue
		}

		info, err := os.Lstat(childPath)
		if err != nil {
			if err := w.report(childPath, err); err != nil {
				return err
			}
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			targetInfo, err := os.Stat(childPath)
			if err != nil {
				if err := w.report(childPath, err); err != nil {
					return err
				}
				continue
			}
			if targetInfo.IsDir() {
				if w.opts.FollowSymlinks {
					symlinkDirs = append(symlinkDirs, childPath)
				}
				continue
			}
			info = targetInfo
		}

		if info.IsDir() {
			if name == ".git" {
				continue
			}
			if w.ignored(matcher, rel, true) || w.excludedDir(rel) {
				continue
			}
			if err := w.walkDir(childPath, patterns); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if name == ".gitignore" && !w.opts.IncludeGitignoreFiles {
			continue
		}
		if w.ignored(matcher, rel, false) {
			continue
		}
		locator := filepath.ToSlash(rel)
		if w.excluded(locator) {
			continue
		}
		w.entries = append(w.entries, Entry{Rel: locator, Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.Strings(symlinkDirs)
	for _, symlinkDir := range symlinkDirs {
		rel, err := filepath.Rel(w.absRoot, symlinkDir)
		if err != nil {
			if err := w.report(symlinkDir, err); err != nil {
				return err
			}
			continue
		}
		if w.ignored(matcher, rel, true) || w.excludedDir(rel) {
			continue
		}
		if err := w.walkDir(symlinkDir, patterns); err != nil {
			return err
		}
	}
	return nil
}
