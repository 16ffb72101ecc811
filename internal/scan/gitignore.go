package scan

import (
	"os"
	"path/filepath"
	"strings"

	gitgitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// appendGitignorePatterns reads the .gitignore in dir (relative to absRoot,
// "." for the root) and appends its patterns, anchored at dir, to inherited.
// The inherited slice is never mutated; deeper directories extend their own
// copy so sibling subtrees stay independent.
func appendGitignorePatterns(inherited []gitgitignore.Pattern, absRoot, dir string) []gitgitignore.Pattern {
	giPath := filepath.Join(absRoot, filepath.FromSlash(dir), ".gitignore")
	b, err := os.ReadFile(giPath)
	if err != nil {
		return inherited
	}
	var base []string
	if dir != "." && dir != "" {
		base = strings.Split(dir, "/")
	}
	out := inherited[:len(inherited):len(inherited)]
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, gitgitignore.ParsePattern(line, base))
	}
	return out
}

// ignored reports whether rel (OS-separated, relative to the walk root)
// matches the accumulated .gitignore patterns.
func (w *walker) ignored(m gitgitignore.Matcher, rel string, isDir bool) bool {
	if w.opts.NoGitignore {
		return false
	}
	var comps []string
	if rel != "." && rel != "" {
		comps = strings.Split(rel, string(os.PathSeparator))
	}
	return m.Match(comps, isDir)
}

// compileExcludes turns caller exclusion globs into a gitignore-semantics
// matcher rooted at the walk root. Empty input yields a matcher that matches
// nothing.
func compileExcludes(globs []string) gitgitignore.Matcher {
	patterns := make([]gitgitignore.Pattern, 0, len(globs))
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" || strings.HasPrefix(g, "#") {
			continue
		}
		patterns = append(patterns, gitgitignore.ParsePattern(g, nil))
	}
	return gitgitignore.NewMatcher(patterns)
}

func (w *walker) excluded(locator string) bool {
	return w.exclude.Match(strings.Split(locator, "/"), false)
}

func (w *walker) excludedDir(rel string) bool {
	return w.exclude.Match(strings.Split(filepath.ToSlash(rel), "/"), true)
}
