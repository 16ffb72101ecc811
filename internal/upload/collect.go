package upload

import (
	"errors"
	"fmt"

	"github.com/flarebyte/bennu/internal/scan"
)

// appFileCandidates are checked in order when synthesizing README metadata.
var appFileCandidates = []string{"app.py", "app.js", "main.py", "main.go", "app.lua", "index.html"}

// collectFiles walks the project dir and returns the files to publish.
// Packaging is exact: walk errors, hook errors and oversized files all fail
// the run.
func collectFiles(opts Options) ([]scan.Entry, error) {
	entries, _, err := scan.Walk(opts.Dir, scan.Options{
		Exclude:               opts.Exclude,
		IncludeGitignoreFiles: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]scan.Entry, 0, len(entries))
	for _, e := range entries {
		if opts.ExcludeHook != nil {
			drop, err := opts.ExcludeHook.Eval(e.Rel)
			if err != nil {
				return nil, err
			}
			if drop {
				continue
			}
		}
		if opts.MaxFileBytes > 0 && e.Size > opts.MaxFileBytes {
			return nil, fmt.Errorf("%s: file exceeds maxFileBytes limit: %d", e.Rel, opts.MaxFileBytes)
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, errors.New("nothing to upload")
	}
	return out, nil
}

func locatorSet(entries []scan.Entry) map[string]struct{} {
	s := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		s[e.Rel] = struct{}{}
	}
	return s
}

func detectAppFile(entries []scan.Entry) string {
	set := locatorSet(entries)
	for _, c := range appFileCandidates {
		if _, ok := set[c]; ok {
			return c
		}
	}
	return ""
}
