package scan

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func locators(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Rel)
	}
	return out
}

func assertLocators(t *testing.T, entries []Entry, want ...string) {
	t.Helper()
	got := locators(entries)
	if len(got) != len(want) {
		t.Fatalf("unexpected locators: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected locators: %v", got)
		}
	}
}

func TestWalk_SortedRegularFiles(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, "b.txt", "b")
	writeFile(t, d, "a.txt", "aa")
	writeFile(t, d, "sub/c.txt", "ccc")
	entries, problems, err := Walk(d, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	assertLocators(t, entries, "a.txt", "b.txt", "sub/c.txt")
	if entries[0].Size != 2 || entries[1].Size != 1 {
		t.Fatalf("unexpected sizes: %+v", entries[:2])
	}
}

func TestWalk_GitignoreRespected(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, ".gitignore", "*.log\nbuild/\n")
	writeFile(t, d, "app.py", "x")
	writeFile(t, d, "debug.log", "x")
	writeFile(t, d, "build/out.txt", "x")
	writeFile(t, d, "sub/trace.log", "x")
	entries, _, err := Walk(d, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, "app.py")
}

func TestWalk_NestedGitignoreScopedToSubtree(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, "sub/.gitignore", "*.tmp\n")
	writeFile(t, d, "keep.tmp", "x")
	writeFile(t, d, "sub/drop.tmp", "x")
	writeFile(t, d, "sub/keep.txt", "x")
	entries, _, err := Walk(d, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, "keep.tmp", "sub/keep.txt")
}

func TestWalk_NoGitignore(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, ".gitignore", "*.log\n")
	writeFile(t, d, "debug.log", "x")
	entries, _, err := Walk(d, Options{NoGitignore: true, IncludeGitignoreFiles: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, ".gitignore", "debug.log")
}

func TestWalk_GitDirAlwaysSkipped(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, d, "app.py", "x")
	entries, _, err := Walk(d, Options{NoGitignore: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, "app.py")
}

func TestWalk_GitignoreFilesHiddenByDefault(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, ".gitignore", "")
	writeFile(t, d, "app.py", "x")
	entries, _, err := Walk(d, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, "app.py")

	entries, _, err = Walk(d, Options{IncludeGitignoreFiles: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, ".gitignore", "app.py")
}

func TestWalk_ExcludeGlobs(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, "app.py", "x")
	writeFile(t, d, "notes.tmp", "x")
	writeFile(t, d, "sub/cache.tmp", "x")
	writeFile(t, d, "secret/key.pem", "x")
	entries, _, err := Walk(d, Options{Exclude: []string{"*.tmp", "secret/"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, "app.py")
}

func TestWalk_SymlinkedDirSkippedByDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks unavailable")
	}
	d := t.TempDir()
	writeFile(t, d, "real/inner.txt", "x")
	if err := os.Symlink(filepath.Join(d, "real"), filepath.Join(d, "alias")); err != nil {
		t.Skipf("symlink: %v", err)
	}
	entries, _, err := Walk(d, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLocators(t, entries, "real/inner.txt")
}

func TestWalk_FollowSymlinksVisitsOnce(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks unavailable")
	}
	d := t.TempDir()
	writeFile(t, d, "real/inner.txt", "x")
	if err := os.Symlink(filepath.Join(d, "real"), filepath.Join(d, "alias")); err != nil {
		t.Skipf("symlink: %v", err)
	}
	entries, _, err := Walk(d, Options{FollowSymlinks: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The canonical target is visited once; the later alias resolves to the
	// same canonical dir and is dropped.
	assertLocators(t, entries, "real/inner.txt")
}

func TestWalk_MissingRootFails(t *testing.T) {
	_, _, err := Walk(filepath.Join(t.TempDir(), "absent"), Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestWalk_MissingRootKeepGoingRecordsProblem(t *testing.T) {
	_, problems, err := Walk(filepath.Join(t.TempDir(), "absent"), Options{KeepGoing: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
}
