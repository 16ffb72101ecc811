package scan

import (
	"sort"
	"time"
)

// Fingerprint is the change-detection identity of a file. Size plus mtime is
// enough for a dev loop; content hashing would cost a read per file per poll.
type Fingerprint struct {
	Size    int64
	ModTime time.Time
}

// Snapshot is a point-in-time fingerprint of a file set, keyed by locator.
type Snapshot map[string]Fingerprint

// NewSnapshot indexes walk entries by locator.
func NewSnapshot(entries []Entry) Snapshot {
	s := make(Snapshot, len(entries))
	for _, e := range entries {
		s[e.Rel] = Fingerprint{Size: e.Size, ModTime: e.ModTime}
	}
	return s
}

// Changes lists the locators that differ between two snapshots, each slice
// sorted.
type Changes struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Diff compares s against next.
func (s Snapshot) Diff(next Snapshot) Changes {
	var c Changes
	for rel, fp := range s {
		nfp, ok := next[rel]
		if !ok {
			c.Removed = append(c.Removed, rel)
			continue
		}
		if nfp.Size != fp.Size || !nfp.ModTime.Equal(fp.ModTime) {
			c.Modified = append(c.Modified, rel)
		}
	}
	for rel := range next {
		if _, ok := s[rel]; !ok {
			c.Added = append(c.Added, rel)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Removed)
	sort.Strings(c.Modified)
	return c
}

// Empty reports whether no file changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Paths returns every affected locator, sorted and deduplicated.
func (c Changes) Paths() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(c.Added)+len(c.Removed)+len(c.Modified))
	for _, group := range [][]string{c.Added, c.Removed, c.Modified} {
		for _, p := range group {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
