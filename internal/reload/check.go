package reload

import (
	"bytes"
	"sort"

	"github.com/flarebyte/bennu/internal/jsonline"
)

// checkLine is one NDJSON line of the --check watch-set listing.
type checkLine struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// writeCheck resolves the watch set once and prints it, one line per file.
func writeCheck(opts Options) error {
	snap, err := takeSnapshot(opts)
	if err != nil {
		return err
	}
	lines := make([]checkLine, 0, len(snap))
	for rel, fp := range snap {
		lines = append(lines, checkLine{Path: rel, Bytes: fp.Size})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Path < lines[j].Path })
	var all bytes.Buffer
	for _, l := range lines {
		b, err := jsonline.Encode(l)
		if err != nil {
			return err
		}
		all.Write(b)
	}
	_, err = opts.Stdout.Write(all.Bytes())
	return err
}
