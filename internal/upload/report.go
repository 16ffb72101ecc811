package upload

import (
	"bytes"
	"io"
	"sort"

	"github.com/flarebyte/bennu/internal/jsonline"
	"github.com/flarebyte/bennu/internal/scan"
)

// report is the single JSON line printed after a successful upload.
type report struct {
	OK       bool   `json:"ok"`
	Space    string `json:"space"`
	URL      string `json:"url"`
	Files    int    `json:"files"`
	Bytes    int64  `json:"bytes"`
	Commit   string `json:"commit"`
	UpToDate bool   `json:"upToDate,omitempty"`
}

// planLine is one NDJSON line of the --dry-run packaging plan.
type planLine struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

func writeReport(w io.Writer, r report) error {
	return jsonline.Write(w, r)
}

// writeDryRunPlan prints one line per file that would be uploaded, in locator
// order.
func writeDryRunPlan(w io.Writer, entries []scan.Entry, synthesizedReadme []byte) error {
	lines := make([]planLine, 0, len(entries)+1)
	for _, e := range entries {
		lines = append(lines, planLine{Path: e.Rel, Bytes: e.Size})
	}
	if synthesizedReadme != nil {
		lines = append(lines, planLine{Path: readmeName, Bytes: int64(len(synthesizedReadme))})
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
	_, err := w.Write(all.Bytes())
	return err
}
