package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/bennu/internal/scan"
	"github.com/flarebyte/bennu/internal/spacemeta"
)

const readmeName = "README.md"

// resolveReadme validates existing README front matter or synthesizes a
// README when the project has none. synthesized is nil when the project's
// own README (or allowDirty) covers it.
func resolveReadme(opts Options, entries []scan.Entry) (synthesized []byte, err error) {
	set := locatorSet(entries)
	if _, ok := set[readmeName]; ok {
		b, err := os.ReadFile(filepath.Join(opts.Dir, readmeName))
		if err != nil {
			return nil, err
		}
		meta, found, err := spacemeta.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", readmeName, err)
		}
		if !found {
			if opts.AllowDirty {
				return nil, nil
			}
			return nil, fmt.Errorf("%s has no front matter: add space metadata or set upload.allowDirty", readmeName)
		}
		if meta.AppFile != "" {
			if _, ok := set[meta.AppFile]; !ok {
				return nil, fmt.Errorf("%s: app_file %q is not among the collected files", readmeName, meta.AppFile)
			}
		}
		return nil, nil
	}

	if opts.AllowDirty {
		return nil, nil
	}
	meta := spacemeta.Default(opts.Space, detectAppFile(entries))
	b, err := meta.ReadmeBytes()
	if err != nil {
		return nil, err
	}
	return b, nil
}
