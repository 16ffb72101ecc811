package upload

import (
	"strings"
	"testing"

	"github.com/flarebyte/bennu/internal/spacemeta"
)

func TestResolveReadme_ValidFrontMatter(t *testing.T) {
	d := writeProject(t, map[string]string{
		"app.py":    "x\n",
		"README.md": "---\ntitle: Demo\nsdk: gradio\napp_file: app.py\n---\n# Demo\n",
	})
	entries, err := collectFiles(Options{Dir: d})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	synthesized, err := resolveReadme(Options{Dir: d, Space: "acme/demo"}, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synthesized != nil {
		t.Fatalf("expected no synthesis")
	}
}

func TestResolveReadme_AppFileNotCollected(t *testing.T) {
	d := writeProject(t, map[string]string{
		"main.py":   "x\n",
		"README.md": "---\ntitle: Demo\napp_file: app.py\n---\n",
	})
	entries, err := collectFiles(Options{Dir: d})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	_, err = resolveReadme(Options{Dir: d, Space: "acme/demo"}, entries)
	if err == nil || !strings.Contains(err.Error(), `app_file "app.py" is not among the collected files`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveReadme_MissingFrontMatter(t *testing.T) {
	d := writeProject(t, map[string]string{
		"app.py":    "x\n",
		"README.md": "# Demo\n",
	})
	entries, err := collectFiles(Options{Dir: d})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	_, err = resolveReadme(Options{Dir: d, Space: "acme/demo"}, entries)
	if err == nil || !strings.Contains(err.Error(), "README.md has no front matter") {
		t.Fatalf("unexpected error: %v", err)
	}

	synthesized, err := resolveReadme(Options{Dir: d, Space: "acme/demo", AllowDirty: true}, entries)
	if err != nil || synthesized != nil {
		t.Fatalf("allowDirty should accept as-is: %v", err)
	}
}

func TestResolveReadme_SynthesizesWhenAbsent(t *testing.T) {
	d := writeProject(t, map[string]string{"app.py": "x\n"})
	entries, err := collectFiles(Options{Dir: d})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	synthesized, err := resolveReadme(Options{Dir: d, Space: "acme/demo"}, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meta, found, err := spacemeta.Parse(synthesized)
	if err != nil || !found {
		t.Fatalf("synthesized README unreadable: %v", err)
	}
	if meta.Title != "demo" || meta.SDK != "gradio" || meta.AppFile != "app.py" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestResolveReadme_AbsentWithAllowDirty(t *testing.T) {
	d := writeProject(t, map[string]string{"app.py": "x\n"})
	entries, err := collectFiles(Options{Dir: d})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	synthesized, err := resolveReadme(Options{Dir: d, Space: "acme/demo", AllowDirty: true}, entries)
	if err != nil || synthesized != nil {
		t.Fatalf("allowDirty should skip synthesis: %v", err)
	}
}
