package spacemeta

import (
	"bytes"
	"strings"
	"testing"
)

func TestParse_FullBlock(t *testing.T) {
	readme := []byte(`---
title: Demo App
emoji: "🚀"
sdk: gradio
sdk_version: "4.0"
app_file: app.py
license: mit
---

# Demo App
`)
	m, found, err := Parse(readme)
	if err != nil || !found {
		t.Fatalf("unexpected: %v %v", found, err)
	}
	if m.Title != "Demo App" || m.SDK != "gradio" || m.SDKVersion != "4.0" || m.AppFile != "app.py" || m.License != "mit" {
		t.Fatalf("unexpected meta: %+v", m)
	}
}

func TestParse_NoBlock(t *testing.T) {
	_, found, err := Parse([]byte("# Just a readme\n"))
	if err != nil || found {
		t.Fatalf("unexpected: %v %v", found, err)
	}
}

func TestParse_UnclosedBlock(t *testing.T) {
	_, found, err := Parse([]byte("---\ntitle: x\n"))
	if err != nil || found {
		t.Fatalf("unclosed block should read as no block: %v %v", found, err)
	}
}

func TestParse_UnknownKeysTolerated(t *testing.T) {
	m, found, err := Parse([]byte("---\ntitle: x\ncolorFrom: red\npinned: false\n---\n"))
	if err != nil || !found {
		t.Fatalf("unexpected: %v %v", found, err)
	}
	if m.Title != "x" {
		t.Fatalf("unexpected meta: %+v", m)
	}
}

func TestParse_NonMappingRejected(t *testing.T) {
	_, found, err := Parse([]byte("---\n- a\n- b\n---\n"))
	if !found || err == nil || err.Error() != "invalid front matter: top-level must be mapping" {
		t.Fatalf("unexpected: %v %v", found, err)
	}
}

func TestParse_WrongKindRejected(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: [a, b]\n---\n"))
	if err == nil || err.Error() != "invalid front matter: invalid type for field: title" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarshal_CanonicalAndStable(t *testing.T) {
	m := Meta{Title: "Demo", SDK: "gradio", SDKVersion: "v4", AppFile: "app.py", License: "mit"}
	b1, err := m.Marshal()
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	b2, err := m.Marshal()
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatalf("not rewrite-stable\nfirst:\n%s\nsecond:\n%s", string(b1), string(b2))
	}
	want := "---\napp_file: app.py\nlicense: mit\nsdk: gradio\nsdk_version: v4\ntitle: Demo\n---\n"
	if string(b1) != want {
		t.Fatalf("unexpected canonical output\nwant:\n%s\ngot:\n%s", want, string(b1))
	}
}

func TestMarshal_EmptyFieldsDropped(t *testing.T) {
	m := Meta{Title: "Demo", AppFile: "app.py"}
	b, err := m.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	if strings.Contains(got, "sdk") || strings.Contains(got, "license") || strings.Contains(got, "emoji") {
		t.Fatalf("empty fields leaked: %s", got)
	}
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	m := Meta{Title: "Demo", Emoji: "🚀", SDK: "static", SDKVersion: "4.0", AppFile: "index.html"}
	b, err := m.ReadmeBytes()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, found, err := Parse(b)
	if err != nil || !found {
		t.Fatalf("unexpected: %v %v", found, err)
	}
	if got != m {
		t.Fatalf("round trip drift: %+v vs %+v", got, m)
	}
}

func TestDefault_DetectsSDK(t *testing.T) {
	m := Default("acme/demo", "app.py")
	if m.Title != "demo" || m.SDK != "gradio" || m.AppFile != "app.py" || m.Emoji == "" {
		t.Fatalf("unexpected default: %+v", m)
	}
	m = Default("acme/site", "index.html")
	if m.SDK != "static" {
		t.Fatalf("unexpected sdk: %+v", m)
	}
}
