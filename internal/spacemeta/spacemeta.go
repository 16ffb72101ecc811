// Package spacemeta reads and writes the YAML front-matter block a hosting
// space expects at the top of README.md.
package spacemeta

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Meta is the front-matter block of a space README. Empty fields are omitted
// when marshalling.
type Meta struct {
	Title      string
	Emoji      string
	SDK        string
	SDKVersion string
	AppFile    string
	License    string
}

// Parse extracts the leading front-matter block from README bytes. found is
// false when the document carries no block; unknown keys inside the block are
// tolerated, wrong kinds for known keys are not.
func Parse(b []byte) (Meta, bool, error) {
	block, ok := frontMatterBlock(b)
	if !ok {
		return Meta{}, false, nil
	}
	var y any
	if err := yaml.Unmarshal(block, &y); err != nil {
		return Meta{}, true, fmt.Errorf("invalid front matter: %v", err)
	}
	if y == nil {
		return Meta{}, true, nil
	}
	ym, ok := y.(map[string]any)
	if !ok {
		return Meta{}, true, fmt.Errorf("invalid front matter: top-level must be mapping")
	}
	var m Meta
	for key, dst := range map[string]*string{
		"title":       &m.Title,
		"emoji":       &m.Emoji,
		"sdk":         &m.SDK,
		"sdk_version": &m.SDKVersion,
		"app_file":    &m.AppFile,
		"license":     &m.License,
	} {
		v, ok := ym[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return Meta{}, true, fmt.Errorf("invalid front matter: invalid type for field: %s", key)
		}
		*dst = s
	}
	return m, true, nil
}

// frontMatterBlock returns the bytes between the leading delimiter lines.
func frontMatterBlock(b []byte) ([]byte, bool) {
	s := string(b)
	s = strings.TrimPrefix(s, "\ufeff")
	lines := strings.Split(s, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != delimiter {
		return nil, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == delimiter {
			return []byte(strings.Join(lines[1:i], "\n")), true
		}
	}
	return nil, false
}

// Default synthesizes metadata for a space id and detected app file.
func Default(space, appFile string) Meta {
	name := space
	if i := strings.LastIndex(space, "/"); i >= 0 {
		name = space[i+1:]
	}
	sdk := "static"
	if strings.HasSuffix(appFile, ".py") {
		sdk = "gradio"
	}
	return Meta{Title: name, Emoji: "🚀", SDK: sdk, AppFile: appFile}
}

// ReadmeBytes renders a complete README.md: canonical front matter followed
// by a heading.
func (m Meta) ReadmeBytes() ([]byte, error) {
	block, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(block)
	buf.WriteString("\n# " + m.Title + "\n")
	return buf.Bytes(), nil
}
