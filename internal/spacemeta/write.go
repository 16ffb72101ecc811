package spacemeta

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"
)

// Marshal returns the canonical front-matter block: sorted keys, two-space
// indent, delimiter lines, exactly one trailing newline. Empty fields are
// dropped.
func (m Meta) Marshal() ([]byte, error) {
	fields := map[string]string{
		"title":       m.Title,
		"emoji":       m.Emoji,
		"sdk":         m.SDK,
		"sdk_version": m.SDKVersion,
		"app_file":    m.AppFile,
		"license":     m.License,
	}
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	top := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		top.Content = append(top.Content, scalarNode(k), scalarNode(fields[k]))
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	out = append(out, []byte(delimiter+"\n")...)
	return out, nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
