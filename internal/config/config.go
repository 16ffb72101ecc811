package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
)

// Package config loads the optional bennu.cue project file. Every section is
// optional; presence flags record which fields the file actually set so the
// collaborators can layer flags over config over defaults.

// Project is the parsed project config.
type Project struct {
	ConfigVersion string
	Reload        Reload
	Upload        Upload
	Sandbox       Sandbox
}

// Load parses and validates a project config file.
// Required field: configVersion (string, supported version).
func Load(path string) (Project, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Project{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Project{}, err
	}
	var p Project
	cv := v.LookupPath(cue.ParsePath("configVersion"))
	if err := cv.Decode(&p.ConfigVersion); err != nil {
		return Project{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if !IsSupportedConfigVersion(p.ConfigVersion) {
		return Project{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", p.ConfigVersion, SupportedConfigVersionsCSV())
	}
	p.Reload = parseReloadSection(v)
	p.Upload = parseUploadSection(v)
	p.Sandbox = parseSandboxSection(v)
	return p, nil
}

// DefaultFile is the project config looked up when no path is given.
const DefaultFile = "bennu.cue"

// LoadOptional loads the named config, or DefaultFile when path is empty.
// An absent DefaultFile is not an error; an explicit path must exist.
func LoadOptional(path string) (Project, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err != nil {
		return Project{}, nil
	}
	return Load(DefaultFile)
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

// Reload holds optional reload-loop config and presence flags.
type Reload struct {
	Watch        []string
	Ignore       []string
	Runner       string
	PollMs       int
	GraceMs      int
	StatusPort   int
	LogLevel     string
	FilterInline string
	Env          map[string]string

	HasSection      bool
	HasWatch        bool
	HasIgnore       bool
	HasRunner       bool
	HasPoll         bool
	HasGrace        bool
	HasStatusPort   bool
	HasLogLevel     bool
	HasFilterInline bool
	HasEnv          bool
}

// Upload holds optional upload config and presence flags.
type Upload struct {
	Endpoint      string
	Space         string
	Message       string
	MaxFileBytes  int
	Exclude       []string
	ExcludeInline string
	AllowDirty    bool

	HasSection       bool
	HasEndpoint      bool
	HasSpace         bool
	HasMessage       bool
	HasMaxFileBytes  bool
	HasExclude       bool
	HasExcludeInline bool
	HasAllowDirty    bool
}

// Sandbox holds optional Lua sandbox limits.
type Sandbox struct {
	TimeoutMs        int
	InstructionLimit int
	MemoryLimitBytes int

	HasSection     bool
	HasTimeout     bool
	HasInstruction bool
	HasMemory      bool
}
