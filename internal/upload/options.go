package upload

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/flarebyte/bennu/internal/argv"
	"github.com/flarebyte/bennu/internal/config"
	"github.com/flarebyte/bennu/internal/hook"
)

const (
	defaultEndpoint     = "https://huggingface.co"
	defaultTokenEnv     = "BENNU_TOKEN"
	defaultMaxFileBytes = 10485760
)

const exitCodeUsage = 2

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }
func (e usageError) ExitCode() int { return exitCodeUsage }

// Options are the fully resolved inputs of one upload run.
type Options struct {
	Space        string
	Dir          string
	Endpoint     string
	Message      string
	TokenEnv     string
	Token        string
	DryRun       bool
	MaxFileBytes int64
	Exclude      []string
	ExcludeHook  *hook.Predicate
	AllowDirty   bool
	Stdout       io.Writer
}

// cliArgs are the raw values parsed from the argument vector.
type cliArgs struct {
	configPath string
	message    string
	endpoint   string
	tokenEnv   string
	dryRun     bool
	space      string
	dir        string
}

// parseArgs reads the vector the dispatcher passed through. args[0] is the
// routing token and is skipped; flags and positionals may be interleaved.
func parseArgs(args []string) (cliArgs, error) {
	if len(args) > 0 && args[0] == "--upload" {
		args = args[1:]
	}
	var a cliArgs
	fs := flag.NewFlagSet("bennu --upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.configPath, "config", "", "path to project config (.cue)")
	fs.StringVar(&a.message, "message", "", "commit message")
	fs.StringVar(&a.endpoint, "endpoint", "", "hosting endpoint URL")
	fs.StringVar(&a.tokenEnv, "token-env", "", "name of the env var holding the access token")
	fs.BoolVar(&a.dryRun, "dry-run", false, "print the packaging plan and exit")

	positionals, err := argv.ParseInterleaved(fs, args)
	if err != nil {
		return cliArgs{}, usageError{msg: err.Error()}
	}
	if len(positionals) > 2 {
		return cliArgs{}, usageError{msg: fmt.Sprintf("unexpected argument: %s", positionals[2])}
	}
	if len(positionals) > 0 {
		a.space = positionals[0]
	}
	if len(positionals) > 1 {
		a.dir = positionals[1]
	}
	return a, nil
}

// resolveOptions layers flags over config over defaults.
func resolveOptions(a cliArgs, stdout io.Writer) (Options, error) {
	cfg, err := config.LoadOptional(a.configPath)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		Space:        a.space,
		Dir:          a.dir,
		Endpoint:     a.endpoint,
		Message:      a.message,
		TokenEnv:     a.tokenEnv,
		DryRun:       a.dryRun,
		MaxFileBytes: defaultMaxFileBytes,
		Stdout:       stdout,
	}
	if opts.Space == "" && cfg.Upload.HasSpace {
		opts.Space = cfg.Upload.Space
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Endpoint == "" {
		if cfg.Upload.HasEndpoint {
			opts.Endpoint = cfg.Upload.Endpoint
		} else {
			opts.Endpoint = defaultEndpoint
		}
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	if opts.Message == "" && cfg.Upload.HasMessage {
		opts.Message = cfg.Upload.Message
	}
	if opts.TokenEnv == "" {
		opts.TokenEnv = defaultTokenEnv
	}
	if cfg.Upload.HasMaxFileBytes {
		opts.MaxFileBytes = int64(cfg.Upload.MaxFileBytes)
	}
	opts.Exclude = cfg.Upload.Exclude
	opts.AllowDirty = cfg.Upload.AllowDirty
	if cfg.Upload.HasExcludeInline {
		opts.ExcludeHook = hook.NewPredicate("upload exclude", cfg.Upload.ExcludeInline, hook.LimitsFromConfig(cfg.Sandbox))
	}

	if err := validateSpaceID(opts.Space); err != nil {
		return Options{}, err
	}
	opts.Token = os.Getenv(opts.TokenEnv)
	if opts.Token == "" && !opts.DryRun {
		return Options{}, usageError{msg: fmt.Sprintf("missing access token: set $%s", opts.TokenEnv)}
	}
	return opts, nil
}

func validateSpaceID(space string) error {
	if space == "" {
		return usageError{msg: "missing space id (owner/name)"}
	}
	parts := strings.Split(space, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return usageError{msg: fmt.Sprintf("invalid space id: %q (expected owner/name)", space)}
	}
	return nil
}
