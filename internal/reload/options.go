package reload

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flarebyte/bennu/internal/argv"
	"github.com/flarebyte/bennu/internal/config"
	"github.com/flarebyte/bennu/internal/hook"
)

const (
	defaultPoll  = 500 * time.Millisecond
	defaultGrace = 3 * time.Second
)

const exitCodeUsage = 2

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }
func (e usageError) ExitCode() int { return exitCodeUsage }

// runnerByExt maps app file extensions to the program that executes them.
// Files with no entry here must be executable themselves.
var runnerByExt = map[string][]string{
	".py":  {"python3"},
	".js":  {"node"},
	".mjs": {"node"},
	".rb":  {"ruby"},
	".lua": {"lua"},
	".sh":  {"sh"},
	".go":  {"go", "run"},
}

// Options are the fully resolved inputs of one reload loop.
type Options struct {
	File       string
	AbsFile    string
	Dir        string
	WatchPaths []string
	Runner     []string
	Poll       time.Duration
	Grace      time.Duration
	StatusPort int
	Check      bool
	Ignore     []string
	Filter     *hook.Predicate
	Env        map[string]string
	LogLevel   slog.Level
	Stdout     io.Writer
	LogOutput  io.Writer
}

type cliArgs struct {
	file       string
	watchPaths []string
	configPath string
	runner     string
	poll       time.Duration
	grace      time.Duration
	statusPort int
	check      bool
}

// parseArgs reads the vector the dispatcher passed through: the app file
// first, then extra watch paths, with flags anywhere.
func parseArgs(args []string) (cliArgs, error) {
	var a cliArgs
	fs := flag.NewFlagSet("bennu reload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.configPath, "config", "", "path to project config (.cue)")
	fs.StringVar(&a.runner, "runner", "", "program used to execute the app file")
	fs.DurationVar(&a.poll, "poll", 0, "watch poll interval")
	fs.DurationVar(&a.grace, "grace", 0, "termination grace period")
	fs.IntVar(&a.statusPort, "status-port", 0, "status HTTP port (0 disables)")
	fs.BoolVar(&a.check, "check", false, "print the watch set and exit")

	positionals, err := argv.ParseInterleaved(fs, args)
	if err != nil {
		return cliArgs{}, usageError{msg: err.Error()}
	}
	if len(positionals) == 0 {
		return cliArgs{}, usageError{msg: "missing app file"}
	}
	a.file = positionals[0]
	a.watchPaths = positionals[1:]
	return a, nil
}

// resolveOptions layers flags over config over defaults and validates the
// app file.
func resolveOptions(a cliArgs, stdout io.Writer) (Options, error) {
	cfg, err := config.LoadOptional(a.configPath)
	if err != nil {
		return Options{}, err
	}

	info, err := os.Stat(a.file)
	if err != nil || !info.Mode().IsRegular() {
		return Options{}, fmt.Errorf("no such file: %s", a.file)
	}
	absFile, err := filepath.Abs(a.file)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		File:       a.file,
		AbsFile:    absFile,
		Dir:        filepath.Dir(a.file),
		WatchPaths: append([]string(nil), a.watchPaths...),
		Poll:       a.poll,
		Grace:      a.grace,
		StatusPort: a.statusPort,
		Check:      a.check,
		Ignore:     cfg.Reload.Ignore,
		LogLevel:   slog.LevelInfo,
		Stdout:     stdout,
		LogOutput:  os.Stderr,
	}
	if cfg.Reload.HasWatch {
		opts.WatchPaths = append(opts.WatchPaths, cfg.Reload.Watch...)
	}

	runnerSpec := a.runner
	if runnerSpec == "" && cfg.Reload.HasRunner {
		runnerSpec = cfg.Reload.Runner
	}
	opts.Runner, err = resolveRunner(runnerSpec, a.file, info.Mode())
	if err != nil {
		return Options{}, err
	}

	if opts.Poll == 0 && cfg.Reload.HasPoll {
		opts.Poll = time.Duration(cfg.Reload.PollMs) * time.Millisecond
	}
	if opts.Poll == 0 {
		opts.Poll = defaultPoll
	}
	if opts.Poll < 0 {
		return Options{}, usageError{msg: "poll interval must be positive"}
	}
	if opts.Grace == 0 && cfg.Reload.HasGrace {
		opts.Grace = time.Duration(cfg.Reload.GraceMs) * time.Millisecond
	}
	if opts.Grace == 0 {
		opts.Grace = defaultGrace
	}
	if opts.Grace < 0 {
		return Options{}, usageError{msg: "grace period must be positive"}
	}
	if opts.StatusPort == 0 && cfg.Reload.HasStatusPort {
		opts.StatusPort = cfg.Reload.StatusPort
	}
	if opts.StatusPort < 0 || opts.StatusPort > 65535 {
		return Options{}, usageError{msg: fmt.Sprintf("status port out of range: %d", opts.StatusPort)}
	}

	if cfg.Reload.HasLogLevel {
		opts.LogLevel, err = parseLogLevel(cfg.Reload.LogLevel)
		if err != nil {
			return Options{}, err
		}
	}
	if cfg.Reload.HasFilterInline {
		opts.Filter = hook.NewPredicate("reload filter", cfg.Reload.FilterInline, hook.LimitsFromConfig(cfg.Sandbox))
	}

	opts.Env = map[string]string{}
	for k, v := range cfg.Reload.Env {
		opts.Env[k] = v
	}
	opts.Env["BENNU_RELOAD"] = "1"
	opts.Env["BENNU_APP_FILE"] = absFile

	return opts, nil
}

// resolveRunner turns an explicit runner spec, or the file's extension, into
// the program vector the file is executed with. Empty means exec the file
// itself, which then has to be executable.
func resolveRunner(spec, file string, mode os.FileMode) ([]string, error) {
	if spec != "" {
		return strings.Fields(spec), nil
	}
	if runner, ok := runnerByExt[filepath.Ext(file)]; ok {
		return append([]string(nil), runner...), nil
	}
	if mode.Perm()&0o111 == 0 {
		return nil, fmt.Errorf("no runner known for %s: set --runner or make the file executable", file)
	}
	return nil, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid logLevel: %q", s)
}

// command returns the program and argument list that runs the app file.
func (o Options) command() (string, []string) {
	if len(o.Runner) == 0 {
		return o.AbsFile, nil
	}
	args := append([]string(nil), o.Runner[1:]...)
	args = append(args, o.File)
	return o.Runner[0], args
}
