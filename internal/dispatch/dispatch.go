// Package dispatch routes the raw argument vector of a bennu invocation to
// exactly one of the two collaborators: upload when the first argument is the
// literal upload token, reload otherwise. The vector passes through untouched;
// argument parsing belongs to the collaborators.
package dispatch

import "context"

// Kind is the route chosen for an argument vector.
type Kind int

const (
	// KindInvalid marks an empty vector. No collaborator runs.
	KindInvalid Kind = iota
	// KindUpload routes to the upload collaborator.
	KindUpload
	// KindReload routes to the reload collaborator.
	KindReload
)

// uploadToken must match the first argument exactly. Case variants and
// superstrings are app file paths as far as routing is concerned.
const uploadToken = "--upload"

// Invocation is a classified argument vector. Args is the original vector,
// order and contents preserved, routing token included for uploads.
type Invocation struct {
	Kind Kind
	Args []string
}

// Classify decides the route for an argument vector (program name excluded).
func Classify(args []string) Invocation {
	if len(args) == 0 {
		return Invocation{Kind: KindInvalid}
	}
	if args[0] == uploadToken {
		return Invocation{Kind: KindUpload, Args: args}
	}
	return Invocation{Kind: KindReload, Args: args}
}

// Collaborator receives the full argument vector of the invocation that
// selected it, including the element that routed to it.
type Collaborator func(ctx context.Context, args []string) error

// Dispatcher holds the two collaborators. Both must be set before Run.
type Dispatcher struct {
	Upload Collaborator
	Reload Collaborator
}

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }
func (e usageError) ExitCode() int { return exitCodeUsage }

const exitCodeUsage = 2

// ErrNoFile rejects the empty invocation. The message text is part of the
// CLI contract; do not reword it.
var ErrNoFile error = usageError{msg: "No file specified."}

// Run classifies args and invokes at most one collaborator with the unmodified
// vector. Collaborator errors are returned as-is.
func (d Dispatcher) Run(ctx context.Context, args []string) error {
	inv := Classify(args)
	switch inv.Kind {
	case KindUpload:
		return d.Upload(ctx, inv.Args)
	case KindReload:
		return d.Reload(ctx, inv.Args)
	default:
		return ErrNoFile
	}
}
