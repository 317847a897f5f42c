// Package command is the platform-agnostic dispatch core. It parses inbound
// message content against a registered command set, applies restrictions, and
// hands matched commands to the hosting platform adapter for asynchronous
// execution. It knows nothing about any concrete chat platform: the message
// type is an opaque handle threaded through generics, and all outward effects
// go through the Platform hooks the adapter supplies.
package command

import (
	"context"
	"strings"

	"github.com/google/shlex"
)

// Command is one invocable chat command, generic over the platform message
// type M.
type Command[M any] interface {
	// Aliases returns the names the command answers to. Matching is
	// case-insensitive. At least one alias is required.
	Aliases() []string

	// Restrictions returns the names of the restrictions that must all
	// allow a message before the command may run. Names are resolved
	// against the handler's available restrictions. Empty means
	// unrestricted.
	Restrictions() []string

	// Execute runs the command body. It is always called off the
	// event-delivery goroutine.
	Execute(ctx context.Context, inv *Invocation[M]) error
}

// Invocation carries everything a command body needs about one triggering
// message.
type Invocation[M any] struct {
	// Message is the platform message the invocation originated from.
	Message M
	// Prefix is the resolved command prefix the message used.
	Prefix string
	// Alias is the alias the command was invoked under, as typed.
	Alias string
	// Params is the raw parameter text following the alias.
	Params string
	// Args is Params split into tokens. Quoting is honored where the
	// parameter text is well formed; otherwise it degrades to plain
	// whitespace splitting.
	Args []string
}

// ExecutionUnit is a matched command body ready to run, produced by the core
// and scheduled by a platform adapter.
type ExecutionUnit func(ctx context.Context) error

// Platform is the set of hooks a platform adapter supplies to the core:
// outward notifications for unmatched or denied commands, and the
// asynchronous execution strategy for matched ones.
type Platform[M any] interface {
	// FireCommandNotFoundEvent reports a prefixed message whose alias
	// matched no registered command. Fire-and-forget.
	FireCommandNotFoundEvent(message M, prefix, alias string)

	// FireCommandNotAllowedEvent reports a matched command denied by its
	// restrictions. Fire-and-forget.
	FireCommandNotAllowedEvent(message M, prefix, alias string)

	// ExecuteAsync schedules unit off the calling goroutine and returns
	// immediately. Errors escaping unit are the adapter's to contain.
	ExecuteAsync(message M, unit ExecutionUnit)
}

func splitArgs(params string) []string {
	if params == "" {
		return nil
	}
	args, err := shlex.Split(params)
	if err != nil {
		return strings.Fields(params)
	}
	return args
}
