// Package commands provides the commands herald ships with: a connectivity
// check, an echo, and static response commands declared in configuration.
// All of them are platform-agnostic; replying is delegated to a ReplyFunc
// supplied by the hosting wiring.
package commands

import (
	"context"
	"errors"

	"github.com/castorie/herald/internal/command"
)

// ReplyFunc sends text back to wherever message came from.
type ReplyFunc[M any] func(ctx context.Context, message M, text string) error

// Static is a command that answers every invocation with a fixed response.
type Static[M any] struct {
	name         string
	aliases      []string
	restrictions []string
	response     string
	reply        ReplyFunc[M]
}

// NewStatic builds a static response command. name becomes the primary
// alias.
func NewStatic[M any](name string, aliases []string, restrictions []string, response string, reply ReplyFunc[M]) *Static[M] {
	return &Static[M]{
		name:         name,
		aliases:      aliases,
		restrictions: restrictions,
		response:     response,
		reply:        reply,
	}
}

// Aliases returns the primary name followed by any extra aliases.
func (s *Static[M]) Aliases() []string {
	return append([]string{s.name}, s.aliases...)
}

func (s *Static[M]) Restrictions() []string { return s.restrictions }

func (s *Static[M]) Execute(ctx context.Context, inv *command.Invocation[M]) error {
	if s.reply == nil {
		return errors.New("static command has no reply function")
	}
	return s.reply(ctx, inv.Message, s.response)
}

// Ping answers "pong", the traditional liveness check.
func Ping[M any](reply ReplyFunc[M]) command.Command[M] {
	return NewStatic("ping", nil, nil, "pong", reply)
}

// Echo repeats the invocation parameters back verbatim.
type Echo[M any] struct {
	reply ReplyFunc[M]
}

// NewEcho builds the echo command.
func NewEcho[M any](reply ReplyFunc[M]) *Echo[M] {
	return &Echo[M]{reply: reply}
}

func (e *Echo[M]) Aliases() []string      { return []string{"echo", "say"} }
func (e *Echo[M]) Restrictions() []string { return nil }

func (e *Echo[M]) Execute(ctx context.Context, inv *command.Invocation[M]) error {
	if e.reply == nil {
		return errors.New("echo command has no reply function")
	}
	if inv.Params == "" {
		return nil
	}
	return e.reply(ctx, inv.Message, inv.Params)
}
