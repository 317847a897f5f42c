package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Handler matches inbound message content against the registered command set
// and routes outcomes through the Platform hooks passed to Handle.
//
// Configuration is write-once: call the setters before any listener starts
// delivering messages, then Validate. Handle itself never blocks and never
// runs a command body on the calling goroutine.
type Handler[M any] struct {
	mu           sync.RWMutex
	staticPrefix string
	provider     PrefixProvider[M]
	restrictions map[string]Restriction[M]
	commands     map[string]Command[M]
}

// NewHandler creates a handler with the given static prefix, falling back to
// DefaultPrefix when empty.
func NewHandler[M any](prefix string) *Handler[M] {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Handler[M]{
		staticPrefix: prefix,
		restrictions: make(map[string]Restriction[M]),
		commands:     make(map[string]Command[M]),
	}
}

// SetAvailableRestrictions registers the restrictions commands may reference
// by name. A duplicate name is an error.
func (h *Handler[M]) SetAvailableRestrictions(restrictions ...Restriction[M]) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range restrictions {
		if r == nil {
			continue
		}
		name := r.Name()
		if name == "" {
			return fmt.Errorf("restriction with empty name")
		}
		if _, exists := h.restrictions[name]; exists {
			return fmt.Errorf("duplicate restriction %q", name)
		}
		h.restrictions[name] = r
	}
	return nil
}

// SetCommands registers the command set. An alias claimed by two commands or
// a command without aliases is an error.
func (h *Handler[M]) SetCommands(commands ...Command[M]) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		aliases := cmd.Aliases()
		if len(aliases) == 0 {
			return fmt.Errorf("command registered without aliases")
		}
		for _, alias := range aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				return fmt.Errorf("command registered with empty alias")
			}
			if _, exists := h.commands[key]; exists {
				return fmt.Errorf("duplicate command alias %q", key)
			}
			h.commands[key] = cmd
		}
	}
	return nil
}

// SetCustomPrefixProvider installs per-message prefix resolution. When the
// provider returns an empty prefix the static prefix applies.
func (h *Handler[M]) SetCustomPrefixProvider(provider PrefixProvider[M]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.provider = provider
}

// Validate checks that every restriction name referenced by a registered
// command resolves to an available restriction. Adapters call this at
// startup so misconfiguration fails fast instead of denying at dispatch
// time.
func (h *Handler[M]) Validate() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for alias, cmd := range h.commands {
		for _, name := range cmd.Restrictions() {
			if _, ok := h.restrictions[name]; !ok {
				return fmt.Errorf("command %q references unknown restriction %q", alias, name)
			}
		}
	}
	return nil
}

// Handle dispatches one inbound message. content is the raw message text;
// message is the opaque platform handle passed through to hooks and the
// command body untouched. Handle returns before any command body runs.
func (h *Handler[M]) Handle(platform Platform[M], message M, content string) {
	if platform == nil {
		return
	}

	prefix := h.prefixFor(message)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return
	}

	alias, params := splitAlias(content[len(prefix):])
	if alias == "" {
		return
	}

	h.mu.RLock()
	cmd, found := h.commands[strings.ToLower(alias)]
	h.mu.RUnlock()

	if !found {
		platform.FireCommandNotFoundEvent(message, prefix, alias)
		return
	}
	if !h.allowed(cmd, message) {
		platform.FireCommandNotAllowedEvent(message, prefix, alias)
		return
	}

	inv := &Invocation[M]{
		Message: message,
		Prefix:  prefix,
		Alias:   alias,
		Params:  params,
		Args:    splitArgs(params),
	}
	platform.ExecuteAsync(message, func(ctx context.Context) error {
		return cmd.Execute(ctx, inv)
	})
}

func (h *Handler[M]) prefixFor(message M) string {
	h.mu.RLock()
	provider := h.provider
	static := h.staticPrefix
	h.mu.RUnlock()

	if provider != nil {
		if prefix := provider.PrefixFor(message); prefix != "" {
			return prefix
		}
	}
	return static
}

func (h *Handler[M]) allowed(cmd Command[M], message M) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, name := range cmd.Restrictions() {
		r, ok := h.restrictions[name]
		if !ok {
			// Unresolved names deny rather than allow; Validate reports
			// them at startup.
			return false
		}
		if !r.Allowed(message) {
			return false
		}
	}
	return true
}

func splitAlias(rest string) (alias, params string) {
	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		return "", ""
	}
	if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
		return rest[:i], strings.TrimLeft(rest[i+1:], " \t")
	}
	return rest, ""
}
