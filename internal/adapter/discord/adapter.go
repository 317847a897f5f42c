// Package discord bridges Discord message events to the command core. The
// adapter attaches a message-create listener to every supplied session,
// translates each event into a Handle call, and supplies the core's platform
// hooks: not-found/not-allowed notifications over the event bus and
// asynchronous command execution on a per-session worker pool.
package discord

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/castorie/herald/internal/command"
	"github.com/castorie/herald/internal/events"
	"github.com/castorie/herald/internal/logging"
	"github.com/castorie/herald/internal/worker"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

// Client is the part of *discordgo.Session the adapter relies on.
type Client interface {
	AddHandler(handler interface{}) func()
}

var _ Client = (*discordgo.Session)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithSession supplies a single session. May be combined with WithSessions;
// the adapter attaches to the union of both forms.
func WithSession(client Client) Option {
	return func(a *Adapter) {
		a.singles = append(a.singles, client)
	}
}

// WithSessions supplies a session collection, as produced for example by a
// sharded deployment.
func WithSessions(clients ...Client) Option {
	return func(a *Adapter) {
		a.collections = append(a.collections, clients)
	}
}

// WithLogger overrides the process logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithPoolSize overrides the per-session worker pool dimensions.
func WithPoolSize(workers, queueSize int) Option {
	return func(a *Adapter) {
		a.workers = workers
		a.queueSize = queueSize
	}
}

// Adapter owns the listener registrations on the supplied sessions and the
// command core they feed. Configure commands and restrictions before Start;
// after Start the configuration is read-only.
type Adapter struct {
	logger    *slog.Logger
	workers   int
	queueSize int

	singles     []Client
	collections [][]Client

	core       *command.Handler[*discordgo.Message]
	notFound   *events.Bus[events.CommandNotFound[*discordgo.Message]]
	notAllowed *events.Bus[events.CommandNotAllowed[*discordgo.Message]]

	mu      sync.Mutex
	started bool
	pools   []*worker.Pool
}

// New creates an adapter dispatching with the given static prefix.
func New(prefix string, opts ...Option) *Adapter {
	a := &Adapter{
		logger:     logging.Logger(),
		workers:    defaultWorkers,
		queueSize:  defaultQueueSize,
		core:       command.NewHandler[*discordgo.Message](prefix),
		notFound:   events.NewBus[events.CommandNotFound[*discordgo.Message]](),
		notAllowed: events.NewBus[events.CommandNotAllowed[*discordgo.Message]](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetAvailableRestrictions registers the restrictions commands may reference.
func (a *Adapter) SetAvailableRestrictions(restrictions ...command.Restriction[*discordgo.Message]) error {
	return a.core.SetAvailableRestrictions(restrictions...)
}

// SetCommands registers the command set.
func (a *Adapter) SetCommands(commands ...command.Command[*discordgo.Message]) error {
	return a.core.SetCommands(commands...)
}

// SetCustomPrefixProvider installs per-message prefix resolution.
func (a *Adapter) SetCustomPrefixProvider(provider command.PrefixProvider[*discordgo.Message]) {
	a.core.SetCustomPrefixProvider(provider)
}

// CommandNotFoundEvents is the notification channel for prefixed messages
// that matched no command.
func (a *Adapter) CommandNotFoundEvents() *events.Bus[events.CommandNotFound[*discordgo.Message]] {
	return a.notFound
}

// CommandNotAllowedEvents is the notification channel for commands denied by
// restrictions.
func (a *Adapter) CommandNotAllowedEvents() *events.Bus[events.CommandNotAllowed[*discordgo.Message]] {
	return a.notAllowed
}

// Start inspects the supplied session sources and registers the message
// listener on each discovered session, exactly once per session. With no
// sessions supplied the adapter stays inert. ctx bounds the lifetime of
// command execution, not of the listener registrations, which live for the
// process.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.New("discord adapter already started")
	}
	if err := a.core.Validate(); err != nil {
		return err
	}
	a.started = true

	singles := compactClients(a.singles)
	var collected []Client
	for _, collection := range a.collections {
		collected = append(collected, compactClients(collection)...)
	}

	switch {
	case len(singles) == 0 && len(collected) == 0:
		a.logger.Info("no Discord session or session collection supplied, the Discord adapter will not be used")
		return nil
	case len(collected) == 0:
		a.logger.Info("Discord session supplied, the Discord adapter will be used")
	case len(singles) == 0:
		a.logger.Info("Discord session collection supplied, the Discord adapter will be used")
	default:
		a.logger.Info("Discord session and session collection supplied, the Discord adapter will be used")
	}

	for _, client := range dedupeClients(append(singles, collected...)) {
		pool := worker.NewPool(ctx, "discord", a.workers, a.queueSize, a.logger)
		a.pools = append(a.pools, pool)
		b := &binding{adapter: a, pool: pool}
		client.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
			a.handleMessage(b, m)
		})
	}
	return nil
}

// Close shuts down the worker pools and notification channels. Listener
// registrations on the sessions themselves are left to the session owner.
func (a *Adapter) Close() {
	a.mu.Lock()
	pools := a.pools
	a.pools = nil
	a.mu.Unlock()

	for _, pool := range pools {
		pool.Close()
	}
	a.notFound.Close()
	a.notAllowed.Close()
}

func (a *Adapter) handleMessage(b *binding, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	if m.Author != nil && m.Author.Bot {
		return
	}
	a.core.Handle(b, m.Message, m.Content)
}

// binding ties the shared command core to the worker pool of one session, so
// a command always executes on the pool of the session its message arrived
// on.
type binding struct {
	adapter *Adapter
	pool    *worker.Pool
}

func (b *binding) FireCommandNotFoundEvent(m *discordgo.Message, prefix, alias string) {
	b.adapter.notFound.Publish(events.CommandNotFound[*discordgo.Message]{
		Message: m,
		Prefix:  prefix,
		Alias:   alias,
	})
}

func (b *binding) FireCommandNotAllowedEvent(m *discordgo.Message, prefix, alias string) {
	b.adapter.notAllowed.Publish(events.CommandNotAllowed[*discordgo.Message]{
		Message: m,
		Prefix:  prefix,
		Alias:   alias,
	})
}

func (b *binding) ExecuteAsync(_ *discordgo.Message, unit command.ExecutionUnit) {
	b.pool.Submit(worker.Unit(unit))
}

func compactClients(clients []Client) []Client {
	out := clients[:0:0]
	for _, c := range clients {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// dedupeClients keeps first-seen order; supplying the same session through
// both forms attaches a single listener.
func dedupeClients(clients []Client) []Client {
	seen := make(map[Client]struct{}, len(clients))
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
