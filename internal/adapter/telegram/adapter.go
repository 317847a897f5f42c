// Package telegram bridges Telegram message updates to the command core,
// mirroring the Discord adapter: one listener per supplied bot, translation
// into Handle calls, notifications over the event bus, and asynchronous
// command execution on a per-bot worker pool.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/castorie/herald/internal/command"
	"github.com/castorie/herald/internal/events"
	"github.com/castorie/herald/internal/logging"
	"github.com/castorie/herald/internal/worker"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

// Client is the part of *bot.Bot the adapter relies on.
type Client interface {
	RegisterHandlerMatchFunc(matchFunc bot.MatchFunc, f bot.HandlerFunc, m ...bot.Middleware) string
}

var _ Client = (*bot.Bot)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithBot supplies a single bot. May be combined with WithBots; the adapter
// attaches to the union of both forms.
func WithBot(client Client) Option {
	return func(a *Adapter) {
		a.singles = append(a.singles, client)
	}
}

// WithBots supplies a bot collection.
func WithBots(clients ...Client) Option {
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

// WithPoolSize overrides the per-bot worker pool dimensions.
func WithPoolSize(workers, queueSize int) Option {
	return func(a *Adapter) {
		a.workers = workers
		a.queueSize = queueSize
	}
}

// Adapter owns the listener registrations on the supplied bots and the
// command core they feed. Configure commands and restrictions before Start.
type Adapter struct {
	logger    *slog.Logger
	workers   int
	queueSize int

	singles     []Client
	collections [][]Client

	core       *command.Handler[*models.Message]
	notFound   *events.Bus[events.CommandNotFound[*models.Message]]
	notAllowed *events.Bus[events.CommandNotAllowed[*models.Message]]

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
		core:       command.NewHandler[*models.Message](prefix),
		notFound:   events.NewBus[events.CommandNotFound[*models.Message]](),
		notAllowed: events.NewBus[events.CommandNotAllowed[*models.Message]](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetAvailableRestrictions registers the restrictions commands may reference.
func (a *Adapter) SetAvailableRestrictions(restrictions ...command.Restriction[*models.Message]) error {
	return a.core.SetAvailableRestrictions(restrictions...)
}

// SetCommands registers the command set.
func (a *Adapter) SetCommands(commands ...command.Command[*models.Message]) error {
	return a.core.SetCommands(commands...)
}

// SetCustomPrefixProvider installs per-message prefix resolution.
func (a *Adapter) SetCustomPrefixProvider(provider command.PrefixProvider[*models.Message]) {
	a.core.SetCustomPrefixProvider(provider)
}

// CommandNotFoundEvents is the notification channel for prefixed messages
// that matched no command.
func (a *Adapter) CommandNotFoundEvents() *events.Bus[events.CommandNotFound[*models.Message]] {
	return a.notFound
}

// CommandNotAllowedEvents is the notification channel for commands denied by
// restrictions.
func (a *Adapter) CommandNotAllowedEvents() *events.Bus[events.CommandNotAllowed[*models.Message]] {
	return a.notAllowed
}

// Start inspects the supplied bot sources and registers the message listener
// on each discovered bot, exactly once per bot. With no bots supplied the
// adapter stays inert.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.New("telegram adapter already started")
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
		a.logger.Info("no Telegram bot or bot collection supplied, the Telegram adapter will not be used")
		return nil
	case len(collected) == 0:
		a.logger.Info("Telegram bot supplied, the Telegram adapter will be used")
	case len(singles) == 0:
		a.logger.Info("Telegram bot collection supplied, the Telegram adapter will be used")
	default:
		a.logger.Info("Telegram bot and bot collection supplied, the Telegram adapter will be used")
	}

	for _, client := range dedupeClients(append(singles, collected...)) {
		pool := worker.NewPool(ctx, "telegram", a.workers, a.queueSize, a.logger)
		a.pools = append(a.pools, pool)
		b := &binding{adapter: a, pool: pool}
		client.RegisterHandlerMatchFunc(matchMessages, func(_ context.Context, _ *bot.Bot, update *models.Update) {
			a.handleUpdate(b, update)
		})
	}
	return nil
}

// Close shuts down the worker pools and notification channels.
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

func matchMessages(update *models.Update) bool {
	return update != nil && update.Message != nil
}

func (a *Adapter) handleUpdate(b *binding, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	msg := update.Message
	if msg.From != nil && msg.From.IsBot {
		return
	}
	a.core.Handle(b, msg, msg.Text)
}

// binding ties the shared command core to the worker pool of one bot.
type binding struct {
	adapter *Adapter
	pool    *worker.Pool
}

func (b *binding) FireCommandNotFoundEvent(m *models.Message, prefix, alias string) {
	b.adapter.notFound.Publish(events.CommandNotFound[*models.Message]{
		Message: m,
		Prefix:  prefix,
		Alias:   alias,
	})
}

func (b *binding) FireCommandNotAllowedEvent(m *models.Message, prefix, alias string) {
	b.adapter.notAllowed.Publish(events.CommandNotAllowed[*models.Message]{
		Message: m,
		Prefix:  prefix,
		Alias:   alias,
	})
}

func (b *binding) ExecuteAsync(_ *models.Message, unit command.ExecutionUnit) {
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
