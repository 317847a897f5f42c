package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/castorie/herald/internal/adapter/telegram"
	"github.com/castorie/herald/internal/command"
	"github.com/castorie/herald/internal/config"
	"github.com/castorie/herald/internal/logging"
)

// startTelegram connects the configured bot, wires the command adapter onto
// it, and returns the shutdown function. The bot's polling loop runs until
// ctx is canceled.
func startTelegram(ctx context.Context, cfg *config.Config) (func(), error) {
	b, err := bot.New(strings.TrimSpace(cfg.Telegram.Token))
	if err != nil {
		return nil, fmt.Errorf("connect to telegram bot: %w", err)
	}

	reply := func(ctx context.Context, m *models.Message, text string) error {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: m.Chat.ID,
			Text:   text,
		})
		return err
	}

	adapter := telegram.New(cfg.Prefix, telegram.WithBot(b))

	owners := cfg.Owners.Telegram
	ownerOnly := command.NewRestriction(ownerRestrictionName, func(m *models.Message) bool {
		return m.From != nil && slices.Contains(owners, strconv.FormatInt(m.From.ID, 10))
	})
	if err := adapter.SetAvailableRestrictions(ownerOnly); err != nil {
		return nil, err
	}
	if err := adapter.SetCommands(staticCommands(cfg, reply)...); err != nil {
		return nil, err
	}

	stopNotifications := forwardNotifications(
		"telegram",
		cfg.Notify,
		adapter.CommandNotFoundEvents(),
		adapter.CommandNotAllowedEvents(),
		reply,
	)
	if err := adapter.Start(ctx); err != nil {
		stopNotifications()
		return nil, err
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		stopNotifications()
		adapter.Close()
		return nil, fmt.Errorf("fetch telegram bot profile: %w", err)
	}
	logging.Logger().Info("connected to Telegram", "username", strings.TrimSpace(me.Username))

	go b.Start(ctx)

	return func() {
		stopNotifications()
		adapter.Close()
	}, nil
}
