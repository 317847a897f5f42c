package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/castorie/herald/internal/adapter/discord"
	"github.com/castorie/herald/internal/command"
	"github.com/castorie/herald/internal/config"
	"github.com/castorie/herald/internal/logging"
)

// startDiscord opens the configured gateway sessions, wires the command
// adapter onto them, and returns the shutdown function.
func startDiscord(ctx context.Context, cfg *config.Config) (func(), error) {
	sessions, err := newDiscordSessions(cfg.Discord)
	if err != nil {
		return nil, err
	}

	// REST calls are token-scoped, not gateway-scoped, so replies can go
	// through any session.
	rest := sessions[0]
	reply := func(_ context.Context, m *discordgo.Message, text string) error {
		_, err := rest.ChannelMessageSend(m.ChannelID, text)
		return err
	}

	var opts []discord.Option
	if len(sessions) == 1 {
		opts = append(opts, discord.WithSession(sessions[0]))
	} else {
		clients := make([]discord.Client, len(sessions))
		for i, s := range sessions {
			clients[i] = s
		}
		opts = append(opts, discord.WithSessions(clients...))
	}
	adapter := discord.New(cfg.Prefix, opts...)

	owners := cfg.Owners.Discord
	ownerOnly := command.NewRestriction(ownerRestrictionName, func(m *discordgo.Message) bool {
		return m.Author != nil && slices.Contains(owners, m.Author.ID)
	})
	if err := adapter.SetAvailableRestrictions(ownerOnly); err != nil {
		return nil, err
	}
	if err := adapter.SetCommands(staticCommands(cfg, reply)...); err != nil {
		return nil, err
	}

	stopNotifications := forwardNotifications(
		"discord",
		cfg.Notify,
		adapter.CommandNotFoundEvents(),
		adapter.CommandNotAllowedEvents(),
		reply,
	)
	if err := adapter.Start(ctx); err != nil {
		stopNotifications()
		return nil, err
	}

	for i, s := range sessions {
		if err := s.Open(); err != nil {
			for _, opened := range sessions[:i] {
				opened.Close()
			}
			stopNotifications()
			adapter.Close()
			return nil, fmt.Errorf("open discord session %d: %w", i, err)
		}
	}
	logging.Logger().Info("connected to Discord", "sessions", len(sessions))

	return func() {
		for _, s := range sessions {
			s.Close()
		}
		stopNotifications()
		adapter.Close()
	}, nil
}

func newDiscordSessions(cfg config.DiscordConfig) ([]*discordgo.Session, error) {
	shards := cfg.Shards
	if shards < 1 {
		shards = 1
	}
	sessions := make([]*discordgo.Session, 0, shards)
	for i := 0; i < shards; i++ {
		s, err := discordgo.New("Bot " + cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("create discord session: %w", err)
		}
		s.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentMessageContent
		if shards > 1 {
			s.ShardID = i
			s.ShardCount = shards
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
