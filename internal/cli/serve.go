package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/castorie/herald/internal/command"
	"github.com/castorie/herald/internal/commands"
	"github.com/castorie/herald/internal/config"
	"github.com/castorie/herald/internal/events"
	"github.com/castorie/herald/internal/logging"
)

// ownerRestrictionName is the restriction key owner-only commands reference.
const ownerRestrictionName = "owner"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the configured chat platforms and serve commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			report, err := config.ValidateStartup(cfg)
			if err != nil {
				return err
			}
			logger := logging.Logger()
			for _, warning := range report.Warnings {
				logger.Warn(warning)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info(
				"starting herald",
				"prefix", cfg.Prefix,
				"discord", cfg.Discord.Enabled,
				"telegram", cfg.Telegram.Enabled,
			)

			var shutdown []func()
			defer func() {
				for i := len(shutdown) - 1; i >= 0; i-- {
					shutdown[i]()
				}
				logger.Info("herald stopped")
			}()

			if cfg.Discord.Enabled {
				closeDiscord, err := startDiscord(runCtx, cfg)
				if err != nil {
					return fmt.Errorf("discord: %w", err)
				}
				shutdown = append(shutdown, closeDiscord)
			}
			if cfg.Telegram.Enabled {
				closeTelegram, err := startTelegram(runCtx, cfg)
				if err != nil {
					return fmt.Errorf("telegram: %w", err)
				}
				shutdown = append(shutdown, closeTelegram)
			}

			<-runCtx.Done()
			return nil
		},
	}
}

// staticCommands builds the command set shared by all platforms: the built-in
// ping and echo commands plus every static command declared in config.
func staticCommands[M any](cfg *config.Config, reply commands.ReplyFunc[M]) []command.Command[M] {
	cmds := []command.Command[M]{
		commands.Ping[M](reply),
		commands.NewEcho[M](reply),
	}
	for _, cmdCfg := range cfg.Commands {
		var restrictions []string
		if cmdCfg.OwnerOnly {
			restrictions = []string{ownerRestrictionName}
		}
		cmds = append(cmds, commands.NewStatic(cmdCfg.Name, cmdCfg.Aliases, restrictions, cmdCfg.Response, reply))
	}
	return cmds
}

// forwardNotifications consumes an adapter's not-found and not-allowed events,
// logs every attempt, and answers in the originating chat when configured to.
// The returned function unsubscribes and waits for the consumer to drain.
func forwardNotifications[M any](
	platform string,
	notify config.NotifyConfig,
	notFound *events.Bus[events.CommandNotFound[M]],
	notAllowed *events.Bus[events.CommandNotAllowed[M]],
	reply commands.ReplyFunc[M],
) func() {
	logger := logging.Logger()
	nfCh, nfUnsub := notFound.Subscribe()
	naCh, naUnsub := notAllowed.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for nfCh != nil || naCh != nil {
			select {
			case ev, ok := <-nfCh:
				if !ok {
					nfCh = nil
					continue
				}
				logger.Info("command not found", "platform", platform, "prefix", ev.Prefix, "alias", ev.Alias)
				if !notify.NotFound {
					continue
				}
				notice := fmt.Sprintf("unknown command %s%s", ev.Prefix, ev.Alias)
				if err := reply(context.Background(), ev.Message, notice); err != nil {
					logger.Warn("failed to send not-found notice", "platform", platform, "err", err)
				}
			case ev, ok := <-naCh:
				if !ok {
					naCh = nil
					continue
				}
				logger.Info("command not allowed", "platform", platform, "prefix", ev.Prefix, "alias", ev.Alias)
				if !notify.NotAllowed {
					continue
				}
				notice := fmt.Sprintf("you are not allowed to use %s%s", ev.Prefix, ev.Alias)
				if err := reply(context.Background(), ev.Message, notice); err != nil {
					logger.Warn("failed to send not-allowed notice", "platform", platform, "err", err)
				}
			}
		}
	}()
	return func() {
		nfUnsub()
		naUnsub()
		<-done
	}
}
