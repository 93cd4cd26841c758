package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slashtree/internal/admin"
	"slashtree/internal/cache"
	"slashtree/internal/config"
	"slashtree/internal/demo"
	"slashtree/internal/embeds"
	"slashtree/internal/logger"
	"slashtree/pkg/appcmd"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the gateway and serve interactions",
	RunE:  runBot,
}

func newDiscordBotClient(token string, httpClient *http.Client) (*discordgo.Session, error) {
	bot, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	bot.Client = httpClient

	return bot, nil
}

// buildCommandLayer assembles the tree and router every subcommand shares.
func buildCommandLayer(cfg *config.Config, log *zap.Logger) (*appcmd.Tree, *appcmd.Router, error) {
	tree := appcmd.NewTree("bot", appcmd.WithDefaultGuildID(cfg.GuildID))

	router := appcmd.NewRouter(
		appcmd.WithLogger(log),
		appcmd.WithErrorHandler(func(_ context.Context, itx *appcmd.Interaction, err error) {
			log.Error("interaction failed",
				zap.Error(err),
				logger.GuildID(itx.GuildID()),
				logger.ChannelID(itx.ChannelID()),
			)

			if !itx.Responded() {
				_ = itx.RespondMessage(&discordgo.InteractionResponseData{
					Embeds: []*discordgo.MessageEmbed{embeds.ErrorMessageEmbed("That didn't work, sorry.")},
					Flags:  discordgo.MessageFlagsEphemeral,
				})
			}
		}),
	)

	if err := demo.New(log).Register(router, tree); err != nil {
		return nil, nil, err
	}

	return tree, router, nil
}

func newHashCache(cfg *config.Config) (appcmd.HashCache, func(), error) {
	switch cfg.CacheBackend {
	case "file":
		return appcmd.NewFileCache(cfg.StateDir), func() {}, nil
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Pool)
		if err != nil {
			return nil, nil, err
		}

		return redisCache, func() { _ = redisCache.Close() }, nil
	default:
		return appcmd.NewMemoryCache(), func() {}, nil
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Environment)
	defer func() {
		if err := log.Sync(); err != nil {
			log.Warn("could not sync logger", zap.Error(err))
		}
	}()

	tree, router, err := buildCommandLayer(cfg, log)
	if err != nil {
		return err
	}

	bot, err := newDiscordBotClient(cfg.DiscordToken, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		return err
	}

	bot.Identify.Intents = discordgo.IntentsAllWithoutPrivileged
	bot.StateEnabled = true
	bot.Identify.Presence = discordgo.GatewayStatusUpdate{
		Game: discordgo.Activity{
			Name: "/ping",
			Type: discordgo.ActivityTypeGame,
		},
	}

	hashCache, closeCache, err := newHashCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	syncer := appcmd.NewSyncer(bot,
		appcmd.WithHashCache(hashCache),
		appcmd.WithSyncLogger(log),
		appcmd.WithPruning(cfg.PruneUnknown),
	)

	var adminServer *admin.Server

	router.Attach(bot)
	bot.AddHandler(func(session *discordgo.Session, _ *discordgo.Ready) {
		appID := session.State.Application.ID

		if cfg.SyncOnStart {
			if err := syncer.SyncAll(cmd.Context(), appID, tree); err != nil {
				log.Error("command sync failed", zap.Error(err), logger.ApplicationID(appID))
			}
		}

		if cfg.ListenerAddr != "" && adminServer == nil {
			adminServer = admin.NewServer(admin.Config{
				Tree:         tree,
				Syncer:       syncer,
				AppID:        appID,
				Addr:         cfg.ListenerAddr,
				ServiceToken: cfg.ServiceToken,
				Logger:       log,
			})

			go func() {
				if err := adminServer.Start(); err != nil {
					log.Error("admin listener failed", zap.Error(err))
				}
			}()
		}

		log.Info("bot has connected", logger.ApplicationID(appID))
	})

	if err := bot.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}

	defer func() {
		if err := bot.Close(); err != nil {
			log.Warn("could not close bot", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if adminServer != nil {
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("admin listener shutdown failed", zap.Error(err))
		}
	}

	router.Close()

	return nil
}
