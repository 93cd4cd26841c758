package main

import (
	"fmt"
	"net/http"
	"time"

	"slashtree/internal/config"
	"slashtree/internal/logger"
	"slashtree/pkg/appcmd"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize command definitions over REST without connecting to the gateway",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Environment)
	defer func() { _ = log.Sync() }()

	tree, _, err := buildCommandLayer(cfg, log)
	if err != nil {
		return err
	}

	bot, err := newDiscordBotClient(cfg.DiscordToken, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}

	// No gateway session, so resolve the application ID over REST.
	app, err := bot.Application("@me")
	if err != nil {
		return fmt.Errorf("resolving application: %w", err)
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

	if err := syncer.SyncAll(cmd.Context(), app.ID, tree); err != nil {
		return fmt.Errorf("synchronizing commands: %w", err)
	}

	log.Info("commands synchronized", logger.ApplicationID(app.ID), zap.Int("commands", len(tree.Commands())))

	return nil
}
