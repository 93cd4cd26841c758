package main

import (
	"encoding/json"
	"fmt"

	"slashtree/internal/config"
	"slashtree/internal/logger"
	"slashtree/pkg/appcmd"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the command definitions that would be registered, as JSON",
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, _ []string) error {
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

	build := func(cmds []*appcmd.Command) []*discordgo.ApplicationCommand {
		defs := make([]*discordgo.ApplicationCommand, 0, len(cmds))
		for _, c := range cmds {
			defs = append(defs, c.Build())
		}

		return defs
	}

	payload := struct {
		Global []*discordgo.ApplicationCommand            `json:"global"`
		Guilds map[string][]*discordgo.ApplicationCommand `json:"guilds,omitempty"`
	}{
		Global: build(tree.GlobalCommands()),
	}

	if guildIDs := tree.GuildIDs(); len(guildIDs) > 0 {
		payload.Guilds = make(map[string][]*discordgo.ApplicationCommand, len(guildIDs))
		for _, guildID := range guildIDs {
			payload.Guilds[guildID] = build(tree.GuildCommands(guildID))
		}
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}
