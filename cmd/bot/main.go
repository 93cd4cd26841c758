package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Discord bot with declaratively registered application commands",
	Long: `Runs a Discord bot whose slash commands, context menus and modals are
declared in code and synchronized against Discord's command registry by
diffing, so unchanged commands are never re-uploaded.

Configuration comes from the environment (and a .env file when present);
DISCORD_TOKEN is required.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
