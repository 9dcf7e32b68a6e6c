package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; the real work lives in the subcommands.
var rootCmd = &cobra.Command{
	Use:   "modrinth-mod-checker",
	Short: "Check Modrinth mods for Minecraft version/loader compatibility",
	Long: `Reads a list of Modrinth mod links, checks each against a target
Minecraft version and mod loader, optionally downloads compatible mods and
their required dependencies, and writes a markdown compatibility report.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
