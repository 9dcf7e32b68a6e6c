package cmd

import (
	"fmt"

	"modrinth-mod-checker/config"
	"modrinth-mod-checker/db"
	"modrinth-mod-checker/logger"
	"modrinth-mod-checker/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local API response cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show response cache statistics",
	Run: func(_ *cobra.Command, _ []string) {
		store := openCacheStore()

		count, oldest, err := store.CacheStats()
		if err != nil {
			logger.Log.Fatalw("Failed to read cache statistics", zap.Error(err))
		}

		fmt.Println(ui.Bold("Response cache"))
		fmt.Printf("  Entries: %d\n", count)
		if count > 0 {
			fmt.Printf("  Oldest:  %s\n", oldest.Format("2006-01-02 15:04:05"))
		}
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached API responses",
	Run: func(_ *cobra.Command, _ []string) {
		store := openCacheStore()

		removed, err := store.ClearCache()
		if err != nil {
			logger.Log.Fatalw("Failed to clear cache", zap.Error(err))
		}
		fmt.Println(ui.Ok(fmt.Sprintf("Removed %d cached responses.", removed)))
	},
}

func openCacheStore() *db.Store {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}
	store, err := db.Open(cfg.CachePath)
	if err != nil {
		logger.Log.Fatalw("Failed to open cache database", zap.String("path", cfg.CachePath), zap.Error(err))
	}
	return store
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
