package commands

import (
	"log/slog"

	"dineon-backend/services/dining"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the on-disk menu cache.",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deletes the cached menu, forcing the next fetch to hit the page.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		dining.NewCache(cfg.Dining.CachePath).Clear(cmd.Context())
		slog.Info("cache cleared", "path", cfg.Dining.CachePath)
	},
}
