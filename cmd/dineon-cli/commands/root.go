package commands

import (
	"context"
	"fmt"
	"os"

	"dineon-backend/lib/configutil"
	"dineon-backend/lib/serviceutil"
	"dineon-backend/lib/sqliteutil"
	"dineon-backend/services/dining"
	"dineon-backend/services/dining/preferences"
	preferencesdb "dineon-backend/services/dining/preferences/db"

	"github.com/spf13/cobra"
)

type Config struct {
	Dining        dining.Config `json:"dining"`
	PreferencesDb string        `json:"preferences_db"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("dineon.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Dining.CachePath == "" {
		cfg.Dining.CachePath = ".dev/menu-cache.json"
	}
	if cfg.PreferencesDb == "" {
		cfg.PreferencesDb = ".dev/preferences.db"
	}
	return cfg
}

func openPreferences(ctx context.Context, cfg Config) *preferences.Store {
	database, err := sqliteutil.OpenDB(preferencesdb.Schema, cfg.PreferencesDb)
	if err != nil {
		serviceutil.Fatal("failed to open preferences database", err)
	}
	store, err := preferences.NewStore(ctx, database)
	if err != nil {
		serviceutil.Fatal("failed to load preferences", err)
	}
	return store
}

var rootCmd = &cobra.Command{
	Use:   "dineon-cli",
	Short: "dineon-cli fetches and browses the weekly dining hall menus.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
